// Package glrender is a render-state cache and draw dispatcher for
// OpenGL-family devices.
//
// # Overview
//
// Applications describe rendering with plain value types (blend, depth,
// rasterizer and sampler states, viewports, vertex declarations) and
// issue draws through a Context. Before each draw the context issues only
// the native calls needed to move the device from the state it last set to
// the requested one. Identical consecutive draws issue nothing but the
// draw itself and the position fixup upload.
//
// # Quick Start
//
//	dev, err := glrender.NewDevice(fns, nil, glrender.WithBackBufferSize(800, 600))
//	if err != nil {
//	    return err
//	}
//	ctx, err := dev.NewContext()
//	if err != nil {
//	    return err
//	}
//
//	ctx.SetBlendState(graphics.BlendAlpha)
//	ctx.SetVertexShader(vs)
//	ctx.SetPixelShader(ps)
//	ctx.SetVertexBuffers(glrender.VertexBufferBinding{Buffer: vb})
//	err = ctx.DrawPrimitives(gputypes.PrimitiveTopologyTriangleList, 0, 2)
//
// # Architecture
//
// The native surface is the gl.Functions interface; hosts bind it to a real
// driver and tests use gl/gltest. A caps.Table records what the driver
// supports and every capability-dependent path branches on it. Missing
// features surface as errors wrapping ErrNotSupported before any native
// call is made.
//
// A Device owns the caches shared between contexts: programs keyed by their
// stage pair, framebuffers keyed by their render target set, and sampler
// objects keyed by sampler state. Each Context owns the per-context caches:
// pipeline state with a shadow of the native values, vertex attribute
// bindings, texture units, constant buffers and index buffer binding.
//
// # Threading
//
// Native contexts are bound to one thread. A Device and its contexts record
// the thread that created them and every mutating call made from another
// thread fails with ErrWrongThread. Callers typically lock the rendering
// goroutine to its OS thread with runtime.LockOSThread.
//
// # Coordinates
//
// Viewports and scissor rectangles use a top-left origin. They are flipped
// to the native bottom-left origin when rendering to the back buffer.
// Render targets are rendered upside down instead, through the Y sign of
// the position fixup vector, and the front face winding is inverted to
// compensate.
//
// # Logging
//
// glrender logs through log/slog and is silent by default. See SetLogger
// and WithLogger.
package glrender
