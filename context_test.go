package glrender

import (
	"errors"
	"image"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glrender/gl"
	"github.com/gogpu/glrender/gl/gltest"
	"github.com/gogpu/glrender/graphics"
	"github.com/gogpu/glrender/shader"
)

func callsNamed(f *gltest.Functions, name string) []gltest.Call {
	var out []gltest.Call
	for _, c := range f.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func newTarget(t *testing.T, dev *Device, desc RenderTargetDescriptor) *RenderTarget {
	t.Helper()
	if desc.Format == gputypes.TextureFormatUndefined {
		desc.Format = gputypes.TextureFormatRGBA8Unorm
	}
	rt, err := dev.NewRenderTarget(desc)
	mustOK(t, err)
	return rt
}

func TestSettersIssueNoNativeCalls(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	c := fx.ctx

	mustOK(t, c.SetBlendState(graphics.BlendAlpha))
	mustOK(t, c.SetBlendFactor(gputypes.Color{R: 0.5, A: 1}))
	mustOK(t, c.SetDepthStencilState(graphics.DepthRead))
	mustOK(t, c.SetRasterizerState(graphics.CullNone))
	mustOK(t, c.SetScissorRectangle(image.Rect(10, 10, 20, 20)))
	mustOK(t, c.SetViewport(graphics.NewViewport(0, 0, 400, 300)))

	if n := len(fx.f.Calls()); n != 0 {
		t.Fatalf("setters issued %d native calls: %v", n, fx.f.Names())
	}
	if c.BlendState() != graphics.BlendAlpha {
		t.Error("BlendState() does not return the value set")
	}
	if c.DepthStencilState() != graphics.DepthRead {
		t.Error("DepthStencilState() does not return the value set")
	}
	if c.RasterizerState() != graphics.CullNone {
		t.Error("RasterizerState() does not return the value set")
	}
	if c.BlendFactor() != (gputypes.Color{R: 0.5, A: 1}) {
		t.Error("BlendFactor() does not return the value set")
	}

	mustOK(t, c.DrawPrimitives(triangles, 0, 1))
	if fx.f.Count("BlendFuncSeparate") == 0 {
		t.Error("draw did not apply the blend state")
	}
	if call, ok := fx.f.Last("Viewport"); !ok || call.Args[2] != int32(400) || call.Args[3] != int32(300) {
		t.Errorf("Viewport call = %v", call)
	}
}

func TestRepeatedDrawIssuesOnlyFixupAndDraw(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 2))

	fx.f.Reset()
	mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 2))
	want := []string{"Uniform4f", "DrawArrays"}
	if got := fx.f.Names(); !slices.Equal(got, want) {
		t.Errorf("second draw issued %v, want %v", got, want)
	}
}

func TestPositionFixup(t *testing.T) {
	const hp = float32(halfPixel)
	tests := []struct {
		name      string
		halfPixel bool
		offscreen bool
		want      [4]float32
	}{
		{"back buffer", false, false, [4]float32{1, 1, 0, 0}},
		{"back buffer half pixel", true, false, [4]float32{1, 1, hp / 800, -hp / 600}},
		{"render target", false, true, [4]float32{1, -1, 0, 0}},
		{"render target half pixel", true, true, [4]float32{1, -1, hp / 256, hp / 128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := testCaps()
			tbl.HalfPixelOffset = tt.halfPixel
			fx := newDrawFixture(t, tbl)
			if tt.offscreen {
				rt := newTarget(t, fx.dev, RenderTargetDescriptor{Width: 256, Height: 128})
				mustOK(t, fx.ctx.SetRenderTargets(RenderTargetBinding{Target: rt}))
			}
			mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))

			call, ok := fx.f.Last("Uniform4f")
			if !ok {
				t.Fatal("no fixup uniform uploaded")
			}
			for i, w := range tt.want {
				if call.Args[i+1] != w {
					t.Errorf("fixup[%d] = %v, want %v", i, call.Args[i+1], w)
				}
			}
		})
	}
}

func TestFixupSkippedWithoutUniform(t *testing.T) {
	dev, f := newTestDevice(t)
	ctx := newTestContext(t, dev)
	vs, ps := loadTestStages(t, dev)
	vb, err := dev.NewVertexBuffer(testDeclaration(t), 3, BufferStatic)
	mustOK(t, err)
	mustOK(t, ctx.SetVertexShader(vs))
	mustOK(t, ctx.SetPixelShader(ps))
	mustOK(t, ctx.SetVertexBuffers(VertexBufferBinding{Buffer: vb}))
	f.HideUniform(PositionFixupUniform)

	mustOK(t, ctx.DrawPrimitives(triangles, 0, 1))
	if n := f.Count("Uniform4f"); n != 0 {
		t.Errorf("Uniform4f called %d times for a program without %s", n, PositionFixupUniform)
	}
}

func TestRenderTargetFramebufferCache(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	rt := newTarget(t, fx.dev, RenderTargetDescriptor{Width: 256, Height: 128})
	c := fx.ctx
	fx.f.Reset()

	mustOK(t, c.SetRenderTargets(RenderTargetBinding{Target: rt}))
	if n := fx.f.Count("CreateFramebuffer"); n != 1 {
		t.Fatalf("CreateFramebuffer called %d times, want 1", n)
	}

	fx.f.Reset()
	mustOK(t, c.SetRenderTargets(RenderTargetBinding{Target: rt}))
	if n := len(fx.f.Calls()); n != 0 {
		t.Errorf("rebinding the same targets issued %v", fx.f.Names())
	}

	mustOK(t, c.SetRenderTargets())
	if call, ok := fx.f.Last("BindFramebuffer"); !ok || call.Args[1] != gl.Framebuffer(0) {
		t.Errorf("back buffer not bound: %v", call)
	}
	mustOK(t, c.SetRenderTargets(RenderTargetBinding{Target: rt}))
	if n := fx.f.Count("CreateFramebuffer"); n != 0 {
		t.Errorf("cached framebuffer recreated %d times", n)
	}
	if got := c.Metrics().TargetCount; got != 3 {
		t.Errorf("TargetCount = %d, want 3", got)
	}
	if got := fx.dev.Stats().Framebuffers; got != 1 {
		t.Errorf("Stats().Framebuffers = %d, want 1", got)
	}
}

func TestRenderTargetSwitchResetsViewport(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	rt := newTarget(t, fx.dev, RenderTargetDescriptor{Width: 256, Height: 128})
	c := fx.ctx
	mustOK(t, c.SetViewport(graphics.NewViewport(10, 10, 50, 50)))

	mustOK(t, c.SetRenderTargets(RenderTargetBinding{Target: rt}))
	if got, want := c.Viewport(), graphics.NewViewport(0, 0, 256, 128); got != want {
		t.Errorf("Viewport() = %+v, want %+v", got, want)
	}
	if got := c.ScissorRectangle(); got != image.Rect(0, 0, 256, 128) {
		t.Errorf("ScissorRectangle() = %v", got)
	}

	mustOK(t, c.SetRenderTargets())
	if got, want := c.Viewport(), graphics.NewViewport(0, 0, 800, 600); got != want {
		t.Errorf("Viewport() = %+v, want %+v", got, want)
	}
}

func TestRenderTargetFlipsFrontFace(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	rt := newTarget(t, fx.dev, RenderTargetDescriptor{Width: 64, Height: 64})
	c := fx.ctx
	mustOK(t, c.SetRasterizerState(graphics.CullClockwise))

	mustOK(t, c.DrawPrimitives(triangles, 0, 1))
	if call, _ := fx.f.Last("FrontFace"); call.Args[0] != gl.Enum(gl.CCW) {
		t.Errorf("back buffer front face = %v, want CCW", call)
	}
	mustOK(t, c.SetRenderTargets(RenderTargetBinding{Target: rt}))
	mustOK(t, c.DrawPrimitives(triangles, 0, 1))
	if call, _ := fx.f.Last("FrontFace"); call.Args[0] != gl.Enum(gl.CW) {
		t.Errorf("render target front face = %v, want CW", call)
	}
}

func TestRenderTargetSlices(t *testing.T) {
	dev, f := newTestDevice(t)
	ctx := newTestContext(t, dev)
	plain := newTarget(t, dev, RenderTargetDescriptor{Width: 32, Height: 32})
	array := newTarget(t, dev, RenderTargetDescriptor{Kind: RenderTargetArray, Width: 32, Height: 32, Layers: 4})
	cube := newTarget(t, dev, RenderTargetDescriptor{Kind: RenderTargetCube, Width: 32, Height: 32})

	err := ctx.SetRenderTargets(RenderTargetBinding{Target: plain, ArraySlice: 1})
	if !errors.Is(err, ErrSliceNotSupported) {
		t.Fatalf("expected ErrSliceNotSupported, got %v", err)
	}

	mustOK(t, ctx.SetRenderTargets(RenderTargetBinding{Target: array, ArraySlice: 2}))
	call, ok := f.Last("FramebufferTextureLayer")
	if !ok || call.Args[4] != int32(2) {
		t.Errorf("FramebufferTextureLayer = %v, want layer 2", call)
	}

	mustOK(t, ctx.SetRenderTargets(RenderTargetBinding{Target: cube, ArraySlice: 3}))
	call, ok = f.Last("FramebufferTexture2D")
	if !ok || call.Args[2] != gl.Enum(gl.TEXTURE_CUBE_MAP_POSITIVE_X+3) {
		t.Errorf("FramebufferTexture2D = %v, want face 3", call)
	}
}

func TestTooManyRenderTargets(t *testing.T) {
	tbl := testCaps()
	tbl.MaxRenderTargets = 1
	dev, f := newTestDeviceWith(t, tbl)
	ctx := newTestContext(t, dev)
	a := newTarget(t, dev, RenderTargetDescriptor{Width: 8, Height: 8})
	b := newTarget(t, dev, RenderTargetDescriptor{Width: 8, Height: 8})
	f.Reset()

	err := ctx.SetRenderTargets(RenderTargetBinding{Target: a}, RenderTargetBinding{Target: b})
	if !errors.Is(err, ErrTooManyBindings) {
		t.Fatalf("expected ErrTooManyBindings, got %v", err)
	}
	if n := len(f.Calls()); n != 0 {
		t.Errorf("rejected bind issued %v", f.Names())
	}
}

func TestMultipleRenderTargetsSetDrawBuffers(t *testing.T) {
	dev, f := newTestDevice(t)
	ctx := newTestContext(t, dev)
	a := newTarget(t, dev, RenderTargetDescriptor{Width: 8, Height: 8})
	b := newTarget(t, dev, RenderTargetDescriptor{Width: 8, Height: 8})

	mustOK(t, ctx.SetRenderTargets(RenderTargetBinding{Target: a}, RenderTargetBinding{Target: b}))
	call, ok := f.Last("DrawBuffers")
	want := []gl.Enum{gl.COLOR_ATTACHMENT0, gl.COLOR_ATTACHMENT0 + 1}
	if !ok || !slices.Equal(call.Args[0].([]gl.Enum), want) {
		t.Errorf("DrawBuffers = %v, want %v", call, want)
	}
	if ctx.RenderTargetCount() != 2 {
		t.Errorf("RenderTargetCount() = %d, want 2", ctx.RenderTargetCount())
	}
}

func TestDestroyBoundRenderTarget(t *testing.T) {
	dev, f := newTestDevice(t)
	ctx := newTestContext(t, dev)
	rt := newTarget(t, dev, RenderTargetDescriptor{Width: 64, Height: 64, Depth: DepthFormat24Stencil8})
	mustOK(t, ctx.SetRenderTargets(RenderTargetBinding{Target: rt}))
	f.Reset()

	mustOK(t, rt.Destroy())
	if ctx.RenderTargetCount() != 0 {
		t.Error("context still renders to a destroyed target")
	}
	if got, want := ctx.Viewport(), graphics.NewViewport(0, 0, 800, 600); got != want {
		t.Errorf("Viewport() = %+v, want %+v", got, want)
	}
	if n := f.LiveFramebuffers(); n != 0 {
		t.Errorf("%d framebuffers alive after Destroy", n)
	}
	if n := f.Count("DeleteRenderbuffer"); n != 1 {
		t.Errorf("DeleteRenderbuffer called %d times, want 1 for a shared depth-stencil buffer", n)
	}
	if err := ctx.SetRenderTargets(RenderTargetBinding{Target: rt}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("binding a destroyed target: expected ErrDestroyed, got %v", err)
	}
	if err := rt.Destroy(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("second Destroy: expected ErrDestroyed, got %v", err)
	}
}

func TestMultisampledTargetResolves(t *testing.T) {
	tbl := testCaps()
	tbl.SupportsInvalidateFramebuffer = true
	dev, f := newTestDeviceWith(t, tbl)
	ctx := newTestContext(t, dev)
	rt := newTarget(t, dev, RenderTargetDescriptor{
		Width: 64, Height: 32, MultiSampleCount: 8, Usage: DiscardContents,
	})
	if rt.MultiSampleCount() != 4 {
		t.Errorf("MultiSampleCount() = %d, want clamped to 4", rt.MultiSampleCount())
	}
	if rt.ColorBuffer() == 0 {
		t.Fatal("multisampled target has no color renderbuffer")
	}

	mustOK(t, ctx.SetRenderTargets(RenderTargetBinding{Target: rt}))
	f.Reset()
	mustOK(t, ctx.SetRenderTargets())

	blit, ok := f.Last("BlitFramebuffer")
	if !ok {
		t.Fatal("no resolve blit issued")
	}
	if blit.Args[2] != int32(64) || blit.Args[3] != int32(32) {
		t.Errorf("blit = %v, want a 64x32 rectangle", blit)
	}
	if f.Count("InvalidateFramebuffer") != 1 {
		t.Error("discarded contents were not invalidated")
	}
	if _, resolve := dev.framebuffers.Len(); resolve != 1 {
		t.Errorf("resolve framebuffers = %d, want 1", resolve)
	}
}

func TestResolveSuspendsScissorTest(t *testing.T) {
	dev, f := newTestDevice(t)
	ctx := newTestContext(t, dev)
	vs, ps := loadTestStages(t, dev)
	vb, err := dev.NewVertexBuffer(testDeclaration(t), 3, BufferStatic)
	mustOK(t, err)
	rt := newTarget(t, dev, RenderTargetDescriptor{Width: 16, Height: 16, MultiSampleCount: 2})
	mustOK(t, ctx.SetVertexShader(vs))
	mustOK(t, ctx.SetPixelShader(ps))
	mustOK(t, ctx.SetVertexBuffers(VertexBufferBinding{Buffer: vb}))

	rs := graphics.CullNone
	rs.ScissorTestEnable = true
	mustOK(t, ctx.SetRasterizerState(rs))
	mustOK(t, ctx.SetRenderTargets(RenderTargetBinding{Target: rt}))
	mustOK(t, ctx.DrawPrimitives(triangles, 0, 1))
	f.Reset()

	mustOK(t, ctx.SetRenderTargets())
	names := f.Names()
	disable := slices.Index(names, "Disable")
	blit := slices.Index(names, "BlitFramebuffer")
	enable := slices.Index(names, "Enable")
	if disable < 0 || blit < disable || enable < blit {
		t.Errorf("scissor test not suspended around the blit: %v", names)
	}
}

func TestMultisampleNotSupported(t *testing.T) {
	tbl := testCaps()
	tbl.SupportsMultisampling = false
	dev, f := newTestDeviceWith(t, tbl)
	f.Reset()

	_, err := dev.NewRenderTarget(RenderTargetDescriptor{
		Width: 8, Height: 8, Format: gputypes.TextureFormatRGBA8Unorm, MultiSampleCount: 4,
	})
	if !errors.Is(err, ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
	if n := len(f.Calls()); n != 0 {
		t.Errorf("unsupported target issued %v", f.Names())
	}
}

func TestMipmappedTargetGeneratesMipmaps(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	rt := newTarget(t, fx.dev, RenderTargetDescriptor{Width: 64, Height: 64, Levels: 3})
	c := fx.ctx
	tex, err := fx.dev.NewTexture2D(4, 4, 1, gputypes.TextureFormatRGBA8Unorm)
	mustOK(t, err)
	mustOK(t, c.SetTexture(0, tex))
	mustOK(t, c.DrawPrimitives(triangles, 0, 1))

	mustOK(t, c.SetRenderTargets(RenderTargetBinding{Target: rt}))
	fx.f.Reset()
	mustOK(t, c.SetRenderTargets())
	if call, ok := fx.f.Last("GenerateMipmap"); !ok || call.Args[0] != gl.Enum(gl.TEXTURE_2D) {
		t.Fatalf("GenerateMipmap = %v", call)
	}

	// The mipmap pass rebinds the active unit, so the next draw restores it.
	fx.f.Reset()
	mustOK(t, c.DrawPrimitives(triangles, 0, 1))
	if call, ok := fx.f.Last("BindTexture"); !ok || call.Args[1] != tex.handle {
		t.Errorf("texture not rebound after mipmap generation: %v", fx.f.Names())
	}
}

func TestTextureBoundOnce(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	tex, err := fx.dev.NewTexture2D(16, 16, 1, gputypes.TextureFormatRGBA8Unorm)
	mustOK(t, err)
	mustOK(t, fx.ctx.SetTexture(0, tex))
	fx.f.Reset()

	mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))
	if n := fx.f.Count("BindTexture"); n != 1 {
		t.Errorf("BindTexture called %d times, want 1", n)
	}
	fx.f.Reset()
	mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))
	if n := fx.f.Count("BindTexture") + fx.f.Count("BindSampler"); n != 0 {
		t.Errorf("unchanged texture rebound: %v", fx.f.Names())
	}
}

func TestSamplerFallbackUsesTextureParameters(t *testing.T) {
	tbl := testCaps()
	tbl.SupportsSamplerObjects = false
	fx := newDrawFixture(t, tbl)
	tex, err := fx.dev.NewTexture2D(16, 16, 1, gputypes.TextureFormatRGBA8Unorm)
	mustOK(t, err)
	mustOK(t, fx.ctx.SetTexture(0, tex))
	mustOK(t, fx.ctx.SetSamplerState(0, graphics.SamplerPointClamp))
	fx.f.Reset()

	mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))
	if n := fx.f.Count("CreateSampler"); n != 0 {
		t.Errorf("CreateSampler called %d times without sampler objects", n)
	}
	params := callsNamed(fx.f, "TexParameteri")
	if len(params) != 6 {
		t.Fatalf("TexParameteri called %d times, want 6", len(params))
	}
	if params[0].Args[1] != gl.Enum(gl.TEXTURE_MIN_FILTER) || params[0].Args[2] != int32(gl.NEAREST) {
		t.Errorf("min filter = %v, want NEAREST for a single-level texture", params[0])
	}

	fx.f.Reset()
	mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))
	if n := fx.f.Count("TexParameteri"); n != 0 {
		t.Errorf("unchanged sampler reapplied %d parameters", n)
	}

	s := graphics.SamplerLinearClamp
	s.MaxMipLevel = 2
	mustOK(t, fx.ctx.SetSamplerState(0, s))
	fx.f.Reset()
	mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))
	if n := fx.f.Count("TexParameteri"); n != 7 {
		t.Errorf("TexParameteri called %d times, want 6 plus base level", n)
	}
	if call, _ := fx.f.Last("TexParameteri"); call.Args[1] != gl.Enum(gl.TEXTURE_BASE_LEVEL) || call.Args[2] != int32(2) {
		t.Errorf("last parameter = %v, want base level 2", call)
	}
}

func TestVertexTextureUnits(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	tex, err := fx.dev.NewTexture2D(16, 16, 1, gputypes.TextureFormatRGBA8Unorm)
	mustOK(t, err)
	mustOK(t, fx.ctx.SetVertexTexture(1, tex))
	fx.f.Reset()

	mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))
	unit := fx.dev.Caps().MaxTextureSlots + 1
	if call, ok := fx.f.Last("ActiveTexture"); !ok || call.Args[0] != gl.Enum(gl.TEXTURE0+unit) {
		t.Errorf("ActiveTexture = %v, want unit %d", call, unit)
	}
	if call, ok := fx.f.Last("BindSampler"); !ok || call.Args[0] != uint32(unit) {
		t.Errorf("BindSampler = %v, want unit %d", call, unit)
	}

	tests := []struct {
		name   string
		vertex bool
		slot   int
		want   error
	}{
		{"pixel slot past limit", false, 16, ErrInvalidSlot},
		{"negative pixel slot", false, -1, ErrInvalidSlot},
		{"vertex slot past limit", true, 4, ErrInvalidSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.vertex {
				err = fx.ctx.SetVertexSamplerState(tt.slot, graphics.SamplerPointClamp)
			} else {
				err = fx.ctx.SetTexture(tt.slot, tex)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestVertexTexturesNotSupported(t *testing.T) {
	tbl := testCaps()
	tbl.MaxVertexTextureSlots = 0
	dev, _ := newTestDeviceWith(t, tbl)
	ctx := newTestContext(t, dev)
	tex, err := dev.NewTexture2D(4, 4, 1, gputypes.TextureFormatRGBA8Unorm)
	mustOK(t, err)
	if err := ctx.SetVertexTexture(0, tex); !errors.Is(err, ErrNotSupported) {
		t.Errorf("expected ErrNotSupported, got %v", err)
	}
}

func TestDestroyedTextureUnbound(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	tex, err := fx.dev.NewTexture2D(16, 16, 1, gputypes.TextureFormatRGBA8Unorm)
	mustOK(t, err)
	mustOK(t, fx.ctx.SetTexture(0, tex))
	mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))

	mustOK(t, tex.Destroy())
	fx.f.Reset()
	mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))
	if n := fx.f.Count("BindTexture"); n != 0 {
		t.Errorf("destroyed texture rebound: %v", fx.f.Names())
	}
	if err := fx.ctx.SetTexture(0, tex); err == nil {
		t.Error("binding a destroyed texture succeeded")
	}
}

func TestConstantBuffers(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	c := fx.ctx
	data := make([]float32, 20)
	for i := range data {
		data[i] = float32(i)
	}

	mustOK(t, c.SetConstantBuffer(0, data))
	mustOK(t, c.DrawPrimitives(triangles, 0, 1))
	call, ok := fx.f.Last("Uniform4fv")
	if !ok {
		t.Fatal("constant buffer not uploaded")
	}
	if got := call.Args[1].([]float32); !slices.Equal(got, data[:16]) {
		t.Errorf("uploaded %v, want the first 16 floats", got)
	}

	fx.f.Reset()
	mustOK(t, c.DrawPrimitives(triangles, 0, 1))
	if n := fx.f.Count("Uniform4fv"); n != 0 {
		t.Errorf("unchanged constants uploaded %d times", n)
	}

	mustOK(t, c.SetConstantBuffer(0, data[:6]))
	mustOK(t, c.DrawPrimitives(triangles, 0, 1))
	call, _ = fx.f.Last("Uniform4fv")
	if got := call.Args[1].([]float32); len(got) != 4 {
		t.Errorf("uploaded %d floats, want whole vec4s only", len(got))
	}

	// Slot 3 is not declared by either stage.
	fx.f.Reset()
	mustOK(t, c.SetConstantBuffer(3, data))
	mustOK(t, c.DrawPrimitives(triangles, 0, 1))
	if n := fx.f.Count("Uniform4fv"); n != 0 {
		t.Errorf("undeclared slot uploaded %d times", n)
	}

	if err := c.SetConstantBuffer(maxConstantBuffers, data); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("expected ErrInvalidSlot, got %v", err)
	}
}

func TestClearRestoresState(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	c := fx.ctx
	scissor := image.Rect(5, 5, 10, 10)
	mustOK(t, c.SetBlendState(graphics.BlendAlpha))
	mustOK(t, c.SetDepthStencilState(graphics.DepthRead))
	mustOK(t, c.SetScissorRectangle(scissor))

	mustOK(t, c.Clear(graphics.ClearAll, gputypes.Color{R: 1, A: 1}, 0.5, 3))
	got := fx.f.Contents(0)
	if got.Color != [4]float32{1, 0, 0, 1} || got.Depth != 0.5 || got.Stencil != 3 {
		t.Errorf("back buffer contents = %+v", got)
	}
	if c.BlendState() != graphics.BlendAlpha || c.DepthStencilState() != graphics.DepthRead || c.ScissorRectangle() != scissor {
		t.Error("Clear did not restore the caller's state")
	}
	if c.Metrics().ClearCount != 1 {
		t.Errorf("ClearCount = %d, want 1", c.Metrics().ClearCount)
	}

	mustOK(t, c.DrawPrimitives(triangles, 0, 1))
	if call, _ := fx.f.Last("Scissor"); call.Args[2] != int32(5) || call.Args[3] != int32(5) {
		t.Errorf("scissor after Clear = %v, want 5x5", call)
	}
}

func TestClearRenderTarget(t *testing.T) {
	dev, f := newTestDevice(t)
	ctx := newTestContext(t, dev)
	rt := newTarget(t, dev, RenderTargetDescriptor{Width: 16, Height: 16})
	mustOK(t, ctx.SetRenderTargets(RenderTargetBinding{Target: rt}))
	fb, _ := f.Last("CreateFramebuffer")

	mustOK(t, ctx.Clear(graphics.ClearTarget, gputypes.Color{G: 1, A: 1}, 1, 0))
	if got := f.Contents(fb.Args[0].(gl.Framebuffer)).Color; got != [4]float32{0, 1, 0, 1} {
		t.Errorf("target color = %v", got)
	}
	if got := f.Contents(0).Color; got != [4]float32{} {
		t.Errorf("back buffer touched: %v", got)
	}
}

func TestInvalidateReissuesState(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	c := fx.ctx
	tex, err := fx.dev.NewTexture2D(4, 4, 1, gputypes.TextureFormatRGBA8Unorm)
	mustOK(t, err)
	mustOK(t, c.SetTexture(0, tex))
	mustOK(t, c.SetConstantBuffer(0, make([]float32, 16)))
	mustOK(t, c.DrawIndexedPrimitives(triangles, 0, 0, 1))

	mustOK(t, c.Invalidate())
	fx.f.Reset()
	mustOK(t, c.DrawIndexedPrimitives(triangles, 0, 0, 1))
	for _, name := range []string{"UseProgram", "Viewport", "BindTexture", "BindSampler", "Uniform4fv", "VertexAttribPointer"} {
		if fx.f.Count(name) == 0 {
			t.Errorf("%s not reissued after Invalidate: %v", name, fx.f.Names())
		}
	}
	if fx.f.Count("CreateProgram") != 0 {
		t.Error("Invalidate relinked the program")
	}
}

func TestMetrics(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	c := fx.ctx
	mustOK(t, c.DrawPrimitives(triangles, 0, 2))
	mustOK(t, c.DrawInstancedPrimitives(triangles, 0, 0, 2, 0, 3))

	m := c.Metrics()
	if m.DrawCount != 2 || m.PrimitiveCount != 8 || m.ProgramLinks != 1 {
		t.Errorf("Metrics() = %+v", m)
	}
	c.ResetMetrics()
	if c.Metrics() != (Metrics{}) {
		t.Errorf("Metrics() after reset = %+v", c.Metrics())
	}
}

func TestContextsSharingDeviceReissueState(t *testing.T) {
	tests := []struct {
		name     string
		samePair bool
	}{
		{"same program", true},
		{"other program", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newDrawFixture(t, testCaps())
			ps := fx.ctx.ps
			if !tt.samePair {
				var err error
				ps, err = fx.dev.LoadShader(shader.Pixel, altPixelSPIRV, "fs_main", shader.Reflection{})
				mustOK(t, err)
			}
			other := newTestContext(t, fx.dev)
			mustOK(t, other.SetVertexShader(fx.ctx.vs))
			mustOK(t, other.SetPixelShader(ps))
			mustOK(t, other.SetVertexBuffers(VertexBufferBinding{Buffer: fx.vb}))
			mustOK(t, other.SetConstantBuffer(0, make([]float32, 16)))

			mustOK(t, fx.ctx.SetBlendState(graphics.BlendAlpha))
			mustOK(t, fx.ctx.SetConstantBuffer(0, make([]float32, 16)))
			mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))
			mustOK(t, other.DrawPrimitives(triangles, 0, 1))

			fx.f.Reset()
			mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))
			blend := slices.ContainsFunc(callsNamed(fx.f, "Enable"), func(c gltest.Call) bool {
				return c.Args[0] == gl.Enum(gl.BLEND)
			})
			if !blend {
				t.Errorf("blending not re-enabled: %v", fx.f.Names())
			}
			if call, ok := fx.f.Last("UseProgram"); !ok || call.Args[0] != fx.ctx.program.Handle {
				t.Errorf("UseProgram = %v, want the context's program", call)
			}
			if n := fx.f.Count("Uniform4fv"); n != 1 {
				t.Errorf("Uniform4fv called %d times, want constants uploaded again", n)
			}
			if n := fx.f.Count("VertexAttribPointer"); n != 2 {
				t.Errorf("VertexAttribPointer called %d times, want 2", n)
			}
			if call, ok := fx.f.Last("BindFramebuffer"); !ok || call.Args[1] != gl.Framebuffer(0) {
				t.Errorf("BindFramebuffer = %v, want the back buffer", call)
			}

			// Back to back draws from one context stay minimal.
			fx.f.Reset()
			mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))
			if got := fx.f.Names(); !slices.Equal(got, []string{"Uniform4f", "DrawArrays"}) {
				t.Errorf("repeated draw issued %v", got)
			}
		})
	}
}

func TestContextTakeoverRebindsRenderTarget(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	rt := newTarget(t, fx.dev, RenderTargetDescriptor{Width: 64, Height: 64})
	mustOK(t, fx.ctx.SetRenderTargets(RenderTargetBinding{Target: rt}))
	mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))
	fb, _ := fx.f.Last("BindFramebuffer")

	other := newTestContext(t, fx.dev)
	mustOK(t, other.Clear(graphics.ClearTarget, gputypes.Color{}, 1, 0))
	if call, _ := fx.f.Last("BindFramebuffer"); call.Args[1] != gl.Framebuffer(0) {
		t.Errorf("other context cleared into %v, want the back buffer", call)
	}

	fx.f.Reset()
	mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))
	if call, ok := fx.f.Last("BindFramebuffer"); !ok || call.Args[1] != fb.Args[1] {
		t.Errorf("BindFramebuffer = %v, want %v", call, fb)
	}
}

func TestSetVertexBuffersErrorKeepsBindings(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	vb2, err := fx.dev.NewVertexBuffer(testDeclaration(t), 4, BufferStatic)
	mustOK(t, err)
	gone, err := fx.dev.NewVertexBuffer(testDeclaration(t), 4, BufferStatic)
	mustOK(t, err)
	mustOK(t, gone.Destroy())

	tests := []struct {
		name   string
		second *VertexBuffer
	}{
		{"nil buffer", nil},
		{"destroyed buffer", gone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fx.ctx.SetVertexBuffers(VertexBufferBinding{Buffer: vb2}, VertexBufferBinding{Buffer: tt.second})
			if err == nil {
				t.Fatal("invalid binding accepted")
			}
			if len(fx.ctx.vertexBindings) != 1 || fx.ctx.vertexBindings[0].Buffer != fx.vb.handle {
				t.Errorf("bindings changed by a failed call: %+v", fx.ctx.vertexBindings)
			}
		})
	}

	fx.f.Reset()
	mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))
	if call, ok := fx.f.Last("BindBuffer"); !ok || call.Args[1] != fx.vb.handle {
		t.Errorf("BindBuffer = %v, want the previously set buffer", call)
	}
}

func TestVertexSamplerUnitsPastTrackedPixelUnits(t *testing.T) {
	tbl := testCaps()
	tbl.MaxTextureSlots = 40
	dev, f := newTestDeviceWith(t, tbl)
	ctx := newTestContext(t, dev)
	_, ps := loadTestStages(t, dev)
	vs, err := dev.LoadShader(shader.Vertex, vertexSPIRV, "vs_main", shader.Reflection{
		Attributes: []shader.Attribute{{Name: "a_position", Usage: graphics.UsagePosition}},
		Samplers:   []shader.Sampler{{Name: "s_height", Unit: 0}},
	})
	mustOK(t, err)
	tex, err := dev.NewTexture2D(16, 16, 1, gputypes.TextureFormatRGBA8Unorm)
	mustOK(t, err)
	mustOK(t, ctx.SetVertexShader(vs))
	mustOK(t, ctx.SetPixelShader(ps))
	mustOK(t, ctx.SetVertexTexture(0, tex))
	f.Reset()

	mustOK(t, ctx.DrawPrimitives(triangles, 0, 1))
	unit := maxUnitsPerStage
	if call, ok := f.Last("Uniform1i"); !ok || call.Args[1] != int32(unit) {
		t.Errorf("vertex sampler uniform = %v, want unit %d", call, unit)
	}
	if call, ok := f.Last("ActiveTexture"); !ok || call.Args[0] != gl.Enum(gl.TEXTURE0+unit) {
		t.Errorf("ActiveTexture = %v, want unit %d", call, unit)
	}
}

func TestFailedRenderTargetSwitchFallsBackToBackBuffer(t *testing.T) {
	fx := newDrawFixture(t, testCaps())
	a := newTarget(t, fx.dev, RenderTargetDescriptor{Width: 64, Height: 64})
	b := newTarget(t, fx.dev, RenderTargetDescriptor{Width: 32, Height: 32})
	mustOK(t, fx.ctx.SetRenderTargets(RenderTargetBinding{Target: a}))
	fx.f.FramebufferStatus = gl.FRAMEBUFFER_UNSUPPORTED

	err := fx.ctx.SetRenderTargets(RenderTargetBinding{Target: b})
	var ce *CompletenessError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompletenessError, got %v", err)
	}
	if n := fx.ctx.RenderTargetCount(); n != 0 {
		t.Errorf("RenderTargetCount() = %d after a failed switch, want 0", n)
	}
	if call, _ := fx.f.Last("BindFramebuffer"); call.Args[0] != gl.Enum(gl.FRAMEBUFFER) || call.Args[1] != gl.Framebuffer(0) {
		t.Errorf("BindFramebuffer = %v, want the back buffer", call)
	}
	if got, want := fx.ctx.Viewport(), graphics.NewViewport(0, 0, 800, 600); got != want {
		t.Errorf("Viewport() = %+v, want %+v", got, want)
	}

	fx.f.Reset()
	mustOK(t, fx.ctx.DrawPrimitives(triangles, 0, 1))
	if call, _ := fx.f.Last("Uniform4f"); call.Args[2] != float32(1) {
		t.Errorf("fixup = %v, want the back buffer orientation", call)
	}
}
