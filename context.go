package glrender

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glrender/caps"
	"github.com/gogpu/glrender/gl"
	"github.com/gogpu/glrender/graphics"
	"github.com/gogpu/glrender/internal/framebuffer"
	"github.com/gogpu/glrender/internal/pipeline"
	"github.com/gogpu/glrender/internal/program"
	"github.com/gogpu/glrender/internal/vertex"
	"github.com/gogpu/glrender/shader"
)

// maxConstantBuffers is the number of constant buffer slots of a context.
const maxConstantBuffers = 16

// VertexBufferBinding binds a vertex buffer to a slot.
type VertexBufferBinding struct {
	Buffer *VertexBuffer

	// VertexOffset is the index of the first vertex read.
	VertexOffset int

	// InstanceFrequency advances the slot once per that many instances.
	// Zero means per vertex.
	InstanceFrequency int
}

// RenderTargetBinding binds a render target to a color slot. ArraySlice
// selects the cube face or array layer rendered to.
type RenderTargetBinding struct {
	Target     *RenderTarget
	ArraySlice int
}

// Metrics counts the work a context submitted.
type Metrics struct {
	DrawCount      uint64
	PrimitiveCount uint64
	ClearCount     uint64

	// TargetCount counts render target switches, including to the back buffer.
	TargetCount uint64

	// ProgramLinks counts programs linked on behalf of this context.
	ProgramLinks uint64
}

// Context is the render state of one native context. Setters only record
// state; native calls are issued by draws, clears and render target changes,
// and only for state that differs from what was last issued.
//
// A context is not safe for concurrent use and must be used from the thread
// that created its device.
type Context struct {
	dev    *Device
	f      gl.Functions
	caps   *caps.Table
	owner  owner
	checks bool

	pipeline *pipeline.Cache
	vertices *vertex.Cache
	units    textureUnits

	vs, ps       *shader.Stage
	shadersDirty bool
	program      *program.Program

	vertexBindings []vertex.Binding
	indexBuffer    *IndexBuffer
	boundIndex     gl.Buffer
	indexKnown     bool

	constants      [maxConstantBuffers][]float32
	constantsDirty uint32

	targets framebuffer.Key

	metrics Metrics
}

func newContext(d *Device) *Context {
	c := &Context{
		dev:          d,
		f:            d.f,
		caps:         d.caps,
		owner:        d.owner,
		checks:       d.opts.errorChecks,
		pipeline:     pipeline.New(d.f, d.caps, d.log, d.opts.errorChecks),
		vertices:     vertex.New(d.f, d.caps, d.opts.errorChecks),
		units:        newTextureUnits(d.caps),
		shadersDirty: true,
	}
	c.resetViewport(d.backBufferW, d.backBufferH)
	return c
}

func (c *Context) guard() error {
	if err := c.owner.check(); err != nil {
		return err
	}
	if c.dev.destroyed {
		return ErrDestroyed
	}
	return nil
}

func (c *Context) check(op string) error {
	if !c.checks {
		return nil
	}
	return gl.Check(c.f, op)
}

// Device returns the device the context was created from.
func (c *Context) Device() *Device { return c.dev }

// SetBlendState sets the blend state.
func (c *Context) SetBlendState(bs graphics.BlendState) error {
	if err := c.guard(); err != nil {
		return err
	}
	c.pipeline.SetBlendState(bs)
	return nil
}

// BlendState returns the current blend state.
func (c *Context) BlendState() graphics.BlendState { return c.pipeline.BlendState() }

// SetBlendFactor sets the constant blend color.
func (c *Context) SetBlendFactor(col gputypes.Color) error {
	if err := c.guard(); err != nil {
		return err
	}
	c.pipeline.SetBlendFactor(col)
	return nil
}

// BlendFactor returns the constant blend color.
func (c *Context) BlendFactor() gputypes.Color { return c.pipeline.BlendFactor() }

// SetDepthStencilState sets the depth-stencil state.
func (c *Context) SetDepthStencilState(ds graphics.DepthStencilState) error {
	if err := c.guard(); err != nil {
		return err
	}
	c.pipeline.SetDepthStencilState(ds)
	return nil
}

// DepthStencilState returns the current depth-stencil state.
func (c *Context) DepthStencilState() graphics.DepthStencilState {
	return c.pipeline.DepthStencilState()
}

// SetRasterizerState sets the rasterizer state.
func (c *Context) SetRasterizerState(rs graphics.RasterizerState) error {
	if err := c.guard(); err != nil {
		return err
	}
	c.pipeline.SetRasterizerState(rs)
	return nil
}

// RasterizerState returns the current rasterizer state.
func (c *Context) RasterizerState() graphics.RasterizerState { return c.pipeline.RasterizerState() }

// SetScissorRectangle sets the scissor rectangle in target coordinates,
// origin top-left.
func (c *Context) SetScissorRectangle(r image.Rectangle) error {
	if err := c.guard(); err != nil {
		return err
	}
	c.pipeline.SetScissorRectangle(r)
	return nil
}

// ScissorRectangle returns the scissor rectangle.
func (c *Context) ScissorRectangle() image.Rectangle { return c.pipeline.ScissorRectangle() }

// SetViewport sets the viewport in target coordinates, origin top-left.
func (c *Context) SetViewport(vp graphics.Viewport) error {
	if err := c.guard(); err != nil {
		return err
	}
	c.pipeline.SetViewport(vp)
	return nil
}

// Viewport returns the viewport.
func (c *Context) Viewport() graphics.Viewport { return c.pipeline.Viewport() }

// SetVertexShader sets the vertex stage of subsequent draws.
func (c *Context) SetVertexShader(s *shader.Stage) error {
	if err := c.guard(); err != nil {
		return err
	}
	if s != c.vs {
		c.vs = s
		c.shadersDirty = true
	}
	return nil
}

// SetPixelShader sets the pixel stage of subsequent draws.
func (c *Context) SetPixelShader(s *shader.Stage) error {
	if err := c.guard(); err != nil {
		return err
	}
	if s != c.ps {
		c.ps = s
		c.shadersDirty = true
	}
	return nil
}

// SetTexture binds t to a pixel-stage texture slot. A nil t unbinds the slot.
func (c *Context) SetTexture(slot int, t Texture) error {
	return c.setTexture(false, slot, t)
}

// SetVertexTexture binds t to a vertex-stage texture slot. Vertex slots use
// the texture units after the pixel-stage units.
func (c *Context) SetVertexTexture(slot int, t Texture) error {
	return c.setTexture(true, slot, t)
}

func (c *Context) setTexture(vertexStage bool, slot int, t Texture) error {
	if err := c.guard(); err != nil {
		return err
	}
	i, err := c.units.index(vertexStage, slot)
	if err != nil {
		return err
	}
	if t != nil && t.base().destroyed {
		return ErrDestroyed
	}
	c.units.setTexture(i, t)
	return nil
}

// SetSamplerState sets the sampler state of a pixel-stage texture slot.
func (c *Context) SetSamplerState(slot int, s graphics.SamplerState) error {
	return c.setSampler(false, slot, s)
}

// SetVertexSamplerState sets the sampler state of a vertex-stage texture slot.
func (c *Context) SetVertexSamplerState(slot int, s graphics.SamplerState) error {
	return c.setSampler(true, slot, s)
}

func (c *Context) setSampler(vertexStage bool, slot int, s graphics.SamplerState) error {
	if err := c.guard(); err != nil {
		return err
	}
	i, err := c.units.index(vertexStage, slot)
	if err != nil {
		return err
	}
	c.units.setSampler(i, s)
	return nil
}

// SetConstantBuffer stores the contents of a constant buffer slot. Stages
// declaring a block on the slot receive it as a vec4 array on the next draw.
func (c *Context) SetConstantBuffer(slot int, data []float32) error {
	if err := c.guard(); err != nil {
		return err
	}
	if slot < 0 || slot >= maxConstantBuffers {
		return fmt.Errorf("%w: constant buffer slot %d", ErrInvalidSlot, slot)
	}
	c.constants[slot] = append(c.constants[slot][:0], data...)
	c.constantsDirty |= 1 << slot
	return nil
}

// SetVertexBuffers replaces the vertex buffer bindings, slot i taking
// bindings[i].
func (c *Context) SetVertexBuffers(bindings ...VertexBufferBinding) error {
	if err := c.guard(); err != nil {
		return err
	}
	for i, b := range bindings {
		if b.Buffer == nil {
			return fmt.Errorf("glrender: nil vertex buffer in slot %d", i)
		}
		if b.Buffer.destroyed {
			return ErrDestroyed
		}
	}
	vb := c.vertexBindings[:0]
	for _, b := range bindings {
		vb = append(vb, vertex.Binding{
			Buffer:            b.Buffer.handle,
			Declaration:       b.Buffer.decl,
			VertexOffset:      b.VertexOffset,
			InstanceFrequency: b.InstanceFrequency,
		})
	}
	c.vertexBindings = vb
	return nil
}

// SetIndexBuffer sets the index buffer of indexed draws.
func (c *Context) SetIndexBuffer(ib *IndexBuffer) error {
	if err := c.guard(); err != nil {
		return err
	}
	if ib != nil && ib.destroyed {
		return ErrDestroyed
	}
	c.indexBuffer = ib
	return nil
}

func (c *Context) bindIndex(b gl.Buffer) {
	if !c.indexKnown || c.boundIndex != b {
		c.f.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b)
		c.boundIndex = b
		c.indexKnown = true
	}
}

// SetRenderTargets binds the given render targets, or the back buffer when
// none are given. The previous targets are resolved first: multisampled
// contents are blitted into their textures and mipmaps are regenerated.
// The viewport and scissor rectangle are reset to the first target's size.
// Binding the current set again issues no native calls.
func (c *Context) SetRenderTargets(bindings ...RenderTargetBinding) error {
	if err := c.guard(); err != nil {
		return err
	}
	if len(bindings) > c.caps.MaxRenderTargets {
		return fmt.Errorf("%w: %d render targets, device supports %d",
			ErrTooManyBindings, len(bindings), c.caps.MaxRenderTargets)
	}
	var fbs [caps.MaxRenderTargets]framebuffer.Binding
	for i, b := range bindings {
		if b.Target == nil {
			return fmt.Errorf("glrender: nil render target in slot %d", i)
		}
		if b.Target.destroyed {
			return ErrDestroyed
		}
		fbs[i] = framebuffer.Binding{Target: b.Target, ArraySlice: b.ArraySlice}
	}
	key, err := framebuffer.NewKey(fbs[:len(bindings)]...)
	if err != nil {
		return err
	}
	if key == c.targets {
		return nil
	}

	if err := c.acquire(); err != nil {
		return err
	}
	if c.targets.Len() > 0 {
		if err := c.dev.framebuffers.Resolve(c.targets, c.pipeline.ScissorTestActive()); err != nil {
			return err
		}
		if mipmapped(c.targets) {
			c.units.invalidateActive()
		}
	}

	if key.Len() == 0 {
		c.bindBackBuffer()
		c.metrics.TargetCount++
		return c.check("set render targets")
	}

	if _, err := c.dev.framebuffers.Apply(key); err != nil {
		// The previous targets are resolved and the failed framebuffer is
		// gone, so fall back to the back buffer.
		c.bindBackBuffer()
		return err
	}
	if key.Len() > 1 {
		bufs := make([]gl.Enum, key.Len())
		for i := range bufs {
			bufs[i] = gl.Enum(gl.COLOR_ATTACHMENT0 + i)
		}
		c.f.DrawBuffers(bufs)
	}
	c.targets = key
	w, h := bindings[0].Target.Size()
	c.resetViewport(w, h)
	c.pipeline.MarkDirty(pipeline.DirtyRasterizer | pipeline.DirtyScissor | pipeline.DirtyViewport)
	c.metrics.TargetCount++
	return c.check("set render targets")
}

func mipmapped(k framebuffer.Key) bool {
	for i := range k.Len() {
		if k.At(i).Target.LevelCount() > 1 {
			return true
		}
	}
	return false
}

// RenderTargetCount returns the number of bound render targets, zero for
// the back buffer.
func (c *Context) RenderTargetCount() int { return c.targets.Len() }

// bindBackBuffer makes the default framebuffer current without resolving.
func (c *Context) bindBackBuffer() {
	c.f.BindFramebuffer(gl.FRAMEBUFFER, 0)
	c.targets = framebuffer.Key{}
	c.resetViewport(c.dev.backBufferW, c.dev.backBufferH)
	c.pipeline.MarkDirty(pipeline.DirtyRasterizer | pipeline.DirtyScissor | pipeline.DirtyViewport)
}

func (c *Context) resetViewport(w, h int) {
	c.pipeline.SetViewport(graphics.NewViewport(0, 0, w, h))
	c.pipeline.SetScissorRectangle(image.Rect(0, 0, w, h))
}

// surface describes the bound target for window-space conversions.
func (c *Context) surface() pipeline.Surface {
	return pipeline.Surface{
		Offscreen: c.targets.Len() > 0,
		Height:    c.dev.backBufferH,
	}
}

// Clear clears the buffers selected by opts within the viewport. The
// scissor rectangle, depth-stencil and blend states in effect are preserved.
func (c *Context) Clear(opts graphics.ClearOptions, color gputypes.Color, depth float32, stencil int32) error {
	if err := c.guard(); err != nil {
		return err
	}
	if err := c.acquire(); err != nil {
		return err
	}
	if err := c.pipeline.Clear(opts, color, depth, stencil, c.surface()); err != nil {
		return err
	}
	c.metrics.ClearCount++
	return nil
}

// Invalidate forgets every native value the context believes is set, so
// the next draw reissues all state. Call it after foreign code used the
// native context.
func (c *Context) Invalidate() error {
	if err := c.guard(); err != nil {
		return err
	}
	c.forgetNative(c.vertices.Enabled())
	return nil
}

// acquire makes c the context issuing native calls on its device. A
// context taking over from another forgets the native state it tracked and
// rebinds its own render targets.
func (c *Context) acquire() error {
	prev := c.dev.current
	c.dev.current = c
	if prev == nil || prev == c {
		return nil
	}
	c.forgetNative(prev.vertices.Enabled())
	if c.targets.Len() == 0 {
		c.f.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return nil
	}
	_, err := c.dev.framebuffers.Apply(c.targets)
	return err
}

// forgetNative discards the tracked native state, taking enabled as the
// set of enabled attribute arrays.
func (c *Context) forgetNative(enabled uint64) {
	c.pipeline.Invalidate()
	c.vertices.Assume(enabled)
	for i := range c.units.units {
		u := &c.units.units[i]
		u.target = 0
		u.object = 0
		if u.tex != nil {
			c.units.texDirty |= 1 << i
		}
	}
	c.units.active = -1
	c.indexKnown = false
	c.program = nil
	c.shadersDirty = true
	c.constantsDirty = 1<<maxConstantBuffers - 1
}

// Metrics returns the work counters.
func (c *Context) Metrics() Metrics { return c.metrics }

// ResetMetrics zeroes the work counters.
func (c *Context) ResetMetrics() { c.metrics = Metrics{} }
