package glrender

import (
	"fmt"
	"image"
	"runtime"
	"unsafe"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glrender/gl"
	"github.com/gogpu/glrender/graphics"
	"github.com/gogpu/glrender/internal/framebuffer"
	"github.com/gogpu/glrender/internal/glconv"
)

// Texture is a texture that can be bound to a texture slot: a *Texture2D or
// a *RenderTarget.
type Texture interface {
	base() *texture
}

// texture is the state shared by every texture kind.
type texture struct {
	dev    *Device
	handle gl.Texture
	target gl.Enum
	format glconv.TextureFormat
	width  int
	height int
	levels int

	// params is the sampler state last applied through texture
	// parameters, used when the driver lacks sampler objects.
	params    graphics.SamplerState
	paramsSet bool
	baseLevel int

	destroyed bool
}

func (t *texture) base() *texture { return t }

// Size returns the size of level 0.
func (t *texture) Size() (width, height int) { return t.width, t.height }

// LevelCount returns the number of mipmap levels.
func (t *texture) LevelCount() int { return t.levels }

func (t *texture) guard() error {
	if t.destroyed {
		return ErrDestroyed
	}
	return t.dev.guard()
}

// allocate defines storage for every level of the bound texture.
func (t *texture) allocate(layers int) {
	f := t.dev.f
	w, h := t.width, t.height
	for level := range t.levels {
		switch t.target {
		case gl.TEXTURE_CUBE_MAP:
			for face := range 6 {
				f.TexImage2D(gl.Enum(gl.TEXTURE_CUBE_MAP_POSITIVE_X+face), int32(level), t.format.InternalFormat,
					int32(w), int32(h), t.format.Format, t.format.Type, nil)
			}
		case gl.TEXTURE_2D_ARRAY:
			f.TexImage3D(gl.TEXTURE_2D_ARRAY, int32(level), t.format.InternalFormat,
				int32(w), int32(h), int32(layers), t.format.Format, t.format.Type, nil)
		default:
			f.TexImage2D(gl.TEXTURE_2D, int32(level), t.format.InternalFormat,
				int32(w), int32(h), t.format.Format, t.format.Type, nil)
		}
		w, h = max(w/2, 1), max(h/2, 1)
	}
}

// release deletes the native texture and drops every context reference.
func (t *texture) release() {
	t.dev.forget(func(c *Context) { c.units.forgetTexture(t) })
	t.dev.f.DeleteTexture(t.handle)
	t.destroyed = true
}

func levelCount(levels int) int {
	return max(levels, 1)
}

// Texture2D is a sampled 2D texture.
type Texture2D struct {
	texture
}

// NewTexture2D creates a texture with levels mipmap levels of undefined
// contents. Levels below one are treated as one.
func (d *Device) NewTexture2D(width, height, levels int, format gputypes.TextureFormat) (*Texture2D, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	tf, err := glconv.Texture(format)
	if err != nil {
		return nil, err
	}
	t := &Texture2D{texture{
		dev:    d,
		target: gl.TEXTURE_2D,
		format: tf,
		width:  width,
		height: height,
		levels: levelCount(levels),
	}}
	t.handle = d.f.CreateTexture()
	d.bindScratch(gl.TEXTURE_2D, t.handle)
	t.allocate(1)
	if err := d.check("create texture"); err != nil {
		d.f.DeleteTexture(t.handle)
		return nil, err
	}
	return t, nil
}

// Destroy deletes the texture and unbinds it from every context.
func (t *Texture2D) Destroy() error {
	if err := t.guard(); err != nil {
		return err
	}
	t.release()
	return nil
}

// SetTextureData uploads pixels into rectangle r of a level. An empty r
// covers the whole level. The pixel slice is pinned for the duration of
// the native call.
func SetTextureData[P any](t *Texture2D, level int, r image.Rectangle, pixels []P) error {
	if err := t.guard(); err != nil {
		return err
	}
	if level < 0 || level >= t.levels {
		return fmt.Errorf("glrender: texture level %d out of range [0, %d)", level, t.levels)
	}
	if r.Empty() {
		r = image.Rect(0, 0, max(t.width>>level, 1), max(t.height>>level, 1))
	}
	if len(pixels) == 0 {
		return nil
	}
	var pin runtime.Pinner
	pin.Pin(&pixels[0])
	defer pin.Unpin()

	f := t.dev.f
	t.dev.bindScratch(gl.TEXTURE_2D, t.handle)
	f.TexSubImage2D(gl.TEXTURE_2D, int32(level), int32(r.Min.X), int32(r.Min.Y), int32(r.Dx()), int32(r.Dy()),
		t.format.Format, t.format.Type, unsafe.Pointer(&pixels[0]))
	f.Finish()
	return t.dev.check("set texture data")
}

// RenderTargetKind is the texture type backing a render target.
type RenderTargetKind = framebuffer.Kind

const (
	RenderTarget2D    = framebuffer.Texture2D
	RenderTargetCube  = framebuffer.TextureCube
	RenderTargetArray = framebuffer.TextureArray
)

// RenderTargetUsage selects what happens to multisampled contents after
// they are resolved.
type RenderTargetUsage = framebuffer.Usage

const (
	PreserveContents = framebuffer.PreserveContents
	DiscardContents  = framebuffer.DiscardContents
)

// DepthFormat is the format of a render target's depth-stencil buffer.
type DepthFormat uint8

const (
	DepthFormatNone DepthFormat = iota
	DepthFormat16
	DepthFormat24
	DepthFormat32Float
	DepthFormat24Stencil8
)

func (f DepthFormat) native() gl.Enum {
	switch f {
	case DepthFormat16:
		return gl.DEPTH_COMPONENT16
	case DepthFormat24:
		return gl.DEPTH_COMPONENT24
	case DepthFormat32Float:
		return gl.DEPTH_COMPONENT32F
	case DepthFormat24Stencil8:
		return gl.DEPTH24_STENCIL8
	}
	return gl.NONE
}

// RenderTargetDescriptor describes a render target.
type RenderTargetDescriptor struct {
	Kind          RenderTargetKind
	Width, Height int

	// Layers is the layer count of array targets.
	Layers int
	Levels int
	Format gputypes.TextureFormat
	Depth  DepthFormat

	// MultiSampleCount above one renders into a multisampled color buffer
	// that is resolved into the texture when the target is unbound.
	MultiSampleCount int
	Usage            RenderTargetUsage
}

// RenderTarget is a texture that can be rendered to and sampled.
type RenderTarget struct {
	texture
	kind    RenderTargetKind
	layers  int
	samples int
	usage   RenderTargetUsage

	color   gl.Renderbuffer
	depth   gl.Renderbuffer
	stencil gl.Renderbuffer
}

var _ framebuffer.Target = (*RenderTarget)(nil)

// NewRenderTarget creates a render target.
func (d *Device) NewRenderTarget(desc RenderTargetDescriptor) (*RenderTarget, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	tf, err := glconv.Texture(desc.Format)
	if err != nil {
		return nil, err
	}
	samples := 0
	if desc.MultiSampleCount > 1 {
		if !d.caps.SupportsMultisampling || d.caps.MaxSamples < 2 {
			return nil, fmt.Errorf("%w: multisampled render targets", ErrNotSupported)
		}
		samples = min(desc.MultiSampleCount, d.caps.MaxSamples)
	}

	target := gl.Enum(gl.TEXTURE_2D)
	layers := 1
	switch desc.Kind {
	case RenderTargetCube:
		target = gl.TEXTURE_CUBE_MAP
		layers = 6
	case RenderTargetArray:
		target = gl.TEXTURE_2D_ARRAY
		layers = max(desc.Layers, 1)
	}

	rt := &RenderTarget{
		texture: texture{
			dev:    d,
			target: target,
			format: tf,
			width:  desc.Width,
			height: desc.Height,
			levels: levelCount(desc.Levels),
		},
		kind:    desc.Kind,
		layers:  layers,
		samples: samples,
		usage:   desc.Usage,
	}
	f := d.f
	rt.handle = f.CreateTexture()
	d.bindScratch(target, rt.handle)
	rt.allocate(layers)

	if samples > 0 {
		rt.color = f.CreateRenderbuffer()
		f.BindRenderbuffer(rt.color)
		f.RenderbufferStorageMultisample(int32(samples), tf.InternalFormat, int32(desc.Width), int32(desc.Height))
	}
	if desc.Depth != DepthFormatNone {
		rt.depth = f.CreateRenderbuffer()
		f.BindRenderbuffer(rt.depth)
		f.RenderbufferStorageMultisample(int32(samples), desc.Depth.native(), int32(desc.Width), int32(desc.Height))
		if desc.Depth == DepthFormat24Stencil8 {
			rt.stencil = rt.depth
		}
	}
	if err := d.check("create render target"); err != nil {
		rt.deleteNative()
		f.DeleteTexture(rt.handle)
		return nil, err
	}
	return rt, nil
}

func (rt *RenderTarget) Texture() gl.Texture            { return rt.handle }
func (rt *RenderTarget) Kind() RenderTargetKind         { return rt.kind }
func (rt *RenderTarget) ColorBuffer() gl.Renderbuffer   { return rt.color }
func (rt *RenderTarget) DepthBuffer() gl.Renderbuffer   { return rt.depth }
func (rt *RenderTarget) StencilBuffer() gl.Renderbuffer { return rt.stencil }
func (rt *RenderTarget) MultiSampleCount() int          { return rt.samples }
func (rt *RenderTarget) Usage() RenderTargetUsage       { return rt.usage }
func (rt *RenderTarget) Layers() int                    { return rt.layers }

// Destroy releases every framebuffer that references the target, resets
// contexts rendering to it to the back buffer and deletes its native objects.
func (rt *RenderTarget) Destroy() error {
	if err := rt.guard(); err != nil {
		return err
	}
	d := rt.dev
	d.framebuffers.Unbind(rt)
	d.forget(func(c *Context) {
		if c.targets.References(rt) {
			c.bindBackBuffer()
		}
	})
	rt.deleteNative()
	rt.release()
	return nil
}

func (rt *RenderTarget) deleteNative() {
	f := rt.dev.f
	if rt.color != 0 {
		f.DeleteRenderbuffer(rt.color)
	}
	if rt.depth != 0 {
		f.DeleteRenderbuffer(rt.depth)
	}
	if rt.stencil != 0 && rt.stencil != rt.depth {
		f.DeleteRenderbuffer(rt.stencil)
	}
	rt.color, rt.depth, rt.stencil = 0, 0, 0
}

// BufferUsage is a hint on how often buffer contents change.
type BufferUsage uint8

const (
	BufferStatic BufferUsage = iota
	BufferDynamic
	BufferStream
)

func (u BufferUsage) native() gl.Enum {
	switch u {
	case BufferDynamic:
		return gl.DYNAMIC_DRAW
	case BufferStream:
		return gl.STREAM_DRAW
	}
	return gl.STATIC_DRAW
}

// VertexBuffer holds vertices of one declaration.
type VertexBuffer struct {
	dev       *Device
	handle    gl.Buffer
	decl      *graphics.VertexDeclaration
	count     int
	destroyed bool
}

// NewVertexBuffer creates a buffer for count vertices of decl.
func (d *Device) NewVertexBuffer(decl *graphics.VertexDeclaration, count int, usage BufferUsage) (*VertexBuffer, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	vb := &VertexBuffer{dev: d, decl: decl, count: count}
	vb.handle = d.f.CreateBuffer()
	d.f.BindBuffer(gl.ARRAY_BUFFER, vb.handle)
	d.f.BufferData(gl.ARRAY_BUFFER, count*decl.Stride(), nil, usage.native())
	if err := d.check("create vertex buffer"); err != nil {
		d.f.DeleteBuffer(vb.handle)
		return nil, err
	}
	return vb, nil
}

// Declaration returns the buffer's vertex declaration.
func (vb *VertexBuffer) Declaration() *graphics.VertexDeclaration { return vb.decl }

// VertexCount returns the buffer capacity in vertices.
func (vb *VertexBuffer) VertexCount() int { return vb.count }

func (vb *VertexBuffer) guard() error {
	if vb.destroyed {
		return ErrDestroyed
	}
	return vb.dev.guard()
}

// Destroy deletes the buffer. Cached attribute bindings of every context
// are dropped since the native name may be reused.
func (vb *VertexBuffer) Destroy() error {
	if err := vb.guard(); err != nil {
		return err
	}
	vb.dev.forget(func(c *Context) { c.vertices.Invalidate() })
	vb.dev.f.DeleteBuffer(vb.handle)
	vb.destroyed = true
	return nil
}

// SetVertexData uploads vertices starting at vertex index offset.
func SetVertexData[V any](vb *VertexBuffer, offset int, vertices []V) error {
	if err := vb.guard(); err != nil {
		return err
	}
	if len(vertices) == 0 {
		return nil
	}
	size := len(vertices) * int(unsafe.Sizeof(vertices[0]))
	start := offset * vb.decl.Stride()
	if start+size > vb.count*vb.decl.Stride() {
		return fmt.Errorf("glrender: %d bytes at offset %d overflow a %d-byte vertex buffer",
			size, start, vb.count*vb.decl.Stride())
	}
	var pin runtime.Pinner
	pin.Pin(&vertices[0])
	defer pin.Unpin()

	f := vb.dev.f
	f.BindBuffer(gl.ARRAY_BUFFER, vb.handle)
	f.BufferSubData(gl.ARRAY_BUFFER, start, size, unsafe.Pointer(&vertices[0]))
	return vb.dev.check("set vertex data")
}

// IndexBuffer holds 16- or 32-bit indices.
type IndexBuffer struct {
	dev       *Device
	handle    gl.Buffer
	typ       gl.Enum
	size      int
	count     int
	destroyed bool
}

// NewIndexBuffer creates a buffer for count indices of format.
func (d *Device) NewIndexBuffer(format gputypes.IndexFormat, count int, usage BufferUsage) (*IndexBuffer, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	typ, size, err := glconv.IndexType(format)
	if err != nil {
		return nil, err
	}
	ib := &IndexBuffer{dev: d, typ: typ, size: size, count: count}
	ib.handle = d.f.CreateBuffer()
	d.bindIndexScratch(ib.handle)
	d.f.BufferData(gl.ELEMENT_ARRAY_BUFFER, count*size, nil, usage.native())
	if err := d.check("create index buffer"); err != nil {
		d.f.DeleteBuffer(ib.handle)
		return nil, err
	}
	return ib, nil
}

// IndexCount returns the buffer capacity in indices.
func (ib *IndexBuffer) IndexCount() int { return ib.count }

func (ib *IndexBuffer) guard() error {
	if ib.destroyed {
		return ErrDestroyed
	}
	return ib.dev.guard()
}

// Destroy deletes the buffer and unbinds it from every context.
func (ib *IndexBuffer) Destroy() error {
	if err := ib.guard(); err != nil {
		return err
	}
	ib.dev.forget(func(c *Context) {
		if c.indexBuffer == ib {
			c.indexBuffer = nil
		}
		c.indexKnown = false
	})
	ib.dev.f.DeleteBuffer(ib.handle)
	ib.destroyed = true
	return nil
}

// SetIndexData uploads indices starting at index offset. The element size
// must match the buffer format.
func SetIndexData[I uint16 | uint32](ib *IndexBuffer, offset int, indices []I) error {
	if err := ib.guard(); err != nil {
		return err
	}
	if len(indices) == 0 {
		return nil
	}
	elem := int(unsafe.Sizeof(indices[0]))
	if elem != ib.size {
		return fmt.Errorf("glrender: %d-byte indices for a %d-byte index buffer", elem, ib.size)
	}
	if offset+len(indices) > ib.count {
		return fmt.Errorf("glrender: %d indices at offset %d overflow a %d-index buffer", len(indices), offset, ib.count)
	}
	var pin runtime.Pinner
	pin.Pin(&indices[0])
	defer pin.Unpin()

	ib.dev.bindIndexScratch(ib.handle)
	ib.dev.f.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, offset*elem, len(indices)*elem, unsafe.Pointer(&indices[0]))
	return ib.dev.check("set index data")
}

// bindIndexScratch binds b as the element buffer for an upload. Contexts
// rebind their index buffer on the next indexed draw.
func (d *Device) bindIndexScratch(b gl.Buffer) {
	d.f.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b)
	for _, c := range d.contexts {
		c.indexKnown = false
	}
}
