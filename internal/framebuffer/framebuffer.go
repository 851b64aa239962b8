// Package framebuffer caches framebuffer objects keyed by render target
// binding sets, together with the companion framebuffers multisampled sets
// are resolved into.
package framebuffer

import (
	"log/slog"

	"github.com/gogpu/glrender/caps"
	"github.com/gogpu/glrender/gl"
)

// Cache maps binding sets to framebuffers. It is owned by a device and
// used only from the device's thread.
type Cache struct {
	f      gl.Functions
	caps   *caps.Table
	log    *slog.Logger
	checks bool

	primary map[Key]gl.Framebuffer
	resolve map[Key]gl.Framebuffer
}

// New creates an empty cache.
func New(f gl.Functions, t *caps.Table, log *slog.Logger, checks bool) *Cache {
	return &Cache{
		f:       f,
		caps:    t,
		log:     log,
		checks:  checks,
		primary: make(map[Key]gl.Framebuffer),
		resolve: make(map[Key]gl.Framebuffer),
	}
}

// Apply binds the framebuffer of k, creating and validating it on first
// use. A framebuffer that fails validation is deleted and not cached.
func (c *Cache) Apply(k Key) (gl.Framebuffer, error) {
	if fb, ok := c.primary[k]; ok {
		c.f.BindFramebuffer(gl.FRAMEBUFFER, fb)
		return fb, nil
	}
	fb, err := c.create(k, true)
	if err != nil {
		return 0, err
	}
	c.primary[k] = fb
	c.log.Debug("glrender: framebuffer created", "fbo", fb, "targets", k.Len())
	return fb, nil
}

func (c *Cache) create(k Key, multisample bool) (gl.Framebuffer, error) {
	f := c.f
	fb := f.CreateFramebuffer()
	f.BindFramebuffer(gl.FRAMEBUFFER, fb)

	if multisample {
		first := k.bindings[0].Target
		depth, stencil := first.DepthBuffer(), first.StencilBuffer()
		switch {
		case depth != 0 && depth == stencil:
			f.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, depth)
		default:
			if depth != 0 {
				f.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, depth)
			}
			if stencil != 0 {
				f.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.STENCIL_ATTACHMENT, gl.RENDERBUFFER, stencil)
			}
		}
	}

	for i := 0; i < k.n; i++ {
		b := k.bindings[i]
		att := gl.Enum(gl.COLOR_ATTACHMENT0 + i)
		if multisample && b.Target.MultiSampleCount() > 0 && b.Target.ColorBuffer() != 0 {
			f.FramebufferRenderbuffer(gl.FRAMEBUFFER, att, gl.RENDERBUFFER, b.Target.ColorBuffer())
			continue
		}
		attachTexture(f, att, b)
	}

	if err := completeness(f.CheckFramebufferStatus(gl.FRAMEBUFFER)); err != nil {
		f.DeleteFramebuffer(fb)
		c.log.Warn("glrender: framebuffer incomplete", "err", err)
		return 0, err
	}
	if c.checks {
		if err := gl.Check(f, "create framebuffer"); err != nil {
			f.DeleteFramebuffer(fb)
			return 0, err
		}
	}
	return fb, nil
}

func attachTexture(f gl.Functions, att gl.Enum, b Binding) {
	t := b.Target
	switch t.Kind() {
	case TextureCube:
		f.FramebufferTexture2D(gl.FRAMEBUFFER, att, gl.Enum(gl.TEXTURE_CUBE_MAP_POSITIVE_X+b.ArraySlice), t.Texture(), 0)
	case TextureArray:
		f.FramebufferTextureLayer(gl.FRAMEBUFFER, att, t.Texture(), 0, int32(b.ArraySlice))
	default:
		f.FramebufferTexture2D(gl.FRAMEBUFFER, att, gl.TEXTURE_2D, t.Texture(), 0)
	}
}

// Resolve finishes a render pass on k: multisampled color attachments are
// blitted into the resolve framebuffer and targets with more than one
// level get their mipmaps generated. Blits ignore everything but the
// scissor test, so an enabled scissor test is suspended around them.
func (c *Cache) Resolve(k Key, scissorEnabled bool) error {
	f := c.f
	if k.Multisampled() {
		src := c.primary[k]
		dst, ok := c.resolve[k]
		if !ok {
			var err error
			dst, err = c.create(k, false)
			if err != nil {
				return err
			}
			c.resolve[k] = dst
		}

		if scissorEnabled {
			f.Disable(gl.SCISSOR_TEST)
		}
		f.BindFramebuffer(gl.READ_FRAMEBUFFER, src)
		f.BindFramebuffer(gl.DRAW_FRAMEBUFFER, dst)
		bufs := make([]gl.Enum, k.n)
		discard := false
		for i := 0; i < k.n; i++ {
			t := k.bindings[i].Target
			w, h := t.Size()
			att := gl.Enum(gl.COLOR_ATTACHMENT0 + i)
			for j := range bufs {
				bufs[j] = gl.NONE
			}
			bufs[i] = att
			f.ReadBuffer(att)
			f.DrawBuffers(bufs)
			f.BlitFramebuffer(0, 0, int32(w), int32(h), 0, 0, int32(w), int32(h), gl.COLOR_BUFFER_BIT, gl.NEAREST)
			if t.Usage() == DiscardContents {
				discard = true
			}
		}
		if discard && c.caps.SupportsInvalidateFramebuffer {
			atts := make([]gl.Enum, 0, k.n+2)
			for i := 0; i < k.n; i++ {
				atts = append(atts, gl.Enum(gl.COLOR_ATTACHMENT0+i))
			}
			atts = append(atts, gl.DEPTH_ATTACHMENT, gl.STENCIL_ATTACHMENT)
			f.InvalidateFramebuffer(gl.READ_FRAMEBUFFER, atts)
		}
		if scissorEnabled {
			f.Enable(gl.SCISSOR_TEST)
		}
	}

	for i := 0; i < k.n; i++ {
		t := k.bindings[i].Target
		if t.LevelCount() <= 1 {
			continue
		}
		target := gl.Enum(gl.TEXTURE_2D)
		switch t.Kind() {
		case TextureCube:
			target = gl.TEXTURE_CUBE_MAP
		case TextureArray:
			target = gl.TEXTURE_2D_ARRAY
		}
		f.BindTexture(target, t.Texture())
		f.GenerateMipmap(target)
	}

	if c.checks {
		return gl.Check(f, "resolve render targets")
	}
	return nil
}

// Unbind deletes every framebuffer, primary or resolve, whose binding set
// references t. It must run before t's native objects are deleted.
func (c *Cache) Unbind(t Target) int {
	n := sweep(c.f, c.primary, t)
	n += sweep(c.f, c.resolve, t)
	if n > 0 {
		c.log.Debug("glrender: framebuffers released", "count", n)
	}
	return n
}

func sweep(f gl.Functions, m map[Key]gl.Framebuffer, t Target) int {
	n := 0
	for k, fb := range m {
		if k.References(t) {
			f.DeleteFramebuffer(fb)
			delete(m, k)
			n++
		}
	}
	return n
}

// Len returns the number of primary and resolve framebuffers.
func (c *Cache) Len() (primary, resolve int) {
	return len(c.primary), len(c.resolve)
}

// DestroyAll deletes every cached framebuffer.
func (c *Cache) DestroyAll() {
	for _, m := range []map[Key]gl.Framebuffer{c.primary, c.resolve} {
		for k, fb := range m {
			c.f.DeleteFramebuffer(fb)
			delete(m, k)
		}
	}
}
