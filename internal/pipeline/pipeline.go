// Package pipeline caches blend, depth-stencil, rasterizer, scissor and
// viewport state and applies only what changed since the last draw.
//
// Setters compare by value and record a dirty bit; no native call is made
// until Apply. A shadow of the native values suppresses individual calls
// that would set what the driver already holds.
package pipeline

import (
	"image"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glrender/caps"
	"github.com/gogpu/glrender/gl"
	"github.com/gogpu/glrender/graphics"
)

// Dirty is a set of state groups awaiting Apply.
type Dirty uint8

const (
	DirtyBlend Dirty = 1 << iota
	DirtyBlendFactor
	DirtyDepthStencil
	DirtyRasterizer
	DirtyScissor
	DirtyViewport

	DirtyAll = DirtyBlend | DirtyBlendFactor | DirtyDepthStencil | DirtyRasterizer | DirtyScissor | DirtyViewport
)

// Surface describes the render destination Apply maps coordinates to.
type Surface struct {
	// Offscreen is set when a framebuffer object is bound.
	Offscreen bool

	// Height is the back buffer height used to flip window coordinates.
	Height int
}

// Cache is the pipeline state snapshot of one context.
type Cache struct {
	f      gl.Functions
	caps   *caps.Table
	log    *slog.Logger
	checks bool

	blend        graphics.BlendState
	blendFactor  gputypes.Color
	depthStencil graphics.DepthStencilState
	rasterizer   graphics.RasterizerState
	scissor      image.Rectangle
	viewport     graphics.Viewport
	dirty        Dirty

	native shadow
}

// New returns a cache holding the default state with every group dirty.
func New(f gl.Functions, t *caps.Table, log *slog.Logger, checks bool) *Cache {
	return &Cache{
		f:            f,
		caps:         t,
		log:          log,
		checks:       checks,
		blend:        graphics.BlendOpaque,
		blendFactor:  gputypes.Color{R: 1, G: 1, B: 1, A: 1},
		depthStencil: graphics.DepthDefault,
		rasterizer:   graphics.CullCounterClockwise,
		viewport:     graphics.NewViewport(0, 0, 0, 0),
		dirty:        DirtyAll,
		native:       newShadow(),
	}
}

// Dirty returns the groups awaiting Apply.
func (c *Cache) Dirty() Dirty { return c.dirty }

// MarkDirty forces the given groups to be re-applied, for example after
// the render destination changed between window and offscreen.
func (c *Cache) MarkDirty(d Dirty) { c.dirty |= d }

// Invalidate forgets the shadowed native values so the next Apply reissues
// every call. Use it after foreign code touched the native context.
func (c *Cache) Invalidate() {
	c.native = newShadow()
	c.dirty = DirtyAll
}

func (c *Cache) BlendState() graphics.BlendState               { return c.blend }
func (c *Cache) BlendFactor() gputypes.Color                   { return c.blendFactor }
func (c *Cache) DepthStencilState() graphics.DepthStencilState { return c.depthStencil }
func (c *Cache) RasterizerState() graphics.RasterizerState     { return c.rasterizer }
func (c *Cache) ScissorRectangle() image.Rectangle             { return c.scissor }
func (c *Cache) Viewport() graphics.Viewport                   { return c.viewport }

// SetBlendState records a blend state.
func (c *Cache) SetBlendState(bs graphics.BlendState) {
	if bs != c.blend {
		c.blend = bs
		c.dirty |= DirtyBlend
	}
}

// SetBlendFactor records the constant blend color.
func (c *Cache) SetBlendFactor(col gputypes.Color) {
	if col != c.blendFactor {
		c.blendFactor = col
		c.dirty |= DirtyBlendFactor
	}
}

// SetDepthStencilState records a depth-stencil state.
func (c *Cache) SetDepthStencilState(ds graphics.DepthStencilState) {
	if ds != c.depthStencil {
		c.depthStencil = ds
		c.dirty |= DirtyDepthStencil
	}
}

// SetRasterizerState records a rasterizer state.
func (c *Cache) SetRasterizerState(rs graphics.RasterizerState) {
	if rs != c.rasterizer {
		c.rasterizer = rs
		c.dirty |= DirtyRasterizer
	}
}

// SetScissorRectangle records the scissor rectangle in top-left origin
// coordinates.
func (c *Cache) SetScissorRectangle(r image.Rectangle) {
	if r != c.scissor {
		c.scissor = r
		c.dirty |= DirtyScissor
	}
}

// SetViewport records the viewport.
func (c *Cache) SetViewport(vp graphics.Viewport) {
	if vp != c.viewport {
		c.viewport = vp
		c.dirty |= DirtyViewport
	}
}

// Apply issues the native calls for every dirty group in the order blend,
// blend factor, depth-stencil, rasterizer, scissor, viewport, and clears
// the applied bits. On error the failing group stays dirty.
func (c *Cache) Apply(s Surface) error {
	if c.dirty&DirtyBlend != 0 {
		if err := c.applyBlend(); err != nil {
			return err
		}
		if err := c.check("apply blend state"); err != nil {
			return err
		}
		c.dirty &^= DirtyBlend
	}
	if c.dirty&DirtyBlendFactor != 0 {
		c.native.setBlendColor(c.f, c.blendFactor)
		if err := c.check("apply blend factor"); err != nil {
			return err
		}
		c.dirty &^= DirtyBlendFactor
	}
	if c.dirty&DirtyDepthStencil != 0 {
		c.applyDepthStencil()
		if err := c.check("apply depth-stencil state"); err != nil {
			return err
		}
		c.dirty &^= DirtyDepthStencil
	}
	if c.dirty&DirtyRasterizer != 0 {
		c.applyRasterizer(s)
		if err := c.check("apply rasterizer state"); err != nil {
			return err
		}
		c.dirty &^= DirtyRasterizer
	}
	if c.dirty&DirtyScissor != 0 {
		r := c.scissor
		y := r.Min.Y
		if !s.Offscreen {
			y = s.Height - r.Max.Y
		}
		c.native.setScissor(c.f, [4]int32{int32(r.Min.X), int32(y), int32(r.Dx()), int32(r.Dy())})
		if err := c.check("apply scissor rectangle"); err != nil {
			return err
		}
		c.dirty &^= DirtyScissor
	}
	if c.dirty&DirtyViewport != 0 {
		vp := c.viewport
		y := vp.Y
		if !s.Offscreen {
			y = s.Height - vp.Y - vp.Height
		}
		c.native.setViewport(c.f, [4]int32{int32(vp.X), int32(y), int32(vp.Width), int32(vp.Height)})
		c.native.setDepthRange(c.f, [2]float32{vp.MinDepth, vp.MaxDepth})
		if err := c.check("apply viewport"); err != nil {
			return err
		}
		c.dirty &^= DirtyViewport
	}
	return nil
}

// ScissorTestActive reports whether the native scissor test may be on.
// It is false only when the test is known to be disabled, so it reflects
// what was issued rather than the pending rasterizer state.
func (c *Cache) ScissorTestActive() bool {
	return !c.native.known[gl.SCISSOR_TEST] || c.native.on[gl.SCISSOR_TEST]
}

func (c *Cache) check(op string) error {
	if !c.checks {
		return nil
	}
	return gl.Check(c.f, op)
}
