package pipeline

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glrender/gl"
	"github.com/gogpu/glrender/graphics"
)

// clearDepthStencil keeps the stencil test enabled during Clear. Some
// drivers skip stencil clears while the test is disabled.
var clearDepthStencil = func() graphics.DepthStencilState {
	ds := graphics.DepthDefault
	ds.StencilEnable = true
	return ds
}()

// Clear clears the buffers selected by opts.
//
// Native clears obey the scissor rectangle and the color, depth and stencil
// write masks, so Clear forces a full-viewport scissor, a writable
// depth-stencil state and opaque blending, issues one native clear and then
// restores the three states through the setters. The restored groups are
// applied by the next Apply.
func (c *Cache) Clear(opts graphics.ClearOptions, color gputypes.Color, depth float32, stencil int32, s Surface) error {
	prevScissor := c.scissor
	prevDepthStencil := c.depthStencil
	prevBlend := c.blend

	c.SetScissorRectangle(c.viewport.Bounds())
	c.SetDepthStencilState(clearDepthStencil)
	c.SetBlendState(graphics.BlendOpaque)

	err := c.Apply(s)
	if err == nil {
		var mask gl.Enum
		if opts&graphics.ClearTarget != 0 {
			c.native.setClearColor(c.f, color)
			mask |= gl.COLOR_BUFFER_BIT
		}
		if opts&graphics.ClearDepth != 0 {
			c.native.setClearDepth(c.f, depth)
			mask |= gl.DEPTH_BUFFER_BIT
		}
		if opts&graphics.ClearStencil != 0 {
			c.native.setClearStencil(c.f, stencil)
			mask |= gl.STENCIL_BUFFER_BIT
		}
		if mask != 0 {
			c.f.Clear(mask)
		}
		err = c.check("clear")
	}

	c.SetScissorRectangle(prevScissor)
	c.SetDepthStencilState(prevDepthStencil)
	c.SetBlendState(prevBlend)
	return err
}
