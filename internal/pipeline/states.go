package pipeline

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glrender/caps"
	"github.com/gogpu/glrender/gl"
	"github.com/gogpu/glrender/graphics"
	"github.com/gogpu/glrender/internal/glconv"
)

func (c *Cache) applyBlend() error {
	bs := c.blend
	if bs.IndependentBlendEnable && !c.caps.SupportsSeparateBlendStates {
		return fmt.Errorf("%w: independent blend states", caps.ErrNotSupported)
	}

	enabled := false
	n := 1
	if bs.IndependentBlendEnable {
		n = c.caps.MaxRenderTargets
	}
	for i := 0; i < n; i++ {
		if bs.Targets[i].Enabled() {
			enabled = true
			break
		}
	}
	c.native.enable(c.f, gl.BLEND, enabled)

	if !bs.IndependentBlendEnable {
		t := bs.Targets[0]
		c.native.setBlendFunc(c.f, -1, blendFunc(t))
		c.native.setBlendEquation(c.f, -1, blendEquation(t))
		c.native.setColorMask(c.f, -1, colorMask(t.WriteMask))
		return nil
	}
	for i := 0; i < n; i++ {
		t := bs.Targets[i]
		c.native.setBlendFunc(c.f, i, blendFunc(t))
		c.native.setBlendEquation(c.f, i, blendEquation(t))
		c.native.setColorMask(c.f, i, colorMask(t.WriteMask))
	}
	return nil
}

func blendFunc(t graphics.TargetBlendState) [4]gl.Enum {
	return [4]gl.Enum{
		glconv.BlendFactor(t.Color.SrcFactor),
		glconv.BlendFactor(t.Color.DstFactor),
		glconv.BlendFactor(t.Alpha.SrcFactor),
		glconv.BlendFactor(t.Alpha.DstFactor),
	}
}

func blendEquation(t graphics.TargetBlendState) [2]gl.Enum {
	return [2]gl.Enum{
		glconv.BlendOperation(t.Color.Operation),
		glconv.BlendOperation(t.Alpha.Operation),
	}
}

func colorMask(m gputypes.ColorWriteMask) [4]bool {
	return [4]bool{
		m&gputypes.ColorWriteMaskRed != 0,
		m&gputypes.ColorWriteMaskGreen != 0,
		m&gputypes.ColorWriteMaskBlue != 0,
		m&gputypes.ColorWriteMaskAlpha != 0,
	}
}

// applyDepthStencil sets the depth and stencil masks even when the tests
// are disabled because they also gate Clear.
func (c *Cache) applyDepthStencil() {
	ds := c.depthStencil
	c.native.enable(c.f, gl.DEPTH_TEST, ds.DepthBufferEnable)
	c.native.setDepthMask(c.f, ds.DepthBufferWriteEnable)
	c.native.setDepthFunc(c.f, glconv.CompareFunction(ds.DepthBufferFunction))

	c.native.enable(c.f, gl.STENCIL_TEST, ds.StencilEnable)
	c.native.setStencilMask(c.f, ds.StencilWriteMask)
	if !ds.StencilEnable {
		return
	}
	back := ds.StencilFront
	if ds.TwoSidedStencilMode {
		back = ds.StencilBack
	}
	c.native.setStencilFace(c.f, faceFront, stencilFace(ds.StencilFront, ds.ReferenceStencil, ds.StencilReadMask))
	c.native.setStencilFace(c.f, faceBack, stencilFace(back, ds.ReferenceStencil, ds.StencilReadMask))
}

func stencilFace(s hal.StencilFaceState, ref int32, mask uint32) stencilState {
	return stencilState{
		fn:    glconv.CompareFunction(s.Compare),
		ref:   ref,
		mask:  mask,
		fail:  glconv.StencilOperation(s.FailOp),
		zfail: glconv.StencilOperation(s.DepthFailOp),
		zpass: glconv.StencilOperation(s.PassOp),
		valid: true,
	}
}

// applyRasterizer maps winding to the native convention. Offscreen
// rendering is vertically flipped, which inverts the winding.
func (c *Cache) applyRasterizer(s Surface) {
	rs := c.rasterizer
	switch rs.CullMode {
	case gputypes.CullModeNone:
		c.native.enable(c.f, gl.CULL_FACE, false)
	case gputypes.CullModeFront:
		c.native.enable(c.f, gl.CULL_FACE, true)
		c.native.setCullFace(c.f, gl.FRONT)
	default:
		c.native.enable(c.f, gl.CULL_FACE, true)
		c.native.setCullFace(c.f, gl.BACK)
	}

	ccw := rs.FrontFace != gputypes.FrontFaceCW
	if s.Offscreen {
		ccw = !ccw
	}
	if ccw {
		c.native.setFrontFace(c.f, gl.CCW)
	} else {
		c.native.setFrontFace(c.f, gl.CW)
	}

	c.native.enable(c.f, gl.SCISSOR_TEST, rs.ScissorTestEnable)

	offset := rs.DepthBias != 0 || rs.SlopeScaleDepthBias != 0
	c.native.enable(c.f, gl.POLYGON_OFFSET_FILL, offset)
	if offset {
		c.native.setPolygonOffset(c.f, [2]float32{rs.SlopeScaleDepthBias, rs.DepthBias})
	}

	if !c.caps.GLES && c.caps.SupportsMultisampling {
		c.native.enable(c.f, gl.MULTISAMPLE, rs.MultiSampleAntiAlias)
	}
}
