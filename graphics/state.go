package graphics

import (
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glrender/caps"
)

// MaxRenderTargets is the number of per-target blend slots in a BlendState.
const MaxRenderTargets = caps.MaxRenderTargets

// BlendComponent describes a blend component (color or alpha).
type BlendComponent struct {
	// SrcFactor is the source blend factor.
	SrcFactor gputypes.BlendFactor

	// DstFactor is the destination blend factor.
	DstFactor gputypes.BlendFactor

	// Operation is the blend operation.
	Operation gputypes.BlendOperation
}

// replace is the component that writes the source unchanged.
var replace = BlendComponent{
	SrcFactor: gputypes.BlendFactorOne,
	DstFactor: gputypes.BlendFactorZero,
	Operation: gputypes.BlendOperationAdd,
}

// TargetBlendState is the blend configuration of one color target.
type TargetBlendState struct {
	Color     BlendComponent
	Alpha     BlendComponent
	WriteMask gputypes.ColorWriteMask
}

// Enabled reports whether blending must be enabled for the target.
func (t TargetBlendState) Enabled() bool {
	return t.Color != replace || t.Alpha != replace
}

// BlendState is the blend configuration of all bound color targets.
// Unless IndependentBlendEnable is set, Targets[0] applies to every target.
type BlendState struct {
	Targets                [MaxRenderTargets]TargetBlendState
	IndependentBlendEnable bool
}

// NewBlendState returns a BlendState applying t to every target.
func NewBlendState(t TargetBlendState) BlendState {
	var bs BlendState
	for i := range bs.Targets {
		bs.Targets[i] = t
	}
	return bs
}

// Predefined blend states.
var (
	BlendOpaque = NewBlendState(TargetBlendState{
		Color:     replace,
		Alpha:     replace,
		WriteMask: gputypes.ColorWriteMaskAll,
	})

	// BlendAlpha blends premultiplied-alpha sources.
	BlendAlpha = NewBlendState(TargetBlendState{
		Color:     BlendComponent{gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha, gputypes.BlendOperationAdd},
		Alpha:     BlendComponent{gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha, gputypes.BlendOperationAdd},
		WriteMask: gputypes.ColorWriteMaskAll,
	})

	BlendAdditive = NewBlendState(TargetBlendState{
		Color:     BlendComponent{gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOne, gputypes.BlendOperationAdd},
		Alpha:     BlendComponent{gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOne, gputypes.BlendOperationAdd},
		WriteMask: gputypes.ColorWriteMaskAll,
	})

	BlendNonPremultiplied = NewBlendState(TargetBlendState{
		Color:     BlendComponent{gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha, gputypes.BlendOperationAdd},
		Alpha:     BlendComponent{gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha, gputypes.BlendOperationAdd},
		WriteMask: gputypes.ColorWriteMaskAll,
	})
)

// DepthStencilState configures depth and stencil testing.
type DepthStencilState struct {
	DepthBufferEnable      bool
	DepthBufferWriteEnable bool
	DepthBufferFunction    gputypes.CompareFunction

	StencilEnable bool

	// TwoSidedStencilMode uses StencilBack for back faces. Otherwise
	// StencilFront applies to both faces.
	TwoSidedStencilMode bool
	StencilFront        hal.StencilFaceState
	StencilBack         hal.StencilFaceState
	ReferenceStencil    int32
	StencilReadMask     uint32
	StencilWriteMask    uint32
}

var keepAlways = hal.StencilFaceState{
	Compare:     gputypes.CompareFunctionAlways,
	FailOp:      hal.StencilOperationKeep,
	DepthFailOp: hal.StencilOperationKeep,
	PassOp:      hal.StencilOperationKeep,
}

// Predefined depth-stencil states.
var (
	DepthDefault = DepthStencilState{
		DepthBufferEnable:      true,
		DepthBufferWriteEnable: true,
		DepthBufferFunction:    gputypes.CompareFunctionLessEqual,
		StencilFront:           keepAlways,
		StencilBack:            keepAlways,
		StencilReadMask:        0xFFFFFFFF,
		StencilWriteMask:       0xFFFFFFFF,
	}

	DepthRead = DepthStencilState{
		DepthBufferEnable:   true,
		DepthBufferFunction: gputypes.CompareFunctionLessEqual,
		StencilFront:        keepAlways,
		StencilBack:         keepAlways,
		StencilReadMask:     0xFFFFFFFF,
		StencilWriteMask:    0xFFFFFFFF,
	}

	DepthNone = DepthStencilState{
		DepthBufferFunction: gputypes.CompareFunctionLessEqual,
		StencilFront:        keepAlways,
		StencilBack:         keepAlways,
		StencilReadMask:     0xFFFFFFFF,
		StencilWriteMask:    0xFFFFFFFF,
	}
)

// RasterizerState configures primitive rasterization.
type RasterizerState struct {
	CullMode  gputypes.CullMode
	FrontFace gputypes.FrontFace

	ScissorTestEnable    bool
	MultiSampleAntiAlias bool

	DepthBias           float32
	SlopeScaleDepthBias float32
}

// Predefined rasterizer states.
var (
	CullNone = RasterizerState{
		CullMode:             gputypes.CullModeNone,
		FrontFace:            gputypes.FrontFaceCCW,
		MultiSampleAntiAlias: true,
	}

	// CullClockwise culls clockwise-wound triangles.
	CullClockwise = RasterizerState{
		CullMode:             gputypes.CullModeBack,
		FrontFace:            gputypes.FrontFaceCCW,
		MultiSampleAntiAlias: true,
	}

	// CullCounterClockwise culls counter-clockwise-wound triangles.
	CullCounterClockwise = RasterizerState{
		CullMode:             gputypes.CullModeBack,
		FrontFace:            gputypes.FrontFaceCW,
		MultiSampleAntiAlias: true,
	}
)

// Viewport is the render-target area primitives are mapped to.
type Viewport struct {
	X, Y, Width, Height int
	MinDepth, MaxDepth  float32
}

// NewViewport returns a viewport with the full [0, 1] depth range.
func NewViewport(x, y, width, height int) Viewport {
	return Viewport{X: x, Y: y, Width: width, Height: height, MaxDepth: 1}
}

// Bounds returns the viewport rectangle.
func (v Viewport) Bounds() image.Rectangle {
	return image.Rect(v.X, v.Y, v.X+v.Width, v.Y+v.Height)
}

// ClearOptions selects the buffers a clear affects.
type ClearOptions uint8

const (
	ClearTarget ClearOptions = 1 << iota
	ClearDepth
	ClearStencil

	ClearAll = ClearTarget | ClearDepth | ClearStencil
)
