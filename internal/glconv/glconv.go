// Package glconv maps gputypes/hal descriptor enums to native GL enums.
package glconv

import (
	"errors"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glrender/gl"
)

// Conversion errors.
var (
	// ErrInvalidPrimitive is returned for topologies without a native mode.
	ErrInvalidPrimitive = errors.New("glrender: invalid primitive type")

	// ErrInvalidIndexFormat is returned for unknown index formats.
	ErrInvalidIndexFormat = errors.New("glrender: invalid index format")

	// ErrUnsupportedFormat is returned for texture formats without a native mapping.
	ErrUnsupportedFormat = errors.New("glrender: unsupported texture format")
)

// BlendFactor returns the native blend factor.
func BlendFactor(f gputypes.BlendFactor) gl.Enum {
	switch f {
	case gputypes.BlendFactorZero:
		return gl.ZERO
	case gputypes.BlendFactorOne:
		return gl.ONE
	case gputypes.BlendFactorSrc:
		return gl.SRC_COLOR
	case gputypes.BlendFactorOneMinusSrc:
		return gl.ONE_MINUS_SRC_COLOR
	case gputypes.BlendFactorSrcAlpha:
		return gl.SRC_ALPHA
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case gputypes.BlendFactorDst:
		return gl.DST_COLOR
	case gputypes.BlendFactorOneMinusDst:
		return gl.ONE_MINUS_DST_COLOR
	case gputypes.BlendFactorDstAlpha:
		return gl.DST_ALPHA
	case gputypes.BlendFactorOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	case gputypes.BlendFactorSrcAlphaSaturated:
		return gl.SRC_ALPHA_SATURATE
	case gputypes.BlendFactorConstant:
		return gl.CONSTANT_COLOR
	case gputypes.BlendFactorOneMinusConstant:
		return gl.ONE_MINUS_CONSTANT_COLOR
	}
	return gl.ONE
}

// BlendOperation returns the native blend equation.
func BlendOperation(op gputypes.BlendOperation) gl.Enum {
	switch op {
	case gputypes.BlendOperationSubtract:
		return gl.FUNC_SUBTRACT
	case gputypes.BlendOperationReverseSubtract:
		return gl.FUNC_REVERSE_SUBTRACT
	case gputypes.BlendOperationMin:
		return gl.MIN
	case gputypes.BlendOperationMax:
		return gl.MAX
	}
	return gl.FUNC_ADD
}

// CompareFunction returns the native comparison function.
func CompareFunction(fn gputypes.CompareFunction) gl.Enum {
	switch fn {
	case gputypes.CompareFunctionNever:
		return gl.NEVER
	case gputypes.CompareFunctionLess:
		return gl.LESS
	case gputypes.CompareFunctionEqual:
		return gl.EQUAL
	case gputypes.CompareFunctionLessEqual:
		return gl.LEQUAL
	case gputypes.CompareFunctionGreater:
		return gl.GREATER
	case gputypes.CompareFunctionNotEqual:
		return gl.NOTEQUAL
	case gputypes.CompareFunctionGreaterEqual:
		return gl.GEQUAL
	}
	return gl.ALWAYS
}

// StencilOperation returns the native stencil operation.
func StencilOperation(op hal.StencilOperation) gl.Enum {
	switch op {
	case hal.StencilOperationZero:
		return gl.ZERO
	case hal.StencilOperationReplace:
		return gl.REPLACE
	case hal.StencilOperationInvert:
		return gl.INVERT
	case hal.StencilOperationIncrementClamp:
		return gl.INCR
	case hal.StencilOperationDecrementClamp:
		return gl.DECR
	case hal.StencilOperationIncrementWrap:
		return gl.INCR_WRAP
	case hal.StencilOperationDecrementWrap:
		return gl.DECR_WRAP
	}
	return gl.KEEP
}

// PrimitiveMode returns the native primitive mode of a topology.
func PrimitiveMode(t gputypes.PrimitiveTopology) (gl.Enum, error) {
	switch t {
	case gputypes.PrimitiveTopologyPointList:
		return gl.POINTS, nil
	case gputypes.PrimitiveTopologyLineList:
		return gl.LINES, nil
	case gputypes.PrimitiveTopologyLineStrip:
		return gl.LINE_STRIP, nil
	case gputypes.PrimitiveTopologyTriangleList:
		return gl.TRIANGLES, nil
	case gputypes.PrimitiveTopologyTriangleStrip:
		return gl.TRIANGLE_STRIP, nil
	}
	return 0, ErrInvalidPrimitive
}

// ElementCount returns the number of vertices or indices consumed by
// primitiveCount primitives of topology t.
func ElementCount(t gputypes.PrimitiveTopology, primitiveCount int) (int, error) {
	switch t {
	case gputypes.PrimitiveTopologyPointList:
		return primitiveCount, nil
	case gputypes.PrimitiveTopologyLineList:
		return primitiveCount * 2, nil
	case gputypes.PrimitiveTopologyLineStrip:
		return primitiveCount + 1, nil
	case gputypes.PrimitiveTopologyTriangleList:
		return primitiveCount * 3, nil
	case gputypes.PrimitiveTopologyTriangleStrip:
		return primitiveCount + 2, nil
	}
	return 0, ErrInvalidPrimitive
}

// IndexType returns the native index type and its byte size.
func IndexType(f gputypes.IndexFormat) (gl.Enum, int, error) {
	switch f {
	case gputypes.IndexFormatUint16:
		return gl.UNSIGNED_SHORT, 2, nil
	case gputypes.IndexFormatUint32:
		return gl.UNSIGNED_INT, 4, nil
	}
	return 0, 0, ErrInvalidIndexFormat
}

// VertexFormat describes how a vertex format is fed to an attribute.
type VertexFormat struct {
	Size       int32
	Type       gl.Enum
	Normalized bool
}

// VertexAttrib returns the attribute-pointer parameters of a vertex format.
func VertexAttrib(f gputypes.VertexFormat) (VertexFormat, bool) {
	switch f {
	case gputypes.VertexFormatFloat32:
		return VertexFormat{1, gl.FLOAT, false}, true
	case gputypes.VertexFormatFloat32x2:
		return VertexFormat{2, gl.FLOAT, false}, true
	case gputypes.VertexFormatFloat32x3:
		return VertexFormat{3, gl.FLOAT, false}, true
	case gputypes.VertexFormatFloat32x4:
		return VertexFormat{4, gl.FLOAT, false}, true
	case gputypes.VertexFormatUnorm8x4:
		return VertexFormat{4, gl.UNSIGNED_BYTE, true}, true
	case gputypes.VertexFormatUint8x4:
		return VertexFormat{4, gl.UNSIGNED_BYTE, false}, true
	case gputypes.VertexFormatSint16x2:
		return VertexFormat{2, gl.SHORT, false}, true
	case gputypes.VertexFormatSint16x4:
		return VertexFormat{4, gl.SHORT, false}, true
	case gputypes.VertexFormatSnorm16x2:
		return VertexFormat{2, gl.SHORT, true}, true
	case gputypes.VertexFormatSnorm16x4:
		return VertexFormat{4, gl.SHORT, true}, true
	case gputypes.VertexFormatFloat16x2:
		return VertexFormat{2, gl.HALF_FLOAT, false}, true
	case gputypes.VertexFormatFloat16x4:
		return VertexFormat{4, gl.HALF_FLOAT, false}, true
	}
	return VertexFormat{}, false
}

// TextureFormat holds the type settings for a TexImage call.
type TextureFormat struct {
	InternalFormat gl.Enum
	Format         gl.Enum
	Type           gl.Enum
}

// Texture returns the native texture format triple.
func Texture(f gputypes.TextureFormat) (TextureFormat, error) {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm:
		return TextureFormat{gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE}, nil
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return TextureFormat{gl.SRGB8_ALPHA8, gl.RGBA, gl.UNSIGNED_BYTE}, nil
	case gputypes.TextureFormatBGRA8Unorm:
		return TextureFormat{gl.RGBA8, gl.BGRA, gl.UNSIGNED_BYTE}, nil
	case gputypes.TextureFormatR8Unorm:
		return TextureFormat{gl.R8, gl.RED, gl.UNSIGNED_BYTE}, nil
	case gputypes.TextureFormatR32Float:
		return TextureFormat{gl.R32F, gl.RED, gl.FLOAT}, nil
	case gputypes.TextureFormatRG32Float:
		return TextureFormat{gl.RG32F, gl.RG, gl.FLOAT}, nil
	case gputypes.TextureFormatRGBA32Float:
		return TextureFormat{gl.RGBA32F, gl.RGBA, gl.FLOAT}, nil
	case gputypes.TextureFormatDepth24PlusStencil8:
		return TextureFormat{gl.DEPTH24_STENCIL8, gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8}, nil
	}
	return TextureFormat{}, ErrUnsupportedFormat
}

// MinFilter returns the native minification filter for a min/mip pair.
func MinFilter(minify, mip gputypes.FilterMode, mipmaps bool) gl.Enum {
	linear := minify == gputypes.FilterModeLinear
	if !mipmaps {
		if linear {
			return gl.LINEAR
		}
		return gl.NEAREST
	}
	mipLinear := mip == gputypes.FilterModeLinear
	switch {
	case linear && mipLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	case linear:
		return gl.LINEAR_MIPMAP_NEAREST
	case mipLinear:
		return gl.NEAREST_MIPMAP_LINEAR
	}
	return gl.NEAREST_MIPMAP_NEAREST
}

// MagFilter returns the native magnification filter.
func MagFilter(f gputypes.FilterMode) gl.Enum {
	if f == gputypes.FilterModeLinear {
		return gl.LINEAR
	}
	return gl.NEAREST
}

// AddressMode returns the native wrap mode.
func AddressMode(m gputypes.AddressMode) gl.Enum {
	switch m {
	case gputypes.AddressModeRepeat:
		return gl.REPEAT
	case gputypes.AddressModeMirrorRepeat:
		return gl.MIRRORED_REPEAT
	}
	return gl.CLAMP_TO_EDGE
}
