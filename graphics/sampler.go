package graphics

import "github.com/gogpu/gputypes"

// SamplerState describes how a texture is sampled.
type SamplerState struct {
	MagFilter gputypes.FilterMode
	MinFilter gputypes.FilterMode

	// MipFilter is used only when Mipmaps is set.
	MipFilter gputypes.FilterMode
	Mipmaps   bool

	AddressU gputypes.AddressMode
	AddressV gputypes.AddressMode
	AddressW gputypes.AddressMode

	MaxAnisotropy int
	MaxMipLevel   int
	LODBias       float32

	// Compare enables depth comparison when not CompareFunctionUndefined.
	Compare gputypes.CompareFunction
}

// Predefined sampler states.
var (
	SamplerLinearClamp = SamplerState{
		MagFilter: gputypes.FilterModeLinear,
		MinFilter: gputypes.FilterModeLinear,
		MipFilter: gputypes.FilterModeLinear,
		Mipmaps:   true,
		AddressU:  gputypes.AddressModeClampToEdge,
		AddressV:  gputypes.AddressModeClampToEdge,
		AddressW:  gputypes.AddressModeClampToEdge,
	}

	SamplerLinearWrap = SamplerState{
		MagFilter: gputypes.FilterModeLinear,
		MinFilter: gputypes.FilterModeLinear,
		MipFilter: gputypes.FilterModeLinear,
		Mipmaps:   true,
		AddressU:  gputypes.AddressModeRepeat,
		AddressV:  gputypes.AddressModeRepeat,
		AddressW:  gputypes.AddressModeRepeat,
	}

	SamplerPointClamp = SamplerState{
		MagFilter: gputypes.FilterModeNearest,
		MinFilter: gputypes.FilterModeNearest,
		MipFilter: gputypes.FilterModeNearest,
		Mipmaps:   true,
		AddressU:  gputypes.AddressModeClampToEdge,
		AddressV:  gputypes.AddressModeClampToEdge,
		AddressW:  gputypes.AddressModeClampToEdge,
	}
)
