package glrender

import (
	"fmt"
	"math/bits"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glrender/caps"
	"github.com/gogpu/glrender/gl"
	"github.com/gogpu/glrender/graphics"
	"github.com/gogpu/glrender/internal/glconv"
)

// maxUnitsPerStage bounds the texture units tracked per shader stage.
const maxUnitsPerStage = 32

type samplerParam struct {
	name  gl.Enum
	i     int32
	f     float32
	float bool
}

// samplerParams lists the native parameters of a sampler state, shared by
// sampler objects and the per-texture fallback.
func samplerParams(s graphics.SamplerState, mipmaps bool, t *caps.Table) []samplerParam {
	ps := []samplerParam{
		{name: gl.TEXTURE_MIN_FILTER, i: int32(glconv.MinFilter(s.MinFilter, s.MipFilter, mipmaps))},
		{name: gl.TEXTURE_MAG_FILTER, i: int32(glconv.MagFilter(s.MagFilter))},
		{name: gl.TEXTURE_WRAP_S, i: int32(glconv.AddressMode(s.AddressU))},
		{name: gl.TEXTURE_WRAP_T, i: int32(glconv.AddressMode(s.AddressV))},
		{name: gl.TEXTURE_WRAP_R, i: int32(glconv.AddressMode(s.AddressW))},
	}
	if s.Compare != gputypes.CompareFunctionUndefined {
		ps = append(ps,
			samplerParam{name: gl.TEXTURE_COMPARE_MODE, i: gl.COMPARE_REF_TO_TEXTURE},
			samplerParam{name: gl.TEXTURE_COMPARE_FUNC, i: int32(glconv.CompareFunction(s.Compare))},
		)
	} else {
		ps = append(ps, samplerParam{name: gl.TEXTURE_COMPARE_MODE, i: gl.NONE})
	}
	if s.MaxAnisotropy > 1 && t.SupportsAnisotropicFiltering {
		ps = append(ps, samplerParam{name: gl.TEXTURE_MAX_ANISOTROPY_EXT, f: float32(s.MaxAnisotropy), float: true})
	}
	if !t.GLES && s.LODBias != 0 {
		ps = append(ps, samplerParam{name: gl.TEXTURE_LOD_BIAS, f: s.LODBias, float: true})
	}
	return ps
}

// unit is the state of one texture unit.
type unit struct {
	tex     Texture
	sampler graphics.SamplerState

	// target is the native target bound on the unit, zero if none.
	target gl.Enum

	// object is the sampler object bound on the unit, zero if none.
	object gl.Sampler
}

// textureUnits tracks pixel-stage units followed by vertex-stage units.
type textureUnits struct {
	units        []unit
	pixel        int
	vertex       int
	texDirty     uint64
	samplerDirty uint64

	// active is the native active unit, -1 if unknown.
	active int
}

// pixelUnits returns the number of pixel-stage units. Vertex-stage units
// start right after them.
func pixelUnits(t *caps.Table) int {
	return min(t.MaxTextureSlots, maxUnitsPerStage)
}

func newTextureUnits(t *caps.Table) textureUnits {
	pixel := pixelUnits(t)
	vertex := min(t.MaxVertexTextureSlots, maxUnitsPerStage)
	u := textureUnits{
		units:  make([]unit, pixel+vertex),
		pixel:  pixel,
		vertex: vertex,
		active: -1,
	}
	for i := range u.units {
		u.units[i].sampler = graphics.SamplerLinearWrap
	}
	return u
}

// index maps a stage slot to a unit index.
func (u *textureUnits) index(vertexStage bool, slot int) (int, error) {
	if vertexStage {
		if u.vertex == 0 {
			return 0, fmt.Errorf("%w: vertex texture fetch", ErrNotSupported)
		}
		if slot < 0 || slot >= u.vertex {
			return 0, fmt.Errorf("%w: vertex texture slot %d", ErrInvalidSlot, slot)
		}
		return u.pixel + slot, nil
	}
	if slot < 0 || slot >= u.pixel {
		return 0, fmt.Errorf("%w: texture slot %d", ErrInvalidSlot, slot)
	}
	return slot, nil
}

func (u *textureUnits) setTexture(i int, t Texture) {
	if u.units[i].tex != t {
		u.units[i].tex = t
		u.texDirty |= 1 << i
	}
}

func (u *textureUnits) setSampler(i int, s graphics.SamplerState) {
	if u.units[i].sampler != s {
		u.units[i].sampler = s
		u.samplerDirty |= 1 << i
	}
}

// scratched records that unit 0 was made active and rebound outside the context.
func (u *textureUnits) scratched() {
	u.active = 0
	if len(u.units) > 0 {
		u.units[0].target = 0
		u.texDirty |= 1
	}
}

// wants reports whether a unit with a texture samples with k.
func (u *textureUnits) wants(k samplerKey) bool {
	for i := range u.units {
		if un := &u.units[i]; un.tex != nil && un.samplerKey() == k {
			return true
		}
	}
	return false
}

func (un *unit) samplerKey() samplerKey {
	return samplerKey{
		state:   un.sampler,
		mipmaps: un.sampler.Mipmaps && un.tex.base().levels > 1,
	}
}

// forgetSampler drops a deleted sampler object from every unit using it.
func (u *textureUnits) forgetSampler(s gl.Sampler) {
	for i := range u.units {
		if u.units[i].object == s {
			u.units[i].object = 0
			u.samplerDirty |= 1 << i
		}
	}
}

// forgetTexture unbinds a destroyed texture from every unit holding it.
func (u *textureUnits) forgetTexture(t *texture) {
	for i := range u.units {
		if u.units[i].tex != nil && u.units[i].tex.base() == t {
			u.units[i].tex = nil
			u.units[i].target = 0
		}
	}
}

// invalidateActive marks the active unit's binding unknown, after native
// code outside the unit tracker bound a texture on it.
func (u *textureUnits) invalidateActive() {
	if u.active < 0 {
		for i := range u.units {
			u.units[i].target = 0
			if u.units[i].tex != nil {
				u.texDirty |= 1 << i
			}
		}
		return
	}
	u.units[u.active].target = 0
	u.texDirty |= 1 << u.active
}

func (c *Context) activate(i int) {
	if c.units.active != i {
		c.f.ActiveTexture(gl.TEXTURE0 + gl.Enum(i))
		c.units.active = i
	}
}

// applyTextures binds dirty texture units, then applies dirty sampler
// states through sampler objects or, without them, texture parameters.
func (c *Context) applyTextures() error {
	u := &c.units
	pending := u.texDirty
	u.texDirty = 0
	for d := pending; d != 0; d &= d - 1 {
		i := bits.TrailingZeros64(d)
		un := &u.units[i]
		if un.tex == nil {
			if un.target != 0 {
				c.activate(i)
				c.f.BindTexture(un.target, 0)
				un.target = 0
			}
			continue
		}
		tb := un.tex.base()
		c.activate(i)
		if un.target != 0 && un.target != tb.target {
			c.f.BindTexture(un.target, 0)
		}
		c.f.BindTexture(tb.target, tb.handle)
		un.target = tb.target
		u.samplerDirty |= 1 << i
	}

	pending = u.samplerDirty
	u.samplerDirty = 0
	for d := pending; d != 0; d &= d - 1 {
		i := bits.TrailingZeros64(d)
		un := &u.units[i]
		if un.tex == nil {
			continue
		}
		tb := un.tex.base()
		key := un.samplerKey()
		mipmaps := key.mipmaps
		if c.caps.SupportsSamplerObjects {
			if s := c.dev.sampler(key); s != un.object {
				c.f.BindSampler(uint32(i), s)
				un.object = s
			}
		} else if !tb.paramsSet || tb.params != un.sampler {
			c.activate(i)
			for _, p := range samplerParams(un.sampler, mipmaps, c.caps) {
				if p.float {
					c.f.TexParameterf(tb.target, p.name, p.f)
				} else {
					c.f.TexParameteri(tb.target, p.name, p.i)
				}
			}
			tb.params = un.sampler
			tb.paramsSet = true
		}
		if tb.baseLevel != un.sampler.MaxMipLevel {
			c.activate(i)
			c.f.TexParameteri(tb.target, gl.TEXTURE_BASE_LEVEL, int32(un.sampler.MaxMipLevel))
			tb.baseLevel = un.sampler.MaxMipLevel
		}
	}
	return c.check("apply textures")
}
