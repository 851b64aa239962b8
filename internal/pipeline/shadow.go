package pipeline

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glrender/caps"
	"github.com/gogpu/glrender/gl"
)

type face int

const (
	faceFront face = iota
	faceBack
)

type stencilState struct {
	fn                 gl.Enum
	ref                int32
	mask               uint32
	fail, zfail, zpass gl.Enum
	valid              bool
}

type blendTarget struct {
	fn   [4]gl.Enum
	eq   [2]gl.Enum
	mask [4]bool
}

// shadow mirrors the native pipeline values last issued. Fields marked
// unknown are always reissued.
type shadow struct {
	known map[gl.Enum]bool
	on    map[gl.Enum]bool

	targets      [caps.MaxRenderTargets]blendTarget
	targetsKnown [caps.MaxRenderTargets]struct{ fn, eq, mask bool }

	blendColor      gputypes.Color
	blendColorKnown bool

	depthMask      bool
	depthMaskKnown bool
	depthFunc      gl.Enum

	stencilMask      uint32
	stencilMaskKnown bool
	stencil          [2]stencilState

	cullFace   gl.Enum
	frontFace  gl.Enum
	polyOffset [2]float32
	polyKnown  bool

	scissor      [4]int32
	scissorKnown bool
	viewport     [4]int32
	viewKnown    bool
	depthRange   [2]float32
	rangeKnown   bool

	clear clearValues
}

func newShadow() shadow {
	return shadow{
		known: make(map[gl.Enum]bool),
		on:    make(map[gl.Enum]bool),
	}
}

func (s *shadow) enable(f gl.Functions, capability gl.Enum, on bool) {
	if s.known[capability] && s.on[capability] == on {
		return
	}
	s.known[capability] = true
	s.on[capability] = on
	if on {
		f.Enable(capability)
	} else {
		f.Disable(capability)
	}
}

// setBlendFunc sets the factors of target i, or of every target when i < 0.
func (s *shadow) setBlendFunc(f gl.Functions, i int, fn [4]gl.Enum) {
	if i < 0 {
		if s.allTargets(func(t int) bool { return s.targetsKnown[t].fn && s.targets[t].fn == fn }) {
			return
		}
		f.BlendFuncSeparate(fn[0], fn[1], fn[2], fn[3])
		for t := range s.targets {
			s.targets[t].fn = fn
			s.targetsKnown[t].fn = true
		}
		return
	}
	if s.targetsKnown[i].fn && s.targets[i].fn == fn {
		return
	}
	f.BlendFuncSeparatei(uint32(i), fn[0], fn[1], fn[2], fn[3])
	s.targets[i].fn = fn
	s.targetsKnown[i].fn = true
}

func (s *shadow) setBlendEquation(f gl.Functions, i int, eq [2]gl.Enum) {
	if i < 0 {
		if s.allTargets(func(t int) bool { return s.targetsKnown[t].eq && s.targets[t].eq == eq }) {
			return
		}
		f.BlendEquationSeparate(eq[0], eq[1])
		for t := range s.targets {
			s.targets[t].eq = eq
			s.targetsKnown[t].eq = true
		}
		return
	}
	if s.targetsKnown[i].eq && s.targets[i].eq == eq {
		return
	}
	f.BlendEquationSeparatei(uint32(i), eq[0], eq[1])
	s.targets[i].eq = eq
	s.targetsKnown[i].eq = true
}

func (s *shadow) setColorMask(f gl.Functions, i int, m [4]bool) {
	if i < 0 {
		if s.allTargets(func(t int) bool { return s.targetsKnown[t].mask && s.targets[t].mask == m }) {
			return
		}
		f.ColorMask(m[0], m[1], m[2], m[3])
		for t := range s.targets {
			s.targets[t].mask = m
			s.targetsKnown[t].mask = true
		}
		return
	}
	if s.targetsKnown[i].mask && s.targets[i].mask == m {
		return
	}
	f.ColorMaski(uint32(i), m[0], m[1], m[2], m[3])
	s.targets[i].mask = m
	s.targetsKnown[i].mask = true
}

func (s *shadow) allTargets(match func(int) bool) bool {
	for t := range s.targets {
		if !match(t) {
			return false
		}
	}
	return true
}

func (s *shadow) setBlendColor(f gl.Functions, c gputypes.Color) {
	if s.blendColorKnown && s.blendColor == c {
		return
	}
	f.BlendColor(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
	s.blendColor = c
	s.blendColorKnown = true
}

func (s *shadow) setDepthMask(f gl.Functions, on bool) {
	if s.depthMaskKnown && s.depthMask == on {
		return
	}
	f.DepthMask(on)
	s.depthMask = on
	s.depthMaskKnown = true
}

func (s *shadow) setDepthFunc(f gl.Functions, fn gl.Enum) {
	if s.depthFunc == fn {
		return
	}
	f.DepthFunc(fn)
	s.depthFunc = fn
}

func (s *shadow) setStencilMask(f gl.Functions, m uint32) {
	if s.stencilMaskKnown && s.stencilMask == m {
		return
	}
	f.StencilMask(m)
	s.stencilMask = m
	s.stencilMaskKnown = true
}

func (s *shadow) setStencilFace(f gl.Functions, which face, st stencilState) {
	cur := &s.stencil[which]
	glFace := gl.Enum(gl.FRONT)
	if which == faceBack {
		glFace = gl.BACK
	}
	if !cur.valid || cur.fn != st.fn || cur.ref != st.ref || cur.mask != st.mask {
		f.StencilFuncSeparate(glFace, st.fn, st.ref, st.mask)
	}
	if !cur.valid || cur.fail != st.fail || cur.zfail != st.zfail || cur.zpass != st.zpass {
		f.StencilOpSeparate(glFace, st.fail, st.zfail, st.zpass)
	}
	*cur = st
}

func (s *shadow) setCullFace(f gl.Functions, mode gl.Enum) {
	if s.cullFace == mode {
		return
	}
	f.CullFace(mode)
	s.cullFace = mode
}

func (s *shadow) setFrontFace(f gl.Functions, mode gl.Enum) {
	if s.frontFace == mode {
		return
	}
	f.FrontFace(mode)
	s.frontFace = mode
}

func (s *shadow) setPolygonOffset(f gl.Functions, v [2]float32) {
	if s.polyKnown && s.polyOffset == v {
		return
	}
	f.PolygonOffset(v[0], v[1])
	s.polyOffset = v
	s.polyKnown = true
}

func (s *shadow) setScissor(f gl.Functions, r [4]int32) {
	if s.scissorKnown && s.scissor == r {
		return
	}
	f.Scissor(r[0], r[1], r[2], r[3])
	s.scissor = r
	s.scissorKnown = true
}

func (s *shadow) setViewport(f gl.Functions, r [4]int32) {
	if s.viewKnown && s.viewport == r {
		return
	}
	f.Viewport(r[0], r[1], r[2], r[3])
	s.viewport = r
	s.viewKnown = true
}

func (s *shadow) setDepthRange(f gl.Functions, r [2]float32) {
	if s.rangeKnown && s.depthRange == r {
		return
	}
	f.DepthRangef(r[0], r[1])
	s.depthRange = r
	s.rangeKnown = true
}

type clearValues struct {
	color        gputypes.Color
	depth        float32
	stencil      int32
	colorKnown   bool
	depthKnown   bool
	stencilKnown bool
}

func (s *shadow) setClearColor(f gl.Functions, c gputypes.Color) {
	if s.clear.colorKnown && s.clear.color == c {
		return
	}
	f.ClearColor(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
	s.clear.color = c
	s.clear.colorKnown = true
}

func (s *shadow) setClearDepth(f gl.Functions, d float32) {
	if s.clear.depthKnown && s.clear.depth == d {
		return
	}
	f.ClearDepthf(d)
	s.clear.depth = d
	s.clear.depthKnown = true
}

func (s *shadow) setClearStencil(f gl.Functions, v int32) {
	if s.clear.stencilKnown && s.clear.stencil == v {
		return
	}
	f.ClearStencil(v)
	s.clear.stencil = v
	s.clear.stencilKnown = true
}
