// Package gltest provides a recording implementation of gl.Functions.
//
// The fake allocates handles, records every call in order and simulates
// just enough native state (error flag, link status, framebuffer status,
// clear targets) to test render-state caching without a GPU.
package gltest

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/gogpu/glrender/gl"
)

// Call is one recorded native call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprint(a)
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

// Contents is the simulated content of a framebuffer's attachments.
type Contents struct {
	Color   [4]float32
	Depth   float32
	Stencil int32
}

// Functions is a recording fake of the native surface.
// The zero value is not usable; call New.
type Functions struct {
	calls []Call
	next  uint32
	err   gl.Enum

	// Strings answers GetString queries.
	Strings map[gl.Enum]string

	// Integers answers GetInteger queries.
	Integers map[gl.Enum]int32

	// FramebufferStatus is returned by CheckFramebufferStatus.
	// Zero means FRAMEBUFFER_COMPLETE.
	FramebufferStatus gl.Enum

	failLink   string
	failShader string

	errAfter     string
	errAfterCode gl.Enum

	attribs    map[gl.Program]map[string]int32
	uniforms   map[gl.Program]map[string]gl.Uniform
	hidden     map[string]bool
	linked     map[gl.Program]bool
	deletedFBO map[gl.Framebuffer]int
	liveFBO    map[gl.Framebuffer]bool
	livePrg    map[gl.Program]bool

	drawFBO      gl.Framebuffer
	contents     map[gl.Framebuffer]*Contents
	clearColor   [4]float32
	clearDepth   float32
	clearStencil int32
	colorMask    [4]bool
	depthMask    bool
	stencilMask  uint32
}

var _ gl.Functions = (*Functions)(nil)

// New returns an empty recording fake.
func New() *Functions {
	return &Functions{
		Strings:     make(map[gl.Enum]string),
		Integers:    make(map[gl.Enum]int32),
		attribs:     make(map[gl.Program]map[string]int32),
		uniforms:    make(map[gl.Program]map[string]gl.Uniform),
		hidden:      make(map[string]bool),
		linked:      make(map[gl.Program]bool),
		deletedFBO:  make(map[gl.Framebuffer]int),
		liveFBO:     make(map[gl.Framebuffer]bool),
		livePrg:     make(map[gl.Program]bool),
		contents:    make(map[gl.Framebuffer]*Contents),
		clearDepth:  1,
		colorMask:   [4]bool{true, true, true, true},
		depthMask:   true,
		stencilMask: ^uint32(0),
	}
}

// Calls returns the recorded calls in order.
func (f *Functions) Calls() []Call { return f.calls }

// Reset forgets recorded calls. Simulated state is kept.
func (f *Functions) Reset() { f.calls = f.calls[:0] }

// Count returns how many times the named entry point was called.
func (f *Functions) Count(name string) int {
	n := 0
	for _, c := range f.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// CountPrefix returns how many calls have a name starting with prefix.
func (f *Functions) CountPrefix(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c.Name, prefix) {
			n++
		}
	}
	return n
}

// Last returns the most recent call to the named entry point.
func (f *Functions) Last(name string) (Call, bool) {
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Name == name {
			return f.calls[i], true
		}
	}
	return Call{}, false
}

// Names returns the names of the recorded calls in order.
func (f *Functions) Names() []string {
	names := make([]string, len(f.calls))
	for i, c := range f.calls {
		names[i] = c.Name
	}
	return names
}

// InjectError sets the native error flag returned by the next GetError.
func (f *Functions) InjectError(code gl.Enum) { f.err = code }

// InjectErrorAfter makes the next call named name raise code.
func (f *Functions) InjectErrorAfter(name string, code gl.Enum) {
	f.errAfter, f.errAfterCode = name, code
}

// FailNextLink makes the next LinkProgram fail with the given log.
func (f *Functions) FailNextLink(log string) { f.failLink = log }

// FailNextShader makes the next SpecializeShader fail with the given log.
func (f *Functions) FailNextShader(log string) { f.failShader = log }

// HideUniform makes GetUniformLocation report name as inactive.
func (f *Functions) HideUniform(name string) { f.hidden[name] = true }

// FramebufferDeletes returns how many times fb was deleted.
func (f *Functions) FramebufferDeletes(fb gl.Framebuffer) int { return f.deletedFBO[fb] }

// LiveFramebuffers returns the number of framebuffers not yet deleted.
func (f *Functions) LiveFramebuffers() int { return len(f.liveFBO) }

// LivePrograms returns the number of programs not yet deleted.
func (f *Functions) LivePrograms() int { return len(f.livePrg) }

// Contents returns the simulated attachment contents of fb.
func (f *Functions) Contents(fb gl.Framebuffer) Contents {
	if c, ok := f.contents[fb]; ok {
		return *c
	}
	return Contents{}
}

func (f *Functions) record(name string, args ...any) {
	f.calls = append(f.calls, Call{Name: name, Args: args})
	if f.errAfter != "" && f.errAfter == name {
		f.err = f.errAfterCode
		f.errAfter = ""
	}
}

func (f *Functions) alloc() uint32 {
	f.next++
	return f.next
}

func (f *Functions) GetError() gl.Enum {
	code := f.err
	f.err = gl.NO_ERROR
	return code
}

func (f *Functions) GetString(name gl.Enum) string {
	f.record("GetString", name)
	return f.Strings[name]
}

func (f *Functions) GetInteger(pname gl.Enum) int32 {
	f.record("GetInteger", pname)
	return f.Integers[pname]
}

func (f *Functions) Flush()  { f.record("Flush") }
func (f *Functions) Finish() { f.record("Finish") }

func (f *Functions) Enable(c gl.Enum)  { f.record("Enable", c) }
func (f *Functions) Disable(c gl.Enum) { f.record("Disable", c) }

func (f *Functions) BlendEquationSeparate(modeRGB, modeAlpha gl.Enum) {
	f.record("BlendEquationSeparate", modeRGB, modeAlpha)
}

func (f *Functions) BlendFuncSeparate(srcRGB, dstRGB, srcA, dstA gl.Enum) {
	f.record("BlendFuncSeparate", srcRGB, dstRGB, srcA, dstA)
}

func (f *Functions) BlendEquationSeparatei(buf uint32, modeRGB, modeAlpha gl.Enum) {
	f.record("BlendEquationSeparatei", buf, modeRGB, modeAlpha)
}

func (f *Functions) BlendFuncSeparatei(buf uint32, srcRGB, dstRGB, srcA, dstA gl.Enum) {
	f.record("BlendFuncSeparatei", buf, srcRGB, dstRGB, srcA, dstA)
}

func (f *Functions) BlendColor(r, g, b, a float32) { f.record("BlendColor", r, g, b, a) }

func (f *Functions) ColorMask(r, g, b, a bool) {
	f.record("ColorMask", r, g, b, a)
	f.colorMask = [4]bool{r, g, b, a}
}

func (f *Functions) ColorMaski(buf uint32, r, g, b, a bool) {
	f.record("ColorMaski", buf, r, g, b, a)
	if buf == 0 {
		f.colorMask = [4]bool{r, g, b, a}
	}
}

func (f *Functions) DepthFunc(fn gl.Enum) { f.record("DepthFunc", fn) }

func (f *Functions) DepthMask(flag bool) {
	f.record("DepthMask", flag)
	f.depthMask = flag
}

func (f *Functions) StencilFuncSeparate(face, fn gl.Enum, ref int32, mask uint32) {
	f.record("StencilFuncSeparate", face, fn, ref, mask)
}

func (f *Functions) StencilOpSeparate(face, sfail, dpfail, dppass gl.Enum) {
	f.record("StencilOpSeparate", face, sfail, dpfail, dppass)
}

func (f *Functions) StencilMask(mask uint32) {
	f.record("StencilMask", mask)
	f.stencilMask = mask
}

func (f *Functions) CullFace(mode gl.Enum)  { f.record("CullFace", mode) }
func (f *Functions) FrontFace(mode gl.Enum) { f.record("FrontFace", mode) }

func (f *Functions) PolygonOffset(factor, units float32) { f.record("PolygonOffset", factor, units) }

func (f *Functions) Scissor(x, y, width, height int32) { f.record("Scissor", x, y, width, height) }

func (f *Functions) Viewport(x, y, width, height int32) { f.record("Viewport", x, y, width, height) }

func (f *Functions) DepthRangef(near, far float32) { f.record("DepthRangef", near, far) }

func (f *Functions) ClearColor(r, g, b, a float32) {
	f.record("ClearColor", r, g, b, a)
	f.clearColor = [4]float32{r, g, b, a}
}

func (f *Functions) ClearDepthf(d float32) {
	f.record("ClearDepthf", d)
	f.clearDepth = d
}

func (f *Functions) ClearStencil(s int32) {
	f.record("ClearStencil", s)
	f.clearStencil = s
}

func (f *Functions) Clear(mask gl.Enum) {
	f.record("Clear", mask)
	c, ok := f.contents[f.drawFBO]
	if !ok {
		c = &Contents{}
		f.contents[f.drawFBO] = c
	}
	if mask&gl.COLOR_BUFFER_BIT != 0 {
		for i, on := range f.colorMask {
			if on {
				c.Color[i] = f.clearColor[i]
			}
		}
	}
	if mask&gl.DEPTH_BUFFER_BIT != 0 && f.depthMask {
		c.Depth = f.clearDepth
	}
	if mask&gl.STENCIL_BUFFER_BIT != 0 {
		m := int32(f.stencilMask)
		c.Stencil = (c.Stencil &^ m) | (f.clearStencil & m)
	}
}

func (f *Functions) CreateBuffer() gl.Buffer {
	b := gl.Buffer(f.alloc())
	f.record("CreateBuffer", b)
	return b
}

func (f *Functions) DeleteBuffer(b gl.Buffer) { f.record("DeleteBuffer", b) }

func (f *Functions) BindBuffer(target gl.Enum, b gl.Buffer) { f.record("BindBuffer", target, b) }

func (f *Functions) BufferData(target gl.Enum, size int, data unsafe.Pointer, usage gl.Enum) {
	f.record("BufferData", target, size, data, usage)
}

func (f *Functions) BufferSubData(target gl.Enum, offset, size int, data unsafe.Pointer) {
	f.record("BufferSubData", target, offset, size, data)
}

func (f *Functions) VertexAttribPointer(a gl.Attrib, size int32, typ gl.Enum, normalized bool, stride int32, offset int) {
	f.record("VertexAttribPointer", a, size, typ, normalized, stride, offset)
}

func (f *Functions) ClientVertexAttribPointer(a gl.Attrib, size int32, typ gl.Enum, normalized bool, stride int32, data unsafe.Pointer) {
	f.record("ClientVertexAttribPointer", a, size, typ, normalized, stride, data)
}

func (f *Functions) VertexAttribDivisor(a gl.Attrib, divisor uint32) {
	f.record("VertexAttribDivisor", a, divisor)
}

func (f *Functions) EnableVertexAttribArray(a gl.Attrib)  { f.record("EnableVertexAttribArray", a) }
func (f *Functions) DisableVertexAttribArray(a gl.Attrib) { f.record("DisableVertexAttribArray", a) }

func (f *Functions) DrawArrays(mode gl.Enum, first, count int32) {
	f.record("DrawArrays", mode, first, count)
}

func (f *Functions) DrawElements(mode gl.Enum, count int32, typ gl.Enum, offset int) {
	f.record("DrawElements", mode, count, typ, offset)
}

func (f *Functions) DrawElementsBaseVertex(mode gl.Enum, count int32, typ gl.Enum, offset int, baseVertex int32) {
	f.record("DrawElementsBaseVertex", mode, count, typ, offset, baseVertex)
}

func (f *Functions) DrawElementsInstanced(mode gl.Enum, count int32, typ gl.Enum, offset int, instances int32) {
	f.record("DrawElementsInstanced", mode, count, typ, offset, instances)
}

func (f *Functions) DrawElementsInstancedBaseVertex(mode gl.Enum, count int32, typ gl.Enum, offset int, instances, baseVertex int32) {
	f.record("DrawElementsInstancedBaseVertex", mode, count, typ, offset, instances, baseVertex)
}

func (f *Functions) DrawElementsInstancedBaseVertexBaseInstance(mode gl.Enum, count int32, typ gl.Enum, offset int, instances, baseVertex int32, baseInstance uint32) {
	f.record("DrawElementsInstancedBaseVertexBaseInstance", mode, count, typ, offset, instances, baseVertex, baseInstance)
}

func (f *Functions) ClientDrawElements(mode gl.Enum, count int32, typ gl.Enum, indices unsafe.Pointer) {
	f.record("ClientDrawElements", mode, count, typ, indices)
}

func (f *Functions) CreateShader(typ gl.Enum) gl.Shader {
	s := gl.Shader(f.alloc())
	f.record("CreateShader", typ, s)
	return s
}

func (f *Functions) DeleteShader(s gl.Shader) { f.record("DeleteShader", s) }

func (f *Functions) ShaderBinary(s gl.Shader, format gl.Enum, binary []byte) {
	f.record("ShaderBinary", s, format, len(binary))
}

func (f *Functions) SpecializeShader(s gl.Shader, entryPoint string) {
	f.record("SpecializeShader", s, entryPoint)
}

func (f *Functions) GetShaderi(s gl.Shader, pname gl.Enum) int32 {
	f.record("GetShaderi", s, pname)
	if pname == gl.COMPILE_STATUS {
		if f.failShader != "" {
			return gl.FALSE
		}
		return gl.TRUE
	}
	return 0
}

func (f *Functions) GetShaderInfoLog(s gl.Shader) string {
	f.record("GetShaderInfoLog", s)
	log := f.failShader
	f.failShader = ""
	return log
}

func (f *Functions) CreateProgram() gl.Program {
	p := gl.Program(f.alloc())
	f.record("CreateProgram", p)
	f.livePrg[p] = true
	return p
}

func (f *Functions) DeleteProgram(p gl.Program) {
	f.record("DeleteProgram", p)
	delete(f.livePrg, p)
}

func (f *Functions) AttachShader(p gl.Program, s gl.Shader) { f.record("AttachShader", p, s) }
func (f *Functions) DetachShader(p gl.Program, s gl.Shader) { f.record("DetachShader", p, s) }

func (f *Functions) LinkProgram(p gl.Program) {
	f.record("LinkProgram", p)
	f.linked[p] = f.failLink == ""
}

func (f *Functions) GetProgrami(p gl.Program, pname gl.Enum) int32 {
	f.record("GetProgrami", p, pname)
	if pname == gl.LINK_STATUS {
		if f.linked[p] {
			return gl.TRUE
		}
		return gl.FALSE
	}
	return 0
}

func (f *Functions) GetProgramInfoLog(p gl.Program) string {
	f.record("GetProgramInfoLog", p)
	log := f.failLink
	f.failLink = ""
	return log
}

func (f *Functions) UseProgram(p gl.Program) { f.record("UseProgram", p) }

// GetAttribLocation assigns locations per program in first-query order.
func (f *Functions) GetAttribLocation(p gl.Program, name string) int32 {
	f.record("GetAttribLocation", p, name)
	m, ok := f.attribs[p]
	if !ok {
		m = make(map[string]int32)
		f.attribs[p] = m
	}
	loc, ok := m[name]
	if !ok {
		loc = int32(len(m))
		m[name] = loc
	}
	return loc
}

// GetUniformLocation assigns locations per program in first-query order.
// Names passed to HideUniform report InvalidUniform.
func (f *Functions) GetUniformLocation(p gl.Program, name string) gl.Uniform {
	f.record("GetUniformLocation", p, name)
	if f.hidden[name] {
		return gl.InvalidUniform
	}
	m, ok := f.uniforms[p]
	if !ok {
		m = make(map[string]gl.Uniform)
		f.uniforms[p] = m
	}
	loc, ok := m[name]
	if !ok {
		loc = gl.Uniform(len(m))
		m[name] = loc
	}
	return loc
}

func (f *Functions) Uniform1i(u gl.Uniform, v int32) { f.record("Uniform1i", u, v) }

func (f *Functions) Uniform4f(u gl.Uniform, x, y, z, w float32) {
	f.record("Uniform4f", u, x, y, z, w)
}

func (f *Functions) Uniform4fv(u gl.Uniform, v []float32) {
	f.record("Uniform4fv", u, append([]float32(nil), v...))
}

func (f *Functions) CreateTexture() gl.Texture {
	t := gl.Texture(f.alloc())
	f.record("CreateTexture", t)
	return t
}

func (f *Functions) DeleteTexture(t gl.Texture) { f.record("DeleteTexture", t) }

func (f *Functions) ActiveTexture(unit gl.Enum) { f.record("ActiveTexture", unit) }

func (f *Functions) BindTexture(target gl.Enum, t gl.Texture) { f.record("BindTexture", target, t) }

func (f *Functions) TexImage2D(target gl.Enum, level int32, internalFormat gl.Enum, width, height int32, format, typ gl.Enum, data unsafe.Pointer) {
	f.record("TexImage2D", target, level, internalFormat, width, height, format, typ, data)
}

func (f *Functions) TexImage3D(target gl.Enum, level int32, internalFormat gl.Enum, width, height, depth int32, format, typ gl.Enum, data unsafe.Pointer) {
	f.record("TexImage3D", target, level, internalFormat, width, height, depth, format, typ, data)
}

func (f *Functions) TexSubImage2D(target gl.Enum, level, x, y, width, height int32, format, typ gl.Enum, data unsafe.Pointer) {
	f.record("TexSubImage2D", target, level, x, y, width, height, format, typ, data)
}

func (f *Functions) TexParameteri(target, pname gl.Enum, param int32) {
	f.record("TexParameteri", target, pname, param)
}

func (f *Functions) TexParameterf(target, pname gl.Enum, param float32) {
	f.record("TexParameterf", target, pname, param)
}

func (f *Functions) GenerateMipmap(target gl.Enum) { f.record("GenerateMipmap", target) }

func (f *Functions) CreateSampler() gl.Sampler {
	s := gl.Sampler(f.alloc())
	f.record("CreateSampler", s)
	return s
}

func (f *Functions) DeleteSampler(s gl.Sampler) { f.record("DeleteSampler", s) }

func (f *Functions) BindSampler(unit uint32, s gl.Sampler) { f.record("BindSampler", unit, s) }

func (f *Functions) SamplerParameteri(s gl.Sampler, pname gl.Enum, param int32) {
	f.record("SamplerParameteri", s, pname, param)
}

func (f *Functions) SamplerParameterf(s gl.Sampler, pname gl.Enum, param float32) {
	f.record("SamplerParameterf", s, pname, param)
}

func (f *Functions) CreateRenderbuffer() gl.Renderbuffer {
	r := gl.Renderbuffer(f.alloc())
	f.record("CreateRenderbuffer", r)
	return r
}

func (f *Functions) DeleteRenderbuffer(r gl.Renderbuffer) { f.record("DeleteRenderbuffer", r) }

func (f *Functions) BindRenderbuffer(r gl.Renderbuffer) { f.record("BindRenderbuffer", r) }

func (f *Functions) RenderbufferStorageMultisample(samples int32, internalFormat gl.Enum, width, height int32) {
	f.record("RenderbufferStorageMultisample", samples, internalFormat, width, height)
}

func (f *Functions) CreateFramebuffer() gl.Framebuffer {
	fb := gl.Framebuffer(f.alloc())
	f.record("CreateFramebuffer", fb)
	f.liveFBO[fb] = true
	return fb
}

func (f *Functions) DeleteFramebuffer(fb gl.Framebuffer) {
	f.record("DeleteFramebuffer", fb)
	f.deletedFBO[fb]++
	delete(f.liveFBO, fb)
}

func (f *Functions) BindFramebuffer(target gl.Enum, fb gl.Framebuffer) {
	f.record("BindFramebuffer", target, fb)
	if target == gl.FRAMEBUFFER || target == gl.DRAW_FRAMEBUFFER {
		f.drawFBO = fb
	}
}

func (f *Functions) FramebufferTexture2D(target, attachment, texTarget gl.Enum, t gl.Texture, level int32) {
	f.record("FramebufferTexture2D", target, attachment, texTarget, t, level)
}

func (f *Functions) FramebufferTextureLayer(target, attachment gl.Enum, t gl.Texture, level, layer int32) {
	f.record("FramebufferTextureLayer", target, attachment, t, level, layer)
}

func (f *Functions) FramebufferRenderbuffer(target, attachment, rbTarget gl.Enum, r gl.Renderbuffer) {
	f.record("FramebufferRenderbuffer", target, attachment, rbTarget, r)
}

func (f *Functions) CheckFramebufferStatus(target gl.Enum) gl.Enum {
	f.record("CheckFramebufferStatus", target)
	if f.FramebufferStatus == 0 {
		return gl.FRAMEBUFFER_COMPLETE
	}
	return f.FramebufferStatus
}

func (f *Functions) DrawBuffers(bufs []gl.Enum) {
	f.record("DrawBuffers", append([]gl.Enum(nil), bufs...))
}

func (f *Functions) ReadBuffer(src gl.Enum) { f.record("ReadBuffer", src) }

func (f *Functions) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter gl.Enum) {
	f.record("BlitFramebuffer", sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1, mask, filter)
}

func (f *Functions) InvalidateFramebuffer(target gl.Enum, attachments []gl.Enum) {
	f.record("InvalidateFramebuffer", target, append([]gl.Enum(nil), attachments...))
}
