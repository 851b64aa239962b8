package gl

import "unsafe"

// Functions is the set of native entry points glrender issues.
//
// Implementations must not retry, batch or reorder calls. All methods are
// called from the thread that owns the native context.
type Functions interface {
	GetError() Enum
	GetString(name Enum) string
	GetInteger(pname Enum) int32
	Flush()
	Finish()

	Enable(cap Enum)
	Disable(cap Enum)
	BlendEquationSeparate(modeRGB, modeAlpha Enum)
	BlendFuncSeparate(srcRGB, dstRGB, srcA, dstA Enum)
	BlendEquationSeparatei(buf uint32, modeRGB, modeAlpha Enum)
	BlendFuncSeparatei(buf uint32, srcRGB, dstRGB, srcA, dstA Enum)
	BlendColor(r, g, b, a float32)
	ColorMask(r, g, b, a bool)
	ColorMaski(buf uint32, r, g, b, a bool)
	DepthFunc(fn Enum)
	DepthMask(flag bool)
	StencilFuncSeparate(face, fn Enum, ref int32, mask uint32)
	StencilOpSeparate(face, sfail, dpfail, dppass Enum)
	StencilMask(mask uint32)
	CullFace(mode Enum)
	FrontFace(mode Enum)
	PolygonOffset(factor, units float32)
	Scissor(x, y, width, height int32)
	Viewport(x, y, width, height int32)
	DepthRangef(near, far float32)
	ClearColor(r, g, b, a float32)
	ClearDepthf(d float32)
	ClearStencil(s int32)
	Clear(mask Enum)

	CreateBuffer() Buffer
	DeleteBuffer(b Buffer)
	BindBuffer(target Enum, b Buffer)
	BufferData(target Enum, size int, data unsafe.Pointer, usage Enum)
	BufferSubData(target Enum, offset, size int, data unsafe.Pointer)

	VertexAttribPointer(a Attrib, size int32, typ Enum, normalized bool, stride int32, offset int)
	ClientVertexAttribPointer(a Attrib, size int32, typ Enum, normalized bool, stride int32, data unsafe.Pointer)
	VertexAttribDivisor(a Attrib, divisor uint32)
	EnableVertexAttribArray(a Attrib)
	DisableVertexAttribArray(a Attrib)

	DrawArrays(mode Enum, first, count int32)
	DrawElements(mode Enum, count int32, typ Enum, offset int)
	DrawElementsBaseVertex(mode Enum, count int32, typ Enum, offset int, baseVertex int32)
	DrawElementsInstanced(mode Enum, count int32, typ Enum, offset int, instances int32)
	DrawElementsInstancedBaseVertex(mode Enum, count int32, typ Enum, offset int, instances, baseVertex int32)
	DrawElementsInstancedBaseVertexBaseInstance(mode Enum, count int32, typ Enum, offset int, instances, baseVertex int32, baseInstance uint32)
	ClientDrawElements(mode Enum, count int32, typ Enum, indices unsafe.Pointer)

	CreateShader(typ Enum) Shader
	DeleteShader(s Shader)
	ShaderBinary(s Shader, format Enum, binary []byte)
	SpecializeShader(s Shader, entryPoint string)
	GetShaderi(s Shader, pname Enum) int32
	GetShaderInfoLog(s Shader) string

	CreateProgram() Program
	DeleteProgram(p Program)
	AttachShader(p Program, s Shader)
	DetachShader(p Program, s Shader)
	LinkProgram(p Program)
	GetProgrami(p Program, pname Enum) int32
	GetProgramInfoLog(p Program) string
	UseProgram(p Program)
	GetAttribLocation(p Program, name string) int32
	GetUniformLocation(p Program, name string) Uniform
	Uniform1i(u Uniform, v int32)
	Uniform4f(u Uniform, x, y, z, w float32)
	Uniform4fv(u Uniform, v []float32)

	CreateTexture() Texture
	DeleteTexture(t Texture)
	ActiveTexture(unit Enum)
	BindTexture(target Enum, t Texture)
	TexImage2D(target Enum, level int32, internalFormat Enum, width, height int32, format, typ Enum, data unsafe.Pointer)
	TexImage3D(target Enum, level int32, internalFormat Enum, width, height, depth int32, format, typ Enum, data unsafe.Pointer)
	TexSubImage2D(target Enum, level, x, y, width, height int32, format, typ Enum, data unsafe.Pointer)
	TexParameteri(target, pname Enum, param int32)
	TexParameterf(target, pname Enum, param float32)
	GenerateMipmap(target Enum)

	CreateSampler() Sampler
	DeleteSampler(s Sampler)
	BindSampler(unit uint32, s Sampler)
	SamplerParameteri(s Sampler, pname Enum, param int32)
	SamplerParameterf(s Sampler, pname Enum, param float32)

	CreateRenderbuffer() Renderbuffer
	DeleteRenderbuffer(r Renderbuffer)
	BindRenderbuffer(r Renderbuffer)
	RenderbufferStorageMultisample(samples int32, internalFormat Enum, width, height int32)

	CreateFramebuffer() Framebuffer
	DeleteFramebuffer(fb Framebuffer)
	BindFramebuffer(target Enum, fb Framebuffer)
	FramebufferTexture2D(target, attachment, texTarget Enum, t Texture, level int32)
	FramebufferTextureLayer(target, attachment Enum, t Texture, level, layer int32)
	FramebufferRenderbuffer(target, attachment, rbTarget Enum, r Renderbuffer)
	CheckFramebufferStatus(target Enum) Enum
	DrawBuffers(bufs []Enum)
	ReadBuffer(src Enum)
	BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter Enum)
	InvalidateFramebuffer(target Enum, attachments []Enum)
}
