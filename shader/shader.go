// Package shader loads pre-compiled shader stages and carries the
// reflection metadata the program cache needs to link and bind them.
package shader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/fnv"

	"github.com/gogpu/naga"

	"github.com/gogpu/glrender/gl"
	"github.com/gogpu/glrender/graphics"
)

// ErrEmptyBinary is returned when a stage is loaded from an empty binary.
var ErrEmptyBinary = errors.New("shader: empty SPIR-V binary")

// Kind is the pipeline stage of a shader.
type Kind uint8

const (
	Vertex Kind = iota
	Pixel
)

func (k Kind) String() string {
	switch k {
	case Vertex:
		return "vertex"
	case Pixel:
		return "pixel"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) native() gl.Enum {
	if k == Pixel {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

// Attribute is a vertex-stage input, matched to vertex elements by usage
// and usage index.
type Attribute struct {
	Name       string
	Usage      graphics.VertexElementUsage
	UsageIndex int
}

// SamplerKind is the texture type a sampler reads.
type SamplerKind uint8

const (
	Sampler2D SamplerKind = iota
	SamplerCube
	Sampler2DArray
)

// Sampler is a texture sampler uniform bound to a texture unit.
type Sampler struct {
	Name string
	Unit int
	Kind SamplerKind
}

// ConstantBuffer is a block of vec4 uniforms uploaded as one array.
type ConstantBuffer struct {
	Name string
	// Slot is the constant buffer slot the context binds it from.
	Slot int
	// Size is the block size in bytes, a multiple of 16.
	Size int
}

// Reflection is the interface description of a compiled stage.
type Reflection struct {
	Attributes      []Attribute
	Samplers        []Sampler
	ConstantBuffers []ConstantBuffer
}

// Stage is a compiled shader stage. Stages are immutable and may be shared
// by any number of programs.
type Stage struct {
	Kind   Kind
	Handle gl.Shader

	// HashKey identifies the stage's code, entry point and reflection.
	HashKey uint64

	Reflection
}

// CompileError carries the native compile log of a rejected stage.
type CompileError struct {
	Kind Kind
	Log  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("shader: %s stage failed to compile: %s", e.Kind, e.Log)
}

// Load creates a native shader from a SPIR-V binary and specializes entry.
func Load(f gl.Functions, kind Kind, spirv []byte, entry string, r Reflection) (*Stage, error) {
	if len(spirv) == 0 {
		return nil, ErrEmptyBinary
	}
	s := f.CreateShader(kind.native())
	f.ShaderBinary(s, gl.SHADER_BINARY_FORMAT_SPIR_V, spirv)
	f.SpecializeShader(s, entry)
	if f.GetShaderi(s, gl.COMPILE_STATUS) != gl.TRUE {
		log := f.GetShaderInfoLog(s)
		f.DeleteShader(s)
		return nil, &CompileError{Kind: kind, Log: log}
	}
	return &Stage{
		Kind:       kind,
		Handle:     s,
		HashKey:    Hash(kind, spirv, entry, r),
		Reflection: cloneReflection(r),
	}, nil
}

// CompileWGSL translates WGSL source to a SPIR-V binary.
func CompileWGSL(source string) ([]byte, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to compile WGSL: %w", err)
	}
	return spirv, nil
}

// LoadWGSL compiles WGSL source and loads the result as a stage.
func LoadWGSL(f gl.Functions, kind Kind, source, entry string, r Reflection) (*Stage, error) {
	spirv, err := CompileWGSL(source)
	if err != nil {
		return nil, err
	}
	return Load(f, kind, spirv, entry, r)
}

// Destroy deletes the native shader. Programs already linked from the
// stage stay valid.
func (s *Stage) Destroy(f gl.Functions) {
	if s.Handle != 0 {
		f.DeleteShader(s.Handle)
		s.Handle = 0
	}
}

// Hash computes the FNV-1a key of a stage binary and its reflection.
// Stages loaded from one binary with different names or units get
// different keys, so they never share a linked program.
func Hash(kind Kind, spirv []byte, entry string, r Reflection) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte{byte(kind)})
	_, _ = h.Write(spirv)
	writeString(h, entry)

	writeInt(h, len(r.Attributes))
	for _, a := range r.Attributes {
		writeString(h, a.Name)
		writeInt(h, int(a.Usage))
		writeInt(h, a.UsageIndex)
	}
	writeInt(h, len(r.Samplers))
	for _, s := range r.Samplers {
		writeString(h, s.Name)
		writeInt(h, s.Unit)
		writeInt(h, int(s.Kind))
	}
	writeInt(h, len(r.ConstantBuffers))
	for _, cb := range r.ConstantBuffers {
		writeString(h, cb.Name)
		writeInt(h, cb.Slot)
		writeInt(h, cb.Size)
	}
	return h.Sum64()
}

//nolint:gosec // G115: reflection values are small
func writeInt(h hash.Hash64, v int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	_, _ = h.Write(buf[:])
}

//nolint:gosec // G115: entry point names are short
func writeString(h hash.Hash64, s string) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(len(s)))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(s))
}

func cloneReflection(r Reflection) Reflection {
	return Reflection{
		Attributes:      append([]Attribute(nil), r.Attributes...),
		Samplers:        append([]Sampler(nil), r.Samplers...),
		ConstantBuffers: append([]ConstantBuffer(nil), r.ConstantBuffers...),
	}
}
