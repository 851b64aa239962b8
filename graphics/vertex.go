package graphics

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// ErrUnknownVertexFormat is returned for vertex formats without a native mapping.
var ErrUnknownVertexFormat = errors.New("graphics: unsupported vertex format")

// VertexElementUsage is the semantic of a vertex element. Together with a
// usage index it selects the vertex shader attribute the element feeds.
type VertexElementUsage uint8

const (
	UsagePosition VertexElementUsage = iota
	UsageColor
	UsageTextureCoordinate
	UsageNormal
	UsageBinormal
	UsageTangent
	UsageBlendIndices
	UsageBlendWeight
	UsageDepth
	UsageFog
	UsagePointSize
	UsageSample
	UsageTessellateFactor
)

var usageNames = [...]string{
	UsagePosition:          "POSITION",
	UsageColor:             "COLOR",
	UsageTextureCoordinate: "TEXCOORD",
	UsageNormal:            "NORMAL",
	UsageBinormal:          "BINORMAL",
	UsageTangent:           "TANGENT",
	UsageBlendIndices:      "BLENDINDICES",
	UsageBlendWeight:       "BLENDWEIGHT",
	UsageDepth:             "DEPTH",
	UsageFog:               "FOG",
	UsagePointSize:         "PSIZE",
	UsageSample:            "SAMPLE",
	UsageTessellateFactor:  "TESSFACTOR",
}

func (u VertexElementUsage) String() string {
	if int(u) < len(usageNames) {
		return usageNames[u]
	}
	return "UNKNOWN"
}

// VertexElement is one attribute inside a vertex.
type VertexElement struct {
	Offset     int
	Format     gputypes.VertexFormat
	Usage      VertexElementUsage
	UsageIndex int
}

// VertexDeclaration describes the layout of one vertex stream.
// Declarations are immutable once created and compared by pointer.
type VertexDeclaration struct {
	stride   int
	elements []VertexElement
}

// NewVertexDeclaration creates a declaration. A zero stride is computed as
// the end of the furthest element.
func NewVertexDeclaration(stride int, elements ...VertexElement) (*VertexDeclaration, error) {
	end := 0
	for _, e := range elements {
		n := VertexFormatSize(e.Format)
		if n == 0 {
			return nil, ErrUnknownVertexFormat
		}
		if e.Offset+n > end {
			end = e.Offset + n
		}
	}
	if stride == 0 {
		stride = end
	}
	return &VertexDeclaration{
		stride:   stride,
		elements: append([]VertexElement(nil), elements...),
	}, nil
}

// Stride returns the byte distance between consecutive vertices.
func (d *VertexDeclaration) Stride() int { return d.stride }

// Elements returns the declaration's elements. The slice must not be modified.
func (d *VertexDeclaration) Elements() []VertexElement { return d.elements }

// VertexFormatSize returns the byte size of a vertex format, or 0 if the
// format is not supported.
func VertexFormatSize(f gputypes.VertexFormat) int {
	switch f {
	case gputypes.VertexFormatFloat32:
		return 4
	case gputypes.VertexFormatFloat32x2:
		return 8
	case gputypes.VertexFormatFloat32x3:
		return 12
	case gputypes.VertexFormatFloat32x4:
		return 16
	case gputypes.VertexFormatUnorm8x4, gputypes.VertexFormatUint8x4:
		return 4
	case gputypes.VertexFormatSint16x2, gputypes.VertexFormatSnorm16x2, gputypes.VertexFormatFloat16x2:
		return 4
	case gputypes.VertexFormatSint16x4, gputypes.VertexFormatSnorm16x4, gputypes.VertexFormatFloat16x4:
		return 8
	}
	return 0
}
