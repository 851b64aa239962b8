// Package vertex caches vertex buffer slot bindings and attribute pointer
// state so consecutive draws with identical geometry issue no native calls.
package vertex

import (
	"errors"
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/gogpu/glrender/caps"
	"github.com/gogpu/glrender/gl"
	"github.com/gogpu/glrender/graphics"
	"github.com/gogpu/glrender/internal/glconv"
)

// ErrTooManyBindings is returned when more vertex buffers are bound than
// the device has attribute slots.
var ErrTooManyBindings = errors.New("glrender: too many vertex buffer bindings")

// Binding is a vertex buffer bound to a slot.
type Binding struct {
	Buffer      gl.Buffer
	Declaration *graphics.VertexDeclaration

	// VertexOffset is the index of the first vertex in the buffer.
	VertexOffset int

	// InstanceFrequency advances the slot once per that many instances.
	// Zero means per vertex.
	InstanceFrequency int
}

// Attribs resolves vertex element usages to attribute locations of the
// bound program. Implementations are used as map keys and must be
// comparable, typically a pointer.
type Attribs interface {
	AttribLocation(usage graphics.VertexElementUsage, index int) (gl.Attrib, bool)
}

type element struct {
	attrib gl.Attrib
	format glconv.VertexFormat
	offset int
}

// Layout is a vertex declaration resolved against one program.
type Layout struct {
	stride   int32
	elements []element
	mask     uint64
}

type layoutKey struct {
	decl  *graphics.VertexDeclaration
	attrs Attribs
}

// record is the last state issued for a slot. The zero record is inactive.
type record struct {
	buffer  gl.Buffer
	layout  *Layout
	offset  int
	divisor int
	active  bool
}

// Cache is the vertex binding state of one context.
type Cache struct {
	f      gl.Functions
	caps   *caps.Table
	checks bool

	layouts map[layoutKey]*Layout
	slots   []record
	enabled uint64
}

// New creates a cache with one slot per vertex attribute.
func New(f gl.Functions, t *caps.Table, checks bool) *Cache {
	n := t.MaxVertexAttributes
	if n <= 0 {
		n = 16
	}
	return &Cache{
		f:       f,
		caps:    t,
		checks:  checks,
		layouts: make(map[layoutKey]*Layout),
		slots:   make([]record, n),
	}
}

// Apply binds the given slots for a draw starting at baseVertex. Slots
// whose buffer, layout, byte offset and divisor match the previous draw are
// skipped. Attribute arrays are then enabled or disabled to match exactly
// the locations the bound slots feed.
func (c *Cache) Apply(bindings []Binding, attrs Attribs, baseVertex int) error {
	if len(bindings) > len(c.slots) {
		return fmt.Errorf("%w: %d > %d", ErrTooManyBindings, len(bindings), len(c.slots))
	}
	if !c.caps.SupportsInstancing {
		for i, b := range bindings {
			if b.InstanceFrequency != 0 {
				return fmt.Errorf("%w: instance frequency on slot %d requires instancing", caps.ErrNotSupported, i)
			}
		}
	}

	var required uint64
	for i, b := range bindings {
		layout, err := c.layout(b.Declaration, attrs)
		if err != nil {
			return err
		}
		rec := record{
			buffer:  b.Buffer,
			layout:  layout,
			offset:  (b.VertexOffset + baseVertex) * b.Declaration.Stride(),
			divisor: b.InstanceFrequency,
			active:  true,
		}
		if c.slots[i] != rec {
			c.bind(rec)
			c.slots[i] = rec
		}
		required |= layout.mask
	}
	for i := len(bindings); i < len(c.slots); i++ {
		c.slots[i] = record{}
	}
	c.reconcile(required)

	if c.checks {
		return gl.Check(c.f, "apply vertex bindings")
	}
	return nil
}

func (c *Cache) bind(rec record) {
	c.f.BindBuffer(gl.ARRAY_BUFFER, rec.buffer)
	for _, e := range rec.layout.elements {
		c.f.VertexAttribPointer(e.attrib, e.format.Size, e.format.Type, e.format.Normalized, rec.layout.stride, rec.offset+e.offset)
		if c.caps.SupportsInstancing {
			c.f.VertexAttribDivisor(e.attrib, uint32(rec.divisor))
		}
	}
}

// ApplyClient points the attributes of decl at caller memory. data must be
// pinned until the draw that follows has been issued. Every slot record is
// invalidated so the next buffer-backed draw rebinds from scratch.
func (c *Cache) ApplyClient(decl *graphics.VertexDeclaration, attrs Attribs, data unsafe.Pointer) error {
	layout, err := c.layout(decl, attrs)
	if err != nil {
		return err
	}
	c.f.BindBuffer(gl.ARRAY_BUFFER, 0)
	for _, e := range layout.elements {
		c.f.ClientVertexAttribPointer(e.attrib, e.format.Size, e.format.Type, e.format.Normalized, layout.stride, unsafe.Add(data, e.offset))
		if c.caps.SupportsInstancing {
			c.f.VertexAttribDivisor(e.attrib, 0)
		}
	}
	c.Invalidate()
	c.reconcile(layout.mask)

	if c.checks {
		return gl.Check(c.f, "apply client vertex data")
	}
	return nil
}

// Invalidate forgets every slot record.
func (c *Cache) Invalidate() {
	clear(c.slots)
}

// Assume forgets every slot record and takes enabled as the set of
// attribute arrays currently enabled natively.
func (c *Cache) Assume(enabled uint64) {
	clear(c.slots)
	c.enabled = enabled
}

// Enabled returns the set of enabled attribute locations as a bitmask.
func (c *Cache) Enabled() uint64 { return c.enabled }

func (c *Cache) reconcile(required uint64) {
	for diff := c.enabled ^ required; diff != 0; {
		i := bits.TrailingZeros64(diff)
		bit := uint64(1) << i
		diff &^= bit
		if required&bit != 0 {
			c.f.EnableVertexAttribArray(gl.Attrib(i))
		} else {
			c.f.DisableVertexAttribArray(gl.Attrib(i))
		}
	}
	c.enabled = required
}

// layout returns the memoised layout of decl for attrs.
func (c *Cache) layout(decl *graphics.VertexDeclaration, attrs Attribs) (*Layout, error) {
	key := layoutKey{decl, attrs}
	if l, ok := c.layouts[key]; ok {
		return l, nil
	}
	l := &Layout{stride: int32(decl.Stride())}
	for _, e := range decl.Elements() {
		loc, ok := attrs.AttribLocation(e.Usage, e.UsageIndex)
		if !ok {
			continue
		}
		vf, ok := glconv.VertexAttrib(e.Format)
		if !ok {
			return nil, fmt.Errorf("%w: %v", graphics.ErrUnknownVertexFormat, e.Format)
		}
		if loc >= 64 {
			return nil, fmt.Errorf("glrender: attribute location %d out of range", loc)
		}
		l.elements = append(l.elements, element{attrib: loc, format: vf, offset: e.Offset})
		l.mask |= 1 << loc
	}
	c.layouts[key] = l
	return l, nil
}

// Forget drops the memoised layouts of attrs, for example when its program
// is deleted.
func (c *Cache) Forget(attrs Attribs) {
	for k := range c.layouts {
		if k.attrs == attrs {
			delete(c.layouts, k)
		}
	}
	c.Invalidate()
}
