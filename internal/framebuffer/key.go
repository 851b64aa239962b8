package framebuffer

import (
	"errors"
	"fmt"

	"github.com/gogpu/glrender/caps"
	"github.com/gogpu/glrender/gl"
)

// Binding errors.
var (
	// ErrSliceNotSupported is returned when an array slice is requested on
	// a target that is neither a cube nor an array texture.
	ErrSliceNotSupported = errors.New("glrender: array slice requested on a target that does not support slicing")

	// ErrBindingCount is returned for empty or oversized binding sets.
	ErrBindingCount = errors.New("glrender: invalid number of render target bindings")
)

// Kind is the texture type backing a render target.
type Kind uint8

const (
	Texture2D Kind = iota
	TextureCube
	TextureArray
)

// Usage selects what happens to multisampled contents after a resolve.
type Usage uint8

const (
	PreserveContents Usage = iota
	DiscardContents
)

// Target is a render target as the cache sees it. Targets are compared by
// identity and must be comparable, typically a pointer.
type Target interface {
	Texture() gl.Texture
	Kind() Kind

	// ColorBuffer is the multisampled color renderbuffer, zero if none.
	ColorBuffer() gl.Renderbuffer
	DepthBuffer() gl.Renderbuffer
	StencilBuffer() gl.Renderbuffer

	MultiSampleCount() int
	LevelCount() int
	Size() (width, height int)
	Usage() Usage
}

// Binding is a render target bound to a color slot. ArraySlice selects the
// cube face or array layer.
type Binding struct {
	Target     Target
	ArraySlice int
}

// Key is a binding set in slot order. Keys are values: two keys built from
// equal bindings in equal order are equal, whatever slice they came from.
type Key struct {
	bindings [caps.MaxRenderTargets]Binding
	n        int
}

// NewKey copies bindings into a key.
func NewKey(bindings ...Binding) (Key, error) {
	var k Key
	if len(bindings) == 0 || len(bindings) > len(k.bindings) {
		return k, fmt.Errorf("%w: %d", ErrBindingCount, len(bindings))
	}
	for i, b := range bindings {
		if b.Target == nil {
			return k, fmt.Errorf("%w: slot %d is nil", ErrBindingCount, i)
		}
		if b.ArraySlice != 0 && b.Target.Kind() == Texture2D {
			return k, ErrSliceNotSupported
		}
	}
	k.n = copy(k.bindings[:], bindings)
	return k, nil
}

// Len returns the number of bindings.
func (k Key) Len() int { return k.n }

// At returns binding i.
func (k Key) At(i int) Binding { return k.bindings[i] }

// References reports whether t is bound in any slot.
func (k Key) References(t Target) bool {
	for i := 0; i < k.n; i++ {
		if k.bindings[i].Target == t {
			return true
		}
	}
	return false
}

// Multisampled reports whether any bound target has a multisample count.
func (k Key) Multisampled() bool {
	for i := 0; i < k.n; i++ {
		if k.bindings[i].Target.MultiSampleCount() > 0 {
			return true
		}
	}
	return false
}
