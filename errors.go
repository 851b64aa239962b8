package glrender

import (
	"errors"

	"github.com/gogpu/glrender/caps"
	"github.com/gogpu/glrender/internal/framebuffer"
	"github.com/gogpu/glrender/internal/glconv"
	"github.com/gogpu/glrender/internal/program"
	"github.com/gogpu/glrender/internal/vertex"
)

var (
	// ErrWrongThread is returned when a device or context is used from a
	// thread other than the one that created it.
	ErrWrongThread = errors.New("glrender: called from a thread that does not own the context")

	// ErrNotSupported is wrapped by errors reporting a feature the driver
	// lacks. Such errors are returned before any native call is issued.
	ErrNotSupported = caps.ErrNotSupported

	// ErrInvalidPrimitive is returned for primitive topologies without a
	// native mode.
	ErrInvalidPrimitive = glconv.ErrInvalidPrimitive

	// ErrSliceNotSupported is returned when an array slice is requested on a
	// plain 2D render target.
	ErrSliceNotSupported = framebuffer.ErrSliceNotSupported

	// ErrNilStage is returned when a draw is issued without both shader stages.
	ErrNilStage = program.ErrNilStage

	// ErrTooManyBindings is returned when more vertex buffers or render
	// targets are bound than the device supports.
	ErrTooManyBindings = vertex.ErrTooManyBindings

	// ErrNoIndexBuffer is returned by indexed draws without an index buffer.
	ErrNoIndexBuffer = errors.New("glrender: no index buffer bound")

	// ErrInvalidSlot is returned for texture, sampler or constant buffer
	// slots outside the device limits.
	ErrInvalidSlot = errors.New("glrender: slot out of range")

	// ErrDataTooShort is returned by user-memory draws whose slices hold
	// fewer elements than the draw consumes.
	ErrDataTooShort = errors.New("glrender: draw reads past the end of the supplied data")

	// ErrNoDeclaration is returned by user-memory draws without a vertex
	// declaration.
	ErrNoDeclaration = errors.New("glrender: user-memory draw without a vertex declaration")

	// ErrDestroyed is returned by operations on a destroyed device or resource.
	ErrDestroyed = errors.New("glrender: use of destroyed object")
)

// LinkError carries the native link log of a rejected program.
type LinkError = program.LinkError

// CompletenessError reports a framebuffer the driver rejected.
type CompletenessError = framebuffer.CompletenessError
