package framebuffer

import (
	"errors"
	"fmt"

	"github.com/gogpu/glrender/gl"
)

// Completeness categories.
var (
	ErrIncompleteAttachment  = errors.New("glrender: framebuffer attachment is incomplete")
	ErrMissingAttachment     = errors.New("glrender: framebuffer has no attachments")
	ErrUnsupported           = errors.New("glrender: framebuffer attachment combination is not supported")
	ErrIncompleteMultisample = errors.New("glrender: framebuffer attachments have mismatched sample counts")
	ErrIncompleteUnknown     = errors.New("glrender: framebuffer is incomplete")
)

// CompletenessError reports a framebuffer that failed validation.
type CompletenessError struct {
	Status gl.Enum
	Err    error
}

func (e *CompletenessError) Error() string {
	return fmt.Sprintf("%v (status 0x%04x)", e.Err, uint32(e.Status))
}

func (e *CompletenessError) Unwrap() error { return e.Err }

func completeness(status gl.Enum) error {
	var err error
	switch status {
	case gl.FRAMEBUFFER_COMPLETE:
		return nil
	case gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		err = ErrIncompleteAttachment
	case gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		err = ErrMissingAttachment
	case gl.FRAMEBUFFER_UNSUPPORTED:
		err = ErrUnsupported
	case gl.FRAMEBUFFER_INCOMPLETE_MULTISAMPLE:
		err = ErrIncompleteMultisample
	default:
		err = ErrIncompleteUnknown
	}
	return &CompletenessError{Status: status, Err: err}
}
