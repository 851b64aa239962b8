package gl

import "fmt"

// Error is a native error reported by GetError after an operation.
type Error struct {
	// Op names the operation that was checked.
	Op string

	// Code is the native error code.
	Code Enum
}

func (e *Error) Error() string {
	return fmt.Sprintf("gl: %s failed: %s", e.Op, CodeName(e.Code))
}

// CodeName returns the symbolic name of a native error code.
func CodeName(code Enum) string {
	switch code {
	case NO_ERROR:
		return "GL_NO_ERROR"
	case INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	case INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	default:
		return fmt.Sprintf("0x%04x", uint32(code))
	}
}

// Check returns an *Error if the native error state is not clean.
// The native error flag is cleared as a side effect.
func Check(f Functions, op string) error {
	if code := f.GetError(); code != NO_ERROR {
		return &Error{Op: op, Code: code}
	}
	return nil
}
