package gl_test

import (
	"errors"
	"testing"

	"github.com/gogpu/glrender/gl"
	"github.com/gogpu/glrender/gl/gltest"
)

func TestCheck(t *testing.T) {
	f := gltest.New()

	if err := gl.Check(f, "glClear"); err != nil {
		t.Fatalf("clean state: unexpected error %v", err)
	}

	f.InjectError(gl.INVALID_OPERATION)
	err := gl.Check(f, "glClear")
	var glErr *gl.Error
	if !errors.As(err, &glErr) {
		t.Fatalf("expected *gl.Error, got %v", err)
	}
	if glErr.Code != gl.INVALID_OPERATION {
		t.Errorf("code = %s, want GL_INVALID_OPERATION", gl.CodeName(glErr.Code))
	}
	if glErr.Op != "glClear" {
		t.Errorf("op = %q, want glClear", glErr.Op)
	}

	// The flag is cleared by the first query.
	if err := gl.Check(f, "glClear"); err != nil {
		t.Errorf("second check: unexpected error %v", err)
	}
}

func TestCodeName(t *testing.T) {
	tests := []struct {
		code gl.Enum
		want string
	}{
		{gl.NO_ERROR, "GL_NO_ERROR"},
		{gl.INVALID_ENUM, "GL_INVALID_ENUM"},
		{gl.INVALID_VALUE, "GL_INVALID_VALUE"},
		{gl.OUT_OF_MEMORY, "GL_OUT_OF_MEMORY"},
		{gl.INVALID_FRAMEBUFFER_OPERATION, "GL_INVALID_FRAMEBUFFER_OPERATION"},
		{0x1234, "0x1234"},
	}
	for _, tt := range tests {
		if got := gl.CodeName(tt.code); got != tt.want {
			t.Errorf("CodeName(%#x) = %q, want %q", uint32(tt.code), got, tt.want)
		}
	}
}
