package db

import (
	"context"
	"errors"
	"testing"
)

func TestError_WrapsOp(t *testing.T) {
	err := &Error{Op: OpJSONGet, Err: context.DeadlineExceeded}

	if err.Error() != "JSON.GET: context deadline exceeded" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected errors.Is to see the wrapped error")
	}
}
