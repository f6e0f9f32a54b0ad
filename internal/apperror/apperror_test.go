package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
	}{
		{Validation("bad field"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Conflict("taken"), http.StatusConflict},
		{Permission("denied"), http.StatusForbidden},
		{InvalidTransition("no path"), http.StatusConflict},
	}
	for _, tc := range cases {
		if got := tc.err.Status(); got != tc.status {
			t.Errorf("%v: Status() = %d, want %d", tc.err, got, tc.status)
		}
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("creating reservation: %w", Conflict("taken"))

	var appErr *Error
	if !errors.As(wrapped, &appErr) {
		t.Fatalf("errors.As failed on wrapped apperror")
	}
	if appErr.Kind != KindConflict {
		t.Fatalf("expected conflict kind, got %v", appErr.Kind)
	}
}
