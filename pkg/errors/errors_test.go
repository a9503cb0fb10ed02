package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"index not ready", ErrIndexNotReady, http.StatusServiceUnavailable},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"cache disabled", ErrCacheDisabled, http.StatusServiceUnavailable},
		{"timeout", ErrTimeout, http.StatusServiceUnavailable},
		{"internal", ErrInternal, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("loading: %w", ErrInvalidInput), http.StatusBadRequest},
		{"app error explicit code wins", New(ErrInternal, http.StatusConflict, "conflict"), http.StatusConflict},
		{"wrapped app error", fmt.Errorf("outer: %w", New(ErrInvalidInput, http.StatusUnprocessableEntity, "bad field")), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	appErr := Newf(ErrInvalidInput, http.StatusBadRequest, "limit %d out of range", -1)
	if !errors.Is(appErr, ErrInvalidInput) {
		t.Error("AppError should unwrap to its sentinel")
	}
	if appErr.Message != "limit -1 out of range" {
		t.Errorf("Message = %q", appErr.Message)
	}
	if got := appErr.Error(); got != "invalid input: limit -1 out of range" {
		t.Errorf("Error() = %q", got)
	}
}
