package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestInvalidInputError(t *testing.T) {
	err := NewInvalidInputError("https://example.com", "not a maxroll.gg URL")

	want := `not a maxroll.gg URL: "https://example.com"`
	if err.Error() != want {
		t.Fatalf("Error message = %q, want %q", err.Error(), want)
	}

	if !IsInvalidInputError(fmt.Errorf("import: %w", err)) {
		t.Fatalf("IsInvalidInputError returned false for wrapped InvalidInputError")
	}

	empty := NewInvalidInputError("", "guide URL is required")
	if empty.Error() != "guide URL is required" {
		t.Fatalf("Error message = %q, want reason only", empty.Error())
	}
}

func TestNetworkError(t *testing.T) {
	err := NewNetworkError("https://maxroll.gg/x", context.DeadlineExceeded)

	if !IsNetworkError(stdErrors.Join(err)) {
		t.Fatalf("IsNetworkError returned false for joined NetworkError")
	}

	if !stdErrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("NetworkError does not unwrap to its cause")
	}

	if !err.Timeout() {
		t.Fatalf("Timeout() = false for deadline exceeded")
	}

	refused := NewNetworkError("https://maxroll.gg/x", stdErrors.New("connection refused"))
	if refused.Timeout() {
		t.Fatalf("Timeout() = true for a plain error")
	}

	if IsHTTPStatusError(err) {
		t.Fatalf("IsHTTPStatusError returned true for NetworkError")
	}
}

func TestHTTPStatusError(t *testing.T) {
	err := NewHTTPStatusError("https://maxroll.gg/x", 404)

	want := "HTTP 404 fetching https://maxroll.gg/x"
	if err.Error() != want {
		t.Fatalf("Error message = %q, want %q", err.Error(), want)
	}

	wrapped := fmt.Errorf("fetch guide: %w", err)
	if !IsHTTPStatusError(wrapped) {
		t.Fatalf("IsHTTPStatusError returned false for wrapped HTTPStatusError")
	}
	if got := StatusCode(wrapped); got != 404 {
		t.Fatalf("StatusCode() = %d, want 404", got)
	}
	if got := StatusCode(stdErrors.New("other")); got != 0 {
		t.Fatalf("StatusCode() = %d for unrelated error, want 0", got)
	}
}

func TestStopProcessingError(t *testing.T) {
	err := NewStopProcessingError("user stopped")

	if err.Error() != "user stopped" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "user stopped")
	}

	if !IsStopProcessingError(err) {
		t.Fatalf("IsStopProcessingError returned false for StopProcessingError")
	}

	wrapped := stdErrors.Join(err)
	if !IsStopProcessingError(wrapped) {
		t.Fatalf("IsStopProcessingError returned false for wrapped StopProcessingError")
	}
}
