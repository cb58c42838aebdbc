package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidEdge, "bad edge %q", "1~2")

	if err.Code != ErrCodeInvalidEdge {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidEdge)
	}
	if want := `INVALID_EDGE: bad edge "1~2"`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("shm_open failed")
	err := Wrap(ErrCodeResource, cause, "attach session %s", "run42")

	if !stderrors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want cause", err.Unwrap())
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeSessionNotFound, "no such session")
	wrapped := fmt.Errorf("opening: %w", err)

	if !Is(wrapped, ErrCodeSessionNotFound) {
		t.Errorf("Is(wrapped, SESSION_NOT_FOUND) = false, want true")
	}
	if Is(wrapped, ErrCodeInvalidEdge) {
		t.Errorf("Is(wrapped, INVALID_EDGE) = true, want false")
	}
	if Is(stderrors.New("plain"), ErrCodeInternal) {
		t.Errorf("Is(plain, INTERNAL) = true, want false")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInvalidConfig, "x")); got != ErrCodeInvalidConfig {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeInvalidConfig)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidEdge, "bad edge")); got != "bad edge" {
		t.Errorf("UserMessage() = %q, want %q", got, "bad edge")
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q, want %q", got, "plain")
	}
}
