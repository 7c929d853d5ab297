package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeConfigInvalid, "fps must be positive")

	if err.Code != ErrCodeConfigInvalid {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeConfigInvalid)
	}
	if err.Underlying != nil {
		t.Error("Underlying should be nil for New error")
	}
	if len(err.Stack) == 0 {
		t.Error("Stack should be captured")
	}
	if err.Retryable {
		t.Error("Retryable should default to false")
	}
	if !strings.Contains(err.StackTrace(), "TestNew") {
		t.Errorf("stack trace should include the caller:\n%s", err.StackTrace())
	}
}

func TestWrap(t *testing.T) {
	underlying := errors.New("connection reset")
	err := Wrap(underlying, ErrCodeTransport, "websocket read failed")

	if !errors.Is(err, underlying) {
		t.Error("errors.Is should see the underlying error")
	}
	if got := err.Error(); got != "[TRANSPORT] websocket read failed: connection reset" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "test"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestContextIsOrdered(t *testing.T) {
	err := New(ErrCodeRender, "draw failed").
		WithContext("widget", "apex").
		WithContext("area", "80x24")

	want := "[RENDER] draw failed {area: 80x24, widget: apex}"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCodesThroughWrapping(t *testing.T) {
	inner := Wrap(errors.New("token expired"), ErrCodeAuth, "authenticate")
	outer := fmt.Errorf("dashboard session: %w", Wrap(inner, ErrCodeTransport, "upgrade"))

	if !IsCode(outer, ErrCodeTransport) {
		t.Error("outer code should match")
	}
	if !IsCode(outer, ErrCodeAuth) {
		t.Error("inner code should match through the chain")
	}
	if IsCode(outer, ErrCodeRaw) {
		t.Error("unrelated code should not match")
	}
	if got := GetCode(outer); got != ErrCodeTransport {
		t.Errorf("GetCode = %v, want TRANSPORT", got)
	}
	if got := GetCode(errors.New("plain")); got != ErrCodeInternal {
		t.Errorf("GetCode(plain) = %v, want INTERNAL", got)
	}
	if got := GetCode(nil); got != "" {
		t.Errorf("GetCode(nil) = %v, want empty", got)
	}
}

func TestRetryable(t *testing.T) {
	err := fmt.Errorf("watch: %w", New(ErrCodeWatch, "too many requests").WithRetryable(true))
	if !IsRetryable(err) {
		t.Error("retryable flag should be found through wrapping")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
}

func TestUserMessage(t *testing.T) {
	inner := New(ErrCodeAuth, "signature mismatch").WithUserMessage("invalid token")
	err := Wrap(inner, ErrCodeTransport, "upgrade")

	if got := UserMessage(err); got != "invalid token" {
		t.Errorf("UserMessage = %q, want %q", got, "invalid token")
	}
	if got := UserMessage(errors.New("boom")); got != "boom" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
