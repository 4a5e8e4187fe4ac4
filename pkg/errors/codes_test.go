package errors

import (
	"errors"
	"testing"
)

func TestSupervisorError_Error(t *testing.T) {
	err := New(ErrCodeNodeTracked, "Purge", "node must be stopped first", nil)
	expected := "[3001] Purge: node must be stopped first"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}

	cause := errors.New("pid file present")
	errWithCause := New(ErrCodeNodeTracked, "Purge", "node must be stopped first", cause)
	expectedWithCause := "[3001] Purge: node must be stopped first (cause: pid file present)"
	if errWithCause.Error() != expectedWithCause {
		t.Errorf("Expected %q, got %q", expectedWithCause, errWithCause.Error())
	}
}

func TestSupervisorError_Unwrap(t *testing.T) {
	cause := errors.New("no such file")
	err := New(ErrCodeMissingArtifact, "ViewLogs", "log file missing", cause)

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Expected cause %v, got %v", cause, unwrapped)
	}

	errNoCause := New(ErrCodeMissingArtifact, "ViewLogs", "log file missing", nil)
	if errors.Unwrap(errNoCause) != nil {
		t.Errorf("Expected nil cause, got %v", errors.Unwrap(errNoCause))
	}
}

func TestSupervisorError_Fields(t *testing.T) {
	err := New(ErrCodeLaunchFailed, "Start", "process died during grace period", nil).(*SupervisorError)
	if err.Code != ErrCodeLaunchFailed {
		t.Errorf("Expected code %v, got %v", ErrCodeLaunchFailed, err.Code)
	}
	if err.Operation != "Start" {
		t.Errorf("Expected operation %q, got %q", "Start", err.Operation)
	}
	if err.Msg != "process died during grace period" {
		t.Errorf("Expected message %q, got %q", "process died during grace period", err.Msg)
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(ErrCodeDirUnreachable, "Start", "cannot enter install dir", nil)); got != ErrCodeDirUnreachable {
		t.Errorf("Expected %v, got %v", ErrCodeDirUnreachable, got)
	}
	if got := CodeOf(errors.New("plain")); got != ErrCodeUnknown {
		t.Errorf("Expected %v for plain error, got %v", ErrCodeUnknown, got)
	}
}
