package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewAnalysisError(t *testing.T) {
	cause := errors.New("underlying error")

	err := New(TransportError, "could not resolve revision", cause)

	if err.Code != TransportError {
		t.Errorf("Code = %v, want %v", err.Code, TransportError)
	}
	if err.Message != "could not resolve revision" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestAnalysisError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      TransportError,
			message:   "fetch failed",
			cause:     errors.New("connection refused"),
			wantParts: []string{"TRANSPORT_ERROR", "fetch failed", "connection refused"},
		},
		{
			name:      "without cause",
			code:      NoStackTrace,
			message:   "no parseable stack trace in report",
			cause:     nil,
			wantParts: []string{"NO_STACK_TRACE", "no parseable stack trace"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.code, tt.message, tt.cause).Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, missing %q", got, part)
				}
			}
		})
	}
}

func TestWithDetails(t *testing.T) {
	err := New(NoFilesRetrieved, "no candidate file could be fetched", nil).
		WithDetails(map[string]interface{}{"requested": 3})

	details, ok := err.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("Details type = %T", err.Details)
	}
	if details["requested"] != 3 {
		t.Errorf("details = %v", details)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"direct", New(ConfigInvalid, "bad config", nil), ConfigInvalid},
		{"wrapped", fmt.Errorf("loading: %w", New(StorageError, "db locked", nil)), StorageError},
		{"foreign", errors.New("plain"), InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("building: %w", New(NoApplicationFiles, "only vendor frames", nil))

	if !IsCode(err, NoApplicationFiles) {
		t.Error("IsCode should match through wrapping")
	}
	if IsCode(err, NoStackTrace) {
		t.Error("IsCode matched the wrong code")
	}
	if IsCode(errors.New("plain"), NoStackTrace) {
		t.Error("IsCode matched a foreign error")
	}
}
