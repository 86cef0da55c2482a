package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewValidationError(ErrCodeEmptyInput, "resume text is empty", nil),
			expected: "EMPTY_INPUT: resume text is empty",
		},
		{
			name:     "with cause",
			err:      NewStorageError(ErrCodeStoreFailed, "write failed", fmt.Errorf("disk full")),
			expected: "STORE_FAILED: write failed (caused by: disk full)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestHasCodeThroughWrapping(t *testing.T) {
	base := NewWorkflowError(ErrCodeNoResume, "no resume uploaded", nil)
	wrapped := fmt.Errorf("submit job description: %w", base)

	if !HasCode(wrapped, ErrCodeNoResume) {
		t.Errorf("Expected wrapped error to carry code %s", ErrCodeNoResume)
	}
	if HasCode(wrapped, ErrCodeNoAnalysis) {
		t.Errorf("Did not expect code %s", ErrCodeNoAnalysis)
	}
	if HasCode(fmt.Errorf("plain"), ErrCodeNoResume) {
		t.Errorf("Plain errors carry no code")
	}
}

func TestLogErrorFlattensAppError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelDebug)

	err := NewIOError(ErrCodeFileNotFound, "File not found: cv.txt", nil).WithContext("path", "cv.txt")
	logger.LogError(err, "Command failed")

	var entry map[string]any
	if decodeErr := json.Unmarshal(buf.Bytes(), &entry); decodeErr != nil {
		t.Fatalf("log line is not JSON: %v", decodeErr)
	}
	if entry["error_code"] != ErrCodeFileNotFound {
		t.Errorf("Expected error_code %s, got %v", ErrCodeFileNotFound, entry["error_code"])
	}
	if entry["path"] != "cv.txt" {
		t.Errorf("Expected context path to be logged, got %v", entry["path"])
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("verbose"); err == nil {
		t.Errorf("Expected error for unknown log level")
	}
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if _, err := New(level); err != nil {
			t.Errorf("Level %s should be accepted: %v", level, err)
		}
	}
}
