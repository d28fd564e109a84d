package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	apperrors "recstudio/internal/platform/errors"
)

func TestNormalizeAppErrorPassesThrough(t *testing.T) {
	t.Parallel()
	in := apperrors.WithSuggestion("EXPORT_TASK_NOT_FOUND", "export task not found", "start a new export")
	out := apperrors.Normalize(in, "FALLBACK", "fallback")
	if out != in {
		t.Fatalf("expected pass-through, got %+v", out)
	}
}

func TestNormalizeWrappedAppError(t *testing.T) {
	t.Parallel()
	wrapped := fmt.Errorf("stop recording: %w", apperrors.New("SESSION_NOT_FOUND", "session not found"))
	out := apperrors.Normalize(wrapped, "FALLBACK", "fallback")
	if out.Code != "SESSION_NOT_FOUND" || out.Message != "session not found" {
		t.Fatalf("unexpected normalization: %+v", out)
	}
}

func TestNormalizeNestedEnvelopeJSON(t *testing.T) {
	t.Parallel()
	raw := `{"error":{"code":"ENCODER_FAILED","message":"hardware encoder rejected input","suggestion":"retry with software encoding"}}`
	out := apperrors.Normalize(raw, "FALLBACK", "fallback")
	if out.Code != "ENCODER_FAILED" {
		t.Fatalf("expected envelope code, got %+v", out)
	}
	if out.Suggestion != "retry with software encoding" {
		t.Fatalf("suggestion lost: %+v", out)
	}
}

func TestNormalizeDirectJSONObject(t *testing.T) {
	t.Parallel()
	out := apperrors.Normalize(`{"code":"IO_ERROR","message":"disk full"}`, "FALLBACK", "fallback")
	if out.Code != "IO_ERROR" || out.Message != "disk full" {
		t.Fatalf("unexpected normalization: %+v", out)
	}
}

func TestNormalizeRPCFlattenedError(t *testing.T) {
	t.Parallel()
	// net/rpc prepends its own text before the encoded payload.
	err := errors.New(`reading body {"code":"EXPORT_ALREADY_ACTIVE","message":"export already running"}`)
	out := apperrors.Normalize(err, "FALLBACK", "fallback")
	if out.Code != "EXPORT_ALREADY_ACTIVE" {
		t.Fatalf("unexpected normalization: %+v", out)
	}
}

func TestNormalizePlainStringAndFallbacks(t *testing.T) {
	t.Parallel()
	out := apperrors.Normalize("something broke", "CMD_FAILED", "command failed")
	if out.Code != "CMD_FAILED" || out.Message != "something broke" {
		t.Fatalf("unexpected normalization: %+v", out)
	}
	out = apperrors.Normalize(nil, "CMD_FAILED", "command failed")
	if out.Code != "CMD_FAILED" || out.Message != "command failed" {
		t.Fatalf("fallback not applied: %+v", out)
	}
	out = apperrors.Normalize("   ", "CMD_FAILED", "command failed")
	if out.Message != "command failed" {
		t.Fatalf("blank string should fall back: %+v", out)
	}
}

func TestNormalizeUnrecognizedValue(t *testing.T) {
	t.Parallel()
	out := apperrors.Normalize(42, "CMD_FAILED", "command failed")
	if out.Code != "CMD_FAILED" || out.Message != "command failed" {
		t.Fatalf("unexpected normalization: %+v", out)
	}
}
