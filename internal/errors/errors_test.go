package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestGameError_Error(t *testing.T) {
	err := &GameError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "save not found",
	}

	expected := "NOT_FOUND: save not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("scene_ref is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "scene_ref is required" {
		t.Errorf("Message = %q, want %q", err.Message, "scene_ref is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("save.json")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Details["identifier"] != "save.json" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "save.json")
	}
}

func TestNewOnboardingRequired(t *testing.T) {
	missing := []string{"party.You.name", "flags.prologue.city"}
	err := NewOnboardingRequired(missing)

	if err.Code != ErrOnboardingRequired {
		t.Errorf("Code = %q, want %q", err.Code, ErrOnboardingRequired)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if fields, ok := err.Details["missing_fields"].([]string); !ok || len(fields) != 2 {
		t.Errorf("Details[missing_fields] = %v, want %v", err.Details["missing_fields"], missing)
	}
}

func TestNewSchemaMissing(t *testing.T) {
	err := NewSchemaMissing("/data/save_schema.v1.2.json")

	if err.Code != ErrSchemaMissing {
		t.Errorf("Code = %q, want %q", err.Code, ErrSchemaMissing)
	}
	if err.Details["path"] != "/data/save_schema.v1.2.json" {
		t.Errorf("Details[path] = %v, want schema path", err.Details["path"])
	}
}

func TestNewSchemaInvalid(t *testing.T) {
	cause := fmt.Errorf("unexpected end of JSON input")
	err := NewSchemaInvalid("/data/journal_schema.v1.0.json", cause)

	if err.Code != ErrSchemaInvalid {
		t.Errorf("Code = %q, want %q", err.Code, ErrSchemaInvalid)
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap should expose the parse error")
	}
}

func TestNewPersistenceFailed(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewPersistenceFailed(cause)

	if err.Code != ErrPersistenceFailed {
		t.Errorf("Code = %q, want %q", err.Code, ErrPersistenceFailed)
	}
	if err.Status != 500 {
		t.Errorf("Status = %d, want 500", err.Status)
	}
	// Callers must be able to distinguish "storage refused" from "turn logic bug".
	if !errors.Is(err, cause) {
		t.Error("Unwrap should expose the original cause")
	}
}

func TestNewPersistenceFailed_NilCause(t *testing.T) {
	err := NewPersistenceFailed(nil)

	if err.Code != ErrPersistenceFailed {
		t.Errorf("Code = %q, want %q", err.Code, ErrPersistenceFailed)
	}
	if err.Message == "" {
		t.Error("Message should not be empty")
	}
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if !Is(err, ErrNotFound) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if Is(err, ErrPersistenceFailed) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("non-GameError", func(t *testing.T) {
		err := fmt.Errorf("plain error")
		if Is(err, ErrNotFound) {
			t.Error("Is() = true, want false for non-GameError")
		}
	})
}
