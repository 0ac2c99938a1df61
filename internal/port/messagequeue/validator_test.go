package messagequeue

import (
	"strings"
	"testing"
)

func TestValidateValidChangeEvent(t *testing.T) {
	data := []byte(`{"change_id":"c1","asset_key":"index.html","capability":"ui","agent_id":"ui-agent","status":"committed","seq":1,"composite":0.72,"occurred_at":"2026-08-26T10:00:00Z"}`)
	for _, subject := range []string{SubjectChangeCommitted, SubjectChangeRolledBack, SubjectChangeFailed} {
		if err := Validate(subject, data); err != nil {
			t.Fatalf("Validate(%s): %v", subject, err)
		}
	}
}

func TestValidateUnknownSubject(t *testing.T) {
	// Unknown subjects should pass (future-proof).
	data := []byte(`{"foo":"bar"}`)
	if err := Validate("unknown.subject", data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateInvalidJSON(t *testing.T) {
	data := []byte(`{not valid json`)
	err := Validate(SubjectChangeCommitted, data)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "invalid JSON") {
		t.Fatalf("expected 'invalid JSON' in error, got: %v", err)
	}
}

func TestValidateInvalidSchema(t *testing.T) {
	// Valid JSON but not an object, so it cannot unmarshal into ChangeEvent.
	data := []byte(`"just a string"`)
	err := Validate(SubjectChangeCommitted, data)
	if err == nil {
		t.Fatal("expected schema validation error")
	}
	if !strings.Contains(err.Error(), "schema validation failed") {
		t.Fatalf("expected 'schema validation failed' in error, got: %v", err)
	}
}

func TestValidateEmptyJSON(t *testing.T) {
	// Empty object is valid JSON; all fields are zero-value.
	data := []byte(`{}`)
	if err := Validate(SubjectChangeCommitted, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
