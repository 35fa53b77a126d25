package classifier

import (
	"errors"
	"fmt"
	"testing"
)

func TestMalformedEventError(t *testing.T) {
	err := &MalformedEventError{Field: "bucket_name"}

	if !IsMalformedEvent(err) {
		t.Error("expected IsMalformedEvent to match")
	}
	if IsAccessDenied(err) || IsIngestion(err) {
		t.Error("malformed event should not match other categories")
	}
	if got := err.Error(); got != "malformed event: missing bucket_name" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestMalformedEventErrorWrapped(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := fmt.Errorf("classify: %w", &MalformedEventError{Field: "detail", Err: cause})

	if !IsMalformedEvent(err) {
		t.Error("expected IsMalformedEvent to match through wrapping")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to survive unwrapping")
	}
}

func TestAccessDeniedError(t *testing.T) {
	cause := errors.New("AccessDenied: not authorized")
	err := &AccessDeniedError{AccountID: "111122223333", Role: "verify-role", Err: cause}

	if !IsAccessDenied(err) {
		t.Error("expected IsAccessDenied to match")
	}
	if IsMalformedEvent(err) || IsIngestion(err) {
		t.Error("access denied should not match other categories")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to survive unwrapping")
	}
}

func TestIngestionError(t *testing.T) {
	cause := errors.New("batch import rejected 1 finding")
	err := fmt.Errorf("handle: %w", &IngestionError{FindingID: "abc123", Err: cause})

	if !IsIngestion(err) {
		t.Error("expected IsIngestion to match through wrapping")
	}
	if IsMalformedEvent(err) || IsAccessDenied(err) {
		t.Error("ingestion error should not match other categories")
	}

	var ie *IngestionError
	if !errors.As(err, &ie) {
		t.Fatal("expected errors.As to extract IngestionError")
	}
	if ie.FindingID != "abc123" {
		t.Errorf("FindingID = %q, want abc123", ie.FindingID)
	}
}
