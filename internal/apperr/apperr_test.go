package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_SurvivesWrapping(t *testing.T) {
	base := New(KindNotFound, "video not found")
	wrapped := fmt.Errorf("load video: %w", base)

	if KindOf(wrapped) != KindNotFound {
		t.Fatalf("kind lost through wrapping: %v", KindOf(wrapped))
	}
	if !IsKind(wrapped, KindNotFound) {
		t.Fatalf("IsKind should see through wrapping")
	}
	if IsKind(wrapped, KindValidation) {
		t.Fatalf("IsKind matched the wrong kind")
	}
}

func TestKindOf_PlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != "" {
		t.Fatalf("plain errors have no kind, got %q", got)
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindExternalService, "call ai server", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable via errors.Is")
	}
	if !IsKind(err, KindExternalService) {
		t.Fatalf("wrapped error lost its kind")
	}
}
