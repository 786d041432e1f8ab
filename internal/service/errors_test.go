package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Is(t *testing.T) {
	t.Parallel()

	v := NewValidationError()
	if v.Err() != nil {
		t.Fatal("empty ValidationError should produce nil error")
	}

	v.Add("title", "is required")
	v.Add("title", "ignored second message")
	v.Add("category", "must be one of: Bedsitter, 1 Bedroom, 2 Bedroom")

	err := fmt.Errorf("create: %w", v.Err())
	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected errors.Is(err, ErrValidation)")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("expected errors.As to find *ValidationError")
	}
	if ve.Fields["title"] != "is required" {
		t.Errorf("title message = %q, want first message kept", ve.Fields["title"])
	}
}

func TestValidationError_ErrorIsSorted(t *testing.T) {
	t.Parallel()

	v := NewValidationError()
	v.Add("price", "is required")
	v.Add("location", "is required")

	want := "validation failed: location: is required; price: is required"
	if got := v.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
