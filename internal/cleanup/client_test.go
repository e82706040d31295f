package cleanup

// Notes:
// - In-package tests: parseResponse enforces the id-set contract and is
//   unexported. The transport path is a thin CreateChatCompletion call
//   covered by the shared retry/classify tests.

import (
	"errors"
	"testing"

	"github.com/revoicehq/revoice/internal/apierr"
)

// ---------------------------------------------------------------------------
// TestParseResponse - JSON decoding and id-set contract
// ---------------------------------------------------------------------------

func TestParseResponse(t *testing.T) {
	t.Parallel()

	sent := []payloadSegment{
		{ID: 0, Text: "hello there"},
		{ID: 2, Text: "um, goodbye"},
	}

	t.Run("clean response maps text by id", func(t *testing.T) {
		t.Parallel()

		content := `{"segments":[{"id":0,"text":"hello there"},{"id":2,"text":"goodbye"}]}`
		got, err := parseResponse(content, sent)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if got[0] != "hello there" || got[2] != "goodbye" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("text is trimmed", func(t *testing.T) {
		t.Parallel()

		content := `{"segments":[{"id":0,"text":"  hi  "},{"id":2,"text":""}]}`
		got, err := parseResponse(content, sent)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if got[0] != "hi" {
			t.Errorf("got[0] = %q, want hi", got[0])
		}
		if got[2] != "" {
			t.Errorf("got[2] = %q, want empty (noise blanked)", got[2])
		}
	})

	t.Run("invalid json is malformed", func(t *testing.T) {
		t.Parallel()

		_, err := parseResponse("sure, here you go: {...", sent)
		if !errors.Is(err, apierr.ErrMalformed) {
			t.Errorf("error = %v, want ErrMalformed", err)
		}
	})

	t.Run("dropped segment violates the contract", func(t *testing.T) {
		t.Parallel()

		_, err := parseResponse(`{"segments":[{"id":0,"text":"hi"}]}`, sent)
		if !errors.Is(err, apierr.ErrContract) {
			t.Errorf("error = %v, want ErrContract", err)
		}
	})

	t.Run("unexpected id violates the contract", func(t *testing.T) {
		t.Parallel()

		content := `{"segments":[{"id":0,"text":"hi"},{"id":7,"text":"bye"}]}`
		_, err := parseResponse(content, sent)
		if !errors.Is(err, apierr.ErrContract) {
			t.Errorf("error = %v, want ErrContract", err)
		}
	})

	t.Run("duplicate id violates the contract", func(t *testing.T) {
		t.Parallel()

		content := `{"segments":[{"id":0,"text":"hi"},{"id":0,"text":"hi again"}]}`
		_, err := parseResponse(content, sent)
		if !errors.Is(err, apierr.ErrContract) {
			t.Errorf("error = %v, want ErrContract", err)
		}
	})
}
