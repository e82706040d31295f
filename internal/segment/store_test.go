package segment_test

// Notes:
// - Black-box testing via package segment_test.
// - The loader accepts both the Document shape and the older bare-array
//   artifact; both are covered.

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/revoicehq/revoice/internal/segment"
)

// ---------------------------------------------------------------------------
// TestDocumentRoundTrip - Save then Load preserves everything
// ---------------------------------------------------------------------------

func TestDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	doc := segment.Document{
		Language:       "ru",
		LeadingSilence: 1.25,
		Segments: []segment.Segment{
			{ID: 0, Start: 0.5, End: 2.75, SourceText: "Hello.", TargetText: "Привет."},
			{ID: 1, Start: 3.0, End: 4.0},
		},
	}

	path := filepath.Join(t.TempDir(), "segments.json")
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := segment.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip mismatch:\ngot:  %+v\nwant: %+v", got, doc)
	}
}

// ---------------------------------------------------------------------------
// TestLoad - Accepts both document and bare-array shapes
// ---------------------------------------------------------------------------

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("bare array wraps into a document", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "segments.json")
		data := `[{"id":0,"start":1,"end":2,"src":"a","dst":"b"}]`
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}

		got, err := segment.Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(got.Segments) != 1 || got.Segments[0].SourceText != "a" {
			t.Errorf("Load() = %+v, want one segment with src 'a'", got)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := segment.Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("Load() on missing file succeeded, want error")
		}
	})

	t.Run("garbage content is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "segments.json")
		if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := segment.Load(path); err == nil {
			t.Error("Load() on garbage succeeded, want error")
		}
	})
}
