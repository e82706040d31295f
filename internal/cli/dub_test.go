package cli

// Notes:
// - In-package tests: buildRequest and the path helpers are the validation
//   surface worth pinning; command wiring is exercised through the exit-code
//   tests in cmd/revoice.
// - Real files come from t.TempDir so os.Stat checks run against the
//   filesystem, not fakes.

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/revoicehq/revoice/internal/lang"
	"github.com/revoicehq/revoice/internal/timeline"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("creating %s: %v", name, err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestDeriveOutputPath - Default output naming
// ---------------------------------------------------------------------------

func TestDeriveOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		target lang.Language
		want   string
	}{
		{name: "video keeps container", input: "talk.mp4", target: "ru", want: "talk.ru.mp4"},
		{name: "mkv keeps container", input: "clips/show.mkv", target: "de", want: "clips/show.de.mkv"},
		{name: "audio becomes wav", input: "lecture.mp3", target: "es", want: "lecture.es.wav"},
		{name: "wav stays wav", input: "take.wav", target: "en", want: "take.en.wav"},
		{name: "uppercase extension", input: "talk.MP4", target: "ru", want: "talk.ru.MP4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := deriveOutputPath(tt.input, tt.target); got != tt.want {
				t.Errorf("deriveOutputPath(%q, %q) = %q, want %q", tt.input, tt.target, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestDeriveSubtitlePath - Default subtitle naming
// ---------------------------------------------------------------------------

func TestDeriveSubtitlePath(t *testing.T) {
	t.Parallel()

	if got := deriveSubtitlePath("talk.mp4"); got != "talk.srt" {
		t.Errorf("deriveSubtitlePath(talk.mp4) = %q, want talk.srt", got)
	}
	if got := deriveSubtitlePath("dir/lecture.wav"); got != "dir/lecture.srt" {
		t.Errorf("deriveSubtitlePath(dir/lecture.wav) = %q, want dir/lecture.srt", got)
	}
}

// ---------------------------------------------------------------------------
// TestBuildRequest - Input validation
// ---------------------------------------------------------------------------

func TestBuildRequest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := touch(t, dir, "talk.mp4")

	t.Run("valid request with derived output", func(t *testing.T) {
		t.Parallel()

		req, err := buildRequest(input, "", "", "en", "ru", "overlay", false)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if req.OutputPath != filepath.Join(dir, "talk.ru.mp4") {
			t.Errorf("OutputPath = %q", req.OutputPath)
		}
		if req.SourceLanguage != "en" || req.TargetLanguage != "ru" {
			t.Errorf("languages = %q -> %q", req.SourceLanguage, req.TargetLanguage)
		}
		if req.Mode != timeline.ModeOverlay {
			t.Errorf("Mode = %q, want overlay", req.Mode)
		}
	})

	t.Run("empty mode stays unresolved", func(t *testing.T) {
		t.Parallel()

		req, err := buildRequest(input, "", "", "", "ru", "", false)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if req.Mode != "" {
			t.Errorf("Mode = %q, want empty (deferred to config)", req.Mode)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := buildRequest(filepath.Join(dir, "nope.mp4"), "", "", "", "ru", "", false)
		if !errors.Is(err, ErrFileNotFound) {
			t.Errorf("error = %v, want ErrFileNotFound", err)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()

		bad := touch(t, dir, "notes.txt")
		_, err := buildRequest(bad, "", "", "", "ru", "", false)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("error = %v, want ErrUnsupportedFormat", err)
		}
	})

	t.Run("invalid target language", func(t *testing.T) {
		t.Parallel()

		_, err := buildRequest(input, "", "", "", "xx", "", false)
		if !errors.Is(err, lang.ErrInvalid) {
			t.Errorf("error = %v, want lang.ErrInvalid", err)
		}
	})

	t.Run("missing target language", func(t *testing.T) {
		t.Parallel()

		_, err := buildRequest(input, "", "", "en", "", "", false)
		if !errors.Is(err, lang.ErrInvalid) {
			t.Errorf("error = %v, want lang.ErrInvalid", err)
		}
	})

	t.Run("invalid mode", func(t *testing.T) {
		t.Parallel()

		_, err := buildRequest(input, "", "", "", "ru", "sideways", false)
		if err == nil {
			t.Fatal("want error for unknown mode")
		}
	})

	t.Run("existing output requires force", func(t *testing.T) {
		t.Parallel()

		existing := touch(t, dir, "done.ru.mp4")
		_, err := buildRequest(input, existing, "", "", "ru", "", false)
		if !errors.Is(err, ErrOutputExists) {
			t.Errorf("error = %v, want ErrOutputExists", err)
		}

		if _, err := buildRequest(input, existing, "", "", "ru", "", true); err != nil {
			t.Errorf("force overwrite error = %v", err)
		}
	})
}
