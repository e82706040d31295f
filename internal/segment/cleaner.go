package segment

import (
	"context"
	"strings"

	"github.com/revoicehq/revoice/internal/lang"
)

// ExternalCleaner is the external text-cleanup collaborator: it may rewrite
// or blank segment text but must preserve ids, timing, order, and count.
type ExternalCleaner interface {
	CleanSegments(ctx context.Context, segments []Segment) ([]Segment, error)
}

// Cleaner blanks non-speech vocalizations out of a segment list. A local
// heuristic catches the obvious garbage (hesitation sounds the recognizer
// rendered as a couple of letters); an optional external pass handles the
// rest. Blanked segments keep their position and timing - downstream offset
// math depends on them.
type Cleaner struct {
	script     lang.Script
	minLetters int
	external   ExternalCleaner
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithMinLetters sets the letter-count threshold below which segment text is
// treated as garbage. Default: 3.
func WithMinLetters(n int) CleanerOption {
	return func(c *Cleaner) {
		if n > 0 {
			c.minLetters = n
		}
	}
}

// WithExternalCleaner enables the external cleanup pass.
func WithExternalCleaner(ec ExternalCleaner) CleanerOption {
	return func(c *Cleaner) { c.external = ec }
}

// NewCleaner creates a Cleaner that judges text by letters of the given script.
func NewCleaner(script lang.Script, opts ...CleanerOption) *Cleaner {
	c := &Cleaner{script: script, minLetters: 3}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean returns a copy of segments with garbage text blanked. Re-running on
// already-cleaned output is a no-op.
func (c *Cleaner) Clean(ctx context.Context, segments []Segment) ([]Segment, error) {
	cleaned := make([]Segment, len(segments))
	copy(cleaned, segments)

	for i := range cleaned {
		if c.isGarbage(cleaned[i].SourceText) {
			cleaned[i].SourceText = ""
			cleaned[i].TargetText = ""
		}
	}

	if c.external == nil {
		return cleaned, nil
	}
	return c.external.CleanSegments(ctx, cleaned)
}

// isGarbage reports whether text carries no real speech: empty, or fewer
// than minLetters letters of the segment's script.
func (c *Cleaner) isGarbage(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return true
	}
	return lang.CountLetters(text, c.script) < c.minLetters
}
