package segment

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// BuilderConfig bounds chunk construction.
type BuilderConfig struct {
	// MaxChars is the soft character limit per chunk, sized for one
	// synthesis call.
	MaxChars int

	// MaxDurationSec is the soft span limit per chunk.
	MaxDurationSec float64

	// HardCharCeiling is the safety limit; a chunk exceeding it is a
	// reportable error, never silently truncated.
	HardCharCeiling int
}

// DefaultBuilderConfig returns chunking limits safe for the synthesis API.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		MaxChars:        260,
		MaxDurationSec:  15,
		HardCharCeiling: 600,
	}
}

func (c *BuilderConfig) normalize() {
	if c.MaxChars <= 0 {
		c.MaxChars = 260
	}
	if c.MaxDurationSec <= 0 {
		c.MaxDurationSec = 15
	}
	if c.HardCharCeiling < c.MaxChars {
		c.HardCharCeiling = c.MaxChars * 2
	}
}

// Build regroups segments into chunks by greedy left-to-right accumulation:
// a segment joins the running chunk while the combined text stays within
// MaxChars and the combined span within MaxDurationSec; otherwise the chunk
// closes and a new one starts at that segment.
//
// Segments with empty TargetText contribute no text and never force a
// boundary, but an adjacent empty segment still extends the open chunk's end
// time. Concatenating all chunk texts in order reproduces the concatenation
// of all non-empty segment texts in order.
func Build(segments []Segment, cfg BuilderConfig) ([]Chunk, error) {
	cfg.normalize()

	var chunks []Chunk
	var cur *Chunk

	for _, seg := range segments {
		text := strings.TrimSpace(seg.TargetText)
		if text == "" {
			// Silence window: no text, no boundary, but keep the open
			// chunk's span honest.
			if cur != nil && seg.End > cur.End {
				cur.End = seg.End
			}
			continue
		}

		if cur != nil {
			// Character limits count runes, not bytes: Cyrillic and Arabic
			// text would otherwise hit the budget at half the intended size.
			overChars := utf8.RuneCountInString(cur.Text)+1+utf8.RuneCountInString(text) > cfg.MaxChars
			overSpan := seg.End-cur.Start > cfg.MaxDurationSec
			if overChars || overSpan {
				chunks = append(chunks, *cur)
				cur = nil
			}
		}

		if cur == nil {
			cur = &Chunk{
				Index:      len(chunks),
				Start:      seg.Start,
				End:        seg.End,
				Text:       text,
				SegmentIDs: []int{seg.ID},
			}
			continue
		}

		cur.Text += " " + text
		cur.SegmentIDs = append(cur.SegmentIDs, seg.ID)
		if seg.End > cur.End {
			cur.End = seg.End
		}
	}
	if cur != nil {
		chunks = append(chunks, *cur)
	}

	if err := validateChunks(chunks, cfg); err != nil {
		return nil, err
	}
	return chunks, nil
}

// validateChunks enforces the post-build gate: non-empty text, positive
// span, and the hard character ceiling.
func validateChunks(chunks []Chunk, cfg BuilderConfig) error {
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" || c.End <= c.Start {
			return fmt.Errorf("chunk %d [%0.3f-%0.3f]: %w", c.Index, c.Start, c.End, ErrEmptyChunk)
		}
		if n := utf8.RuneCountInString(c.Text); n > cfg.HardCharCeiling {
			return fmt.Errorf("chunk %d has %d chars (ceiling %d): %w",
				c.Index, n, cfg.HardCharCeiling, ErrChunkTooLong)
		}
	}
	return nil
}
