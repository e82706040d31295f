// Package segment holds the timed text model of the pipeline and the logic
// that shapes it: distributing recognized text over speech windows, blanking
// non-speech garbage, regrouping fine segments into synthesis-sized chunks,
// and the global offset math that aligns the transcript timeline with the
// real audio.
package segment

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/revoicehq/revoice/internal/format"
)

// Segment is a timed unit of recognized speech. IDs are unique and monotonic
// within one job. An empty TargetText is legal and means "nothing to speak
// here" - it must flow through the rest of the pipeline, never be treated as
// an error, and never be deleted (its timing feeds downstream offset math).
type Segment struct {
	ID         int     `json:"id"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	SourceText string  `json:"src"`
	TargetText string  `json:"dst"`
}

// DurationMS returns the segment's window length in milliseconds, clamped at zero.
func (s Segment) DurationMS() int {
	return max(int((s.End-s.Start)*1000+0.5), 0)
}

// StartDuration returns the segment start as a time.Duration.
func (s Segment) StartDuration() time.Duration {
	return time.Duration(s.Start * float64(time.Second))
}

// EndDuration returns the segment end as a time.Duration.
func (s Segment) EndDuration() time.Duration {
	return time.Duration(s.End * float64(time.Second))
}

// Chunk is a merged group of consecutive segments sized for one synthesis
// call. It owns no audio, only timing, text, and the ids of the segments it
// absorbed.
type Chunk struct {
	Index      int     `json:"index"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	SegmentIDs []int   `json:"segment_ids"`
}

// DurationMS returns the chunk's window length in milliseconds.
func (c Chunk) DurationMS() int {
	return max(int((c.End-c.Start)*1000+0.5), 0)
}

// String returns a human-readable representation for logging.
func (c Chunk) String() string {
	return fmt.Sprintf("chunk %d: %s-%s (%d chars)",
		c.Index,
		format.Duration(time.Duration(c.Start*float64(time.Second))),
		format.Duration(time.Duration(c.End*float64(time.Second))),
		utf8.RuneCountInString(c.Text))
}
