// Package timeline lays fitted clips onto a single output track and runs the
// final sanity gates before the track leaves the pipeline.
package timeline

import (
	"fmt"
	"sort"

	"github.com/revoicehq/revoice/internal/pcm"
	"github.com/revoicehq/revoice/internal/segment"
)

// Mode selects how clips are placed on the track.
type Mode string

const (
	// ModeOverlay places every clip at its nominal source timestamp and
	// mixes overlapping audio additively.
	ModeOverlay Mode = "overlay"
	// ModeSequential places each clip at its nominal timestamp or directly
	// after the previous clip, whichever is later. Clips never overlap but
	// the track may run long.
	ModeSequential Mode = "sequential"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOverlay, ModeSequential:
		return Mode(s), nil
	case "":
		return ModeSequential, nil
	default:
		return "", fmt.Errorf("unknown placement mode %q", s)
	}
}

// Placement pairs a chunk with its fitted audio. Audio may be nil for a
// chunk that produced no speech; its slot still occupies the timeline.
type Placement struct {
	Chunk segment.Chunk
	Audio *pcm.Stream
}

// Assembly thresholds. The tail keeps the last word from being clipped by
// players that stop at the final sample; the duration floor and the audio
// sanity limits catch a silently corrupted render.
const (
	tailMS            = 500
	durationFloorMS   = 500
	maxSilenceRatio   = 0.25
	maxSanePeak       = 30000
	minWarnDurationMS = 2000
)

// Result is the assembled track plus non-fatal quality warnings.
type Result struct {
	Track    *pcm.Stream
	Warnings []string
}

// Assemble builds the output track from placements. totalSourceMS is the
// source audio length; the assembled track must cover it (minus the floor
// slack) or assembly fails rather than emitting a truncated render.
func Assemble(placements []Placement, mode Mode, totalSourceMS int) (Result, error) {
	if len(placements) == 0 {
		return Result{}, fmt.Errorf("no clips to assemble")
	}

	ordered := make([]Placement, len(placements))
	copy(ordered, placements)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Chunk.Start < ordered[j].Chunk.Start
	})

	track := pcm.Silence(totalSourceMS, pcm.DefaultSampleRate)

	switch mode {
	case ModeOverlay:
		for _, p := range ordered {
			if p.Audio == nil {
				continue
			}
			track.Overlay(p.Audio, int(p.Chunk.Start*1000))
		}
	case ModeSequential:
		cursor := 0
		for _, p := range ordered {
			requested := int(p.Chunk.Start * 1000)
			at := max(requested, cursor)
			if p.Audio == nil {
				cursor = at + p.Chunk.DurationMS()
				continue
			}
			track.Overlay(p.Audio, at)
			cursor = at + p.Audio.DurationMS()
		}
	default:
		return Result{}, fmt.Errorf("unknown placement mode %q", mode)
	}

	track = track.PadToMS(track.DurationMS() + tailMS)

	if track.DurationMS() < totalSourceMS-durationFloorMS {
		return Result{}, fmt.Errorf(
			"assembled track too short: %dms against %dms of source",
			track.DurationMS(), totalSourceMS)
	}

	return Result{Track: track, Warnings: sanityWarnings(track)}, nil
}

// sanityWarnings flags renders that are mostly silence or clipping hot.
// Very short tracks are exempt from the silence check; the tail alone would
// trip it.
func sanityWarnings(track *pcm.Stream) []string {
	var warnings []string
	if track.DurationMS() >= minWarnDurationMS {
		if ratio := track.SilenceRatio(); ratio > maxSilenceRatio {
			warnings = append(warnings,
				fmt.Sprintf("output is %.0f%% silence, synthesis may have failed", ratio*100))
		}
	}
	if peak := track.Peak(); peak > maxSanePeak {
		warnings = append(warnings,
			fmt.Sprintf("output peak %d is near clipping, overlapping clips may distort", peak))
	}
	return warnings
}
