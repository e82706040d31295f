package timeline_test

// Notes:
// - Black-box testing via package timeline_test.
// - Clips are marked with distinct constant amplitudes so placement can be
//   verified by sampling the track at known instants.

import (
	"testing"

	"github.com/revoicehq/revoice/internal/pcm"
	"github.com/revoicehq/revoice/internal/segment"
	"github.com/revoicehq/revoice/internal/timeline"
)

// markedClip returns ms of audio at the given constant amplitude.
func markedClip(ms int, amp int16) *pcm.Stream {
	s := pcm.Silence(ms, pcm.DefaultSampleRate)
	for i := range s.Samples() {
		s.Samples()[i] = amp
	}
	return s
}

// sampleAt reads the track sample at the given millisecond.
func sampleAt(track *pcm.Stream, ms int) int16 {
	return track.Samples()[ms*track.SampleRate()/1000]
}

func chunkAt(index int, start, end float64) segment.Chunk {
	return segment.Chunk{Index: index, Start: start, End: end, Text: "x"}
}

// ---------------------------------------------------------------------------
// TestAssembleSequential - Nominal placement with overlap avoidance
// ---------------------------------------------------------------------------

func TestAssembleSequential(t *testing.T) {
	t.Parallel()

	t.Run("clips land at their nominal timestamps", func(t *testing.T) {
		t.Parallel()

		placements := []timeline.Placement{
			{Chunk: chunkAt(0, 1, 2), Audio: markedClip(1000, 100)},
			{Chunk: chunkAt(1, 4, 5), Audio: markedClip(1000, 200)},
		}
		res, err := timeline.Assemble(placements, timeline.ModeSequential, 6000)
		if err != nil {
			t.Fatalf("Assemble() error = %v", err)
		}

		if got := sampleAt(res.Track, 1500); got != 100 {
			t.Errorf("sample at 1.5s = %d, want 100", got)
		}
		if got := sampleAt(res.Track, 4500); got != 200 {
			t.Errorf("sample at 4.5s = %d, want 200", got)
		}
		if got := sampleAt(res.Track, 3000); got != 0 {
			t.Errorf("sample in the gap = %d, want 0", got)
		}
	})

	t.Run("overrunning clip pushes the next one later", func(t *testing.T) {
		t.Parallel()

		// First clip runs 3s from t=1s, so the second cannot start at its
		// nominal t=2s; it must wait until t=4s.
		placements := []timeline.Placement{
			{Chunk: chunkAt(0, 1, 2), Audio: markedClip(3000, 100)},
			{Chunk: chunkAt(1, 2, 3), Audio: markedClip(1000, 200)},
		}
		res, err := timeline.Assemble(placements, timeline.ModeSequential, 6000)
		if err != nil {
			t.Fatalf("Assemble() error = %v", err)
		}

		if got := sampleAt(res.Track, 3500); got != 100 {
			t.Errorf("sample at 3.5s = %d, want first clip still playing", got)
		}
		if got := sampleAt(res.Track, 4500); got != 200 {
			t.Errorf("sample at 4.5s = %d, want second clip after the push", got)
		}
		// No additive mixing in sequential mode.
		if got := sampleAt(res.Track, 4100); got != 200 {
			t.Errorf("sample at 4.1s = %d, clips must not overlap", got)
		}
	})

	t.Run("out-of-order placements are sorted by start", func(t *testing.T) {
		t.Parallel()

		placements := []timeline.Placement{
			{Chunk: chunkAt(1, 3, 4), Audio: markedClip(1000, 200)},
			{Chunk: chunkAt(0, 1, 2), Audio: markedClip(1000, 100)},
		}
		res, err := timeline.Assemble(placements, timeline.ModeSequential, 5000)
		if err != nil {
			t.Fatalf("Assemble() error = %v", err)
		}
		if got := sampleAt(res.Track, 1500); got != 100 {
			t.Errorf("sample at 1.5s = %d, want the earlier chunk", got)
		}
	})
}

// ---------------------------------------------------------------------------
// TestAssembleOverlay - Nominal placement with additive mixing
// ---------------------------------------------------------------------------

func TestAssembleOverlay(t *testing.T) {
	t.Parallel()

	placements := []timeline.Placement{
		{Chunk: chunkAt(0, 1, 3), Audio: markedClip(2000, 100)},
		{Chunk: chunkAt(1, 2, 4), Audio: markedClip(2000, 200)},
	}
	res, err := timeline.Assemble(placements, timeline.ModeOverlay, 5000)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if got := sampleAt(res.Track, 1500); got != 100 {
		t.Errorf("sample at 1.5s = %d, want 100 (first clip alone)", got)
	}
	if got := sampleAt(res.Track, 2500); got != 300 {
		t.Errorf("sample at 2.5s = %d, want 300 (additive overlap)", got)
	}
	if got := sampleAt(res.Track, 3500); got != 200 {
		t.Errorf("sample at 3.5s = %d, want 200 (second clip alone)", got)
	}
}

// ---------------------------------------------------------------------------
// TestAssembleGates - Tail, duration floor, and sanity warnings
// ---------------------------------------------------------------------------

func TestAssembleGates(t *testing.T) {
	t.Parallel()

	t.Run("track covers source plus tail", func(t *testing.T) {
		t.Parallel()

		placements := []timeline.Placement{
			{Chunk: chunkAt(0, 0, 2), Audio: markedClip(2000, 100)},
		}
		res, err := timeline.Assemble(placements, timeline.ModeSequential, 2000)
		if err != nil {
			t.Fatalf("Assemble() error = %v", err)
		}
		if got := res.Track.DurationMS(); got != 2500 {
			t.Errorf("track duration = %dms, want source 2000 + 500 tail", got)
		}
	})

	t.Run("no placements is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := timeline.Assemble(nil, timeline.ModeSequential, 1000); err == nil {
			t.Error("Assemble(nil) succeeded, want error")
		}
	})

	t.Run("unknown mode is an error", func(t *testing.T) {
		t.Parallel()

		placements := []timeline.Placement{{Chunk: chunkAt(0, 0, 1), Audio: markedClip(1000, 1)}}
		if _, err := timeline.Assemble(placements, timeline.Mode("wat"), 1000); err == nil {
			t.Error("Assemble with unknown mode succeeded, want error")
		}
	})

	t.Run("mostly silent long track warns", func(t *testing.T) {
		t.Parallel()

		// 500ms of audio on a 30s source: far beyond the silence-ratio gate.
		placements := []timeline.Placement{
			{Chunk: chunkAt(0, 0, 0.5), Audio: markedClip(500, 5000)},
		}
		res, err := timeline.Assemble(placements, timeline.ModeSequential, 30000)
		if err != nil {
			t.Fatalf("Assemble() error = %v", err)
		}
		if len(res.Warnings) == 0 {
			t.Errorf("no warning for a 98%%-silent track")
		}
	})

	t.Run("hot peak warns", func(t *testing.T) {
		t.Parallel()

		placements := []timeline.Placement{
			{Chunk: chunkAt(0, 0, 2), Audio: markedClip(2000, 16000)},
			{Chunk: chunkAt(1, 0, 2), Audio: markedClip(2000, 16000)},
		}
		res, err := timeline.Assemble(placements, timeline.ModeOverlay, 2000)
		if err != nil {
			t.Fatalf("Assemble() error = %v", err)
		}
		found := false
		for _, w := range res.Warnings {
			if w != "" {
				found = true
			}
		}
		if !found {
			t.Error("no warning for a near-clipping overlay sum")
		}
	})

	t.Run("nil audio occupies its slot silently", func(t *testing.T) {
		t.Parallel()

		placements := []timeline.Placement{
			{Chunk: chunkAt(0, 0, 1), Audio: nil},
			{Chunk: chunkAt(1, 1, 2), Audio: markedClip(1000, 100)},
		}
		res, err := timeline.Assemble(placements, timeline.ModeSequential, 2000)
		if err != nil {
			t.Fatalf("Assemble() error = %v", err)
		}
		if got := sampleAt(res.Track, 500); got != 0 {
			t.Errorf("sample at 0.5s = %d, want silence", got)
		}
		if got := sampleAt(res.Track, 1500); got != 100 {
			t.Errorf("sample at 1.5s = %d, want the voiced clip", got)
		}
	})
}
