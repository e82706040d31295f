package vad_test

// Notes:
// - Black-box testing via package vad_test.
// - Onset location runs on speech-band spectral energy, so the synthetic
//   "speech" is a 1 kHz tone (inside the 250-3400 Hz band) and the
//   distractors are clicks and out-of-band rumble.

import (
	"math"
	"testing"

	"github.com/revoicehq/revoice/internal/pcm"
	"github.com/revoicehq/revoice/internal/vad"
)

// toneFrom builds a mono 16 kHz stream: silence until startMS, then a
// freqHz sine at the given amplitude for the rest of totalMS.
func toneFrom(totalMS, startMS int, freqHz float64, amp float64) *pcm.Stream {
	rate := 16000
	samples := make([]int16, totalMS*rate/1000)
	startSample := startMS * rate / 1000
	for i := startSample; i < len(samples); i++ {
		samples[i] = int16(amp * math.Sin(2*math.Pi*freqHz*float64(i-startSample)/float64(rate)))
	}
	return pcm.New(samples, rate)
}

// ---------------------------------------------------------------------------
// TestLocateOnset - First sustained in-band energy
// ---------------------------------------------------------------------------

func TestLocateOnset(t *testing.T) {
	t.Parallel()

	t.Run("nil stream yields zero", func(t *testing.T) {
		t.Parallel()

		if got := vad.LocateOnset(nil, vad.DefaultOnsetParams()); got != 0 {
			t.Errorf("LocateOnset(nil) = %v, want 0", got)
		}
	})

	t.Run("pure silence yields zero", func(t *testing.T) {
		t.Parallel()

		if got := vad.LocateOnset(pcm.Silence(2000, 16000), vad.DefaultOnsetParams()); got != 0 {
			t.Errorf("LocateOnset(silence) = %v, want 0", got)
		}
	})

	t.Run("tone after one second of silence", func(t *testing.T) {
		t.Parallel()

		s := toneFrom(2500, 1000, 1000, 8000)
		got := vad.LocateOnset(s, vad.DefaultOnsetParams())
		if got < 0.85 || got > 1.05 {
			t.Errorf("LocateOnset() = %v, want about 1.0 (smoothing may pull it slightly earlier)", got)
		}
	})

	t.Run("later onset moves the estimate", func(t *testing.T) {
		t.Parallel()

		early := vad.LocateOnset(toneFrom(3000, 500, 1000, 8000), vad.DefaultOnsetParams())
		late := vad.LocateOnset(toneFrom(3000, 1800, 1000, 8000), vad.DefaultOnsetParams())
		if early >= late {
			t.Errorf("early onset %v not before late onset %v", early, late)
		}
		if late < 1.6 || late > 1.85 {
			t.Errorf("late onset = %v, want about 1.8", late)
		}
	})

	t.Run("brief click does not count as onset", func(t *testing.T) {
		t.Parallel()

		// In-band room tone throughout, a 40ms click at 0.5s, sustained
		// speech-level tone from 1.5s. The hold window must reject the
		// click and report the sustained tone.
		rate := 16000
		samples := make([]int16, 3*rate)
		for i := range samples {
			amp := 300.0
			switch {
			case i >= rate/2 && i < rate/2+rate*40/1000:
				amp = 2000
			case i >= rate+rate/2:
				amp = 8000
			}
			samples[i] = int16(amp * math.Sin(2*math.Pi*1000*float64(i)/float64(rate)))
		}
		got := vad.LocateOnset(pcm.New(samples, rate), vad.DefaultOnsetParams())
		if got < 1.3 || got > 1.6 {
			t.Errorf("LocateOnset() = %v, want about 1.5 (click at 0.5 must be rejected)", got)
		}
	})
}
