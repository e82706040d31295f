// Package vad detects speech in PCM audio: speech regions for segment
// allocation and the first sustained speech onset for global offset
// correction. Both run on short-frame energy with hysteresis so single-frame
// spikes and brief dips do not flip the speech/silence decision.
package vad

import (
	"sort"

	"github.com/revoicehq/revoice/internal/pcm"
)

// Region is a half-open time interval [StartMS, EndMS) believed to contain
// speech. Regions from one detection pass are non-overlapping and ordered.
type Region struct {
	StartMS int
	EndMS   int
}

// DurationMS returns the region length in milliseconds.
func (r Region) DurationMS() int { return r.EndMS - r.StartMS }

// Params tunes speech region detection.
type Params struct {
	// FrameMS is the analysis frame length.
	FrameMS int

	// SmoothFrames is the moving-average window applied to frame energies.
	SmoothFrames int

	// NoiseFloorPercentile picks the frame-energy percentile used as the
	// noise floor estimate.
	NoiseFloorPercentile float64

	// HighPercentile is the upper energy percentile that bounds the speech
	// threshold from below, so a uniformly quiet clip does not end up with a
	// near-zero threshold.
	HighPercentile float64

	// SpeechMultiplier scales the noise floor into the enter threshold.
	SpeechMultiplier float64

	// ReleaseMultiplier scales the noise floor into the (lower) exit
	// threshold. Hysteresis: brief dips below the enter threshold do not end
	// a region.
	ReleaseMultiplier float64

	// MinSpeechMS discards speech runs shorter than this (transients).
	MinSpeechMS int

	// MinGapMS is how long energy must stay below the release threshold
	// before a region closes.
	MinGapMS int

	// PadMS symmetrically widens surviving regions.
	PadMS int

	// MergeGapMS merges neighboring regions whose padded gap is below this,
	// so one utterance does not fragment into many near-adjacent regions.
	MergeGapMS int
}

// DefaultParams returns detection parameters tuned for 16 kHz voice tracks.
func DefaultParams() Params {
	return Params{
		FrameMS:              20,
		SmoothFrames:         5,
		NoiseFloorPercentile: 20,
		HighPercentile:       90,
		SpeechMultiplier:     2.2,
		ReleaseMultiplier:    1.4,
		MinSpeechMS:          200,
		MinGapMS:             300,
		PadMS:                100,
		MergeGapMS:           150,
	}
}

// normalize clamps parameters into a usable range.
func (p *Params) normalize() {
	if p.FrameMS <= 0 {
		p.FrameMS = 20
	}
	if p.SmoothFrames < 1 {
		p.SmoothFrames = 1
	}
	if p.SpeechMultiplier <= 1 {
		p.SpeechMultiplier = 2.2
	}
	if p.ReleaseMultiplier <= 0 || p.ReleaseMultiplier >= p.SpeechMultiplier {
		p.ReleaseMultiplier = p.SpeechMultiplier * 0.6
	}
	if p.MinGapMS < p.FrameMS {
		p.MinGapMS = p.FrameMS
	}
}

// Detect finds speech regions in the stream. Empty or too-short input yields
// a nil region list; the caller treats the whole clip as one default window.
// Detect never fails on malformed length - bounds are clamped and the result
// is best effort.
func Detect(s *pcm.Stream, p Params) []Region {
	p.normalize()
	if s == nil || s.NumSamples() == 0 {
		return nil
	}

	frameLen := s.SampleRate() * p.FrameMS / 1000
	if frameLen <= 0 || s.NumSamples() < frameLen {
		return nil
	}

	energies := frameEnergies(s.Samples(), frameLen)
	energies = smooth(energies, p.SmoothFrames)
	if len(energies) == 0 {
		return nil
	}

	noise := percentile(energies, p.NoiseFloorPercentile)
	high := percentile(energies, p.HighPercentile)

	speechThr := max(noise*p.SpeechMultiplier, high)
	if speechThr <= 0 {
		// Fully silent clip: nothing can cross the threshold.
		return nil
	}
	releaseThr := noise * p.ReleaseMultiplier
	if releaseThr >= speechThr {
		releaseThr = speechThr * 0.8
	}

	totalMS := s.DurationMS()
	raw := runStateMachine(energies, speechThr, releaseThr, p, totalMS)

	var regions []Region
	for _, r := range raw {
		if r.DurationMS() < p.MinSpeechMS {
			continue
		}
		r.StartMS = max(r.StartMS-p.PadMS, 0)
		r.EndMS = min(r.EndMS+p.PadMS, totalMS)
		regions = append(regions, r)
	}

	return mergeClose(regions, p.MergeGapMS)
}

// runStateMachine walks frame energies with enter/release hysteresis and
// returns unfiltered speech runs.
func runStateMachine(energies []float64, speechThr, releaseThr float64, p Params, totalMS int) []Region {
	var regions []Region
	inSpeech := false
	startFrame := 0
	quietFrames := 0

	for idx, e := range energies {
		if !inSpeech {
			if e > speechThr {
				inSpeech = true
				startFrame = idx
				quietFrames = 0
			}
			continue
		}
		if e < releaseThr {
			quietFrames++
			if quietFrames*p.FrameMS >= p.MinGapMS {
				endFrame := idx - quietFrames + 1
				regions = append(regions, Region{
					StartMS: startFrame * p.FrameMS,
					EndMS:   endFrame * p.FrameMS,
				})
				inSpeech = false
				quietFrames = 0
			}
		} else {
			quietFrames = 0
		}
	}

	if inSpeech {
		endMS := min((len(energies)-quietFrames)*p.FrameMS, totalMS)
		regions = append(regions, Region{StartMS: startFrame * p.FrameMS, EndMS: endMS})
	}

	return regions
}

// mergeClose merges regions whose gap is below gapMS, preserving order and
// the non-overlap invariant.
func mergeClose(regions []Region, gapMS int) []Region {
	if len(regions) < 2 {
		return regions
	}
	merged := regions[:1]
	for _, r := range regions[1:] {
		last := &merged[len(merged)-1]
		if r.StartMS-last.EndMS < gapMS {
			if r.EndMS > last.EndMS {
				last.EndMS = r.EndMS
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// frameEnergies computes mean absolute amplitude per frame. A trailing
// partial frame is ignored.
func frameEnergies(samples []int16, frameLen int) []float64 {
	n := len(samples) / frameLen
	energies := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		frame := samples[i*frameLen : (i+1)*frameLen]
		sum := 0.0
		for _, v := range frame {
			a := float64(v)
			if a < 0 {
				a = -a
			}
			sum += a
		}
		energies = append(energies, sum/float64(frameLen))
	}
	return energies
}

// smooth applies a centered moving average of the given window.
func smooth(values []float64, window int) []float64 {
	if window <= 1 || len(values) <= window {
		return values
	}
	out := make([]float64, len(values))
	half := window / 2
	for i := range values {
		lo := max(i-half, 0)
		hi := min(i+half+1, len(values))
		sum := 0.0
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// percentile returns the p-th percentile (0-100) with linear interpolation.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}
