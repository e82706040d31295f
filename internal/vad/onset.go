package vad

import (
	"math"

	"github.com/revoicehq/revoice/internal/pcm"
)

// OnsetParams tunes speech onset location.
type OnsetParams struct {
	// FrameMS is the analysis frame length; frames advance by half a frame
	// for a more precise start estimate.
	FrameMS int

	// SmoothFrames is the moving-average window over band energies.
	SmoothFrames int

	// HoldMS is how long energy must stay above threshold for a crossing to
	// count as onset. Rejects clicks and brief noise bursts.
	HoldMS int

	// BaselineMS is the stretch at the head of the clip used to estimate the
	// background noise level.
	BaselineMS int

	// BaselinePercentile picks the noise estimate from the baseline energies.
	BaselinePercentile float64

	// ThresholdMultiplier scales the noise estimate into the onset threshold.
	ThresholdMultiplier float64

	// BandLowHz and BandHighHz bound the analyzed frequency band. The default
	// covers the speech formants F1-F3.
	BandLowHz  float64
	BandHighHz float64
}

// DefaultOnsetParams returns onset parameters tuned for 16 kHz voice tracks.
func DefaultOnsetParams() OnsetParams {
	return OnsetParams{
		FrameMS:             20,
		SmoothFrames:        4,
		HoldMS:              160,
		BaselineMS:          500,
		BaselinePercentile:  60,
		ThresholdMultiplier: 4.0,
		BandLowHz:           250,
		BandHighHz:          3400,
	}
}

func (p *OnsetParams) normalize() {
	if p.FrameMS <= 0 {
		p.FrameMS = 20
	}
	if p.SmoothFrames < 1 {
		p.SmoothFrames = 1
	}
	if p.HoldMS <= 0 {
		p.HoldMS = 160
	}
	if p.BaselineMS <= 0 {
		p.BaselineMS = 500
	}
	if p.BaselinePercentile <= 0 || p.BaselinePercentile >= 100 {
		p.BaselinePercentile = 60
	}
	if p.ThresholdMultiplier <= 1 {
		p.ThresholdMultiplier = 4.0
	}
	if p.BandHighHz <= p.BandLowHz {
		p.BandLowHz, p.BandHighHz = 250, 3400
	}
}

// LocateOnset returns the first timestamp, in seconds, of sustained
// speech-band energy. Unlike Detect it requires a continuous hold window
// above threshold, not a one-shot excess. Returns 0.0 when nothing qualifies;
// silence-only input is not an error.
func LocateOnset(s *pcm.Stream, p OnsetParams) float64 {
	p.normalize()
	if s == nil {
		return 0.0
	}

	rate := s.SampleRate()
	frameLen := rate * p.FrameMS / 1000
	if frameLen <= 0 || s.NumSamples() < frameLen {
		return 0.0
	}
	step := max(frameLen/2, 1)

	energies := bandEnergies(s.Samples(), rate, frameLen, step, p.BandLowHz, p.BandHighHz)
	energies = smooth(energies, p.SmoothFrames)
	if len(energies) == 0 {
		return 0.0
	}

	stepMS := float64(step) * 1000 / float64(rate)

	// Noise estimate from the head of the clip.
	baselineFrames := max(int(float64(p.BaselineMS)/stepMS), 5)
	baselineFrames = min(baselineFrames, len(energies))
	noise := percentile(energies[:baselineFrames], p.BaselinePercentile)

	threshold := max(noise*p.ThresholdMultiplier, noise+1e-6)
	holdFrames := max(int(math.Ceil(float64(p.HoldMS)/stepMS)), 2)

	for idx, e := range energies {
		if e <= threshold {
			continue
		}
		if idx+holdFrames > len(energies) {
			break
		}
		sum := 0.0
		for _, v := range energies[idx : idx+holdFrames] {
			sum += v
		}
		if sum/float64(holdFrames) > threshold {
			return float64(idx*step) / float64(rate)
		}
	}

	return 0.0
}

// bandEnergies computes mean spectral magnitude in [lowHz, highHz] for
// Hann-windowed frames advancing by step samples.
func bandEnergies(samples []int16, rate, frameLen, step int, lowHz, highHz float64) []float64 {
	fftSize := nextPow2(frameLen)
	window := hannWindow(frameLen)

	// Band bin range for the zero-padded FFT.
	loBin := int(math.Ceil(lowHz * float64(fftSize) / float64(rate)))
	hiBin := int(math.Floor(highHz * float64(fftSize) / float64(rate)))
	loBin = max(loBin, 0)
	hiBin = min(hiBin, fftSize/2)
	if hiBin < loBin {
		return nil
	}

	var energies []float64
	buf := make([]float64, fftSize)
	for start := 0; start+frameLen <= len(samples); start += step {
		for i := 0; i < frameLen; i++ {
			buf[i] = float64(samples[start+i]) * window[i]
		}
		for i := frameLen; i < fftSize; i++ {
			buf[i] = 0
		}
		mags := fftMagnitudes(buf)

		sum := 0.0
		for b := loBin; b <= hiBin; b++ {
			sum += mags[b]
		}
		energies = append(energies, sum/float64(hiBin-loBin+1))
	}
	return energies
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
