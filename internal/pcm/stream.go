// Package pcm holds decoded audio as owned int16 sample buffers and provides
// the slice, mix, and silence primitives the timeline work is built on.
//
// The canonical format throughout the pipeline is mono 16 kHz signed 16-bit
// PCM. Anything else is resampled at the media boundary before it gets here.
package pcm

import (
	"time"
)

// DefaultSampleRate is the canonical pipeline sample rate.
const DefaultSampleRate = 16000

// nearZeroAmplitude is the absolute sample value below which a sample is
// treated as silence for the silence-ratio check.
const nearZeroAmplitude = 50

// Stream is an ownership-exclusive handle to decoded mono PCM samples at a
// fixed sample rate. Slices derived from a Stream reference the same backing
// array; they are views, not copies.
type Stream struct {
	samples []int16
	rate    int
}

// New wraps a sample buffer in a Stream. A non-positive rate falls back to
// the canonical 16 kHz.
func New(samples []int16, rate int) *Stream {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return &Stream{samples: samples, rate: rate}
}

// Silence returns a stream of ms milliseconds of silence.
func Silence(ms, rate int) *Stream {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	if ms < 0 {
		ms = 0
	}
	return &Stream{samples: make([]int16, msToSamples(ms, rate)), rate: rate}
}

func msToSamples(ms, rate int) int {
	return int(int64(ms) * int64(rate) / 1000)
}

// SampleRate returns the stream's sample rate in Hz.
func (s *Stream) SampleRate() int { return s.rate }

// Samples returns the backing sample slice. Mutating it mutates the stream.
func (s *Stream) Samples() []int16 { return s.samples }

// NumSamples returns the number of samples.
func (s *Stream) NumSamples() int { return len(s.samples) }

// DurationMS returns the stream length in milliseconds, computed from the
// actual sample count, never from metadata.
func (s *Stream) DurationMS() int {
	return int(int64(len(s.samples)) * 1000 / int64(s.rate))
}

// Duration returns the stream length as a time.Duration.
func (s *Stream) Duration() time.Duration {
	return time.Duration(len(s.samples)) * time.Second / time.Duration(s.rate)
}

// Slice returns a view over the half-open millisecond range [startMS, endMS).
// Bounds are clamped to the stream; no samples are copied.
func (s *Stream) Slice(startMS, endMS int) *Stream {
	lo := msToSamples(startMS, s.rate)
	hi := msToSamples(endMS, s.rate)
	lo = min(max(lo, 0), len(s.samples))
	hi = min(max(hi, lo), len(s.samples))
	return &Stream{samples: s.samples[lo:hi], rate: s.rate}
}

// TrimMS returns a view of the first ms milliseconds.
func (s *Stream) TrimMS(ms int) *Stream {
	return s.Slice(0, ms)
}

// PadToMS returns a stream extended with trailing silence to exactly ms
// milliseconds. Streams already at least that long are returned unchanged.
func (s *Stream) PadToMS(ms int) *Stream {
	want := msToSamples(ms, s.rate)
	if len(s.samples) >= want {
		return s
	}
	padded := make([]int16, want)
	copy(padded, s.samples)
	return &Stream{samples: padded, rate: s.rate}
}

// Overlay additively mixes other into s starting at atMS, growing s as
// needed. Sums saturate at the int16 range instead of wrapping.
func (s *Stream) Overlay(other *Stream, atMS int) {
	if other == nil || len(other.samples) == 0 {
		return
	}
	at := msToSamples(atMS, s.rate)
	if at < 0 {
		at = 0
	}
	need := at + len(other.samples)
	if need > len(s.samples) {
		grown := make([]int16, need)
		copy(grown, s.samples)
		s.samples = grown
	}
	for i, v := range other.samples {
		s.samples[at+i] = saturateAdd(s.samples[at+i], v)
	}
}

func saturateAdd(a, b int16) int16 {
	sum := int32(a) + int32(b)
	if sum > 32767 {
		return 32767
	}
	if sum < -32768 {
		return -32768
	}
	return int16(sum)
}

// Peak returns the maximum absolute sample value.
func (s *Stream) Peak() int {
	peak := 0
	for _, v := range s.samples {
		a := int(v)
		if a < 0 {
			a = -a
		}
		if a > peak {
			peak = a
		}
	}
	return peak
}

// SilenceRatio returns the fraction of samples with near-zero amplitude.
// Returns 0 for an empty stream.
func (s *Stream) SilenceRatio() float64 {
	if len(s.samples) == 0 {
		return 0
	}
	quiet := 0
	for _, v := range s.samples {
		if v > -nearZeroAmplitude && v < nearZeroAmplitude {
			quiet++
		}
	}
	return float64(quiet) / float64(len(s.samples))
}
