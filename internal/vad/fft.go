package vad

import "math"

// fftMagnitudes computes spectral magnitudes of a real signal whose length
// must be a power of two, returning len/2+1 values (DC through Nyquist).
// An in-package radix-2 implementation is enough here: frames are a few
// hundred samples and only a narrow band of bins is consumed.
func fftMagnitudes(signal []float64) []float64 {
	n := len(signal)
	re := make([]float64, n)
	im := make([]float64, n)
	copy(re, signal)

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	// Iterative butterflies.
	for length := 2; length <= n; length <<= 1 {
		ang := -2 * math.Pi / float64(length)
		wRe, wIm := math.Cos(ang), math.Sin(ang)
		for start := 0; start < n; start += length {
			curRe, curIm := 1.0, 0.0
			half := length / 2
			for k := 0; k < half; k++ {
				evenRe, evenIm := re[start+k], im[start+k]
				oddRe := re[start+k+half]*curRe - im[start+k+half]*curIm
				oddIm := re[start+k+half]*curIm + im[start+k+half]*curRe

				re[start+k], im[start+k] = evenRe+oddRe, evenIm+oddIm
				re[start+k+half], im[start+k+half] = evenRe-oddRe, evenIm-oddIm

				curRe, curIm = curRe*wRe-curIm*wIm, curRe*wIm+curIm*wRe
			}
		}
	}

	mags := make([]float64, n/2+1)
	for i := range mags {
		mags[i] = math.Hypot(re[i], im[i])
	}
	return mags
}
