package media

import (
	"fmt"
	"strings"
)

// FFmpeg's atempo filter accepts a factor between 0.5 and 2.0 per stage.
// Larger corrections are decomposed into a chain of stages whose product
// equals the requested speed.
const (
	atempoMin = 0.5
	atempoMax = 2.0
)

// TempoChain renders an atempo filter chain for the given speed multiplier.
// Speed > 1 makes audio faster and shorter; speed == 1 is a single identity
// stage so callers never have to special-case it.
func TempoChain(speed float64) (string, error) {
	stages, err := tempoStages(speed)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = fmt.Sprintf("atempo=%.6f", s)
	}
	return strings.Join(parts, ","), nil
}

// tempoStages splits speed into factors each within [0.5, 2.0] whose product
// is speed. Peeling off full 2.0 (or 0.5) stages keeps the residue in range.
func tempoStages(speed float64) ([]float64, error) {
	if speed <= 0 {
		return nil, fmt.Errorf("%w: %.4f", ErrBadTempo, speed)
	}

	var stages []float64
	for speed > atempoMax {
		stages = append(stages, atempoMax)
		speed /= atempoMax
	}
	for speed < atempoMin {
		stages = append(stages, atempoMin)
		speed /= atempoMin
	}
	stages = append(stages, speed)
	return stages, nil
}
