package media

// Notes:
// - In-package test: tempoStages is the internal decomposition behind the
//   exported TempoChain.
// - The load-bearing property is multiplicative: stages within [0.5, 2.0]
//   whose product equals the requested speed.

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestTempoStages - Decomposition into legal atempo factors
// ---------------------------------------------------------------------------

func TestTempoStages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		speed      float64
		wantStages int
	}{
		{name: "identity", speed: 1.0, wantStages: 1},
		{name: "mild speedup", speed: 1.2, wantStages: 1},
		{name: "boundary: exactly 2.0", speed: 2.0, wantStages: 1},
		{name: "above one stage", speed: 2.5, wantStages: 2},
		{name: "3x needs two stages", speed: 3.0, wantStages: 2},
		{name: "5x needs three stages", speed: 5.0, wantStages: 3},
		{name: "boundary: exactly 0.5", speed: 0.5, wantStages: 1},
		{name: "deep slowdown", speed: 0.2, wantStages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stages, err := tempoStages(tt.speed)
			if err != nil {
				t.Fatalf("tempoStages(%v) error = %v", tt.speed, err)
			}
			if len(stages) != tt.wantStages {
				t.Errorf("got %d stages %v, want %d", len(stages), stages, tt.wantStages)
			}

			product := 1.0
			for i, s := range stages {
				if s < atempoMin-1e-9 || s > atempoMax+1e-9 {
					t.Errorf("stage %d = %v outside [%v, %v]", i, s, atempoMin, atempoMax)
				}
				product *= s
			}
			if math.Abs(product-tt.speed) > 1e-9 {
				t.Errorf("stage product = %v, want %v", product, tt.speed)
			}
		})
	}

	t.Run("non-positive speed is an error", func(t *testing.T) {
		t.Parallel()

		for _, speed := range []float64{0, -1.5} {
			if _, err := tempoStages(speed); !errors.Is(err, ErrBadTempo) {
				t.Errorf("tempoStages(%v) error = %v, want ErrBadTempo", speed, err)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// TestTempoChain - Rendered filter string
// ---------------------------------------------------------------------------

func TestTempoChain(t *testing.T) {
	t.Parallel()

	t.Run("single stage", func(t *testing.T) {
		t.Parallel()

		chain, err := TempoChain(1.2)
		if err != nil {
			t.Fatalf("TempoChain() error = %v", err)
		}
		if chain != "atempo=1.200000" {
			t.Errorf("chain = %q, want atempo=1.200000", chain)
		}
	})

	t.Run("multi stage joins with commas", func(t *testing.T) {
		t.Parallel()

		chain, err := TempoChain(3.0)
		if err != nil {
			t.Fatalf("TempoChain() error = %v", err)
		}
		if !strings.HasPrefix(chain, "atempo=2.000000,atempo=") {
			t.Errorf("chain = %q, want a leading 2.0 stage", chain)
		}
		if strings.Count(chain, "atempo=") != 2 {
			t.Errorf("chain = %q, want exactly 2 stages", chain)
		}
	})
}
