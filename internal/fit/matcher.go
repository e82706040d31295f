// Package fit forces a synthesized clip to occupy exactly its allotted slot
// on the timeline. Small overruns are absorbed by a hard trim, moderate ones
// by pitch-preserving time compression, and anything beyond the compression
// tolerance is trimmed with an audible-loss warning. Short clips are slowed
// toward the slot, never beyond the same tolerance; what the slowdown cannot
// cover becomes trailing silence. The output duration equals the target in
// every branch.
package fit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/revoicehq/revoice/internal/format"
	"github.com/revoicehq/revoice/internal/media"
	"github.com/revoicehq/revoice/internal/pcm"
)

// Ratio thresholds for the fit decision. Overruns up to trimSlack are cut
// silently (the tail is near-silence from synthesis padding); overruns up to
// the configured tolerance are compressed.
const (
	trimSlack        = 1.01
	defaultTolerance = 0.10
)

// Result is a fitted clip plus any loss warning produced on the way.
type Result struct {
	Audio *pcm.Stream
	// Warning is non-empty when speech was discarded to make the clip fit.
	Warning string
}

// Matcher fits clips into their slots. Time compression shells out to the
// transcoder, so the matcher owns a scratch directory for intermediate WAVs.
type Matcher struct {
	runner    media.Runner
	workDir   string
	tolerance float64
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithTolerance sets the maximum compression overrun ratio above 1.0 (0.10
// permits speeding up by at most 10%). Non-positive values keep the default.
func WithTolerance(t float64) Option {
	return func(m *Matcher) {
		if t > 0 {
			m.tolerance = t
		}
	}
}

// NewMatcher creates a Matcher that writes intermediate files under workDir.
func NewMatcher(runner media.Runner, workDir string, opts ...Option) *Matcher {
	m := &Matcher{
		runner:    runner,
		workDir:   workDir,
		tolerance: defaultTolerance,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fit returns a clip lasting exactly targetMS milliseconds. A nil or empty
// clip yields pure silence of the target length.
func (m *Matcher) Fit(ctx context.Context, clip *pcm.Stream, targetMS int) (Result, error) {
	if targetMS <= 0 {
		return Result{Audio: pcm.Silence(0, pcm.DefaultSampleRate)}, nil
	}
	if clip == nil || clip.NumSamples() == 0 {
		return Result{Audio: pcm.Silence(targetMS, pcm.DefaultSampleRate)}, nil
	}

	currentMS := clip.DurationMS()
	switch {
	case currentMS == targetMS:
		return Result{Audio: clip}, nil

	case currentMS < targetMS:
		return m.stretch(ctx, clip, currentMS, targetMS)

	case float64(currentMS) <= float64(targetMS)*trimSlack:
		return Result{Audio: clip.TrimMS(targetMS)}, nil

	case float64(currentMS) <= float64(targetMS)*(1+m.tolerance):
		return m.compress(ctx, clip, currentMS, targetMS)

	default:
		warning := fmt.Sprintf(
			"clip overruns slot beyond tolerance (%s > %s), trimming with speech loss",
			format.Seconds(float64(currentMS)/1000),
			format.Seconds(float64(targetMS)/1000),
		)
		return Result{Audio: clip.TrimMS(targetMS), Warning: warning}, nil
	}
}

// stretch slows a short clip toward its slot. The slowdown never exceeds the
// tolerance; a shortfall the slowdown cannot cover becomes trailing silence.
func (m *Matcher) stretch(ctx context.Context, clip *pcm.Stream, currentMS, targetMS int) (Result, error) {
	// Sub-percent shortfalls are dead air nobody hears.
	if float64(targetMS) <= float64(currentMS)*trimSlack {
		return Result{Audio: clip.PadToMS(targetMS)}, nil
	}

	stretchedMS := min(targetMS, int(float64(currentMS)*(1+m.tolerance)))
	scaled, err := m.rescale(ctx, clip, float64(currentMS)/float64(stretchedMS))
	if err != nil {
		return Result{}, err
	}
	if scaled.DurationMS() > targetMS {
		return Result{Audio: scaled.TrimMS(targetMS)}, nil
	}
	return Result{Audio: scaled.PadToMS(targetMS)}, nil
}

// compress speeds the clip up by currentMS/targetMS via the transcoder, then
// squares off the rounding residue with a pad or trim.
func (m *Matcher) compress(ctx context.Context, clip *pcm.Stream, currentMS, targetMS int) (Result, error) {
	scaled, err := m.rescale(ctx, clip, float64(currentMS)/float64(targetMS))
	if err != nil {
		return Result{}, err
	}

	// atempo rounding leaves the result a few ms off either way.
	if scaled.DurationMS() > targetMS {
		return Result{Audio: scaled.TrimMS(targetMS)}, nil
	}
	return Result{Audio: scaled.PadToMS(targetMS)}, nil
}

// rescale runs the clip through the transcoder's tempo filter at the given
// speed (>1 shortens, <1 lengthens).
func (m *Matcher) rescale(ctx context.Context, clip *pcm.Stream, speed float64) (*pcm.Stream, error) {
	inPath, outPath, cleanup, err := m.scratchPair()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := clip.WriteWAV(inPath); err != nil {
		return nil, fmt.Errorf("write clip for tempo scaling: %w", err)
	}
	if err := m.runner.TempoScale(ctx, inPath, outPath, speed); err != nil {
		return nil, fmt.Errorf("scale clip tempo by %.4f: %w", speed, err)
	}

	scaled, err := pcm.ReadWAV(outPath)
	if err != nil {
		return nil, fmt.Errorf("read scaled clip: %w", err)
	}
	return scaled, nil
}

func (m *Matcher) scratchPair() (inPath, outPath string, cleanup func(), err error) {
	dir, err := os.MkdirTemp(m.workDir, "fit-")
	if err != nil {
		return "", "", nil, fmt.Errorf("create fit scratch dir: %w", err)
	}
	return filepath.Join(dir, "in.wav"),
		filepath.Join(dir, "out.wav"),
		func() { _ = os.RemoveAll(dir) },
		nil
}
