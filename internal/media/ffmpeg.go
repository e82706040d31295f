// Package media wraps the external transcoder (FFmpeg) behind a narrow
// synchronous interface: resampling to the canonical mono 16 kHz PCM stream,
// pitch-preserving tempo scaling, and muxing audio back into
// video. Every invocation is a blocking subprocess with a bounded timeout;
// on expiry the process is killed and the call fails with ErrTimeout.
package media

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Runner is the transcoder interface the pipeline depends on. A library-based
// codec path can replace the subprocess implementation without touching
// pipeline logic.
type Runner interface {
	// ExtractAudio demuxes and resamples a media file's audio track into a
	// canonical mono 16 kHz 16-bit PCM WAV.
	ExtractAudio(ctx context.Context, inPath, wavPath string) error

	// Resample converts any audio input to mono PCM WAV at the given rate.
	Resample(ctx context.Context, inPath, wavPath string, rate int) error

	// TempoScale rewrites audio at the given speed multiplier (>1 is faster
	// and shorter) without changing pitch.
	TempoScale(ctx context.Context, inPath, outPath string, speed float64) error

	// Mux replaces a video's audio track with the given audio file.
	Mux(ctx context.Context, videoPath, audioPath, outPath string) error

	// ProbeDuration returns a media file's duration.
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// Compile-time interface check.
var _ Runner = (*FFmpeg)(nil)

// defaultTimeout bounds every subprocess invocation.
const defaultTimeout = 5 * time.Minute

// FFmpeg runs the ffmpeg binary.
type FFmpeg struct {
	path    string
	timeout time.Duration
	cmd     commandRunner
}

// FFmpegOption configures an FFmpeg runner.
type FFmpegOption func(*FFmpeg)

// WithTimeout sets the per-invocation timeout.
func WithTimeout(d time.Duration) FFmpegOption {
	return func(f *FFmpeg) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func WithCommandRunner(r commandRunner) FFmpegOption {
	return func(f *FFmpeg) { f.cmd = r }
}

// NewFFmpeg creates a runner for the ffmpeg binary at path. An empty path is
// resolved via PATH lookup; failure to resolve is a precondition error.
func NewFFmpeg(path string, opts ...FFmpegOption) (*FFmpeg, error) {
	if path == "" {
		resolved, err := exec.LookPath("ffmpeg")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		path = resolved
	}
	f := &FFmpeg{
		path:    path,
		timeout: defaultTimeout,
		cmd:     osCommandRunner{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// run executes ffmpeg with a bounded timeout. exec.CommandContext kills the
// process on context expiry, so a timed-out invocation never leaves an
// orphan behind.
func (f *FFmpeg) run(ctx context.Context, args []string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	output, err := f.cmd.CombinedOutput(ctx, f.path, args)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return output, fmt.Errorf("%w: killed after %v", ErrTimeout, f.timeout)
		}
		return output, fmt.Errorf("%w: %v", ErrTranscode, err)
	}
	return output, nil
}

// ExtractAudio implements Runner.
func (f *FFmpeg) ExtractAudio(ctx context.Context, inPath, wavPath string) error {
	args := []string{
		"-y",
		"-i", inPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		wavPath,
	}
	if output, err := f.run(ctx, args); err != nil {
		return fmt.Errorf("extract audio from %s: %w\nOutput: %s", inPath, err, output)
	}
	return nil
}

// Resample implements Runner.
func (f *FFmpeg) Resample(ctx context.Context, inPath, wavPath string, rate int) error {
	args := []string{
		"-y",
		"-i", inPath,
		"-ac", "1",
		"-ar", strconv.Itoa(rate),
		"-acodec", "pcm_s16le",
		wavPath,
	}
	if output, err := f.run(ctx, args); err != nil {
		return fmt.Errorf("resample %s: %w\nOutput: %s", inPath, err, output)
	}
	return nil
}

// TempoScale implements Runner.
func (f *FFmpeg) TempoScale(ctx context.Context, inPath, outPath string, speed float64) error {
	chain, err := TempoChain(speed)
	if err != nil {
		return err
	}
	args := []string{
		"-y",
		"-i", inPath,
		"-filter:a", chain,
		"-ar", "16000",
		"-ac", "1",
		"-acodec", "pcm_s16le",
		outPath,
	}
	if output, err := f.run(ctx, args); err != nil {
		return fmt.Errorf("tempo scale %s by %.4f: %w\nOutput: %s", inPath, speed, err, output)
	}
	return nil
}

// Mux implements Runner.
func (f *FFmpeg) Mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outPath,
	}
	if output, err := f.run(ctx, args); err != nil {
		return fmt.Errorf("mux %s + %s: %w\nOutput: %s", videoPath, audioPath, err, output)
	}
	return nil
}

// ProbeDuration implements Runner. FFmpeg prints file info to stderr and
// returns non-zero for a null output target, so the output is parsed even
// when the command "fails".
func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	args := []string{"-i", path, "-f", "null", "-"}
	output, err := f.run(ctx, args)
	if err != nil && len(output) == 0 {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}
	return parseDurationOutput(string(output))
}
