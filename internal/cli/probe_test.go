package cli

// Notes:
// - Executes the command through cobra with an injected runner, the same way
//   main wires it, so flag parsing and output both get covered.

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/revoicehq/revoice/internal/config"
	"github.com/revoicehq/revoice/internal/media"
)

type probeRunner struct {
	duration time.Duration
	err      error
}

func (r *probeRunner) ExtractAudio(context.Context, string, string) error { return nil }
func (r *probeRunner) Resample(context.Context, string, string, int) error {
	return nil
}
func (r *probeRunner) TempoScale(context.Context, string, string, float64) error { return nil }
func (r *probeRunner) Mux(context.Context, string, string, string) error { return nil }
func (r *probeRunner) ProbeDuration(context.Context, string) (time.Duration, error) {
	return r.duration, r.err
}

func probeEnv(runner media.Runner) *Env {
	return &Env{
		Stderr: &bytes.Buffer{},
		RunnerFactory: func(config.Config) (media.Runner, error) {
			return runner, nil
		},
	}
}

// ---------------------------------------------------------------------------
// TestProbeCmd - Duration reporting
// ---------------------------------------------------------------------------

func TestProbeCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := touch(t, dir, "talk.mp4")

	t.Run("prints duration and path", func(t *testing.T) {
		t.Parallel()

		cmd := ProbeCmd(probeEnv(&probeRunner{duration: 95 * time.Second}))
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{input})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !strings.Contains(out.String(), "01:35") {
			t.Errorf("output %q missing formatted duration", out.String())
		}
		if !strings.Contains(out.String(), input) {
			t.Errorf("output %q missing input path", out.String())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		cmd := ProbeCmd(probeEnv(&probeRunner{}))
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"/nonexistent/talk.mp4"})
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		if err := cmd.Execute(); !errors.Is(err, ErrFileNotFound) {
			t.Errorf("error = %v, want ErrFileNotFound", err)
		}
	})

	t.Run("probe failure propagates", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("unreadable container")
		cmd := ProbeCmd(probeEnv(&probeRunner{err: boom}))
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{input})
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		if err := cmd.Execute(); !errors.Is(err, boom) {
			t.Errorf("error = %v, want probe failure", err)
		}
	})
}
