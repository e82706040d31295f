package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/revoicehq/revoice/internal/apierr"
	"github.com/revoicehq/revoice/internal/cli"
	"github.com/revoicehq/revoice/internal/job"
	"github.com/revoicehq/revoice/internal/lang"
	"github.com/revoicehq/revoice/internal/media"
	"github.com/revoicehq/revoice/internal/pcm"
	"github.com/revoicehq/revoice/internal/segment"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitSetup         = 3
	ExitValidation    = 4
	ExitTranscription = 5
	ExitSynthesis     = 6
	ExitInterrupt     = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	env := cli.DefaultEnv()

	rootCmd := &cobra.Command{
		Use:     "revoice",
		Short:   "Re-voice media files into another language",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.DubCmd(env))
	rootCmd.AddCommand(cli.VoiceoverCmd(env))
	rootCmd.AddCommand(cli.SubtitlesCmd(env))
	rootCmd.AddCommand(cli.ProbeCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors: Cobra flag/arg parsing errors.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors: missing binary or credentials.
	if errors.Is(err, media.ErrNotFound) || errors.Is(err, apierr.ErrAuthFailed) {
		return ExitSetup
	}

	// Validation errors: bad input before any work starts.
	if errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrUnsupportedFormat) ||
		errors.Is(err, cli.ErrOutputExists) || errors.Is(err, lang.ErrInvalid) ||
		errors.Is(err, pcm.ErrFileNotFound) || errors.Is(err, pcm.ErrBadFormat) {
		return ExitValidation
	}

	// Recognition and translation failures.
	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrQuotaExceeded) ||
		errors.Is(err, apierr.ErrTimeout) || errors.Is(err, apierr.ErrContract) ||
		errors.Is(err, apierr.ErrMalformed) || errors.Is(err, job.ErrNoSpeech) {
		return ExitTranscription
	}

	// Synthesis and assembly failures.
	if errors.Is(err, media.ErrTranscode) || errors.Is(err, media.ErrTimeout) ||
		errors.Is(err, media.ErrBadTempo) || errors.Is(err, segment.ErrChunkTooLong) ||
		errors.Is(err, segment.ErrEmptyChunk) || errors.Is(err, segment.ErrNoChunks) {
		return ExitSynthesis
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate
// Cobra usage errors. Cobra doesn't expose typed errors, so string matching
// is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",
	"unknown flag",
	"unknown shorthand",
	"flag needs an argument",
	"invalid argument",
	"if any flags in the group",
	"at least one of the flags",
	"accepts ",
	"requires at least",
	"requires at most",
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
