package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/revoicehq/revoice/internal/config"
	"github.com/revoicehq/revoice/internal/format"
)

// ProbeCmd creates the probe command: report a media file's duration without
// touching any AI service. It needs the transcoder but no API key, so it
// builds a minimal config instead of going through the full loader.
func ProbeCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <media-file>",
		Short: "Report the duration of a media file",
		Example: `  revoice probe talk.mp4
  revoice probe lecture.wav`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]
			if _, err := os.Stat(inputPath); err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
				}
				return fmt.Errorf("cannot access input file: %w", err)
			}
			ext := strings.ToLower(filepath.Ext(inputPath))
			if !supportedFormats[ext] {
				return fmt.Errorf("unsupported format %q (supported: %s): %w",
					ext, supportedFormatsList(), ErrUnsupportedFormat)
			}

			runner, err := env.RunnerFactory(config.Config{
				FFmpegPath:   os.Getenv(config.EnvFFmpegPath),
				MediaTimeout: config.DefaultMediaTimeout,
			})
			if err != nil {
				return err
			}

			duration, err := runner.ProbeDuration(cmd.Context(), inputPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", format.Duration(duration), inputPath)
			return nil
		},
	}
}
