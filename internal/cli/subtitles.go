package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/revoicehq/revoice/internal/segment"
	"github.com/revoicehq/revoice/internal/subtitle"
)

// deriveSubtitlePath converts a media file path to a subtitle output path.
// Example: "talk.mp4" -> "talk.srt".
func deriveSubtitlePath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + ".srt"
}

// SubtitlesCmd creates the subtitles command: the recognition and translation
// stages only, exported as a SubRip file. With --from-segments the stages are
// skipped and the file is re-rendered from a saved segment document.
func SubtitlesCmd(env *Env) *cobra.Command {
	var (
		output       string
		sourceLang   string
		targetLang   string
		fromSegments string
		clean        bool
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "subtitles <media-file>",
		Short: "Produce translated subtitles without synthesizing audio",
		Example: `  revoice subtitles talk.mp4 -t ru
  revoice subtitles lecture.wav -s en -t es -o lecture-es.srt
  revoice subtitles talk.mp4 --from-segments work/talk/segments.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = deriveSubtitlePath(args[0])
			}
			if fromSegments != "" {
				return renderSubtitles(cmd, fromSegments, output, force)
			}
			req, err := buildRequest(args[0], output, output, sourceLang, targetLang, "", force)
			if err != nil {
				return err
			}
			req.OutputPath = ""
			req.SubtitlesOnly = true
			return runJob(cmd, env, req, clean)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Subtitle file path (default: <input>.srt)")
	cmd.Flags().StringVarP(&sourceLang, "source-lang", "s", "", "Source language (ISO 639-1, default: auto-detect)")
	cmd.Flags().StringVarP(&targetLang, "target-lang", "t", "", "Target language (ISO 639-1 code, e.g., en, ru, pt-BR)")
	cmd.Flags().StringVar(&fromSegments, "from-segments", "", "Re-render subtitles from a saved segments.json instead of recognizing")
	cmd.Flags().BoolVar(&clean, "clean", false, "Run the model-backed transcript cleaning pass")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite the subtitle file if it exists")
	cmd.MarkFlagsOneRequired("target-lang", "from-segments")

	return cmd
}

// renderSubtitles re-renders a SubRip file from a persisted segment document.
// No services are involved, so it needs neither credentials nor a transcoder.
func renderSubtitles(cmd *cobra.Command, docPath, output string, force bool) error {
	if _, err := os.Stat(docPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, docPath)
	}
	if !force {
		if _, err := os.Stat(output); err == nil {
			return fmt.Errorf("%w: %s (use --force to overwrite)", ErrOutputExists, output)
		}
	}

	doc, err := segment.Load(docPath)
	if err != nil {
		return err
	}
	if err := subtitle.SaveSRT(output, doc.Segments); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
	return nil
}
