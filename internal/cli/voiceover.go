package cli

import (
	"github.com/spf13/cobra"

	"github.com/revoicehq/revoice/internal/timeline"
)

// VoiceoverCmd creates the voiceover command: a dub that keeps every clip at
// its original timestamp, mixed over silence, documentary style. It is the
// dub flow with the placement mode pinned to overlay.
func VoiceoverCmd(env *Env) *cobra.Command {
	var (
		output     string
		srtPath    string
		sourceLang string
		targetLang string
		clean      bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "voiceover <media-file>",
		Short: "Re-voice a media file with clips fixed at their source timestamps",
		Example: `  revoice voiceover documentary.mp4 -t ru
  revoice voiceover interview.wav -s en -t es --srt interview-es.srt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(args[0], output, srtPath, sourceLang, targetLang,
				string(timeline.ModeOverlay), force)
			if err != nil {
				return err
			}
			return runJob(cmd, env, req, clean)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: <input>.<lang>.<ext>)")
	cmd.Flags().StringVar(&srtPath, "srt", "", "Also write translated subtitles to this path")
	cmd.Flags().StringVarP(&sourceLang, "source-lang", "s", "", "Source language (ISO 639-1, default: auto-detect)")
	cmd.Flags().StringVarP(&targetLang, "target-lang", "t", "", "Target language (ISO 639-1 code, e.g., en, ru, pt-BR)")
	cmd.Flags().BoolVar(&clean, "clean", false, "Run the model-backed transcript cleaning pass")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite the output file if it exists")
	_ = cmd.MarkFlagRequired("target-lang")

	return cmd
}
