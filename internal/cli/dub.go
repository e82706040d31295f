package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/revoicehq/revoice/internal/job"
	"github.com/revoicehq/revoice/internal/lang"
	"github.com/revoicehq/revoice/internal/timeline"
)

// supportedFormats lists input containers the transcoder handles.
var supportedFormats = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".mp4":  true,
	".mkv":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
}

// supportedFormatsList returns a comma-separated list for error messages.
func supportedFormatsList() string {
	formats := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	return strings.Join(formats, ", ")
}

// deriveOutputPath appends the target language before the input extension.
// Example: "talk.mp4" + "ru" -> "talk.ru.mp4". Audio-only inputs get a WAV.
func deriveOutputPath(inputPath string, target lang.Language) string {
	ext := strings.ToLower(filepath.Ext(inputPath))
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	outExt := ext
	switch ext {
	case ".mp4", ".mkv", ".mov", ".avi", ".webm":
	default:
		outExt = ".wav"
	}
	return fmt.Sprintf("%s.%s%s", base, target.String(), outExt)
}

// DubCmd creates the dub command.
func DubCmd(env *Env) *cobra.Command {
	var (
		output     string
		srtPath    string
		sourceLang string
		targetLang string
		mode       string
		clean      bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "dub <media-file>",
		Short: "Re-voice a media file into another language",
		Long: `Re-voice a media file: transcribe the speech, translate it, synthesize a
new voice track in the target language, and assemble it on the original
timeline. Video inputs keep their video stream; audio inputs produce a WAV.

Supported formats: ` + supportedFormatsList(),
		Example: `  revoice dub talk.mp4 -t ru
  revoice dub lecture.wav -t es -o lecture-es.wav --srt lecture-es.srt
  revoice dub interview.mkv -s en -t de --mode overlay`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(args[0], output, srtPath, sourceLang, targetLang, mode, force)
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
	cmd.Flags().StringVar(&mode, "mode", "", "Clip placement: sequential (default) or overlay")
	cmd.Flags().BoolVar(&clean, "clean", false, "Run the model-backed transcript cleaning pass")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite the output file if it exists")
	_ = cmd.MarkFlagRequired("target-lang")

	return cmd
}

// buildRequest validates command input and assembles a job request.
// Validation order: file exists -> format -> languages -> mode -> output.
func buildRequest(inputPath, output, srtPath, sourceLang, targetLang, mode string, force bool) (job.Request, error) {
	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return job.Request{}, fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
		}
		return job.Request{}, fmt.Errorf("cannot access input file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(inputPath))
	if !supportedFormats[ext] {
		return job.Request{}, fmt.Errorf("unsupported format %q (supported: %s): %w",
			ext, supportedFormatsList(), ErrUnsupportedFormat)
	}

	source, err := lang.Parse(sourceLang)
	if err != nil {
		return job.Request{}, err
	}
	target, err := lang.Parse(targetLang)
	if err != nil {
		return job.Request{}, err
	}
	if target.IsZero() {
		return job.Request{}, fmt.Errorf("target language is required: %w", lang.ErrInvalid)
	}

	// Empty mode defers to configuration; resolved in runJob.
	var placement timeline.Mode
	if mode != "" {
		placement, err = timeline.ParseMode(mode)
		if err != nil {
			return job.Request{}, err
		}
	}

	if output == "" {
		output = deriveOutputPath(inputPath, target)
	}
	if !force {
		if _, err := os.Stat(output); err == nil {
			return job.Request{}, fmt.Errorf("%w: %s (use --force to overwrite)", ErrOutputExists, output)
		}
	}

	return job.Request{
		InputPath:      inputPath,
		OutputPath:     output,
		SubtitlePath:   srtPath,
		SourceLanguage: source,
		TargetLanguage: target,
		Mode:           placement,
	}, nil
}

// runJob loads configuration, assembles the pipeline, and executes.
func runJob(cmd *cobra.Command, env *Env, req job.Request, clean bool) error {
	cfg, err := env.ConfigLoader()
	if err != nil {
		return err
	}
	runner, err := env.RunnerFactory(cfg)
	if err != nil {
		return err
	}
	if req.Mode == "" {
		mode, err := timeline.ParseMode(cfg.PlacementMode)
		if err != nil {
			return err
		}
		req.Mode = mode
	}

	pipeline := env.PipelineFactory(cfg, runner, clean)
	result, err := pipeline.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(env.Stderr, "warning: %s\n", w)
	}
	if result.OutputPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", result.OutputPath)
	}
	if result.SubtitlePath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", result.SubtitlePath)
	}
	return nil
}
