package cli

import (
	"io"
	"log/slog"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/revoicehq/revoice/internal/cleanup"
	"github.com/revoicehq/revoice/internal/config"
	"github.com/revoicehq/revoice/internal/job"
	"github.com/revoicehq/revoice/internal/media"
	"github.com/revoicehq/revoice/internal/stt"
	"github.com/revoicehq/revoice/internal/translate"
	"github.com/revoicehq/revoice/internal/tts"
)

// Env holds injectable dependencies for CLI commands, so tests can exercise
// commands without real subprocesses or API calls.
//
// Env must not be nil when passed to command functions. Use DefaultEnv() to
// create a valid instance.
type Env struct {
	Stderr io.Writer
	Logger *slog.Logger

	// ConfigLoader loads pipeline configuration.
	ConfigLoader func() (config.Config, error)

	// RunnerFactory creates the transcoder runner.
	RunnerFactory func(cfg config.Config) (media.Runner, error)

	// PipelineFactory assembles the full pipeline from configuration.
	PipelineFactory func(cfg config.Config, runner media.Runner, clean bool) *job.Pipeline
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EnvOption {
	return func(e *Env) { e.Logger = logger }
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(fn func() (config.Config, error)) EnvOption {
	return func(e *Env) { e.ConfigLoader = fn }
}

// WithRunnerFactory sets the transcoder runner factory.
func WithRunnerFactory(fn func(cfg config.Config) (media.Runner, error)) EnvOption {
	return func(e *Env) { e.RunnerFactory = fn }
}

// WithPipelineFactory sets the pipeline factory.
func WithPipelineFactory(fn func(cfg config.Config, runner media.Runner, clean bool) *job.Pipeline) EnvOption {
	return func(e *Env) { e.PipelineFactory = fn }
}

// DefaultEnv returns an Env wired with production defaults.
func DefaultEnv(opts ...EnvOption) *Env {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	env := &Env{
		Stderr:       os.Stderr,
		Logger:       logger,
		ConfigLoader: config.Load,
		RunnerFactory: func(cfg config.Config) (media.Runner, error) {
			return media.NewFFmpeg(cfg.FFmpegPath, media.WithTimeout(cfg.MediaTimeout))
		},
		PipelineFactory: func(cfg config.Config, runner media.Runner, clean bool) *job.Pipeline {
			return buildPipeline(cfg, runner, clean, logger)
		},
	}
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// buildPipeline assembles the production pipeline from configuration.
func buildPipeline(cfg config.Config, runner media.Runner, clean bool, logger *slog.Logger) *job.Pipeline {
	client := openai.NewClient(cfg.APIKey)

	var sttOpts []stt.Option
	if cfg.STTModel != "" {
		sttOpts = append(sttOpts, stt.WithModel(cfg.STTModel))
	}
	sttOpts = append(sttOpts, stt.WithRetryConfig(cfg.Retry))
	transcriber := stt.NewOpenAITranscriber(client, sttOpts...)

	var trOpts []translate.Option
	if cfg.TranslateModel != "" {
		trOpts = append(trOpts, translate.WithModel(cfg.TranslateModel))
	}
	translator := translate.NewOpenAITranslator(client, trOpts...)

	var ttsOpts []tts.Option
	if cfg.TTSModel != "" {
		ttsOpts = append(ttsOpts, tts.WithModel(openai.SpeechModel(cfg.TTSModel)))
	}
	if cfg.TTSVoice != "" {
		ttsOpts = append(ttsOpts, tts.WithVoice(openai.SpeechVoice(cfg.TTSVoice)))
	}
	ttsOpts = append(ttsOpts, tts.WithRetryConfig(cfg.Retry))
	synth := tts.NewOpenAISynthesizer(client, runner, cfg.WorkDir, ttsOpts...)

	jobOpts := []job.Option{job.WithLogger(logger)}
	if clean {
		var clOpts []cleanup.Option
		if cfg.TranslateModel != "" {
			clOpts = append(clOpts, cleanup.WithModel(cfg.TranslateModel))
		}
		jobOpts = append(jobOpts, job.WithExternalCleaner(cleanup.NewClient(client, clOpts...)))
	}

	return job.New(cfg, runner, transcriber, translator, synth, jobOpts...)
}
