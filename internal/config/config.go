// Package config loads pipeline configuration from environment variables.
// The CLI loads a .env file before this package reads the environment, so a
// project-local .env and real environment variables behave identically.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/revoicehq/revoice/internal/apierr"
)

// Environment variable names.
const (
	EnvAPIKey         = "OPENAI_API_KEY"
	EnvFFmpegPath     = "REVOICE_FFMPEG_PATH"
	EnvWorkDir        = "REVOICE_WORK_DIR"
	EnvSTTModel       = "REVOICE_STT_MODEL"
	EnvTranslateModel = "REVOICE_TRANSLATE_MODEL"
	EnvTTSModel       = "REVOICE_TTS_MODEL"
	EnvTTSVoice       = "REVOICE_TTS_VOICE"
	EnvPlacementMode  = "REVOICE_PLACEMENT_MODE"
	EnvFitTolerance   = "REVOICE_FIT_TOLERANCE"
	EnvWordsPerSec    = "REVOICE_WORDS_PER_SECOND"
	EnvMaxParallel    = "REVOICE_MAX_PARALLEL"
	EnvMediaTimeout   = "REVOICE_MEDIA_TIMEOUT"
	EnvMaxRetries     = "REVOICE_MAX_RETRIES"
)

// Defaults for tunables.
const (
	DefaultFitTolerance = 0.10
	// DefaultWordsPerSecond is the speaking-rate estimate used to budget
	// text across speech windows when the recognizer gives no segment
	// timestamps.
	DefaultWordsPerSecond = 2.5
	DefaultMaxParallel    = 4
	DefaultMediaTimeout   = 5 * time.Minute
	DefaultMaxRetries     = 3
)

// Config holds everything the pipeline needs from the environment.
type Config struct {
	APIKey         string
	FFmpegPath     string
	WorkDir        string
	STTModel       string
	TranslateModel string
	TTSModel       string
	TTSVoice       string
	PlacementMode  string
	FitTolerance   float64
	WordsPerSecond float64
	MaxParallel    int
	MediaTimeout   time.Duration
	Retry          apierr.RetryConfig
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := Config{
		APIKey:         os.Getenv(EnvAPIKey),
		FFmpegPath:     os.Getenv(EnvFFmpegPath),
		WorkDir:        os.Getenv(EnvWorkDir),
		STTModel:       os.Getenv(EnvSTTModel),
		TranslateModel: os.Getenv(EnvTranslateModel),
		TTSModel:       os.Getenv(EnvTTSModel),
		TTSVoice:       os.Getenv(EnvTTSVoice),
		PlacementMode:  os.Getenv(EnvPlacementMode),
		FitTolerance:   DefaultFitTolerance,
		WordsPerSecond: DefaultWordsPerSecond,
		MaxParallel:    DefaultMaxParallel,
		MediaTimeout:   DefaultMediaTimeout,
		Retry: apierr.RetryConfig{
			MaxRetries: DefaultMaxRetries,
			BaseDelay:  time.Second,
			MaxDelay:   30 * time.Second,
		},
	}

	var err error
	if cfg.FitTolerance, err = floatEnv(EnvFitTolerance, cfg.FitTolerance); err != nil {
		return Config{}, err
	}
	if cfg.WordsPerSecond, err = floatEnv(EnvWordsPerSec, cfg.WordsPerSecond); err != nil {
		return Config{}, err
	}
	if cfg.MaxParallel, err = intEnv(EnvMaxParallel, cfg.MaxParallel); err != nil {
		return Config{}, err
	}
	if cfg.MediaTimeout, err = durationEnv(EnvMediaTimeout, cfg.MediaTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Retry.MaxRetries, err = intEnv(EnvMaxRetries, cfg.Retry.MaxRetries); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%s is not set (put it in the environment or a .env file)", EnvAPIKey)
	}
	if c.FitTolerance <= 0 || c.FitTolerance > 1 {
		return fmt.Errorf("%s must be in (0, 1], got %g", EnvFitTolerance, c.FitTolerance)
	}
	if c.WordsPerSecond <= 0 {
		return fmt.Errorf("%s must be positive, got %g", EnvWordsPerSec, c.WordsPerSecond)
	}
	if c.MaxParallel < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", EnvMaxParallel, c.MaxParallel)
	}
	if c.MediaTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %v", EnvMediaTimeout, c.MediaTimeout)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("%s must be non-negative, got %d", EnvMaxRetries, c.Retry.MaxRetries)
	}
	return nil
}

func floatEnv(name string, fallback float64) (float64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", name, raw, err)
	}
	return v, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", name, raw, err)
	}
	return v, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q (use forms like 90s, 5m): %w", name, raw, err)
	}
	return v, nil
}
