// Package tts synthesizes translated chunk text into audio clips in the
// pipeline's canonical PCM format.
package tts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/revoicehq/revoice/internal/apierr"
	"github.com/revoicehq/revoice/internal/media"
	"github.com/revoicehq/revoice/internal/pcm"
	"github.com/revoicehq/revoice/internal/segment"
)

// ModelGPT4oMiniTTS is not yet defined in the client library.
const ModelGPT4oMiniTTS openai.SpeechModel = "gpt-4o-mini-tts"

// DefaultVoice is the synthesis voice used unless overridden.
const DefaultVoice = openai.VoiceAlloy

// Clip is one synthesized chunk. A blank chunk yields a nil Audio with a
// zero NominalMS; its timeline slot is silence.
type Clip struct {
	Audio *pcm.Stream
	// NominalMS is the clip length before duration fitting.
	NominalMS int
}

// Synthesizer turns chunk text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Clip, error)
}

// OpenAISynthesizer implements Synthesizer against the OpenAI speech API.
// Responses arrive as WAV at the service's native rate and are resampled to
// canonical mono 16 kHz through the transcoder.
type OpenAISynthesizer struct {
	client  *openai.Client
	runner  media.Runner
	workDir string
	model   openai.SpeechModel
	voice   openai.SpeechVoice
	retry   apierr.RetryConfig
}

// Option configures an OpenAISynthesizer.
type Option func(*OpenAISynthesizer)

// WithModel overrides the synthesis model.
func WithModel(model openai.SpeechModel) Option {
	return func(s *OpenAISynthesizer) {
		if model != "" {
			s.model = model
		}
	}
}

// WithVoice overrides the synthesis voice.
func WithVoice(voice openai.SpeechVoice) Option {
	return func(s *OpenAISynthesizer) {
		if voice != "" {
			s.voice = voice
		}
	}
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg apierr.RetryConfig) Option {
	return func(s *OpenAISynthesizer) { s.retry = cfg }
}

// NewOpenAISynthesizer creates a synthesizer. workDir hosts the scratch WAVs
// used for resampling.
func NewOpenAISynthesizer(client *openai.Client, runner media.Runner, workDir string, opts ...Option) *OpenAISynthesizer {
	s := &OpenAISynthesizer{
		client:  client,
		runner:  runner,
		workDir: workDir,
		model:   ModelGPT4oMiniTTS,
		voice:   DefaultVoice,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize implements Synthesizer.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) (Clip, error) {
	if text == "" {
		return Clip{}, nil
	}

	raw, err := apierr.RetryWithBackoff(ctx, s.retry,
		func() ([]byte, error) {
			resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
				Model:          s.model,
				Input:          text,
				Voice:          s.voice,
				ResponseFormat: openai.SpeechResponseFormatWav,
			})
			if err != nil {
				return nil, apierr.Classify(err)
			}
			defer func() { _ = resp.Close() }()
			data, err := io.ReadAll(resp)
			if err != nil {
				return nil, fmt.Errorf("%w: read speech response: %v", apierr.ErrMalformed, err)
			}
			return data, nil
		},
	)
	if err != nil {
		return Clip{}, fmt.Errorf("synthesize chunk: %w", err)
	}

	audio, err := s.toCanonical(ctx, raw)
	if err != nil {
		return Clip{}, err
	}
	return Clip{Audio: audio, NominalMS: audio.DurationMS()}, nil
}

// toCanonical resamples a raw WAV payload to the canonical format. Payloads
// already mono at 16 kHz decode directly; everything else takes a round trip
// through the transcoder.
func (s *OpenAISynthesizer) toCanonical(ctx context.Context, raw []byte) (*pcm.Stream, error) {
	if stream, err := pcm.DecodeWAVBytes(raw); err == nil && stream.SampleRate() == pcm.DefaultSampleRate {
		return stream, nil
	}

	dir, err := os.MkdirTemp(s.workDir, "tts-")
	if err != nil {
		return nil, fmt.Errorf("create tts scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	rawPath := filepath.Join(dir, "raw.wav")
	canonPath := filepath.Join(dir, "canon.wav")
	if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
		return nil, fmt.Errorf("write speech payload: %w", err)
	}
	if err := s.runner.Resample(ctx, rawPath, canonPath, pcm.DefaultSampleRate); err != nil {
		return nil, fmt.Errorf("resample speech payload: %w", err)
	}
	return pcm.ReadWAV(canonPath)
}

// SynthesizeAll synthesizes every chunk concurrently, bounded by maxParallel.
// Results are ordered by chunk index; the first error cancels the rest.
func SynthesizeAll(ctx context.Context, syn Synthesizer, chunks []segment.Chunk, maxParallel int) ([]Clip, error) {
	if maxParallel <= 0 {
		maxParallel = 1
	}

	clips := make([]Clip, len(chunks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, chunk := range chunks {
		g.Go(func() error {
			clip, err := syn.Synthesize(ctx, chunk.Text)
			if err != nil {
				return fmt.Errorf("chunk %d (%s): %w", chunk.Index, chunk, err)
			}
			clips[i] = clip
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return clips, nil
}
