// Package stt turns source audio into timestamped text through an external
// speech-to-text service.
package stt

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/revoicehq/revoice/internal/apierr"
	"github.com/revoicehq/revoice/internal/lang"
	"github.com/revoicehq/revoice/internal/segment"
)

// Result is a recognized transcript with optional service-provided segments.
type Result struct {
	Text     string
	Language string
	Segments []segment.Segment
}

// Transcriber recognizes speech in an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, language lang.Language) (Result, error)
}

// OpenAITranscriber implements Transcriber against the OpenAI audio API.
type OpenAITranscriber struct {
	client *openai.Client
	model  string
	retry  apierr.RetryConfig
}

// Option configures an OpenAITranscriber.
type Option func(*OpenAITranscriber)

// WithModel overrides the recognition model.
func WithModel(model string) Option {
	return func(t *OpenAITranscriber) {
		if model != "" {
			t.model = model
		}
	}
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg apierr.RetryConfig) Option {
	return func(t *OpenAITranscriber) { t.retry = cfg }
}

// NewOpenAITranscriber creates a transcriber using the given client.
func NewOpenAITranscriber(client *openai.Client, opts ...Option) *OpenAITranscriber {
	t := &OpenAITranscriber{
		client: client,
		model:  openai.Whisper1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe implements Transcriber. The verbose response format carries
// per-segment timestamps, which downstream allocation prefers over its own
// duration-weighted estimates.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string, language lang.Language) (Result, error) {
	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if !language.IsZero() {
		req.Language = language.BaseCode()
	}

	resp, err := apierr.RetryWithBackoff(ctx, t.retry,
		func() (openai.AudioResponse, error) {
			resp, err := t.client.CreateTranscription(ctx, req)
			if err != nil {
				return openai.AudioResponse{}, apierr.Classify(err)
			}
			return resp, nil
		},
	)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe %s: %w", audioPath, err)
	}

	return Result{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
		Segments: convertSegments(resp.Segments),
	}, nil
}

// openaiSegment aliases the anonymous element type of
// openai.AudioResponse.Segments, which go-openai does not export.
type openaiSegment = struct {
	ID               int     `json:"id"`
	Seek             int     `json:"seek"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Text             string  `json:"text"`
	Tokens           []int   `json:"tokens"`
	Temperature      float64 `json:"temperature"`
	AvgLogprob       float64 `json:"avg_logprob"`
	CompressionRatio float64 `json:"compression_ratio"`
	NoSpeechProb     float64 `json:"no_speech_prob"`
	Transient        bool    `json:"transient"`
}

// convertSegments maps service segments into the pipeline's segment model.
// Text lands in SourceText; translation fills TargetText later.
func convertSegments(in []openaiSegment) []segment.Segment {
	if len(in) == 0 {
		return nil
	}
	out := make([]segment.Segment, 0, len(in))
	for i, s := range in {
		out = append(out, segment.Segment{
			ID:         i,
			Start:      s.Start,
			End:        s.End,
			SourceText: strings.TrimSpace(s.Text),
		})
	}
	return out
}
