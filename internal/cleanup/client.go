// Package cleanup implements the model-backed transcript cleaning pass: it
// sends segment text to a chat model that strips recognizer hallucinations,
// filler noises, and stray punctuation while leaving timing untouched.
//
// The response must return the same segments it was sent - same ids, same
// count, same timestamps, text-only edits. Anything else is a contract
// violation and the pipeline falls back to the uncleaned transcript.
package cleanup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/revoicehq/revoice/internal/apierr"
	"github.com/revoicehq/revoice/internal/segment"
)

// Client implements segment.ExternalCleaner against the chat completion API.
type Client struct {
	client *openai.Client
	model  string
	retry  apierr.RetryConfig
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the cleaning model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg apierr.RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// NewClient creates a cleaning client.
func NewClient(client *openai.Client, opts ...Option) *Client {
	c := &Client{
		client: client,
		model:  openai.GPT4oMini,
		retry:  apierr.RetryConfig{MaxRetries: 1},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ segment.ExternalCleaner = (*Client)(nil)

const systemPrompt = "You clean speech-to-text transcripts for dubbing. " +
	"Remove hallucinated phrases, filler noises, and transcription artifacts. " +
	"Never paraphrase real speech. Reply with JSON only."

// request/response payload shapes. Only id and text cross the boundary;
// timing stays local so the model cannot corrupt it.
type payload struct {
	Segments []payloadSegment `json:"segments"`
}

type payloadSegment struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// CleanSegments implements segment.ExternalCleaner. Blank segments are not
// sent; their slots are preserved as-is.
func (c *Client) CleanSegments(ctx context.Context, segments []segment.Segment) ([]segment.Segment, error) {
	out := make([]segment.Segment, len(segments))
	copy(out, segments)

	var sent []payloadSegment
	for _, s := range out {
		if s.SourceText == "" {
			continue
		}
		sent = append(sent, payloadSegment{ID: s.ID, Text: s.SourceText})
	}
	if len(sent) == 0 {
		return out, nil
	}

	body, err := json.Marshal(payload{Segments: sent})
	if err != nil {
		return nil, fmt.Errorf("marshal cleaning request: %w", err)
	}

	cleaned, err := apierr.RetryWithBackoff(ctx, c.retry,
		func() (map[int]string, error) {
			resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model:       c.model,
				Temperature: 0,
				ResponseFormat: &openai.ChatCompletionResponseFormat{
					Type: openai.ChatCompletionResponseFormatTypeJSONObject,
				},
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
					{Role: openai.ChatMessageRoleUser, Content: buildPrompt(string(body))},
				},
			})
			if err != nil {
				return nil, apierr.Classify(err)
			}
			if len(resp.Choices) == 0 {
				return nil, fmt.Errorf("%w: empty completion", apierr.ErrMalformed)
			}
			return parseResponse(resp.Choices[0].Message.Content, sent)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("clean transcript: %w", err)
	}

	for i := range out {
		if text, ok := cleaned[out[i].ID]; ok {
			out[i].SourceText = text
		}
	}
	return out, nil
}

func buildPrompt(body string) string {
	var b strings.Builder
	b.WriteString("Clean the text of each segment. Return the same JSON shape: ")
	b.WriteString(`{"segments":[{"id":...,"text":...}]}` + "\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Keep every id, keep the order, do not add or drop segments.\n")
	b.WriteString("- Edit text only. Set text to \"\" for segments that are pure noise.\n\n")
	b.WriteString(body)
	return b.String()
}

// parseResponse decodes the model's JSON and enforces the shape contract:
// the exact id set it was sent, nothing more, nothing less.
func parseResponse(content string, sent []payloadSegment) (map[int]string, error) {
	var got payload
	if err := json.Unmarshal([]byte(content), &got); err != nil {
		return nil, fmt.Errorf("%w: %v", apierr.ErrMalformed, err)
	}

	if len(got.Segments) != len(sent) {
		return nil, fmt.Errorf("%w: sent %d segments, got %d back",
			apierr.ErrContract, len(sent), len(got.Segments))
	}

	want := make(map[int]bool, len(sent))
	for _, s := range sent {
		want[s.ID] = true
	}

	cleaned := make(map[int]string, len(got.Segments))
	for _, s := range got.Segments {
		if !want[s.ID] {
			return nil, fmt.Errorf("%w: unexpected segment id %d in response",
				apierr.ErrContract, s.ID)
		}
		if _, dup := cleaned[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate segment id %d in response",
				apierr.ErrContract, s.ID)
		}
		cleaned[s.ID] = strings.TrimSpace(s.Text)
	}
	return cleaned, nil
}
