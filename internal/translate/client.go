// Package translate converts segment text between languages while preserving
// the one-to-one segment correspondence the timeline depends on.
//
// Segments cross the model boundary as a numbered list and come back as one.
// The numbering is the contract: the service must return exactly as many
// lines as it was sent, in order, without merging or inventing entries. A
// malformed response is retried once; a well-formed response with the wrong
// count is a contract violation and fails immediately.
package translate

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/revoicehq/revoice/internal/apierr"
	"github.com/revoicehq/revoice/internal/lang"
	"github.com/revoicehq/revoice/internal/segment"
)

// Translator translates segment text in place, filling TargetText.
type Translator interface {
	TranslateSegments(ctx context.Context, segments []segment.Segment, target lang.Language) ([]segment.Segment, error)
}

// OpenAITranslator implements Translator against the chat completion API.
type OpenAITranslator struct {
	client *openai.Client
	model  string
	retry  apierr.RetryConfig
}

// Option configures an OpenAITranslator.
type Option func(*OpenAITranslator)

// WithModel overrides the translation model.
func WithModel(model string) Option {
	return func(t *OpenAITranslator) {
		if model != "" {
			t.model = model
		}
	}
}

// WithRetryConfig overrides the retry policy. Parse retries are cheap but
// token-expensive, so the pipeline keeps this low.
func WithRetryConfig(cfg apierr.RetryConfig) Option {
	return func(t *OpenAITranslator) { t.retry = cfg }
}

// NewOpenAITranslator creates a translator using the given client.
func NewOpenAITranslator(client *openai.Client, opts ...Option) *OpenAITranslator {
	t := &OpenAITranslator{
		client: client,
		model:  openai.GPT4oMini,
		retry:  apierr.RetryConfig{MaxRetries: 1},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TranslateSegments implements Translator. Blanked segments (cleaned-out
// garbage) are skipped entirely: they are not sent, cost nothing, and come
// back still blank.
func (t *OpenAITranslator) TranslateSegments(ctx context.Context, segments []segment.Segment, target lang.Language) ([]segment.Segment, error) {
	out := make([]segment.Segment, len(segments))
	copy(out, segments)

	var voicedIdx []int
	var lines []string
	for i, s := range out {
		if s.SourceText == "" {
			continue
		}
		voicedIdx = append(voicedIdx, i)
		lines = append(lines, fmt.Sprintf("%d. %s", len(voicedIdx), s.SourceText))
	}
	if len(voicedIdx) == 0 {
		return out, nil
	}

	translated, err := t.translateLines(ctx, lines, len(voicedIdx), target)
	if err != nil {
		return nil, err
	}

	for pos, i := range voicedIdx {
		out[i].TargetText = translated[pos]
	}
	return out, nil
}

func (t *OpenAITranslator) translateLines(ctx context.Context, lines []string, want int, target lang.Language) ([]string, error) {
	prompt := buildPrompt(lines, want, target)

	return apierr.RetryWithBackoff(ctx, t.retry,
		func() ([]string, error) {
			resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model:       t.model,
				Temperature: 0.2,
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
					{Role: openai.ChatMessageRoleUser, Content: prompt},
				},
			})
			if err != nil {
				return nil, apierr.Classify(err)
			}
			if len(resp.Choices) == 0 {
				return nil, fmt.Errorf("%w: empty completion", apierr.ErrMalformed)
			}
			return parseNumberedList(resp.Choices[0].Message.Content, want)
		},
	)
}

const systemPrompt = "You are a professional translator for dubbing. " +
	"You translate numbered lists line by line and never change the list structure."

func buildPrompt(lines []string, count int, target lang.Language) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following %d numbered lines into %s.\n", count, target.DisplayName())
	b.WriteString("Rules:\n")
	b.WriteString("- KEEP the numbering and the ORDER exactly as given.\n")
	b.WriteString("- DO NOT MERGE lines and DO NOT ADD new lines.\n")
	fmt.Fprintf(&b, "- Return exactly %d lines, one translation per line.\n", count)
	b.WriteString("- Keep translations natural and roughly as long as the originals when spoken.\n\n")
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

var numberedLineRe = regexp.MustCompile(`^\s*(\d+)\s*[.):]\s*(.*)$`)

// parseNumberedList extracts translations from a numbered-list response.
// Unparseable output is malformed (retryable); a clean parse with the wrong
// line count means the model broke the contract and retrying will not help.
func parseNumberedList(content string, want int) ([]string, error) {
	byNumber := make(map[int]string)
	maxNumber := 0
	for _, line := range strings.Split(content, "\n") {
		m := numberedLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		// Later duplicates win; models occasionally restate a line.
		byNumber[n] = strings.TrimSpace(m[2])
		if n > maxNumber {
			maxNumber = n
		}
	}

	if len(byNumber) == 0 {
		return nil, fmt.Errorf("%w: no numbered lines in response", apierr.ErrMalformed)
	}
	if len(byNumber) != want || maxNumber != want {
		return nil, fmt.Errorf("%w: sent %d lines, got %d back (max index %d)",
			apierr.ErrContract, want, len(byNumber), maxNumber)
	}

	out := make([]string, want)
	for i := 1; i <= want; i++ {
		text, ok := byNumber[i]
		if !ok {
			return nil, fmt.Errorf("%w: line %d missing from response", apierr.ErrContract, i)
		}
		out[i-1] = text
	}
	return out, nil
}
