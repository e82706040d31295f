// Package job orchestrates a full re-voicing run: recognize the source
// speech, rebuild its text on a clean timeline, translate it, synthesize the
// target speech, and assemble an output track that matches the source
// duration. Intermediate artifacts live in a per-job scratch directory that
// is removed whether the job succeeds or fails; a failed job leaves no
// partial output behind.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/revoicehq/revoice/internal/config"
	"github.com/revoicehq/revoice/internal/fit"
	"github.com/revoicehq/revoice/internal/format"
	"github.com/revoicehq/revoice/internal/lang"
	"github.com/revoicehq/revoice/internal/media"
	"github.com/revoicehq/revoice/internal/pcm"
	"github.com/revoicehq/revoice/internal/segment"
	"github.com/revoicehq/revoice/internal/stt"
	"github.com/revoicehq/revoice/internal/subtitle"
	"github.com/revoicehq/revoice/internal/timeline"
	"github.com/revoicehq/revoice/internal/translate"
	"github.com/revoicehq/revoice/internal/tts"
	"github.com/revoicehq/revoice/internal/vad"
)

// videoExtensions are input containers that get their audio track replaced
// instead of a bare WAV output.
var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".mov": true, ".avi": true, ".webm": true,
}

// Request describes one re-voicing job.
type Request struct {
	InputPath    string
	OutputPath   string
	SubtitlePath string
	// SourceLanguage may be zero for auto-detection.
	SourceLanguage lang.Language
	TargetLanguage lang.Language
	Mode           timeline.Mode
	// SubtitlesOnly stops after translation and writes only the .srt file.
	SubtitlesOnly bool
}

// Result reports what a finished job produced.
type Result struct {
	OutputPath   string
	SubtitlePath string
	Chunks       int
	Duration     time.Duration
	Warnings     []string
}

// Pipeline wires the external services and local stages together.
type Pipeline struct {
	cfg         config.Config
	runner      media.Runner
	transcriber stt.Transcriber
	translator  translate.Translator
	synth       tts.Synthesizer
	external    segment.ExternalCleaner
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithExternalCleaner enables the model-backed transcript cleaning pass.
func WithExternalCleaner(ec segment.ExternalCleaner) Option {
	return func(p *Pipeline) { p.external = ec }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Pipeline.
func New(cfg config.Config, runner media.Runner, transcriber stt.Transcriber,
	translator translate.Translator, synth tts.Synthesizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:         cfg,
		runner:      runner,
		transcriber: transcriber,
		translator:  translator,
		synth:       synth,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the job.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	started := time.Now()

	jobDir, err := os.MkdirTemp(p.cfg.WorkDir, "revoice-")
	if err != nil {
		return Result{}, fmt.Errorf("create job dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(jobDir) }()

	log := p.logger.With("input", req.InputPath)
	log.Info("job started", "target", req.TargetLanguage.String())

	source, sourceWAV, err := p.prepareSource(ctx, req.InputPath, jobDir)
	if err != nil {
		return Result{}, err
	}
	totalMS := source.DurationMS()
	log.Info("source audio ready", "duration", format.Seconds(float64(totalMS)/1000))

	segments, detected, err := p.recognize(ctx, source, sourceWAV, req.SourceLanguage, log)
	if err != nil {
		return Result{}, err
	}
	if len(segments) == 0 {
		return Result{}, fmt.Errorf("%w in %s", ErrNoSpeech, req.InputPath)
	}

	segments, err = p.cleanAndTranslate(ctx, segments, detected, req.TargetLanguage, log)
	if err != nil {
		return Result{}, err
	}

	doc := segment.Document{
		Language: req.TargetLanguage.String(),
		Segments: segments,
	}
	if err := doc.Save(filepath.Join(jobDir, "segments.json")); err != nil {
		return Result{}, err
	}

	result := Result{SubtitlePath: req.SubtitlePath}
	if req.SubtitlePath != "" {
		if err := subtitle.SaveSRT(req.SubtitlePath, segments); err != nil {
			return Result{}, err
		}
		log.Info("subtitles written", "path", req.SubtitlePath)
	}
	if req.SubtitlesOnly {
		result.Duration = time.Since(started)
		return result, nil
	}

	chunks, err := segment.Build(segments, segment.DefaultBuilderConfig())
	if err != nil {
		return Result{}, fmt.Errorf("group segments into chunks: %w", err)
	}
	if len(chunks) == 0 {
		return Result{}, fmt.Errorf("nothing left to synthesize after cleaning: %w", segment.ErrNoChunks)
	}
	log.Info("chunks built", "count", len(chunks))

	placements, warnings, err := p.synthesizeAndFit(ctx, chunks, req.Mode, jobDir, log)
	if err != nil {
		return Result{}, err
	}

	assembled, err := timeline.Assemble(placements, req.Mode, totalMS)
	if err != nil {
		return Result{}, err
	}
	warnings = append(warnings, assembled.Warnings...)
	for _, w := range warnings {
		log.Warn(w)
	}

	trackWAV := filepath.Join(jobDir, "track.wav")
	if err := assembled.Track.WriteWAV(trackWAV); err != nil {
		return Result{}, err
	}

	if err := p.deliver(ctx, req, trackWAV); err != nil {
		return Result{}, err
	}

	result.OutputPath = req.OutputPath
	result.Chunks = len(chunks)
	result.Duration = time.Since(started)
	result.Warnings = warnings
	log.Info("job finished", "output", req.OutputPath, "elapsed", result.Duration.Round(time.Millisecond))
	return result, nil
}

// prepareSource extracts the input's audio track into the canonical WAV and
// decodes it.
func (p *Pipeline) prepareSource(ctx context.Context, inputPath, jobDir string) (*pcm.Stream, string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return nil, "", fmt.Errorf("input %s: %w", inputPath, err)
	}
	sourceWAV := filepath.Join(jobDir, "source.wav")
	if err := p.runner.ExtractAudio(ctx, inputPath, sourceWAV); err != nil {
		return nil, "", err
	}
	source, err := pcm.ReadWAV(sourceWAV)
	if err != nil {
		return nil, "", err
	}
	if source.NumSamples() == 0 {
		return nil, "", fmt.Errorf("input %s has an empty audio track", inputPath)
	}
	return source, sourceWAV, nil
}

// recognize transcribes the source and lays the text onto the audio
// timeline. Service segment timestamps are preferred; without them the text
// is distributed over detected speech regions, and as a last resort over a
// speaking-rate estimate.
func (p *Pipeline) recognize(ctx context.Context, source *pcm.Stream, sourceWAV string,
	sourceLang lang.Language, log *slog.Logger) ([]segment.Segment, lang.Language, error) {

	recognized, err := p.transcriber.Transcribe(ctx, sourceWAV, sourceLang)
	if err != nil {
		return nil, "", err
	}

	detected := sourceLang
	if detected.IsZero() && recognized.Language != "" {
		if parsed, err := lang.Parse(recognized.Language); err == nil {
			detected = parsed
		}
	}

	onset := vad.LocateOnset(source, vad.DefaultOnsetParams())

	if len(recognized.Segments) > 0 {
		segments := recognized.Segments
		if offset := segment.GlobalOffset(onset, segments); offset != 0 {
			log.Debug("aligning transcript to speech onset", "offset", format.Seconds(offset))
			segments = segment.ApplyOffset(segments, offset)
		}
		return segments, detected, nil
	}

	if recognized.Text == "" {
		return nil, detected, nil
	}

	regions := vad.Detect(source, vad.DefaultParams())
	log.Debug("speech regions detected", "count", len(regions))
	if len(regions) == 0 {
		return p.estimateSegments(recognized.Text, onset), detected, nil
	}

	segments := segment.Allocate(regions, recognized.Text, source.DurationMS(),
		segment.DefaultAllocatorConfig())
	// Energy detection can trip on noise ahead of actual speech; the spectral
	// onset restores the clip's real leading silence.
	if off := segment.LeadingSilenceOffset(segments, onset); off > 0 {
		log.Debug("restoring leading silence", "offset", format.Seconds(off))
		segments = segment.ApplyOffset(segments, off)
	}
	return segments, detected, nil
}

// estimateSegments lays sentences sequentially from the speech onset using
// the configured speaking rate. Used only when both service timestamps and
// region detection come up empty.
func (p *Pipeline) estimateSegments(text string, onset float64) []segment.Segment {
	sentences := segment.SplitSentences(text)
	out := make([]segment.Segment, 0, len(sentences))
	cursor := onset
	for i, s := range sentences {
		dur := float64(len(strings.Fields(s))) / p.cfg.WordsPerSecond
		out = append(out, segment.Segment{
			ID:         i,
			Start:      cursor,
			End:        cursor + dur,
			SourceText: s,
		})
		cursor += dur
	}
	return out
}

func (p *Pipeline) cleanAndTranslate(ctx context.Context, segments []segment.Segment,
	detected, target lang.Language, log *slog.Logger) ([]segment.Segment, error) {

	opts := []segment.CleanerOption{}
	if p.external != nil {
		opts = append(opts, segment.WithExternalCleaner(p.external))
	}
	cleaner := segment.NewCleaner(lang.ScriptFor(detected), opts...)
	cleaned, err := cleaner.Clean(ctx, segments)
	if err != nil {
		// The local pass never fails; only the model-backed pass can, and
		// an uncleaned transcript is still usable.
		log.Warn("transcript cleaning failed, continuing uncleaned", "error", err)
		cleaned = segments
	}

	translated, err := p.translator.TranslateSegments(ctx, cleaned, target)
	if err != nil {
		return nil, fmt.Errorf("translate to %s: %w", target, err)
	}
	return translated, nil
}

func (p *Pipeline) synthesizeAndFit(ctx context.Context, chunks []segment.Chunk,
	mode timeline.Mode, jobDir string, log *slog.Logger) ([]timeline.Placement, []string, error) {

	clips, err := tts.SynthesizeAll(ctx, p.synth, chunks, p.cfg.MaxParallel)
	if err != nil {
		return nil, nil, fmt.Errorf("synthesize: %w", err)
	}

	// Voice-over keeps every clip verbatim at its nominal timestamp: the
	// overlay mix tolerates overruns, so no clip is trimmed or compressed.
	if mode == timeline.ModeOverlay {
		placements := make([]timeline.Placement, len(chunks))
		for i, chunk := range chunks {
			placements[i] = timeline.Placement{Chunk: chunk, Audio: clips[i].Audio}
		}
		log.Info("clips placed verbatim", "count", len(placements))
		return placements, nil, nil
	}

	matcher := fit.NewMatcher(p.runner, jobDir, fit.WithTolerance(p.cfg.FitTolerance))

	placements := make([]timeline.Placement, len(chunks))
	var warnings []string
	for i, chunk := range chunks {
		fitted, err := matcher.Fit(ctx, clips[i].Audio, chunk.DurationMS())
		if err != nil {
			return nil, nil, fmt.Errorf("fit %s: %w", chunk, err)
		}
		if fitted.Warning != "" {
			warnings = append(warnings, fmt.Sprintf("%s: %s", chunk, fitted.Warning))
		}
		placements[i] = timeline.Placement{Chunk: chunk, Audio: fitted.Audio}
	}
	log.Info("clips fitted", "count", len(placements), "warnings", len(warnings))
	return placements, warnings, nil
}

// deliver writes the final artifact: a remuxed video when the input is a
// video container, the bare track otherwise.
func (p *Pipeline) deliver(ctx context.Context, req Request, trackWAV string) error {
	ext := strings.ToLower(filepath.Ext(req.InputPath))
	if videoExtensions[ext] && strings.ToLower(filepath.Ext(req.OutputPath)) != ".wav" {
		return p.runner.Mux(ctx, req.InputPath, trackWAV, req.OutputPath)
	}

	data, err := os.ReadFile(trackWAV) // #nosec G304 -- path is inside the job dir
	if err != nil {
		return fmt.Errorf("read assembled track: %w", err)
	}
	if err := os.WriteFile(req.OutputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
