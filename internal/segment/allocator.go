package segment

import (
	"math"
	"strings"

	"github.com/revoicehq/revoice/internal/vad"
)

// AllocatorConfig tunes how text is distributed over speech regions.
type AllocatorConfig struct {
	// MinWords merges sentences shorter than this into a neighbor before
	// distribution. Only applied when sentences outnumber regions, where
	// fragmentation actually hurts. 1 disables merging.
	MinWords int

	// MaxWords splits sentences longer than this before distribution.
	// 0 disables splitting.
	MaxWords int
}

// DefaultAllocatorConfig returns distribution parameters matched to typical
// speech pacing.
func DefaultAllocatorConfig() AllocatorConfig {
	return AllocatorConfig{MinWords: 5, MaxWords: 22}
}

// Allocate distributes a block of text across the detected speech regions,
// producing ordered, non-overlapping segments with SourceText filled in.
// The policy is deterministic and conserves every input word:
//
//   - fewer regions than sentences: sentences are assigned sequentially so
//     every sentence lands in some window, the last window absorbing overflow;
//   - otherwise each region receives a word budget proportional to its share
//     of the remaining duration and sentences are packed greedily, always
//     leaving at least one sentence for each later region;
//   - the final region flushes whatever remains.
//
// Zero regions is not an error: the whole text becomes one segment spanning
// the clip.
func Allocate(regions []vad.Region, text string, totalMS int, cfg AllocatorConfig) []Segment {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	if len(regions) == 0 {
		return []Segment{{
			ID:         0,
			Start:      0,
			End:        roundSec(float64(totalMS) / 1000),
			SourceText: strings.Join(sentences, " "),
		}}
	}

	// Normalize sentence granularity only when windows are scarce.
	if len(sentences) > len(regions) {
		if cfg.MinWords > 1 {
			sentences = MergeShort(sentences, cfg.MinWords)
		}
		if cfg.MaxWords > 0 {
			sentences = SplitLong(sentences, cfg.MaxWords)
		}
	}

	if len(sentences) > len(regions) {
		return allocateSequential(regions, sentences)
	}
	return allocateBudgeted(regions, sentences)
}

// allocateSequential maps sentence i onto region min(i, last), merging the
// overflow into the final window so no text is ever dropped.
func allocateSequential(regions []vad.Region, sentences []string) []Segment {
	segments := make([]Segment, 0, len(regions))
	for ri, region := range regions {
		if ri == len(regions)-1 {
			segments = append(segments, newSegment(ri, region, sentences[ri:]))
			break
		}
		segments = append(segments, newSegment(ri, region, sentences[ri:ri+1]))
	}
	return segments
}

// allocateBudgeted packs sentences into regions by proportional word budget.
func allocateBudgeted(regions []vad.Region, sentences []string) []Segment {
	totalWords := 0
	for _, s := range sentences {
		totalWords += countWords(s)
	}

	var segments []Segment
	si := 0
	wordsLeft := totalWords

	for ri, region := range regions {
		if si >= len(sentences) {
			break
		}
		if ri == len(regions)-1 {
			// Flush policy: the last region absorbs everything unallocated.
			segments = append(segments, newSegment(len(segments), region, sentences[si:]))
			si = len(sentences)
			break
		}

		remainingDur := 0
		for _, r := range regions[ri:] {
			remainingDur += r.DurationMS()
		}
		budget := 1
		if remainingDur > 0 {
			budget = max(int(math.Round(float64(wordsLeft)*float64(region.DurationMS())/float64(remainingDur))), 1)
		}

		take := 1
		taken := countWords(sentences[si])
		for si+take < len(sentences) {
			// Leave at least one sentence per remaining region.
			if len(sentences)-(si+take) <= len(regions)-ri-1 {
				break
			}
			next := countWords(sentences[si+take])
			if taken+next > budget {
				break
			}
			taken += next
			take++
		}

		segments = append(segments, newSegment(len(segments), region, sentences[si:si+take]))
		si += take
		wordsLeft -= taken
	}

	return segments
}

func newSegment(id int, region vad.Region, sentences []string) Segment {
	return Segment{
		ID:         id,
		Start:      roundSec(float64(region.StartMS) / 1000),
		End:        roundSec(float64(region.EndMS) / 1000),
		SourceText: strings.Join(sentences, " "),
	}
}

// roundSec rounds to millisecond precision, keeping persisted JSON stable.
func roundSec(v float64) float64 {
	return math.Round(v*1000) / 1000
}
