package segment

// GlobalOffset returns the additive correction that aligns the transcript
// timeline with the real audio: the difference between the located speech
// onset and the nominal start of the first voiced segment. The offset may be
// negative (the recognizer placed the first segment too late).
func GlobalOffset(onsetSec float64, segments []Segment) float64 {
	for _, s := range segments {
		if s.TargetText != "" || s.SourceText != "" {
			return onsetSec - s.Start
		}
	}
	return 0
}

// ApplyOffset shifts every segment's start and end by offset seconds,
// clamping at zero so no segment slides before the track head.
func ApplyOffset(segments []Segment, offset float64) []Segment {
	if offset == 0 {
		return segments
	}
	shifted := make([]Segment, len(segments))
	for i, s := range segments {
		s.Start = max(roundSec(s.Start+offset), 0)
		s.End = max(roundSec(s.End+offset), s.Start)
		shifted[i] = s
	}
	return shifted
}

// LeadingSilenceOffset computes the shift that restores preserved leading
// silence: if the recorded leading silence is longer than the first segment's
// nominal start, segments move right by the difference. Never negative.
func LeadingSilenceOffset(segments []Segment, leadingSilence float64) float64 {
	if len(segments) == 0 {
		return 0
	}
	return max(leadingSilence-segments[0].Start, 0)
}
