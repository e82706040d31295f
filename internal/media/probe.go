package media

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+(?:\.\d+)?)`)
	timeRe     = regexp.MustCompile(`time=(\d+):(\d+):(\d+(?:\.\d+)?)`)
)

// parseDurationOutput extracts a media duration from ffmpeg's stderr chatter.
// The header "Duration:" line is preferred; the trailing progress "time="
// stamps are a fallback for streams without a declared duration.
func parseDurationOutput(output string) (time.Duration, error) {
	if m := durationRe.FindStringSubmatch(output); m != nil {
		return parseTimeComponents(m[1], m[2], m[3])
	}

	matches := timeRe.FindAllStringSubmatch(output, -1)
	if len(matches) > 0 {
		last := matches[len(matches)-1]
		return parseTimeComponents(last[1], last[2], last[3])
	}

	return 0, fmt.Errorf("%w: no duration in ffmpeg output", ErrTranscode)
}

func parseTimeComponents(hh, mm, ss string) (time.Duration, error) {
	hours, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("parse hours %q: %w", hh, err)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("parse minutes %q: %w", mm, err)
	}
	seconds, err := strconv.ParseFloat(ss, 64)
	if err != nil {
		return 0, fmt.Errorf("parse seconds %q: %w", ss, err)
	}

	total := float64(hours)*3600 + float64(minutes)*60 + seconds
	return time.Duration(total * float64(time.Second)), nil
}
