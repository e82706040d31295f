// Package format provides human-readable and protocol formatting helpers for
// durations and timestamps.
package format

import (
	"fmt"
	"time"
)

// Duration formats a duration as HH:MM:SS or MM:SS.
func Duration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// SRTTimestamp formats a duration in the SubRip timestamp form HH:MM:SS,mmm.
func SRTTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	ms := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// Seconds formats a seconds value with millisecond precision, for logs.
func Seconds(sec float64) string {
	return fmt.Sprintf("%.3fs", sec)
}
