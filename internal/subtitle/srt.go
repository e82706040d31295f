// Package subtitle exports translated segments as SubRip (.srt) files.
package subtitle

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/revoicehq/revoice/internal/format"
	"github.com/revoicehq/revoice/internal/segment"
)

// WriteSRT renders segments as SubRip entries. Blanked segments are skipped
// and the remaining entries are renumbered from 1, as players expect.
func WriteSRT(w io.Writer, segments []segment.Segment) error {
	n := 0
	for _, s := range segments {
		text := strings.TrimSpace(s.TargetText)
		if text == "" {
			continue
		}
		n++
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			n,
			format.SRTTimestamp(s.StartDuration()),
			format.SRTTimestamp(s.EndDuration()),
			text,
		)
		if err != nil {
			return fmt.Errorf("write srt entry %d: %w", n, err)
		}
	}
	return nil
}

// SaveSRT writes segments as a SubRip file at path.
func SaveSRT(path string, segments []segment.Segment) error {
	f, err := os.Create(path) // #nosec G304 -- paths come from internal job directories
	if err != nil {
		return fmt.Errorf("create subtitle file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := WriteSRT(f, segments); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("flush subtitle file: %w", err)
	}
	return nil
}
