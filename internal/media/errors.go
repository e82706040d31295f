package media

import "errors"

// ErrNotFound indicates the FFmpeg binary could not be located.
var ErrNotFound = errors.New("ffmpeg not found")

// ErrTimeout indicates a media subprocess exceeded its bounded timeout and
// was killed.
var ErrTimeout = errors.New("media subprocess timed out")

// ErrTranscode indicates FFmpeg exited with a failure.
var ErrTranscode = errors.New("transcode failed")

// ErrBadTempo indicates an unusable tempo ratio (zero or negative).
var ErrBadTempo = errors.New("invalid tempo ratio")
