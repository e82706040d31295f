package job

import "errors"

// ErrNoSpeech indicates recognition produced no usable transcript: no text,
// no service segments, nothing to lay on the timeline.
var ErrNoSpeech = errors.New("no speech recognized")
