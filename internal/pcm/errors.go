package pcm

import "errors"

// ErrFileNotFound indicates the audio file does not exist or cannot be opened.
var ErrFileNotFound = errors.New("audio file not found")

// ErrBadFormat indicates the audio is not the expected mono 16-bit PCM WAV.
var ErrBadFormat = errors.New("unsupported audio format")
