package pcm

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ReadWAV decodes a WAV file into a Stream. The file must already be mono;
// resampling and channel mixing happen at the media boundary, not here.
func ReadWAV(path string) (*Stream, error) {
	f, err := os.Open(path) // #nosec G304 -- paths come from internal job directories
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, ErrBadFormat)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm from %s: %w", path, err)
	}
	return fromIntBuffer(buf)
}

// DecodeWAVBytes decodes an in-memory WAV payload (e.g. a synthesis response)
// into a Stream.
func DecodeWAVBytes(data []byte) (*Stream, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, ErrBadFormat
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav payload: %w", err)
	}
	return fromIntBuffer(buf)
}

func fromIntBuffer(buf *audio.IntBuffer) (*Stream, error) {
	if buf == nil || buf.Format == nil {
		return nil, ErrBadFormat
	}
	if buf.Format.NumChannels != 1 {
		return nil, fmt.Errorf("expected mono, got %d channels: %w",
			buf.Format.NumChannels, ErrBadFormat)
	}
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		samples[i] = int16(v)
	}
	return New(samples, buf.Format.SampleRate), nil
}

// WriteWAV encodes the stream as 16-bit mono PCM WAV at path.
func (s *Stream) WriteWAV(path string) error {
	f, err := os.Create(path) // #nosec G304 -- paths come from internal job directories
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	enc := wav.NewEncoder(f, s.rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: s.rate},
		SourceBitDepth: 16,
		Data:           make([]int, len(s.samples)),
	}
	for i, v := range s.samples {
		buf.Data[i] = int(v)
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}
