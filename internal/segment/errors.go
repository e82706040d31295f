package segment

import "errors"

// ErrChunkTooLong indicates a built chunk exceeds the hard character ceiling.
// Truncating would silently drop spoken content, so this is surfaced instead.
var ErrChunkTooLong = errors.New("chunk exceeds hard character ceiling")

// ErrNoChunks indicates chunk building produced nothing to synthesize.
var ErrNoChunks = errors.New("no chunks produced")

// ErrEmptyChunk indicates a built chunk has no text or a non-positive span.
var ErrEmptyChunk = errors.New("invalid empty chunk")
