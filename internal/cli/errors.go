package cli

import "errors"

// CLI-specific sentinel errors. Validation and usage failures that do not
// belong to a domain package.
var (
	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFormat indicates an input file has an unsupported extension.
	ErrUnsupportedFormat = errors.New("unsupported media format")

	// ErrOutputExists indicates the output file already exists.
	ErrOutputExists = errors.New("output file already exists")
)
