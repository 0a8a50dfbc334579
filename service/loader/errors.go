package loader

import "errors"

var (
	// ErrUnsupportedFormat is returned for documents that are neither YAML nor JSON.
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrInvalidOverride is returned for overrides not in key=value form.
	ErrInvalidOverride = errors.New("invalid config override")
)
