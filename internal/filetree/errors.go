package filetree

import "errors"

// Configuration failures abort a render before any traversal begins.
// Traversal failures never surface as errors; they degrade to placeholder
// lines so one unreadable subtree cannot abort an entire render.
var (
	// ErrNotADirectory reports a root path that is missing or not a directory.
	ErrNotADirectory = errors.New("not a directory")
	// ErrInvalidStyle reports a connector style name absent from the registry.
	ErrInvalidStyle = errors.New("unknown tree style")
	// ErrInvalidSortKey reports a sort key name absent from the registry.
	ErrInvalidSortKey = errors.New("unknown sort key")
	// ErrMissingCustomSort reports a custom sort request without a comparator.
	ErrMissingCustomSort = errors.New("custom sort key requires a comparator")
	// ErrInvalidIndent reports a negative indent width.
	ErrInvalidIndent = errors.New("indent width must not be negative")
	// ErrFileWrite reports a failure delivering the artifact to the output file.
	ErrFileWrite = errors.New("file write failed")
)
