// Package filetree renders a directory hierarchy as prefixed text lines.
package filetree

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// DefaultOutputFileSuffix is appended to the root directory name when no
	// explicit output path is configured.
	DefaultOutputFileSuffix = "_filetree.txt"

	rootPathErrorFormat = "%w: %q"
)

// Options collects the caller-facing knobs of one render request. Zero values
// select the documented defaults except Indent, which is honored as written
// (an indent of zero collapses fill runs but keeps the tree structurally
// valid).
type Options struct {
	// RootPath is the directory to render. It must exist and be a directory.
	RootPath string
	// OutputPath overrides the default save destination
	// <root-name>_filetree.txt beside the root.
	OutputPath string

	// IgnoreDirs and IgnoreFiles block matching names; IncludeDirs and
	// IncludeFiles, when non-empty, admit only matching names. Blocking wins
	// over inclusion. Entries are literal names or glob patterns.
	IgnoreDirs   []string
	IgnoreFiles  []string
	IncludeDirs  []string
	IncludeFiles []string

	// StyleName selects a connector glyph set; empty selects the default.
	StyleName string
	// Indent is the fill width per nesting level and must not be negative.
	Indent int

	// FilesFirst places files before subdirectories at each level.
	FilesFirst bool
	// SortKeyName selects the ordering; empty selects the default.
	SortKeyName string
	// CustomComparator supplies the ordering for SortKeyCustom.
	CustomComparator Comparator
	// Reverse inverts the chosen ordering; it has no effect without sorting.
	Reverse bool

	// SaveToFile and Printout select the output sinks; both may be set and
	// the rendered artifact is returned to the caller regardless.
	SaveToFile bool
	Printout   bool
	// PrintDestination receives the artifact when Printout is set. It
	// defaults to standard output.
	PrintDestination io.Writer
}

// Config is an immutable, validated render configuration. All derivation
// (filter compilation, style and comparator resolution, output path defaults)
// happens once in NewConfig; changing a request means building a new Config.
type Config struct {
	rootPath   string
	rootName   string
	outputPath string

	directoryFilter NameFilter
	fileFilter      NameFilter

	segments   styleSegments
	comparator Comparator
	filesFirst bool
	reverse    bool

	saveToFile       bool
	printout         bool
	printDestination io.Writer
}

// NewConfig validates the options and derives the traversal state. It fails
// with ErrNotADirectory, ErrInvalidIndent, ErrInvalidStyle, ErrInvalidSortKey,
// or ErrMissingCustomSort before any filesystem traversal can begin.
func NewConfig(options Options) (Config, error) {
	rootPath := options.RootPath
	if rootPath == "" {
		rootPath = "."
	}
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return Config{}, fmt.Errorf(rootPathErrorFormat, ErrNotADirectory, rootPath)
	}
	if validationError := validateRootDirectory(absoluteRootPath); validationError != nil {
		return Config{}, validationError
	}

	if options.Indent < 0 {
		return Config{}, fmt.Errorf("%w: %d", ErrInvalidIndent, options.Indent)
	}
	style, styleError := ResolveStyle(options.StyleName)
	if styleError != nil {
		return Config{}, styleError
	}
	comparator, comparatorError := resolveComparator(options.SortKeyName, options.CustomComparator)
	if comparatorError != nil {
		return Config{}, comparatorError
	}

	rootName := filepath.Base(absoluteRootPath)
	outputPath := options.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(filepath.Dir(absoluteRootPath), rootName+DefaultOutputFileSuffix)
	}
	printDestination := options.PrintDestination
	if printDestination == nil {
		printDestination = os.Stdout
	}

	return Config{
		rootPath:         absoluteRootPath,
		rootName:         rootName,
		outputPath:       outputPath,
		directoryFilter:  NewNameFilter(options.IncludeDirs, options.IgnoreDirs),
		fileFilter:       NewNameFilter(options.IncludeFiles, options.IgnoreFiles),
		segments:         style.segments(options.Indent),
		comparator:       comparator,
		filesFirst:       options.FilesFirst,
		reverse:          options.Reverse,
		saveToFile:       options.SaveToFile,
		printout:         options.Printout,
		printDestination: printDestination,
	}, nil
}

// RootPath returns the absolute path of the rendered directory.
func (configuration Config) RootPath() string {
	return configuration.rootPath
}

// OutputPath returns the resolved save destination, whether or not the
// save sink is enabled.
func (configuration Config) OutputPath() string {
	return configuration.outputPath
}

// validateRootDirectory confirms the path exists and is a directory. A
// dangling path and a regular file fail the same way.
func validateRootDirectory(rootPath string) error {
	rootInformation, statError := os.Stat(rootPath)
	if statError != nil || !rootInformation.IsDir() {
		return fmt.Errorf(rootPathErrorFormat, ErrNotADirectory, rootPath)
	}
	return nil
}
