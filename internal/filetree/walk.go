package filetree

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

const (
	// DirectorySuffix trails every directory display name, the root included.
	DirectorySuffix = "/"

	// PermissionDeniedPlaceholder replaces the contents of a directory the
	// process is not allowed to enumerate.
	PermissionDeniedPlaceholder = "[Permission Denied]"
	// ReadErrorPlaceholder replaces the contents of a directory whose
	// enumeration failed for any other reason.
	ReadErrorPlaceholder = "[Error reading directory]"
)

// Line is one rendered tree row: the accumulated ancestor prefix, the
// branch-or-end connector segment, and the entry display name. The header
// line carries an empty prefix and connector.
type Line struct {
	Prefix    string
	Connector string
	Name      string
}

// String returns the rendered text of the line.
func (line Line) String() string {
	return line.Prefix + line.Connector + line.Name
}

// traversalFrame is one pending stack entry: the line to emit and, for
// directories, the path to descend into with the prefix its children inherit.
type traversalFrame struct {
	line        Line
	descendPath string
	childPrefix string
}

// Walk streams the rendered lines of the configured tree through emit in
// depth-first pre-order, beginning with the root header line. Traversal uses
// an explicit stack, so tree depth is not bounded by the call stack. The only
// error Walk returns besides a stale root is one produced by emit itself;
// unreadable subdirectories degrade to placeholder lines and traversal of
// their siblings continues.
func Walk(configuration Config, emit func(Line) error) error {
	// The root was validated when the configuration was built; re-check so a
	// configuration held across a filesystem change still fails fast.
	if validationError := validateRootDirectory(configuration.rootPath); validationError != nil {
		return validationError
	}
	if emitError := emit(Line{Name: configuration.rootName + DirectorySuffix}); emitError != nil {
		return emitError
	}

	stack := make([]traversalFrame, 0, 64)
	pushFrames(&stack, listDirectory(configuration, configuration.rootPath, ""))

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if emitError := emit(frame.line); emitError != nil {
			return emitError
		}
		if frame.descendPath != "" {
			pushFrames(&stack, listDirectory(configuration, frame.descendPath, frame.childPrefix))
		}
	}
	return nil
}

// pushFrames appends frames in reverse so the stack pops them in listing order.
func pushFrames(stack *[]traversalFrame, frames []traversalFrame) {
	for frameIndex := len(frames) - 1; frameIndex >= 0; frameIndex-- {
		*stack = append(*stack, frames[frameIndex])
	}
}

// listDirectory enumerates, filters, and orders one directory's children and
// returns their pending frames. Enumeration failures yield a single
// placeholder frame instead of an error.
func listDirectory(configuration Config, directoryPath string, childPrefix string) []traversalFrame {
	entries, enumerationError := readDirectoryEntries(directoryPath)
	if enumerationError != nil {
		placeholder := ReadErrorPlaceholder
		if errors.Is(enumerationError, fs.ErrPermission) {
			placeholder = PermissionDeniedPlaceholder
		}
		return []traversalFrame{{
			line: Line{Prefix: childPrefix, Connector: configuration.segments.end, Name: placeholder},
		}}
	}

	var directories, files []string
	for _, entry := range entries {
		// The entry type is taken without following symlinks, so a symlink to
		// a directory is listed as a file and never descended into.
		if entry.IsDir() {
			if configuration.directoryFilter.Matches(entry.Name()) {
				directories = append(directories, entry.Name())
			}
			continue
		}
		if configuration.fileFilter.Matches(entry.Name()) {
			files = append(files, entry.Name())
		}
	}

	if configuration.comparator != nil {
		ordering := configuration.comparator
		if configuration.reverse {
			forward := ordering
			ordering = func(firstName string, secondName string) int {
				return -forward(firstName, secondName)
			}
		}
		sort.SliceStable(directories, func(first, second int) bool {
			return ordering(directories[first], directories[second]) < 0
		})
		sort.SliceStable(files, func(first, second int) bool {
			return ordering(files[first], files[second]) < 0
		})
	}

	frames := make([]traversalFrame, 0, len(directories)+len(files))
	appendDirectories := func() {
		for _, directoryName := range directories {
			frames = append(frames, traversalFrame{
				line:        Line{Prefix: childPrefix, Name: directoryName + DirectorySuffix},
				descendPath: filepath.Join(directoryPath, directoryName),
			})
		}
	}
	appendFiles := func() {
		for _, fileName := range files {
			frames = append(frames, traversalFrame{
				line: Line{Prefix: childPrefix, Name: fileName},
			})
		}
	}
	if configuration.filesFirst {
		appendFiles()
		appendDirectories()
	} else {
		appendDirectories()
		appendFiles()
	}

	// Filtering happened before this point, so the last surviving entry is
	// the one that takes the end connector and the blank extension.
	for frameIndex := range frames {
		lastSibling := frameIndex == len(frames)-1
		if lastSibling {
			frames[frameIndex].line.Connector = configuration.segments.end
			frames[frameIndex].childPrefix = childPrefix + configuration.segments.space
		} else {
			frames[frameIndex].line.Connector = configuration.segments.branch
			frames[frameIndex].childPrefix = childPrefix + configuration.segments.vertical
		}
	}
	return frames
}

// readDirectoryEntries lists direct children in the order the operating
// system reports them. os.ReadDir is avoided because it sorts, which would
// make the no-sorting mode indistinguishable from lexicographic order.
func readDirectoryEntries(directoryPath string) ([]os.DirEntry, error) {
	directoryHandle, openError := os.Open(directoryPath)
	if openError != nil {
		return nil, openError
	}
	defer directoryHandle.Close()
	return directoryHandle.ReadDir(-1)
}
