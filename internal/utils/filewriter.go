package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	outputDirectoryPermissions = 0o755
	outputFilePermissions      = 0o644

	createParentDirectoryErrorFormat = "cannot create parent directory for '%s': %w"
	writePermissionDeniedErrorFormat = "cannot write to '%s': %w"
	writeFailureErrorFormat          = "error writing file '%s': %w"
)

// WriteStringToFile writes content to destinationPath, creating missing parent
// directories first. Failures are wrapped with the destination path; permission
// rejections stay detectable through errors.Is with fs.ErrPermission.
func WriteStringToFile(destinationPath string, content string) error {
	parentDirectory := filepath.Dir(destinationPath)
	if parentDirectory != EmptyString && parentDirectory != "." {
		if createDirectoryError := os.MkdirAll(parentDirectory, outputDirectoryPermissions); createDirectoryError != nil {
			return fmt.Errorf(createParentDirectoryErrorFormat, destinationPath, createDirectoryError)
		}
	}
	if writeError := os.WriteFile(destinationPath, []byte(content), outputFilePermissions); writeError != nil {
		if errors.Is(writeError, fs.ErrPermission) {
			return fmt.Errorf(writePermissionDeniedErrorFormat, destinationPath, writeError)
		}
		return fmt.Errorf(writeFailureErrorFormat, destinationPath, writeError)
	}
	return nil
}
