package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const developmentVersion = "development"

// GetApplicationVersion determines the application version. Module build
// metadata wins; a work-tree build falls back to git describe; everything
// else reports a development build.
func GetApplicationVersion() string {
	if version, available := versionFromBuildInformation(); available {
		return version
	}
	if version, available := versionFromGitDescribe(); available {
		return version
	}
	return developmentVersion
}

func versionFromBuildInformation() (string, bool) {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return EmptyString, false
	}
	mainVersion := buildInfo.Main.Version
	if mainVersion == EmptyString || mainVersion == "(devel)" {
		return EmptyString, false
	}
	return mainVersion, true
}

func versionFromGitDescribe() (string, bool) {
	repositoryRoot, repositoryLookupError := findGitDirectory(".")
	if repositoryLookupError != nil {
		return EmptyString, false
	}
	for _, describeArguments := range [][]string{
		{"describe", "--tags", "--exact-match"},
		{"describe", "--tags", "--long", "--dirty"},
	} {
		// #nosec G204
		describeCommand := exec.Command("git", describeArguments...)
		describeCommand.Dir = repositoryRoot
		describeOutput, describeError := describeCommand.Output()
		if describeError == nil && len(describeOutput) > 0 {
			return strings.TrimSpace(string(describeOutput)), true
		}
	}
	return EmptyString, false
}

// findGitDirectory searches upward from the starting directory until it
// locates a directory containing the .git folder.
func findGitDirectory(startDirectory string) (string, error) {
	absoluteStartDirectory, absolutePathError := filepath.Abs(startDirectory)
	if absolutePathError != nil {
		return EmptyString, fmt.Errorf("failed to get absolute path for %s: %w", startDirectory, absolutePathError)
	}

	currentDirectory := absoluteStartDirectory
	for {
		gitPath := filepath.Join(currentDirectory, GitDirectoryName)
		fileInformation, statError := os.Stat(gitPath)
		if statError == nil && fileInformation.IsDir() {
			return currentDirectory, nil
		}

		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			break
		}
		currentDirectory = parentDirectory
	}

	return EmptyString, fmt.Errorf(".git directory not found in or above %s", absoluteStartDirectory)
}
