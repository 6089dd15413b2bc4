package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaronday/nano-dev-utils/internal/config"
	"github.com/yaronday/nano-dev-utils/internal/utils"
)

// TestInitializeConfigurationLocal verifies the starter file lands in the
// working directory and parses back through the loader.
func TestInitializeConfigurationLocal(testingInstance *testing.T) {
	isolateHome(testingInstance)
	workingDirectory := testingInstance.TempDir()

	writtenPath, initializationError := config.InitializeConfiguration(config.InitOptions{
		Target:           config.InitTargetLocal,
		WorkingDirectory: workingDirectory,
	})
	if initializationError != nil {
		testingInstance.Fatalf("InitializeConfiguration returned error: %v", initializationError)
	}
	if writtenPath != filepath.Join(workingDirectory, utils.ConfigFileName) {
		testingInstance.Errorf("written path = %q", writtenPath)
	}
	content, readError := os.ReadFile(writtenPath)
	if readError != nil {
		testingInstance.Fatalf("reading starter configuration: %v", readError)
	}
	for _, expectedSection := range []string{"tree:", "ports:", "timing:"} {
		if !strings.Contains(string(content), expectedSection) {
			testingInstance.Errorf("starter configuration missing %q", expectedSection)
		}
	}

	loaded, loadError := config.LoadApplicationConfiguration(config.LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		testingInstance.Fatalf("loading starter configuration: %v", loadError)
	}
	if loaded.Tree.Style != "classic" {
		testingInstance.Errorf("starter style = %q, expected classic", loaded.Tree.Style)
	}
}

// TestInitializeConfigurationRefusesOverwrite verifies an existing file is
// preserved unless Force is set.
func TestInitializeConfigurationRefusesOverwrite(testingInstance *testing.T) {
	isolateHome(testingInstance)
	workingDirectory := testingInstance.TempDir()
	existingPath := filepath.Join(workingDirectory, utils.ConfigFileName)
	writeConfigurationFile(testingInstance, existingPath, "tree:\n  style: dash\n")

	if _, initializationError := config.InitializeConfiguration(config.InitOptions{
		Target:           config.InitTargetLocal,
		WorkingDirectory: workingDirectory,
	}); initializationError == nil {
		testingInstance.Fatal("expected an error without Force")
	}

	if _, initializationError := config.InitializeConfiguration(config.InitOptions{
		Target:           config.InitTargetLocal,
		WorkingDirectory: workingDirectory,
		Force:            true,
	}); initializationError != nil {
		testingInstance.Fatalf("forced initialization returned error: %v", initializationError)
	}
	content, readError := os.ReadFile(existingPath)
	if readError != nil {
		testingInstance.Fatalf("reading overwritten configuration: %v", readError)
	}
	if !strings.Contains(string(content), "style: classic") {
		testingInstance.Error("forced initialization did not replace the file")
	}
}

// TestInitializeConfigurationGlobal verifies the global target creates the
// configuration directory under the user home.
func TestInitializeConfigurationGlobal(testingInstance *testing.T) {
	homeDirectory := isolateHome(testingInstance)

	writtenPath, initializationError := config.InitializeConfiguration(config.InitOptions{Target: config.InitTargetGlobal})
	if initializationError != nil {
		testingInstance.Fatalf("InitializeConfiguration returned error: %v", initializationError)
	}
	expectedPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
	if writtenPath != expectedPath {
		testingInstance.Errorf("written path = %q, expected %q", writtenPath, expectedPath)
	}
	if _, statError := os.Stat(expectedPath); statError != nil {
		testingInstance.Errorf("global configuration missing: %v", statError)
	}
}

// TestInitializeConfigurationRejectsUnknownTarget verifies the closed target set.
func TestInitializeConfigurationRejectsUnknownTarget(testingInstance *testing.T) {
	if _, initializationError := config.InitializeConfiguration(config.InitOptions{Target: "remote"}); initializationError == nil {
		testingInstance.Fatal("expected an error for an unknown target")
	}
}
