package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yaronday/nano-dev-utils/internal/config"
	"github.com/yaronday/nano-dev-utils/internal/utils"
)

// isolateHome points the user home at an empty directory so developer-machine
// configuration cannot leak into the assertions.
func isolateHome(testingInstance *testing.T) string {
	testingInstance.Helper()
	homeDirectory := testingInstance.TempDir()
	testingInstance.Setenv("HOME", homeDirectory)
	testingInstance.Setenv("USERPROFILE", homeDirectory)
	return homeDirectory
}

// writeConfigurationFile materializes a configuration file with the content.
func writeConfigurationFile(testingInstance *testing.T, destinationPath string, content string) {
	testingInstance.Helper()
	if makeError := os.MkdirAll(filepath.Dir(destinationPath), 0o755); makeError != nil {
		testingInstance.Fatalf("creating configuration directory: %v", makeError)
	}
	if writeError := os.WriteFile(destinationPath, []byte(content), 0o600); writeError != nil {
		testingInstance.Fatalf("writing configuration: %v", writeError)
	}
}

// TestLoadApplicationConfigurationWithoutFiles verifies missing files yield a
// zero configuration and no error.
func TestLoadApplicationConfigurationWithoutFiles(testingInstance *testing.T) {
	isolateHome(testingInstance)
	workingDirectory := testingInstance.TempDir()

	loaded, loadError := config.LoadApplicationConfiguration(config.LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		testingInstance.Fatalf("LoadApplicationConfiguration returned error: %v", loadError)
	}
	if loaded.Tree.Style != "" || loaded.Tree.Indent != nil || loaded.Tree.FilesFirst != nil {
		testingInstance.Errorf("expected zero tree configuration, got %+v", loaded.Tree)
	}
	if len(loaded.Ports.DefaultPorts) != 0 || loaded.Timing.Precision != nil {
		testingInstance.Errorf("expected zero ports and timing configuration, got %+v / %+v", loaded.Ports, loaded.Timing)
	}
}

// TestLoadApplicationConfigurationReadsLocalFile verifies the working
// directory file populates every section.
func TestLoadApplicationConfigurationReadsLocalFile(testingInstance *testing.T) {
	isolateHome(testingInstance)
	workingDirectory := testingInstance.TempDir()
	writeConfigurationFile(testingInstance, filepath.Join(workingDirectory, utils.ConfigFileName), `tree:
  style: dash
  indent: 3
  files_first: true
  ignore_dirs: [vendor, vendor, .git]
ports:
  default_ports: [8080]
  timeout_seconds: 5
timing:
  precision: 2
  verbose: true
`)

	loaded, loadError := config.LoadApplicationConfiguration(config.LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		testingInstance.Fatalf("LoadApplicationConfiguration returned error: %v", loadError)
	}
	if loaded.Tree.Style != "dash" {
		testingInstance.Errorf("style = %q, expected dash", loaded.Tree.Style)
	}
	if loaded.Tree.Indent == nil || *loaded.Tree.Indent != 3 {
		testingInstance.Errorf("indent = %v, expected 3", loaded.Tree.Indent)
	}
	if loaded.Tree.FilesFirst == nil || !*loaded.Tree.FilesFirst {
		testingInstance.Errorf("files_first = %v, expected true", loaded.Tree.FilesFirst)
	}
	if len(loaded.Tree.IgnoreDirs) != 2 {
		testingInstance.Errorf("ignore_dirs = %v, expected duplicates removed", loaded.Tree.IgnoreDirs)
	}
	if len(loaded.Ports.DefaultPorts) != 1 || loaded.Ports.DefaultPorts[0] != 8080 {
		testingInstance.Errorf("default_ports = %v, expected [8080]", loaded.Ports.DefaultPorts)
	}
	if loaded.Ports.TimeoutSeconds == nil || *loaded.Ports.TimeoutSeconds != 5 {
		testingInstance.Errorf("timeout_seconds = %v, expected 5", loaded.Ports.TimeoutSeconds)
	}
	if loaded.Timing.Precision == nil || *loaded.Timing.Precision != 2 {
		testingInstance.Errorf("precision = %v, expected 2", loaded.Timing.Precision)
	}
	if loaded.Timing.Verbose == nil || !*loaded.Timing.Verbose {
		testingInstance.Errorf("verbose = %v, expected true", loaded.Timing.Verbose)
	}
}

// TestLoadApplicationConfigurationLocalOverridesGlobal verifies the local
// file wins key by key while untouched global keys survive.
func TestLoadApplicationConfigurationLocalOverridesGlobal(testingInstance *testing.T) {
	homeDirectory := isolateHome(testingInstance)
	writeConfigurationFile(testingInstance,
		filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName), `tree:
  style: plus
  indent: 4
  reverse: true
`)
	workingDirectory := testingInstance.TempDir()
	writeConfigurationFile(testingInstance, filepath.Join(workingDirectory, utils.ConfigFileName), `tree:
  style: arrow
`)

	loaded, loadError := config.LoadApplicationConfiguration(config.LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		testingInstance.Fatalf("LoadApplicationConfiguration returned error: %v", loadError)
	}
	if loaded.Tree.Style != "arrow" {
		testingInstance.Errorf("style = %q, expected the local arrow to win", loaded.Tree.Style)
	}
	if loaded.Tree.Indent == nil || *loaded.Tree.Indent != 4 {
		testingInstance.Errorf("indent = %v, expected the global 4 to survive", loaded.Tree.Indent)
	}
	if loaded.Tree.Reverse == nil || !*loaded.Tree.Reverse {
		testingInstance.Errorf("reverse = %v, expected the global true to survive", loaded.Tree.Reverse)
	}
}

// TestLoadApplicationConfigurationExplicitPath verifies an explicit file is
// used in place of the working-directory file.
func TestLoadApplicationConfigurationExplicitPath(testingInstance *testing.T) {
	isolateHome(testingInstance)
	workingDirectory := testingInstance.TempDir()
	writeConfigurationFile(testingInstance, filepath.Join(workingDirectory, utils.ConfigFileName), `tree:
  style: dash
  sort_key: lex
`)
	explicitPath := filepath.Join(testingInstance.TempDir(), "custom.yaml")
	writeConfigurationFile(testingInstance, explicitPath, `tree:
  style: plus
`)

	loaded, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: explicitPath,
	})
	if loadError != nil {
		testingInstance.Fatalf("LoadApplicationConfiguration returned error: %v", loadError)
	}
	if loaded.Tree.Style != "plus" {
		testingInstance.Errorf("style = %q, expected the explicit file to win", loaded.Tree.Style)
	}
	if loaded.Tree.SortKey != "" {
		testingInstance.Errorf("sort_key = %q, expected the replaced local file to contribute nothing", loaded.Tree.SortKey)
	}
}

// TestLoadApplicationConfigurationRejectsMalformedFile verifies a broken file
// is surfaced rather than silently ignored.
func TestLoadApplicationConfigurationRejectsMalformedFile(testingInstance *testing.T) {
	isolateHome(testingInstance)
	workingDirectory := testingInstance.TempDir()
	writeConfigurationFile(testingInstance, filepath.Join(workingDirectory, utils.ConfigFileName), "tree: [unclosed")

	if _, loadError := config.LoadApplicationConfiguration(config.LoadOptions{WorkingDirectory: workingDirectory}); loadError == nil {
		testingInstance.Fatal("expected an error for a malformed configuration file")
	}
}

// TestMergeClonesPointerFields verifies merged pointer fields are copies, not
// aliases of the override.
func TestMergeClonesPointerFields(testingInstance *testing.T) {
	overrideIndent := 3
	override := config.ApplicationConfiguration{}
	override.Tree.Indent = &overrideIndent

	merged := config.ApplicationConfiguration{}.Merge(override)
	if merged.Tree.Indent == nil || *merged.Tree.Indent != 3 {
		testingInstance.Fatalf("merged indent = %v, expected 3", merged.Tree.Indent)
	}
	overrideIndent = 9
	if *merged.Tree.Indent != 3 {
		testingInstance.Error("merged indent aliases the override value")
	}
}
