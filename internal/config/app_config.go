// Package config loads and merges application configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/yaronday/nano-dev-utils/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
// Optional scalars are pointer-typed so the command layer can distinguish an
// absent key from a zero value when merging with flags.
type ApplicationConfiguration struct {
	Tree   TreeConfiguration   `mapstructure:"tree"`
	Ports  PortsConfiguration  `mapstructure:"ports"`
	Timing TimingConfiguration `mapstructure:"timing"`
}

// TreeConfiguration defines defaults for the tree command.
type TreeConfiguration struct {
	RootDirectory string   `mapstructure:"root_dir"`
	OutputPath    string   `mapstructure:"filepath"`
	IgnoreDirs    []string `mapstructure:"ignore_dirs"`
	IgnoreFiles   []string `mapstructure:"ignore_files"`
	IncludeDirs   []string `mapstructure:"include_dirs"`
	IncludeFiles  []string `mapstructure:"include_files"`
	Style         string   `mapstructure:"style"`
	Indent        *int     `mapstructure:"indent"`
	FilesFirst    *bool    `mapstructure:"files_first"`
	SortKey       string   `mapstructure:"sort_key"`
	SkipSorting   *bool    `mapstructure:"skip_sorting"`
	Reverse       *bool    `mapstructure:"reverse"`
	Save          *bool    `mapstructure:"save"`
	Printout      *bool    `mapstructure:"printout"`
	Clipboard     *bool    `mapstructure:"clipboard"`
	Timing        *bool    `mapstructure:"timing"`
}

// PortsConfiguration defines defaults for the ports command.
type PortsConfiguration struct {
	DefaultPorts   []int `mapstructure:"default_ports"`
	TimeoutSeconds *int  `mapstructure:"timeout_seconds"`
}

// TimingConfiguration defines defaults for duration reporting.
type TimingConfiguration struct {
	Precision *int  `mapstructure:"precision"`
	Verbose   *bool `mapstructure:"verbose"`
}

// LoadApplicationConfiguration loads configuration from the global file, the
// working-directory file, and an explicit path, in that order; later sources
// override earlier ones key by key.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfiguration, loadError := loadConfigurationFromPath(globalPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(globalConfiguration)
	}

	localPath, resolveError := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveError != nil {
		return ApplicationConfiguration{}, resolveError
	}
	if localPath != "" {
		localConfiguration, loadError := loadConfigurationFromPath(localPath)
		if loadError != nil {
			return ApplicationConfiguration{}, loadError
		}
		merged = merged.Merge(localConfiguration)
	}

	merged.Tree.IgnoreDirs = utils.DeduplicatePatterns(merged.Tree.IgnoreDirs)
	merged.Tree.IgnoreFiles = utils.DeduplicatePatterns(merged.Tree.IgnoreFiles)
	merged.Tree.IncludeDirs = utils.DeduplicatePatterns(merged.Tree.IncludeDirs)
	merged.Tree.IncludeFiles = utils.DeduplicatePatterns(merged.Tree.IncludeFiles)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolutePath, absoluteError := filepath.Abs(explicitPath)
			if absoluteError != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, absoluteError)
			}
			return absolutePath, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	pathInformation, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statError)
	}
	if pathInformation.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readError := reader.ReadInConfig(); readError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readError)
	}
	var configuration ApplicationConfiguration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeError)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := configuration
	result.Tree = result.Tree.merge(override.Tree)
	result.Ports = result.Ports.merge(override.Ports)
	result.Timing = result.Timing.merge(override.Timing)
	return result
}

func (configuration TreeConfiguration) merge(override TreeConfiguration) TreeConfiguration {
	result := configuration
	if override.RootDirectory != "" {
		result.RootDirectory = override.RootDirectory
	}
	if override.OutputPath != "" {
		result.OutputPath = override.OutputPath
	}
	if len(override.IgnoreDirs) > 0 {
		result.IgnoreDirs = append([]string{}, utils.DeduplicatePatterns(override.IgnoreDirs)...)
	}
	if len(override.IgnoreFiles) > 0 {
		result.IgnoreFiles = append([]string{}, utils.DeduplicatePatterns(override.IgnoreFiles)...)
	}
	if len(override.IncludeDirs) > 0 {
		result.IncludeDirs = append([]string{}, utils.DeduplicatePatterns(override.IncludeDirs)...)
	}
	if len(override.IncludeFiles) > 0 {
		result.IncludeFiles = append([]string{}, utils.DeduplicatePatterns(override.IncludeFiles)...)
	}
	if override.Style != "" {
		result.Style = override.Style
	}
	if override.Indent != nil {
		result.Indent = cloneInt(override.Indent)
	}
	if override.FilesFirst != nil {
		result.FilesFirst = cloneBool(override.FilesFirst)
	}
	if override.SortKey != "" {
		result.SortKey = override.SortKey
	}
	if override.SkipSorting != nil {
		result.SkipSorting = cloneBool(override.SkipSorting)
	}
	if override.Reverse != nil {
		result.Reverse = cloneBool(override.Reverse)
	}
	if override.Save != nil {
		result.Save = cloneBool(override.Save)
	}
	if override.Printout != nil {
		result.Printout = cloneBool(override.Printout)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	if override.Timing != nil {
		result.Timing = cloneBool(override.Timing)
	}
	return result
}

func (configuration PortsConfiguration) merge(override PortsConfiguration) PortsConfiguration {
	result := configuration
	if len(override.DefaultPorts) > 0 {
		result.DefaultPorts = append([]int{}, override.DefaultPorts...)
	}
	if override.TimeoutSeconds != nil {
		result.TimeoutSeconds = cloneInt(override.TimeoutSeconds)
	}
	return result
}

func (configuration TimingConfiguration) merge(override TimingConfiguration) TimingConfiguration {
	result := configuration
	if override.Precision != nil {
		result.Precision = cloneInt(override.Precision)
	}
	if override.Verbose != nil {
		result.Verbose = cloneBool(override.Verbose)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
