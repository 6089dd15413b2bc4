// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yaronday/nano-dev-utils/internal/config"
	"github.com/yaronday/nano-dev-utils/internal/filetree"
	"github.com/yaronday/nano-dev-utils/internal/ports"
	"github.com/yaronday/nano-dev-utils/internal/services/clipboard"
	"github.com/yaronday/nano-dev-utils/internal/timing"
	"github.com/yaronday/nano-dev-utils/internal/utils"
)

const (
	rootUse              = utils.ApplicationName
	rootShortDescription = utils.ApplicationName + " command line interface"
	rootLongDescription  = utils.ApplicationName + ` is a toolbox of small developer utilities.
It renders directory trees with configurable filtering, sorting, and connector
styles, releases TCP ports held by stray processes, and reports how long its
operations took. Defaults come from ` + utils.ConfigFileName + ` files; flags set on the
command line always win.`

	versionFlagName        = "version"
	versionFlagDescription = "display application version"
	versionTemplate        = utils.ApplicationName + " version: %s\n"

	configFlagName        = "config"
	configFlagDescription = "configuration file path"

	treeUse              = "tree [path]"
	treeAlias            = "t"
	treeShortDescription = "render a directory tree (" + treeAlias + ")"
	treeLongDescription  = `Render the file tree of a directory as prefixed text lines.
Names in the ignore and include sets may be literals or glob patterns; ignoring
always wins over inclusion. The artifact is saved beside the root by default.`
	treeUsageExample = `  # Render the working directory with Unicode connectors
  ndu tree

  # ASCII connectors, files before directories, print instead of saving
  ndu tree --style dash --files-first --no-save --printout ./src

  # Exclude build products and copy the result to the clipboard
  ndu tree --ignore-dirs vendor --ignore-files '*.log' --copy .`

	rootDirectoryFlagName        = "root-dir"
	rootDirectoryFlagShorthand   = "r"
	rootDirectoryFlagDescription = "directory to render"
	outputPathFlagName           = "filepath"
	outputPathFlagShorthand      = "o"
	outputPathFlagDescription    = "output file path"
	ignoreDirsFlagName           = "ignore-dirs"
	ignoreDirsFlagDescription    = "directory names or patterns to exclude"
	ignoreFilesFlagName          = "ignore-files"
	ignoreFilesFlagDescription   = "file names or patterns to exclude"
	includeDirsFlagName          = "include-dirs"
	includeDirsFlagDescription   = "directory names or patterns to include exclusively"
	includeFilesFlagName         = "include-files"
	includeFilesFlagDescription  = "file names or patterns to include exclusively"
	styleFlagName                = "style"
	styleFlagShorthand           = "s"
	styleFlagDescription         = "connector style name"
	indentFlagName               = "indent"
	indentFlagShorthand          = "i"
	indentFlagDescription        = "fill width per nesting level"
	filesFirstFlagName           = "files-first"
	filesFirstFlagDescription    = "list files before subdirectories"
	skipSortingFlagName          = "skip-sorting"
	skipSortingFlagDescription   = "keep the operating system enumeration order"
	sortKeyFlagName              = "sort-key"
	sortKeyFlagDescription       = "sort key name"
	reverseFlagName              = "reverse"
	reverseFlagDescription       = "reverse the sort order"
	noSaveFlagName               = "no-save"
	noSaveFlagDescription        = "do not write the tree to a file"
	printoutFlagName             = "printout"
	printoutFlagShorthand        = "p"
	printoutFlagDescription      = "print the tree to standard output"
	copyFlagName                 = "copy"
	copyFlagDescription          = "copy the tree to the system clipboard"
	timingFlagName               = "timing"
	timingFlagDescription        = "measure and log the render duration"

	treeRenderOperationName = "tree render"
	treeSavedMessageFormat  = "File tree written to %s"
	clipboardFailureFormat  = "clipboard copy failed: %v"

	portsUse                     = "ports"
	portsShortDescription        = "manage processes listening on TCP ports"
	portsReleaseUse              = "release [ports...]"
	portsReleaseShortDescription = "kill the processes listening on the given ports"
	portsReleaseLongDescription  = `Terminate every process listening on the requested TCP ports.
Without arguments the configured default ports are released.`
	portsTimeoutFlagName        = "timeout"
	portsTimeoutFlagDescription = "overall timeout in seconds"
	defaultPortsTimeoutSeconds  = 10
	invalidPortArgumentFormat   = "invalid port argument %q"
	portsSummaryLogFormat       = "Ports release complete: %d released, %d failed, %d skipped."

	versionUse              = "version"
	versionShortDescription = "print the application version"

	configUse                  = "config"
	configShortDescription     = "manage configuration files"
	configInitUse              = "init"
	configInitShortDescription = "write a starter configuration file"
	configInitGlobalFlagName   = "global"
	configInitGlobalFlagUsage  = "write the global configuration file instead of the local one"
	configInitForceFlagName    = "force"
	configInitForceFlagUsage   = "overwrite an existing configuration file"
	configWrittenMessageFormat = "Configuration written to %s\n"
)

// Execute runs the ndu application.
func Execute(logger *zap.Logger) error {
	rootCommand := createRootCommand(logger)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, normalizeCopyFlagArguments(os.Args[1:])))
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(logger *zap.Logger) *cobra.Command {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.AddCommand(
		createTreeCommand(logger),
		createPortsCommand(logger),
		createVersionCommand(),
		createConfigCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// treeFlagValues stores the tree command's raw flag state.
type treeFlagValues struct {
	configPath      string
	rootDirectory   string
	outputPath      string
	ignoreDirs      []string
	ignoreFiles     []string
	includeDirs     []string
	includeFiles    []string
	styleName       string
	indentWidth     int
	filesFirst      bool
	skipSorting     bool
	sortKeyName     string
	reverseOrder    bool
	noSave          bool
	printout        bool
	copyToClipboard bool
	timingEnabled   bool
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(logger *zap.Logger) *cobra.Command {
	var flagValues treeFlagValues

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return runTree(command, arguments, flagValues, logger)
		},
	}

	flagSet := treeCommand.Flags()
	flagSet.StringVar(&flagValues.configPath, configFlagName, "", configFlagDescription)
	flagSet.StringVarP(&flagValues.rootDirectory, rootDirectoryFlagName, rootDirectoryFlagShorthand, "", rootDirectoryFlagDescription)
	flagSet.StringVarP(&flagValues.outputPath, outputPathFlagName, outputPathFlagShorthand, "", outputPathFlagDescription)
	flagSet.StringSliceVar(&flagValues.ignoreDirs, ignoreDirsFlagName, nil, ignoreDirsFlagDescription)
	flagSet.StringSliceVar(&flagValues.ignoreFiles, ignoreFilesFlagName, nil, ignoreFilesFlagDescription)
	flagSet.StringSliceVar(&flagValues.includeDirs, includeDirsFlagName, nil, includeDirsFlagDescription)
	flagSet.StringSliceVar(&flagValues.includeFiles, includeFilesFlagName, nil, includeFilesFlagDescription)
	flagSet.StringVarP(&flagValues.styleName, styleFlagName, styleFlagShorthand, filetree.DefaultStyleName, styleFlagDescription)
	flagSet.IntVarP(&flagValues.indentWidth, indentFlagName, indentFlagShorthand, filetree.DefaultIndentWidth, indentFlagDescription)
	registerBooleanFlag(flagSet, &flagValues.filesFirst, filesFirstFlagName, false, filesFirstFlagDescription)
	registerBooleanFlag(flagSet, &flagValues.skipSorting, skipSortingFlagName, false, skipSortingFlagDescription)
	flagSet.StringVar(&flagValues.sortKeyName, sortKeyFlagName, filetree.DefaultSortKeyName, sortKeyFlagDescription)
	registerBooleanFlag(flagSet, &flagValues.reverseOrder, reverseFlagName, false, reverseFlagDescription)
	registerBooleanFlag(flagSet, &flagValues.noSave, noSaveFlagName, false, noSaveFlagDescription)
	flagSet.BoolVarP(&flagValues.printout, printoutFlagName, printoutFlagShorthand, false, printoutFlagDescription)
	registerCopyFlag(flagSet, &flagValues.copyToClipboard)
	registerBooleanFlag(flagSet, &flagValues.timingEnabled, timingFlagName, false, timingFlagDescription)

	return treeCommand
}

// runTree resolves the effective tree configuration and renders.
func runTree(command *cobra.Command, arguments []string, flagValues treeFlagValues, logger *zap.Logger) error {
	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		ExplicitFilePath: flagValues.configPath,
	})
	if configurationError != nil {
		return configurationError
	}
	treeDefaults := applicationConfiguration.Tree

	flagChanged := func(flagName string) bool {
		return command.Flags().Changed(flagName)
	}
	resolveString := func(flagName string, flagValue string, configuredValue string) string {
		if flagChanged(flagName) || configuredValue == "" {
			return flagValue
		}
		return configuredValue
	}
	resolveBool := func(flagName string, flagValue bool, configuredValue *bool) bool {
		if flagChanged(flagName) || configuredValue == nil {
			return flagValue
		}
		return *configuredValue
	}
	resolvePatterns := func(flagName string, flagValue []string, configuredValue []string) []string {
		if flagChanged(flagName) || len(configuredValue) == 0 {
			return utils.DeduplicatePatterns(flagValue)
		}
		return configuredValue
	}

	rootPath := flagValues.rootDirectory
	if len(arguments) == 1 {
		rootPath = arguments[0]
	} else if !flagChanged(rootDirectoryFlagName) && treeDefaults.RootDirectory != "" {
		rootPath = treeDefaults.RootDirectory
	}

	indentWidth := flagValues.indentWidth
	if !flagChanged(indentFlagName) && treeDefaults.Indent != nil {
		indentWidth = *treeDefaults.Indent
	}
	sortKeyName := resolveString(sortKeyFlagName, flagValues.sortKeyName, treeDefaults.SortKey)
	if resolveBool(skipSortingFlagName, flagValues.skipSorting, treeDefaults.SkipSorting) {
		sortKeyName = filetree.SortKeyNone
	}
	saveToFile := !flagValues.noSave
	if !flagChanged(noSaveFlagName) && treeDefaults.Save != nil {
		saveToFile = *treeDefaults.Save
	}

	options := filetree.Options{
		RootPath:         rootPath,
		OutputPath:       resolveString(outputPathFlagName, flagValues.outputPath, treeDefaults.OutputPath),
		IgnoreDirs:       resolvePatterns(ignoreDirsFlagName, flagValues.ignoreDirs, treeDefaults.IgnoreDirs),
		IgnoreFiles:      resolvePatterns(ignoreFilesFlagName, flagValues.ignoreFiles, treeDefaults.IgnoreFiles),
		IncludeDirs:      resolvePatterns(includeDirsFlagName, flagValues.includeDirs, treeDefaults.IncludeDirs),
		IncludeFiles:     resolvePatterns(includeFilesFlagName, flagValues.includeFiles, treeDefaults.IncludeFiles),
		StyleName:        resolveString(styleFlagName, flagValues.styleName, treeDefaults.Style),
		Indent:           indentWidth,
		FilesFirst:       resolveBool(filesFirstFlagName, flagValues.filesFirst, treeDefaults.FilesFirst),
		SortKeyName:      sortKeyName,
		Reverse:          resolveBool(reverseFlagName, flagValues.reverseOrder, treeDefaults.Reverse),
		SaveToFile:       saveToFile,
		Printout:         resolveBool(printoutFlagName, flagValues.printout, treeDefaults.Printout),
		PrintDestination: command.OutOrStdout(),
	}

	renderConfiguration, renderConfigurationError := filetree.NewConfig(options)
	if renderConfigurationError != nil {
		return renderConfigurationError
	}

	var artifact string
	var renderError error
	renderOnce := func() {
		artifact, renderError = filetree.Render(renderConfiguration)
	}
	if resolveBool(timingFlagName, flagValues.timingEnabled, treeDefaults.Timing) {
		operationTimer := timing.NewTimer(logger, resolveTimingPrecision(applicationConfiguration.Timing), resolveTimingVerbose(applicationConfiguration.Timing))
		operationTimer.Measure(treeRenderOperationName, renderOnce)
	} else {
		renderOnce()
	}
	if renderError != nil {
		return renderError
	}

	if saveToFile {
		logger.Info(fmt.Sprintf(treeSavedMessageFormat, renderConfiguration.OutputPath()))
	}
	if resolveBool(copyFlagName, flagValues.copyToClipboard, treeDefaults.Clipboard) {
		if copyError := clipboard.NewService().Copy(artifact); copyError != nil {
			// An auxiliary sink must not kill a finished render.
			logger.Warn(fmt.Sprintf(clipboardFailureFormat, copyError))
		}
	}
	return nil
}

func resolveTimingPrecision(timingDefaults config.TimingConfiguration) int {
	if timingDefaults.Precision != nil {
		return *timingDefaults.Precision
	}
	return timing.DefaultPrecision
}

func resolveTimingVerbose(timingDefaults config.TimingConfiguration) bool {
	return timingDefaults.Verbose != nil && *timingDefaults.Verbose
}

// createPortsCommand returns the ports subcommand group.
func createPortsCommand(logger *zap.Logger) *cobra.Command {
	portsCommand := &cobra.Command{
		Use:   portsUse,
		Short: portsShortDescription,
	}
	portsCommand.AddCommand(createPortsReleaseCommand(logger))
	return portsCommand
}

// createPortsReleaseCommand returns the ports release subcommand.
func createPortsReleaseCommand(logger *zap.Logger) *cobra.Command {
	var configPath string
	var timeoutSeconds int

	releaseCommand := &cobra.Command{
		Use:   portsReleaseUse,
		Short: portsReleaseShortDescription,
		Long:  portsReleaseLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			requestedPorts := make([]int, 0, len(arguments))
			for _, argument := range arguments {
				portNumber, parseError := strconv.Atoi(argument)
				if parseError != nil {
					return fmt.Errorf(invalidPortArgumentFormat, argument)
				}
				requestedPorts = append(requestedPorts, portNumber)
			}

			applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
				ExplicitFilePath: configPath,
			})
			if configurationError != nil {
				return configurationError
			}
			if !command.Flags().Changed(portsTimeoutFlagName) && applicationConfiguration.Ports.TimeoutSeconds != nil {
				timeoutSeconds = *applicationConfiguration.Ports.TimeoutSeconds
			}

			executionContext, cancel := context.WithTimeout(command.Context(), time.Duration(timeoutSeconds)*time.Second)
			defer cancel()

			releaseService := ports.NewRelease(logger, applicationConfiguration.Ports.DefaultPorts...)
			summary := releaseService.ReleaseAll(executionContext, requestedPorts)
			logger.Info(fmt.Sprintf(portsSummaryLogFormat, summary.Released, summary.Failed, summary.Skipped))
			return nil
		},
	}
	releaseCommand.Flags().StringVar(&configPath, configFlagName, "", configFlagDescription)
	releaseCommand.Flags().IntVar(&timeoutSeconds, portsTimeoutFlagName, defaultPortsTimeoutSeconds, portsTimeoutFlagDescription)
	return releaseCommand
}

// createVersionCommand returns the version subcommand.
func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   versionUse,
		Short: versionShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
			return nil
		},
	}
}

// createConfigCommand returns the config subcommand group.
func createConfigCommand() *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
	}

	var writeGlobal bool
	var forceOverwrite bool
	initCommand := &cobra.Command{
		Use:   configInitUse,
		Short: configInitShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			writtenPath, initializationError := config.InitializeConfiguration(config.InitOptions{
				Target: target,
				Force:  forceOverwrite,
			})
			if initializationError != nil {
				return initializationError
			}
			fmt.Fprintf(command.OutOrStdout(), configWrittenMessageFormat, writtenPath)
			return nil
		},
	}
	initCommand.Flags().BoolVar(&writeGlobal, configInitGlobalFlagName, false, configInitGlobalFlagUsage)
	initCommand.Flags().BoolVar(&forceOverwrite, configInitForceFlagName, false, configInitForceFlagUsage)

	configCommand.AddCommand(initCommand)
	return configCommand
}
