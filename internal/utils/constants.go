package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

// ApplicationName is the binary name shown in help and version output.
const ApplicationName = "ndu"

// ConfigFileName is the configuration file name looked up in the working
// directory and inside the global configuration directory.
const ConfigFileName = ".ndu.yaml"

// GlobalConfigDirectoryName is the directory under the user home that holds
// the global configuration file.
const GlobalConfigDirectoryName = ".ndu"

// GitDirectoryName is the name of the Git repository directory.
const GitDirectoryName = ".git"

// LoggerInitializationFailedMessageFormat reports a logger construction failure.
const LoggerInitializationFailedMessageFormat = "logger initialization failed: %w"

// ApplicationExecutionFailedMessage prefixes fatal command failures.
const ApplicationExecutionFailedMessage = "application execution failed"
