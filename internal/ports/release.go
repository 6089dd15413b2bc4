package ports

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultProxyServerPort is the MCP proxy server port released when no
	// ports are requested explicitly.
	DefaultProxyServerPort = 6277
	// DefaultInspectorClientPort is the MCP inspector client port released
	// when no ports are requested explicitly.
	DefaultInspectorClientPort = 6274

	maximumPortNumber       = 65535
	releaseConcurrencyLimit = 4

	operatingSystemWindows = "windows"
	operatingSystemLinux   = "linux"
	operatingSystemDarwin  = "darwin"

	linuxProcessIDToken = "pid="

	processFoundLogFormat      = "Process ID (PID) found for port %d: %d."
	processTerminatedLogFormat = "Process %d (on port %d) terminated successfully."
	noProcessLogFormat         = "No process found listening on port %d."
	invalidPortLogFormat       = "Invalid port number: %d. Skipping."
	terminateFailedLogFormat   = "Failed to terminate process %d (on port %d). Error: %v"
	lookupFailedLogFormat      = "Failed to look up port %d: %v"

	listCommandErrorFormat = "listing processes for port %d: %w"
	killCommandErrorFormat = "terminating process %d: %w"
)

// ErrUnsupportedOS reports an operating system without a known port-listing
// or kill command.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// Summary aggregates one ReleaseAll run. Skipped counts both invalid port
// numbers and ports with no listening process.
type Summary struct {
	Released int
	Failed   int
	Skipped  int
}

// Release looks up and terminates processes by listening port using the
// platform's native tooling: netstat and taskkill on Windows, ss and kill on
// Linux, lsof and kill on Darwin.
type Release struct {
	logger          *zap.Logger
	runner          CommandRunner
	operatingSystem string
	defaultPorts    []int
}

// NewRelease builds a release service for the current platform. Without
// explicit defaults it targets the proxy server and inspector client ports.
func NewRelease(logger *zap.Logger, defaultPorts ...int) *Release {
	return NewReleaseWithRunner(logger, ExecRunner{}, runtime.GOOS, defaultPorts...)
}

// NewReleaseWithRunner builds a release service with an injected command
// runner and operating system name.
func NewReleaseWithRunner(logger *zap.Logger, runner CommandRunner, operatingSystem string, defaultPorts ...int) *Release {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(defaultPorts) == 0 {
		defaultPorts = []int{DefaultProxyServerPort, DefaultInspectorClientPort}
	}
	return &Release{
		logger:          logger,
		runner:          runner,
		operatingSystem: operatingSystem,
		defaultPorts:    append([]int{}, defaultPorts...),
	}
}

// DefaultPorts returns the ports released when none are requested.
func (release *Release) DefaultPorts() []int {
	return append([]int{}, release.defaultPorts...)
}

// PIDsByPort returns the process identifiers listening on the port. A port
// nobody listens on yields an empty slice and no error.
func (release *Release) PIDsByPort(executionContext context.Context, port int) ([]int, error) {
	switch release.operatingSystem {
	case operatingSystemWindows:
		output, runError := release.runner.Run(executionContext, "netstat", "-ano")
		if runError != nil {
			return nil, fmt.Errorf(listCommandErrorFormat, port, runError)
		}
		return parseWindowsListing(output, port), nil
	case operatingSystemLinux:
		output, runError := release.runner.Run(executionContext, "ss", "-lntp")
		if runError != nil {
			return nil, fmt.Errorf(listCommandErrorFormat, port, runError)
		}
		return parseLinuxListing(output, port), nil
	case operatingSystemDarwin:
		output, runError := release.runner.Run(executionContext, "lsof", "-i", fmt.Sprintf(":%d", port))
		if runError != nil {
			// lsof exits nonzero when nothing listens on the port.
			if strings.TrimSpace(output) == "" {
				return nil, nil
			}
			return nil, fmt.Errorf(listCommandErrorFormat, port, runError)
		}
		return parseDarwinListing(output), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, release.operatingSystem)
	}
}

// Kill terminates the process forcefully.
func (release *Release) Kill(executionContext context.Context, processID int) error {
	var commandName string
	var arguments []string
	switch release.operatingSystem {
	case operatingSystemWindows:
		commandName = "taskkill"
		arguments = []string{"/F", "/PID", strconv.Itoa(processID)}
	case operatingSystemLinux, operatingSystemDarwin:
		commandName = "kill"
		arguments = []string{"-9", strconv.Itoa(processID)}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOS, release.operatingSystem)
	}
	if _, runError := release.runner.Run(executionContext, commandName, arguments...); runError != nil {
		return fmt.Errorf(killCommandErrorFormat, processID, runError)
	}
	return nil
}

// ReleaseAll terminates the listeners on the requested ports, falling back to
// the configured defaults when the request is empty. Ports are handled
// concurrently with a bounded fan-out; per-port failures are logged and
// counted, never fatal.
func (release *Release) ReleaseAll(executionContext context.Context, requestedPorts []int) Summary {
	targetPorts := requestedPorts
	if len(targetPorts) == 0 {
		targetPorts = release.defaultPorts
	}

	var summaryLock sync.Mutex
	var summary Summary
	group := errgroup.Group{}
	group.SetLimit(releaseConcurrencyLimit)

	for _, port := range targetPorts {
		port := port
		group.Go(func() error {
			released, failed, skipped := release.releasePort(executionContext, port)
			summaryLock.Lock()
			summary.Released += released
			summary.Failed += failed
			summary.Skipped += skipped
			summaryLock.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return summary
}

// releasePort handles one port and reports its outcome counts.
func (release *Release) releasePort(executionContext context.Context, port int) (released int, failed int, skipped int) {
	if port <= 0 || port > maximumPortNumber {
		release.logger.Error(fmt.Sprintf(invalidPortLogFormat, port))
		return 0, 0, 1
	}
	processIDs, lookupError := release.PIDsByPort(executionContext, port)
	if lookupError != nil {
		release.logger.Error(fmt.Sprintf(lookupFailedLogFormat, port, lookupError))
		return 0, 1, 0
	}
	if len(processIDs) == 0 {
		release.logger.Info(fmt.Sprintf(noProcessLogFormat, port))
		return 0, 0, 1
	}
	for _, processID := range processIDs {
		release.logger.Info(fmt.Sprintf(processFoundLogFormat, port, processID))
		if killError := release.Kill(executionContext, processID); killError != nil {
			release.logger.Error(fmt.Sprintf(terminateFailedLogFormat, processID, port, killError))
			failed++
			continue
		}
		release.logger.Info(fmt.Sprintf(processTerminatedLogFormat, processID, port))
		released++
	}
	return released, failed, 0
}

// parseWindowsListing extracts PIDs from netstat -ano output lines that
// mention the port. The PID is the trailing column.
func parseWindowsListing(output string, port int) []int {
	var processIDs []int
	for _, line := range strings.Split(output, "\n") {
		if !lineMentionsPort(line, port) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		if processID, parseError := strconv.Atoi(fields[len(fields)-1]); parseError == nil {
			processIDs = appendUniquePID(processIDs, processID)
		}
	}
	return processIDs
}

// parseLinuxListing extracts PIDs from ss -lntp output, where the process
// column reads users:(("name",pid=123,fd=4)).
func parseLinuxListing(output string, port int) []int {
	var processIDs []int
	for _, line := range strings.Split(output, "\n") {
		if !lineMentionsPort(line, port) {
			continue
		}
		remainder := line
		for {
			tokenStart := strings.Index(remainder, linuxProcessIDToken)
			if tokenStart < 0 {
				break
			}
			remainder = remainder[tokenStart+len(linuxProcessIDToken):]
			digitCount := 0
			for digitCount < len(remainder) && remainder[digitCount] >= '0' && remainder[digitCount] <= '9' {
				digitCount++
			}
			if digitCount == 0 {
				continue
			}
			if processID, parseError := strconv.Atoi(remainder[:digitCount]); parseError == nil {
				processIDs = appendUniquePID(processIDs, processID)
			}
		}
	}
	return processIDs
}

// parseDarwinListing extracts PIDs from lsof output; the PID is the second
// column of every non-header line.
func parseDarwinListing(output string) []int {
	var processIDs []int
	for lineIndex, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if lineIndex == 0 || len(fields) < 2 {
			continue
		}
		if processID, parseError := strconv.Atoi(fields[1]); parseError == nil {
			processIDs = appendUniquePID(processIDs, processID)
		}
	}
	return processIDs
}

// lineMentionsPort reports whether the line contains ":<port>" at a token
// boundary, so port 6277 does not match :62770.
func lineMentionsPort(line string, port int) bool {
	portToken := fmt.Sprintf(":%d", port)
	searchOffset := 0
	for {
		tokenIndex := strings.Index(line[searchOffset:], portToken)
		if tokenIndex < 0 {
			return false
		}
		boundaryIndex := searchOffset + tokenIndex + len(portToken)
		if boundaryIndex >= len(line) || line[boundaryIndex] < '0' || line[boundaryIndex] > '9' {
			return true
		}
		searchOffset += tokenIndex + len(portToken)
	}
}

func appendUniquePID(processIDs []int, candidate int) []int {
	for _, existing := range processIDs {
		if existing == candidate {
			return processIDs
		}
	}
	return append(processIDs, candidate)
}
