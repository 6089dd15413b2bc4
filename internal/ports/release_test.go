package ports_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/yaronday/nano-dev-utils/internal/ports"
)

// fakeRunner returns canned output per command name and records invocations.
type fakeRunner struct {
	invocationLock sync.Mutex
	invocations    []string
	outputs        map[string]string
	failures       map[string]error
}

func (runner *fakeRunner) Run(_ context.Context, commandName string, arguments ...string) (string, error) {
	runner.invocationLock.Lock()
	runner.invocations = append(runner.invocations, strings.Join(append([]string{commandName}, arguments...), " "))
	runner.invocationLock.Unlock()
	if failure, failureConfigured := runner.failures[commandName]; failureConfigured {
		return "", failure
	}
	return runner.outputs[commandName], nil
}

func (runner *fakeRunner) invoked(commandLine string) bool {
	runner.invocationLock.Lock()
	defer runner.invocationLock.Unlock()
	for _, invocation := range runner.invocations {
		if invocation == commandLine {
			return true
		}
	}
	return false
}

const linuxListingFixture = `State   Recv-Q  Send-Q  Local Address:Port  Peer Address:Port  Process
LISTEN  0       511     0.0.0.0:6277        0.0.0.0:*          users:(("node",pid=4242,fd=23))
LISTEN  0       511     0.0.0.0:62770       0.0.0.0:*          users:(("other",pid=9999,fd=23))
`

const windowsListingFixture = `  Proto  Local Address          Foreign Address        State           PID
  TCP    0.0.0.0:6277           0.0.0.0:0              LISTENING       4242
  TCP    0.0.0.0:62770          0.0.0.0:0              LISTENING       9999
`

const darwinListingFixture = `COMMAND  PID  USER  FD  TYPE  DEVICE  SIZE/OFF  NODE  NAME
node     4242 dev   23u IPv4  0x1     0t0       TCP   *:6277 (LISTEN)
`

// TestPIDsByPortParsesPlatformListings verifies the per-platform listing
// commands and their parsers, including the port token boundary.
func TestPIDsByPortParsesPlatformListings(testingInstance *testing.T) {
	testCases := []struct {
		testName        string
		operatingSystem string
		commandName     string
		output          string
		expectedPIDs    []int
	}{
		{
			testName:        "linux ss listing",
			operatingSystem: "linux",
			commandName:     "ss",
			output:          linuxListingFixture,
			expectedPIDs:    []int{4242},
		},
		{
			testName:        "windows netstat listing",
			operatingSystem: "windows",
			commandName:     "netstat",
			output:          windowsListingFixture,
			expectedPIDs:    []int{4242},
		},
		{
			testName:        "darwin lsof listing",
			operatingSystem: "darwin",
			commandName:     "lsof",
			output:          darwinListingFixture,
			expectedPIDs:    []int{4242},
		},
	}
	for index, testCase := range testCases {
		runner := &fakeRunner{outputs: map[string]string{testCase.commandName: testCase.output}}
		release := ports.NewReleaseWithRunner(nil, runner, testCase.operatingSystem)

		processIDs, lookupError := release.PIDsByPort(context.Background(), 6277)
		if lookupError != nil {
			testingInstance.Errorf("case %d (%s): PIDsByPort returned error: %v", index, testCase.testName, lookupError)
			continue
		}
		if len(processIDs) != len(testCase.expectedPIDs) {
			testingInstance.Errorf("case %d (%s): PIDs = %v, expected %v", index, testCase.testName, processIDs, testCase.expectedPIDs)
			continue
		}
		for position, expectedPID := range testCase.expectedPIDs {
			if processIDs[position] != expectedPID {
				testingInstance.Errorf("case %d (%s): PIDs = %v, expected %v", index, testCase.testName, processIDs, testCase.expectedPIDs)
			}
		}
	}
}

// TestPIDsByPortEmptyWhenNobodyListens verifies silent ports yield an empty
// result without an error, including the lsof nonzero-exit convention.
func TestPIDsByPortEmptyWhenNobodyListens(testingInstance *testing.T) {
	linuxRelease := ports.NewReleaseWithRunner(nil, &fakeRunner{outputs: map[string]string{"ss": "State Recv-Q\n"}}, "linux")
	if processIDs, lookupError := linuxRelease.PIDsByPort(context.Background(), 6277); lookupError != nil || len(processIDs) != 0 {
		testingInstance.Errorf("linux: PIDs = %v, error = %v; expected empty and nil", processIDs, lookupError)
	}

	darwinRunner := &fakeRunner{failures: map[string]error{"lsof": errors.New("exit status 1")}}
	darwinRelease := ports.NewReleaseWithRunner(nil, darwinRunner, "darwin")
	if processIDs, lookupError := darwinRelease.PIDsByPort(context.Background(), 6277); lookupError != nil || len(processIDs) != 0 {
		testingInstance.Errorf("darwin: PIDs = %v, error = %v; expected empty and nil", processIDs, lookupError)
	}
}

// TestPIDsByPortUnsupportedOperatingSystem verifies the sentinel error.
func TestPIDsByPortUnsupportedOperatingSystem(testingInstance *testing.T) {
	release := ports.NewReleaseWithRunner(nil, &fakeRunner{}, "plan9")
	if _, lookupError := release.PIDsByPort(context.Background(), 6277); !errors.Is(lookupError, ports.ErrUnsupportedOS) {
		testingInstance.Errorf("expected ErrUnsupportedOS, got %v", lookupError)
	}
}

// TestKillUsesPlatformCommand verifies the termination commands per platform.
func TestKillUsesPlatformCommand(testingInstance *testing.T) {
	testCases := []struct {
		operatingSystem string
		expectedCommand string
	}{
		{operatingSystem: "linux", expectedCommand: "kill -9 4242"},
		{operatingSystem: "darwin", expectedCommand: "kill -9 4242"},
		{operatingSystem: "windows", expectedCommand: "taskkill /F /PID 4242"},
	}
	for index, testCase := range testCases {
		runner := &fakeRunner{}
		release := ports.NewReleaseWithRunner(nil, runner, testCase.operatingSystem)
		if killError := release.Kill(context.Background(), 4242); killError != nil {
			testingInstance.Errorf("case %d (%s): Kill returned error: %v", index, testCase.operatingSystem, killError)
			continue
		}
		if !runner.invoked(testCase.expectedCommand) {
			testingInstance.Errorf("case %d (%s): expected invocation %q, got %v", index, testCase.operatingSystem, testCase.expectedCommand, runner.invocations)
		}
	}
}

// TestReleaseAllSummarizesOutcomes verifies the summary counts across a
// released port, a silent port, and an invalid port.
func TestReleaseAllSummarizesOutcomes(testingInstance *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"ss": linuxListingFixture}}
	release := ports.NewReleaseWithRunner(nil, runner, "linux")

	summary := release.ReleaseAll(context.Background(), []int{6277, 6274, -1, 70000})
	if summary.Released != 1 {
		testingInstance.Errorf("Released = %d, expected 1", summary.Released)
	}
	if summary.Failed != 0 {
		testingInstance.Errorf("Failed = %d, expected 0", summary.Failed)
	}
	if summary.Skipped != 3 {
		testingInstance.Errorf("Skipped = %d, expected 3 (one silent port, two invalid)", summary.Skipped)
	}
	if !runner.invoked("kill -9 4242") {
		testingInstance.Errorf("expected kill invocation, got %v", runner.invocations)
	}
}

// TestReleaseAllCountsTerminationFailures verifies a failing kill command is
// reported as a failure, not a release.
func TestReleaseAllCountsTerminationFailures(testingInstance *testing.T) {
	runner := &fakeRunner{
		outputs:  map[string]string{"ss": linuxListingFixture},
		failures: map[string]error{"kill": fmt.Errorf("operation not permitted")},
	}
	release := ports.NewReleaseWithRunner(nil, runner, "linux")

	summary := release.ReleaseAll(context.Background(), []int{6277})
	if summary.Released != 0 || summary.Failed != 1 {
		testingInstance.Errorf("summary = %+v, expected one failure and no releases", summary)
	}
}

// TestReleaseAllFallsBackToDefaultPorts verifies an empty request targets the
// configured defaults.
func TestReleaseAllFallsBackToDefaultPorts(testingInstance *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"ss": ""}}
	release := ports.NewReleaseWithRunner(nil, runner, "linux")

	summary := release.ReleaseAll(context.Background(), nil)
	if summary.Skipped != 2 {
		testingInstance.Errorf("Skipped = %d, expected both default ports to be silent", summary.Skipped)
	}
	defaults := release.DefaultPorts()
	if len(defaults) != 2 || defaults[0] != ports.DefaultProxyServerPort || defaults[1] != ports.DefaultInspectorClientPort {
		testingInstance.Errorf("DefaultPorts = %v", defaults)
	}
}
