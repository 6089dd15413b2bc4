// Package ports terminates processes listening on TCP ports.
package ports

import (
	"context"
	"os/exec"
)

// CommandRunner executes one external command and returns its combined
// output. The indirection keeps platform command parsing testable without
// spawning processes.
type CommandRunner interface {
	Run(executionContext context.Context, commandName string, arguments ...string) (string, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// Run executes the command and returns its combined stdout and stderr.
func (ExecRunner) Run(executionContext context.Context, commandName string, arguments ...string) (string, error) {
	// #nosec G204
	command := exec.CommandContext(executionContext, commandName, arguments...)
	output, runError := command.CombinedOutput()
	return string(output), runError
}

var _ CommandRunner = ExecRunner{}
