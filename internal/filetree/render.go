package filetree

import (
	"fmt"
	"strings"

	"github.com/yaronday/nano-dev-utils/internal/utils"
)

const lineSeparator = "\n"

// Render produces the complete tree artifact for the configuration and
// delivers it to the enabled sinks. The artifact is returned to the caller
// even when a sink fails: a file-write failure surfaces as an error wrapping
// ErrFileWrite alongside the already-assembled text, and the print sink is
// independent of the save sink.
func Render(configuration Config) (string, error) {
	var builder strings.Builder
	firstLine := true
	walkError := Walk(configuration, func(line Line) error {
		if !firstLine {
			builder.WriteString(lineSeparator)
		}
		firstLine = false
		builder.WriteString(line.String())
		return nil
	})
	if walkError != nil {
		return "", walkError
	}
	artifact := builder.String()

	var sinkError error
	if configuration.saveToFile {
		if writeError := utils.WriteStringToFile(configuration.outputPath, artifact); writeError != nil {
			sinkError = fmt.Errorf("%w: %v", ErrFileWrite, writeError)
		}
	}
	if configuration.printout {
		fmt.Fprintln(configuration.printDestination, artifact)
	}
	return artifact, sinkError
}
