package cli

import (
	"fmt"
	"os"
)

// Execute runs the root command and maps the result to an exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, "Error:", msg)
		}
		return GetExitCode(err)
	}
	return ExitSuccess
}
