package main

import (
	"errors"
	"fmt"
	"os"

	"finbot/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	if err := cli.NewRootCommand().Execute(); err != nil {
		// Command failures are reported by the formatter; flag and argument
		// errors are not.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
