package main

import (
	"os"

	"adminconsole/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// flag and argument errors are not rendered by the commands themselves
		if _, ok := err.(*cli.ExitError); !ok {
			cmd.PrintErrln("Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
