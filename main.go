package main

import (
	"os"

	"github.com/conneroisu/lesstask/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
