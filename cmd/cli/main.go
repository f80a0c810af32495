package main

import (
	"os"

	"github.com/marcelsud/webhook-dispatch/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
