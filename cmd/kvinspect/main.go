package main

import (
	"os"

	"sealkv/cmd/kvinspect/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
