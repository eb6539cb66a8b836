package main

import (
	"os"

	"github.com/jcwang/marketscan/cmd/scan/commands"
)

// main is the entry point for the marketscan CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
