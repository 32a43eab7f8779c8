package main

import (
	"os"

	"github.com/abhisek/crispterm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
