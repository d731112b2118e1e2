package main

import (
	"os"

	"github.com/sandrolain/gomolang/cmd/molang/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
