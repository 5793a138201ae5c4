package main

import (
	"os"

	"github.com/sp-meter/circles/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
