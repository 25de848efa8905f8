// Package main is the entry point for the trademe-watch daemon.
package main

import (
	"os"

	"github.com/donaldgifford/trademe/cmd/trademe-watch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
