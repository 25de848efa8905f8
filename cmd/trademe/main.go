// Package main is the entry point for the trademe CLI.
package main

import (
	"github.com/donaldgifford/trademe/cmd/trademe/cmd"
)

func main() {
	cmd.Execute()
}
