// Package main is the entry point for the unified AI frontend gateway.
package main

import (
	"os"

	"github.com/sabio/unified-ai-frontend/cmd/unified-ai/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
