// Package main provides the entry point for the corpus CLI.
package main

import (
	"os"

	"github.com/corpuskit/corpus/cmd/corpus/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
