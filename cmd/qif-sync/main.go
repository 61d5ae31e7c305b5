// Package main is the entry point for qif-sync CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/qif-sync/cmd/qif-sync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
