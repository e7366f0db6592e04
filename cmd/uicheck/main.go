// Package main provides the uicheck CLI for validating UI snapshots against
// manual-testing rule documents.
package main

import (
	"errors"
	"log/slog"
	"os"
)

// Exit codes: 0 all rules passed, 1 validation failures, 2 fatal errors
// (unreadable inputs, bad flags, cancelled runs).
const (
	exitValidationFailed = 1
	exitFatal            = 2
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errValidationFailed) {
			os.Exit(exitValidationFailed)
		}
		slog.Error("command failed", "error", err)
		os.Exit(exitFatal)
	}
}
