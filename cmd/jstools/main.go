package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jsettlers/jstools/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		var coded *cmd.ExitCodeError
		if errors.As(err, &coded) {
			if coded.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", coded.Message)
			}
			os.Exit(coded.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
