package main

import (
	"os"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}
