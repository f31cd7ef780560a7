package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/ubq-audit/tally/cmd"
)

func main() {
	// A local .env may carry GITHUB_TOKEN; absence is fine.
	_ = godotenv.Load()

	if err := cmd.New().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
