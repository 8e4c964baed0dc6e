package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/askdoc/internal/adapters/driving/cli"
)

func main() {
	// API keys may live in a local .env file; a missing file is fine.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
