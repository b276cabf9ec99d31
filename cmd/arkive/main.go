package main

import (
	"github.com/joho/godotenv"

	"github.com/arkive-labs/arkive-cli/internal/adapters/driving/cli"
)

func main() {
	// A .env in the working directory can supply OPENAI_API_KEY and
	// friends; its absence is not an error.
	_ = godotenv.Load()

	cli.Execute()
}
