package main

import (
	"os"

	"github.com/sprite-ai/preflight/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
