package main

import (
	"os"

	"github.com/outliyr/x-search-mcp/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
