package main

import (
	"os"

	"deca/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
