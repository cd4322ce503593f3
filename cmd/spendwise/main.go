package main

import (
	"os"

	"spendwise/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
