package main

import (
	"os"

	"ptero-backup/src/cli"
)

func main() {
	os.Exit(cli.Execute())
}
