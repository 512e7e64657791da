package main

import (
	"os"

	"github.com/jexcli/jex/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
