package main

import (
	"os"

	"github.com/remimse/tennis-bots/internal/interfaces/cli"
)

func main() {
	os.Exit(cli.Execute())
}
