package main

import (
	"os"

	"github.com/parentsmadrasa/sessionkit/internal/cli"
)

var version = "dev" // set with -ldflags

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
