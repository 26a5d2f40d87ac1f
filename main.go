package main

import (
	"os"

	"github.com/llehouerou/tagger/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
