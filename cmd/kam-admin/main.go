package main

import (
	"os"

	"github.com/turtacn/kam/cmd/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
