package main

import (
	"fmt"
	"os"

	"github.com/m3rciful/tripbot/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tripbot:", err)
		os.Exit(1)
	}
}
