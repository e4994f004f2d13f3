package main

import (
	"fmt"
	"os"

	"github.com/agora-sh/agora/internal/command"
)

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
