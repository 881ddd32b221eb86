package main

import (
	"os"

	"github.com/envctl/envctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
