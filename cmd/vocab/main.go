package main

import (
	"os"

	"github.com/ulasonat/EnglishLearningApp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
