package main

import (
	"fmt"
	"os"

	"quizzit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "quizzit:", err)
		os.Exit(1)
	}
}
