package main

import (
	"fmt"
	"os"

	"github.com/ramonehamilton/sealed-ev/cmd/sealed-ev/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
