package main

import (
	"os"

	"github.com/talentlink/talentlink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
