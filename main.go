package main

import (
	"os"

	"github.com/nexus-dash/nexus/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
