package main

import (
	"os"

	"github.com/PropDesk/PropDesk-Console/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
