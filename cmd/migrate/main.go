// Command migrate applies the database schema migrations. It takes a single
// action argument: up, down, step-up or drop.
package main

import (
	"log"
	"os"

	"portal/config"
	"portal/helper"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Migration direction (up/down) is required")
	}

	cfg := config.Get()

	actions := map[string]func(*config.Config) error{
		"up":      helper.Up,
		"down":    helper.Down,
		"drop":    helper.Drop,
		"step-up": helper.StepUp,
	}

	action, ok := actions[os.Args[1]]
	if !ok {
		log.Fatal("Invalid direction. Use 'up', 'down', 'drop' or 'step-up'")
	}

	if err := action(cfg); err != nil {
		log.Fatal(err)
	}
}
