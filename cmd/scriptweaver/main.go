package main

import (
	"fmt"
	"os"

	"scriptweaver/internal/cli"
	"scriptweaver/internal/tasks"
)

func main() {
	app := &cli.App{
		Build:    tasks.BuildDemo,
		Resolver: tasks.Resolver(),
	}
	if err := app.Command().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
