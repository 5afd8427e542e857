package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "todolist",
		Usage:   "Keep a short list of things to do",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				EnvVars: []string{"TODOLIST_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "Keep tasks in memory only",
			},
		},
		Action: runTUI,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a task",
				ArgsUsage: "<text...>",
				Action:    addAction,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "filter",
						Aliases: []string{"f"},
						Usage:   "all, active or completed",
						Value:   "all",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the list as stored",
					},
				},
				Action: listAction,
			},
			{
				Name:      "toggle",
				Usage:     "Flip a task between active and completed",
				ArgsUsage: "<id>",
				Action:    toggleAction,
			},
			{
				Name:      "edit",
				Usage:     "Replace the text of a task",
				ArgsUsage: "<id> <text...>",
				Action:    editAction,
			},
			{
				Name:      "rm",
				Aliases:   []string{"delete"},
				Usage:     "Delete a task",
				ArgsUsage: "<id>",
				Action:    deleteAction,
			},
		},
	}
}
