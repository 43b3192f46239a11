package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func topicCommand() *cli.Command {
	return &cli.Command{
		Name:  "topic",
		Usage: "Manage topics",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a new topic",
				ArgsUsage: "NAME",
				Action: func(_ context.Context, cmd *cli.Command) error {
					name := cmd.Args().Get(0)
					if name == "" {
						return fmt.Errorf("topic name is required")
					}
					org, _, err := openOrg(cmd)
					if err != nil {
						return err
					}
					return org.CreateTopic(name)
				},
			},
			{
				Name:  "list",
				Usage: "List topics",
				Action: func(_ context.Context, cmd *cli.Command) error {
					org, _, err := openOrg(cmd)
					if err != nil {
						return err
					}
					topics, err := org.Topics()
					if err != nil {
						return err
					}
					if len(topics) == 0 {
						fmt.Println("No topics.")
						return nil
					}
					current, err := org.CurrentTopic()
					if err != nil {
						return err
					}
					for _, topic := range topics {
						marker := " "
						if topic == current {
							marker = "*"
						}
						fmt.Printf("%s %s\n", marker, topic)
					}
					return nil
				},
			},
			{
				Name:      "default",
				Usage:     "Set the current topic",
				ArgsUsage: "NAME",
				Action: func(_ context.Context, cmd *cli.Command) error {
					name := cmd.Args().Get(0)
					if name == "" {
						return fmt.Errorf("topic name is required")
					}
					org, _, err := openOrg(cmd)
					if err != nil {
						return err
					}
					return org.SetCurrentTopic(name)
				},
			},
		},
	}
}

func pathCommand() *cli.Command {
	topicFlag := &cli.StringFlag{
		Name:    "topic",
		Aliases: []string{"t"},
		Usage:   "Topic to operate on (defaults to the current topic)",
	}
	return &cli.Command{
		Name:  "path",
		Usage: "Manage paths",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List paths in a topic",
				Flags: []cli.Flag{topicFlag},
				Action: func(_ context.Context, cmd *cli.Command) error {
					org, _, err := openOrg(cmd)
					if err != nil {
						return err
					}
					paths, err := org.Paths(cmd.String("topic"))
					if err != nil {
						return err
					}
					if len(paths) == 0 {
						fmt.Println("No paths.")
						return nil
					}
					current, err := org.CurrentPath(cmd.String("topic"))
					if err != nil {
						return err
					}
					for _, path := range paths {
						marker := " "
						if path == current {
							marker = "*"
						}
						fmt.Printf("%s %s\n", marker, path)
					}
					return nil
				},
			},
			{
				Name:      "branch",
				Usage:     "Create a new path pointing at an existing path's head",
				ArgsUsage: "NEW_PATH [SOURCE_PATH]",
				Flags:     []cli.Flag{topicFlag},
				Action: func(_ context.Context, cmd *cli.Command) error {
					newPath := cmd.Args().Get(0)
					if newPath == "" {
						return fmt.Errorf("path name is required")
					}
					org, _, err := openOrg(cmd)
					if err != nil {
						return err
					}
					return org.CreatePath(cmd.String("topic"), newPath, cmd.Args().Get(1))
				},
			},
			{
				Name:      "default",
				Usage:     "Set the current path of a topic",
				ArgsUsage: "NAME",
				Flags:     []cli.Flag{topicFlag},
				Action: func(_ context.Context, cmd *cli.Command) error {
					name := cmd.Args().Get(0)
					if name == "" {
						return fmt.Errorf("path name is required")
					}
					org, _, err := openOrg(cmd)
					if err != nil {
						return err
					}
					return org.SetCurrentPath(cmd.String("topic"), name)
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a path pointer (notes remain)",
				ArgsUsage: "NAME",
				Flags:     []cli.Flag{topicFlag},
				Action: func(_ context.Context, cmd *cli.Command) error {
					name := cmd.Args().Get(0)
					if name == "" {
						return fmt.Errorf("path name is required")
					}
					org, _, err := openOrg(cmd)
					if err != nil {
						return err
					}
					meta, err := org.RemovePath(name, cmd.String("topic"))
					if err != nil {
						return err
					}
					fmt.Printf("Removed path %s (head was %s)\n", name, meta.ID.Short())
					return nil
				},
			},
			{
				Name:      "reset",
				Usage:     "Point a path at the note a location resolves to",
				ArgsUsage: "NAME LOCATION",
				Flags:     []cli.Flag{topicFlag},
				Action: func(_ context.Context, cmd *cli.Command) error {
					name, loc := cmd.Args().Get(0), cmd.Args().Get(1)
					if name == "" || loc == "" {
						return fmt.Errorf("path name and location are required")
					}
					org, _, err := openOrg(cmd)
					if err != nil {
						return err
					}
					prev, head, err := org.ResetPath(name, cmd.String("topic"), loc)
					if err != nil {
						return err
					}
					fmt.Printf("Reset %s: %s -> %s\n", name, prev.ID.Short(), head.ID.Short())
					return nil
				},
			},
		},
	}
}
