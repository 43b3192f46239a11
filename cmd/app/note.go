package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/urfave/cli/v3"
)

func noteCommand() *cli.Command {
	return &cli.Command{
		Name:  "note",
		Usage: "Manage notes",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Insert a new note at a path",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "topic",
						Aliases: []string{"t"},
						Usage:   "Topic to insert into (switches the current topic)",
					},
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Path to insert at (switches the topic's current path)",
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read content from a file, '-' for stdin",
					},
					&cli.StringFlag{
						Name:    "message",
						Aliases: []string{"m"},
						Usage:   "Use the given content instead of opening an editor",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					org, cfg, err := openOrg(cmd)
					if err != nil {
						return err
					}
					content, err := noteContent(cmd, cfg.App.Editor)
					if err != nil {
						return err
					}
					report, err := org.AddNote(content, cmd.String("topic"), cmd.String("path"))
					if err != nil {
						return err
					}
					if report.ParentID.IsNil() {
						fmt.Printf("Created note %s at %s/%s\n", report.NoteID.Short(), report.Topic, report.Path)
					} else {
						fmt.Printf("Created note %s at %s/%s (parent %s)\n",
							report.NoteID.Short(), report.Topic, report.Path, report.ParentID.Short())
					}
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "Print the note a location resolves to",
				ArgsUsage: "LOCATION",
				Action: func(_ context.Context, cmd *cli.Command) error {
					loc := cmd.Args().Get(0)
					if loc == "" {
						loc = "HEAD"
					}
					org, _, err := openOrg(cmd)
					if err != nil {
						return err
					}
					meta, err := org.SolveLocation(loc)
					if err != nil {
						return err
					}
					if meta == nil {
						return fmt.Errorf("no note at %q", loc)
					}
					fmt.Printf("note %s\n", meta.ID)
					if !meta.ParentID.IsNil() {
						fmt.Printf("parent %s\n", meta.ParentID)
					}
					fmt.Printf("topic %s\npath %s\n", meta.Topic, meta.Path)
					for _, ref := range meta.References {
						fmt.Printf("ref %s\n", ref)
					}
					content, err := org.NoteContent(meta.ID)
					if err != nil {
						return err
					}
					fmt.Printf("\n%s", content)
					return nil
				},
			},
			{
				Name:      "ref",
				Usage:     "Add a reference from one note to another",
				ArgsUsage: "FROM_LOCATION TO_LOCATION",
				Action: func(_ context.Context, cmd *cli.Command) error {
					from, to := cmd.Args().Get(0), cmd.Args().Get(1)
					if from == "" || to == "" {
						return fmt.Errorf("two locations are required")
					}
					org, _, err := openOrg(cmd)
					if err != nil {
						return err
					}
					return org.AddNoteReference(from, to)
				},
			},
		},
	}
}

func keywordCommand() *cli.Command {
	return &cli.Command{
		Name:  "keyword",
		Usage: "Manage the keyword index",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "File a note under a keyword",
				ArgsUsage: "KEYWORD [LOCATION]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					kw := cmd.Args().Get(0)
					if kw == "" {
						return fmt.Errorf("keyword is required")
					}
					org, _, err := openOrg(cmd)
					if err != nil {
						return err
					}
					return org.AddKeyword(kw, cmd.Args().Get(1))
				},
			},
			{
				Name:      "search",
				Usage:     "List the notes filed under a keyword",
				ArgsUsage: "KEYWORD",
				Action: func(_ context.Context, cmd *cli.Command) error {
					kw := cmd.Args().Get(0)
					if kw == "" {
						return fmt.Errorf("keyword is required")
					}
					org, _, err := openOrg(cmd)
					if err != nil {
						return err
					}
					notes, err := org.NotesForKeyword(kw)
					if err != nil {
						return err
					}
					if len(notes) == 0 {
						fmt.Println("No notes.")
						return nil
					}
					for _, meta := range notes {
						fmt.Printf("%s %s/%s\n", meta.ID.Short(), meta.Topic, meta.Path)
					}
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List keywords with note counts",
				Action: func(_ context.Context, cmd *cli.Command) error {
					org, _, err := openOrg(cmd)
					if err != nil {
						return err
					}
					counts, err := org.KeywordCounts()
					if err != nil {
						return err
					}
					if len(counts) == 0 {
						fmt.Println("No keywords.")
						return nil
					}
					// Stable display order; the index itself keeps none.
					sort.Slice(counts, func(i, j int) bool { return counts[i].Keyword < counts[j].Keyword })
					for _, c := range counts {
						fmt.Printf("%s (%d)\n", c.Keyword, c.Notes)
					}
					return nil
				},
			},
		},
	}
}

// noteContent picks the content source for `note add`: -m, then -f/stdin,
// then an interactive editor.
func noteContent(cmd *cli.Command, editor string) ([]byte, error) {
	if msg := cmd.String("message"); msg != "" {
		return []byte(msg), nil
	}
	if file := cmd.String("file"); file != "" {
		if file == "-" {
			return io.ReadAll(os.Stdin)
		}
		return os.ReadFile(file)
	}
	return editNote(editor)
}
