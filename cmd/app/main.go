package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/organization"
	"github.com/starford/ansuz/internal/store"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func main() {
	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Personal knowledge base of immutable notes chained into topics and paths",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   "config/config.yaml",
				Sources: cli.EnvVars("ANSUZ_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "base-dir",
				Aliases: []string{"d"},
				Usage:   "Repository location (overrides the config file)",
				Sources: cli.EnvVars("ANSUZ_BASE_DIR"),
			},
		},
		Commands: []*cli.Command{
			initCommand(),
			infoCommand(),
			topicCommand(),
			pathCommand(),
			noteCommand(),
			keywordCommand(),
			serveCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration: defaults, then the config
// file when present, then the --base-dir override. It also installs the
// default logger at the configured level.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if dir := cmd.String("base-dir"); dir != "" {
		cfg.Repository.Path = dir
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: cfg.App.LogLevel,
	})))
	return cfg, nil
}

func storeOptions(cfg *internal.Config) []store.Option {
	var opts []store.Option
	if cfg.Repository.LockingEnabled() {
		opts = append(opts, store.WithAdvisoryLock())
	}
	return opts
}

// openOrg attaches the repository and wraps it in a domain engine.
func openOrg(cmd *cli.Command) (*organization.Organization, *internal.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Attach(cfg.Repository.Path, storeOptions(cfg)...)
	if err != nil {
		return nil, nil, err
	}
	return organization.New(st), cfg, nil
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new repository",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if _, err := store.Init(cfg.Repository.Path, storeOptions(cfg)...); err != nil {
				return err
			}
			fmt.Printf("Initialized empty repository at %s\n", cfg.Repository.Path)
			return nil
		},
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Show repository status",
		Action: func(_ context.Context, cmd *cli.Command) error {
			org, cfg, err := openOrg(cmd)
			if err != nil {
				return err
			}
			fmt.Printf("Repository located at: %s\n", cfg.Repository.Path)
			topic, err := org.CurrentTopic()
			if err != nil {
				return err
			}
			if topic == "" {
				fmt.Println("Current topic: none")
				fmt.Println("Current path: none")
				fmt.Println("Use `ansuz topic create` to create a new topic.")
				return nil
			}
			fmt.Printf("Current topic: %s\n", topic)
			path, err := org.CurrentPath(topic)
			if err != nil {
				return err
			}
			if path == "" {
				path = "none"
			}
			fmt.Printf("Current path: %s\n", path)
			return nil
		},
	}
}
