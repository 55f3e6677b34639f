package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/starford/berkano/internal"
	"github.com/starford/berkano/internal/apperr"
	"github.com/starford/berkano/internal/contentservice"
	"github.com/starford/berkano/internal/mcpserver"
	"github.com/starford/berkano/internal/registry"
	pkgconfig "github.com/starford/berkano/pkg/config"
	"github.com/urfave/cli/v3"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if configPath == "" {
		return cfg, cfg.Validate()
	}
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// Fall back to defaults when the default config path is absent.
		return cfg, cfg.Validate()
	}
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func newService(cmd *cli.Command) (*contentservice.Service, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	reg, err := registry.New(cfg.Storage.Root, cfg.Storage.DefaultDatabase)
	if err != nil {
		return nil, err
	}
	return contentservice.NewService(reg), nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	svc, err := newService(cmd)
	if err != nil {
		return err
	}
	return mcpserver.New(svc).ServeStdio()
}

func runCopy(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return cli.Exit("usage: copy <content-id> <new-content-id>", 1)
	}
	src := cmd.Args().Get(0)
	dst := cmd.Args().Get(1)

	svc, err := newService(cmd)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if err := svc.CopyContent(ctx, cmd.String("db"), src, dst); err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return cli.Exit(err.Error(), 2)
		case errors.Is(err, apperr.ErrAlreadyExists):
			return cli.Exit(err.Error(), 3)
		default:
			return cli.Exit(err.Error(), 1)
		}
	}

	fmt.Printf("copied: %s -> %s\n", src, dst)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "berkano",
		Usage:  "Markdown content management core with multi-database storage and block-structured documents",
		Action: runServe,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "copy",
				Usage:     "Copy a content entry to a new id",
				ArgsUsage: "<content-id> <new-content-id>",
				Action:    runCopy,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "db",
						Usage: "Database file name (defaults to the active database)",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP integration over stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
