package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/fieldworks/outreach/internal"
	"github.com/fieldworks/outreach/internal/caseservice"
	"github.com/fieldworks/outreach/internal/mcpserver"
	"github.com/fieldworks/outreach/internal/store"
	pkgconfig "github.com/fieldworks/outreach/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	svc := caseservice.NewService(db, nil, nil, cfg.Worker.Name())
	return mcpserver.New(svc).ServeStdio()
}

func recount(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	svc := caseservice.NewService(db, nil, nil, cfg.Worker.Name())

	if id := cmd.String("client"); id != "" {
		client, err := svc.Recount(ctx, id)
		if err != nil {
			return fmt.Errorf("recount client %s: %w", id, err)
		}
		fmt.Printf("recounted %s %s: contacts=%d last_contact=%s\n",
			client.FirstName, client.LastName, client.Contacts,
			client.LastContact.Format("2006-01-02"))
		return nil
	}

	n, err := svc.RecountAll(ctx)
	if err != nil {
		return fmt.Errorf("recount all: %w", err)
	}
	fmt.Printf("recounted %d clients\n", n)
	return nil
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "outreach",
		Usage:  "Case-management service for street outreach: client roster, intake, and interaction log",
		Action: serve,
		Flags:  []cli.Flag{configFlag()},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve case-management tools over MCP stdio",
				Action: serveMCP,
				Flags:  []cli.Flag{configFlag()},
			},
			{
				Name:   "recount",
				Usage:  "Recompute denormalized contact counters from the interaction log",
				Action: recount,
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "client",
						Usage: "Recount a single client by id (default: all clients)",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
