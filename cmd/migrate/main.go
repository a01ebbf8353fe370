package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/database"
	"github.com/iliyamo/table-reservation/internal/logger"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up|down|status|reset|version")
	version := flag.String("version", "", "target version for -cmd=version")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	ctx := logg.WithField(context.Background(), "cmd", *cmd)

	db, err := database.Open(ctx, cfg)
	if err != nil {
		logg.Error(ctx, err).Msg("database connection failed")
		os.Exit(1)
	}
	defer db.Close()

	switch *cmd {
	case "version":
		if *version == "" {
			fmt.Fprintln(os.Stderr, "missing -version for version command")
			os.Exit(1)
		}
		err = database.MigrateToVersion(ctx, db, *version)
	default:
		err = database.Migrate(ctx, db, *cmd)
	}
	if err != nil {
		logg.Error(ctx, err).Msg("migration failed")
		os.Exit(1)
	}
	logg.Info(ctx).Msg("migration finished")
}
