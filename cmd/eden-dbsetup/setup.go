package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/krypt0x/eden/internal/backend"
	"github.com/krypt0x/eden/internal/config"
	"github.com/krypt0x/eden/internal/confpatch"
	"github.com/krypt0x/eden/internal/dbadmin"
	"github.com/krypt0x/eden/internal/pgservice"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup [selector]",
		Short: "Provision the selected backend and patch the config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			selector := cfg.Backend
			if len(args) == 1 {
				selector = args[0]
			}
			if selector == "" {
				return fmt.Errorf("no backend selector: set EDEN_DB or pass one as an argument")
			}

			return runSetup(cmd.Context(), cfg, selector)
		},
	}
}

// runSetup provisions the server for the selected backend, then patches the
// configuration artifact. Exactly one engine branch runs per invocation; an
// unrecognized selector is a warning-level no-op so unlisted CI matrix
// values pass through without failing the job.
func runSetup(ctx context.Context, cfg *config.Config, selector string) error {
	b := backend.Parse(selector)

	switch b.Engine {
	case backend.EngineMySQL:
		if err := provisionMySQL(ctx, cfg); err != nil {
			return err
		}
	case backend.EnginePostgres:
		if err := provisionPostgres(ctx, cfg, b); err != nil {
			return err
		}
	default:
		log.Printf("unrecognized backend selector %q, nothing to do", selector)
		return nil
	}

	return patchConfig(cfg, b)
}

func provisionMySQL(ctx context.Context, cfg *config.Config) error {
	eng, err := dbadmin.OpenMySQL(cfg.MySQL.AdminDSN)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	log.Printf("creating mysql database %q", cfg.Database.Name)
	return eng.CreateDatabase(ctx, cfg.Database.Name)
}

func provisionPostgres(ctx context.Context, cfg *config.Config, b backend.Backend) error {
	if b.Version != "" && !cfg.SkipServiceRestart {
		log.Printf("restarting postgresql pinned to version %s", b.Version)
		if err := pgservice.New().Restart(ctx, b.Version); err != nil {
			return err
		}
	}

	eng, err := dbadmin.OpenPostgres(cfg.Postgres.AdminDSN)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	log.Printf("creating postgres database %q", cfg.Database.Name)
	if err := eng.CreateDatabase(ctx, cfg.Database.Name); err != nil {
		return err
	}

	if !b.PostGIS {
		return nil
	}

	// The extension and grants run inside the new database, not the
	// maintenance database the admin DSN points at.
	dsn, err := dbadmin.PostgresDSNForDB(cfg.Postgres.AdminDSN, cfg.Database.Name)
	if err != nil {
		return err
	}
	spatial, err := dbadmin.OpenPostgres(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = spatial.Close() }()

	log.Printf("enabling postgis in %q", cfg.Database.Name)
	if err := spatial.CreateExtension(ctx, "postgis"); err != nil {
		return err
	}
	for _, table := range []string{"geometry_columns", "spatial_ref_sys"} {
		if err := spatial.GrantAll(ctx, table, cfg.Database.Username); err != nil {
			return err
		}
	}
	return nil
}

func patchConfig(cfg *config.Config, b backend.Backend) error {
	reps := confpatch.ForBackend(b, confpatch.Values{
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
	})
	if len(reps) == 0 {
		return nil
	}

	log.Printf("activating %s settings in %s", b.Engine, cfg.ConfigFile)
	unmatched, err := confpatch.File(cfg.ConfigFile, reps)
	if err != nil {
		return err
	}
	for _, r := range unmatched {
		log.Printf("pattern not found in %s (already active?): %s", cfg.ConfigFile, r.Old)
	}
	return nil
}
