// Command admin runs maintenance tasks against the configured database.
package main

import (
	"context"
	"os"

	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/bootstrap"
	"github.com/yigit/coursehub/internal/db"
	"github.com/yigit/coursehub/internal/pkg/auth"
	"github.com/yigit/coursehub/internal/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		os.Exit(1)
	}

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		os.Exit(1)
	}

	users := repositories.NewUserRepository(database.Pool)
	cli := commandLine{
		users:       users,
		userService: services.NewUserService(users, auth.NewBcryptHasher()),
		migrate: func(ctx context.Context, dir string) error {
			return bootstrap.RunMigrations(ctx, database.Pool, dir, logger.WithComponent("admin"))
		},
		migrationsDir: cfg.Server.MigrationsDir,
		out:           os.Stdout,
	}

	err = cli.run(ctx, os.Args)
	database.Close()
	if err != nil {
		if err != errHelp {
			lgr.Error().Err(err).Msg("Command failed")
		}
		os.Exit(1)
	}
}
