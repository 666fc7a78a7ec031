package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/streamz/internal/repositories"
	"github.com/desertthunder/streamz/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes config.toml from the embedded template and initializes the credential database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	dbPath := shared.ExpandPath(config.Storage.DatabasePath)
	r.logger.Info("initializing credential database", "path", dbPath)

	_, db, err := repositories.Open(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", dbPath)

	r.writePlain("✓ Configuration: %s\n", configPath)
	r.writePlain("✓ Credential database: %s\n", dbPath)
	r.writePlainln("Next steps:")
	if config.Storage.Driver != "sqlite" {
		r.writePlain("- Set storage.driver = \"sqlite\" in %s to keep the token in the database\n", configPath)
	}
	r.writePlain("- Run 'streamz auth login --username <name>' to sign in\n")
	return nil
}
