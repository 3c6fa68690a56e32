package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/watchlog/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes config.toml from the embedded template when missing.
//
// The session database is opened and migrated before any command runs, so
// reaching this point means it is ready.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("config file exists", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.writePlain("✓ Created %s\n", configPath)
	}

	if r.db != nil {
		if err := r.db.PingContext(ctx); err != nil {
			return fmt.Errorf("session database unavailable: %w", err)
		}
	}
	r.logger.Infof("setup complete for database: %v", r.config.Session.Path)

	r.writePlain("✓ Session database ready at %s\n", r.config.Session.Path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Point api.base_url in %s at your server (or run 'watchlog mock-api')\n", configPath)
	r.writePlain("2. Run 'watchlog auth login --username <name>'\n")
	return nil
}
