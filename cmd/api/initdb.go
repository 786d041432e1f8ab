package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keja/keja/internal/config"
	"github.com/keja/keja/internal/repository"
	"github.com/keja/keja/internal/upload"
)

// NewInitDBCmd creates the initdb subcommand.
func NewInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Create the schema and the upload directory",
		Long: `Apply every pending database migration and create the image upload
directory. Safe to run repeatedly.`,
		RunE: runInitDB,
	}
}

func runInitDB(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}

	versions, err := repository.MigrationVersions()
	if err != nil {
		return err
	}

	cmd.Printf("Applying migrations to %s...\n", redactURL(cfg.DatabaseURL))
	if err := repository.Migrate(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migrate: %s", sanitizeError(err, cfg.DatabaseURL))
	}
	latest := "none"
	if n := len(versions); n > 0 {
		latest = versions[n-1]
	}
	cmd.Printf("Schema at migration %s\n", latest)

	if _, err := upload.NewStore(cfg.UploadDir, cfg.MaxUploadSize); err != nil {
		return err
	}
	cmd.Printf("Upload directory ready: %s\n", cfg.UploadDir)

	cmd.Println("Initialized the database.")
	return nil
}
