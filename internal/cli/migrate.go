package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"finbot/internal/storage"
)

// MigrationStatus is the result of finctl migrate.
type MigrationStatus struct {
	Path    string `json:"path"`
	Version uint   `json:"version"`
	Dirty   bool   `json:"dirty"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long:  "Apply every pending schema migration to the database, creating it when missing, and report the resulting version.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			status, err := runMigrate(rootOpts.DBPath)
			if err != nil {
				return f.Failure(err)
			}
			return f.Success(status, func(w io.Writer) {
				fmt.Fprintf(w, "%s: schema version %d\n", status.Path, status.Version)
			})
		},
	}
}

func runMigrate(dbPath string) (MigrationStatus, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return MigrationStatus{}, fmt.Errorf("create database directory: %w", err)
	}
	if err := storage.RunMigrations(dbPath); err != nil {
		return MigrationStatus{}, err
	}
	version, dirty, err := storage.MigrationVersion(dbPath)
	if err != nil {
		return MigrationStatus{}, err
	}
	return MigrationStatus{Path: dbPath, Version: version, Dirty: dirty}, nil
}
