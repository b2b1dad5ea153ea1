package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"finbot/internal/config"
	"finbot/internal/log"
	"finbot/internal/services"
	"finbot/internal/storage"
)

// RootOptions holds global flags for all finctl commands.
type RootOptions struct {
	DBPath string
	Format string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for finctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "finctl",
		Short: "finctl - finbot administration",
		Long:  "Out-of-band administration for the finbot database: schema migrations and expense categories.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.DBPath == "" {
				return fmt.Errorf("--db must not be empty")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", defaultDBPath(), "path to the SQLite database (SQLITE_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCategoriesCommand(opts))

	return cmd
}

// defaultDBPath honours SQLITE_DB_PATH so finctl and the API agree on the
// database without extra flags.
func defaultDBPath() string {
	cfg, err := config.Load()
	if err != nil {
		return ""
	}
	return cfg.SQLiteDBPath
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
}

// withCategories opens the store and runs fn against a category service
// that logs to stderr.
func (o *RootOptions) withCategories(ctx context.Context, cmd *cobra.Command, fn func(*services.CategoryService) error) error {
	store, err := storage.Open(ctx, o.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	logger := log.New(log.Config{
		Level:     log.ParseLevel("warn"),
		Format:    o.Format,
		Component: log.ComponentCLI,
		Output:    cmd.ErrOrStderr(),
	})
	return fn(services.NewCategoryService(store, nil, logger))
}
