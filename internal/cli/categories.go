package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"finbot/internal/core"
	"finbot/internal/services"
)

// SeedFile is the YAML document accepted by categories seed.
type SeedFile struct {
	Categories []string `yaml:"categories"`
}

// NewCategoriesCommand creates the categories command group.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
		Long: `Manage expense categories.

Categories are read-only over the HTTP API; they are created, renamed and
removed here. A category still used by expenses cannot be deleted.`,
	}

	cmd.AddCommand(
		newCategoriesListCommand(rootOpts),
		newCategoriesAddCommand(rootOpts),
		newCategoriesRenameCommand(rootOpts),
		newCategoriesDeleteCommand(rootOpts),
		newCategoriesSeedCommand(rootOpts),
	)
	return cmd
}

func newCategoriesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			var categories []core.Category
			err := rootOpts.withCategories(cmd.Context(), cmd, func(svc *services.CategoryService) error {
				var err error
				categories, err = svc.List(cmd.Context())
				return err
			})
			if err != nil {
				return f.Failure(err)
			}
			return f.Success(categories, func(w io.Writer) {
				writeCategories(w, categories)
			})
		},
	}
}

func newCategoriesAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			var category core.Category
			err := rootOpts.withCategories(cmd.Context(), cmd, func(svc *services.CategoryService) error {
				var err error
				category, err = svc.Create(cmd.Context(), core.CategoryCreate{Name: args[0]})
				return err
			})
			if err != nil {
				return f.Failure(err)
			}
			return f.Success(category, func(w io.Writer) {
				fmt.Fprintf(w, "created category %d %q\n", category.ID, category.Name)
			})
		},
	}
}

func newCategoriesRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			id, err := parseID(args[0])
			if err != nil {
				return f.Failure(err)
			}

			var category core.Category
			err = rootOpts.withCategories(cmd.Context(), cmd, func(svc *services.CategoryService) error {
				var err error
				category, err = svc.Rename(cmd.Context(), id, args[1])
				return err
			})
			if err != nil {
				return f.Failure(err)
			}
			return f.Success(category, func(w io.Writer) {
				fmt.Fprintf(w, "renamed category %d to %q\n", category.ID, category.Name)
			})
		},
	}
}

func newCategoriesDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an unused category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			id, err := parseID(args[0])
			if err != nil {
				return f.Failure(err)
			}

			err = rootOpts.withCategories(cmd.Context(), cmd, func(svc *services.CategoryService) error {
				return svc.Delete(cmd.Context(), id)
			})
			if err != nil {
				return f.Failure(err)
			}
			return f.Success(map[string]int64{"deleted": id}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted category %d\n", id)
			})
		},
	}
}

func newCategoriesSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Create the categories listed in a YAML file",
		Long: `Create every category listed in a YAML file that does not exist yet.

The file has the form:

  categories:
    - Food
    - Transport

Existing categories are left untouched, so seeding is idempotent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			seed, err := LoadSeedFile(args[0])
			if err != nil {
				return f.Failure(err)
			}

			var created []core.Category
			err = rootOpts.withCategories(cmd.Context(), cmd, func(svc *services.CategoryService) error {
				var err error
				created, err = svc.Seed(cmd.Context(), seed.Categories)
				return err
			})
			if err != nil {
				return f.Failure(err)
			}
			return f.Success(created, func(w io.Writer) {
				fmt.Fprintf(w, "created %d of %d categories\n", len(created), len(seed.Categories))
				writeCategories(w, created)
			})
		},
	}
}

// LoadSeedFile reads and validates a category seed file. Unknown keys are
// rejected.
func LoadSeedFile(path string) (SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SeedFile{}, fmt.Errorf("read seed file: %w", err)
	}

	var seed SeedFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil {
		if err == io.EOF {
			return SeedFile{}, core.Invalid("categories", "seed file is empty")
		}
		return SeedFile{}, core.Invalid("", fmt.Sprintf("failed to parse YAML: %v", err))
	}
	if len(seed.Categories) == 0 {
		return SeedFile{}, core.Invalid("categories", "seed file lists no categories")
	}
	return seed, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Invalid("id", "id must be a positive integer")
	}
	return id, nil
}

func writeCategories(w io.Writer, categories []core.Category) {
	for _, c := range categories {
		fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Name)
	}
}
