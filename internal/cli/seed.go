package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/vitrine/internal/fixture"
	"github.com/roach88/vitrine/internal/logx"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Database string
}

// SeedResult reports what seed imported.
type SeedResult struct {
	Database   string `json:"database"`
	Categories int    `json:"categories"`
	Products   int    `json:"products"`
}

func (r SeedResult) RenderText(w io.Writer) {
	fmt.Fprintf(w, "Seeded %s: %d categories, %d products\n", r.Database, r.Categories, r.Products)
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load categories and products from a YAML fixture",
		Long: `Load categories and products from a YAML fixture into the database.

The database is created if it does not exist. Products are upserted by
shopee_id, so seeding the same fixture twice leaves one copy.

Example:
  vitrine seed --db ./data/shopee-analytics.db ./catalog.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $DATABASE_PATH)")

	return cmd
}

func runSeed(opts *SeedOptions, path string, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}
	out := opts.formatter(cmd)

	f, err := fixture.Load(path)
	if err != nil {
		_ = out.Error("FIXTURE", "failed to load fixture", err.Error())
		return WrapExitError(ExitCommandError, "failed to load fixture", err)
	}
	out.VerboseLog("loaded %d categories and %d products from %s", len(f.Categories), len(f.Products), path)

	cfg.Database.ReadOnly = false
	st, err := openStore(cfg.Database, false)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result := SeedResult{Database: cfg.Database.Path}
	if result.Categories, err = st.ImportCategories(ctx, f.Categories); err != nil {
		return WrapExitError(ExitCommandError, "failed to import categories", err)
	}
	if result.Products, err = st.ImportProducts(ctx, f.CatalogProducts()); err != nil {
		return WrapExitError(ExitCommandError, "failed to import products", err)
	}
	logx.Info().Int("categories", result.Categories).Int("products", result.Products).Msg("seeded")

	return out.Success(result)
}
