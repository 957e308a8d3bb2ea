package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/vitrine/internal/catalog"
	"github.com/roach88/vitrine/internal/listing"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Database   string
	Category   string
	Page       int
	Limit      int
	Sort       string
	PriceRange string
	Search     string
}

// Params converts the flags into listing parameters.
func (o *ListOptions) Params() catalog.ListParams {
	return catalog.ListParams{
		Category:   o.Category,
		Page:       o.Page,
		Limit:      o.Limit,
		Sort:       catalog.ParseSortOrder(o.Sort),
		PriceRange: catalog.ParsePriceRange(o.PriceRange),
		Search:     o.Search,
	}.Normalize()
}

// pageText renders a product page as a table.
type pageText catalog.ProductPage

func (p pageText) RenderText(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRICE\tDISCOUNT\tSALES\tCATEGORY\tNAME")
	for _, prod := range p.Products {
		fmt.Fprintf(tw, "%d\t%s\t%d%%\t%d\t%s\t%s\n",
			prod.ID, prod.FormattedPrice, prod.DiscountPercent, prod.Sales, prod.CategoryName, prod.Name)
	}
	tw.Flush()
	fmt.Fprintf(w, "page %d/%d, %d products\n", p.Page, p.TotalPages, p.Total)
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products straight from the database",
		Long: `List products the way GET /products would, without a server.

Flags mirror the HTTP query parameters. Invalid values fall back to
their defaults instead of failing.

Examples:
  vitrine list --db ./data/shopee-analytics.db --category 100630
  vitrine list --sort price_asc --price-range 50-100 --limit 10
  vitrine list --search "fone" --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $DATABASE_PATH)")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category id")
	cmd.Flags().IntVar(&opts.Page, "page", catalog.DefaultPage, "page number")
	cmd.Flags().IntVar(&opts.Limit, "limit", catalog.DefaultLimit, "page size (max 100)")
	cmd.Flags().StringVar(&opts.Sort, "sort", string(catalog.SortRelevance), "relevance|price_asc|price_desc|name_asc|name_desc")
	cmd.Flags().StringVar(&opts.PriceRange, "price-range", "", `price range, "min-max" or "min+"`)
	cmd.Flags().StringVar(&opts.Search, "search", "", "search term")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}
	out := opts.formatter(cmd)

	st, err := openStore(cfg.Database, true)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := newService(cfg, st)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	params := opts.Params()
	out.VerboseLog("query: %s", params.Query().Encode())
	page, err := svc.ListProducts(ctx, params)
	if err != nil {
		_ = out.Error(string(listing.CodeOf(err)), listing.MessageOf(err), err.Error())
		return WrapExitError(ExitCommandError, "failed to list products", err)
	}

	if opts.Format == "json" {
		return out.Success(page)
	}
	return out.Success(pageText(page))
}
