package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/vitrine/internal/catalog"
	"github.com/roach88/vitrine/internal/client"
	"github.com/roach88/vitrine/internal/config"
	"github.com/roach88/vitrine/internal/logx"
	"github.com/roach88/vitrine/internal/money"
)

// ProbeTargets lists the endpoints probe can read.
var ProbeTargets = []string{"health", "products", "showcase", "hot", "categories", "counts"}

// ProbeOptions holds flags for the probe command.
type ProbeOptions struct {
	*RootOptions
	BaseURL  string
	List     ListOptions
	MinSales int64
}

// ProbeResult is what probe prints.
type ProbeResult struct {
	Target     string          `json:"target"`
	Connection client.Snapshot `json:"connection"`
	Fallback   bool            `json:"fallback"`
	Cached     bool            `json:"cached"`
	Notice     string          `json:"notice,omitempty"`
	Error      string          `json:"error,omitempty"`
	Data       any             `json:"data,omitempty"`

	summary func(io.Writer)
}

func (r ProbeResult) RenderText(w io.Writer) {
	fmt.Fprintf(w, "%s: connection %s", r.Target, r.Connection.State)
	if r.Connection.Connected {
		fmt.Fprintf(w, ", data source available: %t", r.Connection.DataSourceAvailable)
	}
	fmt.Fprintln(w)
	if r.Fallback {
		fmt.Fprintf(w, "fallback data: %s\n", r.Notice)
	}
	if r.Error != "" {
		fmt.Fprintf(w, "error: %s\n", r.Error)
	}
	if r.summary != nil {
		r.summary(w)
	}
}

// NewProbeCommand creates the probe command.
func NewProbeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProbeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "probe <" + strings.Join(ProbeTargets, "|") + ">",
		Short: "Read a running service through the resilient client",
		Long: `Read one endpoint of a running vitrine service through the resilient
client: health probe, retries with backoff, and sample fallback data
when the service cannot be reached.

Exits 1 when the answer came from fallback data or the service is
unreachable.

Examples:
  vitrine probe health --base-url http://localhost:3000/api
  vitrine probe products --category 100630 --format json
  vitrine probe hot --min-sales 1000`,
		Args:          cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:     ProbeTargets,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "API root (default $API_BASE_URL)")
	cmd.Flags().StringVar(&opts.List.Category, "category", "", "category id (products)")
	cmd.Flags().IntVar(&opts.List.Page, "page", catalog.DefaultPage, "page number (products)")
	cmd.Flags().IntVar(&opts.List.Limit, "limit", 0, "result size")
	cmd.Flags().StringVar(&opts.List.Sort, "sort", string(catalog.SortRelevance), "sort order (products)")
	cmd.Flags().StringVar(&opts.List.PriceRange, "price-range", "", "price range (products)")
	cmd.Flags().StringVar(&opts.List.Search, "search", "", "search term (products)")
	cmd.Flags().Int64Var(&opts.MinSales, "min-sales", -1, "minimum sales (hot)")

	return cmd
}

func newClient(cfg config.Config, baseURL string) (*client.Client, error) {
	if baseURL == "" {
		baseURL = cfg.Client.BaseURL
	}
	prices, err := money.New(cfg.Locale.Language, cfg.Locale.Currency, cfg.Locale.Symbol)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid locale", err)
	}
	retries := cfg.Client.Retries
	if retries == 0 {
		retries = client.NoRetries
	}
	c, err := client.New(client.Options{
		BaseURL:          baseURL,
		Timeout:          cfg.Client.Timeout,
		ProbeTimeout:     cfg.Client.ProbeTimeout,
		ProbeInterval:    cfg.Client.ProbeInterval,
		Retries:          retries,
		BackoffBase:      cfg.Client.BackoffBase,
		BackoffCap:       cfg.Client.BackoffCap,
		FailureThreshold: cfg.Client.FailureThreshold,
		CacheTTL:         cfg.Client.CacheTTL,
		Fallback:         client.DefaultDataset(prices),
		Logger:           logx.Logger(),
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid client config", err)
	}
	return c, nil
}

func fromResult[T any](target string, r client.Result[T], summary func(T, io.Writer)) ProbeResult {
	pr := ProbeResult{
		Target:   target,
		Fallback: r.Fallback,
		Cached:   r.Cached,
		Notice:   r.Notice,
		Data:     r.Data,
		summary:  func(w io.Writer) { summary(r.Data, w) },
	}
	if r.Err != nil {
		pr.Error = r.Err.Error()
	}
	return pr
}

func productTable(products []catalog.Product, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%d sold\n", p.FormattedPrice, p.Name, p.Sales)
	}
	tw.Flush()
}

func runProbe(opts *ProbeOptions, target string, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	out := opts.formatter(cmd)

	c, err := newClient(cfg, opts.BaseURL)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var result ProbeResult
	switch target {
	case "health":
		snap := c.CheckConnection(ctx)
		result = ProbeResult{Target: target, Error: snap.LastError}
	case "products":
		result = fromResult(target, c.FetchProducts(ctx, opts.List.Params()), func(p catalog.ProductPage, w io.Writer) {
			productTable(p.Products, w)
			fmt.Fprintf(w, "page %d/%d, %d products\n", p.Page, p.TotalPages, p.Total)
		})
	case "showcase":
		result = fromResult(target, c.FetchShowcase(ctx, opts.List.Limit), func(s catalog.Showcase, w io.Writer) {
			productTable(s.Products, w)
		})
	case "hot":
		result = fromResult(target, c.FetchHotProducts(ctx, opts.List.Limit, opts.MinSales), func(h catalog.HotProducts, w io.Writer) {
			productTable(h.Products, w)
			fmt.Fprintf(w, "%d products with at least %d sales\n", h.Count, h.MinSales)
		})
	case "categories":
		result = fromResult(target, c.FetchCategories(ctx), func(cats []catalog.CategorySummary, w io.Writer) {
			for _, cat := range cats {
				fmt.Fprintf(w, "%s\t%s\t%d\n", cat.ID, cat.Name, cat.ProductCount)
			}
		})
	case "counts":
		result = fromResult(target, c.FetchCategoryCounts(ctx), func(cc catalog.CategoryCounts, w io.Writer) {
			fmt.Fprintf(w, "%d categories\n", len(cc.Counts))
		})
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown probe target %q", target))
	}
	result.Connection = c.Status()

	if err := out.Success(result); err != nil {
		return err
	}
	if result.Fallback || !result.Connection.Connected {
		return NewExitError(ExitFailure, "service unreachable, served fallback data")
	}
	return nil
}
