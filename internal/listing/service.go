package listing

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/vitrine/internal/catalog"
	"github.com/roach88/vitrine/internal/config"
	"github.com/roach88/vitrine/internal/logx"
	"github.com/roach88/vitrine/internal/money"
)

// Store is the catalog data the service reads.
type Store interface {
	ListProducts(ctx context.Context, params catalog.ListParams) ([]catalog.Product, int, error)
	Showcase(ctx context.Context, limit int) ([]catalog.Product, error)
	HotCandidates(ctx context.Context, limit int) ([]catalog.Product, error)
	CategorySummaries(ctx context.Context) ([]catalog.CategorySummary, error)
	CategoryCounts(ctx context.Context) (map[string]int, error)
	Ping(ctx context.Context) error
	Diagnostics(ctx context.Context, sampleSize int) (catalog.Diagnostics, error)
}

// Options configure a Service. Zero values pick the defaults noted on
// each field.
type Options struct {
	// Prices renders formatted_price. Default: BRL in pt-BR.
	Prices catalog.PriceFormatter

	// Taxonomy names categories missing from the categories table.
	// Default: catalog.DefaultTaxonomy.
	Taxonomy catalog.Taxonomy

	// DatabasePath is reported by DatabaseReport.
	DatabasePath string

	// Environment is reported by Health. Default: development.
	Environment config.Environment

	// Now stamps health and showcase responses. Default: time.Now.
	Now func() time.Time

	// HealthTimeout bounds the store ping. Default: 2s.
	HealthTimeout time.Duration

	// HotPoolSize is how many best sellers are scored. Default: 1000.
	HotPoolSize int

	// HotWeights weight the hot score. Default: catalog.DefaultHotWeights.
	HotWeights *catalog.HotWeights

	// SampleSize is the number of sample rows in DatabaseReport. Default: 3.
	SampleSize int

	Logger *zerolog.Logger
}

// Service implements the listing operations.
type Service struct {
	store Store
	opts  Options
	log   *zerolog.Logger
}

// NewService creates a Service over st.
func NewService(st Store, opts Options) *Service {
	if opts.Prices == nil {
		opts.Prices = money.BRL()
	}
	if opts.Taxonomy == nil {
		opts.Taxonomy = catalog.DefaultTaxonomy
	}
	if opts.Environment == "" {
		opts.Environment = config.Development
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = 2 * time.Second
	}
	if opts.HotPoolSize <= 0 {
		opts.HotPoolSize = 1000
	}
	if opts.HotWeights == nil {
		w := catalog.DefaultHotWeights
		opts.HotWeights = &w
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = 3
	}
	return &Service{store: st, opts: opts, log: logx.OrNop(opts.Logger)}
}

// ListProducts returns one page of listable products. params is
// normalized first, so any input yields a valid query.
func (s *Service) ListProducts(ctx context.Context, params catalog.ListParams) (catalog.ProductPage, error) {
	params = params.Normalize()
	products, total, err := s.store.ListProducts(ctx, params)
	if err != nil {
		s.log.Error().Err(err).Str("query", params.Query().Encode()).Msg("list products failed")
		return catalog.ProductPage{}, wrapStore("fetch products", err)
	}
	catalog.DeriveAll(products, s.opts.Prices)
	return catalog.NewProductPage(products, total, params.Page, params.Limit), nil
}

// Showcase returns up to limit featured products, clamped to
// [1, catalog.MaxShowcaseLimit].
func (s *Service) Showcase(ctx context.Context, limit int) (catalog.Showcase, error) {
	limit = clamp(limit, catalog.DefaultShowcaseLimit, catalog.MaxShowcaseLimit)
	products, err := s.store.Showcase(ctx, limit)
	if err != nil {
		s.log.Error().Err(err).Int("limit", limit).Msg("showcase failed")
		return catalog.Showcase{}, wrapStore("fetch showcase", err)
	}
	catalog.DeriveAll(products, s.opts.Prices)
	return catalog.Showcase{
		Products:  products,
		Count:     len(products),
		Timestamp: s.opts.Now().UTC(),
	}, nil
}

// HotProducts scores the best sellers with at least minSales sales and
// returns the top limit. A negative minSales means the default.
func (s *Service) HotProducts(ctx context.Context, limit int, minSales int64) (catalog.HotProducts, error) {
	limit = clamp(limit, catalog.DefaultHotLimit, catalog.MaxLimit)
	if minSales < 0 {
		minSales = catalog.DefaultHotMinSales
	}
	candidates, err := s.store.HotCandidates(ctx, s.opts.HotPoolSize)
	if err != nil {
		s.log.Error().Err(err).Msg("hot candidates failed")
		return catalog.HotProducts{}, wrapStore("fetch hot products", err)
	}

	ranked := catalog.RankHot(candidates, minSales, *s.opts.HotWeights)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	catalog.DeriveAll(ranked, s.opts.Prices)
	return catalog.HotProducts{Products: ranked, Count: len(ranked), MinSales: minSales}, nil
}

// Categories lists categories that have listable products, most
// populated first. Names fall back to the taxonomy, then to the id.
func (s *Service) Categories(ctx context.Context) ([]catalog.CategorySummary, error) {
	summaries, err := s.store.CategorySummaries(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("category summaries failed")
		return nil, wrapStore("fetch categories", err)
	}
	for i := range summaries {
		cs := &summaries[i]
		cs.Name = s.opts.Taxonomy.Resolve(cs.ID, cs.Name)
		if cs.ImageURL == "" {
			cs.ImageURL = catalog.PlaceholderImage(cs.Name)
		}
	}
	return summaries, nil
}

// CategoryCounts maps category id to its listable product count.
func (s *Service) CategoryCounts(ctx context.Context) (catalog.CategoryCounts, error) {
	counts, err := s.store.CategoryCounts(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("category counts failed")
		return catalog.CategoryCounts{}, wrapStore("fetch category counts", err)
	}
	return catalog.CategoryCounts{Counts: counts}, nil
}

// Health pings the store under HealthTimeout. It never fails; a
// disconnected store is reported in the body.
func (s *Service) Health(ctx context.Context) catalog.HealthReport {
	report := catalog.HealthReport{
		Status:         catalog.StatusOK,
		DatabaseStatus: catalog.DatabaseConnected,
		APIBase:        catalog.APIBase,
		Timestamp:      s.opts.Now().UTC(),
		Environment:    s.opts.Environment.String(),
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.HealthTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.log.Warn().Err(err).Msg("health check failed")
		report.Status = catalog.StatusError
		report.DatabaseStatus = catalog.DatabaseDisconnected
		report.DatabaseError = err.Error()
	}
	return report
}

// DatabaseReport describes the database file and its contents. Failures
// are carried in the Error field.
func (s *Service) DatabaseReport(ctx context.Context) catalog.DatabaseReport {
	report := catalog.DatabaseReport{
		DatabasePath: s.opts.DatabasePath,
		APIBase:      catalog.APIBase,
		Diagnostics: catalog.Diagnostics{
			Tables:         []catalog.TableInfo{},
			SampleProducts: []catalog.SampleProduct{},
		},
	}

	if s.opts.DatabasePath != "" {
		_, err := os.Stat(s.opts.DatabasePath)
		report.DatabaseExists = err == nil
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			report.Error = err.Error()
			return report
		}
	}

	diag, err := s.store.Diagnostics(ctx, s.opts.SampleSize)
	if err != nil {
		s.log.Warn().Err(err).Msg("database diagnostics failed")
		report.Error = err.Error()
		return report
	}
	report.Diagnostics = diag
	return report
}

func clamp(n, def, ceiling int) int {
	if n <= 0 {
		return def
	}
	if n > ceiling {
		return ceiling
	}
	return n
}
