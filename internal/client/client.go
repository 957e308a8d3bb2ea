package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/roach88/vitrine/internal/catalog"
	"github.com/roach88/vitrine/internal/logx"
	"github.com/roach88/vitrine/internal/money"
)

// NoticeFallback is shown alongside fallback data.
const NoticeFallback = "Could not reach the catalog service. Showing sample products."

// Options configure a Client. Zero values pick the defaults noted on each
// field.
type Options struct {
	// BaseURL is the API root, for example http://localhost:3000/api.
	BaseURL string

	HTTPClient *http.Client

	// Timeout bounds each read attempt. Default: 5s.
	Timeout time.Duration

	// ProbeTimeout bounds each health probe. Default: 3s.
	ProbeTimeout time.Duration

	// ProbeInterval is the minimum time between probes. Default: 10s.
	ProbeInterval time.Duration

	// Retries is the number of extra attempts per read. Default: 2.
	// Use NoRetries for a single attempt.
	Retries int

	// BackoffBase and BackoffCap shape the retry delays.
	// Defaults: 300ms and 5s.
	BackoffBase time.Duration
	BackoffCap  time.Duration

	// FailureThreshold is the number of consecutive failures after which
	// reads skip the network. Default: 2.
	FailureThreshold int

	// CacheTTL is how long live responses are reused. Default: 5m.
	CacheTTL time.Duration

	// FallbackTTLFactor multiplies CacheTTL for fallback entries.
	// Default: 3.
	FallbackTTLFactor int

	// SweepInterval drives Start's ticker. Default: 1m.
	SweepInterval time.Duration

	// Fallback is served while the service is unreachable.
	// Default: DefaultDataset with BRL prices.
	Fallback *Dataset

	Now    func() time.Time
	Sleep  SleepFunc
	Logger *zerolog.Logger
}

// NoRetries disables retries when set as Options.Retries.
const NoRetries = -1

func (o *Options) setDefaults() {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = 3 * time.Second
	}
	if o.ProbeInterval <= 0 {
		o.ProbeInterval = 10 * time.Second
	}
	switch {
	case o.Retries == NoRetries:
		o.Retries = 0
	case o.Retries <= 0:
		o.Retries = 2
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = 300 * time.Millisecond
	}
	if o.BackoffCap <= 0 {
		o.BackoffCap = 5 * time.Second
	}
	if o.FailureThreshold <= 0 {
		o.FailureThreshold = 2
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.FallbackTTLFactor <= 0 {
		o.FallbackTTLFactor = 3
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Minute
	}
	if o.Fallback == nil {
		o.Fallback = DefaultDataset(money.BRL())
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Sleep == nil {
		o.Sleep = Sleep
	}
}

// Result is the outcome of a read. Data is always usable.
type Result[T any] struct {
	Data T

	// Fallback is true when Data comes from the sample catalog.
	Fallback bool

	// Cached is true when no network call was made for this read.
	Cached bool

	// Notice is a user-facing message, set with Fallback.
	Notice string

	// Err is the failure that led to fallback data, if any.
	Err error
}

// Client reads the listing API.
type Client struct {
	opts    Options
	base    *url.URL
	tracker *Tracker
	cache   *Cache
	flight  singleflight.Group
	log     *zerolog.Logger

	startOnce sync.Once
	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// New creates a Client. Nothing is contacted until the first read.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", opts.BaseURL)
	}
	opts.setDefaults()

	c := &Client{
		opts:  opts,
		base:  base,
		cache: NewCache(opts.CacheTTL, opts.FallbackTTLFactor, opts.Now),
		log:   logx.OrNop(opts.Logger),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	c.tracker = NewTracker(c.probe, opts.ProbeInterval, opts.Now)
	c.tracker.OnTransition(c.onTransition)
	return c, nil
}

func (c *Client) onTransition(from, to State) {
	c.log.Info().Stringer("from", from).Stringer("to", to).Msg("connection state changed")
	if to == StateConnected {
		if n := c.cache.DropFallback(); n > 0 {
			c.log.Debug().Int("entries", n).Msg("dropped fallback cache entries")
		}
	}
}

// Tracker exposes the connection tracker.
func (c *Client) Tracker() *Tracker {
	return c.tracker
}

// Cache exposes the response cache.
func (c *Client) Cache() *Cache {
	return c.cache
}

// Status returns the connection state without probing.
func (c *Client) Status() Snapshot {
	return c.tracker.Snapshot()
}

// CheckConnection probes the service now.
func (c *Client) CheckConnection(ctx context.Context) Snapshot {
	return c.tracker.Check(ctx)
}

// FetchProducts reads one page of products.
func (c *Client) FetchProducts(ctx context.Context, params catalog.ListParams) Result[catalog.ProductPage] {
	params = params.Normalize()
	return fetch(ctx, c, "/products", params.Query(), func() catalog.ProductPage {
		return c.opts.Fallback.Products(params)
	})
}

// FetchShowcase reads the featured products.
func (c *Client) FetchShowcase(ctx context.Context, limit int) Result[catalog.Showcase] {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	n := limit
	if n <= 0 {
		n = catalog.DefaultShowcaseLimit
	}
	return fetch(ctx, c, "/products/showcase", q, func() catalog.Showcase {
		return c.opts.Fallback.Showcase(n, c.opts.Now())
	})
}

// FetchHotProducts reads the hot products. A negative minSales leaves the
// threshold to the service.
func (c *Client) FetchHotProducts(ctx context.Context, limit int, minSales int64) Result[catalog.HotProducts] {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if minSales >= 0 {
		q.Set("min_sales", strconv.FormatInt(minSales, 10))
	}
	n := limit
	if n <= 0 {
		n = catalog.DefaultHotLimit
	}
	return fetch(ctx, c, "/products/hot", q, func() catalog.HotProducts {
		return c.opts.Fallback.Hot(n, minSales)
	})
}

// FetchCategories reads the category summaries.
func (c *Client) FetchCategories(ctx context.Context) Result[[]catalog.CategorySummary] {
	return fetch(ctx, c, "/categories", nil, c.opts.Fallback.Categories)
}

// FetchCategoryCounts reads the per-category product counts.
func (c *Client) FetchCategoryCounts(ctx context.Context) Result[catalog.CategoryCounts] {
	return fetch(ctx, c, "/categories/counts", nil, c.opts.Fallback.Counts)
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = ""
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// fetch runs the read path: cache, offline short-circuit, coalesced
// retrying call, fallback.
func fetch[T any](ctx context.Context, c *Client, path string, q url.Values, fallback func() T) Result[T] {
	key := Key{Method: http.MethodGet, URL: c.endpoint(path, q)}

	if r, ok := cached[T](c.cache, key); ok {
		return r
	}

	snap := c.tracker.Ensure(ctx)
	if snap.Failures >= c.opts.FailureThreshold {
		data := fallback()
		c.cache.Put(key, data, true)
		c.log.Debug().Str("url", key.URL).Int("failures", snap.Failures).Msg("serving fallback without network")
		return Result[T]{Data: data, Fallback: true, Notice: NoticeFallback, Err: ErrOffline}
	}

	ch := c.flight.DoChan(key.String(), func() (any, error) {
		if r, ok := cached[T](c.cache, key); ok {
			return r, nil
		}

		data, err := Retry(context.WithoutCancel(ctx), c.opts.Sleep, c.opts.Retries,
			Backoff{Base: c.opts.BackoffBase, Cap: c.opts.BackoffCap},
			func(ctx context.Context) (T, error) {
				var v T
				err := c.getJSON(ctx, key.URL, c.opts.Timeout, &v)
				return v, err
			})
		if err != nil {
			if countsAsOutage(err) {
				c.tracker.RecordFailure(err)
			}
			c.log.Warn().Err(err).Str("url", key.URL).Msg("read failed, serving fallback")
			fb := fallback()
			c.cache.Put(key, fb, true)
			return Result[T]{Data: fb, Fallback: true, Notice: NoticeFallback, Err: err}, nil
		}

		c.tracker.RecordSuccess()
		c.cache.Put(key, data, false)
		return Result[T]{Data: data}, nil
	})

	select {
	case res := <-ch:
		return res.Val.(Result[T])
	case <-ctx.Done():
		return Result[T]{Data: fallback(), Fallback: true, Notice: NoticeFallback, Err: ctx.Err()}
	}
}

// countsAsOutage reports whether err says the service is unreachable or
// misbehaving. A 4xx answer proves the service is up.
func countsAsOutage(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}

func cached[T any](cache *Cache, key Key) (Result[T], bool) {
	v, fb, ok := cache.Get(key)
	if !ok {
		return Result[T]{}, false
	}
	data, ok := v.(T)
	if !ok {
		return Result[T]{}, false
	}
	r := Result[T]{Data: data, Fallback: fb, Cached: true}
	if fb {
		r.Notice = NoticeFallback
	}
	return r, true
}

// probe asks /health whether the service and its data source are up.
// Any decodable health body counts as reachable, whatever the status.
func (c *Client) probe(ctx context.Context) (bool, error) {
	var report catalog.HealthReport
	err := c.getJSON(ctx, c.endpoint("/health", nil), c.opts.ProbeTimeout, &report)
	if err != nil {
		var se *StatusError
		if !errors.As(err, &se) || report.Status == "" {
			return false, err
		}
	}
	return report.Healthy(), nil
}

// getJSON performs one GET under timeout and decodes a 2xx body into v.
// For non-2xx responses v is still decoded when possible and a
// *StatusError is returned; only retryable statuses stay retryable.
func (c *Client) getJSON(ctx context.Context, target string, timeout time.Duration, v any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read %s: %w", target, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{StatusCode: resp.StatusCode}
		var eb catalog.ErrorBody
		if json.Unmarshal(body, &eb) == nil {
			se.Code, se.Message = eb.Code, eb.Error
		}
		_ = json.Unmarshal(body, v)
		if se.Retryable() {
			return se
		}
		return Permanent(se)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return Permanent(fmt.Errorf("decode %s: %w", target, err))
	}
	return nil
}

// Start runs Tick every SweepInterval until ctx ends or Close is called.
func (c *Client) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		go func() {
			defer close(c.done)
			ticker := time.NewTicker(c.opts.SweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-c.stop:
					return
				case <-ticker.C:
					c.Tick(ctx)
				}
			}
		}()
	})
}

// Tick sweeps expired cache entries and re-validates the connection when
// the last probe is stale.
func (c *Client) Tick(ctx context.Context) {
	if n := c.cache.Sweep(); n > 0 {
		c.log.Debug().Int("entries", n).Msg("swept cache")
	}
	c.tracker.Ensure(ctx)
}

// Close stops the background ticker started by Start.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
		c.startOnce.Do(func() { close(c.done) })
		<-c.done
	})
	return nil
}
