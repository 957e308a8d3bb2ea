package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vitrine/internal/catalog"
	"github.com/roach88/vitrine/internal/config"
	"github.com/roach88/vitrine/internal/listing"
	"github.com/roach88/vitrine/internal/store"
	"github.com/roach88/vitrine/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const testRequestID = "req-fixed"

func newTestRouter(t *testing.T, opts RouterOptions) (*gin.Engine, *store.Store) {
	t.Helper()
	st := testutil.NewCatalogStore(t)
	svc := listing.NewService(st, listing.Options{
		DatabasePath: st.Path(),
		Environment:  config.Testing,
		Now:          testutil.NewFakeClock(testNow).Now,
	})
	if opts.RequestIDs == nil {
		opts.RequestIDs = testutil.NewFixedIDGenerator(testRequestID)
	}
	return NewRouter(svc, opts), st
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func pretty(t *testing.T, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.Indent(&buf, body, "", "  "))
	buf.WriteByte('\n')
	return buf.Bytes()
}

func assertGolden(t *testing.T, name string, w *httptest.ResponseRecorder) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, pretty(t, w.Body.Bytes()))
}

func TestRouter_Golden(t *testing.T) {
	r, _ := newTestRouter(t, RouterOptions{})

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"health", "/health", http.StatusOK},
		{"categories", "/categories", http.StatusOK},
		{"category_counts", "/categories/counts", http.StatusOK},
		{"not_found", "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, r, tt.path)
			require.Equal(t, tt.status, w.Code)
			assertGolden(t, tt.name, w)
		})
	}
}

func TestRouter_APIAliases(t *testing.T) {
	r, _ := newTestRouter(t, RouterOptions{})

	paths := []string{
		"/health",
		"/products?limit=3",
		"/products/showcase?limit=4",
		"/products/hot?limit=2",
		"/categories",
		"/categories/counts",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			plain := get(t, r, p)
			prefixed := get(t, r, catalog.APIBase+p)
			require.Equal(t, http.StatusOK, plain.Code)
			assert.Equal(t, plain.Code, prefixed.Code)
			assert.JSONEq(t, plain.Body.String(), prefixed.Body.String())
		})
	}
}

func TestRouter_ListProducts(t *testing.T) {
	r, _ := newTestRouter(t, RouterOptions{})

	t.Run("category and price sort", func(t *testing.T) {
		w := get(t, r, "/api/products?category=100001&sort=price_asc")
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[catalog.ProductPage](t, w)

		assert.Equal(t, 3, page.Total)
		prices := make([]float64, len(page.Products))
		for i, p := range page.Products {
			prices[i] = p.Price
		}
		assert.Equal(t, []float64{39.9, 59.9, 89.0}, prices)
	})

	t.Run("price range", func(t *testing.T) {
		w := get(t, r, "/products?price_range=40-100")
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[catalog.ProductPage](t, w)
		assert.Equal(t, 3, page.Total)
		for _, p := range page.Products {
			assert.GreaterOrEqual(t, p.Price, 40.0)
			assert.LessOrEqual(t, p.Price, 100.0)
		}
	})

	t.Run("garbage params fall back to defaults", func(t *testing.T) {
		w := get(t, r, "/products?page=zero&limit=-5&sort=random&price_range=abc")
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[catalog.ProductPage](t, w)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, catalog.DefaultLimit, page.Limit)
		assert.Equal(t, 6, page.Total)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		w := get(t, r, "/products?search=%25")
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[catalog.ProductPage](t, w)
		assert.Equal(t, 0, page.Total)
		assert.NotNil(t, page.Products)
	})

	t.Run("derived fields", func(t *testing.T) {
		w := get(t, r, "/products?search=TERM%C3%94METRO")
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[catalog.ProductPage](t, w)
		require.Len(t, page.Products, 1)
		assert.Equal(t, 50, page.Products[0].DiscountPercent)
		assert.Equal(t, 8.0, page.Products[0].CommissionPercent)
		assert.NotEmpty(t, page.Products[0].FormattedPrice)
	})
}

func TestRouter_ShowcaseAndHot(t *testing.T) {
	r, _ := newTestRouter(t, RouterOptions{})

	w := get(t, r, "/products/showcase?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	sc := decode[catalog.Showcase](t, w)
	assert.Equal(t, 2, sc.Count)
	assert.Equal(t, testNow, sc.Timestamp)

	w = get(t, r, "/products/hot?min_sales=1000")
	require.Equal(t, http.StatusOK, w.Code)
	hot := decode[catalog.HotProducts](t, w)
	assert.Equal(t, 3, hot.Count)
	assert.Equal(t, int64(1000), hot.MinSales)

	w = get(t, r, "/products/hot?min_sales=-4")
	require.Equal(t, http.StatusOK, w.Code)
	hot = decode[catalog.HotProducts](t, w)
	assert.Equal(t, int64(catalog.DefaultHotMinSales), hot.MinSales)
}

func TestRouter_StoreDown(t *testing.T) {
	r, st := newTestRouter(t, RouterOptions{})
	require.NoError(t, st.Close())

	t.Run("health reports 503 with a report body", func(t *testing.T) {
		w := get(t, r, "/api/health")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		report := decode[catalog.HealthReport](t, w)
		assert.Equal(t, catalog.StatusError, report.Status)
		assert.Equal(t, catalog.DatabaseDisconnected, report.DatabaseStatus)
		assert.NotEmpty(t, report.DatabaseError)
	})

	for _, p := range []string{"/products", "/products/showcase", "/products/hot", "/categories", "/categories/counts"} {
		t.Run(p, func(t *testing.T) {
			w := get(t, r, p)
			require.Equal(t, http.StatusServiceUnavailable, w.Code)
			body := decode[catalog.ErrorBody](t, w)
			assert.Equal(t, string(listing.ErrCodeUnavailable), body.Code)
			assert.Equal(t, "database unavailable", body.Error)
		})
	}

	t.Run("debug report still answers 200", func(t *testing.T) {
		w := get(t, r, "/debug/database")
		require.Equal(t, http.StatusOK, w.Code)
		report := decode[catalog.DatabaseReport](t, w)
		assert.True(t, report.DatabaseExists)
		assert.NotEmpty(t, report.Error)
	})
}

func TestRouter_DebugDatabase(t *testing.T) {
	r, st := newTestRouter(t, RouterOptions{})

	w := get(t, r, "/api/debug/database")
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[catalog.DatabaseReport](t, w)
	assert.Equal(t, st.Path(), report.DatabasePath)
	assert.True(t, report.DatabaseExists)
	assert.Equal(t, 7, report.ProductCount)
	assert.Empty(t, report.Error)
}

func TestRouter_RequestID(t *testing.T) {
	r, _ := newTestRouter(t, RouterOptions{})

	w := get(t, r, "/health")
	assert.Equal(t, testRequestID, w.Header().Get(HeaderRequestID))

	inbound := "0190a5f2-7b3c-7d4e-8f00-112233445566"
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, inbound)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, inbound, w.Header().Get(HeaderRequestID))
}

func TestRouter_CORS(t *testing.T) {
	r, _ := newTestRouter(t, RouterOptions{CORSOrigins: []string{"https://shop.example"}})

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.Header.Set("Origin", "https://shop.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	r, _ := newTestRouter(t, RouterOptions{RateLimit: 1, Burst: 2})

	assert.Equal(t, http.StatusOK, get(t, r, "/health").Code)
	assert.Equal(t, http.StatusOK, get(t, r, "/health").Code)

	w := get(t, r, "/health")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decode[catalog.ErrorBody](t, w)
	assert.Equal(t, string(listing.ErrCodeRateLimited), body.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
