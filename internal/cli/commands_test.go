package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vitrine/internal/catalog"
	"github.com/roach88/vitrine/internal/httpapi"
	"github.com/roach88/vitrine/internal/listing"
	"github.com/roach88/vitrine/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// seededDB seeds the sample catalog into a fresh database file.
func seededDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "vitrine.db")
	_, err := execute(t, "seed", "--db", db, testutil.CatalogFixturePath())
	require.NoError(t, err)
	return db
}

func TestSeed(t *testing.T) {
	db := filepath.Join(t.TempDir(), "vitrine.db")

	out, err := execute(t, "--format", "json", "seed", "--db", db, testutil.CatalogFixturePath())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   SeedResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, SeedResult{Database: db, Categories: 4, Products: 7}, resp.Data)

	// Seeding again upserts.
	out, err = execute(t, "seed", "--db", db, testutil.CatalogFixturePath())
	require.NoError(t, err)
	assert.Contains(t, out, "4 categories, 7 products")
}

func TestSeed_MissingFixture(t *testing.T) {
	db := filepath.Join(t.TempDir(), "vitrine.db")

	_, err := execute(t, "seed", "--db", db, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestList_JSON(t *testing.T) {
	db := seededDB(t)

	out, err := execute(t, "--format", "json", "list", "--db", db, "--category", "100001")
	require.NoError(t, err)

	var resp struct {
		Data catalog.ProductPage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Page)
	assert.Equal(t, catalog.DefaultLimit, resp.Data.Limit)
	for _, p := range resp.Data.Products {
		assert.Equal(t, "100001", p.CategoryID)
	}
}

func TestList_Text(t *testing.T) {
	db := seededDB(t)

	out, err := execute(t, "list", "--db", db, "--limit", "2", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "PRICE")
	assert.Contains(t, out, "page 2/3, 6 products")
}

func TestList_MissingDatabase(t *testing.T) {
	_, err := execute(t, "list", "--db", filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

type probeOutput struct {
	Data struct {
		Target     string `json:"target"`
		Fallback   bool   `json:"fallback"`
		Notice     string `json:"notice"`
		Error      string `json:"error"`
		Connection struct {
			State     string `json:"state"`
			Connected bool   `json:"connected"`
		} `json:"connection"`
		Data json.RawMessage `json:"data"`
	} `json:"data"`
}

func catalogServer(t *testing.T) string {
	t.Helper()
	svc := listing.NewService(testutil.NewCatalogStore(t), listing.Options{})
	srv := httptest.NewServer(httpapi.NewRouter(svc, httpapi.RouterOptions{}))
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func TestProbe_Live(t *testing.T) {
	base := catalogServer(t)

	out, err := execute(t, "--format", "json", "probe", "products", "--base-url", base, "--category", "100630")
	require.NoError(t, err)

	var resp probeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "products", resp.Data.Target)
	assert.False(t, resp.Data.Fallback)
	assert.Equal(t, "connected", resp.Data.Connection.State)

	var page catalog.ProductPage
	require.NoError(t, json.Unmarshal(resp.Data.Data, &page))
	assert.Equal(t, 2, page.Total)
}

func TestProbe_HealthText(t *testing.T) {
	base := catalogServer(t)

	out, err := execute(t, "probe", "health", "--base-url", base)
	require.NoError(t, err)
	assert.Contains(t, out, "health: connection connected, data source available: true")
}

func TestProbe_FallbackExitsNonZero(t *testing.T) {
	t.Setenv("API_RETRIES", "0")
	t.Setenv("API_PROBE_TIMEOUT", "1s")
	t.Setenv("API_TIMEOUT", "1s")

	out, err := execute(t, "--format", "json", "probe", "categories", "--base-url", "http://127.0.0.1:1/api")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp probeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.Fallback)
	assert.NotEmpty(t, resp.Data.Notice)
	assert.NotEmpty(t, resp.Data.Error)
	assert.False(t, resp.Data.Connection.Connected)

	var cats []catalog.CategorySummary
	require.NoError(t, json.Unmarshal(resp.Data.Data, &cats))
	assert.NotEmpty(t, cats)
}

func TestServe(t *testing.T) {
	db := seededDB(t)
	ready := make(chan string, 1)

	ctx, cancel := context.WithCancel(context.Background())
	root := &RootOptions{Format: "text", EnvFile: filepath.Join(t.TempDir(), "missing.env")}
	opts := &ServeOptions{RootOptions: root, Database: db, Addr: "127.0.0.1:0", Ready: ready}
	cmd := NewServeCommand(root)
	cmd.SetOut(io.Discard)
	cmd.SetContext(ctx)

	done := make(chan error, 1)
	go func() { done <- runServe(opts, cmd) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	for _, path := range []string{"/api/health", "/health"} {
		resp, err := http.Get("http://" + addr + path)
		require.NoError(t, err)
		var report catalog.HealthReport
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, catalog.StatusOK, report.Status)
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
