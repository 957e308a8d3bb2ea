package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/roach88/vitrine/internal/catalog"
	"github.com/roach88/vitrine/internal/listing"
)

// Service is what the handlers need from the listing layer.
type Service interface {
	ListProducts(ctx context.Context, params catalog.ListParams) (catalog.ProductPage, error)
	Showcase(ctx context.Context, limit int) (catalog.Showcase, error)
	HotProducts(ctx context.Context, limit int, minSales int64) (catalog.HotProducts, error)
	Categories(ctx context.Context) ([]catalog.CategorySummary, error)
	CategoryCounts(ctx context.Context) (catalog.CategoryCounts, error)
	Health(ctx context.Context) catalog.HealthReport
	DatabaseReport(ctx context.Context) catalog.DatabaseReport
}

var _ Service = (*listing.Service)(nil)

// Handler adapts a Service to gin.
type Handler struct {
	svc Service
}

func (h *Handler) Health(c *gin.Context) {
	report := h.svc.Health(c.Request.Context())
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

func (h *Handler) ListProducts(c *gin.Context) {
	params := catalog.ParseListParams(c.Request.URL.Query())
	page, err := h.svc.ListProducts(c.Request.Context(), params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) Showcase(c *gin.Context) {
	limit := catalog.ClampLimit(c.Query("limit"), catalog.DefaultShowcaseLimit, catalog.MaxShowcaseLimit)
	sc, err := h.svc.Showcase(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

func (h *Handler) HotProducts(c *gin.Context) {
	limit := catalog.ClampLimit(c.Query("limit"), catalog.DefaultHotLimit, catalog.MaxLimit)
	minSales := int64(-1)
	if raw := strings.TrimSpace(c.Query("min_sales")); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n >= 0 {
			minSales = n
		}
	}
	hot, err := h.svc.HotProducts(c.Request.Context(), limit, minSales)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, hot)
}

func (h *Handler) Categories(c *gin.Context) {
	cats, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *Handler) CategoryCounts(c *gin.Context) {
	counts, err := h.svc.CategoryCounts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// DatabaseReport always answers 200; failures are in the body.
func (h *Handler) DatabaseReport(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.DatabaseReport(c.Request.Context()))
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(listing.StatusOf(err), catalog.ErrorBody{
		Error: listing.MessageOf(err),
		Code:  string(listing.CodeOf(err)),
	})
}
