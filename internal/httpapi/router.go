package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roach88/vitrine/internal/catalog"
	"github.com/roach88/vitrine/internal/listing"
	"github.com/roach88/vitrine/internal/logx"
)

// RouterOptions configure NewRouter.
type RouterOptions struct {
	Logger *zerolog.Logger

	// RateLimit is requests per second per client IP. Zero disables it.
	RateLimit float64
	Burst     int

	// CORSOrigins lists allowed origins. "*" or empty allows all.
	CORSOrigins []string

	// RequestIDs defaults to UUIDv7Generator.
	RequestIDs IDGenerator

	// Limiter overrides the limiter built from RateLimit and Burst.
	Limiter *IPRateLimiter
}

// NewRouter builds the gin engine serving svc.
func NewRouter(svc Service, opts RouterOptions) *gin.Engine {
	log := logx.OrNop(opts.Logger)
	if opts.RequestIDs == nil {
		opts.RequestIDs = UUIDv7Generator{}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID(opts.RequestIDs))
	r.Use(AccessLog(log))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	limiter := opts.Limiter
	if limiter == nil && opts.RateLimit > 0 {
		limiter = NewIPRateLimiter(opts.RateLimit, opts.Burst, 3*time.Minute)
	}
	if limiter != nil {
		r.Use(limiter.Middleware())
	}

	h := &Handler{svc: svc}
	routes := []struct {
		path    string
		handler gin.HandlerFunc
	}{
		{"/health", h.Health},
		{"/products", h.ListProducts},
		{"/products/showcase", h.Showcase},
		{"/products/hot", h.HotProducts},
		{"/categories", h.Categories},
		{"/categories/counts", h.CategoryCounts},
		{"/debug/database", h.DatabaseReport},
	}
	for _, rt := range routes {
		r.GET(rt.path, rt.handler)
		r.GET(catalog.APIBase+rt.path, rt.handler)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, catalog.ErrorBody{
			Error: "not found",
			Code:  string(listing.ErrCodeNotFound),
		})
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	cfg.AllowHeaders = append(cfg.AllowHeaders, HeaderRequestID)
	cfg.ExposeHeaders = []string{HeaderRequestID}
	cfg.MaxAge = 12 * time.Hour

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
