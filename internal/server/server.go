package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pscheid92/reviewpulse/internal/config"
	"github.com/pscheid92/reviewpulse/internal/domain"
	apperrors "github.com/pscheid92/reviewpulse/internal/errors"
	"github.com/pscheid92/reviewpulse/internal/websocket"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Server is the HTTP surface over the analytics facade.
type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       domain.AppService
	hub       *websocket.Hub
	db        *pgxpool.Pool   // nil when running on the in-memory store
	redis     *goredis.Client // nil when Redis is not configured
	startTime time.Time
}

// NewServer creates the HTTP server. db and redisClient may be nil.
func NewServer(cfg *config.Config, app domain.AppService, hub *websocket.Hub, db *pgxpool.Pool, redisClient *goredis.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       app,
		hub:       hub,
		db:        db,
		redis:     redisClient,
		startTime: time.Now(),
	}

	srv.registerRoutes()
	return srv
}

// scrapeRateLimiter throttles the scrape endpoint; harvests are expensive and
// hammer external sites.
func (s *Server) scrapeRateLimiter() echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(s.config.ScrapeRatePerMinute / 60.0),
		Burst:     s.config.ScrapeBurst,
		ExpiresIn: 10 * time.Minute,
	})
	return middleware.RateLimiter(store)
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
