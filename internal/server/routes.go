package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Pipeline API
	s.echo.POST("/api/analyze", s.handleAnalyze)
	s.echo.POST("/api/scrape", s.handleScrape, s.scrapeRateLimiter())
	s.echo.GET("/api/analytics", s.handleAnalytics)
	s.echo.GET("/api/reviews", s.handleListReviews)

	// Live aggregate view push
	s.echo.GET("/ws/analytics", s.handleWebSocket)
}
