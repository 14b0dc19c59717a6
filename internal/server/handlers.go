package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	apperrors "github.com/pscheid92/reviewpulse/internal/errors"
)

type analyzeRequest struct {
	Text string `json:"text"`
}

type scrapeRequest struct {
	Source string `json:"source"`
	URL    string `json:"url"`
}

// scrapeResultItem is the per-review shape of the scrape response.
type scrapeResultItem struct {
	ID           int64   `json:"id"`
	OriginalText string  `json:"original_text"`
	Sentiment    string  `json:"sentiment"`
	Emotion      string  `json:"emotion"`
	Confidence   float64 `json:"confidence"`
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	result, err := s.app.AnalyzeText(c.Request().Context(), req.Text)
	if err != nil {
		return apperrors.FromDomain(err)
	}

	if err := c.JSON(http.StatusOK, result); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleScrape(c echo.Context) error {
	var req scrapeRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	result, err := s.app.RunHarvest(c.Request().Context(), req.Source, req.URL)
	if err != nil {
		return apperrors.FromDomain(err).
			WithField("source", req.Source).
			WithField("url", req.URL)
	}

	items := make([]scrapeResultItem, 0, len(result.Reviews))
	for _, hr := range result.Reviews {
		items = append(items, scrapeResultItem{
			ID:           hr.Review.ID,
			OriginalText: hr.Review.Text,
			Sentiment:    hr.Review.Sentiment,
			Emotion:      hr.Review.Emotion,
			Confidence:   hr.Review.Confidence,
		})
	}

	if err := c.JSON(http.StatusOK, map[string]any{
		"job_id":        result.JobID.String(),
		"source":        result.Source,
		"url":           result.URL,
		"total_reviews": result.TotalHarvested,
		"skipped":       result.Skipped,
		"results":       items,
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleAnalytics(c echo.Context) error {
	view, err := s.app.GetAnalytics(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to compute analytics", err)
	}

	if err := c.JSON(http.StatusOK, view); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListReviews(c echo.Context) error {
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 20)

	reviews, total, err := s.app.ListReviews(c.Request().Context(), page, perPage)
	if err != nil {
		return apperrors.InternalError("failed to list reviews", err)
	}

	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}

	if err := c.JSON(http.StatusOK, map[string]any{
		"reviews":      reviews,
		"total":        total,
		"pages":        pages,
		"current_page": page,
		"per_page":     perPage,
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard may be served from a different origin than the API.
	CheckOrigin: func(*http.Request) bool { return true },
}

func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return apperrors.ValidationError("websocket upgrade failed")
	}

	// Seed the new client with the current view before streaming updates.
	if view, err := s.app.GetAnalytics(c.Request().Context()); err == nil {
		_ = conn.WriteJSON(view)
	}

	s.hub.Register(conn)
	return nil
}

func queryInt(c echo.Context, name string, defaultValue int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return defaultValue
	}
	return value
}
