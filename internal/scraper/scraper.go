// Package scraper implements the bundled review harvester: plain HTTP fetch
// plus HTML text extraction with per-source selector hints. Sources that need
// a headless browser are out of scope; their registry entries use the same
// generic extraction.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/retry"
	"golang.org/x/net/html"
)

const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	fetchTimeout = 30 * time.Second
	minTextLen   = 20
	maxTextLen   = 2000
)

// genericHints match common review container class names across sites.
var genericHints = []string{
	"review-text", "review-content", "review-body", "comment-text",
	"user-review", "feedback-text", "customer-review", "post-content",
	"entry-content",
}

// sourceHints adds site-specific class hints on top of the generic set.
var sourceHints = map[string][]string{
	"google_maps": {"wiI7pd", "review-full-text"},
	"tripadvisor": {"partial_entry", "reviewText", "QewHA"},
	"yelp":        {"comment", "review-content"},
	"amazon":      {"review-text", "review-text-content", "a-expander-content"},
	"hotel":       {"review_item_review_content", "hotel-review"},
	"generic":     nil,
}

// HTTPHarvester implements domain.Harvester over plain HTTP.
type HTTPHarvester struct {
	client     *http.Client
	maxReviews int
}

// NewHTTPHarvester creates a harvester that retrieves at most maxReviews items
// per run.
func NewHTTPHarvester(maxReviews int) *HTTPHarvester {
	return &HTTPHarvester{
		client:     &http.Client{Timeout: fetchTimeout},
		maxReviews: maxReviews,
	}
}

// Known reports whether the source identifier is registered.
func (h *HTTPHarvester) Known(source string) bool {
	_, ok := sourceHints[source]
	return ok
}

// Sources lists the registered source identifiers.
func Sources() []string {
	return []string{"google_maps", "tripadvisor", "yelp", "amazon", "hotel", "generic"}
}

// Harvest fetches the page and extracts candidate review texts in document
// order. It fails with ErrHarvestFailed when the page cannot be retrieved or
// yields no usable text; an empty result is never silently returned.
func (h *HTTPHarvester) Harvest(ctx context.Context, source, rawURL string) ([]string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: url must start with http:// or https://", domain.ErrInvalidInput)
	}

	doc, err := retry.Do(ctx, fetchPolicy(), classifyFetchError, func() (*html.Node, error) {
		return h.fetch(ctx, rawURL)
	})
	if err != nil {
		return nil, err
	}

	hints := append([]string{}, genericHints...)
	hints = append(hints, sourceHints[source]...)

	reviews := h.extract(doc, hints)
	if len(reviews) == 0 {
		return nil, fmt.Errorf("%w: no reviews found at %s", domain.ErrHarvestFailed, rawURL)
	}
	return reviews, nil
}

// fetch retrieves and parses the page once. Status errors carry the code so
// the retry classifier can tell rate limiting from permanent failures.
func (h *HTTPHarvester) fetch(ctx context.Context, rawURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHarvestFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", domain.ErrHarvestFailed, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{url: rawURL, status: resp.StatusCode}
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrHarvestFailed, rawURL, err)
	}
	return doc, nil
}

type statusError struct {
	url    string
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.url, e.status)
}

// statusError represents harvest failure regardless of the code.
func (e *statusError) Unwrap() error { return domain.ErrHarvestFailed }

func fetchPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:      3,
		InitialBackoff:   500 * time.Millisecond,
		RateLimitBackoff: 5 * time.Second,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Retrying page fetch", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
}

// classifyFetchError retries network and server-side failures, backs off
// longer when rate limited, and gives up on client errors like 404.
func classifyFetchError(err error) retry.Action {
	var statusErr *statusError
	if !errors.As(err, &statusErr) {
		return retry.Retry
	}
	switch {
	case statusErr.status == http.StatusTooManyRequests:
		return retry.After
	case statusErr.status >= 500:
		return retry.Retry
	default:
		return retry.Stop
	}
}

// extract walks the DOM twice: first collecting text from elements whose class
// matches a hint, then falling back to paragraphs and articles when no hinted
// container exists on the page.
func (h *HTTPHarvester) extract(doc *html.Node, hints []string) []string {
	seen := make(map[string]struct{})
	var reviews []string

	add := func(text string) bool {
		text = collapseWhitespace(text)
		if len(text) < minTextLen || len(text) > maxTextLen {
			return false
		}
		if _, dup := seen[text]; dup {
			return false
		}
		seen[text] = struct{}{}
		reviews = append(reviews, text)
		return len(reviews) >= h.maxReviews
	}

	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && classMatches(n, hints) {
			return add(textContent(n))
		}
		return false
	})

	if len(reviews) == 0 {
		walk(doc, func(n *html.Node) bool {
			if n.Type == html.ElementNode && (n.Data == "p" || n.Data == "article") {
				return add(textContent(n))
			}
			return false
		})
	}

	return reviews
}

// walk traverses the DOM depth-first, skipping non-content subtrees. visit
// returns true to stop the traversal.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "nav", "footer", "header", "noscript":
			return false
		}
	}
	if visit(n) {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if walk(c, visit) {
			return true
		}
	}
	return false
}

func classMatches(n *html.Node, hints []string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(attr.Val) {
			for _, hint := range hints {
				if class == hint {
					return true
				}
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
