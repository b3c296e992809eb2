package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"RecipeKeeper/internal/domain"
	"RecipeKeeper/internal/ports"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	fetchTimeout     = 10 * time.Second
)

var (
	// ErrPageUnavailable reports that the page could not be fetched or parsed.
	ErrPageUnavailable = errors.New("page unavailable")
	// ErrNoRecipe reports that the page yielded no usable recipe title.
	ErrNoRecipe = errors.New("no recipe found")
)

// SiteImporter fetches an external recipe page and extracts a draft recipe
// from it. Each invocation owns its own document; importers are safe for
// concurrent use.
type SiteImporter struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.RecipeImporter = (*SiteImporter)(nil)

// NewSiteImporter wires an HTTP client; a nil client gets the default fetch timeout.
func NewSiteImporter(client *http.Client, log *slog.Logger) *SiteImporter {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &SiteImporter{client: client, logger: log}
}

// Import retrieves the page and runs every field extractor over it. A fetch
// failure or an absent title fails the whole import; every other field
// degrades to its fallback.
func (s *SiteImporter) Import(ctx context.Context, pageURL string) (domain.ParsedRecipe, error) {
	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		s.debug("fetch failed", "url", pageURL, "error", err)
		return domain.ParsedRecipe{}, fmt.Errorf("%w: %v", ErrPageUnavailable, err)
	}

	recipe := domain.ParsedRecipe{
		Title:        extractTitle(doc),
		Description:  extractDescription(doc),
		Instructions: extractInstructions(doc),
		Ingredients:  extractIngredients(doc),
		CookingTime:  extractCookingTime(doc),
		Servings:     extractServings(doc),
	}

	if recipe.Title == "" || recipe.Title == placeholderTitle {
		return domain.ParsedRecipe{}, fmt.Errorf("%w: %s", ErrNoRecipe, pageURL)
	}

	s.debug("page imported", "url", pageURL, "title", recipe.Title, "ingredients", len(recipe.Ingredients))
	return recipe, nil
}

func (s *SiteImporter) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	return doc, nil
}

func (s *SiteImporter) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
