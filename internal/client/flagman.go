package client

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"flagman/parser/internal/config"
	"flagman/parser/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

type FlagmanClient interface {
	GetSubcategories(ctx context.Context, rootURL string) ([]domain.CategoryRef, error)
	CollectProductURLs(ctx context.Context, categoryURL string, maxPages int) ([]string, error)
	GetProductPage(ctx context.Context, pageURL string, locale domain.Locale) (*domain.ProductPage, error)
}

type flagmanClient struct {
	rl         ratelimit.Limiter
	config     config.FlagmanConfig
	baseURL    string
	httpClient *resty.Client
	parser     *pageParser
}

func NewFlagmanClient(cfg config.FlagmanConfig) FlagmanClient {
	httpClient := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Referer", cfg.BaseURL+"/")

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &flagmanClient{
		rl:         rl,
		config:     cfg,
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		parser:     newPageParser(cfg.BaseURL, cfg.MaxImages),
	}
}

func (c *flagmanClient) GetSubcategories(ctx context.Context, rootURL string) ([]domain.CategoryRef, error) {
	rootURL = domain.CanonicalURL(rootURL)

	doc, err := c.fetchDocument(ctx, rootURL, domain.LocaleUA)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category page: %w", err)
	}

	refs := c.parser.ParseSubcategories(doc)
	if len(refs) == 0 {
		// No subcategory links means the page lists products directly,
		// so the page itself is the single leaf category.
		refs = []domain.CategoryRef{{Name: domain.FallbackCategoryName, URL: rootURL}}
	}

	log.Debugf("Resolved %d subcategories for %s", len(refs), rootURL)
	return refs, nil
}

func (c *flagmanClient) CollectProductURLs(ctx context.Context, categoryURL string, maxPages int) ([]string, error) {
	var all []string

	for page := 1; ; page++ {
		if maxPages > 0 && page > maxPages {
			break
		}

		pageURL := categoryURL
		if page > 1 {
			pageURL = fmt.Sprintf("%s/page=%d", categoryURL, page)
		}

		doc, err := c.fetchDocument(ctx, pageURL, domain.LocaleUA)
		if err != nil {
			// Page absent or blocked ends the walk; what we have is kept.
			log.Warnf("Stopping pagination for %s at page %d: %v", categoryURL, page, err)
			break
		}

		pageLinks := c.parser.ParseListingURLs(doc)
		if len(pageLinks) == 0 {
			// Past the last page
			break
		}

		all = append(all, pageLinks...)
		c.politenessDelay(c.config.PageDelayMs)
	}

	urls := dedupeStable(all)
	log.Debugf("Collected %d unique product URLs from %s", len(urls), categoryURL)
	return urls, nil
}

func (c *flagmanClient) GetProductPage(ctx context.Context, pageURL string, locale domain.Locale) (*domain.ProductPage, error) {
	doc, err := c.fetchDocument(ctx, domain.LocaleURL(pageURL, locale), locale)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product page: %w", err)
	}
	return c.parser.ParseProductPage(doc), nil
}

// fetchDocument performs a single locale-aware GET. No retries: a failure
// is reported to the caller, which decides whether the queue position
// gets another pass.
func (c *flagmanClient) fetchDocument(ctx context.Context, url string, locale domain.Locale) (*goquery.Document, error) {
	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Accept-Language", locale.AcceptLanguage()).
		SetCookie(&http.Cookie{Name: "i18n_redirected", Value: locale.CookieValue()}).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// politenessDelay sleeps for the configured delay plus jitter between
// consecutive fetches.
func (c *flagmanClient) politenessDelay(baseMs int) {
	if baseMs <= 0 {
		return
	}
	delay := time.Duration(baseMs) * time.Millisecond
	if j := c.config.DelayJitterMs; j > 0 {
		delay += time.Duration(rand.IntN(j)) * time.Millisecond
	}
	time.Sleep(delay)
}

// dedupeStable removes duplicate URLs preserving first occurrence order.
func dedupeStable(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
