package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"flagman/parser/internal/client"
	"flagman/parser/internal/config"
	"flagman/parser/internal/domain"
	"flagman/parser/internal/session"

	log "github.com/sirupsen/logrus"
)

// ProgressFunc observes batch progress after each processed item.
// position is 1-based within the whole queue.
type ProgressFunc func(position, total, inserted int)

// BatchOptions parameterizes one orchestrator invocation.
type BatchOptions struct {
	// Start is the 0-based queue offset to begin at. Negative means
	// resume from the session cursor.
	Start int
	// Size bounds how many queue positions this batch processes.
	Size int
	// SKUFilter, when non-nil, restricts insertion to the listed codes.
	SKUFilter map[string]struct{}
	// Progress, when set, is invoked after every item.
	Progress ProgressFunc
}

// BatchResult summarizes one orchestrator invocation.
type BatchResult struct {
	Cursor    int `json:"cursor"`
	Processed int `json:"processed"`
	Inserted  int `json:"inserted"`
}

type Service struct {
	client      client.FlagmanClient
	itemDelay   time.Duration
	delayJitter time.Duration
}

func NewService(client client.FlagmanClient, cfg config.FlagmanConfig) *Service {
	return &Service{
		client:      client,
		itemDelay:   time.Duration(cfg.ItemDelayMs) * time.Millisecond,
		delayJitter: time.Duration(cfg.DelayJitterMs) * time.Millisecond,
	}
}

// ResolveCategories fetches the root category page and stores the
// discovered subcategory refs on the session.
func (s *Service) ResolveCategories(ctx context.Context, sess *session.Session, rootURL string) ([]domain.CategoryRef, error) {
	rootURL = strings.TrimSpace(rootURL)
	if rootURL == "" {
		return nil, fmt.Errorf("category URL is empty")
	}

	refs, err := s.client.GetSubcategories(ctx, rootURL)
	if err != nil {
		return nil, err
	}

	sess.SetCategories(refs)
	log.Infof("🔍 Resolved %d categories for %s", len(refs), rootURL)
	return refs, nil
}

// CollectProductURLs walks the listing pages of each selected category,
// concatenates the results and installs the deduplicated queue on the
// session. maxPages of 0 means unbounded.
func (s *Service) CollectProductURLs(ctx context.Context, sess *session.Session, categoryURLs []string, maxPages int) ([]string, error) {
	if len(categoryURLs) == 0 {
		return nil, fmt.Errorf("no categories selected")
	}
	if maxPages < 0 {
		return nil, fmt.Errorf("page limit must not be negative")
	}

	var all []string
	for _, categoryURL := range categoryURLs {
		urls, err := s.client.CollectProductURLs(ctx, categoryURL, maxPages)
		if err != nil {
			return nil, err
		}
		all = append(all, urls...)
	}

	queue := dedupeStable(all)
	sess.SetQueue(queue)
	log.Infof("🔎 Built crawl queue with %d unique product URLs from %d categories", len(queue), len(categoryURLs))
	return queue, nil
}

// RunBatch processes the queue slice [start, min(start+size, len)) in
// order and folds newly extracted records into the session result set.
// The cursor always advances to one past the slice end, filter misses
// and fetch failures included.
func (s *Service) RunBatch(ctx context.Context, sess *session.Session, opts BatchOptions) (BatchResult, error) {
	queue := sess.Queue()
	total := len(queue)
	if total == 0 {
		return BatchResult{}, fmt.Errorf("product queue is empty")
	}

	start := opts.Start
	if start < 0 {
		start = sess.Cursor()
	}
	if start > total {
		return BatchResult{}, fmt.Errorf("batch start %d is past the end of the queue (%d)", start, total)
	}
	if opts.Size < 1 {
		return BatchResult{}, fmt.Errorf("batch size must be positive")
	}

	end := min(start+opts.Size, total)
	res := BatchResult{Cursor: start}

	for i := start; i < end; i++ {
		link := queue[i]
		log.Debugf("Checking %d of %d: %s", i+1, total, link)

		uaPage, err := s.client.GetProductPage(ctx, link, domain.LocaleUA)
		if err != nil {
			// Skipped for this attempt; the same range can be re-run later.
			log.Warnf("Canonical locale fetch failed for %s: %v", link, err)
			s.finishItem(&res, i, total, opts.Progress)
			continue
		}

		sku := uaPage.Meta.SKU
		if opts.SKUFilter != nil {
			if _, match := opts.SKUFilter[sku]; !match {
				// Non-matching codes never trigger an alternate-locale fetch.
				s.finishItem(&res, i, total, opts.Progress)
				continue
			}
		}

		record := s.pairRecord(ctx, link, uaPage)
		if sess.Results().Add(record) {
			res.Inserted++
			log.Infof("✅ Saved product %s (%d of %d)", record.Code, i+1, total)
		} else {
			log.Debugf("Duplicate product %s skipped", record.Code)
		}

		s.finishItem(&res, i, total, opts.Progress)
		s.interItemDelay()
	}

	res.Cursor = end
	sess.SetCursor(end)
	return res, nil
}

// ExtractPairedRecord fetches and merges both locale variants of one
// product URL. The canonical locale must fetch; the alternate degrades
// to sentinel fields on failure.
func (s *Service) ExtractPairedRecord(ctx context.Context, productURL string) (*domain.ProductRecord, error) {
	uaPage, err := s.client.GetProductPage(ctx, productURL, domain.LocaleUA)
	if err != nil {
		return nil, fmt.Errorf("failed to extract canonical locale: %w", err)
	}
	return s.pairRecord(ctx, productURL, uaPage), nil
}

// pairRecord merges an already-extracted canonical page with its
// alternate-locale twin. Canonical supplies the locale-invariant fields.
func (s *Service) pairRecord(ctx context.Context, link string, uaPage *domain.ProductPage) *domain.ProductRecord {
	s.interItemDelay()

	ruPage, err := s.client.GetProductPage(ctx, link, domain.LocaleRU)
	if err != nil {
		log.Warnf("Alternate locale fetch failed for %s: %v", link, err)
		ruPage = &domain.ProductPage{Title: domain.NotAvailable}
	}

	return &domain.ProductRecord{
		Code:  uaPage.Meta.SKU,
		Brand: uaPage.Meta.Brand,
		Price: uaPage.Meta.Price,

		TitleUA: uaPage.Title,
		TitleRU: ruPage.Title,

		DescriptionPlainUA: uaPage.DescriptionPlain,
		DescriptionRichUA:  uaPage.DescriptionRich,
		DescriptionPlainRU: ruPage.DescriptionPlain,
		DescriptionRichRU:  ruPage.DescriptionRich,

		Images: uaPage.Images,

		AttributesUA: domain.FilteredAttributes(uaPage.Attributes),
		AttributesRU: domain.FilteredAttributes(ruPage.Attributes),

		LinkUA: domain.CanonicalURL(link),
		LinkRU: domain.AlternateURL(link),
	}
}

func (s *Service) finishItem(res *BatchResult, index, total int, progress ProgressFunc) {
	res.Processed++
	if progress != nil {
		progress(index+1, total, res.Inserted)
	}
}

func (s *Service) interItemDelay() {
	if s.itemDelay <= 0 {
		return
	}
	delay := s.itemDelay
	if s.delayJitter > 0 {
		delay += rand.N(s.delayJitter)
	}
	time.Sleep(delay)
}

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
