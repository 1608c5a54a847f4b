package client

import (
	"encoding/json"
	"strings"

	"flagman/parser/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

type pageParser struct {
	baseURL   string
	maxImages int
}

func newPageParser(baseURL string, maxImages int) *pageParser {
	if maxImages <= 0 {
		maxImages = 15
	}
	return &pageParser{
		baseURL:   baseURL,
		maxImages: maxImages,
	}
}

// ldBrand tolerates both {"name": "Shimano"} and a bare "Shimano".
type ldBrand struct {
	Name string
}

func (b *ldBrand) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b.Name = s
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		b.Name = obj.Name
	}
	// Unknown shapes degrade to an empty brand
	return nil
}

// ldOffers tolerates a single offer object or an array of offers, with
// price as either a JSON number or a string.
type ldOffers struct {
	Price string
}

func (o *ldOffers) UnmarshalJSON(data []byte) error {
	var single struct {
		Price json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(data, &single); err == nil {
		o.Price = rawScalarString(single.Price)
		return nil
	}
	var many []struct {
		Price json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(data, &many); err == nil && len(many) > 0 {
		o.Price = rawScalarString(many[0].Price)
	}
	return nil
}

func rawScalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// ldProduct is the typed projection of a JSON-LD block discriminated by
// @type == "Product".
type ldProduct struct {
	Type   string   `json:"@type"`
	Name   string   `json:"name"`
	SKU    string   `json:"sku"`
	Brand  ldBrand  `json:"brand"`
	Offers ldOffers `json:"offers"`
}

// ldItemList is the typed projection of a listing page's "ItemList" block.
type ldItemList struct {
	Type     string          `json:"@type"`
	Elements []ldListElement `json:"itemListElement"`
}

type ldListElement struct {
	Item struct {
		URL string `json:"url"`
	} `json:"item"`
}

// ParseSubcategories extracts named subcategory links from a category
// index page, deduplicated by canonical URL (last name wins).
func (p *pageParser) ParseSubcategories(doc *goquery.Document) []domain.CategoryRef {
	var refs []domain.CategoryRef
	seen := make(map[string]int)

	doc.Find("a.item-link").Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok || !strings.Contains(href, "/c") {
			return
		}

		name := firstText(link, ".fish-title-mobile", ".category-name")
		if name == "" {
			name = strings.TrimSpace(link.Text())
		}
		if name == "" {
			return
		}

		if !strings.HasPrefix(href, "http") {
			href = p.baseURL + href
		}
		url := domain.CanonicalURL(href)

		if idx, dup := seen[url]; dup {
			refs[idx].Name = name
			return
		}
		seen[url] = len(refs)
		refs = append(refs, domain.CategoryRef{Name: name, URL: url})
	})

	return refs
}

// ParseListingURLs collects item URLs from every JSON-LD ItemList block,
// preserving appearance order. Malformed blocks are skipped.
func (p *pageParser) ParseListingURLs(doc *goquery.Document) []string {
	var urls []string

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var list ldItemList
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			log.Debugf("Skipping malformed ld+json block: %v", err)
			return
		}
		if list.Type != "ItemList" {
			return
		}
		for _, el := range list.Elements {
			if el.Item.URL != "" {
				urls = append(urls, el.Item.URL)
			}
		}
	})

	return urls
}

// ParseProductPage extracts all product fields from a detail page. A nil
// document yields sentinel values and empty containers, never an error.
func (p *pageParser) ParseProductPage(doc *goquery.Document) *domain.ProductPage {
	page := &domain.ProductPage{
		Title: domain.NotAvailable,
		Meta: domain.ProductMeta{
			SKU:   domain.NotAvailable,
			Brand: domain.NotAvailable,
			Price: domain.NotAvailable,
		},
	}
	if doc == nil {
		return page
	}

	meta, hasMeta := p.findProductLD(doc)
	if hasMeta {
		if meta.SKU != "" {
			page.Meta.SKU = meta.SKU
		}
		if meta.Brand.Name != "" {
			page.Meta.Brand = meta.Brand.Name
		}
		if meta.Offers.Price != "" {
			page.Meta.Price = meta.Offers.Price
		}
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" && hasMeta && meta.Name != "" {
		title = meta.Name
	}
	if title != "" {
		page.Title = title
	}

	if desc := firstMatch(doc.Selection, ".product-description-text", ".product-description__content"); desc != nil {
		block := desc.First()
		page.DescriptionPlain = flattenText(block)
		if markup, err := block.Html(); err == nil {
			page.DescriptionRich = strings.TrimSpace(markup)
		}
	}

	if items := firstMatch(doc.Selection, ".chars-items-wrapper .chars-item", ".product-properties__item"); items != nil {
		items.Each(func(_ int, item *goquery.Selection) {
			cells := item.Find("p")
			if cells.Length() < 2 {
				// Not a key/value row
				return
			}
			key := strings.TrimSpace(cells.Eq(0).Text())
			value := strings.TrimSpace(cells.Eq(1).Text())
			if key != "" {
				page.Attributes = append(page.Attributes, domain.Attribute{Key: key, Value: value})
			}
		})
	}

	page.Images = p.parseImages(doc)
	return page
}

// findProductLD returns the first JSON-LD block typed "Product".
// Malformed blocks are skipped and the remaining blocks scanned.
func (p *pageParser) findProductLD(doc *goquery.Document) (ldProduct, bool) {
	var meta ldProduct
	found := false

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}

		var block ldProduct
		if err := json.Unmarshal([]byte(raw), &block); err != nil {
			log.Debugf("Skipping malformed ld+json block: %v", err)
			return true
		}
		if block.Type != "Product" {
			return true
		}
		meta = block
		found = true
		return false
	})

	return meta, found
}

// parseImages collects gallery image URLs in page order, excluding inline
// data URLs and capping the list. An empty gallery falls back to the
// social-preview image.
func (p *pageParser) parseImages(doc *goquery.Document) []string {
	var images []string

	doc.Find(".product-images img").Each(func(_ int, img *goquery.Selection) {
		if len(images) >= p.maxImages {
			return
		}
		src, ok := img.Attr("src")
		if !ok || src == "" || strings.HasPrefix(src, "data:image") {
			return
		}
		images = append(images, src)
	})

	if len(images) == 0 {
		if og, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && og != "" {
			images = append(images, og)
		}
	}

	return images
}

// firstText returns the first non-empty trimmed text among the selector
// candidates, tried in order.
func firstText(root *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if t := strings.TrimSpace(root.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// firstMatch returns the first selector candidate that matches anything.
// A fallback chain, not a strict schema.
func firstMatch(root *goquery.Selection, selectors ...string) *goquery.Selection {
	for _, sel := range selectors {
		if found := root.Find(sel); found.Length() > 0 {
			return found
		}
	}
	return nil
}

// flattenText joins the trimmed text nodes under sel with newlines.
func flattenText(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, "\n")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
