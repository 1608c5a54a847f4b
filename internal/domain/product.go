package domain

// NotAvailable is the sentinel for fields that could not be extracted.
const NotAvailable = "N/A"

// Attribute is one characteristic row from a product page. Order of
// attributes follows the page, so export columns stay stable.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ProductMeta is the typed projection of a page's JSON-LD Product block.
type ProductMeta struct {
	SKU   string `json:"sku"`
	Brand string `json:"brand"`
	Price string `json:"price"`
}

// ProductPage holds everything extracted from one locale's product page.
type ProductPage struct {
	Title            string      `json:"title"`
	DescriptionPlain string      `json:"description_plain"`
	DescriptionRich  string      `json:"description_rich"`
	Attributes       []Attribute `json:"attributes"`
	Images           []string    `json:"images"`
	Meta             ProductMeta `json:"meta"`
}

// ProductRecord is the merged bilingual output row. Code is the identity
// key; two records with the same code are the same product.
type ProductRecord struct {
	Code  string `json:"code"`
	Brand string `json:"brand"`
	Price string `json:"price"`

	TitleUA string `json:"title_ua"`
	TitleRU string `json:"title_ru"`

	DescriptionPlainUA string `json:"description_plain_ua"`
	DescriptionRichUA  string `json:"description_rich_ua"`
	DescriptionPlainRU string `json:"description_plain_ru"`
	DescriptionRichRU  string `json:"description_rich_ru"`

	Images []string `json:"images"`

	AttributesUA []Attribute `json:"attributes_ua"`
	AttributesRU []Attribute `json:"attributes_ru"`

	LinkUA string `json:"link_ua"`
	LinkRU string `json:"link_ru"`
}

// deniedAttributeKeys lists characteristic names that duplicate fields
// already captured structurally (code and brand come from JSON-LD).
var deniedAttributeKeys = map[string]struct{}{
	"Код товару":     {},
	"Код товара":     {},
	"Артикул":        {},
	"Артикул товару": {},
	"Виробник":       {},
	"Производитель":  {},
}

// FilteredAttributes drops deny-listed keys, preserving order.
func FilteredAttributes(attrs []Attribute) []Attribute {
	out := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		if _, denied := deniedAttributeKeys[a.Key]; denied {
			continue
		}
		out = append(out, a)
	}
	return out
}
