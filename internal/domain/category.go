package domain

// CategoryRef is a named link to a catalog (sub)category. URL holds the
// canonical-locale form and is the identity key.
type CategoryRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// FallbackCategoryName labels the synthetic ref returned when a page has
// no subcategories and is itself a leaf category.
const FallbackCategoryName = "Current section"
