package domain

import "regexp"

var filterSplitRegex = regexp.MustCompile(`[,\s]+`)

// ParseSKUFilter splits a newline/comma/whitespace delimited list of
// product codes into a lookup set. Empty input yields nil, meaning no
// filter is active.
func ParseSKUFilter(raw string) map[string]struct{} {
	parts := filterSplitRegex.Split(raw, -1)
	var set map[string]struct{}
	for _, p := range parts {
		if p == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{})
		}
		set[p] = struct{}{}
	}
	return set
}
