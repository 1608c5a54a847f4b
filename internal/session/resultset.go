package session

import "flagman/parser/internal/domain"

// ResultSet accumulates product records keyed by code, in insertion
// order. This is the only place deduplication is authoritative.
type ResultSet struct {
	order  []string
	byCode map[string]*domain.ProductRecord
}

func NewResultSet() *ResultSet {
	return &ResultSet{byCode: make(map[string]*domain.ProductRecord)}
}

// Add inserts the record unless its code is already present. Reports
// whether an insertion happened.
func (r *ResultSet) Add(rec *domain.ProductRecord) bool {
	if _, exists := r.byCode[rec.Code]; exists {
		return false
	}
	r.byCode[rec.Code] = rec
	r.order = append(r.order, rec.Code)
	return true
}

func (r *ResultSet) Has(code string) bool {
	_, ok := r.byCode[code]
	return ok
}

func (r *ResultSet) Len() int {
	return len(r.order)
}

// Records returns the accumulated records in insertion order.
func (r *ResultSet) Records() []*domain.ProductRecord {
	out := make([]*domain.ProductRecord, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.byCode[code])
	}
	return out
}

func (r *ResultSet) Clear() {
	r.order = nil
	r.byCode = make(map[string]*domain.ProductRecord)
}
