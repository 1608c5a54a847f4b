package session

import "flagman/parser/internal/domain"

// Session owns one crawl run: the categories found, the ordered product
// URL queue, the resumable cursor into it, and the accumulated result
// set. A session has a single owner; the orchestrator is the only writer.
type Session struct {
	categories []domain.CategoryRef
	queue      []string
	cursor     int
	results    *ResultSet
}

func New() *Session {
	return &Session{results: NewResultSet()}
}

func (s *Session) Categories() []domain.CategoryRef {
	return s.categories
}

func (s *Session) SetCategories(refs []domain.CategoryRef) {
	s.categories = refs
}

// SetQueue installs a freshly built crawl queue and rewinds the cursor.
func (s *Session) SetQueue(urls []string) {
	s.queue = urls
	s.cursor = 0
}

func (s *Session) Queue() []string {
	return s.queue
}

func (s *Session) QueueLen() int {
	return len(s.queue)
}

func (s *Session) Cursor() int {
	return s.cursor
}

// SetCursor records the next unprocessed queue position. Called by the
// orchestrator at the end of a batch.
func (s *Session) SetCursor(pos int) {
	s.cursor = pos
}

func (s *Session) Results() *ResultSet {
	return s.results
}

// Reset clears all session state.
func (s *Session) Reset() {
	s.categories = nil
	s.queue = nil
	s.cursor = 0
	s.results.Clear()
}
