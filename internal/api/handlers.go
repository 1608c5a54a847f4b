package api

import (
	"encoding/json"
	"net/http"

	"flagman/parser/internal/domain"
	"flagman/parser/internal/export"
	"flagman/parser/internal/service"

	log "github.com/sirupsen/logrus"
)

type resolveCategoriesRequest struct {
	URL string `json:"url"`
}

type collectLinksRequest struct {
	// URLs are the selected category URLs; MaxPages of 0 means unbounded.
	URLs     []string `json:"urls"`
	MaxPages int      `json:"max_pages"`
}

type runBatchRequest struct {
	// Start is a 0-based queue offset; omitted means resume from the
	// session cursor.
	Start *int `json:"start"`
	Size  int  `json:"size"`
	// SKUs is an optional newline/comma/whitespace delimited inclusion
	// filter of product codes.
	SKUs string `json:"skus"`
}

type sessionStatusResponse struct {
	Categories []domain.CategoryRef `json:"categories"`
	QueueSize  int                  `json:"queue_size"`
	Cursor     int                  `json:"cursor"`
	Records    int                  `json:"records"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := sessionStatusResponse{
		Categories: s.session.Categories(),
		QueueSize:  s.session.QueueLen(),
		Cursor:     s.session.Cursor(),
		Records:    s.session.Results().Len(),
	}
	s.mu.Unlock()

	s.respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.session.Reset()
	s.mu.Unlock()

	s.respondWithJSON(w, http.StatusOK, map[string]string{"message": "session cleared"})
}

func (s *Server) handleResolveCategories(w http.ResponseWriter, r *http.Request) {
	var req resolveCategoriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	refs, err := s.service.ResolveCategories(r.Context(), s.session, req.URL)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]any{"categories": refs})
}

func (s *Server) handleCollectLinks(w http.ResponseWriter, r *http.Request) {
	var req collectLinksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	queue, err := s.service.CollectProductURLs(r.Context(), s.session, req.URLs, req.MaxPages)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]any{"queue_size": len(queue)})
}

func (s *Server) handleRunBatch(w http.ResponseWriter, r *http.Request) {
	var req runBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	opts := service.BatchOptions{
		Start:     -1,
		Size:      req.Size,
		SKUFilter: domain.ParseSKUFilter(req.SKUs),
		Progress: func(position, total, inserted int) {
			log.Infof("Progress: %d of %d, %d saved", position, total, inserted)
		},
	}
	if req.Start != nil {
		opts.Start = *req.Start
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.service.RunBatch(r.Context(), s.session, opts)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	rich := r.URL.Query().Get("rich") == "1" || r.URL.Query().Get("rich") == "true"

	s.mu.Lock()
	records := s.session.Results().Records()
	s.mu.Unlock()

	if len(records) == 0 {
		s.respondWithError(w, http.StatusNotFound, "No records to export")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="flagman_report.xlsx"`)

	if err := export.Write(w, records, export.Options{RichDescription: rich}); err != nil {
		// Headers are already out; all we can do is log
		log.Errorf("Failed to write export: %v", err)
	}
}

func (s *Server) respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (s *Server) respondWithError(w http.ResponseWriter, status int, message string) {
	s.respondWithJSON(w, status, map[string]string{"error": message})
}
