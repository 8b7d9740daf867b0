// Package server exposes the search engine and saved searches over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/olivierg1729/jobfinder/internal/models"
	"github.com/olivierg1729/jobfinder/internal/search"
	"github.com/olivierg1729/jobfinder/internal/storage"
	"github.com/olivierg1729/jobfinder/internal/validator"
)

// Searcher is the engine surface the handlers need.
type Searcher interface {
	Search(ctx context.Context, query string, page, pageSize int, opts search.Options) (search.Result, error)
}

type Server struct {
	engine   Searcher
	store    storage.SearchStore
	validate *validator.Validator
}

func New(engine Searcher, store storage.SearchStore) *Server {
	return &Server{
		engine:   engine,
		store:    store,
		validate: validator.New(),
	}
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/search", s.handleSearch)
	r.Post("/save_search", s.handleSaveSearch)
	r.Get("/saved_searches", s.handleListSearches)
	r.Get("/health", s.handleHealth)
	return r
}

type searchRequest struct {
	Query    string `json:"q"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Fast     bool   `json:"fast"`
	Refresh  bool   `json:"refresh"`
}

// handleSearch runs a paginated search. Upstream trouble never turns
// into a 5xx: the engine serves whatever it accumulated, possibly
// nothing.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := s.engine.Search(r.Context(), req.Query, req.Page, req.PageSize, search.Options{
		FastMode:     req.Fast,
		ForceRefresh: req.Refresh,
	})
	if err != nil {
		// Only context cancellation reaches here.
		slog.Error("Search failed", "query", req.Query, "error", err)
		writeError(w, http.StatusServiceUnavailable, "search interrupted")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSaveSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SavedSearch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.ID = ""

	if err := s.validate.ValidateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.store.CreateSearch(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrSearchExists) {
			writeError(w, http.StatusConflict, "search already saved")
			return
		}
		slog.Error("Failed to save search", "query", req.Query, "error", err)
		writeError(w, http.StatusInternalServerError, "could not save search")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListSearches(w http.ResponseWriter, r *http.Request) {
	searches, err := s.store.ListSearches(r.Context())
	if err != nil {
		slog.Error("Failed to list searches", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list searches")
		return
	}
	if searches == nil {
		searches = []models.SavedSearch{}
	}
	writeJSON(w, http.StatusOK, searches)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
