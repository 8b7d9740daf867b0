package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/olivierg1729/jobfinder/internal/models"
	"github.com/olivierg1729/jobfinder/internal/search"
	"github.com/olivierg1729/jobfinder/internal/storage"
)

type stubEngine struct {
	result   search.Result
	err      error
	lastOpts search.Options
}

func (s *stubEngine) Search(_ context.Context, query string, page, pageSize int, opts search.Options) (search.Result, error) {
	s.lastOpts = opts
	if s.err != nil {
		return search.Result{}, s.err
	}
	res := s.result
	res.Page = page
	res.PageSize = pageSize
	return res, nil
}

func newTestServer(engine *stubEngine) (*Server, *storage.MemoryStore) {
	store := storage.NewMemory()
	return New(engine, store), store
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	engine := &stubEngine{result: search.Result{
		Items: []models.Offer{
			{Key: "id:1", Title: "Data scientist", Date: "2025-08-01"},
		},
		TotalEstimate: 42,
	}}
	srv, _ := newTestServer(engine)
	router := srv.Router()

	rec := postJSON(t, router, "/search", `{"q":"data","page":1,"page_size":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var res search.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Title != "Data scientist" {
		t.Errorf("unexpected items: %+v", res.Items)
	}
	if res.TotalEstimate != 42 {
		t.Errorf("TotalEstimate = %d, want 42", res.TotalEstimate)
	}
}

func TestSearchEndpointPassesOptions(t *testing.T) {
	engine := &stubEngine{}
	srv, _ := newTestServer(engine)
	router := srv.Router()

	rec := postJSON(t, router, "/search", `{"q":"x","fast":true,"refresh":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !engine.lastOpts.FastMode || !engine.lastOpts.ForceRefresh {
		t.Errorf("options not forwarded: %+v", engine.lastOpts)
	}
}

func TestSearchEndpointRejectsBadJSON(t *testing.T) {
	srv, _ := newTestServer(&stubEngine{})
	rec := postJSON(t, srv.Router(), "/search", `{"q":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearchEndpointEmptyResultIsOK(t *testing.T) {
	srv, _ := newTestServer(&stubEngine{})
	rec := postJSON(t, srv.Router(), "/search", `{"q":"no matches here"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("empty result status = %d, want 200", rec.Code)
	}
}

func TestSaveSearchLifecycle(t *testing.T) {
	srv, _ := newTestServer(&stubEngine{})
	router := srv.Router()

	rec := postJSON(t, router, "/save_search", `{"query":"juriste","email":"a@example.org"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	var saved models.SavedSearch
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatal(err)
	}
	if saved.ID == "" {
		t.Error("saved search has no ID")
	}

	// Same pair again conflicts.
	rec = postJSON(t, router, "/save_search", `{"query":"juriste","email":"a@example.org"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}

	// And it shows up in the listing.
	req := httptest.NewRequest(http.MethodGet, "/saved_searches", nil)
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, req)
	if listRec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", listRec.Code)
	}
	var list []models.SavedSearch
	if err := json.Unmarshal(listRec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Query != "juriste" {
		t.Errorf("listing = %+v", list)
	}
}

func TestSaveSearchValidation(t *testing.T) {
	srv, _ := newTestServer(&stubEngine{})
	router := srv.Router()

	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{"email":"a@example.org"}`},
		{"whitespace-only query", `{"query":"   "}`},
		{"malformed email", `{"query":"x","email":"not-an-email"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/save_search", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSaveSearchWithoutEmailIsAllowed(t *testing.T) {
	srv, _ := newTestServer(&stubEngine{})
	rec := postJSON(t, srv.Router(), "/save_search", `{"query":"ntfy only"}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(&stubEngine{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body["ok"] {
		t.Errorf("health body = %v, want ok=true", body)
	}
}
