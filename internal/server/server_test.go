package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Mirshida/sf-dta/internal/config"
	"github.com/Mirshida/sf-dta/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewServer(config.DefaultConfig(), st), st
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	w := get(t, srv, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}

func TestListRuns(t *testing.T) {
	srv, st := newTestServer(t)
	id, err := st.CreateRun("/cards", "sf", "7:30", "9:30")
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	w := get(t, srv, "/api/runs")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body)
	}
	var resp struct {
		Runs []store.Run `json:"runs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Runs) != 1 || resp.Runs[0].ID != id {
		t.Fatalf("runs = %+v", resp.Runs)
	}
}

func TestGetRun(t *testing.T) {
	srv, st := newTestServer(t)
	id, err := st.CreateRun("/cards", "sf", "7:30", "9:30")
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	w := get(t, srv, "/api/runs/"+id)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body)
	}
	var run store.Run
	if err := json.Unmarshal(w.Body.Bytes(), &run); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if run.ID != id || run.Status != "running" {
		t.Fatalf("run = %+v", run)
	}

	if w := get(t, srv, "/api/runs/unknown"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown run status = %d", w.Code)
	}
}

func TestListCards(t *testing.T) {
	srv, st := newTestServer(t)
	id, err := st.CreateRun("/cards", "sf", "7:30", "9:30")
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := st.RecordCard(id, "a.xls", "CROSS,MAIN", 10, store.CardStatusConverted, "", ""); err != nil {
		t.Fatalf("RecordCard: %v", err)
	}

	w := get(t, srv, "/api/runs/"+id+"/cards")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body)
	}
	var resp struct {
		Cards []store.CardRecord `json:"cards"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Cards) != 1 || resp.Cards[0].FileName != "a.xls" {
		t.Fatalf("cards = %+v", resp.Cards)
	}

	if w := get(t, srv, "/api/runs/unknown/cards"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown run status = %d", w.Code)
	}
}
