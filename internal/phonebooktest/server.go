// Package phonebooktest provides an in-process REST resource server for
// exercising the phonebook client and synchronizer in tests.
package phonebooktest

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/marcus/phonebook/internal/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE records (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    number TEXT NOT NULL DEFAULT ''
);
`

// Server is a json-server style resource backed by an in-memory sqlite db.
type Server struct {
	*httptest.Server
	Resource string

	db *sql.DB

	mu       sync.Mutex
	failNext []int
	requests []string
}

// NewServer starts a server exposing /<resource> seeded with records.
// Records without an id get one assigned.
func NewServer(t testing.TB, resource string, seed ...models.Record) *Server {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// every new connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	s := &Server{Resource: resource, db: db}
	for _, rec := range seed {
		if rec.ID == "" {
			rec.ID = models.ID(uuid.NewString())
		}
		if err := s.insert(rec); err != nil {
			t.Fatalf("seed %q: %v", rec.Name, err)
		}
	}

	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/"+resource, s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/"+resource, s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/"+resource+"/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/"+resource+"/{id}", s.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/"+resource+"/{id}", s.handleDelete).Methods(http.MethodDelete)

	s.Server = httptest.NewServer(r)
	t.Cleanup(func() {
		s.Server.Close()
		db.Close()
	})
	return s
}

// Records returns the stored records in insertion order.
func (s *Server) Records(t testing.TB) []models.Record {
	t.Helper()
	recs, err := s.list()
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	return recs
}

// DeleteOutOfBand removes a record behind the client's back, the way another
// browser tab or user would.
func (s *Server) DeleteOutOfBand(t testing.TB, id models.ID) {
	t.Helper()
	if _, err := s.db.Exec(`DELETE FROM records WHERE id = ?`, id.String()); err != nil {
		t.Fatalf("delete %s: %v", id, err)
	}
}

// FailNext makes the next requests answer with the given status codes, in order.
func (s *Server) FailNext(status ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = append(s.failNext, status...)
}

// Requests returns "METHOD /path" for every request served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// record logs each request and applies injected failures.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		status := 0
		if len(s.failNext) > 0 {
			status = s.failNext[0]
			s.failNext = s.failNext[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.list()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.get(models.ID(mux.Vars(r)["id"]))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var draft models.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if draft.Blank() {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	rec := draft.Record()
	rec.ID = models.ID(uuid.NewString())
	if err := s.insert(rec); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := models.ID(mux.Vars(r)["id"])
	var rec models.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	res, err := s.db.Exec(`UPDATE records SET name = ?, number = ? WHERE id = ?`, rec.Name, rec.Number, id.String())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.NotFound(w, r)
		return
	}
	rec.ID = id
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := models.ID(mux.Vars(r)["id"])
	res, err := s.db.Exec(`DELETE FROM records WHERE id = ?`, id.String())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) insert(rec models.Record) error {
	_, err := s.db.Exec(`INSERT INTO records (id, name, number) VALUES (?, ?, ?)`,
		rec.ID.String(), rec.Name, rec.Number)
	return err
}

func (s *Server) get(id models.ID) (models.Record, error) {
	var rec models.Record
	var rawID string
	err := s.db.QueryRow(`SELECT id, name, number FROM records WHERE id = ?`, id.String()).
		Scan(&rawID, &rec.Name, &rec.Number)
	if err != nil {
		return models.Record{}, err
	}
	rec.ID = models.ID(rawID)
	return rec, nil
}

func (s *Server) list() ([]models.Record, error) {
	rows, err := s.db.Query(`SELECT id, name, number FROM records ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []models.Record{}
	for rows.Next() {
		var rec models.Record
		var rawID string
		if err := rows.Scan(&rawID, &rec.Name, &rec.Number); err != nil {
			return nil, err
		}
		rec.ID = models.ID(rawID)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func writeErr(w http.ResponseWriter, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, fmt.Sprintf("query: %v", err), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
