// Package apitest provides an in-memory users REST backend for tests.
// It follows the server contract: PATCH replaces supplied fields and
// collections, DELETE depersonalizes the record and answers 204.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smileynet/pdm/internal/record"
)

// Deleted is the placeholder written over personal fields on delete.
const Deleted = "[DELETED]"

// Request is a request observed by the Server.
type Request struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// Server is a fake users API backed by a slice.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    []record.UserRecord
	requests []Request
	failures []failure
}

type failure struct {
	status int
	body   string
}

// NewServer starts a Server seeded with users and stops it on test cleanup.
func NewServer(t testing.TB, users ...record.UserRecord) *Server {
	t.Helper()
	s := &Server{users: append([]record.UserRecord(nil), users...)}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Get("/{id}", s.get)
		r.Patch("/{id}", s.update)
		r.Delete("/{id}", s.delete)
	})
	return r
}

// Fail makes the next request answer status with body instead of being served.
func (s *Server) Fail(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{status: status, body: body})
}

// Users returns a copy of the stored users.
func (s *Server) Users() []record.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]record.UserRecord(nil), s.users...)
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		var f *failure
		if len(s.failures) > 0 {
			f = &s.failures[0]
			s.failures = s.failures[1:]
		}
		s.mu.Unlock()

		if f != nil {
			http.Error(w, f.body, f.status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users := append([]record.UserRecord{}, s.users...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(chi.URLParam(r, "id"))
	if i < 0 {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.users[i])
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in record.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	u := record.UserRecord{
		ID:               uuid.NewString(),
		Name:             in.Name,
		Email:            in.Email,
		DateOfBirth:      in.DateOfBirth,
		PlaceOfBirth:     in.PlaceOfBirth,
		MotherMaidenName: in.MotherMaidenName,
		TAJ:              in.TAJ,
		TaxID:            in.TaxID,
		Addresses:        withAddressIDs(in.Addresses),
		PhoneNumbers:     withPhoneIDs(in.PhoneNumbers),
	}

	s.mu.Lock()
	s.users = append(s.users, u)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var in record.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(chi.URLParam(r, "id"))
	if i < 0 {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	u := &s.users[i]
	set(&u.Name, in.Name)
	set(&u.Email, in.Email)
	set(&u.DateOfBirth, in.DateOfBirth)
	set(&u.PlaceOfBirth, in.PlaceOfBirth)
	set(&u.MotherMaidenName, in.MotherMaidenName)
	set(&u.TAJ, in.TAJ)
	set(&u.TaxID, in.TaxID)
	if in.Addresses != nil {
		u.Addresses = withAddressIDs(in.Addresses)
	}
	if in.PhoneNumbers != nil {
		u.PhoneNumbers = withPhoneIDs(in.PhoneNumbers)
	}
	writeJSON(w, http.StatusOK, *u)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(chi.URLParam(r, "id"))
	if i < 0 {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	u := &s.users[i]
	u.Name = Deleted
	u.Email = "[DELETED@" + u.ID + "]"
	u.DateOfBirth = ""
	u.PlaceOfBirth = Deleted
	u.MotherMaidenName = Deleted
	u.TAJ = ""
	u.TaxID = ""
	u.Addresses = []record.Address{}
	u.PhoneNumbers = []record.PhoneNumber{}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) find(id string) int {
	for i, u := range s.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func withAddressIDs(in []record.Address) []record.Address {
	out := make([]record.Address, len(in))
	for i, a := range in {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		out[i] = a
	}
	return out
}

func withPhoneIDs(in []record.PhoneNumber) []record.PhoneNumber {
	out := make([]record.PhoneNumber, len(in))
	for i, p := range in {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		out[i] = p
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
