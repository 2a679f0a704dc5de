package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// TodoServer is an in-memory task REST API. Requests must carry
// "Authorization: Bearer <token>" with a token accepted by Authorize.
type TodoServer struct {
	*httptest.Server

	mu     sync.Mutex
	tokens map[string]bool
	order  []string
	todos  map[string]todoDoc

	// FailDelete makes DELETE answer 500.
	FailDelete bool
	// NextID overrides the next generated identifier.
	NextID string
}

type todoDoc struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NewTodoServer starts a server. Close it when done.
func NewTodoServer() *TodoServer {
	s := &TodoServer{
		tokens: make(map[string]bool),
		todos:  make(map[string]todoDoc),
	}

	r := chi.NewRouter()
	r.Use(s.requireBearer)
	r.Route("/todos", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Put("/{id}", s.update)
		r.Delete("/{id}", s.remove)
	})

	s.Server = httptest.NewServer(r)
	return s
}

// Authorize accepts token as a valid bearer credential.
func (s *TodoServer) Authorize(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = true
}

// Seed stores a task directly.
func (s *TodoServer) Seed(id, title, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(todoDoc{ID: id, Title: title, Description: description})
}

// Count returns how many tasks are stored.
func (s *TodoServer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *TodoServer) putLocked(d todoDoc) {
	if _, ok := s.todos[d.ID]; !ok {
		s.order = append(s.order, d.ID)
	}
	s.todos[d.ID] = d
}

func (s *TodoServer) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		valid := ok && s.tokens[token]
		s.mu.Unlock()
		if !valid {
			http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *TodoServer) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]todoDoc, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.todos[id])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *TodoServer) create(w http.ResponseWriter, r *http.Request) {
	var in todoDoc
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" || in.Description == "" {
		http.Error(w, `{"message":"title and description required"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	id := s.NextID
	s.NextID = ""
	if id == "" {
		id = uuid.NewString()
	}
	in.ID = id
	s.putLocked(in)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, in)
}

func (s *TodoServer) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in todoDoc
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, `{"message":"invalid body"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	_, ok := s.todos[id]
	if ok {
		in.ID = id
		s.putLocked(in)
	}
	s.mu.Unlock()

	if !ok {
		http.Error(w, `{"message":"Todo not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (s *TodoServer) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDelete {
		http.Error(w, `{"message":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if _, ok := s.todos[id]; !ok {
		http.Error(w, `{"message":"Todo not found"}`, http.StatusNotFound)
		return
	}
	delete(s.todos, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
