package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"gtodo/internal/service"
)

// Request is one request observed by RemoteServer.
type Request struct {
	Method      string
	Path        string
	ContentType string
	RequestID   string
	Body        string
}

// RemoteServer emulates the remote to-do HTTP API over httptest.
type RemoteServer struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string][]service.Task
	owner    map[int]string
	nextID   int
	requests []Request

	// Fail maps a route name ("create user", "list tasks", "create task",
	// "delete task") to a status code returned instead of the normal response.
	Fail map[string]int
}

// NewRemoteServer starts a RemoteServer. Callers must Close it.
func NewRemoteServer() *RemoteServer {
	s := &RemoteServer{
		users:  make(map[string][]service.Task),
		owner:  make(map[int]string),
		nextID: 1,
		Fail:   make(map[string]int),
	}

	r := mux.NewRouter()
	r.HandleFunc("/users/{username}", s.handleCreateUser).Methods(http.MethodPost).Name("create user")
	r.HandleFunc("/users/{username}", s.handleListTasks).Methods(http.MethodGet).Name("list tasks")
	r.HandleFunc("/todos/{username}", s.handleCreateTask).Methods(http.MethodPost).Name("create task")
	r.HandleFunc("/todos/{id:[0-9]+}", s.handleDeleteTask).Methods(http.MethodDelete).Name("delete task")
	r.Use(s.record, s.inject)

	s.Server = httptest.NewServer(r)
	return s
}

// BaseURL returns the server root with a trailing slash.
func (s *RemoteServer) BaseURL() string {
	return s.URL + "/"
}

// Requests returns a copy of the observed requests.
func (s *RemoteServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// SeedTask adds a task for username directly and returns its ID.
func (s *RemoteServer) SeedTask(username, label string, done bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addTaskLocked(username, label, done)
}

func (s *RemoteServer) addTaskLocked(username, label string, done bool) int {
	id := s.nextID
	s.nextID++
	s.users[username] = append(s.users[username], service.Task{ID: id, Label: label, IsDone: done})
	s.owner[id] = username
	return id
}

func (s *RemoteServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:      r.Method,
			Path:        r.URL.EscapedPath(),
			ContentType: r.Header.Get("Content-Type"),
			RequestID:   r.Header.Get("X-Request-Id"),
			Body:        string(body),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *RemoteServer) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if route := mux.CurrentRoute(r); route != nil {
			s.mu.Lock()
			code := s.Fail[route.GetName()]
			s.mu.Unlock()
			if code != 0 {
				http.Error(w, `{"detail":"injected failure"}`, code)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *RemoteServer) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["username"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[name]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "User already exists."})
		return
	}
	s.users[name] = []service.Task{}
	writeJSON(w, http.StatusCreated, map[string]any{"name": name, "id": len(s.users)})
}

func (s *RemoteServer) handleListTasks(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["username"]
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, ok := s.users[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, service.UserTasks{Name: name, Todos: tasks})
}

func (s *RemoteServer) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["username"]
	var in service.NewTask
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[name]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
		return
	}
	id := s.addTaskLocked(name, in.Label, in.IsDone)
	writeJSON(w, http.StatusCreated, service.Task{ID: id, Label: in.Label, IsDone: in.IsDone})
}

func (s *RemoteServer) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.owner[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Todo not found"})
		return
	}
	tasks := s.users[name]
	for i, t := range tasks {
		if t.ID == id {
			s.users[name] = append(tasks[:i:i], tasks[i+1:]...)
			break
		}
	}
	delete(s.owner, id)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
