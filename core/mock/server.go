// Package mock provides a fake BARB API server for tests: canned sync event
// pages with X-Next pagination, a scripted async job lifecycle and downloadable
// export files.
package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// Server wraps an httptest server scripted by options.
type Server struct {
	*httptest.Server

	config *serverConfig

	mu        sync.Mutex
	polls     int
	requests  map[string]int
	failFirst int
}

// NewServer starts a scripted API server. Callers must Close it.
func NewServer(opts ...ServerOption) *Server {
	config := &serverConfig{
		accessToken: "mock-access-token",
		jobID:       "mock-job-1",
		pages:       make(map[string][]page),
	}
	for _, opt := range opts {
		opt(config)
	}

	s := &Server{
		config:    config,
		requests:  make(map[string]int),
		failFirst: config.failFirst,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Polls returns how many times the job-results endpoint was called.
func (s *Server) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

// Requests returns how many requests hit the given path.
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(r.URL.Path, "/")

	s.mu.Lock()
	s.requests[path]++
	if s.failFirst > 0 {
		s.failFirst--
		s.mu.Unlock()
		if s.config.retryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(s.config.retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s.mu.Unlock()

	switch {
	case path == "auth/token":
		s.handleAuth(w, r)
	case strings.HasPrefix(path, "async-batch/results/"):
		s.handlePoll(w, r)
	case strings.HasPrefix(path, "files/"):
		s.handleFile(w, r, strings.TrimPrefix(path, "files/"))
	default:
		if pages, ok := s.config.pages[path]; ok {
			s.handlePages(w, r, pages)
			return
		}
		if r.Method == http.MethodPost {
			// any unscripted POST is treated as an async submission
			writeJSON(w, map[string]string{"job_id": s.config.jobID})
			return
		}
		http.NotFound(w, r)
	}
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]string{"access": s.config.accessToken})
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request, pages []page) {
	index := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		index, _ = strconv.Atoi(raw)
	}
	if index >= len(pages) {
		http.NotFound(w, r)
		return
	}

	if index < len(pages)-1 {
		next := fmt.Sprintf("%s%s?page=%d", s.URL, r.URL.Path, index+1)
		w.Header().Set("X-Next", next)
	}

	p := pages[index]
	if p.responseKey == "" {
		writeJSON(w, p.records)
		return
	}
	writeJSON(w, map[string]any{p.responseKey: p.records})
}

func (s *Server) handlePoll(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	poll := s.polls
	s.polls++
	s.mu.Unlock()

	states := s.config.jobStates
	if len(states) == 0 {
		states = []string{"successful"}
	}
	if poll >= len(states) {
		poll = len(states) - 1
	}
	state := states[poll]

	switch state {
	case "failed", "error":
		writeJSON(w, map[string]any{
			"status":  "failed",
			"message": s.config.failureMessage,
		})
	case "successful", "ready", "completed":
		result := make([]map[string]string, 0, len(s.config.files))
		for _, file := range s.config.files {
			result = append(result, map[string]string{
				"data": fmt.Sprintf("%s/files/%s", s.URL, file.name),
			})
		}
		writeJSON(w, map[string]any{
			"status": "successful",
			"result": result,
		})
	default:
		writeJSON(w, map[string]any{"status": state})
	}
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request, name string) {
	for _, file := range s.config.files {
		if file.name == name {
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(file.body)
			return
		}
	}
	http.NotFound(w, r)
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}
