// Package testserver serves a mock web application with the routes the
// built-in catalogs probe, for local trials and integration tests.
package testserver

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options tune the server's artificial behaviour.
type Options struct {
	Delay    time.Duration // added to every response
	Jitter   time.Duration // random extra delay in [0, Jitter)
	FailRate int           // percentage of requests answered with 500
}

// Server is a mock target application.
type Server struct {
	router   chi.Router
	opts     Options
	started  time.Time
	requests atomic.Int64
	failures atomic.Int64
}

// NewServer creates a server with no artificial delay or failures.
func NewServer() *Server {
	return NewServerWithOptions(Options{})
}

// NewServerWithOptions creates a server with the given behaviour.
func NewServerWithOptions(opts Options) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		opts:    opts,
		started: time.Now(),
	}
	s.registerHandlers()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Requests returns how many requests the server has handled.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

func (s *Server) registerHandlers() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(s.count)
	r.Use(s.simulate)

	r.Get("/", s.page("Home"))
	r.Get("/login", s.page("Sign in"))
	r.With(requireAuth).Get("/dashboard", s.page("Dashboard"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/metrics", s.handleMetrics)
		r.With(requireAuth).Get("/user/profile", s.handleProfile)
		r.With(requireAuth).Get("/admin/users", s.handleAdminUsers)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found", "path": r.URL.Path})
		})
	})

	r.Get("/status/{code}", s.handleStatusCode)
	r.Get("/delay/{ms}", s.handleDelay)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<!doctype html><title>Not Found</title><h1>404</h1>")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

// simulate applies the configured latency and failure rate.
func (s *Server) simulate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delay := s.opts.Delay
		if s.opts.Jitter > 0 {
			delay += time.Duration(rand.Int63n(int64(s.opts.Jitter)))
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if s.opts.FailRate > 0 && rand.Intn(100) < s.opts.FailRate {
			s.failures.Add(1)
			http.Error(w, "simulated failure", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth rejects requests without an Authorization header.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="loadprobe-testserver"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) page(title string) http.HandlerFunc {
	body := fmt.Sprintf("<!doctype html><html><head><title>%s</title></head><body><h1>%s</h1>%s</body></html>",
		title, title, strings.Repeat("<p>lorem ipsum dolor sit amet</p>", 20))
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, body)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "operational",
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"version": "testserver",
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int64{
		"requests": s.requests.Load(),
		"failures": s.failures.Load(),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":    1,
		"name":  "Test User",
		"email": "test@example.com",
	})
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin role required"})
}

// handleStatusCode returns the requested status, e.g. GET /status/404.
func (s *Server) handleStatusCode(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil || code < 100 || code > 599 {
		http.Error(w, "invalid status code", http.StatusBadRequest)
		return
	}
	w.WriteHeader(code)
	fmt.Fprintf(w, "%d %s", code, http.StatusText(code))
}

// handleDelay waits before responding, e.g. GET /delay/100 waits 100ms.
func (s *Server) handleDelay(w http.ResponseWriter, r *http.Request) {
	ms, err := strconv.Atoi(chi.URLParam(r, "ms"))
	if err != nil || ms < 0 {
		http.Error(w, "invalid delay", http.StatusBadRequest)
		return
	}

	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
	case <-r.Context().Done():
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "delayed %dms", ms)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
