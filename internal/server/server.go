package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/nick-dorsch/taskheap/internal/input"
	"github.com/nick-dorsch/taskheap/internal/logging"
	"github.com/nick-dorsch/taskheap/internal/queue"
	"github.com/nick-dorsch/taskheap/internal/session"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Server struct {
	sessions *session.Manager
	log      *zap.Logger
	server   *http.Server
}

type createSessionRequest struct {
	Capacity int    `json:"capacity"`
	Criteria string `json:"criteria"`
}

type enqueueRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	EstimatedMinutes *int   `json:"estimated_minutes"`
	PriorityLevel    string `json:"priority_level"`
}

type criteriaRequest struct {
	Criteria string `json:"criteria"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewServer(sessions *session.Manager, log *zap.Logger) *Server {
	return &Server{sessions: sessions, log: logging.OrNop(log).Named("http")}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleStatus)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/heap", s.handleHeap)
			r.Get("/best", s.handleBest)
			r.Post("/tasks", s.handleEnqueue)
			r.Post("/dequeue", s.handleDequeue)
			r.Put("/criteria", s.handleReprioritize)
		})
	})

	return r
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("listening", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.sessions.List(), nil)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respond(w, 0, nil, errors.Wrap(errBadRequest, err.Error()))
		return
	}

	criteria, err := input.ParseSessionCriteria(req.Criteria)
	if err != nil {
		s.respond(w, 0, nil, err)
		return
	}

	id, err := s.sessions.Create(r.Context(), req.Capacity, criteria)
	if err != nil {
		s.respond(w, 0, nil, err)
		return
	}

	status, err := s.sessions.Status(id)
	s.respond(w, http.StatusCreated, status, err)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.sessions.Status(chi.URLParam(r, "id"))
	s.respond(w, http.StatusOK, status, err)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respond(w, 0, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHeap serves the snapshot with an ETag so pollers can skip unchanged heaps.
func (s *Server) handleHeap(w http.ResponseWriter, r *http.Request) {
	slots, err := s.sessions.Snapshot(chi.URLParam(r, "id"))
	if err != nil {
		s.respond(w, 0, nil, err)
		return
	}

	body, err := json.Marshal(slots)
	if err != nil {
		s.respond(w, 0, nil, err)
		return
	}

	etag := `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) handleBest(w http.ResponseWriter, r *http.Request) {
	t, err := s.sessions.PeekBest(chi.URLParam(r, "id"))
	s.respond(w, http.StatusOK, t, err)
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respond(w, 0, nil, errors.Wrap(errBadRequest, err.Error()))
		return
	}

	minutes := -1
	if req.EstimatedMinutes != nil {
		minutes = *req.EstimatedMinutes
	}

	t, err := input.BuildTask(req.Title, req.Description, minutes, req.PriorityLevel)
	if err != nil {
		s.respond(w, 0, nil, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.sessions.Enqueue(r.Context(), id, t); err != nil {
		s.respond(w, 0, nil, err)
		return
	}

	status, err := s.sessions.Status(id)
	s.respond(w, http.StatusCreated, status, err)
}

func (s *Server) handleDequeue(w http.ResponseWriter, r *http.Request) {
	t, err := s.sessions.Dequeue(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, http.StatusOK, t, err)
}

func (s *Server) handleReprioritize(w http.ResponseWriter, r *http.Request) {
	var req criteriaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respond(w, 0, nil, errors.Wrap(errBadRequest, err.Error()))
		return
	}

	criteria, err := input.ParseCriteria(req.Criteria)
	if err != nil {
		s.respond(w, 0, nil, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.sessions.Reprioritize(r.Context(), id, criteria); err != nil {
		s.respond(w, 0, nil, err)
		return
	}

	status, err := s.sessions.Status(id)
	s.respond(w, http.StatusOK, status, err)
}

var errBadRequest = errors.New("malformed request body")

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, queue.ErrInvalidCapacity),
		input.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, queue.ErrQueueEmpty):
		return http.StatusNotFound
	case errors.Is(err, queue.ErrQueueFull),
		errors.Is(err, session.ErrDefaultSession):
		return http.StatusConflict
	case errors.Is(err, queue.ErrTaskCompleted):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respond(w http.ResponseWriter, code int, data any, err error) {
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		code = statusFor(err)
		if code == http.StatusInternalServerError {
			s.log.Error("request failed", zap.Error(err))
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}
