package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/model"
	"github.com/m-mizutani/omnix/pkg/utils/logging"
)

const maxRequestBytes = 1 << 20

// Researcher builds evidence for a product
type Researcher interface {
	Research(ctx context.Context, product *model.DetectedProduct) (*model.ResearchResult, error)
}

// Scorer computes an eco-score from evidence
type Scorer interface {
	Score(ctx context.Context, req *model.ScoreRequest) (*model.EcoScore, error)
}

// Server exposes research and scoring over HTTP
type Server struct {
	research Researcher
	scorer   Scorer
}

func New(research Researcher, scorer Scorer) *Server {
	return &Server{research: research, scorer: scorer}
}

// Routes returns a chi.Router with all API handlers mounted
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(withLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/research", s.handleResearch)
		r.Post("/ecoscore", s.handleEcoScore)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logging.From(ctx).Info("server started", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return goerr.Wrap(err, "server stopped", goerr.V("addr", addr))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return goerr.Wrap(err, "failed to shutdown server")
	}
	logging.From(ctx).Info("server stopped")
	return nil
}

// withLogger puts a request scoped logger into the request context
func withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.From(r.Context()).With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r.WithContext(logging.With(r.Context(), logger)))

		logger.Info("request handled", "status", ww.Status(), "elapsed", time.Since(started))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var product model.DetectedProduct
	if err := decodeBody(w, r, &product); err != nil {
		writeInvalid(ctx, w, err)
		return
	}
	if err := product.Validate(); err != nil {
		writeInvalid(ctx, w, err)
		return
	}

	result, err := s.research.Research(ctx, &product)
	if err != nil {
		logging.From(ctx).Error("research failed", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Failed to perform research")
		return
	}
	writeJSON(ctx, w, http.StatusOK, result)
}

func (s *Server) handleEcoScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ScoreRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeInvalid(ctx, w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeInvalid(ctx, w, err)
		return
	}

	score, err := s.scorer.Score(ctx, &req)
	if err != nil {
		logging.From(ctx).Error("eco-score failed", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Failed to calculate eco score")
		return
	}
	writeJSON(ctx, w, http.StatusOK, score)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return goerr.Wrap(err, "failed to decode request body")
	}
	return nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeInvalid(ctx context.Context, w http.ResponseWriter, err error) {
	logging.From(ctx).Info("invalid request", "error", err)
	writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
		Error:   "Invalid request",
		Details: err.Error(),
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	writeJSON(ctx, w, status, errorResponse{Error: msg})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.From(ctx).Warn("failed to write response", "error", err)
	}
}
