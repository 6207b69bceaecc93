package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/DeafMist/fake-news-detector/backend/internal/config"
	"github.com/DeafMist/fake-news-detector/backend/internal/events"
	"github.com/DeafMist/fake-news-detector/backend/internal/explain"
	"github.com/DeafMist/fake-news-detector/backend/internal/logger"
	"github.com/DeafMist/fake-news-detector/backend/internal/model"
	"github.com/DeafMist/fake-news-detector/backend/internal/models"
	"github.com/DeafMist/fake-news-detector/backend/internal/verify"
)

type verifier interface {
	Verify(ctx context.Context, text string) (models.PredictionResult, error)
}

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	m, err := model.Load(cfg.ModelPath)
	if err != nil {
		log.Error("load model", slog.Any("err", err))
		os.Exit(1)
	}
	pipeline, err := verify.NewPipeline(m, explain.Options{TopK: cfg.ExplanationTopK})
	if err != nil {
		log.Error("init pipeline", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("model loaded",
		slog.String("model_id", m.ID),
		slog.String("version", m.Version),
		slog.Int("features", m.Features()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var sink verify.EventSink
	if cfg.Events.Enabled() {
		publisher := events.NewPublisher(ctx, events.NewKafkaWriter(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic), log, events.Settings{
			BufferSize:  cfg.Events.BufferSize,
			MaxAttempts: cfg.Events.MaxAttempts,
			Backoff:     cfg.Events.Backoff,
		})
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("close event publisher", slog.Any("err", err))
			}
		}()
		sink = publisher
		log.Info("verdict events enabled", slog.String("topic", cfg.Events.KafkaTopic))
	}

	svc := verify.NewService(pipeline, sink, log, verify.Options{
		MinLength:    cfg.MinTextLength,
		MaxLength:    cfg.MaxTextLength,
		ModelID:      m.ID,
		ModelVersion: m.Version,
		Source:       "api",
	})

	srv := &server{log: log, cfg: cfg, verifier: svc, model: m}
	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type server struct {
	log      *slog.Logger
	cfg      *config.API
	verifier verifier
	model    *model.Model
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.With(middleware.Timeout(s.cfg.RequestTimeout)).Post("/predict", s.handlePredict)
	return r
}

// requestLogger logs method, path and status; bodies are never logged.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func (s *server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "API is running"})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"model_id":      s.model.ID,
		"model_version": s.model.Version,
		"features":      s.model.Features(),
	})
}

func (s *server) handlePredict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req models.AnalysisRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeJSON(w, http.StatusRequestEntityTooLarge, models.ErrorResponse{Detail: "Request body is too large."})
		case errors.Is(err, io.EOF):
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Detail: "Request body must be a JSON object with a \"text\" field."})
		default:
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Detail: "Malformed JSON body."})
		}
		return
	}
	if req.Text == nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Detail: "Field \"text\" is required."})
		return
	}

	res, err := s.verifier.Verify(r.Context(), *req.Text)
	if err != nil {
		switch {
		case verify.IsInputError(err):
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Detail: verify.Detail(err)})
		case errors.Is(err, context.DeadlineExceeded):
			writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Detail: "Request timed out."})
		case errors.Is(err, context.Canceled):
			// client went away
		default:
			s.log.Error("predict failed", slog.String("request_id", middleware.GetReqID(r.Context())), slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Detail: verify.Detail(err)})
		}
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
