package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/application/reports"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/jobs"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/middleware"
)

// multipart parts above this size spill to disk
const memoryLimit = 8 << 20

type Options struct {
	Logger         *zap.Logger
	Checkers       map[string]middleware.HealthChecker
	MaxUploadBytes int64
	StaticDir      string
	CORSOrigins    []string
	APIKeys        map[string]string
	JWTSecret      string
	RateLimitRPS   float64
	RateLimitBurst int
}

type Router struct {
	svc       *reports.Service
	logger    *zap.Logger
	maxUpload int64
}

func NewRouter(svc *reports.Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{svc: svc, logger: logger, maxUpload: opts.MaxUploadBytes}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Metrics)
	mux.Use(middleware.Logging(logger))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.Auth(opts.APIKeys, opts.JWTSecret))
	mux.Use(middleware.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))

	mux.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Blood Test Report Analyser API is running"})
	})
	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler(opts.Checkers))
	mux.Handle("/metrics", promhttp.Handler())

	mux.Post("/analyze", r.wrap(r.handleAnalyze))
	mux.Post("/analyze/async", r.wrap(r.handleEnqueue))
	mux.Get("/history", r.wrap(r.handleHistory))
	mux.Get("/jobs/{id}", r.wrap(r.handleJob))

	if opts.StaticDir != "" {
		mux.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// processingError prefixes failures of the analyze endpoints.
type processingError struct{ err error }

func (e processingError) Error() string { return "Error processing blood report: " + e.err.Error() }
func (e processingError) Unwrap() error { return e.err }

// badRequest carries a client-facing message.
type badRequest string

func (e badRequest) Error() string { return string(e) }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var (
			bad     badRequest
			tooBig  *http.MaxBytesError
			code    = http.StatusInternalServerError
			message = err.Error()
		)
		switch {
		case errors.Is(err, reports.ErrEmptyUpload):
			code, message = http.StatusBadRequest, "Uploaded file is empty."
		case errors.As(err, &tooBig):
			code, message = http.StatusRequestEntityTooLarge, fmt.Sprintf("Uploaded file exceeds %d bytes.", tooBig.Limit)
		case errors.As(err, &bad):
			code = http.StatusBadRequest
		case errors.Is(err, jobs.ErrNotFound):
			code, message = http.StatusNotFound, "job not found"
		}
		if code >= 500 {
			r.logger.Error("Exception occurred", zap.String("path", req.URL.Path), zap.Error(err))
		}
		writeJSON(w, code, map[string]string{"detail": message})
	}
}

// POST /analyze (multipart: file, query)
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	cmd, cleanup, err := r.readUpload(w, req)
	defer cleanup()
	if err != nil {
		return err
	}

	res, err := r.svc.Analyze(req.Context(), cmd)
	if err != nil {
		return processingError{err}
	}
	return writeJSON(w, http.StatusOK, res)
}

// POST /analyze/async → 202 with the job id
func (r *Router) handleEnqueue(w http.ResponseWriter, req *http.Request) error {
	cmd, cleanup, err := r.readUpload(w, req)
	defer cleanup()
	if err != nil {
		return err
	}

	res, err := r.svc.Enqueue(req.Context(), cmd)
	if err != nil {
		return processingError{err}
	}
	return writeJSON(w, http.StatusAccepted, res)
}

type historyItem struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
	Result    string    `json:"result"`
}

// GET /history?limit=&offset=
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	limit, err := middleware.ParseLimit(req.URL.Query().Get("limit"))
	if err != nil {
		return badRequest(err.Error())
	}
	offset, err := middleware.ParseOffset(req.URL.Query().Get("offset"))
	if err != nil {
		return badRequest(err.Error())
	}

	records, err := r.svc.History(req.Context(), limit, offset)
	if err != nil {
		return err
	}
	out := make([]historyItem, 0, len(records))
	for _, rec := range records {
		out = append(out, historyItem{
			ID:        rec.ID,
			FileName:  rec.FileName,
			Query:     rec.Query,
			CreatedAt: rec.CreatedAt,
			Result:    rec.Result,
		})
	}
	return writeJSON(w, http.StatusOK, out)
}

// GET /jobs/{id}
func (r *Router) handleJob(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateJobID(id); err != nil {
		return jobs.ErrNotFound
	}
	st, err := r.svc.JobStatus(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, st)
}

// readUpload parses the multipart body. A missing file counts as empty.
func (r *Router) readUpload(w http.ResponseWriter, req *http.Request) (reports.AnalyzeCommand, func(), error) {
	noop := func() {}
	if r.maxUpload > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	}
	if err := req.ParseMultipartForm(memoryLimit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return reports.AnalyzeCommand{}, noop, err
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return reports.AnalyzeCommand{}, noop, badRequest("expected multipart/form-data body")
		}
		return reports.AnalyzeCommand{}, noop, badRequest(err.Error())
	}
	cleanup := func() { _ = req.MultipartForm.RemoveAll() }

	// an empty field counts as absent; only whitespace gets the blank-query text
	query := reports.DefaultQuery
	if vals := req.MultipartForm.Value["query"]; len(vals) > 0 && vals[0] != "" {
		query = middleware.SanitizeString(vals[0])
	}

	file, header, err := req.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return reports.AnalyzeCommand{}, cleanup, reports.ErrEmptyUpload
	}
	if err != nil {
		return reports.AnalyzeCommand{}, cleanup, processingError{err}
	}

	return reports.AnalyzeCommand{
			File:     file,
			FileName: middleware.SanitizeFileName(header.Filename),
			Query:    query,
			UserID:   middleware.UserFromContext(req.Context()),
		}, func() {
			file.Close()
			cleanup()
		}, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}
