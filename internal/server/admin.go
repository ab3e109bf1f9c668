package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/export"
	"github.com/joseph-ayodele/bol-intake/internal/repository"
)

var errBadLimit = errors.New("limit must be an integer between 1 and 1000")

// AdminDeps are the collaborators of the admin HTTP surface.
type AdminDeps struct {
	DB     *repository.DB
	Runs   repository.ExtractRunRepository
	Export *export.Service
	Logger *slog.Logger
}

// NewAdminRouter serves health, metrics and extraction history.
func NewAdminRouter(deps AdminDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if err := PingDB(req.Context(), deps.DB, logger, 2*time.Second); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			limit, err := parseLimit(req, 20)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			runs, err := deps.Runs.ListRecent(req.Context(), limit)
			if err != nil {
				logger.Error("admin.runs.list_failed", "err", err)
				writeError(w, http.StatusInternalServerError, "list extraction runs failed")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
		})
		r.Get("/{run_id}", func(w http.ResponseWriter, req *http.Request) {
			id, err := uuid.Parse(chi.URLParam(req, "run_id"))
			if err != nil {
				writeError(w, http.StatusBadRequest, "run_id must be a UUID")
				return
			}
			run, err := deps.Runs.Get(req.Context(), id)
			if errors.Is(err, common.ErrNotFound) {
				writeError(w, http.StatusNotFound, "extraction run not found")
				return
			}
			if err != nil {
				logger.Error("admin.runs.get_failed", "run_id", id, "err", err)
				writeError(w, http.StatusInternalServerError, "get extraction run failed")
				return
			}
			writeJSON(w, http.StatusOK, run)
		})
	})
	if deps.Export != nil {
		r.Method(http.MethodGet, "/export.xlsx", NewExportHandler(deps.Runs, deps.Export, logger))
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
