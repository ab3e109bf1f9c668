package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/export"
	"github.com/joseph-ayodele/bol-intake/internal/extract"
	"github.com/joseph-ayodele/bol-intake/internal/repository"
)

// ExportHandler serves the most recent successful extraction runs as an XLSX workbook.
type ExportHandler struct {
	runs   repository.ExtractRunRepository
	svc    *export.Service
	logger *slog.Logger
}

func NewExportHandler(runs repository.ExtractRunRepository, svc *export.Service, logger *slog.Logger) *ExportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandler{runs: runs, svc: svc, logger: logger}
}

func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	runs, err := h.runs.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("export.xlsx.failed", "err", err)
		writeError(w, http.StatusInternalServerError, "list extraction runs failed")
		return
	}

	docs := make([]export.Document, 0, len(runs))
	for _, run := range runs {
		if run.Status != constants.RunStatusOK || len(run.ExtractedJSON) == 0 {
			continue
		}
		var raw extract.RawRecord
		if err := json.Unmarshal(run.ExtractedJSON, &raw); err != nil {
			h.logger.Warn("export.xlsx.skip_run", "run_id", run.ID, "err", err)
			continue
		}
		docs = append(docs, export.Document{SourcePath: run.SourcePath, Raw: raw})
	}

	xlsx, err := h.svc.ExportJobsXLSX(r.Context(), docs)
	if err != nil {
		h.logger.Error("export.xlsx.failed", "err", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bol-jobs.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(xlsx)
}

func parseLimit(r *http.Request, def int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > 1000 {
		return 0, errBadLimit
	}
	return n, nil
}
