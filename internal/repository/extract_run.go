package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/entity"
)

// RunResult is what a successful run records.
type RunResult struct {
	Method          string
	PageCount       int
	WordCount       int
	TextConfidence  float64
	FieldConfidence int
	OrderNumber     string
	SerialCount     int
	Extracted       any // marshalled to extracted_json
}

type ExtractRunRepository interface {
	Start(ctx context.Context, sourcePath, contentHash string) (*entity.ExtractRun, error)
	FinishSuccess(ctx context.Context, runID uuid.UUID, res RunResult) error
	FinishFailure(ctx context.Context, runID uuid.UUID, message string) error
	Get(ctx context.Context, runID uuid.UUID) (*entity.ExtractRun, error)
	FindLatestByHash(ctx context.Context, contentHash string) (*entity.ExtractRun, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.ExtractRun, error)
}

type extractRunRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewExtractRunRepository(db *DB, log *slog.Logger) ExtractRunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractRunRepo{db: db, log: log, now: time.Now}
}

func (r *extractRunRepo) Start(ctx context.Context, sourcePath, contentHash string) (*entity.ExtractRun, error) {
	run := &entity.ExtractRun{
		ID:          uuid.New(),
		SourcePath:  sourcePath,
		ContentHash: contentHash,
		Status:      constants.RunStatusRunning,
		StartedAt:   r.now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extraction_runs (id, source_path, content_hash, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID.String(), run.SourcePath, run.ContentHash, run.Status, formatTime(run.StartedAt))
	if err != nil {
		r.log.Error("extraction_run start failed", "source", sourcePath, "err", err)
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	r.log.Info("extraction_run started", "run_id", run.ID, "source", sourcePath)
	return run, nil
}

func (r *extractRunRepo) FinishSuccess(ctx context.Context, runID uuid.UUID, res RunResult) error {
	var extracted sql.NullString
	if res.Extracted != nil {
		b, err := json.Marshal(res.Extracted)
		if err != nil {
			return fmt.Errorf("marshal extracted fields: %w", err)
		}
		extracted = sql.NullString{String: string(b), Valid: true}
	}
	out, err := r.db.ExecContext(ctx,
		`UPDATE extraction_runs SET status = $1, method = $2, finished_at = $3, page_count = $4, word_count = $5,
			text_confidence = $6, field_confidence = $7, order_number = $8, serial_count = $9, extracted_json = $10
		 WHERE id = $11`,
		constants.RunStatusOK, res.Method, formatTime(r.now()), res.PageCount, res.WordCount,
		res.TextConfidence, res.FieldConfidence, res.OrderNumber, res.SerialCount, extracted,
		runID.String())
	if err := checkUpdated(out, err); err != nil {
		r.log.Error("extraction_run finish(OK) failed", "run_id", runID, "err", err)
		return err
	}
	r.log.Info("extraction_run finished (OK)", "run_id", runID, "method", res.Method, "confidence", res.FieldConfidence)
	return nil
}

func (r *extractRunRepo) FinishFailure(ctx context.Context, runID uuid.UUID, message string) error {
	out, err := r.db.ExecContext(ctx,
		`UPDATE extraction_runs SET status = $1, finished_at = $2, error_message = $3 WHERE id = $4`,
		constants.RunStatusFailed, formatTime(r.now()), message, runID.String())
	if err := checkUpdated(out, err); err != nil {
		r.log.Error("extraction_run finish(FAILED) failed", "run_id", runID, "err", err)
		return err
	}
	r.log.Warn("extraction_run finished (FAILED)", "run_id", runID, "error", message)
	return nil
}

const runColumns = `id, source_path, content_hash, status, method, started_at, finished_at, page_count, word_count,
	text_confidence, field_confidence, order_number, serial_count, error_message, extracted_json`

func (r *extractRunRepo) Get(ctx context.Context, runID uuid.UUID) (*entity.ExtractRun, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM extraction_runs WHERE id = $1`, runID.String())
	return scanRun(row)
}

// FindLatestByHash returns the newest successful run over the same document content.
func (r *extractRunRepo) FindLatestByHash(ctx context.Context, contentHash string) (*entity.ExtractRun, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM extraction_runs WHERE content_hash = $1 AND status = $2
		 ORDER BY started_at DESC LIMIT 1`,
		contentHash, constants.RunStatusOK)
	return scanRun(row)
}

func (r *extractRunRepo) ListRecent(ctx context.Context, limit int) ([]*entity.ExtractRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM extraction_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.ExtractRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*entity.ExtractRun, error) {
	var (
		run              entity.ExtractRun
		id, started      string
		finished, errMsg sql.NullString
		extracted        sql.NullString
	)
	err := s.Scan(&id, &run.SourcePath, &run.ContentHash, &run.Status, &run.Method, &started, &finished,
		&run.PageCount, &run.WordCount, &run.TextConfidence, &run.FieldConfidence, &run.OrderNumber,
		&run.SerialCount, &errMsg, &extracted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: bad run id %q", common.ErrDatabase, id)
	}
	if run.StartedAt, err = parseTime(started); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	if finished.Valid {
		t, err := parseTime(finished.String)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
		}
		run.FinishedAt = &t
	}
	if errMsg.Valid {
		run.ErrorMessage = &errMsg.String
	}
	if extracted.Valid {
		run.ExtractedJSON = json.RawMessage(extracted.String)
	}
	return &run, nil
}

func checkUpdated(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
