package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/entity"
)

type SubmissionRepository interface {
	Record(ctx context.Context, s *entity.Submission) error
	ListByOrder(ctx context.Context, orderNumber string) ([]*entity.Submission, error)
}

type submissionRepo struct {
	db  *DB
	log *slog.Logger
}

func NewSubmissionRepository(db *DB, log *slog.Logger) SubmissionRepository {
	if log == nil {
		log = slog.Default()
	}
	return &submissionRepo{db: db, log: log}
}

// Record stores a submission attempt, assigning an ID when it has none.
func (r *submissionRepo) Record(ctx context.Context, s *entity.Submission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	var runID sql.NullString
	if s.RunID != nil {
		runID = sql.NullString{String: s.RunID.String(), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO submissions (id, run_id, order_number, serial_number, status, record_id, job_number, error_message, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID.String(), runID, s.OrderNumber, s.SerialNumber, s.Status, s.RecordID, s.JobNumber, s.ErrorMessage,
		formatTime(s.SubmittedAt))
	if err != nil {
		r.log.Error("submission record failed", "order_number", s.OrderNumber, "err", err)
		return fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	r.log.Info("submission recorded", "submission_id", s.ID, "order_number", s.OrderNumber, "status", s.Status)
	return nil
}

func (r *submissionRepo) ListByOrder(ctx context.Context, orderNumber string) ([]*entity.Submission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, run_id, order_number, serial_number, status, record_id, job_number, error_message, submitted_at
		 FROM submissions WHERE order_number = $1 ORDER BY submitted_at`, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.Submission
	for rows.Next() {
		var (
			s      entity.Submission
			id, at string
			runID  sql.NullString
		)
		if err := rows.Scan(&id, &runID, &s.OrderNumber, &s.SerialNumber, &s.Status, &s.RecordID, &s.JobNumber,
			&s.ErrorMessage, &at); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: bad submission id %q", common.ErrDatabase, id)
		}
		if runID.Valid {
			rid, err := uuid.Parse(runID.String)
			if err != nil {
				return nil, fmt.Errorf("%w: bad run id %q", common.ErrDatabase, runID.String)
			}
			s.RunID = &rid
		}
		if s.SubmittedAt, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
