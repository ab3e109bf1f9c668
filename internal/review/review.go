package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/entity"
	"github.com/joseph-ayodele/bol-intake/internal/mapping"
	"github.com/joseph-ayodele/bol-intake/internal/metrics"
	"github.com/joseph-ayodele/bol-intake/internal/recordstore"
)

// Submitter creates a job in the record store.
type Submitter interface {
	CreateJob(ctx context.Context, fieldData map[string]string) (*recordstore.CreateResult, error)
}

// Recorder keeps the submission history.
type Recorder interface {
	Record(ctx context.Context, s *entity.Submission) error
}

// Review holds one mapped job record on its way from Draft to Submitted.
// A Review is not safe for concurrent use.
type Review struct {
	state      constants.ReviewState
	record     *mapping.JobRecord
	validation mapping.Result
	created    *recordstore.CreateResult
	lastErr    error

	runID    *uuid.UUID
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Review)

// WithRunID links submissions to the extraction run that produced the record.
func WithRunID(id uuid.UUID) Option { return func(r *Review) { r.runID = &id } }

func WithRecorder(rec Recorder) Option { return func(r *Review) { r.recorder = rec } }

func WithLogger(l *slog.Logger) Option { return func(r *Review) { r.logger = l } }

func WithClock(now func() time.Time) Option { return func(r *Review) { r.now = now } }

// New starts a review in Draft. The record is copied; later edits go through Edit.
func New(rec *mapping.JobRecord, opts ...Option) *Review {
	r := &Review{
		state:  constants.ReviewDraft,
		record: rec.Clone(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

func (r *Review) State() constants.ReviewState { return r.state }

// Record returns a copy of the current record.
func (r *Review) Record() *mapping.JobRecord { return r.record.Clone() }

// Validation returns the result of the last Validate call.
func (r *Review) Validation() mapping.Result { return r.validation }

// Created is set once the record store has accepted the job.
func (r *Review) Created() *recordstore.CreateResult { return r.created }

// LastError is the error that moved the review into Rejected or Failed.
func (r *Review) LastError() error { return r.lastErr }

func (r *Review) moveTo(to constants.ReviewState) error {
	if err := checkTransition(r.state, to); err != nil {
		return err
	}
	r.logger.Debug("review.transition", "from", r.state, "to", to, "order_number", r.record.ClientOrderNumber)
	metrics.RecordTransition(string(r.state), string(to))
	r.state = to
	return nil
}

// Edit sets one field. Only allowed in Draft.
func (r *Review) Edit(field, value string) error {
	if r.state != constants.ReviewDraft {
		return fmt.Errorf("%w (state %s)", ErrNotEditable, r.state)
	}
	return r.record.Set(field, value)
}

// SetRequestedDueDate merges a due date into the schedule notes. Only allowed in Draft.
func (r *Review) SetRequestedDueDate(due string) error {
	if r.state != constants.ReviewDraft {
		return fmt.Errorf("%w (state %s)", ErrNotEditable, r.state)
	}
	mapping.SetRequestedDueDate(r.record, due)
	return nil
}

// Validate moves Draft to Validated, or to Rejected with every violation recorded.
func (r *Review) Validate() (mapping.Result, error) {
	if r.state != constants.ReviewDraft {
		return mapping.Result{}, checkTransition(r.state, constants.ReviewValidated)
	}
	res := mapping.Validate(r.record)
	r.validation = res
	if !res.Valid {
		r.lastErr = res.Err()
		if err := r.moveTo(constants.ReviewRejected); err != nil {
			return res, err
		}
		r.logger.Info("review.rejected", "order_number", r.record.ClientOrderNumber, "violations", len(res.Errors))
		return res, r.lastErr
	}
	r.lastErr = nil
	return res, r.moveTo(constants.ReviewValidated)
}

// Reopen returns a Rejected or Failed review to Draft for editing. A Validated review
// stays locked until it is submitted.
func (r *Review) Reopen() error {
	return r.moveTo(constants.ReviewDraft)
}

// Submit sends a validated record to the record store. A Draft record is validated first.
// The payload is normalized and schema-checked before any network call; a remote failure
// moves the review to Failed and is returned unchanged.
func (r *Review) Submit(ctx context.Context, s Submitter) (*recordstore.CreateResult, error) {
	if r.runID != nil {
		ctx = common.WithRunID(ctx, r.runID.String())
	}
	if r.state == constants.ReviewDraft {
		if _, err := r.Validate(); err != nil {
			return nil, err
		}
	}
	if r.state != constants.ReviewValidated {
		return nil, checkTransition(r.state, constants.ReviewSubmitted)
	}

	payload := mapping.Normalize(r.record)
	fields := payload.FieldData()
	if err := mapping.CheckPayload(fields); err != nil {
		r.lastErr = err
		if terr := r.moveTo(constants.ReviewRejected); terr != nil {
			return nil, terr
		}
		return nil, err
	}

	created, err := s.CreateJob(ctx, fields)
	if err != nil {
		r.lastErr = err
		metrics.RecordSubmission(metrics.StatusFailed)
		r.logger.Error("review.submit_failed", "order_number", payload.ClientOrderNumber, "error", err)
		r.recordHistory(ctx, payload, constants.ReviewFailed, nil, err)
		if terr := r.moveTo(constants.ReviewFailed); terr != nil {
			return nil, terr
		}
		return nil, err
	}

	r.record = payload
	r.created = created
	r.lastErr = nil
	metrics.RecordSubmission(metrics.StatusOK)
	r.logger.Info("review.submitted",
		"order_number", payload.ClientOrderNumber,
		"record_id", created.RecordID,
		"job_number", created.JobNumber,
	)
	r.recordHistory(ctx, payload, constants.ReviewSubmitted, created, nil)
	if err := r.moveTo(constants.ReviewSubmitted); err != nil {
		return nil, err
	}
	return created, nil
}

// recordHistory is best-effort: the job already exists (or failed) remotely either way.
func (r *Review) recordHistory(ctx context.Context, rec *mapping.JobRecord, state constants.ReviewState, created *recordstore.CreateResult, cause error) {
	if r.recorder == nil {
		return
	}
	sub := &entity.Submission{
		RunID:        r.runID,
		OrderNumber:  rec.ClientOrderNumber,
		SerialNumber: rec.ProductSerialNumber,
		Status:       string(state),
		SubmittedAt:  r.now().UTC(),
	}
	if created != nil {
		sub.RecordID = created.RecordID
		sub.JobNumber = created.JobNumber
	}
	if cause != nil {
		sub.ErrorMessage = cause.Error()
	}
	if err := r.recorder.Record(ctx, sub); err != nil {
		r.logger.Warn("review.history_failed", "order_number", rec.ClientOrderNumber, "error", err)
	}
}
