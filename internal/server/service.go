package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/mapping"
	"github.com/joseph-ayodele/bol-intake/internal/ocr"
	"github.com/joseph-ayodele/bol-intake/internal/pipeline"
	"github.com/joseph-ayodele/bol-intake/internal/recordstore"
	"github.com/joseph-ayodele/bol-intake/internal/repository"
	"github.com/joseph-ayodele/bol-intake/internal/review"
)

// RecordStore is the part of the record-store client the intake service calls.
type RecordStore interface {
	review.Submitter
	FindByOrderNumber(ctx context.Context, orderNumber string) ([]recordstore.Record, error)
}

// IntakeService serves document extraction, validation and submission over gRPC. Every
// record-store call opens and closes its own session.
type IntakeService struct {
	processor   *pipeline.Processor
	store       RecordStore                     // nil disables Submit and FindJobs
	submissions repository.SubmissionRepository // optional
	logger      *slog.Logger
}

func NewIntakeService(proc *pipeline.Processor, store RecordStore, subs repository.SubmissionRepository, logger *slog.Logger) *IntakeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntakeService{processor: proc, store: store, submissions: subs, logger: logger}
}

const (
	maxSourceLen = 2048
	maxOrderLen  = 64
)

type extractResponse struct {
	RunID           string           `json:"run_id,omitempty"`
	PreviousRunID   string           `json:"previous_run_id,omitempty"`
	Source          string           `json:"source"`
	ContentHash     string           `json:"content_hash"`
	Method          string           `json:"method"`
	TextConfidence  float64          `json:"text_confidence"`
	PageCount       int              `json:"page_count"`
	WordCount       int              `json:"word_count"`
	Warnings        []string         `json:"warnings,omitempty"`
	FieldConfidence int              `json:"field_confidence"`
	Raw             any              `json:"raw"`
	Jobs            []map[string]any `json:"jobs"`
}

// Extract runs one document through the pipeline and returns its Draft job records together
// with their validation state.
func (s *IntakeService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	src := strings.TrimSpace(stringField(req, "source"))
	v := common.NewValidator().Field("source", src, common.Required, common.MaxLength(maxSourceLen))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	mode, err := ocr.ParseMode(stringField(req, "mode"))
	if err != nil {
		return nil, err
	}

	s.logger.Info("starting document extraction", "source", src, "mode", mode)
	out, err := s.processor.ProcessDocument(ctx, src, mode, nil)
	if err != nil {
		s.logger.Error("document extraction failed", "source", src, "error", err)
		return nil, common.ToStatus(err)
	}

	resp := extractResponse{
		Source:          out.Source,
		ContentHash:     out.ContentHash,
		Method:          string(out.Text.Method),
		TextConfidence:  out.Text.Confidence,
		PageCount:       out.Text.PageCount,
		WordCount:       out.Text.WordCount,
		Warnings:        out.Text.Warnings,
		FieldConfidence: out.Raw.Confidence,
		Raw:             out.Raw,
		Jobs:            make([]map[string]any, 0, len(out.Jobs)),
	}
	if out.RunID != uuid.Nil {
		resp.RunID = out.RunID.String()
	}
	if out.PreviousRun != nil {
		resp.PreviousRunID = out.PreviousRun.String()
	}
	for _, job := range out.Jobs {
		res := mapping.Validate(job)
		resp.Jobs = append(resp.Jobs, map[string]any{
			"fields":     job.FieldData(),
			"valid":      res.Valid,
			"violations": violations(res),
		})
	}
	s.logger.Info("document extraction succeeded", "source", src, "run_id", resp.RunID, "jobs", len(resp.Jobs))
	return toStruct(resp)
}

// Validate checks an edited job record and returns every violation plus the normalized
// payload that Submit would send.
func (s *IntakeService) Validate(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rec, err := recordFromRequest(req)
	if err != nil {
		return nil, err
	}
	res := mapping.Validate(rec)
	normalized := mapping.Normalize(rec)
	schemaMsg := ""
	if err := mapping.CheckPayload(normalized.FieldData()); err != nil {
		schemaMsg = err.Error()
	}
	return toStruct(map[string]any{
		"valid":        res.Valid && schemaMsg == "",
		"violations":   violations(res),
		"schema_error": schemaMsg,
		"normalized":   normalized.FieldData(),
	})
}

// Submit validates, normalizes and creates one job in the record store.
func (s *IntakeService) Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.store == nil {
		return nil, common.FailedPreconditionError("record store is not configured")
	}
	rec, err := recordFromRequest(req)
	if err != nil {
		return nil, err
	}

	opts := []review.Option{review.WithLogger(s.logger)}
	if s.submissions != nil {
		opts = append(opts, review.WithRecorder(s.submissions))
	}
	if rid := strings.TrimSpace(stringField(req, "run_id")); rid != "" {
		id, err := uuid.Parse(rid)
		if err != nil {
			return nil, common.InvalidArgumentError("run_id must be a UUID")
		}
		opts = append(opts, review.WithRunID(id))
	}

	rv := review.New(rec, opts...)
	created, err := rv.Submit(ctx, s.store)
	if err != nil {
		s.logger.Error("job submission failed", "order_number", rec.ClientOrderNumber, "state", rv.State(), "error", err)
		return nil, submitStatus(err)
	}
	return toStruct(map[string]any{
		"state":                  string(rv.State()),
		"record_id":              created.RecordID,
		"mod_id":                 created.ModID,
		"job_number":             created.JobNumber,
		"confirmation_available": created.ConfirmationAvailable,
	})
}

// FindJobs lists record-store jobs carrying a client order number.
func (s *IntakeService) FindJobs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.store == nil {
		return nil, common.FailedPreconditionError("record store is not configured")
	}
	order := strings.TrimSpace(stringField(req, "order_number"))
	v := common.NewValidator().Field("order_number", order, common.Required, common.MaxLength(maxOrderLen))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	recs, err := s.store.FindByOrderNumber(ctx, order)
	if err != nil {
		s.logger.Error("job search failed", "order_number", order, "error", err)
		return nil, submitStatus(err)
	}
	return toStruct(map[string]any{"records": recs})
}

func submitStatus(err error) error {
	var apiErr *recordstore.APIError
	switch {
	case errors.Is(err, recordstore.ErrAuthentication):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.As(err, &apiErr):
		return status.Error(codes.Aborted, apiErr.Error())
	case errors.Is(err, review.ErrIllegalTransition):
		return common.FailedPreconditionError(err.Error())
	default:
		return common.ToStatus(err)
	}
}
