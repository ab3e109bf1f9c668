package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/extract"
	"github.com/joseph-ayodele/bol-intake/internal/mapping"
	"github.com/joseph-ayodele/bol-intake/internal/ocr"
	"github.com/joseph-ayodele/bol-intake/internal/repository"
	"github.com/joseph-ayodele/bol-intake/internal/source"
)

const sampleBOL = `STRAIGHT BILL OF LADING
Order #: 901234
Carrier's No. MC#778899
ORIGIN: DESTINATION: Pacific Office Automation 1234 North 500 North, Suite B, West Valley City UT 84119 Acme Medical Group 55 East 100 South, Salt Lake City UT 84111
Asset Serial Number Description
Konica Minolta bizhub C368 ACV70119LLE7 Qty 1 350 lbs
TTR Contact: Jane Smith 801-555-0142 jane.smith@example.com
Load: 3/10 Deliver: 3/12-3/14
Call ahead 30 Min Prior
`

type fixture struct {
	proc *Processor
	runs repository.ExtractRunRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := repository.Open(context.Background(), repository.Config{DSN: "sqlite://:memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	runs := repository.NewExtractRunRepository(db, nil)
	clock := func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	defaults := mapping.DefaultsFromConfig(common.DefaultsConfig{
		PeopleRequired: 2,
		LocationLoad:   "PEP",
		ClientCode:     constants.ClientCodeTTRUtah,
		MarketID:       "Utah",
	})

	text := NewTextStage(source.NewOpener(10, nil, nil), ocr.NewExtractor(ocr.Config{EnableOCR: true}, nil), nil)
	fields := NewFieldStage(extract.NewExtractor(extract.WithClock(clock)), mapping.NewMapper(defaults, nil), nil)
	return fixture{proc: NewProcessor(nil, text, fields, runs), runs: runs}
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestProcessDocument(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	path := writeDoc(t, "bol.txt", sampleBOL)

	out, err := fx.proc.ProcessDocument(ctx, path, ocr.ModeAuto, nil)
	require.NoError(t, err)

	assert.Equal(t, constants.MethodText, out.Text.Method)
	assert.Equal(t, "901234", out.Raw.OrderNumber)
	assert.Equal(t, constants.ClientPacific, out.Raw.ClientType)
	require.Len(t, out.Jobs, 1)
	assert.Equal(t, "ACV70119LLE7", out.Jobs[0].ProductSerialNumber)
	assert.Equal(t, "Pickup", out.Jobs[0].JobType)
	assert.Nil(t, out.PreviousRun)

	run, err := fx.runs.Get(ctx, out.RunID)
	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusOK, run.Status)
	assert.Equal(t, "901234", run.OrderNumber)
	assert.Equal(t, out.Raw.Confidence, run.FieldConfidence)
	assert.Equal(t, 1, run.SerialCount)
	assert.Equal(t, out.ContentHash, run.ContentHash)
	assert.NotEmpty(t, run.ExtractedJSON)

	again, err := fx.proc.ProcessDocument(ctx, path, ocr.ModeAuto, nil)
	require.NoError(t, err)
	require.NotNil(t, again.PreviousRun)
	assert.Equal(t, out.RunID, *again.PreviousRun)
	assert.NotEqual(t, out.RunID, again.RunID)
}

func TestProcessDocumentExtractionFailureRecordsRun(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	path := writeDoc(t, "bad.txt", "Order #: 1\x00\x00binary")

	out, err := fx.proc.ProcessDocument(ctx, path, ocr.ModeAuto, nil)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, common.ErrExtraction)

	runs, err := fx.runs.ListRecent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, constants.RunStatusFailed, runs[0].Status)
	require.NotNil(t, runs[0].ErrorMessage)
}

func TestProcessDocumentRejectsUnsupportedSource(t *testing.T) {
	fx := newFixture(t)
	path := writeDoc(t, "bol.docx", sampleBOL)

	_, err := fx.proc.ProcessDocument(context.Background(), path, ocr.ModeAuto, nil)
	assert.ErrorIs(t, err, source.ErrUnsupportedExt)

	runs, err := fx.runs.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestProcessDocumentWithoutHistory(t *testing.T) {
	fx := newFixture(t)
	fx.proc.Runs = nil
	out, err := fx.proc.ProcessDocument(context.Background(), writeDoc(t, "bol.txt", sampleBOL), ocr.ModeText, nil)
	require.NoError(t, err)
	assert.Equal(t, "901234", out.Raw.OrderNumber)
	assert.Zero(t, out.RunID)
}
