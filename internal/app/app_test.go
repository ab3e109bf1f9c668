package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/ocr"
)

const sampleBOL = `STRAIGHT BILL OF LADING
Order #: 901234
ORIGIN: DESTINATION: Pacific Office Automation 1234 North 500 North, Suite B, West Valley City UT 84119 Acme Medical Group 55 East 100 South, Salt Lake City UT 84111
Asset Serial Number Description
Konica Minolta bizhub C368 ACV70119LLE7 Qty 1 350 lbs
`

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	t.Setenv("HISTORY_DSN", "sqlite://:memory:")
	t.Setenv("FM_USERNAME", "")
	t.Setenv("FM_PASSWORD", "")
	return common.LoadConfig()
}

func TestBuildWithoutRecordStore(t *testing.T) {
	cfg := testConfig(t)
	a, err := Build(context.Background(), cfg, nil, Options{})
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.DB)
	assert.Nil(t, a.Store)
	_, err = a.RecordStore()
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	doc := filepath.Join(t.TempDir(), "bol.txt")
	require.NoError(t, os.WriteFile(doc, []byte(sampleBOL), 0o644))
	out, err := a.Processor.ProcessDocument(context.Background(), doc, ocr.ModeAuto, nil)
	require.NoError(t, err)
	assert.Equal(t, "901234", out.Raw.OrderNumber)
	assert.NotEqual(t, uuid.Nil, out.RunID)

	runs, err := a.Runs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestBuildNoHistoryWithRecordStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.RecordStore.Username = "intake"
	cfg.RecordStore.Password = "secret"

	a, err := Build(context.Background(), cfg, nil, Options{NoHistory: true})
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB)
	assert.Nil(t, a.Runs)
	store, err := a.RecordStore()
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Defaults.MaxFileSizeMB = 0
	_, err := Build(context.Background(), cfg, nil, Options{NoHistory: true})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
