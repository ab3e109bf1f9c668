package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bol-intake/internal/mapping"
)

func TestParseEdits(t *testing.T) {
	edits, err := parseEdits([]string{"phone_C1=801-555-0100", " notes_job =fragile=yes"})
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"phone_C1", "801-555-0100"}, {"notes_job", "fragile=yes"}}, edits)

	_, err = parseEdits([]string{"no-equals"})
	assert.Error(t, err)
	_, err = parseEdits([]string{"=value"})
	assert.Error(t, err)
}

func TestSelectJobs(t *testing.T) {
	jobs := []*mapping.JobRecord{{ProductSerialNumber: "A1"}, {ProductSerialNumber: "B2"}}
	assert.Len(t, selectJobs(jobs, ""), 2)
	got := selectJobs(jobs, "B2")
	require.Len(t, got, 1)
	assert.Equal(t, "B2", got[0].ProductSerialNumber)
	assert.Empty(t, selectJobs(jobs, "C3"))
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("%PDF"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.docx"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".hidden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden", "b.pdf"), []byte("%PDF"), 0o644))
	single := filepath.Join(t.TempDir(), "c.txt")
	require.NoError(t, os.WriteFile(single, []byte("BOL"), 0o644))

	got, err := expandInputs([]string{dir, single, "s3://bucket/d.pdf"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.pdf"), single, "s3://bucket/d.pdf"}, got)

	_, err = expandInputs([]string{filepath.Join(dir, "missing.pdf")})
	assert.Error(t, err)
}
