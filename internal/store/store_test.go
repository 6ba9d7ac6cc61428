package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radsafe/doserisk/internal/dose"
	"github.com/radsafe/doserisk/internal/pipeline"
	"github.com/radsafe/doserisk/internal/risk"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "doserisk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBatch() (*pipeline.BatchResult, pipeline.Params, map[string]*dose.Table) {
	table := dose.NewTable(map[dose.Organ][]dose.Entry{
		dose.OrganThyroid: {{TimeHours: 2, DoseSv: 0.02}, {TimeHours: 8, DoseSv: 0.03}},
		dose.OrganLung:    {{TimeHours: 2, DoseSv: 0.01}},
	})
	batch := &pipeline.BatchResult{
		RunID: "run-1",
		Outcomes: []pipeline.Outcome{
			{
				Document: pipeline.Document{ID: "doc-1", Name: "plume.txt"},
				Report: &risk.Report{
					Results: []risk.Result{
						{Organ: dose.OrganThyroid, Sex: dose.Female, DoseSv: 0.05, Model: dose.ModelBEIRVII, ERR: 0.035, LAR: 0.035 * 0.0163},
						{Organ: dose.OrganLung, Sex: dose.Female, DoseSv: 0.01, Model: dose.ModelBEIRVII, ERR: 0.004, LAR: 0.0002},
					},
					TotalLAR: map[dose.Sex]float64{dose.Female: 0.0008},
				},
			},
			{
				Document: pipeline.Document{ID: "doc-2", Name: "broken.txt"},
				Err:      errors.New("no usable dose data"),
			},
		},
	}
	p := pipeline.Params{AgeAtExposure: 30, AgeAtAssessment: 60}
	return batch, p, map[string]*dose.Table{"doc-1": table}
}

func TestSaveBatch_LoadTableRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	batch, p, tables := sampleBatch()
	require.NoError(t, s.SaveBatch(ctx, batch, p, tables))

	loaded, ok, err := s.LoadTable(ctx, "doc-1")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 2, loaded.Len())
	entries, ok := loaded.Series(dose.OrganThyroid)
	require.True(t, ok)
	require.Len(t, entries, 2)
	assert.Equal(t, dose.Entry{TimeHours: 2, DoseSv: 0.02}, entries[0])
	assert.Equal(t, dose.Entry{TimeHours: 8, DoseSv: 0.03}, entries[1])

	total, ok := loaded.TotalDose(dose.OrganThyroid)
	require.True(t, ok)
	assert.InDelta(t, 0.05, total, 1e-12)
}

func TestLoadTable_UnknownDocument(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.LoadTable(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindDocument_ResolvesNewestRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	batch, p, tables := sampleBatch()
	require.NoError(t, s.SaveBatch(ctx, batch, p, tables))

	id, ok, err := s.FindDocument(ctx, "plume.txt")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "doc-1", id)

	_, ok, err = s.FindDocument(ctx, "never-seen.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveBatch_DuplicateRunIDFails(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	batch, p, tables := sampleBatch()
	require.NoError(t, s.SaveBatch(ctx, batch, p, tables))

	dup, _, _ := sampleBatch()
	err := s.SaveBatch(ctx, dup, p, nil)
	require.Error(t, err, "run IDs are primary keys")
}

func TestListRuns_CountsDocumentsAndFailures(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	batch, p, tables := sampleBatch()
	require.NoError(t, s.SaveBatch(ctx, batch, p, tables))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, 30.0, run.AgeAtExposure)
	assert.Equal(t, 60.0, run.AgeAtAssessment)
	assert.Equal(t, 2, run.Documents)
	assert.Equal(t, 1, run.Failed)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doserisk.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	batch, p, tables := sampleBatch()
	require.NoError(t, s.SaveBatch(ctx, batch, p, tables))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	_, ok, err := s2.LoadTable(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, ok)
}
