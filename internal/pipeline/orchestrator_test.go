package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radsafe/doserisk/internal/dose"
	"github.com/radsafe/doserisk/internal/extract"
	"github.com/radsafe/doserisk/internal/params"
)

const thyroidDocument = `                HotSpot Version 3.1.2   General Plume
Stability Class           :   D

Time After Release        :   2,00 hours
Thyroid.......................[2.00E-02]

Time After Release        :   8,00 hours
Thyroid.......................[3.00E-02]
`

const corruptDocument = `no dose data anywhere in this file
just prose
`

func testParams() Params {
	return Params{
		AgeAtExposure:   30,
		AgeAtAssessment: 60,
		Sexes:           []dose.Sex{dose.Female},
	}
}

func TestProcess_SingleDocumentRoundTrip(t *testing.T) {
	o := New(params.Default())

	batch := o.Process(context.Background(), []Document{
		{Name: "plume.txt", Content: thyroidDocument},
	}, testParams())

	assert.NotEmpty(t, batch.RunID)
	require.Len(t, batch.Outcomes, 1)

	out := batch.Outcomes[0]
	require.False(t, out.Failed(), "outcome error: %v", out.Err)
	assert.NotEmpty(t, out.Document.ID, "documents get an ID assigned")

	report := out.Report
	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.Equal(t, dose.OrganThyroid, res.Organ)
	assert.InDelta(t, 0.05, res.DoseSv, 1e-12) // 0.02 + 0.03 summed over windows
	// Low dose selects BEIR VII: 1.05 * 0.05 / 1.5 at reference ages.
	assert.Equal(t, dose.ModelBEIRVII, res.Model)
	assert.InDelta(t, 0.035, res.ERR, 1e-12)
	assert.InDelta(t, 0.035*0.0163, report.Total(), 1e-12)
}

func TestProcess_LogCoversLifecycle(t *testing.T) {
	o := New(params.Default())

	batch := o.Process(context.Background(), []Document{
		{Name: "plume.txt", Content: thyroidDocument},
	}, testParams())

	kinds := make(map[EntryKind]int)
	for _, e := range batch.Log {
		assert.Equal(t, batch.RunID, e.RunID)
		kinds[e.Kind]++
	}
	assert.Equal(t, 1, kinds[EntryRunStart])
	assert.Equal(t, 1, kinds[EntryRunEnd])
	assert.Equal(t, 1, kinds[EntryDocumentDone])
	assert.Equal(t, 1, kinds[EntryModelSelected])
	assert.Equal(t, EntryRunStart, batch.Log[0].Kind)
	assert.Equal(t, EntryRunEnd, batch.Log[len(batch.Log)-1].Kind)
}

func TestProcess_MixedBatchKeepsOrder(t *testing.T) {
	o := New(params.Default(), WithWorkers(2))

	docs := []Document{
		{Name: "good-1.txt", Content: thyroidDocument},
		{Name: "bad.txt", Content: corruptDocument},
		{Name: "good-2.txt", Content: thyroidDocument},
	}
	batch := o.Process(context.Background(), docs, testParams())

	require.Len(t, batch.Outcomes, 3)
	assert.Equal(t, "good-1.txt", batch.Outcomes[0].Document.Name)
	assert.Equal(t, "bad.txt", batch.Outcomes[1].Document.Name)
	assert.Equal(t, "good-2.txt", batch.Outcomes[2].Document.Name)

	assert.False(t, batch.Outcomes[0].Failed())
	assert.True(t, batch.Outcomes[1].Failed())
	assert.True(t, extract.IsNoData(batch.Outcomes[1].Err))
	assert.False(t, batch.Outcomes[2].Failed())

	var failEntries int
	for _, e := range batch.Log {
		if e.Kind == EntryDocumentFail {
			failEntries++
			assert.Equal(t, "bad.txt", e.Document)
		}
	}
	assert.Equal(t, 1, failEntries)
}

func TestProcess_ManyDocumentsConcurrently(t *testing.T) {
	o := New(params.Default(), WithWorkers(8))

	var docs []Document
	for i := 0; i < 32; i++ {
		docs = append(docs, Document{Name: fmt.Sprintf("doc-%02d.txt", i), Content: thyroidDocument})
	}
	batch := o.Process(context.Background(), docs, testParams())

	require.Len(t, batch.Outcomes, 32)
	for i, out := range batch.Outcomes {
		assert.Equal(t, docs[i].Name, out.Document.Name, "input order preserved")
		require.False(t, out.Failed())
		assert.InDelta(t, 0.035, out.Report.Results[0].ERR, 1e-12)
	}
}

func TestProcess_CancelledContextSkipsDispatch(t *testing.T) {
	o := New(params.Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := o.Process(ctx, []Document{
		{Name: "plume.txt", Content: thyroidDocument},
	}, testParams())

	require.Len(t, batch.Outcomes, 1)
	assert.True(t, batch.Outcomes[0].Failed())
	assert.ErrorIs(t, batch.Outcomes[0].Err, context.Canceled)
}

func TestProcess_AgeOverrideAppliesToOneDocument(t *testing.T) {
	o := New(params.Default(), WithAgeOverride("doc-young", AgeOverride{
		AgeAtExposure:   10,
		AgeAtAssessment: 40,
	}))

	batch := o.Process(context.Background(), []Document{
		{ID: "doc-young", Name: "young.txt", Content: thyroidDocument},
		{ID: "doc-ref", Name: "ref.txt", Content: thyroidDocument},
	}, testParams())

	require.Len(t, batch.Outcomes, 2)
	young := batch.Outcomes[0].Report.Results[0]
	ref := batch.Outcomes[1].Report.Results[0]
	assert.Greater(t, young.ERR, ref.ERR, "earlier exposure age raises thyroid risk")
	assert.InDelta(t, 0.035, ref.ERR, 1e-12)
}

func TestReprocess_UsesCachedTable(t *testing.T) {
	o := New(params.Default())

	batch := o.Process(context.Background(), []Document{
		{Name: "plume.txt", Content: thyroidDocument},
	}, testParams())
	docID := batch.Outcomes[0].Document.ID

	table, ok := o.CachedTable(docID)
	require.True(t, ok)
	assert.Equal(t, 1, table.Len())

	// Same parameters reproduce the original report exactly.
	report, log, err := o.Reprocess(docID, testParams())
	require.NoError(t, err)
	assert.InDelta(t, batch.Outcomes[0].Report.Total(), report.Total(), 1e-15)
	assert.NotEmpty(t, log)

	// Forcing the high-dose model changes the numbers without re-parsing.
	forced := testParams()
	forced.ForcedModel = dose.ModelBEIRV
	reportV, _, err := o.Reprocess(docID, forced)
	require.NoError(t, err)
	require.Len(t, reportV.Results, 1)
	assert.Equal(t, dose.ModelBEIRV, reportV.Results[0].Model)
	// Thyroid BEIR V at adult exposure: 0.5 * D.
	assert.InDelta(t, 0.5*0.05, reportV.Results[0].ERR, 1e-12)
}

func TestReprocess_UnknownDocumentIsAnError(t *testing.T) {
	o := New(params.Default())
	_, _, err := o.Reprocess("no-such-id", testParams())
	require.Error(t, err)
}

func TestMemoryRecorder_CopiesEntries(t *testing.T) {
	rec := &MemoryRecorder{}
	rec.Record(LogEntry{Kind: EntryRunStart, Message: "a"})

	entries := rec.Entries()
	require.Len(t, entries, 1)
	entries[0].Message = "mutated"

	assert.Equal(t, "a", rec.Entries()[0].Message)
}
