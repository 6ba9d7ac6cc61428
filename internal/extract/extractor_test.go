package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radsafe/doserisk/internal/dose"
)

const sampleDocument = `                HotSpot Version 3.1.2   General Plume
Physical Stack Height     :   20,0 m
Wind Speed (h=10 m)       :   2,5 m/s
Stability Class           :   D

Time After Release        :   2,00 hours
Thyroid.......................[5.00E-02]
Lung..........................[1.20E-02]
Red Marrow....................[3.40E-03]

Time After Release        :   8,00 hours
Thyroid.......................[1.00E-02]
`

func TestExtract_WellFormed(t *testing.T) {
	res, err := Extract(sampleDocument)
	require.NoError(t, err)

	require.Len(t, res.Observations, 4)
	for _, obs := range res.Observations {
		assert.Positive(t, obs.Line, "every observation must reference a source line")
		assert.LessOrEqual(t, obs.Line, strings.Count(sampleDocument, "\n")+1)
	}

	first := res.Observations[0]
	assert.Equal(t, dose.OrganThyroid, first.Organ)
	assert.InDelta(t, 2.0, first.TimeHours, 1e-12)
	assert.InDelta(t, 0.05, first.DoseSv, 1e-12)
	assert.Equal(t, 7, first.Line)

	marrow := res.Observations[2]
	assert.Equal(t, dose.OrganRedMarrow, marrow.Organ, "multi-word labels normalize to snake_case")

	last := res.Observations[3]
	assert.InDelta(t, 8.0, last.TimeHours, 1e-12)
}

func TestExtract_SkipsUnrecognizedLines(t *testing.T) {
	doc := sampleDocument + "\n%%% corrupted trailing line %%%\n"
	res, err := Extract(doc)
	require.NoError(t, err)

	// The banner line and the corrupted line match no pattern.
	assert.Equal(t, 2, res.LinesSkipped)
	var kinds []dose.DiagnosticKind
	for _, d := range res.Diagnostics {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, dose.DiagLineSkipped)
}

func TestExtract_InvalidCellIsNotFatal(t *testing.T) {
	doc := `Time After Release : 2,00 hours
Thyroid.......................[5.00E-02]
Lung..........................[not a number]
`
	res, err := Extract(doc)
	require.NoError(t, err)

	require.Len(t, res.Observations, 1, "only the valid cell survives")
	assert.Equal(t, dose.OrganThyroid, res.Observations[0].Organ)

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, dose.DiagCellInvalid, d.Kind)
	assert.Equal(t, dose.OrganLung, d.Organ)
	assert.Equal(t, 3, d.Line)
}

func TestExtract_DoseLineOutsideTimeBlock(t *testing.T) {
	doc := `Thyroid.......................[5.00E-02]
Time After Release : 2,00 hours
Lung..........................[1.20E-02]
`
	res, err := Extract(doc)
	require.NoError(t, err)

	require.Len(t, res.Observations, 1)
	assert.Equal(t, dose.OrganLung, res.Observations[0].Organ)
	assert.Equal(t, 1, res.LinesSkipped)
}

func TestExtract_NoUsableData(t *testing.T) {
	doc := `Physical Stack Height : 20,0 m
nothing resembling dose data here
`
	_, err := Extract(doc)
	require.Error(t, err)
	assert.True(t, IsNoData(err))

	var ee *Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrCodeNoData, ee.Code)
}

func TestExtract_EmptyDocument(t *testing.T) {
	_, err := Extract("   \n  \n")
	require.Error(t, err)
	assert.True(t, IsNoData(err))
}

func TestExtract_MultipleCellsPerLine(t *testing.T) {
	doc := `Time After Release : 1,00 hours
Skin......[1.00E-03]  Liver......[2.00E-03]
`
	res, err := Extract(doc)
	require.NoError(t, err)
	require.Len(t, res.Observations, 2)
	assert.Equal(t, dose.OrganSkin, res.Observations[0].Organ)
	assert.Equal(t, dose.OrganLiver, res.Observations[1].Organ)
	assert.Equal(t, res.Observations[0].Line, res.Observations[1].Line)
}

func TestExtract_UnreadableTimeMarkerInvalidatesBlock(t *testing.T) {
	doc := `Time After Release : ??? hours
Thyroid.......................[5.00E-02]
Time After Release : 4,00 hours
Thyroid.......................[2.00E-02]
`
	res, err := Extract(doc)
	require.NoError(t, err)
	require.Len(t, res.Observations, 1)
	assert.InDelta(t, 4.0, res.Observations[0].TimeHours, 1e-12)
}
