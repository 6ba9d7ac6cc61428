package dose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_TotalDose(t *testing.T) {
	table := NewTable(map[Organ][]Entry{
		OrganThyroid: {{TimeHours: 2, DoseSv: 0.03}, {TimeHours: 8, DoseSv: 0.02}},
		OrganLung:    {{TimeHours: 2, DoseSv: 0.012}},
	})

	total, ok := table.TotalDose(OrganThyroid)
	require.True(t, ok)
	assert.InDelta(t, 0.05, total, 1e-12)

	_, ok = table.TotalDose(OrganBrain)
	assert.False(t, ok, "absent organ should report not found")
}

func TestTable_OrgansOrder(t *testing.T) {
	table := NewTable(map[Organ][]Entry{
		OrganThyroid: {{TimeHours: 1, DoseSv: 1}},
		OrganSkin:    {{TimeHours: 1, DoseSv: 1}},
		OrganLung:    {{TimeHours: 1, DoseSv: 1}},
	})

	// Canonical print order, not map order.
	assert.Equal(t, []Organ{OrganSkin, OrganLung, OrganThyroid}, table.Organs())
}

func TestTable_UnknownOrganSortsLast(t *testing.T) {
	table := NewTable(map[Organ][]Entry{
		Organ("zz_future_organ"): {{TimeHours: 1, DoseSv: 1}},
		OrganThyroid:             {{TimeHours: 1, DoseSv: 1}},
	})
	assert.Equal(t, []Organ{OrganThyroid, Organ("zz_future_organ")}, table.Organs())
}

func TestNewTable_CopiesAndDropsEmpty(t *testing.T) {
	entries := []Entry{{TimeHours: 1, DoseSv: 0.5}}
	table := NewTable(map[Organ][]Entry{
		OrganLiver: entries,
		OrganBrain: {},
	})

	// Mutating the caller's slice must not leak into the table.
	entries[0].DoseSv = 99
	got, ok := table.Series(OrganLiver)
	require.True(t, ok)
	assert.Equal(t, 0.5, got[0].DoseSv)

	_, ok = table.Series(OrganBrain)
	assert.False(t, ok, "organ without entries must be absent")
	assert.Equal(t, 1, table.Len())
}

func TestParseSex(t *testing.T) {
	for _, raw := range []string{"male", "M", "m"} {
		sex, err := ParseSex(raw)
		require.NoError(t, err)
		assert.Equal(t, Male, sex)
	}
	for _, raw := range []string{"female", "F", "f"} {
		sex, err := ParseSex(raw)
		require.NoError(t, err)
		assert.Equal(t, Female, sex)
	}
	_, err := ParseSex("x")
	assert.Error(t, err)
}
