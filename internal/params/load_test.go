package params

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radsafe/doserisk/internal/dose"
)

func TestDefault_LoadsAndCoversEveryOrgan(t *testing.T) {
	set := Default()

	assert.Equal(t, "2.0", set.Metadata.Version)
	assert.Len(t, set.Organs(), len(dose.KnownOrgans))

	for _, organ := range dose.KnownOrgans {
		cfg, ok := set.Config(organ)
		require.True(t, ok, "organ %s must be configured", organ)
		assert.NotEmpty(t, cfg.Equivalence, "organ %s", organ)
	}
}

func TestDefault_ModelSpecificEntries(t *testing.T) {
	set := Default()

	marrow, _ := set.Config(dose.OrganRedMarrow)
	assert.Equal(t, VIILeukemia, marrow.BEIRVII.ModelType)
	assert.Equal(t, VLeukemiaQ, marrow.BEIRV.ModelType)
	assert.Equal(t, 0.243, marrow.BEIRV.Alpha2)
	require.Len(t, marrow.BEIRV.TimeWindows, 2)

	breast, _ := set.Config(dose.OrganBreast)
	assert.Equal(t, VBreast, breast.BEIRV.ModelType)
	assert.Nil(t, breast.BEIRVII.Beta.Male, "breast model must not apply to males")
	require.NotNil(t, breast.BEIRVII.Beta.Female)

	thyroid, _ := set.Config(dose.OrganThyroid)
	assert.Equal(t, VThyroid, thyroid.BEIRV.ModelType)
	assert.Equal(t, 7.5, thyroid.BEIRV.CoefYoung)
	assert.Equal(t, 0.5, thyroid.BEIRV.CoefAdult)
}

// minimalTable returns a table with a single organ; the loader must reject it
// for not covering the known organ list.
const minimalTable = `
configurations:
  thyroid:
    equivalence: thyroid
    baseline_incidence: {male: 0.002, female: 0.016}
    beir_vii:
      model_type: solid
      latency: 5
      ddref: 1.5
      beta: {male: 0.53, female: 1.05}
      gamma: -0.83
      eta: 0.0
    beir_v:
      model_type: thyroid_age_dependent
      threshold_age: 18
      coef_young: 7.5
      coef_adult: 0.5
`

func TestLoad_MissingOrganFailsAtLoadTime(t *testing.T) {
	_, err := Load([]byte(minimalTable))
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "no configuration for known organ")
}

func TestLoad_SchemaRejectsBadModelType(t *testing.T) {
	bad := strings.Replace(minimalTable, "model_type: solid", "model_type: cubic", 1)
	_, err := Load([]byte(bad))
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestLoad_SchemaRejectsNegativeLatency(t *testing.T) {
	bad := strings.Replace(minimalTable, "latency: 5", "latency: -1", 1)
	_, err := Load([]byte(bad))
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestLoad_RejectsBetaMissingForBothSexes(t *testing.T) {
	bad := strings.Replace(minimalTable,
		"beta: {male: 0.53, female: 1.05}", "beta: {}", 1)
	_, err := Load([]byte(bad))
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	_, err := Load([]byte("configurations: ["))
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestSexValue_For(t *testing.T) {
	v := 0.5
	sv := SexValue{Female: &v}

	got, ok := sv.For(dose.Female)
	require.True(t, ok)
	assert.Equal(t, 0.5, got)

	_, ok = sv.For(dose.Male)
	assert.False(t, ok)
}
