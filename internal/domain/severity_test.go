package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
)

func TestSeverity_Ordering(t *testing.T) {
	t.Parallel()

	tiers := domain.Severities()
	for i := 1; i < len(tiers); i++ {
		assert.Less(t, tiers[i-1], tiers[i])
	}
}

func TestSeverity_TextRoundTrip(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(map[string]domain.Severity{"severity": domain.SeverityDistressed})
	require.NoError(t, err)
	assert.JSONEq(t, `{"severity":"DISTRESSED"}`, string(body))

	var got struct {
		Severity domain.Severity `json:"severity"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"severity":"imminent"}`), &got))
	assert.Equal(t, domain.SeverityImminent, got.Severity)

	require.Error(t, json.Unmarshal([]byte(`{"severity":"PANIC"}`), &got))
}

func TestSeverity_Scan(t *testing.T) {
	t.Parallel()

	var s domain.Severity
	require.NoError(t, s.Scan([]byte("ELEVATED")))
	assert.Equal(t, domain.SeverityElevated, s)

	require.Error(t, s.Scan(int64(3)))

	v, err := domain.SeverityImminent.Value()
	require.NoError(t, err)
	assert.Equal(t, "IMMINENT", v)
}

func TestConcernLabel_Valid(t *testing.T) {
	t.Parallel()

	for _, l := range domain.ConcernLabels() {
		assert.True(t, l.Valid(), l)
	}
	assert.False(t, domain.ConcernLabel("grief").Valid())
}
