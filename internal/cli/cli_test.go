package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/triage/internal/cli"
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
)

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, cli.Execute(context.Background(), []string{"version"}, &out))
	assert.Equal(t, "triage version dev\n", out.String())
}

func TestAnalyze_PrintsJSON(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yml"))

	var out bytes.Buffer
	err := cli.Execute(context.Background(), []string{"analyze", "I", "want", "to", "die"}, &out)
	require.NoError(t, err)

	var analysis domain.Analysis
	require.NoError(t, json.Unmarshal(out.Bytes(), &analysis))
	assert.Equal(t, domain.SeverityImminent, analysis.Severity)
	assert.NotEmpty(t, analysis.Reply)
	assert.Equal(t, "crisis", analysis.ReplyRule)
}

func TestAnalyze_RequiresText(t *testing.T) {
	err := cli.Execute(context.Background(), []string{"analyze"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestMigrate_PrintsHelp(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, cli.Execute(context.Background(), []string{"migrate"}, &out))
	assert.Contains(t, out.String(), "up")
}
