package check_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peacekeeping/cmd/peacekeeping/cmd/check"
	"github.com/agentstation/peacekeeping/internal/appcontext"
	"github.com/agentstation/peacekeeping/pkg/pipeline"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func mockApp(t *testing.T, format string) *appcontext.Mock {
	t.Helper()
	dir := t.TempDir()
	paths := pipeline.Paths{
		Missions: writeFile(t, dir, "missions.csv", "mission_acronym,countries_of_operation,start_year,end_year\n"+
			"UNMIT,East Timor,2006,2012\n"+
			"MINURSO,\"Western Sahara, Morocco\",1991,ongoing\n"+
			"UNMIT,Timor,2006,2012\n"),
		Countries: writeFile(t, dir, "countries.csv", "NAME\nTimor-Leste\nW. Sahara\n"),
	}
	return &appcontext.Mock{
		OutputFormatFunc: func() string { return format },
		InputsFunc:       func() pipeline.Paths { return paths },
	}
}

func TestCheckJSON(t *testing.T) {
	cmd := check.NewCommand(mockApp(t, "json"))
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	var report check.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, 3, report.Referenced)
	assert.Equal(t, 2, report.Substituted)
	assert.Equal(t, []string{"East Timor", "Morocco", "Western Sahara"}, report.UnmatchedBefore)
	assert.Equal(t, []string{"Morocco"}, report.UnmatchedAfter)
	assert.Equal(t, []string{"UNMIT"}, report.DuplicateMissions)
}

func TestCheckTable(t *testing.T) {
	cmd := check.NewCommand(mockApp(t, "table"))
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "Morocco")
	assert.Contains(t, buf.String(), "unmatched")
	assert.Contains(t, buf.String(), "substituted")
}

func TestCheckMissingInputs(t *testing.T) {
	cmd := check.NewCommand(&appcontext.Mock{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}
