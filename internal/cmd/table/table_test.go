package table_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/peacekeeping/internal/cmd/table"
	"github.com/agentstation/peacekeeping/internal/utils/ptr"
	"github.com/agentstation/peacekeeping/pkg/calendar"
	"github.com/agentstation/peacekeeping/pkg/pipeline"
	"github.com/agentstation/peacekeeping/pkg/records"
)

func TestUnmatchedToTableData(t *testing.T) {
	data := table.UnmatchedToTableData(
		[]string{"Burma", "East Timor"},
		[]string{"Burma", "Timor Leste"},
	)
	assert.Equal(t, []string{"Country", "Status"}, data.Headers)
	assert.Equal(t, [][]string{
		{"Burma", "unmatched"},
		{"East Timor", "substituted"},
		{"Timor Leste", "introduced"},
	}, data.Rows)
}

func TestProjectionToTableData(t *testing.T) {
	data := table.ProjectionToTableData([]records.CountryProjection{
		{Mission: "UNMIT", Countries: ptr.To("Timor-Leste")},
		{Mission: "GHOST"},
	})
	assert.Equal(t, [][]string{{"UNMIT", "Timor-Leste"}, {"GHOST", "-"}}, data.Rows)
}

func TestUnassignedToTableData(t *testing.T) {
	data := table.UnassignedToTableData([]records.Unassigned{{Mission: "ORPHAN", Year: 1999, Fatalities: 2}})
	assert.Equal(t, [][]string{{"ORPHAN", "1999", "2"}}, data.Rows)
	assert.Len(t, data.ColumnAlignment, 3)
}

func TestSummaryToTableData(t *testing.T) {
	result := &pipeline.Result{
		Stats: pipeline.Stats{Missions: 2, Rows: 158, Fatalities: 7},
		Metadata: pipeline.Metadata{
			RunID:    "run-1",
			Horizon:  calendar.DefaultHorizon(),
			Duration: time.Second,
		},
		DuplicateMissions: []string{"UNEF"},
	}
	data := table.SummaryToTableData(result)

	values := make(map[string]string, len(data.Rows))
	for _, row := range data.Rows {
		values[row[0]] = row[1]
	}
	assert.Equal(t, "run-1", values["Run ID"])
	assert.Equal(t, "1947-2025", values["Horizon"])
	assert.Equal(t, "158", values["Rows"])
	assert.Equal(t, "1", values["Duplicate missions"])
	assert.Equal(t, "7", values["Fatalities in table"])
	assert.Equal(t, "1s", values["Duration"])
}
