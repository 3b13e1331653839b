package output

import (
	"io"

	"github.com/agentstation/peacekeeping/internal/cmd/table"
)

// Write formats a command result. Table output uses tableData; json and
// yaml output encode raw as is.
func Write(w io.Writer, format Format, tableData table.Data, raw any) error {
	formatter := NewFormatter(format)

	var outputData any
	switch format {
	case FormatTable, "":
		outputData = tableData
	default:
		outputData = raw
	}

	return formatter.Format(w, outputData)
}
