package export

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankingTable(rows int) Table {
	table := Table{Title: "Overall Ranking", Headers: []string{"Rank", "Admission", "Name", "Average"}}
	for i := 1; i <= rows; i++ {
		table.Rows = append(table.Rows, []string{fmt.Sprint(i), fmt.Sprintf("S%d", i), "Jane, Doe", "75.00"})
	}
	return table
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(rankingTable(2))
	require.NoError(t, err)
	assert.Equal(t, "Rank,Admission,Name,Average\n1,S1,\"Jane, Doe\",75.00\n2,S2,\"Jane, Doe\",75.00\n", string(out))
}

func TestCSVExporterRejectsRaggedRows(t *testing.T) {
	table := rankingTable(1)
	table.Rows[0] = table.Rows[0][:2]
	_, err := NewCSVExporter().Render(table)
	assert.Error(t, err)

	_, err = NewCSVExporter().Render(Table{})
	assert.Error(t, err)
}

func TestPDFExporterRendersMultiplePages(t *testing.T) {
	out, err := NewPDFExporter().Render(rankingTable(80))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestExporterMetadata(t *testing.T) {
	assert.Equal(t, "csv", NewCSVExporter().Extension())
	assert.Equal(t, "application/pdf", NewPDFExporter().ContentType())
}
