package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := "Location,Patient ID,Status\nMain St,1042,scheduled\nWestside,1043,completed\n"
	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 0, rows[0].Index)
	assert.Equal(t, []string{"Location", "Patient ID", "Status"}, rows[0].Data.Columns())
	assert.Equal(t, "1042", rows[0].Data.Value("Patient ID"))
	assert.Equal(t, "completed", rows[1].Data.Value("Status"))
}

func TestReadCSVSkipsBOM(t *testing.T) {
	input := "\xEF\xBB\xBFLocation,Status\nMain St,ok\n"
	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Main St", rows[0].Data.Value("Location"))
}

func TestReadCSVRaggedRecords(t *testing.T) {
	input := "A,B,C\n1,2\n1,2,3,4\n"
	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Short record: missing trailing column absent from the map.
	_, ok := rows[0].Data.Get("C")
	assert.False(t, ok)

	// Long record: extra cell gets a positional name.
	assert.Equal(t, "4", rows[1].Data.Value("Column 4"))
}

func TestReadCSVEmptyInput(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadCSVHeaderOnly(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("A,B\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
