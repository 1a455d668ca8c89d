package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	path := WriteWorkbook(t, "inscripciones.xlsx", RequiredHeaders, SampleRows())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, RequiredHeaders, rows[0])
	assert.Equal(t, "Python Básico", rows[3][2])
}

func TestCSVBytes(t *testing.T) {
	data := CSVBytes(t, []string{"a", "b"}, [][]string{{"1", "2"}})
	assert.Equal(t, "a,b\n1,2\n", string(data))
}
