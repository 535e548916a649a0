package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"housing-pipeline/models"
)

func TestXLSXWriterSheets(t *testing.T) {
	analytics := models.Frame{Columns: []models.Column{
		{Name: "District", Text: []string{"武侯区", "成华区"}},
		{Name: "Area", Numeric: true, Num: []float64{90, 80}},
	}}
	modeling := models.Frame{Columns: []models.Column{
		{Name: "Area", Numeric: true, Num: []float64{90, 80}},
		{Name: "District_武侯区", Numeric: true, Num: []float64{1, 0}},
	}}

	path := filepath.Join(t.TempDir(), "out", "chengdu.xlsx")
	w, err := NewXLSXWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteSheet("analytics", analytics))
	require.NoError(t, w.WriteSheet("modeling", modeling))
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"analytics", "modeling"}, f.GetSheetList())

	rows, err := f.GetRows("analytics")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"District", "Area"}, {"武侯区", "90"}, {"成华区", "80"}}, rows)

	rows, err = f.GetRows("modeling")
	require.NoError(t, err)
	assert.Equal(t, []string{"Area", "District_武侯区"}, rows[0])
	assert.Equal(t, []string{"90", "1"}, rows[1])
}
