package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-pipeline/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func sampleRaw() []*models.RawListing {
	return []*models.RawListing{
		{
			Title: "玉林 精装三房, 南北通透", Community: "玉林小区", District: "武侯", SubDistrict: "玉林小区",
			TotalPrice: "150万", UnitPrice: "16,500元/平", Area: "90.5平米", Layout: "3室1厅",
			Orientation: "南 北", Decoration: "精装", Floor: "中楼层(共18层)", YearBuilt: "2005年建",
			BuildingType: "板楼", Followers: "8人关注", Elevator: models.ElevatorYes,
		},
		{
			Title: "建设路两房", Community: "建设路小区", District: "成华", SubDistrict: models.UnknownField,
			TotalPrice: "95万", UnitPrice: "11800元/平", Area: "80平米", Layout: "2室1厅",
			Orientation: "北", Decoration: "简装", Floor: models.UnknownField, YearBuilt: models.UnknownField,
			BuildingType: models.UnknownField, Followers: "0人关注", Elevator: models.ElevatorNo,
		},
	}
}

func TestRawCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "raw.csv")
	require.NoError(t, WriteRawFile(path, sampleRaw()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, utf8BOM, data[:3], "file starts with a UTF-8 BOM")

	got, err := ReadRaw(path)
	require.NoError(t, err)
	assert.Equal(t, sampleRaw(), got)
}

func TestReadRawMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")
	_, err := ReadRaw(path)

	var missing *models.MissingInputError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, StageScrape, missing.Prerequisite)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), `run the "scrape" stage first`)
}

func TestReadRawMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("Title,Community\na,b\n"), 0644))

	_, err := ReadRaw(path)
	assert.ErrorContains(t, err, `missing column "District"`)
}

func TestFrameCSVAndAnalyticsRoundTrip(t *testing.T) {
	want := []models.Listing{{
		Title: "A", Community: "玉林小区", District: "武侯区", SubDistrict: "玉林",
		TotalPrice: 150, UnitPrice: 16500, Area: 90.5, Layout: "3室1厅", Orientation: "南",
		Decoration: "精装", Floor: "中楼层", YearBuilt: 2005, BuildingType: "板楼",
		Followers: 8, Elevator: true, RoomCount: 3,
	}}
	frame := models.Frame{}
	for j, name := range models.AnalyticsColumns {
		row := []string{"A", "玉林小区", "武侯区", "玉林", "", "", "", "3室1厅", "南", "精装", "中楼层", "", "板楼", "", models.ElevatorYes, ""}
		nums := []float64{0, 0, 0, 0, 150, 16500, 90.5, 0, 0, 0, 0, 2005, 0, 8, 0, 3}
		if row[j] == "" {
			frame.Columns = append(frame.Columns, models.Column{Name: name, Numeric: true, Num: []float64{nums[j]}})
		} else {
			frame.Columns = append(frame.Columns, models.Column{Name: name, Text: []string{row[j]}})
		}
	}

	path := filepath.Join(t.TempDir(), "analytics.csv")
	require.NoError(t, WriteFrameFile(path, frame))

	got, err := ReadAnalytics(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadAnalyticsMissingFile(t *testing.T) {
	_, err := ReadAnalytics(filepath.Join(t.TempDir(), "nope.csv"))

	var missing *models.MissingInputError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, StageClean, missing.Prerequisite)
}

func TestReadAnalyticsBadNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	row := make([]string, len(models.AnalyticsColumns))
	for i := range row {
		row[i] = "1"
	}
	row[5] = "lots"
	frame := models.Frame{}
	for i, name := range models.AnalyticsColumns {
		frame.Columns = append(frame.Columns, models.Column{Name: name, Text: []string{row[i]}})
	}
	require.NoError(t, w.WriteFrame(frame))
	require.NoError(t, w.Close())

	_, err = ReadAnalytics(path)
	assert.ErrorContains(t, err, "UnitPrice")
}
