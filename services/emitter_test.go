package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-pipeline/models"
)

func emitterListings() []models.Listing {
	return []models.Listing{
		{Title: "A", Community: "甲", District: "武侯区", SubDistrict: "玉林", TotalPrice: 150, UnitPrice: 16500,
			Area: 90, Layout: "3室1厅", Orientation: "南", Decoration: "精装", Floor: "高楼层", YearBuilt: 2005,
			BuildingType: "板楼", Followers: 3, Elevator: true, RoomCount: 3},
		{Title: "B", Community: "乙", District: "成华区", SubDistrict: "玉林", TotalPrice: 90, UnitPrice: 11000,
			Area: 82, Layout: "2室1厅", Orientation: "南", Decoration: "简装", Floor: "低楼层", YearBuilt: 2010,
			BuildingType: "塔楼", Followers: 0, Elevator: false, RoomCount: 2},
		{Title: "C", Community: "丙", District: "武侯区", SubDistrict: "玉林", TotalPrice: 210, UnitPrice: 21000,
			Area: 100, Layout: "3室2厅", Orientation: "南 北", Decoration: "精装", Floor: "中楼层", YearBuilt: 2015,
			BuildingType: "板楼", Followers: 12, Elevator: true, RoomCount: 3},
	}
}

func TestAnalyticsFrame(t *testing.T) {
	f := NewEmitter(newTestLogger(nil)).AnalyticsFrame(emitterListings())

	assert.Equal(t, models.AnalyticsColumns, f.Header())
	assert.Equal(t, 3, f.Rows())
	assert.Equal(t, []string{
		"A", "甲", "武侯区", "玉林", "150", "16500", "90", "3室1厅", "南", "精装", "高楼层",
		"2005", "板楼", "3", models.ElevatorYes, "3",
	}, f.Row(0))
	assert.Equal(t, models.ElevatorNo, f.Row(1)[14])
}

func TestModelingFrame(t *testing.T) {
	e := NewEmitter(newTestLogger(nil))
	m := e.ModelingFrame(e.AnalyticsFrame(emitterListings()))

	assert.Equal(t, []string{
		"TotalPrice", "UnitPrice", "Area", "YearBuilt", "Followers", "RoomCount",
		"District_武侯区",
		"Orientation_南 北",
		"Decoration_精装",
		"Elevator_有电梯",
	}, m.Header())

	for _, c := range m.Columns {
		assert.True(t, c.Numeric, c.Name)
	}

	district, ok := m.Column("District_武侯区")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0, 1}, district.Num)

	elevator, ok := m.Column("Elevator_有电梯")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0, 1}, elevator.Num)

	_, ok = m.Column("District_成华区")
	assert.False(t, ok, "first category in sorted order is the reference")
	_, ok = m.Column("SubDistrict_玉林")
	assert.False(t, ok, "single-category column yields no indicators")
}

func TestModelingFrameDropsLeftoverText(t *testing.T) {
	var logs bytes.Buffer
	e := NewEmitter(newTestLogger(&logs))
	analytics := e.AnalyticsFrame(emitterListings())
	analytics.Columns = append(analytics.Columns, models.Column{Name: "Note", Text: []string{"x", "y", "z"}})

	m := e.ModelingFrame(analytics)

	assert.NotContains(t, m.Header(), "Note")
	assert.Contains(t, logs.String(), `"Note"`)
}

func TestModelingFrameLeavesAnalyticsIntact(t *testing.T) {
	e := NewEmitter(newTestLogger(nil))
	analytics := e.AnalyticsFrame(emitterListings())
	before := analytics.Header()

	e.ModelingFrame(analytics)
	assert.Equal(t, before, analytics.Header())
}
