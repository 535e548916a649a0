package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-pipeline/models"
)

func TestParseNumericFields(t *testing.T) {
	tests := []struct {
		name  string
		parse func(string) (float64, error)
		raw   string
		want  float64
	}{
		{"total price", ParseTotalPrice, "258万", 258},
		{"total price decimal", ParseTotalPrice, " 96.5万 ", 96.5},
		{"unit price", ParseUnitPrice, "18523元/平米", 18523},
		{"unit price with separator", ParseUnitPrice, "18,523元/平", 18523},
		{"unit price prefixed", ParseUnitPrice, "单价12000元/平米", 12000},
		{"area", ParseArea, "89.5平米", 89.5},
		{"area integer", ParseArea, "120平米", 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNumericFieldsRejectGarbage(t *testing.T) {
	tests := []struct {
		field string
		parse func(string) (float64, error)
		raw   string
	}{
		{"TotalPrice", ParseTotalPrice, "面议"},
		{"UnitPrice", ParseUnitPrice, "元/平米"},
		{"Area", ParseArea, ""},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			_, err := tt.parse(tt.raw)
			var cerr *models.CoercionError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.field, cerr.Field)
			assert.Equal(t, tt.raw, cerr.Value)
		})
	}
}

func TestParseFollowers(t *testing.T) {
	n, err := ParseFollowers("12人关注")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = ParseFollowers("0人关注")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = ParseFollowers("很多人关注")
	assert.Error(t, err)
}

func TestExtractYear(t *testing.T) {
	y, ok := ExtractYear("2005年建")
	assert.True(t, ok)
	assert.Equal(t, 2005, y)

	_, ok = ExtractYear("暂无数据")
	assert.False(t, ok)

	_, ok = ExtractYear(models.UnknownField)
	assert.False(t, ok)
}

func TestRoomCount(t *testing.T) {
	n, err := RoomCount("3室2厅")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = RoomCount("10室3厅")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	_, err = RoomCount("车位")
	var cerr *models.CoercionError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "RoomCount", cerr.Field)
}

func TestMedian(t *testing.T) {
	m, ok := Median([]float64{2010, 2001, 2005})
	assert.True(t, ok)
	assert.Equal(t, 2005.0, m)

	m, ok = Median([]float64{2001, 2005, 2010, 2015})
	assert.True(t, ok)
	assert.Equal(t, 2007.5, m)

	_, ok = Median(nil)
	assert.False(t, ok)
}
