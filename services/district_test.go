package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-pipeline/models"
)

func TestCanonicalize(t *testing.T) {
	table := DefaultAliasTable()
	tests := []struct {
		in   string
		want string
	}{
		{"武侯", "武侯区"},
		{"武侯区", "武侯区"},
		{"高新西区", "高新区"},
		{"高新西", "高新区"},
		{"天府新区南区", "四川天府新区"},
		{"天府新区", "四川天府新区"},
		{"龙泉", "龙泉驿区"},
		{"都江堰", "都江堰市"},
		{"金堂", "金堂县"},
		{" 锦江 ", "锦江区"},
		{"新区X", "新区X区"},
		{"简阳市", "简阳市"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Canonicalize(tt.in))
		})
	}
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	table := DefaultAliasTable()
	inputs := []string{"新区X", "东部新区", "未知", "", "高新西", "龙泉驿"}
	for k, v := range table.Pairs() {
		inputs = append(inputs, k, v)
	}

	for _, in := range inputs {
		once := table.Canonicalize(in)
		assert.Equal(t, once, table.Canonicalize(once), "input %q", in)
		assert.True(t, HasAdministrativeSuffix(once), "input %q gave %q", in, once)
		assert.True(t, table.IsCanonical(once))
	}
}

func TestDefaultAliasValuesAreSuffixed(t *testing.T) {
	table := DefaultAliasTable()
	require.Positive(t, table.Len())
	for k, v := range table.Pairs() {
		assert.True(t, HasAdministrativeSuffix(v), "%q → %q", k, v)
	}
}

func TestNewAliasTableRejects(t *testing.T) {
	_, err := NewAliasTable(map[string]string{"武侯": "武侯"})
	assert.ErrorContains(t, err, "administrative suffix")

	_, err = NewAliasTable(map[string]string{"甲": "乙区", "乙区": "丙区"})
	assert.ErrorContains(t, err, "itself an alias")

	table, err := NewAliasTable(map[string]string{"甲": "乙区", "乙区": "乙区"})
	require.NoError(t, err)
	assert.Equal(t, "乙区", table.Canonicalize("甲"))
}

func TestCanonicalizeDistrictsCopies(t *testing.T) {
	in := []models.Listing{{District: "武侯"}, {District: "高新西区"}}
	out := CanonicalizeDistricts(in, DefaultAliasTable())

	assert.Equal(t, "武侯区", out[0].District)
	assert.Equal(t, "高新区", out[1].District)
	assert.Equal(t, "武侯", in[0].District, "input untouched")
}
