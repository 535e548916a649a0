package services

import (
	"fmt"
	"strings"

	"housing-pipeline/models"
)

// Administrative suffixes a canonical district name ends in.
const (
	suffixDistrict = "区"
	suffixCity     = "市"
	suffixCounty   = "县"
)

var administrativeSuffixes = []string{suffixDistrict, suffixCity, suffixCounty}

// HasAdministrativeSuffix reports whether name ends in 区, 市 or 县.
func HasAdministrativeSuffix(name string) bool {
	for _, s := range administrativeSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// AliasTable maps raw region-name variants to canonical district names.
// It is immutable after construction.
type AliasTable struct {
	aliases map[string]string
}

// NewAliasTable builds a table from raw → canonical pairs. Every canonical
// value must end in an administrative suffix, and a value that is also a key
// must map to itself, so that canonicalizing twice changes nothing.
func NewAliasTable(pairs map[string]string) (*AliasTable, error) {
	aliases := make(map[string]string, len(pairs))
	for raw, canonical := range pairs {
		if !HasAdministrativeSuffix(canonical) {
			return nil, fmt.Errorf("district: alias %q → %q: canonical name lacks an administrative suffix", raw, canonical)
		}
		if next, ok := pairs[canonical]; ok && next != canonical {
			return nil, fmt.Errorf("district: alias %q → %q is itself an alias for %q", raw, canonical, next)
		}
		aliases[raw] = canonical
	}
	return &AliasTable{aliases: aliases}, nil
}

var defaultAliases = mustAliasTable(map[string]string{
	"武侯": "武侯区", "锦江": "锦江区", "青羊": "青羊区", "金牛": "金牛区",
	"成华": "成华区", "龙泉驿": "龙泉驿区", "双流": "双流区", "温江": "温江区",
	"郫都": "郫都区", "新都": "新都区", "青白江": "青白江区", "都江堰": "都江堰市",
	"彭州": "彭州市", "邛崃": "邛崃市", "崇州": "崇州市", "简阳": "简阳市",
	"金堂": "金堂县", "大邑": "大邑县", "蒲江": "蒲江县", "新津": "新津区",

	"高新": "高新区", "高新南区": "高新区", "高新西区": "高新区", "高新东区": "高新区", "高新西": "高新区",

	"天府新区": "四川天府新区", "天府新区南区": "四川天府新区",

	"龙泉": "龙泉驿区",
})

// DefaultAliasTable returns the Chengdu alias table.
func DefaultAliasTable() *AliasTable {
	return defaultAliases
}

func mustAliasTable(pairs map[string]string) *AliasTable {
	t, err := NewAliasTable(pairs)
	if err != nil {
		panic(err)
	}
	return t
}

// Canonicalize resolves name through the alias table, falling back to
// appending 区 when the name carries no administrative suffix. If the
// suffixed form is itself an alias, the alias wins.
func (t *AliasTable) Canonicalize(name string) string {
	name = strings.TrimSpace(name)
	if canonical, ok := t.aliases[name]; ok {
		return canonical
	}
	if HasAdministrativeSuffix(name) {
		return name
	}
	suffixed := name + suffixDistrict
	if canonical, ok := t.aliases[suffixed]; ok {
		return canonical
	}
	return suffixed
}

// IsCanonical reports whether name is already in canonical form.
func (t *AliasTable) IsCanonical(name string) bool {
	return t.Canonicalize(name) == name
}

// Len returns the number of aliases.
func (t *AliasTable) Len() int {
	return len(t.aliases)
}

// Pairs returns a copy of the alias mapping.
func (t *AliasTable) Pairs() map[string]string {
	out := make(map[string]string, len(t.aliases))
	for k, v := range t.aliases {
		out[k] = v
	}
	return out
}

// CanonicalizeDistricts returns a copy of listings with canonical district names.
func CanonicalizeDistricts(listings []models.Listing, table *AliasTable) []models.Listing {
	out := make([]models.Listing, len(listings))
	for i, l := range listings {
		l.District = table.Canonicalize(l.District)
		out[i] = l
	}
	return out
}
