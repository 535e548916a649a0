package lianjia

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-pipeline/models"
)

type fixtureListing struct {
	title     string
	links     []string
	houseInfo string
	total     string
	unit      string
	follow    string
	elevator  bool
	omit      string
}

func (f fixtureListing) html() string {
	var b strings.Builder
	b.WriteString(`<li class="clear"><div class="info clear">`)
	if f.omit != "title" {
		fmt.Fprintf(&b, `<div class="title"><a href="#">%s</a></div>`, f.title)
	}
	b.WriteString(`<div class="flood"><div class="positionInfo">`)
	for i, l := range f.links {
		if i > 0 {
			b.WriteString(" - ")
		}
		fmt.Fprintf(&b, `<a href="#">%s</a>`, l)
	}
	b.WriteString(`</div></div>`)
	if f.omit != "houseInfo" {
		fmt.Fprintf(&b, `<div class="address"><div class="houseInfo">%s</div></div>`, f.houseInfo)
	}
	if f.omit != "followInfo" {
		fmt.Fprintf(&b, `<div class="followInfo">%s</div>`, f.follow)
	}
	b.WriteString(`<div class="tag">`)
	if f.elevator {
		b.WriteString(`<span class="elevator">近地铁</span>`)
	}
	b.WriteString(`<span class="taxfree">房本满五年</span></div>`)
	b.WriteString(`<div class="priceInfo">`)
	if f.omit != "totalPrice" {
		fmt.Fprintf(&b, `<div class="totalPrice"><span>%s</span>万</div>`, f.total)
	}
	if f.omit != "unitPrice" {
		fmt.Fprintf(&b, `<div class="unitPrice"><span>%s</span></div>`, f.unit)
	}
	b.WriteString(`</div></div></li>`)
	return b.String()
}

func fixturePage(listings ...fixtureListing) []byte {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="sellListContent">`)
	for _, l := range listings {
		b.WriteString(l.html())
	}
	b.WriteString(`</ul></body></html>`)
	return []byte(b.String())
}

func goodListing(title string) fixtureListing {
	return fixtureListing{
		title:     title,
		links:     []string{"棕北小区", "玉林"},
		houseInfo: "3室2厅 | 89.5平米 | 南 北 | 精装 | 中楼层(共18层) | 2005年建 | 板楼",
		total:     "258",
		unit:      "28,827元/平",
		follow:    "12人关注 / 1个月以前发布",
		elevator:  true,
	}
}

func TestParsePageExtractsFields(t *testing.T) {
	listings, failures, err := ParsePage(fixturePage(goodListing("南北通透 三室")), "武侯")
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, listings, 1)

	want := &models.RawListing{
		Title:        "南北通透 三室",
		Community:    "棕北小区",
		District:     "武侯",
		SubDistrict:  "棕北小区",
		TotalPrice:   "258万",
		UnitPrice:    "28,827元/平",
		Area:         "89.5平米",
		Layout:       "3室2厅",
		Orientation:  "南 北",
		Decoration:   "精装",
		Floor:        "中楼层(共18层)",
		YearBuilt:    "2005年建",
		BuildingType: "板楼",
		Followers:    "12人关注",
		Elevator:     models.ElevatorYes,
	}
	assert.Equal(t, want, listings[0])
}

func TestParsePagePadsShortHouseInfo(t *testing.T) {
	l := goodListing("车位")
	l.houseInfo = "1室0厅 | 35平米 | 东"
	l.elevator = false

	listings, _, err := ParsePage(fixturePage(l), "锦江")
	require.NoError(t, err)
	require.Len(t, listings, 1)

	got := listings[0]
	assert.Equal(t, "东", got.Orientation)
	assert.Equal(t, models.UnknownField, got.Decoration)
	assert.Equal(t, models.UnknownField, got.Floor)
	assert.Equal(t, models.UnknownField, got.YearBuilt)
	assert.Equal(t, models.UnknownField, got.BuildingType)
	assert.Equal(t, models.ElevatorNo, got.Elevator)
}

func TestParsePageSkipsBrokenListing(t *testing.T) {
	broken := goodListing("缺少关注信息")
	broken.omit = "followInfo"

	listings, failures, err := ParsePage(fixturePage(goodListing("A"), broken, goodListing("C")), "青羊")
	require.NoError(t, err)

	require.Len(t, listings, 2)
	assert.Equal(t, "A", listings[0].Title)
	assert.Equal(t, "C", listings[1].Title)

	require.Len(t, failures, 1)
	var perr *models.ParseError
	require.ErrorAs(t, failures[0], &perr)
	assert.Equal(t, 1, perr.Index)
	assert.Equal(t, followSelector, perr.Element)
}

func TestParsePageEachRequiredElement(t *testing.T) {
	for _, omit := range []string{"title", "houseInfo", "totalPrice", "unitPrice", "followInfo"} {
		t.Run(omit, func(t *testing.T) {
			l := goodListing("x")
			l.omit = omit
			listings, failures, err := ParsePage(fixturePage(l), "成华")
			require.NoError(t, err)
			assert.Empty(t, listings)
			assert.Len(t, failures, 1)
		})
	}
}

func TestParsePageMissingPositionLinks(t *testing.T) {
	l := goodListing("无小区")
	l.links = nil

	listings, failures, err := ParsePage(fixturePage(l), "金牛")
	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.Len(t, failures, 1)
}

func TestParsePageNoContainers(t *testing.T) {
	listings, failures, err := ParsePage([]byte(`<html><body><p>人机验证</p></body></html>`), "温江")
	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.Empty(t, failures)
}

func TestSplitHouseInfoTruncatesExtraFields(t *testing.T) {
	got := splitHouseInfo("a|b|c|d|e|f|g|h")
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g"}, got)
}
