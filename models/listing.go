package models

// Markers used in the raw dataset.
const (
	// UnknownField fills sub-district and trailing house-info fields the page did not provide.
	UnknownField = "未知"

	ElevatorYes = "有电梯"
	ElevatorNo  = "无电梯"
)

// RawColumns is the fixed column order of the raw dataset.
var RawColumns = []string{
	"Title", "Community", "District", "SubDistrict", "TotalPrice", "UnitPrice", "Area",
	"Layout", "Orientation", "Decoration", "Floor", "YearBuilt", "BuildingType",
	"Followers", "Elevator",
}

// AnalyticsColumns is the column order of the analytics dataset: the raw
// columns followed by the derived room count.
var AnalyticsColumns = append(append([]string{}, RawColumns...), "RoomCount")

// RawListing holds one listing exactly as scraped: every field is free text
// with its units still attached. It is written to CSV before any cleaning.
type RawListing struct {
	Title        string
	Community    string
	District     string
	SubDistrict  string
	TotalPrice   string
	UnitPrice    string
	Area         string
	Layout       string
	Orientation  string
	Decoration   string
	Floor        string
	YearBuilt    string
	BuildingType string
	Followers    string
	Elevator     string
}

// Row returns the listing's values in RawColumns order.
func (r *RawListing) Row() []string {
	return []string{
		r.Title, r.Community, r.District, r.SubDistrict, r.TotalPrice, r.UnitPrice, r.Area,
		r.Layout, r.Orientation, r.Decoration, r.Floor, r.YearBuilt, r.BuildingType,
		r.Followers, r.Elevator,
	}
}

// RawListingFromRow is the inverse of Row. Short rows leave trailing fields empty.
func RawListingFromRow(row []string) *RawListing {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return &RawListing{
		Title:        get(0),
		Community:    get(1),
		District:     get(2),
		SubDistrict:  get(3),
		TotalPrice:   get(4),
		UnitPrice:    get(5),
		Area:         get(6),
		Layout:       get(7),
		Orientation:  get(8),
		Decoration:   get(9),
		Floor:        get(10),
		YearBuilt:    get(11),
		BuildingType: get(12),
		Followers:    get(13),
		Elevator:     get(14),
	}
}

// Listing is the typed, canonicalized record produced by the cleaner.
// TotalPrice is in units of 10k CNY, UnitPrice in CNY per square metre.
type Listing struct {
	Title        string
	Community    string
	District     string
	SubDistrict  string
	TotalPrice   float64
	UnitPrice    float64
	Area         float64
	Layout       string
	Orientation  string
	Decoration   string
	Floor        string
	YearBuilt    int
	BuildingType string
	Followers    int
	Elevator     bool
	RoomCount    int
}

// ElevatorLabel renders the elevator flag the way the listing site does.
func (l Listing) ElevatorLabel() string {
	if l.Elevator {
		return ElevatorYes
	}
	return ElevatorNo
}

// DistrictSummary aggregates the listings of one district.
type DistrictSummary struct {
	Name          string
	Count         int
	AvgUnitPrice  float64
	AvgTotalPrice float64
	Canonical     bool
}

// DistrictReport holds the verification summary over a cleaned dataset.
type DistrictReport struct {
	TotalListings int
	Districts     []DistrictSummary
	NonCanonical  []string
}
