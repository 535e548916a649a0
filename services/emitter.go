package services

import (
	"sort"

	"housing-pipeline/models"
	"housing-pipeline/utils"
)

var (
	// ModelingDroppedColumns are free-text or low-value columns left out of the modeling view.
	ModelingDroppedColumns = []string{"Title", "Community", "Layout", "BuildingType", "Floor"}
	// ModelingEncodedColumns are the nominal columns one-hot encoded in the modeling view.
	ModelingEncodedColumns = []string{"District", "SubDistrict", "Orientation", "Decoration", "Elevator"}
)

// Emitter builds the analytics and modeling views of a cleaned batch.
type Emitter struct {
	logger *utils.Logger
}

func NewEmitter(logger *utils.Logger) *Emitter {
	return &Emitter{logger: logger}
}

// AnalyticsFrame lays out cleaned listings in raw column order plus RoomCount,
// with human-readable categorical values.
func (e *Emitter) AnalyticsFrame(listings []models.Listing) models.Frame {
	n := len(listings)
	text := func(name string, get func(models.Listing) string) models.Column {
		c := models.Column{Name: name, Text: make([]string, n)}
		for i, l := range listings {
			c.Text[i] = get(l)
		}
		return c
	}
	num := func(name string, get func(models.Listing) float64) models.Column {
		c := models.Column{Name: name, Numeric: true, Num: make([]float64, n)}
		for i, l := range listings {
			c.Num[i] = get(l)
		}
		return c
	}

	return models.Frame{Columns: []models.Column{
		text("Title", func(l models.Listing) string { return l.Title }),
		text("Community", func(l models.Listing) string { return l.Community }),
		text("District", func(l models.Listing) string { return l.District }),
		text("SubDistrict", func(l models.Listing) string { return l.SubDistrict }),
		num("TotalPrice", func(l models.Listing) float64 { return l.TotalPrice }),
		num("UnitPrice", func(l models.Listing) float64 { return l.UnitPrice }),
		num("Area", func(l models.Listing) float64 { return l.Area }),
		text("Layout", func(l models.Listing) string { return l.Layout }),
		text("Orientation", func(l models.Listing) string { return l.Orientation }),
		text("Decoration", func(l models.Listing) string { return l.Decoration }),
		text("Floor", func(l models.Listing) string { return l.Floor }),
		num("YearBuilt", func(l models.Listing) float64 { return float64(l.YearBuilt) }),
		text("BuildingType", func(l models.Listing) string { return l.BuildingType }),
		num("Followers", func(l models.Listing) float64 { return float64(l.Followers) }),
		text("Elevator", func(l models.Listing) string { return l.ElevatorLabel() }),
		num("RoomCount", func(l models.Listing) float64 { return float64(l.RoomCount) }),
	}}
}

// ModelingFrame derives the modeling view from the analytics view: free-text
// columns are dropped, nominal columns become 0/1 indicator columns with the
// first category (in sorted order) dropped as reference, and any column
// still not numeric is dropped with a warning.
func (e *Emitter) ModelingFrame(analytics models.Frame) models.Frame {
	dropped := toSet(ModelingDroppedColumns)
	encoded := toSet(ModelingEncodedColumns)

	var out models.Frame
	for _, c := range analytics.Columns {
		if dropped[c.Name] || encoded[c.Name] {
			continue
		}
		out.Columns = append(out.Columns, c)
	}

	for _, name := range ModelingEncodedColumns {
		c, ok := analytics.Column(name)
		if !ok {
			continue
		}
		out.Columns = append(out.Columns, oneHot(c)...)
	}

	numeric := out.Columns[:0:0]
	for _, c := range out.Columns {
		if !c.Numeric {
			e.logger.Warn("[emitter] Modeling view still has non-numeric column %q — dropping it", c.Name)
			continue
		}
		numeric = append(numeric, c)
	}
	out.Columns = numeric

	e.logger.Info("[emitter] Modeling view: %d rows × %d columns", out.Rows(), len(out.Columns))
	return out
}

// oneHot expands a text column into indicator columns named "<column>_<value>",
// one per category except the lexicographically first.
func oneHot(c models.Column) []models.Column {
	values := c.Text
	if c.Numeric {
		values = make([]string, c.Len())
		for i := range values {
			values[i] = c.Value(i)
		}
	}

	seen := make(map[string]struct{})
	var categories []string
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			categories = append(categories, v)
		}
	}
	sort.Strings(categories)
	if len(categories) < 2 {
		return nil
	}

	cols := make([]models.Column, 0, len(categories)-1)
	for _, cat := range categories[1:] {
		ind := models.Column{Name: c.Name + "_" + cat, Numeric: true, Num: make([]float64, len(values))}
		for i, v := range values {
			if v == cat {
				ind.Num[i] = 1
			}
		}
		cols = append(cols, ind)
	}
	return cols
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
