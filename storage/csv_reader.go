package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"housing-pipeline/models"
)

// Stage names reported when an input file is missing.
const (
	StageScrape = "scrape"
	StageClean  = "clean"
)

// ReadRaw loads the raw dataset written by the scrape stage.
func ReadRaw(path string) ([]*models.RawListing, error) {
	header, records, err := readCSV(path, StageScrape)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(path, header, models.RawColumns)
	if err != nil {
		return nil, err
	}

	listings := make([]*models.RawListing, len(records))
	for i, rec := range records {
		row := make([]string, len(models.RawColumns))
		for j, name := range models.RawColumns {
			row[j] = rec[idx[name]]
		}
		listings[i] = models.RawListingFromRow(row)
	}
	return listings, nil
}

// ReadAnalytics loads the analytics dataset written by the clean stage.
func ReadAnalytics(path string) ([]models.Listing, error) {
	header, records, err := readCSV(path, StageClean)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(path, header, models.AnalyticsColumns)
	if err != nil {
		return nil, err
	}

	listings := make([]models.Listing, 0, len(records))
	for i, rec := range records {
		p := fieldParser{rec: rec, idx: idx}
		l := models.Listing{
			Title:        p.text("Title"),
			Community:    p.text("Community"),
			District:     p.text("District"),
			SubDistrict:  p.text("SubDistrict"),
			TotalPrice:   p.number("TotalPrice"),
			UnitPrice:    p.number("UnitPrice"),
			Area:         p.number("Area"),
			Layout:       p.text("Layout"),
			Orientation:  p.text("Orientation"),
			Decoration:   p.text("Decoration"),
			Floor:        p.text("Floor"),
			YearBuilt:    p.integer("YearBuilt"),
			BuildingType: p.text("BuildingType"),
			Followers:    p.integer("Followers"),
			Elevator:     p.text("Elevator") == models.ElevatorYes,
			RoomCount:    p.integer("RoomCount"),
		}
		if p.err != nil {
			return nil, fmt.Errorf("csv: %s row %d: %w", path, i+2, p.err)
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func readCSV(path, prerequisite string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, &models.MissingInputError{Path: path, Prerequisite: prerequisite, Err: err}
		}
		return nil, nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("csv: %q has no header", path)
	}
	return records[0], records[1:], nil
}

// columnIndex locates every wanted column in header.
func columnIndex(path string, header, want []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[name] = i
	}
	idx := make(map[string]int, len(want))
	for _, name := range want {
		i, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("csv: %q is missing column %q", path, name)
		}
		idx[name] = i
	}
	return idx, nil
}

// fieldParser reads typed fields from one record, keeping the first error.
type fieldParser struct {
	rec []string
	idx map[string]int
	err error
}

func (p *fieldParser) text(name string) string {
	return p.rec[p.idx[name]]
}

func (p *fieldParser) number(name string) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.text(name), 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", name, err)
	}
	return v
}

func (p *fieldParser) integer(name string) int {
	v := p.number(name)
	return int(v)
}
