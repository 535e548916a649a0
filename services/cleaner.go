package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"housing-pipeline/models"
	"housing-pipeline/utils"
)

// CoercionPolicy decides what happens to a record with a field that cannot
// be coerced and has no defined default.
type CoercionPolicy string

const (
	// PolicyFail aborts the clean stage on the first coercion failure.
	PolicyFail CoercionPolicy = "fail"
	// PolicyDrop removes the record and logs the failure.
	PolicyDrop CoercionPolicy = "drop"
)

// BatchStats are computed once per cleaning run and shared by every record.
type BatchStats struct {
	MedianYear float64
	Area       Bounds
}

// CleanResult is the outcome of one cleaning run.
type CleanResult struct {
	Listings        []models.Listing
	Stats           BatchStats
	RawCount        int
	CoercionDropped int
	OutliersRemoved int
	RoomlessDropped int
}

// Cleaner transforms a raw batch into typed, filtered, canonicalized listings.
type Cleaner struct {
	logger  *utils.Logger
	aliases *AliasTable
	policy  CoercionPolicy
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger, aliases *AliasTable, policy CoercionPolicy) *Cleaner {
	if policy == "" {
		policy = PolicyFail
	}
	return &Cleaner{logger: logger, aliases: aliases, policy: policy}
}

// draft is a coerced listing whose build year may still need imputing.
type draft struct {
	listing models.Listing
	hasYear bool
}

// Clean runs every stage over the full batch in order: coercion, year
// imputation, area outlier removal, district canonicalization, room counts.
// Batch statistics are taken from the fully coerced batch before any stage
// that depends on them.
func (c *Cleaner) Clean(raw []*models.RawListing) (*CleanResult, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("cleaner: %w", models.ErrEmptyBatch)
	}
	res := &CleanResult{RawCount: len(raw)}

	drafts, dropped, err := c.coerce(raw)
	if err != nil {
		return nil, err
	}
	res.CoercionDropped = dropped
	if len(drafts) == 0 {
		return nil, fmt.Errorf("cleaner: every listing failed coercion: %w", models.ErrEmptyBatch)
	}

	median, err := medianYear(drafts)
	if err != nil {
		return nil, err
	}
	res.Stats.MedianYear = median
	listings := imputeYears(drafts, median)
	c.logger.Info("[cleaner] Median build year %.1f", median)

	listings, bounds := FilterAreaOutliers(listings)
	res.Stats.Area = bounds
	res.OutliersRemoved = len(drafts) - len(listings)
	c.logger.Info("[cleaner] Area bounds [%.2f, %.2f] (Q1 %.2f, Q3 %.2f) — removed %d outliers",
		bounds.Lower, bounds.Upper, bounds.Q1, bounds.Q3, res.OutliersRemoved)

	listings = CanonicalizeDistricts(listings, c.aliases)

	before := len(listings)
	listings, err = c.deriveRoomCounts(listings)
	if err != nil {
		return nil, err
	}
	res.RoomlessDropped = before - len(listings)

	if len(listings) == 0 {
		return nil, fmt.Errorf("cleaner: no listings survived cleaning: %w", models.ErrEmptyBatch)
	}
	res.Listings = listings

	c.logger.Info("[cleaner] Cleaned %d → %d listings (coercion %d, outliers %d, no room count %d)",
		res.RawCount, len(listings), res.CoercionDropped, res.OutliersRemoved, res.RoomlessDropped)
	return res, nil
}

func (c *Cleaner) coerce(raw []*models.RawListing) ([]draft, int, error) {
	drafts := make([]draft, 0, len(raw))
	dropped := 0
	for i, r := range raw {
		d, err := coerceListing(r)
		if err != nil {
			if err := c.handleCoercion(fmt.Sprintf("row %d %q", i, r.Title), err); err != nil {
				return nil, 0, err
			}
			dropped++
			continue
		}
		drafts = append(drafts, d)
	}
	return drafts, dropped, nil
}

func (c *Cleaner) deriveRoomCounts(listings []models.Listing) ([]models.Listing, error) {
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		n, err := RoomCount(l.Layout)
		if err != nil {
			if err := c.handleCoercion(fmt.Sprintf("listing %q", l.Title), err); err != nil {
				return nil, err
			}
			continue
		}
		l.RoomCount = n
		out = append(out, l)
	}
	return out, nil
}

// handleCoercion applies the policy to one failure. A nil return means the record is dropped.
func (c *Cleaner) handleCoercion(what string, err error) error {
	var cerr *models.CoercionError
	if !errors.As(err, &cerr) {
		return fmt.Errorf("cleaner: %s: %w", what, err)
	}
	if c.policy == PolicyFail {
		return fmt.Errorf("cleaner: %s: %w (set COERCION_POLICY=drop to skip such rows)", what, err)
	}
	c.logger.Warn("[cleaner] Dropping %s: %v", what, err)
	return nil
}

func coerceListing(r *models.RawListing) (draft, error) {
	total, err := ParseTotalPrice(r.TotalPrice)
	if err != nil {
		return draft{}, err
	}
	unit, err := ParseUnitPrice(r.UnitPrice)
	if err != nil {
		return draft{}, err
	}
	area, err := ParseArea(r.Area)
	if err != nil {
		return draft{}, err
	}
	followers, err := ParseFollowers(r.Followers)
	if err != nil {
		return draft{}, err
	}
	year, hasYear := ExtractYear(r.YearBuilt)

	return draft{
		listing: models.Listing{
			Title:        strings.TrimSpace(r.Title),
			Community:    strings.TrimSpace(r.Community),
			District:     strings.TrimSpace(r.District),
			SubDistrict:  strings.TrimSpace(r.SubDistrict),
			TotalPrice:   total,
			UnitPrice:    unit,
			Area:         area,
			Layout:       strings.TrimSpace(r.Layout),
			Orientation:  strings.TrimSpace(r.Orientation),
			Decoration:   strings.TrimSpace(r.Decoration),
			Floor:        strings.TrimSpace(r.Floor),
			YearBuilt:    year,
			BuildingType: strings.TrimSpace(r.BuildingType),
			Followers:    followers,
			Elevator:     strings.TrimSpace(r.Elevator) == models.ElevatorYes,
		},
		hasYear: hasYear,
	}, nil
}

// medianYear is the median build year over the drafts that have one.
func medianYear(drafts []draft) (float64, error) {
	years := make([]float64, 0, len(drafts))
	for _, d := range drafts {
		if d.hasYear {
			years = append(years, float64(d.listing.YearBuilt))
		}
	}
	m, ok := Median(years)
	if !ok {
		return 0, fmt.Errorf("cleaner: %w", &models.CoercionError{
			Field:  "YearBuilt",
			Reason: "no listing in the batch has a build year to impute from",
		})
	}
	return m, nil
}

// imputeYears fills missing years with the batch median, truncated to a whole year.
func imputeYears(drafts []draft, median float64) []models.Listing {
	fill := int(math.Trunc(median))
	out := make([]models.Listing, len(drafts))
	for i, d := range drafts {
		l := d.listing
		if !d.hasYear {
			l.YearBuilt = fill
		}
		out[i] = l
	}
	return out
}
