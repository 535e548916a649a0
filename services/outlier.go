package services

import (
	"math"
	"sort"

	"housing-pipeline/models"
)

const iqrFactor = 1.5

// Bounds holds the interquartile acceptance range of a batch.
type Bounds struct {
	Q1    float64
	Q3    float64
	IQR   float64
	Lower float64
	Upper float64
}

// Contains reports whether v lies within [Lower, Upper].
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// Quantile returns the q-th quantile of sorted using linear interpolation
// between the closest ranks. sorted must be ascending and non-empty.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// IQRBounds computes the acceptance range over all values.
func IQRBounds(values []float64) Bounds {
	if len(values) == 0 {
		return Bounds{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1
	return Bounds{
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		Lower: q1 - iqrFactor*iqr,
		Upper: q3 + iqrFactor*iqr,
	}
}

// FilterAreaOutliers removes every listing whose area falls outside the
// batch's IQR bounds. The bounds come from the whole input, so the result
// does not depend on listing order.
func FilterAreaOutliers(listings []models.Listing) ([]models.Listing, Bounds) {
	areas := make([]float64, len(listings))
	for i, l := range listings {
		areas[i] = l.Area
	}
	bounds := IQRBounds(areas)

	kept := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if bounds.Contains(l.Area) {
			kept = append(kept, l)
		}
	}
	return kept, bounds
}
