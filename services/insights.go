package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"housing-pipeline/models"
	"housing-pipeline/utils"
)

// InsightService summarizes a cleaned dataset per district and flags any
// district name that is not in canonical form.
type InsightService struct {
	logger  *utils.Logger
	aliases *AliasTable
	out     io.Writer
}

func NewInsightService(logger *utils.Logger, aliases *AliasTable) *InsightService {
	return &InsightService{logger: logger, aliases: aliases, out: os.Stdout}
}

// WithOutput redirects Print.
func (s *InsightService) WithOutput(w io.Writer) *InsightService {
	s.out = w
	return s
}

func (s *InsightService) Generate(listings []models.Listing) *models.DistrictReport {
	report := &models.DistrictReport{TotalListings: len(listings)}
	if len(listings) == 0 {
		return report
	}

	type acc struct {
		count      int
		unitTotal  float64
		priceTotal float64
	}
	byDistrict := make(map[string]*acc)
	for _, l := range listings {
		a, ok := byDistrict[l.District]
		if !ok {
			a = &acc{}
			byDistrict[l.District] = a
		}
		a.count++
		a.unitTotal += l.UnitPrice
		a.priceTotal += l.TotalPrice
	}

	for name, a := range byDistrict {
		canonical := s.aliases.IsCanonical(name)
		report.Districts = append(report.Districts, models.DistrictSummary{
			Name:          name,
			Count:         a.count,
			AvgUnitPrice:  round2(a.unitTotal / float64(a.count)),
			AvgTotalPrice: round2(a.priceTotal / float64(a.count)),
			Canonical:     canonical,
		})
		if !canonical {
			report.NonCanonical = append(report.NonCanonical, name)
		}
	}

	sort.Slice(report.Districts, func(i, j int) bool {
		if report.Districts[i].Count != report.Districts[j].Count {
			return report.Districts[i].Count > report.Districts[j].Count
		}
		return report.Districts[i].Name < report.Districts[j].Name
	})
	sort.Strings(report.NonCanonical)

	if len(report.NonCanonical) > 0 {
		s.logger.Warn("[insights] %d district name(s) not canonical: %s",
			len(report.NonCanonical), strings.Join(report.NonCanonical, ", "))
	}
	return report
}

func (s *InsightService) Print(r *models.DistrictReport) {
	w := s.out
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🏠 CHENGDU RESALE HOUSING — DISTRICT REPORT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total listings : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  Districts      : \033[1m%d\033[0m\n", len(r.Districts))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Listings by District\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Districts) == 0 {
		fmt.Fprintf(w, "  No district data\n")
	} else {
		for _, d := range r.Districts {
			mark := ""
			if !d.Canonical {
				mark = " \033[1;31m✗\033[0m"
			}
			fmt.Fprintf(w, "  %s %5d  avg \033[1;32m%.0f 元/㎡\033[0m  \033[1;32m%.1f 万\033[0m%s\n",
				padRight(truncate(d.Name, 10), 12), d.Count, d.AvgUnitPrice, d.AvgTotalPrice, mark)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Canonical Names\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.NonCanonical) == 0 {
		fmt.Fprintf(w, "  \033[1;32mAll district names are canonical\033[0m\n")
	} else {
		for _, name := range r.NonCanonical {
			fmt.Fprintf(w, "  \033[1;31m%s → %s\033[0m\n", name, s.aliases.Canonicalize(name))
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// truncate shortens s to max runes.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

// padRight pads s to width display columns, counting CJK runes as two.
func padRight(s string, width int) string {
	w := 0
	for _, r := range s {
		if r >= 0x2E80 {
			w += 2
		} else {
			w++
		}
	}
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
