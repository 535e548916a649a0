package lianjia

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"housing-pipeline/models"
)

const (
	listingSelector   = "ul.sellListContent > li.clear"
	titleSelector     = "div.title > a"
	positionSelector  = "div.positionInfo > a"
	houseInfoSelector = "div.houseInfo"
	totalSelector     = "div.totalPrice > span"
	unitSelector      = "div.unitPrice > span"
	followSelector    = "div.followInfo"
	elevatorSelector  = "div.tag > span.elevator"

	houseInfoFields = 7
	totalPriceUnit  = "万"
)

// ParsePage extracts every listing on a listing-directory page. region is
// recorded as each listing's District: it comes from the URL that was
// fetched, never from the page text.
//
// A listing whose structure cannot be read is skipped and reported in the
// returned error slice; the remaining listings are still parsed.
func ParsePage(html []byte, region string) ([]*models.RawListing, []error, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, nil, fmt.Errorf("parse document: %w", err)
	}

	var (
		listings []*models.RawListing
		failures []error
	)
	doc.Find(listingSelector).Each(func(i int, s *goquery.Selection) {
		l, err := parseListing(i, s, region)
		if err != nil {
			failures = append(failures, err)
			return
		}
		listings = append(listings, l)
	})
	return listings, failures, nil
}

func parseListing(index int, s *goquery.Selection, region string) (*models.RawListing, error) {
	title, err := requiredText(index, s, titleSelector)
	if err != nil {
		return nil, err
	}
	community, err := requiredText(index, s, positionSelector)
	if err != nil {
		return nil, err
	}

	subDistrict := models.UnknownField
	if links := s.Find(positionSelector); links.Length() > 0 {
		subDistrict = strings.TrimSpace(links.First().Text())
	}

	houseInfo, err := requiredText(index, s, houseInfoSelector)
	if err != nil {
		return nil, err
	}
	info := splitHouseInfo(houseInfo)

	totalPrice, err := requiredText(index, s, totalSelector)
	if err != nil {
		return nil, err
	}
	unitPrice, err := requiredText(index, s, unitSelector)
	if err != nil {
		return nil, err
	}
	followInfo, err := requiredText(index, s, followSelector)
	if err != nil {
		return nil, err
	}
	followers, _, _ := strings.Cut(followInfo, "/")

	elevator := models.ElevatorNo
	if s.Find(elevatorSelector).Length() > 0 {
		elevator = models.ElevatorYes
	}

	return &models.RawListing{
		Title:        title,
		Community:    community,
		District:     region,
		SubDistrict:  subDistrict,
		TotalPrice:   totalPrice + totalPriceUnit,
		UnitPrice:    unitPrice,
		Area:         info[1],
		Layout:       info[0],
		Orientation:  info[2],
		Decoration:   info[3],
		Floor:        info[4],
		YearBuilt:    info[5],
		BuildingType: info[6],
		Followers:    strings.TrimSpace(followers),
		Elevator:     elevator,
	}, nil
}

// requiredText returns the trimmed text of the first match, or a ParseError if there is none.
func requiredText(index int, s *goquery.Selection, selector string) (string, error) {
	found := s.Find(selector)
	if found.Length() == 0 {
		return "", &models.ParseError{Index: index, Element: selector}
	}
	return strings.TrimSpace(found.First().Text()), nil
}

// splitHouseInfo splits "3室2厅 | 89.5平米 | 南 | 精装 | 中楼层(共18层) | 2005年建 | 板楼"
// into exactly seven trimmed fields, padding missing trailing ones.
func splitHouseInfo(text string) []string {
	parts := strings.Split(text, "|")
	fields := make([]string, houseInfoFields)
	for i := range fields {
		if i < len(parts) {
			fields[i] = strings.TrimSpace(parts[i])
		} else {
			fields[i] = models.UnknownField
		}
	}
	return fields
}
