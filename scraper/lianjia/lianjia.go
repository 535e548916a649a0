package lianjia

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"housing-pipeline/config"
	"housing-pipeline/models"
	"housing-pipeline/utils"
)

// StopReason records why pagination of a region ended.
type StopReason string

const (
	StopNotFound    StopReason = "not-found"
	StopEmptyPage   StopReason = "empty-page"
	StopFetchFailed StopReason = "fetch-failed"
	StopPageLimit   StopReason = "page-limit"
)

// RegionResult summarises the pagination of one region.
type RegionResult struct {
	Region   string
	Pages    int
	Listings int
	Skipped  int
	Stop     StopReason
	Err      error
}

// Scraper walks the listing directory region by region, one page at a time.
type Scraper struct {
	fetcher  PageFetcher
	pacer    *utils.Pacer
	logger   *utils.Logger
	maxPages int
}

// New creates a Scraper that fetches at most maxPages pages per region.
func New(fetcher PageFetcher, pacer *utils.Pacer, maxPages int, logger *utils.Logger) *Scraper {
	return &Scraper{
		fetcher:  fetcher,
		pacer:    pacer,
		logger:   logger,
		maxPages: maxPages,
	}
}

// PageURL builds the URL of page n from a region's directory URL.
func PageURL(template string, page int) string {
	return fmt.Sprintf("%s/pg%d/", strings.TrimRight(template, "/"), page)
}

// Scrape fetches every region in order and returns all parsed listings.
// Failures are contained to the region they happen in. The errors returned
// are models.ErrEmptyBatch when nothing at all was collected, and the
// context's error when ctx is cancelled, in which case no listings are
// returned.
func (s *Scraper) Scrape(ctx context.Context, regions []config.Region) ([]*models.RawListing, []RegionResult, error) {
	var (
		all     []*models.RawListing
		results = make([]RegionResult, 0, len(regions))
	)

	for _, region := range regions {
		if err := ctx.Err(); err != nil {
			return nil, results, fmt.Errorf("lianjia: %w", err)
		}
		s.logger.Info("[lianjia] Region %s — up to %d pages", region.Label, s.maxPages)
		listings, result, err := s.scrapeRegion(ctx, region)
		results = append(results, result)
		if err != nil {
			s.logger.Warn("[lianjia] Scrape cancelled in region %s — discarding %d collected listings", region.Label, len(all)+len(listings))
			return nil, results, fmt.Errorf("lianjia: %w", err)
		}
		all = append(all, listings...)
		s.logger.Info("[lianjia] Region %s done — pages: %d | listings: %d | skipped: %d | stop: %s | total so far: %d",
			region.Label, result.Pages, result.Listings, result.Skipped, result.Stop, len(all))
	}

	s.logger.Info("[lianjia] Scrape complete — total raw listings: %d", len(all))
	if len(all) == 0 {
		return nil, results, fmt.Errorf("lianjia: no listings scraped from %d regions: %w", len(regions), models.ErrEmptyBatch)
	}
	return all, results, nil
}

// scrapeRegion paginates one region. Its error is non-nil only when ctx was
// cancelled; every other failure is recorded in the result.
func (s *Scraper) scrapeRegion(ctx context.Context, region config.Region) ([]*models.RawListing, RegionResult, error) {
	result := RegionResult{Region: region.Label, Stop: StopPageLimit}
	var listings []*models.RawListing

	for page := 1; page <= s.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return listings, result, err
		}
		url := PageURL(region.URL, page)
		s.logger.Debug("[lianjia] Fetching %s page %d — %s", region.Label, page, url)

		resp, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return listings, result, ctxErr
			}
			result.Stop = StopFetchFailed
			result.Err = &models.FetchError{Region: region.Label, Page: page, URL: url, Err: err}
			s.logger.Warn("[lianjia] %v — abandoning region", result.Err)
			break
		}

		if resp.StatusCode == http.StatusNotFound {
			result.Stop = StopNotFound
			s.logger.Info("[lianjia] %s page %d not found — end of pagination", region.Label, page)
			break
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			result.Stop = StopFetchFailed
			result.Err = &models.FetchError{Region: region.Label, Page: page, URL: url, StatusCode: resp.StatusCode}
			s.logger.Warn("[lianjia] %v — abandoning region", result.Err)
			break
		}

		pageListings, failures, err := ParsePage(resp.Body, region.Label)
		if err != nil {
			result.Stop = StopFetchFailed
			result.Err = &models.FetchError{Region: region.Label, Page: page, URL: url, Err: err}
			s.logger.Warn("[lianjia] %v — abandoning region", result.Err)
			break
		}
		for _, f := range failures {
			var perr *models.ParseError
			if errors.As(f, &perr) {
				s.logger.Warn("[lianjia] %s page %d: skipping %v", region.Label, page, perr)
			}
		}
		result.Skipped += len(failures)

		if len(pageListings) == 0 {
			result.Stop = StopEmptyPage
			s.logger.Warn("[lianjia] %s page %d returned 0 listings — stopping region", region.Label, page)
			break
		}

		listings = append(listings, pageListings...)
		result.Pages++
		result.Listings += len(pageListings)

		d, err := s.pacer.Pause(ctx)
		if err != nil {
			return listings, result, err
		}
		s.logger.Debug("[lianjia] %s page %d: %d listings, paused %v", region.Label, page, len(pageListings), d)
	}

	return listings, result, nil
}
