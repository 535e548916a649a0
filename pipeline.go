package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"housing-pipeline/config"
	"housing-pipeline/models"
	"housing-pipeline/scraper/lianjia"
	"housing-pipeline/services"
	"housing-pipeline/storage"
	"housing-pipeline/utils"
)

// pipeline runs the stages against one loaded configuration.
type pipeline struct {
	cfg    *config.Config
	logger *utils.Logger
}

func (p *pipeline) run(ctx context.Context) error {
	runID := uuid.New()
	p.logger.Info("=== Housing pipeline run %s starting ===", runID)

	if _, err := p.scrape(ctx); err != nil {
		return err
	}
	if _, err := p.clean(runID); err != nil {
		return err
	}
	if err := p.verify(p.cfg.PostgresEnabled, runID); err != nil {
		return err
	}

	fmt.Printf("  Done. Raw → %s | Analytics → %s | Modeling → %s\n\n",
		p.cfg.RawCSVPath, p.cfg.AnalyticsCSVPath, p.cfg.ModelingCSVPath)
	return nil
}

func (p *pipeline) scrape(ctx context.Context) ([]*models.RawListing, error) {
	cfg := p.cfg
	p.logger.Info("[scrape] Config — regions: %d | pages/region: %d | mode: %s | delay: %s–%s",
		len(cfg.Regions), cfg.MaxPagesPerRegion, cfg.FetchMode, cfg.PolitenessMin, cfg.PolitenessMax)

	fetcher, closeFetcher, err := p.newFetcher()
	if err != nil {
		return nil, err
	}
	defer closeFetcher()

	s := lianjia.New(fetcher, utils.NewPacer(cfg.PolitenessMin, cfg.PolitenessMax), cfg.MaxPagesPerRegion, p.logger)
	listings, results, err := s.Scrape(ctx, cfg.Regions)
	for _, r := range results {
		if r.Err != nil {
			p.logger.Warn("[scrape] Region %s ended early after %d page(s): %v", r.Region, r.Pages, r.Err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("scrape: %w", err)
	}

	if err := storage.WriteRawFile(cfg.RawCSVPath, listings); err != nil {
		return nil, err
	}
	p.logger.Info("[scrape] %d raw listings saved to %s", len(listings), cfg.RawCSVPath)
	return listings, nil
}

func (p *pipeline) newFetcher() (lianjia.PageFetcher, func(), error) {
	switch p.cfg.FetchMode {
	case config.FetchModeBrowser:
		b, err := lianjia.NewBrowserFetcher(p.cfg.ChromeBin, p.cfg.RequestTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("scrape: %w", err)
		}
		return b, b.Close, nil
	case config.FetchModeHTTP:
		return lianjia.NewHTTPFetcher(p.cfg.RequestTimeout), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("scrape: unknown fetch mode %q", p.cfg.FetchMode)
	}
}

func (p *pipeline) clean(runID uuid.UUID) (*services.CleanResult, error) {
	cfg := p.cfg
	p.logger.Info("[clean] Run %s — reading %s", runID, cfg.RawCSVPath)

	raw, err := storage.ReadRaw(cfg.RawCSVPath)
	if err != nil {
		return nil, err
	}

	cleaner := services.NewCleaner(p.logger, services.DefaultAliasTable(), services.CoercionPolicy(cfg.CoercionPolicy))
	res, err := cleaner.Clean(raw)
	if err != nil {
		return nil, err
	}

	emitter := services.NewEmitter(p.logger)
	analytics := emitter.AnalyticsFrame(res.Listings)
	modeling := emitter.ModelingFrame(analytics)

	if err := storage.WriteFrameFile(cfg.AnalyticsCSVPath, analytics); err != nil {
		return nil, err
	}
	p.logger.Info("[clean] Analytics dataset saved to %s", cfg.AnalyticsCSVPath)
	if err := storage.WriteFrameFile(cfg.ModelingCSVPath, modeling); err != nil {
		return nil, err
	}
	p.logger.Info("[clean] Modeling dataset saved to %s (%d columns)", cfg.ModelingCSVPath, len(modeling.Columns))

	if cfg.PostgresEnabled {
		if err := p.store(runID, res.Listings); err != nil {
			return nil, err
		}
	}
	if cfg.XLSXOutputPath != "" {
		if err := writeWorkbook(cfg.XLSXOutputPath, analytics, modeling); err != nil {
			p.logger.Error("XLSX export failed: %v", err)
			return nil, err
		}
		p.logger.Info("[clean] Workbook saved to %s", cfg.XLSXOutputPath)
	}
	return res, nil
}

func (p *pipeline) store(runID uuid.UUID, listings []models.Listing) error {
	pg, err := storage.NewPostgresWriter(p.cfg.DSN())
	if err != nil {
		p.logger.Error("Failed to connect to PostgreSQL: %v", err)
		p.logger.Error("Make sure Docker is running: docker compose up -d")
		return err
	}
	defer pg.Close()
	return p.writeRun(pg, runID, listings)
}

// writeRun stores one run. Any failure fails the clean stage: the
// transaction is rolled back, so no partial run is left behind.
func (p *pipeline) writeRun(sink storage.ListingWriter, runID uuid.UUID, listings []models.Listing) error {
	if err := sink.Write(runID, listings); err != nil {
		p.logger.Error("PostgreSQL write failed: %v", err)
		return err
	}
	p.logger.Info("[clean] %d listings stored in PostgreSQL (table: listings, run_id: %s)", len(listings), runID)
	return nil
}

func writeWorkbook(path string, analytics, modeling models.Frame) error {
	x, err := storage.NewXLSXWriter(path)
	if err != nil {
		return err
	}
	if err := x.WriteSheet("analytics", analytics); err != nil {
		_ = x.Close()
		return err
	}
	if err := x.WriteSheet("modeling", modeling); err != nil {
		_ = x.Close()
		return err
	}
	return x.Close()
}

// verify prints the district report from the analytics CSV, or from the
// stored run when fromDB is set. A nil runID selects the latest run.
func (p *pipeline) verify(fromDB bool, runID uuid.UUID) error {
	listings, err := p.loadForVerify(fromDB, runID)
	if err != nil {
		return err
	}

	svc := services.NewInsightService(p.logger, services.DefaultAliasTable())
	svc.Print(svc.Generate(listings))
	return nil
}

func (p *pipeline) loadForVerify(fromDB bool, runID uuid.UUID) ([]models.Listing, error) {
	if !fromDB {
		return storage.ReadAnalytics(p.cfg.AnalyticsCSVPath)
	}

	pg, err := storage.NewPostgresWriter(p.cfg.DSN())
	if err != nil {
		return nil, err
	}
	defer pg.Close()

	var reader storage.RunReader = pg
	if runID == uuid.Nil {
		if runID, err = reader.LatestRun(); err != nil {
			return nil, err
		}
	}
	listings, err := reader.FetchRun(runID)
	if err == nil && len(listings) == 0 {
		err = fmt.Errorf("run %s has no stored listings: %w", runID, models.ErrEmptyBatch)
	}
	if err != nil {
		p.logger.Error("Failed to fetch run %s from DB: %v — falling back to %s", runID, err, p.cfg.AnalyticsCSVPath)
		return storage.ReadAnalytics(p.cfg.AnalyticsCSVPath)
	}
	p.logger.Info("[verify] Loaded %d listings of run %s from PostgreSQL", len(listings), runID)
	return listings, nil
}
