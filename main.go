package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"housing-pipeline/config"
	"housing-pipeline/utils"
)

func main() {
	logger := utils.NewLogger()
	p := &pipeline{logger: logger}

	var (
		maxPages int
		policy   string
		logLevel string
	)

	rootCmd := &cobra.Command{
		Use:           "housing-pipeline",
		Short:         "Chengdu resale housing scrape and clean pipeline",
		Long:          `Scrapes resale listings for the Chengdu districts, cleans them into an analytics dataset and a one-hot encoded modeling dataset, and verifies district names.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-pages") {
				cfg.MaxPagesPerRegion = maxPages
			}
			if policy != "" {
				cfg.CoercionPolicy = policy
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger.SetLevel(utils.ParseLevel(cfg.LogLevel))
			p.cfg = cfg
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&policy, "policy", "", "coercion failure policy: fail or drop (overrides COERCION_POLICY)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	scrapeCmd := createScrapeCmd(p)
	runCmd := createRunCmd(p)
	for _, cmd := range []*cobra.Command{scrapeCmd, runCmd} {
		cmd.Flags().IntVar(&maxPages, "max-pages", 0, "pages per region (overrides MAX_PAGES_PER_REGION)")
	}

	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(createCleanCmd(p))
	rootCmd.AddCommand(createVerifyCmd(p))
	rootCmd.AddCommand(runCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

func createScrapeCmd(p *pipeline) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Fetch listing pages for every region and write the raw CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := p.scrape(cmd.Context())
			return err
		},
	}
}

func createCleanCmd(p *pipeline) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Clean the raw CSV into the analytics and modeling datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := p.clean(uuid.New())
			return err
		},
	}
}

func createVerifyCmd(p *pipeline) *cobra.Command {
	var (
		fromDB bool
		runArg string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Report listings per district and flag non-canonical district names",
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.Nil
			if runArg != "" {
				id, err := uuid.Parse(runArg)
				if err != nil {
					return fmt.Errorf("verify: --run: %w", err)
				}
				runID = id
				fromDB = true
			}
			return p.verify(fromDB, runID)
		},
	}
	cmd.Flags().BoolVar(&fromDB, "from-db", false, "read the latest stored run from PostgreSQL instead of the analytics CSV")
	cmd.Flags().StringVar(&runArg, "run", "", "run id to read from PostgreSQL")
	return cmd
}

func createRunCmd(p *pipeline) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Scrape, clean and verify in sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			return p.run(cmd.Context())
		},
	}
}
