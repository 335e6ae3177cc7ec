package commands

import (
	"log/slog"
	"os"
	"time"

	"inteligente-backend/lib/configuration"
	"inteligente-backend/lib/datastore"
	"inteligente-backend/lib/scrapers/sinisa"
	"inteligente-backend/lib/warehouse"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	ResultsURLs    []string `json:"results_urls"`
	Kinds          []string `json:"kinds"`
	Modules        []string `json:"modules"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

const dataCategory = "Água e Esgoto"

var (
	scrapeDb        *string
	scrapeOverwrite *bool
	scrapeWorkers   *int
)

func init() {
	scrapeDb = scrapeCmd.Flags().String("db", "sinisa.db", "The database to write extracted indicators to.")
	scrapeOverwrite = scrapeCmd.Flags().Bool("overwrite", false, "Re-download and re-extract already staged files.")
	scrapeWorkers = scrapeCmd.Flags().Int("workers", 4, "Bounded worker pool size for per-document processing.")
	rootCmd.AddCommand(scrapeCmd)
}

func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--db <path/to/output.db>]",
	Short: "Runs a full extraction and writes per-indicator collections to a database.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configuration.ReadConfig[Config]("config.json5")
		if err != nil && !os.IsNotExist(err) {
			fatal("failed to read config", err)
		}

		kinds := make([]sinisa.Kind, len(cfg.Kinds))
		for i, k := range cfg.Kinds {
			kinds[i] = sinisa.Kind(k)
		}
		modules := make([]sinisa.Module, len(cfg.Modules))
		for i, m := range cfg.Modules {
			modules[i] = sinisa.Module(m)
		}

		scraper, err := sinisa.NewScraper(sinisa.Options{
			ResultsURLs: cfg.ResultsURLs,
			Kinds:       kinds,
			Modules:     modules,
			Overwrite:   *scrapeOverwrite,
			Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
			Workers:     *scrapeWorkers,
		})
		if err != nil {
			fatal("failed to initialize scraper", err)
		}

		t1 := time.Now()
		datasets, err := scraper.Extract(cmd.Context())
		if err != nil {
			fatal("extraction failed", err)
		}
		slog.Info("extraction finished",
			"years", len(datasets),
			"seconds", time.Since(t1).Seconds(),
		)

		collections := warehouse.BuildCollections(dataCategory, datasets)

		db, err := datastore.Open(*scrapeDb)
		if err != nil {
			fatal("failed to open db", err)
		}
		defer db.Close()

		err = datastore.NewStore(db).Push(cmd.Context(), collections)
		if err != nil {
			fatal("failed to write collections", err)
		}

		summary := table.NewWriter()
		summary.SetOutputMirror(os.Stdout)
		summary.AppendHeader(table.Row{"Year", "Records", "Indicators"})
		for _, ds := range datasets {
			indicators := map[string]struct{}{}
			for _, r := range ds.Records {
				indicators[r.Indicator] = struct{}{}
			}
			summary.AppendRow(table.Row{ds.Year, len(ds.Records), len(indicators)})
		}
		summary.Render()
	},
}
