// Package sinisa ingests the irregular spreadsheets published on the
// SINISA results pages: it discovers which linked documents are data
// spreadsheets, stages and unpacks them, infers each table's schema and
// emits a canonical long-format record stream partitioned by year.
//
// Nothing in here is fatal to a run. A page, document or file that
// cannot be processed is logged and skipped; the worst case is an empty
// result set, which callers must treat as a legitimate outcome.
package sinisa

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"inteligente-backend/lib/archive"
	"inteligente-backend/lib/tabular"
	"inteligente-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("scrapers/sinisa")

const userAgent = "inteligente-sinisa-scraper/1.0"

type Options struct {
	// ResultsURLs pins the listing pages to crawl. When empty, listing
	// pages are discovered from the known entry pages.
	ResultsURLs []string
	// Kinds filters the classified documents; defaults to spreadsheets.
	Kinds []Kind
	// Modules restricts to the given topical modules; empty means all.
	Modules []Module
	// SkipArchives disables unpacking of zip documents.
	SkipArchives bool
	// Overwrite re-downloads and re-extracts already staged files.
	Overwrite bool
	// Timeout bounds every page fetch and document download.
	// Defaults to 120s.
	Timeout time.Duration
	// Workers bounds the per-document worker pool. Defaults to 4.
	Workers int
}

type Scraper struct {
	opts    Options
	kinds   []Kind
	modules []Module
	pages   *resty.Client
	files   *resty.Client
}

func NewScraper(opts Options) (*Scraper, error) {
	kinds, err := normalizeKinds(opts.Kinds)
	if err != nil {
		return nil, err
	}
	modules, err := normalizeModules(opts.Modules)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	pages := resty.New()
	pages.SetTimeout(opts.Timeout)
	pages.SetHeader("User-Agent", userAgent)
	pages.SetHeader("Accept-Language", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7")
	telemetry.InstrumentResty(pages, "scrapers/sinisa/pages")

	files := resty.New()
	files.SetTimeout(opts.Timeout)
	files.SetHeader("User-Agent", userAgent)
	files.SetRetryCount(1)
	files.AddRetryCondition(func(res *resty.Response, err error) bool {
		// error statuses count as failed downloads, not only transport errors
		return err != nil || res.IsError()
	})
	telemetry.InstrumentResty(files, "scrapers/sinisa/files")

	return &Scraper{
		opts:    opts,
		kinds:   kinds,
		modules: modules,
		pages:   pages,
		files:   files,
	}, nil
}

// Extract runs the whole pipeline: crawl, classify, download, unpack,
// load, infer, assemble, partition. The staging area lives only for the
// duration of the call, success or failure.
func (s *Scraper) Extract(ctx context.Context) ([]YearDataset, error) {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()

	staging, err := os.MkdirTemp("", "sinisa-staging-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(staging)

	rawDir := filepath.Join(staging, "raw")
	extractedDir := filepath.Join(staging, "extracted")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(extractedDir, 0o755); err != nil {
		return nil, err
	}

	docs := s.listDocuments(ctx)
	if len(docs) == 0 {
		return nil, nil
	}

	// every document contributes an independent local record slice,
	// folded into the shared accumulator under the lock
	var (
		records []Record
		lock    sync.Mutex
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, s.opts.Workers)
	for _, doc := range docs {
		doc := doc
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			local := s.processDocument(ctx, doc, rawDir, extractedDir)
			if len(local) == 0 {
				return
			}
			lock.Lock()
			defer lock.Unlock()
			records = append(records, local...)
		}()
	}
	wg.Wait()

	span.SetAttributes(
		attribute.Int("documents", len(docs)),
		attribute.Int("records", len(records)),
	)
	return partitionByYear(records), nil
}

// processDocument runs the per-document pipeline and returns the records
// it contributed. All failures are local to the document.
func (s *Scraper) processDocument(ctx context.Context, doc Document, rawDir, extractedDir string) []Record {
	if doc.Kind != KindSpreadsheet || !isSpreadsheetSource(doc.URL) {
		return nil
	}

	downloaded, err := s.downloadDocument(ctx, doc, rawDir)
	if err != nil {
		slog.WarnContext(ctx, "skipping document, download failed", "url", doc.URL, "err", err)
		return nil
	}

	var tabularFiles []string
	if strings.EqualFold(filepath.Ext(downloaded), ".zip") {
		if s.opts.SkipArchives {
			return nil
		}
		dest := filepath.Join(extractedDir, stagingID(doc.URL))
		extracted, err := archive.Extract(downloaded, dest, archive.ExtractOptions{
			AllowedExts: tabularExts,
			Overwrite:   s.opts.Overwrite,
		})
		if err != nil {
			slog.WarnContext(ctx, "skipping document, corrupt archive", "url", doc.URL, "err", err)
			return nil
		}
		tabularFiles = extracted
	} else {
		tabularFiles = []string{downloaded}
	}

	var records []Record
	for _, file := range tabularFiles {
		table, err := tabular.Load(file)
		if err != nil {
			slog.DebugContext(ctx, "skipping file, not loadable", "file", filepath.Base(file), "err", err)
			continue
		}
		if table.Empty() {
			continue
		}

		fromFile, err := assembleTable(table, file, doc.Module)
		if err != nil {
			// expected and common for glossary-like sheets
			slog.DebugContext(ctx, "skipping file, schema inference failed",
				"file", filepath.Base(file),
				"err", err,
			)
			continue
		}
		records = append(records, fromFile...)
	}
	return records
}
