package sinisa

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"inteligente-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	homeURL = "https://www.gov.br/cidades/pt-br/acesso-a-informacao/" +
		"acoes-e-programas/saneamento/sinisa"
	defaultResultsURL = homeURL + "/resultados-sinisa"
)

// fetchAnchors GETs a listing page and returns its links resolved
// against the page's own URL. Responses that are neither declared as
// HTML/XML nor look like HTML are rejected, some gov.br endpoints
// redirect straight into binary payloads.
func (s *Scraper) fetchAnchors(ctx context.Context, pageURL string) ([]htmlutil.Anchor, error) {
	res, err := s.pages.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		Get(pageURL)
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("GET %s: status %d", pageURL, res.StatusCode())
	}

	body := res.String()
	contentType := strings.ToLower(res.Header().Get("Content-Type"))
	if !strings.Contains(contentType, "html") && !strings.Contains(contentType, "xml") {
		lowered := strings.ToLower(body)
		if !strings.Contains(lowered, "<html") && !strings.Contains(lowered, "<!doctype html") {
			return nil, fmt.Errorf("GET %s: content does not look like HTML/XML: %s", pageURL, contentType)
		}
	}

	base := baseURL(res.RawResponse.Request.URL, pageURL)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	anchors := htmlutil.GetAnchors(ctx, doc, base)
	for i := range anchors {
		// gov.br exposes both /arquivo.ext and /arquivo.ext/view
		anchors[i].URL = strings.TrimSuffix(anchors[i].URL, "/view")
	}
	return anchors, nil
}

func baseURL(final *url.URL, requested string) *url.URL {
	if final != nil {
		return final
	}
	parsed, err := url.Parse(requested)
	if err != nil {
		return &url.URL{}
	}
	return parsed
}

// resolveResultsURLs returns the listing pages to crawl. Without an
// explicit results URL the known entry pages are visited to discover
// per-release listing pages, ranked most-recent-first (descending URL
// order, release pages carry the year in their slug).
func (s *Scraper) resolveResultsURLs(ctx context.Context) []string {
	if len(s.opts.ResultsURLs) > 0 {
		return s.opts.ResultsURLs
	}

	candidates := map[string]struct{}{
		defaultResultsURL: {},
	}
	for _, seed := range []string{homeURL, defaultResultsURL} {
		anchors, err := s.fetchAnchors(ctx, seed)
		if err != nil {
			slog.WarnContext(ctx, "failed to crawl entry page", "url", seed, "err", err)
			continue
		}
		for _, a := range anchors {
			if IsDownloadable(a.URL) {
				continue
			}
			if !strings.Contains(a.URL, "/resultados-sinisa/") {
				continue
			}
			if strings.Contains(a.URL, "/arquivos/") {
				continue
			}
			candidates[strings.TrimRight(a.URL, "/")] = struct{}{}
		}
	}

	pages := make([]string, 0, len(candidates))
	for page := range candidates {
		pages = append(pages, page)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(pages)))
	return pages
}

// listDocuments crawls every listing page, classifies the full
// discovered set and only then applies the caller's kind and module
// filters. Filtering is a presentation concern, never a discovery one.
func (s *Scraper) listDocuments(ctx context.Context) []Document {
	var docs []Document
	seen := map[string]struct{}{}

	for _, page := range s.resolveResultsURLs(ctx) {
		anchors, err := s.fetchAnchors(ctx, page)
		if err != nil {
			slog.WarnContext(ctx, "skipping listing page", "url", page, "err", err)
			continue
		}
		for _, a := range anchors {
			if !IsDownloadable(a.URL) {
				continue
			}
			if _, dup := seen[a.URL]; dup {
				continue
			}
			seen[a.URL] = struct{}{}

			kind, module := Classify(a.Text, a.URL)
			docs = append(docs, Document{
				URL:    a.URL,
				Text:   a.Text,
				Kind:   kind,
				Module: module,
			})
		}
	}

	var filtered []Document
	for _, doc := range docs {
		if !s.kindRequested(doc.Kind) {
			continue
		}
		if len(s.modules) > 0 && !s.moduleRequested(doc.Module) {
			continue
		}
		filtered = append(filtered, doc)
	}
	slog.InfoContext(ctx, "documents discovered",
		"total", len(docs),
		"after_filters", len(filtered),
	)
	return filtered
}

func (s *Scraper) kindRequested(kind Kind) bool {
	for _, k := range s.kinds {
		if k == KindAll || k == kind {
			return true
		}
	}
	return false
}

func (s *Scraper) moduleRequested(module Module) bool {
	for _, m := range s.modules {
		if m == module {
			return true
		}
	}
	return false
}
