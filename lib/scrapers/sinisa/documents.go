package sinisa

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"inteligente-backend/lib/textutil"
)

// Kind is the coarse content class of a published document.
type Kind string

const (
	KindSpreadsheet Kind = "planilhas"
	KindReport      Kind = "relatorios"
	KindGlossary    Kind = "glossarios"
	KindCertificate Kind = "atestados"
	KindOther       Kind = "other"
	// KindAll is only valid as a filter, it admits every kind.
	KindAll Kind = "all"
)

// Module is the topical survey module a document belongs to.
type Module string

const (
	ModuleMunicipalManagement Module = "gestao_municipal"
	ModuleWater               Module = "agua"
	ModuleSewage              Module = "esgoto"
	ModuleSolidWaste          Module = "residuos"
	ModuleStormwater          Module = "aguas_pluviais"
)

// Document is a classified link discovered on a results page.
// Immutable once classified.
type Document struct {
	URL    string
	Text   string
	Kind   Kind
	Module Module
}

// Ordered keyword tables: first matching pattern wins, the fallback is
// KindOther / no module. Patterns are in normalized phrase form and kept
// as explicit static configuration so they stay unit-testable offline.
var kindPatterns = []struct {
	kind     Kind
	patterns []string
}{
	{KindSpreadsheet, []string{"planilha", "informacoes e indicadores", "indicadores"}},
	{KindReport, []string{"relatorio"}},
	{KindGlossary, []string{"glossario"}},
	{KindCertificate, []string{"atestado", "adimplencia", "regularidade"}},
}

var modulePatterns = []struct {
	module   Module
	patterns []string
}{
	{ModuleMunicipalManagement, []string{"gestao municipal", "gestao_municipal"}},
	{ModuleWater, []string{"agua", "abastecimento"}},
	{ModuleSewage, []string{"esgoto", "esgotamento"}},
	{ModuleSolidWaste, []string{"residuo", "residuos"}},
	{ModuleStormwater, []string{"pluvial", "aguas pluviais", "aguaspluviais"}},
}

// Classify tags a link by testing its display text plus filename against
// the keyword tables.
func Classify(text, rawURL string) (Kind, Module) {
	haystack := text + " " + urlFilename(rawURL)

	kind := KindOther
	for _, entry := range kindPatterns {
		if textutil.MatchAny(haystack, entry.patterns) {
			kind = entry.kind
			break
		}
	}

	var module Module
	for _, entry := range modulePatterns {
		if textutil.MatchAny(haystack, entry.patterns) {
			module = entry.module
			break
		}
	}
	return kind, module
}

func urlFilename(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Base(parsed.Path)
}

var downloadableExts = []string{".zip", ".xlsx", ".xls", ".csv", ".ods", ".pdf"}

// spreadsheet sources and, once unpacked, the formats the loader accepts
var spreadsheetSourceExts = []string{".zip", ".csv", ".xlsx", ".xls", ".ods"}
var tabularExts = []string{".csv", ".xlsx", ".xls", ".ods"}

func hasExt(rawURL string, exts []string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	lowered := strings.ToLower(parsed.Path)
	for _, ext := range exts {
		if strings.HasSuffix(lowered, ext) {
			return true
		}
	}
	return false
}

// IsDownloadable reports whether the URL points at a published artifact
// rather than another page.
func IsDownloadable(rawURL string) bool {
	return hasExt(rawURL, downloadableExts)
}

func isSpreadsheetSource(rawURL string) bool {
	return hasExt(rawURL, spreadsheetSourceExts)
}

var validKinds = map[Kind]struct{}{
	KindSpreadsheet: {}, KindReport: {}, KindGlossary: {}, KindCertificate: {}, KindAll: {},
}

var validModules = map[Module]struct{}{
	ModuleMunicipalManagement: {}, ModuleWater: {}, ModuleSewage: {},
	ModuleSolidWaste: {}, ModuleStormwater: {},
}

func normalizeKinds(kinds []Kind) ([]Kind, error) {
	if len(kinds) == 0 {
		return []Kind{KindSpreadsheet}, nil
	}
	var out []Kind
	seen := map[Kind]struct{}{}
	for _, k := range kinds {
		k = Kind(strings.ToLower(strings.TrimSpace(string(k))))
		if _, ok := validKinds[k]; !ok {
			return nil, fmt.Errorf("invalid document kind %q", k)
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out, nil
}

func normalizeModules(modules []Module) ([]Module, error) {
	var out []Module
	seen := map[Module]struct{}{}
	for _, m := range modules {
		m = Module(strings.ToLower(strings.TrimSpace(string(m))))
		if _, ok := validModules[m]; !ok {
			return nil, fmt.Errorf("invalid module %q", m)
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}
