package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var spreadsheetExts = map[string]struct{}{
	".xlsx": {},
	".xlsm": {},
	".xltx": {},
	".xltm": {},
	".xls":  {},
	".ods":  {},
}

// Load reads a file into a Table, dispatching on extension. Spreadsheet
// formats are read through their first sheet; delimited text is tried
// against a ranked encoding list with delimiter sniffing. Every failure
// mode is an error the caller treats as "skip this file".
func Load(path string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := spreadsheetExts[ext]; ok {
		return loadSpreadsheet(path)
	}
	if ext == ".csv" {
		return loadDelimited(path)
	}
	return nil, fmt.Errorf("unsupported table format %q", ext)
}

// loadSpreadsheet reads the first sheet of an xlsx-family workbook.
// Legacy containers (.xls, binary .ods) make excelize error out, which
// surfaces as the usual skip.
func loadSpreadsheet(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	return newTable(records, spreadsheetCell), nil
}

// spreadsheetCell recovers the native numbers the workbook stores.
// Raw cell values use the invariant "." decimal, so a number-typed cell
// round-trips as float64 and never hits the pt-BR string rules.
func spreadsheetCell(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return raw
}

type rankedEncoding struct {
	name    string
	decoder *encoding.Decoder
}

// utf-8 with signature first, then the legacy single-byte encodings the
// source has been seen publishing over the years.
var rankedEncodings = []rankedEncoding{
	{name: "utf-8-sig", decoder: unicode.UTF8BOM.NewDecoder()},
	{name: "latin-1", decoder: charmap.ISO8859_1.NewDecoder()},
	{name: "windows-1252", decoder: charmap.Windows1252.NewDecoder()},
}

func loadDelimited(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var errs []string
	for _, enc := range rankedEncodings {
		// the UTF8BOM decoder substitutes replacement runes instead of
		// failing, so invalid utf-8 must be rejected up front or the
		// legacy encodings never get their turn.
		if enc.name == "utf-8-sig" && !utf8.Valid(bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))) {
			errs = append(errs, "utf-8-sig: invalid utf-8")
			continue
		}
		decoded, _, err := transform.Bytes(enc.decoder, raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", enc.name, err))
			continue
		}

		table, err := parseDelimited(decoded)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", enc.name, err))
			continue
		}
		return table, nil
	}
	return nil, fmt.Errorf("no encoding parsed %s: %s", filepath.Base(path), strings.Join(errs, "; "))
}

func parseDelimited(data []byte) (*Table, error) {
	delim := sniffDelimiter(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no rows")
	}
	return newTable(records, func(cell string) any { return cell }), nil
}

var candidateDelimiters = []rune{';', ',', '\t', '|'}

// sniffDelimiter picks the candidate occurring most often in the first
// few non-empty lines. Semicolon is the tie-break winner since pt-BR
// spreadsheets use comma as the decimal separator.
func sniffDelimiter(data []byte) rune {
	lines := strings.SplitN(string(data), "\n", 6)
	sample := ""
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			sample += line + "\n"
		}
	}

	best := candidateDelimiters[0]
	bestCount := 0
	for _, cand := range candidateDelimiters {
		count := strings.Count(sample, string(cand))
		if count > bestCount {
			best = cand
			bestCount = count
		}
	}
	return best
}
