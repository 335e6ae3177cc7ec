package sinisa

import (
	"path/filepath"
	"strings"

	"inteligente-backend/lib/cellvalue"
	"inteligente-backend/lib/tabular"
	"inteligente-backend/lib/textutil"
)

// Record is one canonical long-format observation.
type Record struct {
	EntityCode int64
	Year       int
	Indicator  string
	Value      cellvalue.Value
}

// columns that describe rather than measure; they never become
// indicators.
var nonIndicatorColumns = map[string]struct{}{
	"municipio":         {},
	"nome_municipio":    {},
	"uf":                {},
	"estado":            {},
	"sigla_uf":          {},
	"regiao":            {},
	"microrregiao":      {},
	"mesorregiao":       {},
	"prestador":         {},
	"prestador_nome":    {},
	"servico":           {},
	"sistema":           {},
	"localidade":        {},
	"codigo_localidade": {},
	"descricao":         {},
	"tipo":              {},
	"classe":            {},
}

// an all-text column with more distinct values than this is almost
// certainly free text, not a categorical indicator
const freeTextDistinctLimit = 20

const defaultModuleTag = "GERAL"

// assembleTable turns a loaded table into long-format records: infer the
// column roles, build the per-row entity and year series, and emit one
// record per valid row and kept indicator column. Indicator names are a
// deterministic function of module, file stem and column name.
func assembleTable(t *tabular.Table, filePath string, module Module) ([]Record, error) {
	roles, err := tabular.InferRoles(t, filePath)
	if err != nil {
		return nil, err
	}

	entityIdx := t.ColumnIndex(roles.EntityColumn)
	yearIdx := -1
	if roles.YearColumn != "" {
		yearIdx = t.ColumnIndex(roles.YearColumn)
	}

	type rowKey struct {
		code  int64
		year  int
		valid bool
	}
	keys := make([]rowKey, len(t.Rows))
	anyValid := false
	for i := range t.Rows {
		code, ok := cellvalue.EntityCode(t.Cell(i, entityIdx))
		if !ok {
			continue
		}
		year := roles.YearConstant
		if yearIdx >= 0 {
			year, ok = cellvalue.Year(t.Cell(i, yearIdx))
			if !ok {
				continue
			}
		}
		keys[i] = rowKey{code: code, year: year, valid: true}
		anyValid = true
	}
	if !anyValid {
		return nil, nil
	}

	moduleTag := defaultModuleTag
	if module != "" {
		moduleTag = strings.ToUpper(string(module))
	}
	stem := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	filePrefix := strings.ToUpper(textutil.NormalizeKey(stem))

	var records []Record
	for colIdx, name := range t.Columns {
		if colIdx == entityIdx || colIdx == yearIdx {
			continue
		}
		if _, stop := nonIndicatorColumns[name]; stop {
			continue
		}

		type parsedCell struct {
			row   int
			value cellvalue.Value
		}
		var cells []parsedCell
		allText := true
		distinct := map[string]struct{}{}
		for row := range t.Rows {
			if !keys[row].valid {
				continue
			}
			value := cellvalue.ParseAny(t.Cell(row, colIdx))
			if value.IsAbsent() {
				continue
			}
			if value.Kind() != cellvalue.KindText {
				allText = false
			} else {
				distinct[value.Text()] = struct{}{}
			}
			cells = append(cells, parsedCell{row: row, value: value})
		}
		if len(cells) == 0 {
			continue
		}
		if allText && len(distinct) > freeTextDistinctLimit {
			// descriptive column leaking into indicator space
			continue
		}

		indicator := "SINISA_" + moduleTag + "_" + filePrefix + "_" + strings.ToUpper(name)
		for _, cell := range cells {
			key := keys[cell.row]
			records = append(records, Record{
				EntityCode: key.code,
				Year:       key.year,
				Indicator:  indicator,
				Value:      cell.value,
			})
		}
	}
	return records, nil
}
