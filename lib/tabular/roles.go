package tabular

import (
	"errors"

	"inteligente-backend/lib/cellvalue"
)

// Roles is the outcome of column role inference. Exactly one of
// YearColumn / YearConstant is set on success.
type Roles struct {
	EntityColumn string
	YearColumn   string
	YearConstant int
}

var (
	ErrNoEntityColumn = errors.New("no entity code column found")
	ErrNoYearInfo     = errors.New("no year column or file-level year found")
)

// column names the source has used for the municipal code across
// releases, in normalized form.
var entityColumnAliases = []string{
	"codigo_municipio",
	"cod_municipio",
	"municipio_codigo",
	"id_municipio",
	"id_municipio_ibge",
	"cod_ibge",
	"ibge",
}

var yearColumnAliases = []string{
	"ano",
	"ano_referencia",
	"anoreferencia",
	"ano_base",
	"ano_ref",
	"year",
}

const roleSampleRows = 500

// InferRoles determines which column holds the entity code and where the
// year comes from, with no schema contract from the source. Entity: an
// alias hit wins outright; otherwise every column is scored over the
// first 500 rows by how many cells normalize to a plausible code and the
// winner must clear max(10, half the sample). Year: an alias hit gives a
// per-row column; otherwise a 4-digit token in the file path gives a
// constant for the whole file. Failing either way fails the whole file.
func InferRoles(t *Table, path string) (Roles, error) {
	entity := matchAlias(t.Columns, entityColumnAliases)
	if entity == "" {
		entity = scoreEntityColumn(t)
	}
	if entity == "" {
		return Roles{}, ErrNoEntityColumn
	}

	if yearCol := matchAlias(t.Columns, yearColumnAliases); yearCol != "" {
		return Roles{EntityColumn: entity, YearColumn: yearCol}, nil
	}
	if year, ok := cellvalue.Year(path); ok {
		return Roles{EntityColumn: entity, YearConstant: year}, nil
	}
	return Roles{}, ErrNoYearInfo
}

func matchAlias(columns, aliases []string) string {
	for _, alias := range aliases {
		for _, col := range columns {
			if col == alias {
				return col
			}
		}
	}
	return ""
}

func scoreEntityColumn(t *Table) string {
	sample := len(t.Rows)
	if sample > roleSampleRows {
		sample = roleSampleRows
	}
	if sample == 0 {
		return ""
	}

	best := ""
	bestHits := 0
	for col, name := range t.Columns {
		hits := 0
		for row := 0; row < sample; row++ {
			if _, ok := cellvalue.EntityCode(t.Cell(row, col)); ok {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = name
		}
	}

	threshold := sample / 2
	if threshold < 10 {
		threshold = 10
	}
	if bestHits < threshold {
		return ""
	}
	return best
}
