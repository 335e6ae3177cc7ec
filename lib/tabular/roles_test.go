package tabular

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func syntheticTable(columns []string, rows int, cell func(row int, col string) string) *Table {
	t := &Table{Columns: columns}
	for r := 0; r < rows; r++ {
		row := make([]any, len(columns))
		for c, name := range columns {
			row[c] = cell(r, name)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func TestInferRolesAliasMatch(t *testing.T) {
	table := syntheticTable([]string{"cod_ibge", "ano", "indicador_x"}, 5, func(r int, col string) string {
		switch col {
		case "cod_ibge":
			return fmt.Sprintf("35%05d", r)
		case "ano":
			return "2023"
		}
		return "1"
	})

	roles, err := InferRoles(table, "qualquer.csv")
	require.NoError(t, err)
	require.Equal(t, "cod_ibge", roles.EntityColumn)
	require.Equal(t, "ano", roles.YearColumn)
	require.Zero(t, roles.YearConstant)
}

func TestInferRolesScoredEntityColumn(t *testing.T) {
	// no alias matches by name, but one column is full of valid codes
	table := syntheticTable([]string{"chave", "nome", "valor"}, 500, func(r int, col string) string {
		switch col {
		case "chave":
			return fmt.Sprintf("%07d", 3500000+r)
		case "nome":
			return fmt.Sprintf("Municipio %d", r)
		}
		return "12,5"
	})

	roles, err := InferRoles(table, "planilha_agua_2023.xlsx")
	require.NoError(t, err)
	require.Equal(t, "chave", roles.EntityColumn)
	require.Empty(t, roles.YearColumn)
	require.Equal(t, 2023, roles.YearConstant)
}

func TestInferRolesFailsBelowThreshold(t *testing.T) {
	// only 3 plausible codes out of 500 sampled rows in the best column
	table := syntheticTable([]string{"a", "b"}, 500, func(r int, col string) string {
		if col == "a" && r < 3 {
			return "3550308"
		}
		return "x"
	})

	_, err := InferRoles(table, "dados_2023.csv")
	require.ErrorIs(t, err, ErrNoEntityColumn)
}

func TestInferRolesNoYearInformation(t *testing.T) {
	table := syntheticTable([]string{"codigo_municipio", "valor"}, 20, func(r int, col string) string {
		if col == "codigo_municipio" {
			return "3550308"
		}
		return "1"
	})

	_, err := InferRoles(table, "dados_sem_ano.csv")
	require.ErrorIs(t, err, ErrNoYearInfo)
}

func TestInferRolesSmallSampleNeedsTenHits(t *testing.T) {
	// 9 valid codes in a 12-row table misses the max(10, 50%) floor
	table := syntheticTable([]string{"a"}, 12, func(r int, col string) string {
		if r < 9 {
			return "3550308"
		}
		return "texto"
	})

	_, err := InferRoles(table, "dados_2020.csv")
	require.ErrorIs(t, err, ErrNoEntityColumn)
}
