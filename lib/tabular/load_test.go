package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadCSVUtf8WithBOM(t *testing.T) {
	data := []byte("\xef\xbb\xbfCódigo do Município;Ano;População\n3550308;2023;11451245\n")
	table, err := Load(writeTempFile(t, "dados.csv", data))
	require.NoError(t, err)
	require.Equal(t, []string{"codigo_do_municipio", "ano", "populacao"}, table.Columns)
	require.Len(t, table.Rows, 1)
	require.Equal(t, "3550308", table.Cell(0, 0))
}

func TestLoadCSVLatin1(t *testing.T) {
	enc := charmap.ISO8859_1.NewEncoder()
	data, err := enc.Bytes([]byte("município;ano\nSão Paulo;2022\n"))
	require.NoError(t, err)

	table, err := Load(writeTempFile(t, "latin.csv", data))
	require.NoError(t, err)
	require.Equal(t, []string{"municipio", "ano"}, table.Columns)
	require.Equal(t, "São Paulo", table.Cell(0, 0))
}

func TestLoadCSVSniffsCommaDelimiter(t *testing.T) {
	data := []byte("codigo,ano,valor\n3550308,2023,10\n3509502,2023,20\n")
	table, err := Load(writeTempFile(t, "comma.csv", data))
	require.NoError(t, err)
	require.Equal(t, []string{"codigo", "ano", "valor"}, table.Columns)
	require.Len(t, table.Rows, 2)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load(writeTempFile(t, "relatorio.pdf", []byte("%PDF-1.4")))
	require.Error(t, err)
}

func TestLoadRaggedRowsArePadded(t *testing.T) {
	data := []byte("a;b;c\n1;2\n1;2;3;4\n")
	table, err := Load(writeTempFile(t, "ragged.csv", data))
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "", table.Cell(0, 2))
	require.Equal(t, "3", table.Cell(1, 2))
}

func TestColumnNormalizationAndDedupe(t *testing.T) {
	table := newTable([][]string{
		{"Código", "Código", "", "Ano (Ref.)"},
		{"1", "2", "3", "2020"},
	}, func(cell string) any { return cell })
	require.Equal(t, []string{"codigo", "codigo_1", "coluna", "ano_ref"}, table.Columns)
}

// a number-typed workbook cell must come out as a native float64, not a
// display string that the pt-BR decimal rules would misread
func TestLoadSpreadsheetKeepsNativeNumbers(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"codigo_municipio", "ano", "indice"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{3550308, 2023, 12.5}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{3509502, 2023, "sem dados"}))

	path := filepath.Join(t.TempDir(), "indicadores.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"codigo_municipio", "ano", "indice"}, table.Columns)
	require.Equal(t, float64(3550308), table.Cell(0, 0))
	require.Equal(t, 12.5, table.Cell(0, 2))
	require.Equal(t, "sem dados", table.Cell(1, 2))
}
