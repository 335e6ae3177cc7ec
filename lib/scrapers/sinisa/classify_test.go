package sinisa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		text   string
		url    string
		kind   Kind
		module Module
	}{
		{
			text:   "Planilha de Informações e Indicadores – Água",
			url:    "https://www.gov.br/arquivos/sinisa_agua_2023.zip",
			kind:   KindSpreadsheet,
			module: ModuleWater,
		},
		{
			text:   "Relatório de Esgotamento Sanitário",
			url:    "https://www.gov.br/arquivos/relatorio_esgoto.pdf",
			kind:   KindReport,
			module: ModuleSewage,
		},
		{
			text:   "Glossário",
			url:    "https://www.gov.br/arquivos/glossario.pdf",
			kind:   KindGlossary,
			module: "",
		},
		{
			text:   "Atestado de Regularidade",
			url:    "https://www.gov.br/arquivos/atestado.pdf",
			kind:   KindCertificate,
			module: "",
		},
		{
			// filename alone carries the signal
			text:   "baixar arquivo",
			url:    "https://www.gov.br/arquivos/indicadores_residuos.xlsx",
			kind:   KindSpreadsheet,
			module: ModuleSolidWaste,
		},
		{
			text:   "Gestão Municipal",
			url:    "https://www.gov.br/arquivos/gestao_municipal.csv",
			kind:   KindOther,
			module: ModuleMunicipalManagement,
		},
		{
			text:   "qualquer coisa",
			url:    "https://www.gov.br/pagina",
			kind:   KindOther,
			module: "",
		},
	}

	for _, test := range testCases {
		kind, module := Classify(test.text, test.url)
		require.Equal(t, test.kind, kind, test.text)
		require.Equal(t, test.module, module, test.text)
	}
}

func TestIsDownloadable(t *testing.T) {
	require.True(t, IsDownloadable("https://x.gov.br/a/planilha.zip"))
	require.True(t, IsDownloadable("https://x.gov.br/a/dados.CSV"))
	require.True(t, IsDownloadable("https://x.gov.br/a/relatorio.pdf"))
	require.False(t, IsDownloadable("https://x.gov.br/resultados-sinisa/2023"))
	require.False(t, IsDownloadable("https://x.gov.br/planilha.zip.html"))
}

func TestNormalizeKinds(t *testing.T) {
	kinds, err := normalizeKinds(nil)
	require.NoError(t, err)
	require.Equal(t, []Kind{KindSpreadsheet}, kinds)

	kinds, err = normalizeKinds([]Kind{" Planilhas ", "all", "planilhas"})
	require.NoError(t, err)
	require.Equal(t, []Kind{KindSpreadsheet, KindAll}, kinds)

	_, err = normalizeKinds([]Kind{"filmes"})
	require.Error(t, err)
}

func TestNormalizeModules(t *testing.T) {
	modules, err := normalizeModules([]Module{"agua", "AGUA", "esgoto"})
	require.NoError(t, err)
	require.Equal(t, []Module{ModuleWater, ModuleSewage}, modules)

	_, err = normalizeModules([]Module{"energia"})
	require.Error(t, err)
}
