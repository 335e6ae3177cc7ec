package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestZip(t *testing.T, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, contents := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestExtractFiltersByExtension(t *testing.T) {
	src := writeTestZip(t, map[string]string{
		"dados/agua_2023.csv":  "codigo_municipio;ano\n3550308;2023\n",
		"dados/relatorio.pdf":  "%PDF-1.4",
		"dados/leia-me.txt":    "ignored",
		"planilha_gestao.xlsx": "fake xlsx bytes",
	})

	dest := t.TempDir()
	extracted, err := Extract(src, dest, ExtractOptions{
		AllowedExts: []string{".csv", ".xlsx"},
	})
	require.NoError(t, err)
	require.Len(t, extracted, 2)
	for _, p := range extracted {
		_, err := os.Stat(p)
		require.NoError(t, err)
	}
}

func TestExtractRejectsZipSlip(t *testing.T) {
	src := writeTestZip(t, map[string]string{
		"../../etc/passwd": "root:x:0:0",
		"ok.csv":           "a;b\n1;2\n",
	})

	parent := t.TempDir()
	dest := filepath.Join(parent, "extracted")
	extracted, err := Extract(src, dest, ExtractOptions{})
	require.NoError(t, err)
	require.Len(t, extracted, 1)
	require.Equal(t, filepath.Join(dest, "ok.csv"), extracted[0])

	// nothing may have been written outside the destination
	_, err = os.Stat(filepath.Join(parent, "etc", "passwd"))
	require.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestExtractCorruptArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip at all"), 0o644))

	_, err := Extract(path, t.TempDir(), ExtractOptions{})
	require.Error(t, err)
}

func TestExtractOverwrite(t *testing.T) {
	src := writeTestZip(t, map[string]string{"dados.csv": "a;b\n"})
	dest := filepath.Join(t.TempDir(), "out")

	stale := filepath.Join(dest, "stale.csv")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := Extract(src, dest, ExtractOptions{Overwrite: true})
	require.NoError(t, err)
	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err))
}
