package sinisa

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// stagingID keys a document's staging subdirectory on its URL. Distinct
// documents publish under identical filenames across modules, so the
// basename alone cannot name a staging path.
func stagingID(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:6])
}

// downloadDocument fetches a document into its own subdirectory of the
// raw staging directory and returns the local path. An already-staged
// file is reused unless the scraper is in overwrite mode. The file
// client retries a failed download once before it is abandoned.
func (s *Scraper) downloadDocument(ctx context.Context, doc Document, rawDir string) (string, error) {
	name := urlFilename(doc.URL)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("document URL %s has no filename", doc.URL)
	}
	docDir := filepath.Join(rawDir, stagingID(doc.URL))
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(docDir, name)

	if !s.opts.Overwrite {
		if _, err := os.Stat(dest); err == nil {
			return dest, nil
		}
	}

	res, err := s.files.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		SetOutput(dest).
		Get(doc.URL)
	if err != nil {
		return "", err
	}
	if !res.IsSuccess() {
		os.Remove(dest)
		return "", fmt.Errorf("GET %s: status %d", doc.URL, res.StatusCode())
	}
	return dest, nil
}
