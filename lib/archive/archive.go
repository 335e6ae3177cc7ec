// Package archive unpacks downloaded zip containers into a sandboxed
// directory. Entries that would escape the destination are dropped.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type ExtractOptions struct {
	// AllowedExts filters entries by lowercase extension (".csv", ".xlsx"...).
	// An empty list admits every file.
	AllowedExts []string
	// Overwrite recreates the destination directory if it already exists.
	Overwrite bool
}

// Extract unpacks src into dest and returns the paths of the files that
// passed the extension filter. Directory entries are skipped. An entry
// whose resolved path is not a descendant of dest is silently dropped:
// that is a security boundary against zip-slip archives, not a logging
// concern. A corrupt container is the only error condition.
func Extract(src, dest string, opts ExtractOptions) ([]string, error) {
	if opts.Overwrite {
		if err := os.RemoveAll(dest); err != nil {
			return nil, fmt.Errorf("reset destination: %w", err)
		}
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}

	reader, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", filepath.Base(src), err)
	}
	defer reader.Close()

	root := filepath.Clean(dest)
	var extracted []string
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if !extensionAllowed(entry.Name, opts.AllowedExts) {
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(entry.Name))
		if !within(root, target) {
			continue
		}

		if err := writeEntry(entry, target); err != nil {
			slog.Warn("failed to extract archive entry",
				"archive", filepath.Base(src),
				"entry", entry.Name,
				"err", err,
			)
			continue
		}
		extracted = append(extracted, target)
	}
	return extracted, nil
}

func extensionAllowed(name string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// within reports whether target is a strict descendant of root. Both
// paths must already be cleaned.
func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator)) && !filepath.IsAbs(rel)
}

func writeEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
