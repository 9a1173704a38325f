// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan runs the page-to-links pipeline: fetch one page, extract
// candidate PDF hrefs, and resolve them into a LinkSet.
package scan

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/pdflinks/internal/extract"
	"github.com/pdiddy/pdflinks/pkg/types"
)

// PageFetcher returns the content of a page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

// Scanner ties a fetcher to an extractor.
type Scanner struct {
	Fetcher   PageFetcher
	Extractor extract.Extractor
}

// Scan fetches base and returns the resolved PDF links on it. A fetch
// error is returned unchanged; no links is an empty set, not an error.
func (s Scanner) Scan(ctx context.Context, base string) (types.LinkSet, error) {
	page, err := s.Fetcher.FetchPage(ctx, base)
	if err != nil {
		return nil, err
	}
	return extract.BuildLinkSet(base, s.Extractor.Extract(page)), nil
}

// WriteLinkFile writes one URL per line to path, replacing any existing
// file. The content goes to a temporary file in the same directory first
// so a failed write never leaves a partial list behind.
func WriteLinkFile(path string, links types.LinkSet) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pdflinks-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, link := range links {
		w.WriteString(link)
		w.WriteByte('\n')
	}
	flushErr := w.Flush()
	closeErr := tmp.Close()
	if flushErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, flushErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
