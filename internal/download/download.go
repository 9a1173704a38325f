// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download saves resolved PDF links into a directory under
// collision-free names and accounts for every attempt.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/pdflinks/pkg/types"
)

// maxNameAttempts bounds the search for a free numbered name.
const maxNameAttempts = 10000

// FileFetcher streams the body of a URL into dst.
type FileFetcher interface {
	FetchFile(ctx context.Context, url string, dst io.Writer) (int64, error)
}

// Manager downloads a LinkSet into a directory. It holds no per-run
// state, so one Manager may serve several Download calls.
type Manager struct {
	fetcher     FileFetcher
	dir         string
	concurrency int
	onProgress  func(types.Progress)
}

// NewManager returns a Manager writing into dir with the given number of
// parallel downloads. A concurrency below 1 means sequential. onProgress
// may be nil.
func NewManager(fetcher FileFetcher, dir string, concurrency int, onProgress func(types.Progress)) *Manager {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Manager{
		fetcher:     fetcher,
		dir:         dir,
		concurrency: concurrency,
		onProgress:  onProgress,
	}
}

// Download fetches every link and returns one outcome per link, in input
// order. Individual failures never stop the batch. If ctx is cancelled,
// links not yet started are recorded as failed.
func (m *Manager) Download(ctx context.Context, links types.LinkSet) types.DownloadSummary {
	summary := types.DownloadSummary{
		Total:    len(links),
		Outcomes: make([]types.DownloadOutcome, len(links)),
	}
	report := m.reporter(len(links))

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		for i, link := range links {
			out := failed(link, "", fmt.Errorf("creating directory %s: %w", m.dir, err))
			summary.Outcomes[i] = out
			report(out)
		}
		summary.Failed = len(links)
		return summary
	}

	var g errgroup.Group
	g.SetLimit(m.concurrency)
	for i, link := range links {
		g.Go(func() error {
			out := m.downloadOne(ctx, link)
			summary.Outcomes[i] = out
			report(out)
			return nil
		})
	}
	g.Wait()

	for _, out := range summary.Outcomes {
		if out.Succeeded() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	return summary
}

// downloadOne claims a destination name, streams the link into it, and
// removes the file again on any failure.
func (m *Manager) downloadOne(ctx context.Context, link string) types.DownloadOutcome {
	if err := ctx.Err(); err != nil {
		return failed(link, "", err)
	}

	f, path, err := Claim(m.dir, FileName(link))
	if err != nil {
		return failed(link, "", err)
	}

	n, fetchErr := m.fetcher.FetchFile(ctx, link, f)
	closeErr := f.Close()
	if err := errors.Join(fetchErr, closeErr); err != nil {
		os.Remove(path)
		return failed(link, path, err)
	}

	return types.DownloadOutcome{
		URL:    link,
		Path:   path,
		Status: types.OutcomeSucceeded,
		Bytes:  n,
	}
}

// reporter returns a progress function for one run of total links. Calls
// are serialized so output lines never interleave.
func (m *Manager) reporter(total int) func(types.DownloadOutcome) {
	var (
		mu   sync.Mutex
		done int
	)
	return func(out types.DownloadOutcome) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if m.onProgress == nil {
			return
		}
		name := filepath.Base(out.Path)
		if out.Path == "" {
			name = out.URL
		}
		m.onProgress(types.Progress{
			Done:    done,
			Total:   total,
			Name:    name,
			Outcome: out,
		})
	}
}

// Claim creates an empty file in dir named name, or the first free
// numbered variant of it, and returns it open for writing. The exclusive
// create makes the choice atomic across goroutines and processes, and
// files left by earlier runs count as taken.
func Claim(dir, name string) (*os.File, string, error) {
	for n := 0; n < maxNameAttempts; n++ {
		path := filepath.Join(dir, NumberedName(name, n))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil, "", fmt.Errorf("no free name for %s in %s after %d attempts", name, dir, maxNameAttempts)
}

func failed(link, path string, err error) types.DownloadOutcome {
	return types.DownloadOutcome{
		URL:    link,
		Path:   path,
		Status: types.OutcomeFailed,
		Reason: err.Error(),
	}
}
