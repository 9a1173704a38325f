// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scan

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdflinks/internal/extract"
	"github.com/pdiddy/pdflinks/internal/fetch"
	"github.com/pdiddy/pdflinks/pkg/types"
)

type pageStub struct {
	body string
	err  error
}

func (p pageStub) FetchPage(context.Context, string) ([]byte, error) {
	return []byte(p.body), p.err
}

func TestScan(t *testing.T) {
	s := Scanner{
		Fetcher:   pageStub{body: `<a href="docs/file.pdf">x</a>`},
		Extractor: extract.Regex{},
	}
	got, err := s.Scan(context.Background(), "https://example.com/section/index.html")
	require.NoError(t, err)
	assert.Equal(t, types.LinkSet{"https://example.com/section/docs/file.pdf"}, got)
}

func TestScan_Sorted(t *testing.T) {
	s := Scanner{
		Fetcher:   pageStub{body: `<a href="b.pdf">b</a> <a href="a.pdf">a</a> <a href="b.pdf">b</a>`},
		Extractor: extract.Regex{},
	}
	got, err := s.Scan(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, types.LinkSet{"https://example.com/a.pdf", "https://example.com/b.pdf"}, got)
}

func TestScan_NoLinks(t *testing.T) {
	s := Scanner{
		Fetcher:   pageStub{body: `<a href="index.html">home</a>`},
		Extractor: extract.Regex{},
	}
	got, err := s.Scan(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScan_FetchError(t *testing.T) {
	want := &fetch.FetchError{URL: "https://nowhere.invalid/", Err: errors.New("no such host")}
	s := Scanner{Fetcher: pageStub{err: want}, Extractor: extract.Regex{}}

	_, err := s.Scan(context.Background(), "https://nowhere.invalid/")
	var fe *fetch.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "https://nowhere.invalid/", fe.URL)
}

func TestScan_HTTP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<a href="/abs/one.pdf">1</a>
<a href="rel/two.pdf?x=1">2</a>
<a href="//cdn.example.org/three.pdf">3</a>
</body></html>`)
	}))
	defer ts.Close()

	for _, name := range []string{extract.ParserRegex, extract.ParserHTML} {
		t.Run(name, func(t *testing.T) {
			e, err := extract.New(name)
			require.NoError(t, err)
			s := Scanner{Fetcher: fetch.NewWithClient(ts.Client(), types.HTTPConfig{}), Extractor: e}

			got, err := s.Scan(context.Background(), ts.URL+"/papers/index.html")
			require.NoError(t, err)
			assert.Equal(t, types.LinkSet{
				ts.URL + "/abs/one.pdf",
				ts.URL + "/papers/rel/two.pdf?x=1",
				"http://cdn.example.org/three.pdf",
			}, got)
		})
	}
}

func TestWriteLinkFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pdflinks.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale content\nfrom before\nmore\n"), 0o644))

	links := types.LinkSet{"https://e.com/a.pdf", "https://e.com/b.pdf"}
	require.NoError(t, WriteLinkFile(path, links))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://e.com/a.pdf\nhttps://e.com/b.pdf\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteLinkFile_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "pdflinks.txt")
	err := WriteLinkFile(path, types.LinkSet{"https://e.com/a.pdf"})
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}
