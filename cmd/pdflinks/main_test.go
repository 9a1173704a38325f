// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakePDFContent = "%PDF-1.4 fake"

// newSite serves a small site: /papers/index.html links to three PDFs, one
// of which is missing; /empty.html has no PDF links.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/papers/index.html":
			fmt.Fprint(w, `<html><body>
<a href="b.pdf">B</a>
<a href="a.pdf">A</a>
<a href="/files/report.pdf?rev=2">Report</a>
<a href="a.pdf">A again</a>
<a href="gone.pdf">Gone</a>
</body></html>`)
		case "/papers/a.pdf", "/papers/b.pdf", "/files/report.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, fakePDFContent)
		case "/empty.html":
			fmt.Fprint(w, `<a href="index.html">home</a>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_ListsLinks(t *testing.T) {
	ts := newSite(t)
	output := filepath.Join(t.TempDir(), "links.txt")

	code, stdout, stderr := runCLI(t, ts.URL+"/papers/index.html", "-o", output)
	require.Equal(t, 0, code, stderr)

	want := []string{
		ts.URL + "/files/report.pdf?rev=2",
		ts.URL + "/papers/a.pdf",
		ts.URL + "/papers/b.pdf",
		ts.URL + "/papers/gone.pdf",
	}
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(want, "\n")+"\n", string(data))
	assert.Equal(t, strings.Join(want, "\n")+"\n", stdout)
	assert.Contains(t, stderr, "found 4 PDF link(s)")
}

func TestRun_Download(t *testing.T) {
	ts := newSite(t)
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "pdfs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.pdf"), []byte("old"), 0o644))
	manifest := filepath.Join(tmp, "manifest.yaml")

	code, _, stderr := runCLI(t, ts.URL+"/papers/index.html",
		"-d", "-D", dir, "-o", filepath.Join(tmp, "links.txt"),
		"--strict-status", "--concurrency", "2", "--manifest", manifest)
	require.Equal(t, 0, code, "per-file failures do not fail the run: %s", stderr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf", "report.pdf", "report_1.pdf"}, names)

	data, err := os.ReadFile(filepath.Join(dir, "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	assert.Contains(t, stderr, "gone.pdf")
	assert.Contains(t, stderr, "downloads finished with failures")
	assert.FileExists(t, manifest)
}

func TestRun_NoLinks(t *testing.T) {
	ts := newSite(t)
	output := filepath.Join(t.TempDir(), "links.txt")

	code, stdout, stderr := runCLI(t, ts.URL+"/empty.html", "-o", output)
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no PDF links found")
	assert.NoFileExists(t, output)
}

func TestRun_PageFetchFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()
	output := filepath.Join(t.TempDir(), "links.txt")

	code, _, stderr := runCLI(t, addr+"/index.html", "-o", output)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, addr+"/index.html")
	assert.NoFileExists(t, output)
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing URL", nil, "missing URL"},
		{"two URLs", []string{"https://a.example.com", "https://b.example.com"}, "expected one URL, got 2"},
		{"unknown flag", []string{"--frobnicate", "https://a.example.com"}, "unknown flag"},
		{"missing flag value", []string{"https://a.example.com", "-o"}, "flag needs an argument"},
		{"unknown parser", []string{"--parser", "dom", "https://a.example.com"}, "unknown parser"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}

func TestRun_Quiet(t *testing.T) {
	ts := newSite(t)
	output := filepath.Join(t.TempDir(), "links.txt")

	code, stdout, stderr := runCLI(t, "-q", ts.URL+"/papers/index.html", "-o", output)
	require.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.NotContains(t, stderr, "found")
	assert.FileExists(t, output)

	code, _, stderr = runCLI(t, "-q", ts.URL+"/empty.html", "-o", output)
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "no PDF links found", "warnings survive quiet mode")
}

func TestRun_MissingSchemeWarns(t *testing.T) {
	ts := newSite(t)
	hostPath := strings.TrimPrefix(ts.URL, "http://") + "/papers/index.html"

	// The test server speaks plain HTTP, so the defaulted https fetch fails.
	code, _, stderr := runCLI(t, hostPath, "-o", filepath.Join(t.TempDir(), "links.txt"), "--timeout", "2s")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "using https")
	assert.Contains(t, stderr, "https://"+hostPath)
}

func TestRun_ConfigFile(t *testing.T) {
	ts := newSite(t)
	tmp := t.TempDir()
	output := filepath.Join(tmp, "from-config.txt")
	cfgPath := filepath.Join(tmp, "pdflinks.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("output: %s\nparser: html\n", output)), 0o644))

	code, _, stderr := runCLI(t, "--config", cfgPath, ts.URL+"/papers/index.html")
	require.Equal(t, 0, code, stderr)
	assert.FileExists(t, output)
}

func TestRun_ConfigFileMissing(t *testing.T) {
	code, _, stderr := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "https://a.example.com")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "reading config")
}

func TestRun_History(t *testing.T) {
	ts := newSite(t)
	tmp := t.TempDir()
	db := filepath.Join(tmp, "history.db")

	code, _, stderr := runCLI(t, ts.URL+"/papers/index.html", "-d",
		"-D", filepath.Join(tmp, "pdfs"), "-o", filepath.Join(tmp, "links.txt"),
		"--strict-status", "--history-db", db)
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := runCLI(t, "history", "--history-db", db, "--failures")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, ts.URL+"/papers/index.html")
	assert.Contains(t, stdout, ts.URL+"/papers/gone.pdf")
}

func TestRun_HistoryNotConfigured(t *testing.T) {
	code, _, stderr := runCLI(t, "history")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no history database configured")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "pdflinks dev\n", stdout)
}
