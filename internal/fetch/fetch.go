// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves pages and files over HTTP with the timeout,
// redirect, and User-Agent policy used by every pdflinks request.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/pdiddy/pdflinks/internal/httputil"
	"github.com/pdiddy/pdflinks/pkg/types"
)

const (
	DefaultTimeout        = 60 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultMaxPageBytes   = 32 << 20
)

// FetchError reports a failed page or file fetch.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusError is the cause of a FetchError when strict status checking is
// on and the server answered outside 2xx.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return "HTTP " + e.Status
}

// Fetcher performs GET requests under one HTTP policy. It is safe for
// concurrent use.
type Fetcher struct {
	client *http.Client
	cfg    types.HTTPConfig
}

// New builds a Fetcher from cfg, filling zero fields with defaults. The
// client follows redirects with the net/http default limit.
func New(cfg types.HTTPConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.MaxPageBytes <= 0 {
		cfg.MaxPageBytes = DefaultMaxPageBytes
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = cfg.ConnectTimeout

	return &Fetcher{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		cfg: cfg,
	}
}

// NewWithClient builds a Fetcher around an existing client. Timeouts are
// taken from the client; cfg supplies the remaining policy.
func NewWithClient(client *http.Client, cfg types.HTTPConfig) *Fetcher {
	if cfg.MaxPageBytes <= 0 {
		cfg.MaxPageBytes = DefaultMaxPageBytes
	}
	return &Fetcher{client: client, cfg: cfg}
}

// FetchPage returns the body of rawURL. Bodies larger than the configured
// maximum are truncated.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := f.get(ctx, rawURL, "text/html,application/xhtml+xml,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxPageBytes))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("reading body: %w", err)}
	}
	return body, nil
}

// FetchFile streams the body of rawURL into dst and returns the number of
// bytes written. An error after some bytes were written still returns a
// FetchError; the caller owns cleanup of dst.
func (f *Fetcher) FetchFile(ctx context.Context, rawURL string, dst io.Writer) (int64, error) {
	resp, err := f.get(ctx, rawURL, "application/pdf,*/*;q=0.8")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return n, &FetchError{URL: rawURL, Err: fmt.Errorf("writing download: %w", err)}
	}
	return n, nil
}

// get sends the request and applies the status policy. The returned body
// must be closed by the caller.
func (f *Fetcher) get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	req.Header.Set("Accept", accept)

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.cfg.MaxRetries)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	if f.cfg.StrictStatus && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		resp.Body.Close()
		return nil, &FetchError{URL: rawURL, Err: &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}}
	}
	return resp, nil
}
