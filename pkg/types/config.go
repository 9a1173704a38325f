package types

import "time"

// HTTPConfig holds HTTP settings shared by page and file fetches.
type HTTPConfig struct {
	// Timeout bounds one request, including redirects and body transfer.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// ConnectTimeout bounds TCP connection establishment.
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`

	// UserAgent is the User-Agent header sent with every request
	// (e.g. "pdflinks/1.0").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429 and 503 responses.
	// Zero disables retrying.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// StrictStatus turns non-2xx responses into fetch errors. When false
	// only transport failures are errors.
	StrictStatus bool `json:"strict_status" yaml:"strict_status"`

	// MaxPageBytes caps the size of a fetched page (default 32 MiB).
	MaxPageBytes int64 `json:"max_page_bytes" yaml:"max_page_bytes"`
}

// DownloadConfig holds settings for the download phase.
type DownloadConfig struct {
	// Enabled turns the download phase on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the destination directory, created if absent.
	Dir string `json:"dir" yaml:"dir"`

	// Concurrency is the number of simultaneous downloads (default 1).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// ManifestPath, when set, receives a YAML record of every outcome.
	ManifestPath string `json:"manifest" yaml:"manifest"`
}

// Config groups everything one run needs. It is built once at startup and
// not modified afterwards.
type Config struct {
	HTTP     HTTPConfig     `json:"http" yaml:"http"`
	Download DownloadConfig `json:"download" yaml:"download"`

	// OutputPath is where the resolved link set is written.
	OutputPath string `json:"output" yaml:"output"`

	// Parser selects the link extractor: "regex" or "html".
	Parser string `json:"parser" yaml:"parser"`

	// Quiet suppresses informational and success messages.
	Quiet bool `json:"quiet" yaml:"quiet"`

	// HistoryPath, when set, is a SQLite database recording each run.
	HistoryPath string `json:"history" yaml:"history"`
}
