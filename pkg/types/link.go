// Package types defines the records passed between pdflinks stages:
// configuration, link sets, and download outcomes.
package types

import (
	"sort"
	"time"
)

// LinkSet is an ordered collection of absolute URLs with no duplicates,
// sorted ascending.
type LinkSet []string

// NewLinkSet dedupes and sorts urls. Empty strings are dropped.
func NewLinkSet(urls []string) LinkSet {
	seen := make(map[string]struct{}, len(urls))
	set := make(LinkSet, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		set = append(set, u)
	}
	sort.Strings(set)
	return set
}

// OutcomeStatus is the result of one download attempt.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
)

// DownloadOutcome records what happened to one link.
type DownloadOutcome struct {
	// URL is the absolute link that was fetched.
	URL string `json:"url" yaml:"url"`

	// Path is the destination file. On failure it is the path that was
	// claimed and then removed, or empty when no name could be claimed.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	Status OutcomeStatus `json:"status" yaml:"status"`

	// Reason describes the failure; empty on success.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Bytes is the number of bytes written on success.
	Bytes int64 `json:"bytes,omitempty" yaml:"bytes,omitempty"`
}

// Succeeded reports whether the download completed.
func (o DownloadOutcome) Succeeded() bool {
	return o.Status == OutcomeSucceeded
}

// DownloadSummary aggregates the outcomes of one download pass.
// Succeeded + Failed always equals Total.
type DownloadSummary struct {
	Total     int               `json:"total" yaml:"total"`
	Succeeded int               `json:"succeeded" yaml:"succeeded"`
	Failed    int               `json:"failed" yaml:"failed"`
	Outcomes  []DownloadOutcome `json:"outcomes" yaml:"outcomes"`
}

// HasFailures reports whether any download failed.
func (s DownloadSummary) HasFailures() bool {
	return s.Failed > 0
}

// Progress is reported after each download finishes.
type Progress struct {
	// Done is the number of finished downloads, including this one.
	Done int

	Total int

	// Name is the destination file name, or the URL when none was claimed.
	Name string

	Outcome DownloadOutcome
}

// RunRecord is one invocation as stored in the history ledger.
type RunRecord struct {
	ID        int64     `json:"id" yaml:"id"`
	PageURL   string    `json:"page_url" yaml:"page_url"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Links is the number of resolved PDF links found on the page.
	Links int `json:"links" yaml:"links"`

	// Summary is the zero value when downloading was not requested.
	Summary DownloadSummary `json:"summary" yaml:"summary"`
}
