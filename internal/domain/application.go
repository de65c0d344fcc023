package domain

import (
	"context"
	"time"
)

// Source records how a row entered the tracker.
type Source string

const (
	SourceManual Source = "manual"
	SourceEmail  Source = "email"
)

// Application is one tracked internship candidacy.
type Application struct {
	Code            string
	Company         string
	Topic           string
	Domain          string
	Status          Status
	ApplicationDate *time.Time
	InternshipStart *time.Time
	LastEmail       *time.Time
	Source          Source

	// Extra holds spreadsheet columns this program does not know about.
	// They survive a load-modify-save cycle untouched.
	Extra map[string]string
}

type ApplicationRepository interface {
	Load(context.Context) ([]Application, error)
	Save(context.Context, []Application) error
}

// EmailRecord is a normalized inbound email. It is consumed by one
// reconciliation pass and never persisted.
type EmailRecord struct {
	Sender   string
	Subject  string
	Body     string
	Received time.Time
}

type MailFetcher interface {
	Fetch(ctx context.Context, since time.Time, limit int) ([]EmailRecord, error)
}

// SyncSummary is the outcome report of one reconciliation pass.
type SyncSummary struct {
	Scanned int `json:"scanned"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}
