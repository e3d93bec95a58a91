package model

import (
	"context"
	"time"
)

// Posting is one job listing as received from a listing source.
// Only Title and Company are attempted-populated by every source; URL and
// Description may legitimately be empty.
type Posting struct {
	Title       string
	Company     string
	Location    string     // free-text location string
	URL         string     // direct listing link, may be empty
	Description string     // full description text, may be empty or very long
	Site        string     // source site name (e.g. "linkedin", "indeed")
	PostedAt    *time.Time // nullable (not all sources provide this)
	Label       Label      // relevance annotation, set after classification
}

// Label is the relevance classification attached to a posting. The pipeline
// treats it as an opaque annotation for the report; it never interprets it.
type Label string

const (
	LabelRelevant    Label = "relevant"
	LabelNotRelevant Label = "not-relevant"
	LabelUncertain   Label = "uncertain"

	// LabelNone marks a posting that was never classified (classifier
	// disabled or call failed).
	LabelNone Label = ""
)

// PostingSource supplies a batch of raw postings at run start (e.g. the CSV
// file written by an external scraper).
type PostingSource interface {
	FetchPostings(ctx context.Context) ([]Posting, error)
}

// Classifier labels a posting against the operator's relevance query.
type Classifier interface {
	Classify(ctx context.Context, p Posting) (Label, error)
}

// Notifier sends notifications for newly discovered postings.
type Notifier interface {
	Notify(postings []Posting) error
}

// PostingFilter decides whether a posting passes the keyword prefilter.
type PostingFilter interface {
	Match(p Posting) bool
}
