package domain

import "time"

type Quote struct {
	ID          string
	QuoteText   string
	AuthorName  string
	AuthorImage string
	Tags        []string // ordered, defaults to ["other"]
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DefaultTag is applied when a quote is created without any tags.
const DefaultTag = "other"

// CuratedTags is the fixed set of tags the API advertises for filtering.
var CuratedTags = []string{
	"love",
	"life",
	"inspiration",
	"humor",
	"philosophy",
	"god",
	"truth",
	"wisdom",
	"romance",
	"poetry",
	"death",
	"happiness",
	"hope",
	"faith",
	"religion",
	"life-lessons",
	"success",
	"motivational",
	"time",
	"knowledge",
	"spirituality",
	"science",
	"books",
	"other",
}
