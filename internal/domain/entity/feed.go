package entity

import "time"

// FeedEntry is a single syndication entry after normalisation, before it is
// deduplicated or stored.
type FeedEntry struct {
	Title     string
	Link      string
	Summary   string
	ImageURL  string
	Published time.Time
}

func NewFeedEntry(title, link, summary, imageURL string, published time.Time) *FeedEntry {
	return &FeedEntry{
		Title:     title,
		Link:      link,
		Summary:   summary,
		ImageURL:  imageURL,
		Published: published,
	}
}

// Feed is the parsed result of one fetch.
type Feed struct {
	Title   string
	Entries []*FeedEntry
}

// IsEmpty reports whether the payload looked like no feed at all: no entries
// and no title.
func (f *Feed) IsEmpty() bool {
	return f == nil || (len(f.Entries) == 0 && f.Title == "")
}
