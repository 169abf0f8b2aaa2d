package entity

import (
	"strings"
	"time"
)

// Article is a stored bulletin item. Link is the natural key: at most one
// Article exists per link.
type Article struct {
	ID          int64
	Title       string
	Summary     string
	Link        string
	PublishedAt time.Time
	SourceName  string
	ImageURL    string
	IsRead      bool
	IsSaved     bool
}

func NewArticleFromEntry(entry *FeedEntry, sourceName string) *Article {
	return &Article{
		Title:       entry.Title,
		Summary:     entry.Summary,
		Link:        entry.Link,
		PublishedAt: entry.Published,
		SourceName:  sourceName,
		ImageURL:    entry.ImageURL,
	}
}

// IsEvictable reports whether the article falls outside the retention window.
// Saved articles are never evictable.
func (a *Article) IsEvictable(cutoff time.Time) bool {
	return !a.IsSaved && a.PublishedAt.Before(cutoff)
}

// MatchesAny reports whether any keyword occurs in the title or summary,
// ignoring case. Keywords are expected in lower case.
func (a *Article) MatchesAny(keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	text := strings.ToLower(a.Title + " " + a.Summary)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

type ArticleStats struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
	Saved  int `json:"saved"`
}

// Page is one batch of articles for display. When relevance filtering is on,
// the first PriorityCount items are the keyword matches.
type Page struct {
	Items         []*Article
	PriorityCount int
	NextOffset    int
}
