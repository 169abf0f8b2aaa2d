package entity

import (
	"testing"
	"time"
)

func TestNewArticleFromEntry(t *testing.T) {
	published := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	entry := NewFeedEntry("Title", "https://example.tld/1", "Summary", "https://example.tld/1.png", published)

	article := NewArticleFromEntry(entry, "BBC Health")

	if article.SourceName != "BBC Health" {
		t.Errorf("expected source 'BBC Health', got '%s'", article.SourceName)
	}
	if article.Link != entry.Link || article.Title != entry.Title || article.Summary != entry.Summary {
		t.Errorf("entry fields not copied: %+v", article)
	}
	if !article.PublishedAt.Equal(published) {
		t.Errorf("expected published %v, got %v", published, article.PublishedAt)
	}
	if article.IsRead || article.IsSaved {
		t.Error("new article must be unread and unsaved")
	}
}

func TestArticle_IsEvictable(t *testing.T) {
	cutoff := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		published time.Time
		saved     bool
		expected  bool
	}{
		{"old unsaved", cutoff.Add(-72 * time.Hour), false, true},
		{"old saved", cutoff.Add(-30 * 24 * time.Hour), true, false},
		{"fresh unsaved", cutoff.Add(time.Hour), false, false},
		{"exactly at cutoff", cutoff, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Article{PublishedAt: tt.published, IsSaved: tt.saved}
			if got := a.IsEvictable(cutoff); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestArticle_MatchesAny(t *testing.T) {
	a := &Article{Title: "Kalp Krizi Riski", Summary: "Yeni bir KOLESTEROL çalışması"}

	tests := []struct {
		name     string
		keywords []string
		expected bool
	}{
		{"title match", []string{"kalp"}, true},
		{"summary match ignores case", []string{"kolesterol"}, true},
		{"no match", []string{"diş"}, false},
		{"no keywords", nil, false},
		{"blank keyword ignored", []string{""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.MatchesAny(tt.keywords); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
