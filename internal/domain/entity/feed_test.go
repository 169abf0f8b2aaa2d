package entity

import (
	"testing"
	"time"
)

func TestNewFeedEntry(t *testing.T) {
	now := time.Now()
	entry := NewFeedEntry("Test Title", "https://example.tld", "Summary", "https://example.tld/a.png", now)

	if entry.Title != "Test Title" {
		t.Errorf("expected title 'Test Title', got '%s'", entry.Title)
	}
	if entry.Link != "https://example.tld" {
		t.Errorf("expected link 'https://example.tld', got '%s'", entry.Link)
	}
	if entry.ImageURL != "https://example.tld/a.png" {
		t.Errorf("expected image url, got '%s'", entry.ImageURL)
	}
	if !entry.Published.Equal(now) {
		t.Errorf("expected published %v, got %v", now, entry.Published)
	}
}

func TestFeed_IsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		feed     *Feed
		expected bool
	}{
		{"nil feed", nil, true},
		{"no title no entries", &Feed{}, true},
		{"title only", &Feed{Title: "BBC Health"}, false},
		{"entries only", &Feed{Entries: []*FeedEntry{{Link: "https://example.tld/1"}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.feed.IsEmpty(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
