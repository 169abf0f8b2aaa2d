package rss

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func TestSummarize(t *testing.T) {
	long := strings.Repeat("ç", 300)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain text", "Yeni aşı çalışması", "Yeni aşı çalışması"},
		{"strips tags", "<p>Kalp <b>sağlığı</b></p>", "Kalp sağlığı"},
		{"collapses whitespace", "<div>a\n\n   b</div>", "a b"},
		{"drops scripts", "<script>alert(1)</script>text", "text"},
		{"decodes entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"truncates runes", long, strings.Repeat("ç", 250) + "..."},
		{"exactly at limit", strings.Repeat("a", 250), strings.Repeat("a", 250)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"markup removed", "<p>Kalp <b>sağlığı</b></p>", "Kalp sağlığı"},
		{"script dropped", "<div>Metin<script>alert(1)</script></div>", "Metin"},
		{"whitespace collapsed", "  a\n\t b  ", "a b"},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripTags(tt.html); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPublishedAt(t *testing.T) {
	fetchedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	parsed := time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		item     *gofeed.Item
		expected time.Time
	}{
		{"parsed by gofeed", &gofeed.Item{PublishedParsed: &parsed}, parsed},
		{"lenient fallback", &gofeed.Item{Published: "2024-04-29 10:30:00"}, time.Date(2024, 4, 29, 10, 30, 0, 0, time.UTC)},
		{"garbage", &gofeed.Item{Published: "not a date"}, fetchedAt},
		{"missing", &gofeed.Item{}, fetchedAt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := publishedAt(tt.item, fetchedAt); !got.Equal(tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
