package rss

import (
	"regexp"
	"strings"
	"time"

	"medbulletin/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

const (
	// MaxEntriesPerSource bounds the work done per source and cycle.
	MaxEntriesPerSource = 10

	maxSummaryRunes = 250
	ellipsis        = "..."
)

var (
	srcPattern = regexp.MustCompile(`src="(.*?)"`)
	tagPattern = regexp.MustCompile(`<[^>]+>`)
)

func normalizeFeed(feed *gofeed.Feed, fetchedAt time.Time, logger log.Logger) *entity.Feed {
	out := &entity.Feed{Title: strings.TrimSpace(feed.Title)}

	items := feed.Items
	if len(items) > MaxEntriesPerSource {
		items = items[:MaxEntriesPerSource]
	}

	out.Entries = make([]*entity.FeedEntry, 0, len(items))
	for _, item := range items {
		entry, ok := normalizeItem(item, fetchedAt)
		if !ok {
			level.Debug(logger).Log("msg", "skipping malformed entry", "feed", out.Title)
			continue
		}
		out.Entries = append(out.Entries, entry)
	}

	return out
}

func normalizeItem(item *gofeed.Item, fetchedAt time.Time) (*entity.FeedEntry, bool) {
	if item == nil {
		return nil, false
	}
	link := strings.TrimSpace(item.Link)
	if link == "" {
		return nil, false
	}

	raw := item.Description
	if raw == "" {
		raw = item.Content
	}

	published := publishedAt(item, fetchedAt)

	return entity.NewFeedEntry(
		item.Title,
		link,
		Summarize(raw),
		imageURL(item),
		published,
	), true
}

// publishedAt prefers gofeed's parsed date, then a lenient parse of the raw
// string, then the fetch time.
func publishedAt(item *gofeed.Item, fetchedAt time.Time) time.Time {
	if item.PublishedParsed != nil && !item.PublishedParsed.IsZero() {
		return *item.PublishedParsed
	}
	if raw := strings.TrimSpace(item.Published); raw != "" {
		if t, err := dateparse.ParseAny(raw); err == nil && !t.IsZero() {
			return t
		}
	}
	return fetchedAt
}

// Summarize strips markup from an entry summary and truncates it to 250
// characters, appending an ellipsis when shortened.
func Summarize(html string) string {
	return truncate(stripTags(html), maxSummaryRunes)
}

func stripTags(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(tagPattern.ReplaceAllString(html, " ")), " ")
	}
	doc.Find("script, style").Remove()

	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + ellipsis
}

// imageURL resolves an entry image: media:content, then media:thumbnail,
// then the first src attribute in the raw summary markup.
func imageURL(item *gofeed.Item) string {
	if u := mediaURL(item.Extensions, "content"); u != "" {
		return u
	}
	if u := mediaURL(item.Extensions, "thumbnail"); u != "" {
		return u
	}

	for _, raw := range []string{item.Description, item.Content} {
		if m := srcPattern.FindStringSubmatch(raw); m != nil && m[1] != "" {
			return m[1]
		}
	}
	return ""
}

func mediaURL(exts ext.Extensions, name string) string {
	media, ok := exts["media"]
	if !ok {
		return ""
	}

	for _, e := range media[name] {
		if u := strings.TrimSpace(e.Attrs["url"]); u != "" {
			return u
		}
	}

	// media:group wraps alternative renditions
	for _, group := range media["group"] {
		for _, e := range group.Children[name] {
			if u := strings.TrimSpace(e.Attrs["url"]); u != "" {
				return u
			}
		}
	}
	return ""
}
