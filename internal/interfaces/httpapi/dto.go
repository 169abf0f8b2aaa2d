package httpapi

import (
	"time"

	"medbulletin/internal/domain/entity"
)

type articleResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	Link          string    `json:"link"`
	PublishedDate time.Time `json:"published_date"`
	SourceName    string    `json:"source_name"`
	ImageURL      string    `json:"image_url,omitempty"`
	IsRead        bool      `json:"is_read"`
	IsSaved       bool      `json:"is_saved"`
}

type pageResponse struct {
	Items         []articleResponse `json:"items"`
	PriorityCount int               `json:"priority_count"`
	NextOffset    int               `json:"next_offset"`
}

type sourceResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	IsActive bool   `json:"is_active"`
}

type keywordResponse struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type createSourceRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

type createKeywordRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toArticleResponses(articles []*entity.Article) []articleResponse {
	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, articleResponse{
			ID:            a.ID,
			Title:         a.Title,
			Summary:       a.Summary,
			Link:          a.Link,
			PublishedDate: a.PublishedAt,
			SourceName:    a.SourceName,
			ImageURL:      a.ImageURL,
			IsRead:        a.IsRead,
			IsSaved:       a.IsSaved,
		})
	}
	return out
}

func toSourceResponse(s *entity.FeedSource) sourceResponse {
	return sourceResponse{ID: s.ID, Name: s.Name, URL: s.URL, IsActive: s.IsActive}
}

func toKeywordResponse(k *entity.Keyword) keywordResponse {
	return keywordResponse{ID: k.ID, Text: k.Text}
}
