package entity

type FeedSource struct {
	ID       int64
	Name     string
	URL      string
	IsActive bool
}

func NewFeedSource(name, url string) *FeedSource {
	return &FeedSource{
		Name:     name,
		URL:      url,
		IsActive: true,
	}
}
