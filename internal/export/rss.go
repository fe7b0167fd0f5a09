package export

import (
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"movielog-server/internal/model"
)

const noReview = "No review available"

// FeedInfo describes the channel of the viewings feed.
type FeedInfo struct {
	Title       string
	Description string
	BaseURL     string
}

// RSS renders viewings as an RSS 2.0 document, one item per viewing.
func RSS(info FeedInfo, viewings []model.Viewing, now time.Time) (string, error) {
	base := strings.TrimRight(info.BaseURL, "/")
	if base == "" {
		base = "http://localhost:3000"
	}
	feed := &feeds.Feed{
		Title:       info.Title,
		Description: info.Description,
		Link:        &feeds.Link{Href: base},
		Created:     now,
		Items:       make([]*feeds.Item, 0, len(viewings)),
	}
	for _, v := range viewings {
		desc := v.MovieReview
		if desc == "" {
			desc = noReview
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       v.DisplayTitle(),
			Description: desc,
			Link:        &feeds.Link{Href: v.MovieURL},
			Id:          v.MovieURL,
			Created:     v.ViewingDate.Time(),
		})
	}
	return feed.ToRss()
}
