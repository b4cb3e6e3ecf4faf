// Package status reads the AWS service health RSS feeds.
package status

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Event is one entry of a service health feed
type Event struct {
	Title     string
	Published string
}

// Feed is the trimmed-down result of a fetch
type Feed struct {
	Title  string
	URL    string
	Events []Event
}

// Fetcher downloads and parses health feeds below a base URL
type Fetcher struct {
	baseURL string
	parser  *gofeed.Parser
}

// NewFetcher creates a fetcher for baseURL. A nil client uses a 30s-timeout default.
func NewFetcher(baseURL string, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "ec2bot"

	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		parser:  parser,
	}
}

// FeedURL returns the feed location for a service, optionally scoped to a region
func (f *Fetcher) FeedURL(service, region string) string {
	if region == "" {
		return fmt.Sprintf("%s/%s.rss", f.baseURL, service)
	}
	return fmt.Sprintf("%s/%s-%s.rss", f.baseURL, service, region)
}

// Latest fetches the feed and returns at most n events in feed order
func (f *Fetcher) Latest(ctx context.Context, service, region string, n int) (*Feed, error) {
	url := f.FeedURL(service, region)

	parsed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	feed := &Feed{
		Title: parsed.Title,
		URL:   url,
	}
	if feed.Title == "" {
		feed.Title = service
	}
	for _, item := range parsed.Items {
		if n > 0 && len(feed.Events) >= n {
			break
		}
		feed.Events = append(feed.Events, Event{
			Title:     strings.TrimSpace(item.Title),
			Published: published(item),
		})
	}
	return feed, nil
}

func published(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	return item.Published
}

// Format renders the feed as a chat reply
func (feed *Feed) Format() string {
	if len(feed.Events) == 0 {
		return fmt.Sprintf("%s: no recent events.", feed.Title)
	}

	var b strings.Builder
	b.WriteString(feed.Title)
	b.WriteString(":")
	for _, e := range feed.Events {
		b.WriteString("\n- ")
		if e.Published != "" {
			b.WriteString(e.Published)
			b.WriteString(" ")
		}
		b.WriteString(e.Title)
	}
	return b.String()
}
