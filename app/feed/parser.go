package feed

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Feed, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	feed := &Feed{
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
		Language:    parsed.Language,
	}

	if parsed.Image != nil {
		feed.ImageURL = parsed.Image.URL
	}

	if parsed.ITunesExt != nil {
		feed.ITunesImageURL = parsed.ITunesExt.Image
		feed.Author = parsed.ITunesExt.Author
	}
	if feed.Author == "" && len(parsed.Authors) > 0 && parsed.Authors[0] != nil {
		feed.Author = parsed.Authors[0].Name
	}

	feed.Items = make([]Item, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		feed.Items = append(feed.Items, p.normalizeItem(item))
	}

	return feed, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		Title:       item.Title,
		Link:        item.Link,
		Description: item.Description,
		Content:     item.Content,
	}

	if item.PublishedParsed != nil {
		normalized.PublishedAt = item.PublishedParsed
	}

	// Extract first enclosure if available (RSS 2.0 spec allows only one per item)
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		enclosure := item.Enclosures[0]
		normalized.AudioURL = enclosure.URL
		normalized.AudioType = enclosure.Type

		if enclosure.Length != "" {
			if length, err := strconv.ParseInt(enclosure.Length, 10, 64); err == nil {
				normalized.AudioLength = length
			}
		}
	}

	if item.ITunesExt != nil {
		normalized.Duration = item.ITunesExt.Duration
		normalized.ImageURL = item.ITunesExt.Image
		normalized.Explicit = item.ITunesExt.Explicit
		normalized.EpisodeType = item.ITunesExt.EpisodeType
		normalized.Season = item.ITunesExt.Season
		normalized.EpisodeNumber = item.ITunesExt.Episode
	}

	if normalized.ImageURL == "" && item.Image != nil {
		normalized.ImageURL = item.Image.URL
	}

	return normalized
}
