package medium

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"github.com/madelynarsenault/portfolio/internal/writing"
)

// wordsPerMinute matches Medium's own reading time estimate.
const wordsPerMinute = 265

// FetchFeed reads the user's posts from the RSS feed. The feed carries fewer
// fields than the JSON endpoint, so reading time, subtitle and preview image
// are recovered from the post HTML.
func (c *Client) FetchFeed(ctx context.Context, username string) (*Profile, error) {
	username = trimAt(username)
	feedURL := fmt.Sprintf("%s/feed/@%s", c.baseURL, username)
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/rss+xml, application/xml").
		Get(feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed from %s: %w", feedURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), feedURL)
	}
	return DecodeFeed(resp.Body(), username)
}

// DecodeFeed parses an RSS body into a profile for username.
func DecodeFeed(body []byte, username string) (*Profile, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	p := &Profile{
		User:  writing.Author{Username: username, Name: feedAuthor(feed)},
		Posts: make([]Post, 0, len(feed.Items)),
	}
	for _, item := range feed.Items {
		var created time.Time
		if item.PublishedParsed != nil {
			created = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			created = *item.UpdatedParsed
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}
		doc := inspectHTML(content)

		p.Posts = append(p.Posts, Post{
			ID:             lastSegment(item.GUID),
			UniqueSlug:     lastSegment(item.Link),
			Title:          item.Title,
			CreatedAt:      created.UTC(),
			Subtitle:       doc.subtitle,
			ReadingTime:    readingTime(doc.words, doc.images),
			PreviewImageID: doc.imageID,
		})
	}
	return p, nil
}

func feedAuthor(feed *gofeed.Feed) string {
	for _, item := range feed.Items {
		for _, a := range item.Authors {
			if a != nil && a.Name != "" {
				return a.Name
			}
		}
	}
	name := strings.TrimPrefix(feed.Title, "Stories by ")
	return strings.TrimSuffix(name, " on Medium")
}

// lastSegment returns the final path element of a URL, ignoring any query.
func lastSegment(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Path == "" {
		return ""
	}
	seg := path.Base(strings.TrimRight(u.Path, "/"))
	if seg == "/" || seg == "." {
		return ""
	}
	return seg
}

// readingTime is words at 265 wpm plus 12s for the first image, one second
// less for each following image, floored at 3s.
func readingTime(words, images int) float64 {
	seconds := float64(words) / wordsPerMinute * 60
	for i := 0; i < images; i++ {
		s := 12 - i
		if s < 3 {
			s = 3
		}
		seconds += float64(s)
	}
	return seconds / 60
}

type postHTML struct {
	words    int
	images   int
	subtitle string
	imageID  string
}

func inspectHTML(body string) postHTML {
	var out postHTML
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return out
	}

	var firstH4, firstP string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			out.words += len(strings.Fields(n.Data))
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "img":
				// Only Medium-hosted images; the feed also embeds a tracking pixel.
				if id := mediumImageID(attr(n, "src")); id != "" {
					out.images++
					if out.imageID == "" {
						out.imageID = id
					}
				}
			case "h4":
				if firstH4 == "" {
					firstH4 = textOf(n)
				}
			case "p":
				if firstP == "" {
					firstP = textOf(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	out.subtitle = firstH4
	if out.subtitle == "" {
		out.subtitle = firstP
	}
	return out
}

func mediumImageID(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return ""
	}
	if u.Host != "cdn-images-1.medium.com" && u.Host != "miro.medium.com" {
		return ""
	}
	return lastSegment(src)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
