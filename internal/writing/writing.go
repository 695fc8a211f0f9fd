// Package writing turns a Medium query result into the entries shown in the
// writing section of the home page.
package writing

import (
	"fmt"
	"math"
)

const (
	MediumCDN = "https://cdn-images-1.medium.com/max/400"
	MediumURL = "https://medium.com"

	// DefaultLimit is how many post cards the writing section shows.
	DefaultLimit = 7
)

// Author identifies the Medium user whose posts are listed.
type Author struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// RawPost is a post as handed over by the content layer. CreatedAt is
// already formatted for display.
type RawPost struct {
	ID             string  `json:"id"`
	UniqueSlug     string  `json:"uniqueSlug"`
	Title          string  `json:"title"`
	CreatedAt      string  `json:"createdAt"`
	Subtitle       string  `json:"subtitle"`
	ReadingTime    float64 `json:"readingTime"`
	PreviewImageID string  `json:"previewImageId,omitempty"`
}

// Query is the content layer result: the newest posts, capped at the
// display limit, plus how many exist in total.
type Query struct {
	TotalCount int       `json:"totalCount"`
	Posts      []RawPost `json:"posts"`
	Author     Author    `json:"author"`
}

type PostSummary struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	DisplayDate        string `json:"date"`
	ReadingTimeMinutes int    `json:"time"`
	ExcerptText        string `json:"text"`
	CoverImageURL      string `json:"image,omitempty"`
	TargetURL          string `json:"url"`
}

// Subtitle is the badge text of a post card, e.g. "Mar 2020 - 4 min".
func (p PostSummary) Subtitle() string {
	return fmt.Sprintf("%s - %d min", p.DisplayDate, p.ReadingTimeMinutes)
}

type OverflowSummary struct {
	AuthorUsername string `json:"username"`
	AuthorName     string `json:"name"`
	RemainingCount int    `json:"number"`
}

// ProfileURL links to the author's full list of posts.
func (o OverflowSummary) ProfileURL() string {
	return fmt.Sprintf("%s/%s/", MediumURL, o.AuthorUsername)
}

type Kind string

const (
	KindPost Kind = "post"
	KindMore Kind = "more"
)

// Entry is one card of the writing section. Exactly one of Post and More is
// set, matching Kind.
type Entry struct {
	ID   string           `json:"id"`
	Kind Kind             `json:"kind"`
	Post *PostSummary     `json:"post,omitempty"`
	More *OverflowSummary `json:"more,omitempty"`
}

// Template names the partial that renders the entry.
func (e Entry) Template() string {
	if e.Kind == KindMore {
		return "more-card"
	}
	return "post-card"
}

func (e Entry) IsOverflow() bool { return e.Kind == KindMore }

// Derive maps the query result to post entries in upstream order, followed by
// a single overflow entry when more posts exist than are shown. Posts beyond
// limit are dropped; the input is expected to be sorted newest first.
func Derive(q Query, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	posts := q.Posts
	if len(posts) > limit {
		posts = posts[:limit]
	}

	entries := make([]Entry, 0, len(posts)+1)
	for _, raw := range posts {
		summary := Summarize(q.Author, raw)
		entries = append(entries, Entry{ID: summary.ID, Kind: KindPost, Post: &summary})
	}

	if remaining := q.TotalCount - len(posts); remaining > 0 {
		entries = append(entries, Entry{
			ID:   "more-field",
			Kind: KindMore,
			More: &OverflowSummary{
				AuthorUsername: q.Author.Username,
				AuthorName:     q.Author.Name,
				RemainingCount: remaining,
			},
		})
	}
	return entries
}

// Summarize builds the card for a single post.
func Summarize(author Author, raw RawPost) PostSummary {
	var image string
	if raw.PreviewImageID != "" {
		image = MediumCDN + "/" + raw.PreviewImageID
	}
	return PostSummary{
		ID:                 raw.ID,
		Title:              raw.Title,
		DisplayDate:        raw.CreatedAt,
		ReadingTimeMinutes: int(math.Ceil(raw.ReadingTime)),
		ExcerptText:        raw.Subtitle,
		CoverImageURL:      image,
		TargetURL:          fmt.Sprintf("%s/%s/%s", MediumURL, author.Username, raw.UniqueSlug),
	}
}

// Section is what the templates see as .Site.Writing.
type Section struct {
	Author  Author  `json:"author"`
	Entries []Entry `json:"entries"`
}

// NewSection derives the writing section, or returns nil without looking at
// q when the Medium source is not configured.
func NewSection(enabled bool, q Query, limit int) *Section {
	if !enabled {
		return nil
	}
	return &Section{Author: q.Author, Entries: Derive(q, limit)}
}
