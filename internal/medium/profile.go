// Package medium fetches a user's posts from Medium and shapes them into the
// query result consumed by the writing section.
package medium

import (
	"sort"
	"time"

	"github.com/madelynarsenault/portfolio/internal/writing"
)

// DateFormat renders creation dates as "MMM YYYY".
const DateFormat = "Jan 2006"

type Post struct {
	ID             string    `json:"id"`
	UniqueSlug     string    `json:"uniqueSlug"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"createdAt"`
	Subtitle       string    `json:"subtitle"`
	ReadingTime    float64   `json:"readingTime"`
	PreviewImageID string    `json:"previewImageId,omitempty"`
}

// Profile is everything fetched for one user, in no particular order.
type Profile struct {
	User  writing.Author `json:"user"`
	Posts []Post         `json:"posts"`
}

// Query returns the newest limit posts with display dates, the way the
// writing section expects them. TotalCount covers all fetched posts.
func (p *Profile) Query(limit int) writing.Query {
	posts := make([]Post, len(p.Posts))
	copy(posts, p.Posts)
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	raw := make([]writing.RawPost, 0, len(posts))
	for _, post := range posts {
		raw = append(raw, writing.RawPost{
			ID:             post.ID,
			UniqueSlug:     post.UniqueSlug,
			Title:          post.Title,
			CreatedAt:      post.CreatedAt.Format(DateFormat),
			Subtitle:       post.Subtitle,
			ReadingTime:    post.ReadingTime,
			PreviewImageID: post.PreviewImageID,
		})
	}

	return writing.Query{
		TotalCount: len(p.Posts),
		Posts:      raw,
		Author:     p.User,
	}
}
