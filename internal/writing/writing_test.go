package writing_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madelynarsenault/portfolio/internal/writing"
)

var author = writing.Author{Username: "madelyn", Name: "Madelyn"}

func rawPosts(n int) []writing.RawPost {
	posts := make([]writing.RawPost, n)
	for i := range posts {
		posts[i] = writing.RawPost{
			ID:          fmt.Sprintf("id-%d", i),
			UniqueSlug:  fmt.Sprintf("post-%d-abc", i),
			Title:       fmt.Sprintf("Post %d", i),
			CreatedAt:   "Mar 2020",
			Subtitle:    "subtitle",
			ReadingTime: 2.5,
		}
	}
	return posts
}

func countKinds(entries []writing.Entry) (posts, more int) {
	for _, e := range entries {
		switch e.Kind {
		case writing.KindPost:
			posts++
		case writing.KindMore:
			more++
		}
	}
	return posts, more
}

func TestDeriveAddsOverflowWhenMorePostsExist(t *testing.T) {
	entries := writing.Derive(writing.Query{TotalCount: 10, Posts: rawPosts(7), Author: author}, 7)

	require.Len(t, entries, 8)
	posts, more := countKinds(entries)
	assert.Equal(t, 7, posts)
	assert.Equal(t, 1, more)

	last := entries[len(entries)-1]
	require.True(t, last.IsOverflow())
	assert.Equal(t, "more-card", last.Template())
	assert.Equal(t, 3, last.More.RemainingCount)
	assert.Equal(t, "madelyn", last.More.AuthorUsername)
	assert.Equal(t, "Madelyn", last.More.AuthorName)
	assert.Equal(t, "https://medium.com/madelyn/", last.More.ProfileURL())
}

func TestDeriveWithoutOverflow(t *testing.T) {
	entries := writing.Derive(writing.Query{TotalCount: 5, Posts: rawPosts(5), Author: author}, 7)

	posts, more := countKinds(entries)
	assert.Equal(t, 5, posts)
	assert.Zero(t, more)
	for _, e := range entries {
		assert.Equal(t, "post-card", e.Template())
		assert.Nil(t, e.More)
	}
}

func TestDeriveTotalEqualToLimit(t *testing.T) {
	entries := writing.Derive(writing.Query{TotalCount: 7, Posts: rawPosts(7), Author: author}, 7)
	posts, more := countKinds(entries)
	assert.Equal(t, 7, posts)
	assert.Zero(t, more)
}

func TestDeriveCapsAtLimit(t *testing.T) {
	entries := writing.Derive(writing.Query{TotalCount: 12, Posts: rawPosts(9), Author: author}, 7)

	posts, more := countKinds(entries)
	assert.Equal(t, 7, posts)
	assert.Equal(t, 1, more)
	assert.Equal(t, 5, entries[7].More.RemainingCount)
}

func TestDerivePreservesOrder(t *testing.T) {
	entries := writing.Derive(writing.Query{TotalCount: 3, Posts: rawPosts(3), Author: author}, 7)
	for i, e := range entries {
		assert.Equal(t, fmt.Sprintf("id-%d", i), e.ID)
	}
}

func TestDeriveDefaultLimit(t *testing.T) {
	entries := writing.Derive(writing.Query{TotalCount: 20, Posts: rawPosts(20), Author: author}, 0)
	posts, _ := countKinds(entries)
	assert.Equal(t, writing.DefaultLimit, posts)
}

func TestDeriveEmpty(t *testing.T) {
	assert.Empty(t, writing.Derive(writing.Query{Author: author}, 7))
}

func TestSummarizeReadingTimeRoundsUp(t *testing.T) {
	cases := map[float64]int{3.1: 4, 3.0: 3, 0.2: 1, 0: 0, 7.999: 8}
	for in, want := range cases {
		got := writing.Summarize(author, writing.RawPost{ReadingTime: in})
		assert.Equal(t, want, got.ReadingTimeMinutes, "reading time %v", in)
	}
}

func TestSummarizeFields(t *testing.T) {
	raw := writing.RawPost{
		ID:             "abc123",
		UniqueSlug:     "hello-world-abc123",
		Title:          "Hello World",
		CreatedAt:      "Jan 2021",
		Subtitle:       "A first post",
		ReadingTime:    3.1,
		PreviewImageID: "1*xyz.png",
	}
	got := writing.Summarize(author, raw)

	assert.Equal(t, writing.PostSummary{
		ID:                 "abc123",
		Title:              "Hello World",
		DisplayDate:        "Jan 2021",
		ReadingTimeMinutes: 4,
		ExcerptText:        "A first post",
		CoverImageURL:      "https://cdn-images-1.medium.com/max/400/1*xyz.png",
		TargetURL:          "https://medium.com/madelyn/hello-world-abc123",
	}, got)
	assert.Equal(t, "Jan 2021 - 4 min", got.Subtitle())
}

func TestSummarizeWithoutPreviewImage(t *testing.T) {
	got := writing.Summarize(author, writing.RawPost{ID: "x"})
	assert.Empty(t, got.CoverImageURL)
}

func TestNewSectionGate(t *testing.T) {
	q := writing.Query{TotalCount: 10, Posts: rawPosts(7), Author: author}

	assert.Nil(t, writing.NewSection(false, q, 7))

	section := writing.NewSection(true, q, 7)
	require.NotNil(t, section)
	assert.Equal(t, author, section.Author)
	assert.Len(t, section.Entries, 8)
}
