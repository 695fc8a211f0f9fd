package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madelynarsenault/portfolio/internal/config"
	"github.com/madelynarsenault/portfolio/internal/model"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

func readOutput(t *testing.T, root, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(b)
}

// mediumServer answers the JSON profile endpoint with n posts.
func mediumServer(t *testing.T, n int, hits *int32) *httptest.Server {
	t.Helper()
	posts := map[string]any{}
	base := time.Date(2019, 1, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("id%d", i)
		posts[id] = map[string]any{
			"id":         id,
			"uniqueSlug": fmt.Sprintf("slug-%d", i),
			"title":      fmt.Sprintf("Post number %d", i),
			"createdAt":  base.AddDate(0, i, 0).UnixMilli(),
			"virtuals": map[string]any{
				"subtitle":     fmt.Sprintf("subtitle %d", i),
				"readingTime":  2.2,
				"previewImage": map[string]any{"imageId": fmt.Sprintf("1*img%d.png", i)},
			},
		}
	}
	body, err := json.Marshal(map[string]any{
		"success": true,
		"payload": map[string]any{
			"user":       map[string]any{"username": "madelyn", "name": "Madelyn A"},
			"references": map[string]any{"Post": posts},
		},
	})
	require.NoError(t, err)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/@madelyn/latest" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(jsonPrefix))
		_, _ = w.Write(body)
	}))
}

const jsonPrefix = "])}while(1);</x>"

func testConfig(root string) config.Config {
	return config.Config{
		SiteTitle: "Madelyn Arsenault",
		OutputDir: filepath.Join(root, "public"),
		SourceDir: root,
		LogLevel:  "info",
		Medium:    config.MediumConfig{Limit: 7, Timeout: 5 * time.Second},
		Cache:     config.CacheConfig{TTL: time.Minute},
	}
}

var portfolioContent = map[string]string{
	"content/about.md":            "---\ntitle: About me\n---\nI build things for the web.\n",
	"content/projects/tracker.md": "---\ntitle: Habit Tracker\ntype: project\nsummary: Tracks habits\nrepo: https://github.com/example/tracker\nweight: 1\n---\nBody\n",
	"content/posts/first-post.md": "---\ndate: 2021-02-03\nsummary: the first\n---\n# Hello\n",
	"content/posts/draft.md":      "---\ntitle: Not yet\ndraft: true\n---\nwip\n",
	"static/favicon.ico":          "icon",
}

func TestBuildRendersPortfolioWithWriting(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, portfolioContent)

	var hits int32
	srv := mediumServer(t, 10, &hits)
	defer srv.Close()

	cfg := testConfig(root)
	cfg.Medium.Username = "madelyn"
	cfg.Medium.BaseURL = srv.URL

	site := &model.SiteData{Config: map[string]interface{}{
		"name":   "Madelyn Arsenault",
		"skills": []interface{}{"React", "Node.JS"},
	}}
	b, err := newBuilder(cfg, site)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Build(context.Background()))

	home := readOutput(t, cfg.OutputDir, "index.html")
	assert.Contains(t, home, `id="writing"`)
	assert.Equal(t, 7, strings.Count(home, `data-template="post-card"`))
	assert.Equal(t, 1, strings.Count(home, `data-template="more-card"`))
	assert.Contains(t, home, "has published 3 more posts!")
	assert.Contains(t, home, "https://medium.com/madelyn/slug-9")
	assert.NotContains(t, home, "https://medium.com/madelyn/slug-2\"", "oldest posts are cut")
	assert.Contains(t, home, "cdn-images-1.medium.com/max/400/")
	assert.Contains(t, home, "Oct 2019 - 3 min")
	assert.Contains(t, home, "I build things for the web.")
	assert.Contains(t, home, "Habit Tracker")
	assert.Contains(t, home, "<li>React</li>")

	assert.Contains(t, readOutput(t, cfg.OutputDir, "posts/first-post/index.html"), "First Post")
	assert.Contains(t, readOutput(t, cfg.OutputDir, "posts/index.html"), "/posts/first-post/")
	assert.NotContains(t, readOutput(t, cfg.OutputDir, "posts/index.html"), "Not yet")
	assert.Equal(t, "icon", readOutput(t, cfg.OutputDir, "favicon.ico"))
	assert.NotEmpty(t, readOutput(t, cfg.OutputDir, "css/site.css"))

	// A rebuild is served from the cache.
	require.NoError(t, b.Build(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestBuildWithoutMediumUserSkipsWriting(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, portfolioContent)

	var hits int32
	srv := mediumServer(t, 10, &hits)
	defer srv.Close()

	cfg := testConfig(root)
	cfg.Medium.BaseURL = srv.URL

	site := &model.SiteData{}
	b, err := newBuilder(cfg, site)
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, b.Build(context.Background()))

	home := readOutput(t, cfg.OutputDir, "index.html")
	assert.NotContains(t, home, `id="writing"`)
	assert.NotContains(t, home, "post-card")
	assert.Nil(t, site.Writing)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestBuildSurvivesMediumFailure(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, portfolioContent)

	var hits int32
	srv := mediumServer(t, 10, &hits)
	defer srv.Close()

	cfg := testConfig(root)
	cfg.Medium.Username = "someone-else"
	cfg.Medium.BaseURL = srv.URL

	site := &model.SiteData{}
	b, err := newBuilder(cfg, site)
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, b.Build(context.Background()))

	assert.Nil(t, site.Writing)
	assert.NotContains(t, readOutput(t, cfg.OutputDir, "index.html"), `id="writing"`)
}

func TestBuildUsesSiteLayouts(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"layouts/base.html":            `{{define "x"}}{{end}}base {{.Item.Title}}`,
		"layouts/home.html":            `home of {{.Site.Title}}{{template "extra" .}}`,
		"layouts/partials/extra.html":  `{{define "extra"}} with partial{{end}}`,
		"layouts/single-post.html":     `post {{.Item.Title}}`,
		"content/posts/hello-world.md": "hi",
		"content/notes/plain.md":       "---\nlayout: missing.html\n---\nplain",
	})

	cfg := testConfig(root)
	b, err := newBuilder(cfg, &model.SiteData{})
	require.NoError(t, err)
	require.NoError(t, b.Build(context.Background()))

	assert.Equal(t, "home of Madelyn Arsenault with partial", readOutput(t, cfg.OutputDir, "index.html"))
	assert.Equal(t, "post Hello World", readOutput(t, cfg.OutputDir, "posts/hello-world/index.html"))
	assert.Equal(t, "base Plain", readOutput(t, cfg.OutputDir, "notes/plain/index.html"))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "posts", "index.html"))
}

func TestBuildRequiresHomeLayout(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"layouts/base.html": "base"})

	b, err := newBuilder(testConfig(root), &model.SiteData{})
	require.NoError(t, err)
	err = b.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "home.html")
}
