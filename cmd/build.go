package cmd

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/madelynarsenault/portfolio/internal/cache"
	"github.com/madelynarsenault/portfolio/internal/config"
	"github.com/madelynarsenault/portfolio/internal/logger"
	"github.com/madelynarsenault/portfolio/internal/medium"
	"github.com/madelynarsenault/portfolio/internal/model"
	"github.com/madelynarsenault/portfolio/internal/theme"
	"github.com/madelynarsenault/portfolio/internal/writing"
)

const (
	conventionalContentDir = "content"
	conventionalLayoutsDir = "layouts"
	conventionalStaticDir  = "static"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the portfolio site from content, layouts, and static assets",
	Long: `The build command processes Markdown files from './content/', fetches the
Medium posts for the writing section when a Medium user is configured, applies
templates from './layouts/' (or the built-in theme), copies static assets and
generates the site in the configured output directory (default './public/').`,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBuilder(appConfig, siteData)
		if err != nil {
			return err
		}
		defer b.Close()
		return b.Build(cmd.Context())
	},
}

// builder runs builds for one config. It outlives a single build so serve
// can reuse the Medium cache across rebuilds.
type builder struct {
	cfg    config.Config
	site   *model.SiteData
	source medium.Source
	store  cache.Store

	mu sync.Mutex
}

func newBuilder(cfg config.Config, site *model.SiteData) (*builder, error) {
	b := &builder{cfg: cfg, site: site}
	if !cfg.MediumEnabled() {
		return b, nil
	}

	src, err := medium.NewClient(cfg.Medium.BaseURL, cfg.Medium.Timeout).Source(cfg.Medium.Source)
	if err != nil {
		return nil, err
	}

	store, err := newCacheStore(cfg.Cache)
	if err != nil {
		return nil, err
	}
	b.store = store
	b.source = &medium.CachedSource{Source: src, Store: store, TTL: cfg.Cache.TTL}
	return b, nil
}

func newCacheStore(cfg config.CacheConfig) (cache.Store, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemoryStore(cfg.TTL), nil
	}
	store, err := cache.NewRedisStore(cfg.RedisURL, cfg.Prefix)
	if err != nil {
		return nil, err
	}
	logger.Info().Msg("caching Medium posts in Redis")
	return store, nil
}

func (b *builder) Close() error {
	if b.store == nil {
		return nil
	}
	return b.store.Close()
}

func (b *builder) dir(name string) string {
	return filepath.Join(b.cfg.SourceDir, name)
}

// Build renders the whole site. Builds are serialized.
func (b *builder) Build(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	cfg, site := b.cfg, b.site
	outputDir := cfg.OutputDir
	log := logger.Get()

	log.Info().Str("outputDir", outputDir).Str("baseURL", cfg.BaseURL).Str("siteTitle", cfg.SiteTitle).
		Msg("starting build")

	site.Reset()
	site.Title = cfg.SiteTitle
	site.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	site.BuiltAt = start

	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("failed to remove output directory '%s': %w", outputDir, err)
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	if err := copyFS(theme.Static(), outputDir); err != nil {
		return fmt.Errorf("failed to copy theme assets: %w", err)
	}
	if staticDir := b.dir(conventionalStaticDir); isDir(staticDir) {
		if err := copyFS(os.DirFS(staticDir), outputDir); err != nil {
			return fmt.Errorf("failed to copy static assets: %w", err)
		}
		log.Debug().Str("dir", staticDir).Msg("static assets copied")
	}

	templates, err := b.templates()
	if err != nil {
		return err
	}

	if contentDir := b.dir(conventionalContentDir); isDir(contentDir) {
		items, err := collectContent(contentDir)
		if err != nil {
			return err
		}
		organizeContent(site, items)
	} else {
		log.Warn().Str("dir", contentDir).Msg("content directory not found, building from config only")
	}
	log.Info().Int("items", len(site.ContentItems)).Int("posts", len(site.Posts)).
		Int("projects", len(site.Projects)).Msg("content collected")

	section, err := b.writingSection(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not load Medium posts, omitting writing section")
	} else {
		site.Writing = section
	}

	for _, item := range site.ContentItems {
		layout, err := layoutFor(templates, item)
		if err != nil {
			return err
		}
		out := outputPathFor(outputDir, item.Permalink)
		data := model.PageData{Site: site, Item: item, PageTitle: item.Title}
		if err := renderPage(templates, layout, out, data); err != nil {
			return fmt.Errorf("item '%s': %w", item.Title, err)
		}
		log.Debug().Str("path", out).Str("layout", layout).Msg("generated page")
	}

	if templates.Lookup(homeLayout) == nil {
		return fmt.Errorf("homepage layout '%s' not found. Please create it in the layouts directory", homeLayout)
	}
	if err := renderPage(templates, homeLayout, filepath.Join(outputDir, "index.html"), model.PageData{Site: site}); err != nil {
		return err
	}

	if templates.Lookup(postListLayout) == nil {
		log.Warn().Str("layout", postListLayout).Msg("post list layout not found, skipping posts page")
	} else {
		out := filepath.Join(outputDir, "posts", "index.html")
		if err := renderPage(templates, postListLayout, out, model.PageData{Site: site, PageTitle: "Posts"}); err != nil {
			return err
		}
	}

	log.Info().Dur("took", time.Since(start)).Msg("build completed")
	return nil
}

func (b *builder) templates() (*template.Template, error) {
	var layouts fs.FS
	if layoutsDir := b.dir(conventionalLayoutsDir); isDir(layoutsDir) {
		layouts = os.DirFS(layoutsDir)
	} else {
		logger.Debug().Msg("no layouts directory, using the built-in theme")
		layouts = theme.Layouts()
	}
	return loadTemplates(layouts)
}

// writingSection returns nil without fetching anything when no Medium user
// is configured.
func (b *builder) writingSection(ctx context.Context) (*writing.Section, error) {
	if !b.cfg.MediumEnabled() {
		return nil, nil
	}

	profile, err := b.source.Fetch(ctx, b.cfg.Medium.Username)
	if err != nil {
		return nil, err
	}
	limit := b.cfg.Medium.Limit
	return writing.NewSection(true, profile.Query(limit), limit), nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
