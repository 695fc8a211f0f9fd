package cmd

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/madelynarsenault/portfolio/internal/logger"
	"github.com/madelynarsenault/portfolio/internal/model"
)

var dateFormats = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
		),
	)
}

// collectContent reads every markdown file under sourceDir. Drafts are
// skipped.
func collectContent(sourceDir string) ([]*model.ContentItem, error) {
	md := newMarkdown()
	var items []*model.ContentItem

	err := filepath.WalkDir(sourceDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("error accessing path '%s' during walk: %w", p, walkErr)
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		relPath, err := filepath.Rel(sourceDir, p)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", p, err)
		}

		item, err := parseContentFile(md, p, filepath.ToSlash(relPath))
		if err != nil {
			return err
		}
		if item.Draft {
			logger.Debug().Str("path", p).Msg("skipping draft")
			return nil
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during content collection walk: %w", err)
	}
	return items, nil
}

func parseContentFile(md goldmark.Markdown, srcPath, relPath string) (*model.ContentItem, error) {
	fileBytes, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", srcPath, err)
	}

	fmData := map[string]interface{}{}
	body, err := frontmatter.Parse(bytes.NewReader(fileBytes), &fmData)
	if err != nil {
		logger.Warn().Err(err).Str("path", srcPath).Msg("could not parse frontmatter, treating as pure markdown")
		body = fileBytes
		fmData = map[string]interface{}{}
	}

	var htmlBuffer bytes.Buffer
	if err := md.Convert(body, &htmlBuffer); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML for file '%s': %w", srcPath, err)
	}

	item := &model.ContentItem{
		Title:       stringParam(fmData, "title"),
		Type:        contentType(relPath, fmData),
		SourcePath:  srcPath,
		Permalink:   permalink(relPath),
		ContentHTML: template.HTML(htmlBuffer.String()),
		Frontmatter: fmData,
		Summary:     stringParam(fmData, "summary"),
		Layout:      stringParam(fmData, "layout"),
		Weight:      intParam(fmData, "weight"),
		Draft:       boolParam(fmData, "draft"),
	}
	if item.Title == "" {
		item.Title = titleFromFilename(path.Base(relPath))
	}

	item.Date = dateParam(fmData, "date")
	if _, ok := fmData["date"]; ok && item.Date.IsZero() {
		logger.Warn().Str("path", srcPath).Msg("could not parse date, use YYYY-MM-DD or RFC3339")
	}
	return item, nil
}

// contentType is the first directory under content/, overridden by a
// frontmatter "type".
func contentType(relPath string, fm map[string]interface{}) string {
	if t := stringParam(fm, "type"); t != "" {
		return t
	}
	if dir := path.Dir(relPath); dir != "." {
		return strings.SplitN(dir, "/", 2)[0]
	}
	return "page"
}

func permalink(relPath string) string {
	p := "/" + strings.TrimSuffix(relPath, path.Ext(relPath))
	p = path.Clean(p)
	if p == "/" {
		return p
	}
	return p + "/"
}

func titleFromFilename(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	base = strings.ReplaceAll(strings.ReplaceAll(base, "-", " "), "_", " ")
	return cases.Title(language.English).String(base)
}

func stringParam(fm map[string]interface{}, key string) string {
	s, _ := fm[key].(string)
	return s
}

func boolParam(fm map[string]interface{}, key string) bool {
	b, _ := fm[key].(bool)
	return b
}

func intParam(fm map[string]interface{}, key string) int {
	switch v := fm[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// dateParam accepts both strings and the time.Time values YAML decodes
// unquoted dates into.
func dateParam(fm map[string]interface{}, key string) time.Time {
	switch v := fm[key].(type) {
	case time.Time:
		return v
	case string:
		for _, format := range dateFormats {
			if t, err := time.Parse(format, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// organizeContent sorts items newest first and fills the site's indexes.
func organizeContent(site *model.SiteData, items []*model.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date.IsZero() {
			return false
		}
		if items[j].Date.IsZero() {
			return true
		}
		return items[i].Date.After(items[j].Date)
	})

	site.ContentItems = items
	for _, item := range items {
		site.ContentByType[item.Type] = append(site.ContentByType[item.Type], item)

		switch item.Type {
		case "posts":
			site.Posts = append(site.Posts, item)
		case "project", "projects":
			site.Projects = append(site.Projects, item)
		case "about":
			if site.About == nil {
				site.About = item
			}
		}
		if site.About == nil && item.Permalink == "/about/" {
			site.About = item
		}
	}

	// Weighted projects come first, in weight order.
	sort.SliceStable(site.Projects, func(i, j int) bool {
		wi, wj := site.Projects[i].Weight, site.Projects[j].Weight
		if wi == 0 || wj == 0 {
			return wi != 0 && wj == 0
		}
		return wi < wj
	})
}
