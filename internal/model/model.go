package model

import (
	"html/template"
	"time"

	"github.com/madelynarsenault/portfolio/internal/writing"
)

// ContentItem is one markdown page: a post, a project, the about text.
type ContentItem struct {
	Title       string
	Date        time.Time
	Type        string
	SourcePath  string
	Permalink   string
	ContentHTML template.HTML
	Frontmatter map[string]interface{}
	Summary     string
	Layout      string
	Weight      int
	Draft       bool
}

// Param looks up a frontmatter value, e.g. a project's "repo" or "tags".
func (c *ContentItem) Param(key string) interface{} {
	if c.Frontmatter == nil {
		return nil
	}
	return c.Frontmatter[key]
}

// SiteData holds all site-wide data, including configuration and content.
type SiteData struct {
	Config        map[string]interface{}
	Title         string
	BaseURL       string
	ContentItems  []*ContentItem
	Posts         []*ContentItem
	Projects      []*ContentItem
	About         *ContentItem
	ContentByType map[string][]*ContentItem

	// Writing is nil when no Medium user is configured.
	Writing *writing.Section

	BuiltAt time.Time
}

// Param looks up a top-level key of config.yaml.
func (s *SiteData) Param(key string) interface{} {
	if s.Config == nil {
		return nil
	}
	return s.Config[key]
}

// Reset drops everything collected by a previous build, keeping the loaded
// config.
func (s *SiteData) Reset() {
	s.ContentItems = []*ContentItem{}
	s.Posts = []*ContentItem{}
	s.Projects = []*ContentItem{}
	s.About = nil
	s.ContentByType = make(map[string][]*ContentItem)
	s.Writing = nil
}
