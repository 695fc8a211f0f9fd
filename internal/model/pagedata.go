package model

import "html/template"

// PageData is the template context for every rendered page. Item is nil on
// the home and list pages.
type PageData struct {
	Site      *SiteData
	Item      *ContentItem
	PageTitle string
}

func (p PageData) Content() template.HTML {
	if p.Item == nil {
		return ""
	}
	return p.Item.ContentHTML
}
