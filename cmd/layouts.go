package cmd

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/madelynarsenault/portfolio/internal/logger"
	"github.com/madelynarsenault/portfolio/internal/model"
)

const (
	conventionalBaseLayout = "base.html"
	homeLayout             = "home.html"
	singleLayout           = "single.html"
	singlePostLayout       = "single-post.html"
	postListLayout         = "list-posts.html"
)

var templateFuncs = template.FuncMap{
	"lower":    strings.ToLower,
	"safeHTML": func(s string) template.HTML { return template.HTML(s) },
}

// loadTemplates parses every .html file of fsys: base.html and partials
// first, home.html last. Templates are named by file name.
func loadTemplates(fsys fs.FS) (*template.Template, error) {
	var base, home string
	var partials, others []string

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			return nil
		}
		switch {
		case p == conventionalBaseLayout:
			base = p
		case p == homeLayout:
			home = p
		case strings.HasPrefix(p, "partials/"):
			partials = append(partials, p)
		default:
			others = append(others, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find layout files: %w", err)
	}
	if base == "" {
		return nil, fmt.Errorf("%s not found at the root of the layouts directory", conventionalBaseLayout)
	}

	files := append([]string{base}, partials...)
	files = append(files, others...)
	if home != "" {
		files = append(files, home)
	}

	templates, err := template.New("").Funcs(templateFuncs).ParseFS(fsys, files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layouts: %w", err)
	}
	logger.Debug().Int("count", len(files)).Msg("parsed layout files")
	return templates, nil
}

// layoutFor picks frontmatter layout, then single-post.html for posts, then
// single.html, then base.html.
func layoutFor(templates *template.Template, item *model.ContentItem) (string, error) {
	candidates := []string{}
	if item.Layout != "" {
		candidates = append(candidates, item.Layout)
	}
	if item.Type == "posts" {
		candidates = append(candidates, singlePostLayout)
	}
	candidates = append(candidates, singleLayout, conventionalBaseLayout)

	for i, name := range candidates {
		if templates.Lookup(name) != nil {
			if i > 0 && item.Layout != "" {
				logger.Warn().Str("layout", item.Layout).Str("item", item.Title).Str("using", name).
					Msg("frontmatter layout not found")
			}
			return name, nil
		}
	}
	return "", fmt.Errorf("no layout found for item '%s'", item.Title)
}

// renderPage executes layout into outputPath, creating parent directories.
func renderPage(templates *template.Template, layout, outputPath string, data model.PageData) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", outputPath, err)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file '%s': %w", outputPath, err)
	}
	defer outFile.Close()

	if err := templates.ExecuteTemplate(outFile, layout, data); err != nil {
		return fmt.Errorf("failed to execute template '%s' (outputting to '%s'): %w", layout, outputPath, err)
	}
	return outFile.Close()
}

// outputPathFor maps a permalink like /posts/hello/ to <out>/posts/hello/index.html.
func outputPathFor(outputDir, permalink string) string {
	return filepath.Join(outputDir, filepath.FromSlash(path.Clean(permalink)), "index.html")
}
