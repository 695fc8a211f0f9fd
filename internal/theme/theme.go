// Package theme ships the default portfolio layouts and stylesheet, used when
// a site has no layouts/ or static/ directory of its own.
package theme

import (
	"embed"
	"io/fs"
)

//go:embed layouts static
var files embed.FS

// Layouts is rooted at the layouts directory.
func Layouts() fs.FS {
	sub, err := fs.Sub(files, "layouts")
	if err != nil {
		panic(err)
	}
	return sub
}

// Static is rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
