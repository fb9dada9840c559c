// Package web embeds the static assets served by folio: the intro page
// at / and everything under /static/.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:static
var staticFS embed.FS

// StaticFS returns the static/ tree rooted at its own directory.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // the embed directive guarantees the directory
	}
	return sub
}

// IntroPage returns the HTML of the intro page.
func IntroPage() []byte {
	b, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		panic(err)
	}
	return b
}
