// Package views embeds the view bundles shipped with the binary.
package views

import (
	"embed"
	"io/fs"
)

// Bundle file names.
const (
	MainPage     = "MainPage.html"
	FractalsPage = "FractalsPage.html"
)

//go:embed *.html
var bundles embed.FS

// FS returns the embedded bundles.
func FS() fs.FS {
	return bundles
}
