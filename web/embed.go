// Package web bundles the HTML templates and static assets into the binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var templateFS embed.FS

//go:embed all:static
var staticFS embed.FS

// TemplateFS holds templates/layouts and templates/pages.
var TemplateFS fs.FS = templateFS

// StaticFS holds static/, served under /static/.
var StaticFS fs.FS = staticFS
