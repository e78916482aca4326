// Package web embeds the UI templates and static assets served by the HTTP
// layer.
package web

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static
var StaticFS embed.FS
