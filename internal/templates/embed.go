// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package templates

import (
	"embed"
	"html/template"
)

//go:embed panel/*.tmpl
var PanelFS embed.FS

// ParsePanel parses the embedded panel templates.
func ParsePanel() (*template.Template, error) {
	return template.ParseFS(PanelFS, "panel/*.tmpl")
}
