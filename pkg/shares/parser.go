// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package shares

import (
	"regexp"
	"strings"
)

// Regular expressions for parsing
var (
	sectionRegex = regexp.MustCompile(`^\s*\[(.*?)\]`)
	paramRegex   = regexp.MustCompile(`^\s*([^#;][^=]*?)\s*=\s*(.*?)\s*$`)
)

// document is an order-preserving model of the configuration file. Raw
// lines are kept verbatim so a rewrite only touches the sections the
// caller changed.
type document struct {
	prelude  []string // lines before the first section header
	sections []*section
}

// section holds one [name] block with its raw lines.
type section struct {
	name   string
	header string   // raw header line, kept verbatim
	body   []string // raw body lines, kept verbatim
}

// parseDocument splits content into ordered sections. The parsing is
// deliberately tolerant: no delimiter strictness, no value interpolation,
// unrecognized lines stay attached to the current section untouched.
func parseDocument(content string) *document {
	doc := &document{}

	lines := strings.Split(content, "\n")
	// A trailing newline yields one empty trailing element; drop it so
	// render can re-add the final newline deterministically.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var current *section
	for _, line := range lines {
		if matches := sectionRegex.FindStringSubmatch(line); len(matches) > 1 {
			current = &section{
				name:   strings.TrimSpace(matches[1]),
				header: line,
			}
			doc.sections = append(doc.sections, current)
			continue
		}

		if current == nil {
			doc.prelude = append(doc.prelude, line)
			continue
		}
		current.body = append(current.body, line)
	}

	return doc
}

// render reassembles the document into file content.
func (d *document) render() string {
	var sb strings.Builder
	for _, line := range d.prelude {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	for _, sec := range d.sections {
		sb.WriteString(sec.header)
		sb.WriteString("\n")
		for _, line := range sec.body {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// find returns the section with the given name, or nil.
func (d *document) find(name string) *section {
	for _, sec := range d.sections {
		if sec.name == name {
			return sec
		}
	}
	return nil
}

// remove deletes the named section, reporting whether it was present.
func (d *document) remove(name string) bool {
	for i, sec := range d.sections {
		if sec.name == name {
			d.sections = append(d.sections[:i], d.sections[i+1:]...)
			return true
		}
	}
	return false
}

// params parses the section body into lowercased key/value pairs.
func (s *section) params() map[string]string {
	values := make(map[string]string)
	for _, line := range s.body {
		if matches := paramRegex.FindStringSubmatch(line); len(matches) > 2 {
			key := strings.ToLower(strings.TrimSpace(matches[1]))
			values[key] = strings.TrimSpace(matches[2])
		}
	}
	return values
}

// parseBool interprets Samba-style boolean values.
func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1":
		return true
	case "no", "false", "0":
		return false
	default:
		return fallback
	}
}

// formatBool renders a boolean the way smb.conf expects it.
func formatBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// shareFromSection maps a parsed section to a Share, substituting the
// documented defaults for missing keys.
func shareFromSection(sec *section) Share {
	values := sec.params()

	share := Share{
		Name:          sec.name,
		Path:          values["path"],
		Comment:       values["comment"],
		Writable:      parseBool(values["writable"], true),
		Browseable:    parseBool(values["browseable"], true),
		GuestOK:       parseBool(values["guest ok"], false),
		ValidUsers:    values["valid users"],
		CreateMask:    values["create mask"],
		DirectoryMask: values["directory mask"],
	}

	// "read only" is the canonical inverse of "writable"; honor it when
	// the writable key is absent.
	if _, ok := values["writable"]; !ok {
		if ro, found := values["read only"]; found {
			share.Writable = !parseBool(ro, false)
		}
	}

	if share.CreateMask == "" {
		share.CreateMask = DefaultCreateMask
	}
	if share.DirectoryMask == "" {
		share.DirectoryMask = DefaultDirectoryMask
	}

	return share
}

// sectionFromShare serializes a Share into a new section block.
func sectionFromShare(share Share) *section {
	sec := &section{
		name:   share.Name,
		header: "[" + share.Name + "]",
	}

	add := func(key, value string) {
		sec.body = append(sec.body, "   "+key+" = "+value)
	}

	add("path", share.Path)
	if share.Comment != "" {
		add("comment", share.Comment)
	}
	add("writable", formatBool(share.Writable))
	add("browseable", formatBool(share.Browseable))
	add("guest ok", formatBool(share.GuestOK))
	if share.ValidUsers != "" {
		add("valid users", share.ValidUsers)
	}
	add("create mask", share.CreateMask)
	add("directory mask", share.DirectoryMask)
	sec.body = append(sec.body, "")

	return sec
}
