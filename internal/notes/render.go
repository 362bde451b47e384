package notes

import (
	"strings"
	"unicode"
)

// RenderMode selects whether commit ids are shown in the changelog.
type RenderMode int

const (
	// ModePlain renders messages only.
	ModePlain RenderMode = iota
	// ModeWithObjects appends "(<commit>)" to the first bullet of each entry.
	ModeWithObjects
)

// RenderOptions controls changelog rendering.
type RenderOptions struct {
	Mode RenderMode
	// CustomMessage, when set, is rendered first under its own heading with one
	// bullet per non-blank line.
	CustomMessage string
}

const (
	customMessageTitle = "Custom message"
	bullet             = "  - "
	nestedBullet       = "    - "
)

// lineKind tags a changelog line for plain or styled output.
type lineKind int

const (
	lineHeader lineKind = iota
	lineBullet
	lineNested
	lineBlank
)

type changelogLine struct {
	kind lineKind
	text string
	// ref is the commit id shown after the text, if any.
	ref string
}

// String returns the plain text form of the line.
func (l changelogLine) String() string {
	switch l.kind {
	case lineHeader:
		return l.text + ":"
	case lineBullet:
		s := bullet + l.text
		if l.text == "" {
			s = strings.TrimRight(bullet, " ")
		}
		if l.ref != "" {
			s += " (" + l.ref + ")"
		}
		return s
	case lineNested:
		return nestedBullet + l.text
	default:
		return ""
	}
}

// Render formats the notes as a changelog:
//
//	Changes:
//
//	  - first line of a message (commit)
//	    - indented line of the same message
//	  - unindented later line
//
// Sections are separated by one blank line and trailing whitespace is trimmed.
// The output depends only on the receiver and opts.
func (a *AggregatedNotes) Render(opts RenderOptions) string {
	var b strings.Builder
	for _, line := range a.lines(opts) {
		b.WriteString(line.String())
		b.WriteString("\n")
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}

// RenderChangelog aggregates objs and renders the result.
func RenderChangelog(objs *ObjectsWithNotes, opts RenderOptions) string {
	return Aggregate(objs).Render(opts)
}

// lines lays out the changelog. Every block ends with a blank line; Render trims
// the last one.
func (a *AggregatedNotes) lines(opts RenderOptions) []changelogLine {
	var out []changelogLine

	if strings.TrimSpace(opts.CustomMessage) != "" {
		out = append(out, changelogLine{kind: lineHeader, text: customMessageTitle}, changelogLine{kind: lineBlank})
		for _, line := range nonBlankLines(opts.CustomMessage) {
			out = append(out, changelogLine{kind: lineBullet, text: strings.TrimSpace(line)})
		}
		out = append(out, changelogLine{kind: lineBlank})
	}

	for _, section := range a.sections {
		out = append(out, changelogLine{kind: lineHeader, text: section.Title()}, changelogLine{kind: lineBlank})
		for _, e := range a.entries[section.Name] {
			out = append(out, entryLines(e, opts.Mode)...)
		}
		out = append(out, changelogLine{kind: lineBlank})
	}

	return out
}

// entryLines lays out one message. The first non-blank line opens the entry and
// carries the commit ref; indented lines nest, other lines start new bullets.
func entryLines(e Entry, mode RenderMode) []changelogLine {
	ref := ""
	if mode == ModeWithObjects {
		ref = e.Commit
	}

	lines := nonBlankLines(e.Message)
	if len(lines) == 0 {
		return []changelogLine{{kind: lineBullet, ref: ref}}
	}

	out := make([]changelogLine, 0, len(lines))
	for i, line := range lines {
		text := strings.TrimSpace(line)
		switch {
		case i == 0:
			out = append(out, changelogLine{kind: lineBullet, text: text, ref: ref})
		case isIndented(line):
			out = append(out, changelogLine{kind: lineNested, text: text})
		default:
			out = append(out, changelogLine{kind: lineBullet, text: text})
		}
	}
	return out
}

// nonBlankLines splits text on newlines and drops whitespace-only lines.
func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// isIndented reports whether a line starts with a space or tab.
func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}
