package notes

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// FormatOptions controls terminal output.
type FormatOptions struct {
	Render RenderOptions
	Plain  bool // Disable colors
}

var (
	headerStyle = color.New(color.FgCyan, color.Bold)
	refStyle    = color.New(color.Faint)
	bulletStyle = color.New(color.FgGreen)
)

// FormatTerminal writes the changelog to w. Plain output is exactly Render's
// text plus a trailing newline; styled output only adds colors.
func FormatTerminal(a *AggregatedNotes, w io.Writer, opts FormatOptions) error {
	if opts.Plain {
		_, err := fmt.Fprintln(w, a.Render(opts.Render))
		return err
	}

	lines := a.lines(opts.Render)
	// Same trailing trim as Render.
	for len(lines) > 0 && lines[len(lines)-1].kind == lineBlank {
		lines = lines[:len(lines)-1]
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, styleLine(line)); err != nil {
			return err
		}
	}
	return nil
}

// styleLine colors one changelog line.
func styleLine(l changelogLine) string {
	switch l.kind {
	case lineHeader:
		return headerStyle.Sprint(l.text + ":")
	case lineBullet, lineNested:
		prefix := bullet
		if l.kind == lineNested {
			prefix = nestedBullet
		}
		indent := strings.TrimSuffix(prefix, "- ")
		s := indent + bulletStyle.Sprint("-") + " " + l.text
		if l.ref != "" {
			s += " " + refStyle.Sprint("("+l.ref+")")
		}
		return s
	default:
		return ""
	}
}

// FormatTable writes the raw notes of a collection as a table: depth, section,
// abbreviated commit and the first line of the message.
func FormatTable(objs *ObjectsWithNotes, w io.Writer) error {
	if objs.Len() == 0 {
		_, err := fmt.Fprintln(w, "No notes found in range.")
		return err
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Footer = text.FormatDefault

	tbl.AppendHeader(table.Row{"Depth", "Section", "Commit", "Message"})
	for _, n := range objs.Notes() {
		tbl.AppendRow(table.Row{n.Depth, n.Section, shortHash(n.Commit), firstLine(n.Message)})
	}
	tbl.AppendFooter(table.Row{"", "", "", fmt.Sprintf("Total: %d notes", objs.Len())})

	tbl.Render()
	return nil
}

// shortHash abbreviates a commit id to seven characters.
func shortHash(hash string) string {
	if len(hash) <= 7 {
		return hash
	}
	return hash[:7]
}

// firstLine returns the first non-blank line of a message, trimmed.
func firstLine(message string) string {
	lines := nonBlankLines(message)
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[0])
}
