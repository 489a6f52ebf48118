package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chriserin/metascrape/internal/meta"
)

var (
	newStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	updStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	trkStyle  = lipgloss.NewStyle().Faint(true)
	headStyle = lipgloss.NewStyle().Bold(true)
	kindStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func NewLine(w io.Writer, path string) {
	fmt.Fprintln(w, newStyle.Render("new")+"  "+path)
}

func UpdLine(w io.Writer, path string) {
	fmt.Fprintln(w, updStyle.Render("upd")+"  "+path)
}

func TrkLine(w io.Writer, path string) {
	fmt.Fprintln(w, trkStyle.Render("trk")+"  "+path)
}

func DelLine(w io.Writer, name string) {
	fmt.Fprintln(w, errStyle.Render("del")+"  "+name)
}

func OkLine(w io.Writer, path, output string) {
	fmt.Fprintln(w, newStyle.Render("ok ")+"  "+path+" -> "+output)
}

func SkipLine(w io.Writer, path, reason string) {
	fmt.Fprintln(w, trkStyle.Render("skp")+"  "+path+": "+reason)
}

func ErrLine(w io.Writer, path string, err error) {
	fmt.Fprintln(w, errStyle.Render("err")+"  "+path+": "+err.Error())
}

func SummaryLine(w io.Writer, count int) {
	fmt.Fprintf(w, "synced %d files\n", count)
}

func ScrapeSummary(w io.Writer, written, skipped, failed int) {
	fmt.Fprintf(w, "scraped %d modules, %d skipped, %d failed\n", written, skipped, failed)
}

func VerifySummary(w io.Writer, ok, failed int) {
	fmt.Fprintf(w, "verified %d records, %d failed\n", ok, failed)
}

// ListRow prints one padded module row.
func ListRow(w io.Writer, name, kind, parent string, props, keys int, nameWidth, kindWidth int) {
	fmt.Fprintf(w, "%s  %s  %-12s  %2d props  %2d keys\n",
		headStyle.Render(pad(name, nameWidth)),
		kindStyle.Render(pad(kind, kindWidth)),
		parent, props, keys)
}

func ShowHeader(w io.Writer, m *meta.Module) {
	fmt.Fprintln(w, headStyle.Render(m.Name)+"  "+kindStyle.Render(m.Kind.String()))
	fmt.Fprintln(w, m.FullyQualifiedName)
	if m.Parent != "" {
		fmt.Fprintln(w, "parent: "+m.Parent)
	}
}

func ShowDescription(w io.Writer, text string) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintln(w, "  "+strings.TrimSpace(line))
	}
}

func PropertyLine(w io.Writer, p meta.Property) {
	def := trkStyle.Render("(none)")
	if v, ok := p.Default(); ok {
		def = fmt.Sprintf("%q", v)
	}
	line := fmt.Sprintf("  %s %s = %s", headStyle.Render(p.Name), kindStyle.Render(p.Type), def)
	if p.ValidationType != "" {
		line += " [" + p.ValidationType + "]"
	}
	fmt.Fprintln(w, line)
	if p.Description != "" {
		fmt.Fprintln(w, "      "+p.Description)
	}
}

func KeyLine(w io.Writer, key string) {
	fmt.Fprintln(w, "  "+key)
}

func StatusLine(w io.Writer, kind string, count int) {
	fmt.Fprintf(w, "  %s: %d\n", kind, count)
}

func pad(s string, width int) string {
	if n := width - len(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
