// Package renderer formats coinfolio reports as markdown, CSV or HTML.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templatesFS embed.FS

// templates holds the markdown templates, at the root.
var templates, _ = fs.Sub(templatesFS, "templates")

// Masked replaces critical values when they are hidden.
const Masked = "******"

// null is displayed for unknown values.
const null = "-"

// Options holds configuration for rendering a report.
type Options struct {
	HideCriticalValues bool // mask the user id, holdings, amounts invested, worth and dates
}

// mask returns s, or Masked if critical values are hidden.
func (o Options) mask(s string) string {
	if o.HideCriticalValues {
		return Masked
	}
	return s
}

var funcs = template.FuncMap{"join": strings.Join}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

// RenderHoldings renders the holdings report to a markdown string.
func RenderHoldings(h *Holdings) string {
	partials := map[string]string{
		"holdings_title":     "holdings_title.md",
		"holdings_summary":   "holdings_summary.md",
		"holdings_positions": "holdings_positions.md",
	}
	return renderTemplate("holdings", "holdings.md", partials, h)
}
