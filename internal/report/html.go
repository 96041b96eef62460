package report

import (
	"fmt"
	"html/template"
	"io"
	"sync"
	"time"

	"salmonsurvey/internal/core"
	"salmonsurvey/web"
)

var (
	tmplOnce sync.Once
	tmpl     *template.Template
	tmplErr  error
)

func reportTemplate() (*template.Template, error) {
	tmplOnce.Do(func() {
		tmpl, tmplErr = template.ParseFS(web.TemplatesFS, "templates/report.html")
	})
	return tmpl, tmplErr
}

type pageData struct {
	Heading     string
	Note        string
	RunID       string
	GeneratedAt string
	Columns     []string
	Rows        [][]string
	Yearly      []string
}

// PageMeta is optional provenance printed under the heading.
type PageMeta struct {
	RunID       string
	GeneratedAt time.Time
}

// RenderHTML writes the report as a standalone HTML document.
func RenderHTML(w io.Writer, summary core.Summary, tax core.Taxonomy) error {
	return RenderHTMLWithMeta(w, summary, tax, PageMeta{})
}

// RenderHTMLWithMeta is RenderHTML with a run id and generation time.
func RenderHTMLWithMeta(w io.Writer, summary core.Summary, tax core.Taxonomy, meta PageMeta) error {
	t, err := reportTemplate()
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}

	table := BuildTable(summary, tax)
	data := pageData{
		Heading: Heading,
		Note:    Note,
		RunID:   meta.RunID,
		Columns: table.Columns,
		Rows:    table.StringRows(),
	}
	if !meta.GeneratedAt.IsZero() {
		data.GeneratedAt = meta.GeneratedAt.UTC().Format(time.RFC3339)
	}
	for _, total := range Totals(summary, tax) {
		data.Yearly = append(data.Yearly, YearlyLine(total))
	}

	if err := t.ExecuteTemplate(w, "report", data); err != nil {
		return fmt.Errorf("execute report template: %w", err)
	}
	return nil
}
