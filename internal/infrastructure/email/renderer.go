package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"

	"FundingScanner/internal/domain"
)

const snippetLen = 200

// RenderedMessage is a ready-to-send digest.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// Renderer renders digests as HTML emails with a plain text fallback.
type Renderer struct {
	tmpl    *template.Template
	sources []string
}

// NewRenderer builds a renderer; sources are listed in the footer.
func NewRenderer(sources []string) *Renderer {
	t := template.Must(template.New("digest").Funcs(template.FuncMap{
		"snippet": snippet,
	}).Parse(digestHTMLTemplate))
	return &Renderer{tmpl: t, sources: sources}
}

type templateData struct {
	Title         string
	Date          string
	GeneratedAt   string
	Days          int
	Count         int
	Announcements []domain.Announcement
	Sources       string
}

// Subject returns the digest subject line.
func Subject(d domain.Digest) string {
	date := d.GeneratedAt.UTC().Format("2006-01-02")
	if d.Kind == domain.DigestWeekly {
		return fmt.Sprintf("Weekly Funding Digest - %d New Opportunities - Week of %s", len(d.Announcements), date)
	}
	return fmt.Sprintf("Daily Funding Digest - %d New Opportunities - %s", len(d.Announcements), date)
}

// Render produces the subject, HTML body and plain text body.
func (r *Renderer) Render(d domain.Digest) (*RenderedMessage, error) {
	data := templateData{
		Title:         "Venture Funding Digest",
		Date:          d.GeneratedAt.UTC().Format("January 02, 2006"),
		GeneratedAt:   d.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"),
		Days:          int(d.Kind.Lookback().Hours() / 24),
		Count:         len(d.Announcements),
		Announcements: d.Announcements,
		Sources:       strings.Join(r.sources, ", "),
	}

	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("render html template: %w", err)
	}

	return &RenderedMessage{
		Subject: Subject(d),
		Text:    renderPlainText(data),
		HTML:    htmlBuf.String(),
	}, nil
}

func renderPlainText(data templateData) string {
	var sb strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(&sb, "%s - %s\n%s\n\n", data.Title, data.Date, rule)
	fmt.Fprintf(&sb, "%d new funding announcement(s) in the last %d day(s)\n", data.Count, data.Days)
	sb.WriteString("Geographic Focus: UK, Europe & Middle East\n")
	sb.WriteString("Stages: Seed to Series C | Priority: Fintech & SaaS\n\n")
	sb.WriteString(rule + "\n\n")

	if data.Count == 0 {
		sb.WriteString("No new funding announcements matching your criteria were found in this period.\n\n")
	}
	for i, a := range data.Announcements {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, a.DisplayCompany())
		fmt.Fprintf(&sb, "   Stage: %s\n", a.DisplayStage())
		fmt.Fprintf(&sb, "   Amount: %s\n", a.DisplayAmount())
		fmt.Fprintf(&sb, "   Location: %s\n", a.DisplayLocation())
		fmt.Fprintf(&sb, "   Industry: %s\n", a.DisplayIndustry())
		fmt.Fprintf(&sb, "   Score: %d\n", a.Score)
		if s := snippet(a.Summary); s != "" {
			fmt.Fprintf(&sb, "   Description: %s\n", s)
		}
		fmt.Fprintf(&sb, "   Read more: %s\n\n", a.URL)
	}

	sb.WriteString(rule + "\n")
	sb.WriteString("Generated automatically by FundingScanner\n")
	if data.Sources != "" {
		fmt.Fprintf(&sb, "Sources: %s\n", data.Sources)
	}
	fmt.Fprintf(&sb, "Generated on %s\n", data.GeneratedAt)
	return sb.String()
}

func snippet(s string) string {
	if utf8.RuneCountInString(s) <= snippetLen {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:snippetLen])) + "..."
}
