package newsletter

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/digest.html.tmpl
var digestTemplateHTML string

// digestData is everything the digest template needs for one recipient.
// UnsubscribeURL differs per recipient, the rest is shared batch content.
type digestData struct {
	Subject        string
	DateRange      string
	Posts          []Post
	Quotes         []QuoteRow
	SiteURL        string
	UnsubscribeURL string
}

// renderer produces the digest HTML body.
type renderer struct {
	tmpl *template.Template
}

func newRenderer() (*renderer, error) {
	tmpl, err := template.New("digest").Parse(digestTemplateHTML)
	if err != nil {
		return nil, fmt.Errorf("parse digest template: %w", err)
	}
	return &renderer{tmpl: tmpl}, nil
}

func (r *renderer) render(data digestData) (string, error) {
	var buf strings.Builder
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return buf.String(), nil
}
