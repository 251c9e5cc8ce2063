package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
	Year       int
}

type followUpEmailData struct {
	baseEmailData
	Name            string
	PropertyAddress string
	VisitOrdinal    string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// renderFollowUp returns the HTML body and a plain-text alternative.
func renderFollowUp(f FollowUp, now time.Time) (string, string, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = "there"
	}

	data := followUpEmailData{
		baseEmailData: baseEmailData{
			Title:      "Thank You for Visiting",
			Heading:    "Thank You for Visiting!",
			Subheading: f.PropertyAddress,
			Year:       now.Year(),
		},
		Name:            name,
		PropertyAddress: f.PropertyAddress,
	}
	if f.FlyerURL != "" {
		data.CTALabel = "Download Property Fact Sheet"
		data.CTAURL = f.FlyerURL
	}

	templateName := "first_visit.html"
	if f.IsReturnVisit() {
		templateName = "return_visit.html"
		data.Title = "Welcome Back!"
		data.Heading = "Welcome Back!"
		data.VisitOrdinal = ordinal(f.VisitCount)
	}

	html, err := renderEmailTemplate(templateName, data)
	if err != nil {
		return "", "", err
	}
	return html, renderFollowUpText(data, f.IsReturnVisit()), nil
}

func renderFollowUpText(data followUpEmailData, returnVisit bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\nHi %s,\n\n", data.Heading, data.PropertyAddress, data.Name)
	if returnVisit {
		fmt.Fprintf(&b, "We noticed this is your %s visit today to %s! We're excited about your interest in this property.\n\n", data.VisitOrdinal, data.PropertyAddress)
	} else {
		fmt.Fprintf(&b, "Thank you for visiting our open house today at %s! We hope you enjoyed touring the property.\n\n", data.PropertyAddress)
	}
	if data.CTAURL != "" {
		fmt.Fprintf(&b, "Download the property fact sheet: %s\n\n", data.CTAURL)
	}
	b.WriteString("If you have any questions or would like to schedule a private showing, just reply to this email.\n\nBest regards,\nYour Real Estate Team\n")
	return b.String()
}

// ordinal renders 2 as "2nd", 11 as "11th", 23 as "23rd".
func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
