package report

import (
	"fmt"
	"strings"

	"NewsDigest/internal/domain"
)

// RenderMarkdown renders the report as a Markdown document. It is a pure
// function of the Report value: the same Report always yields byte-identical
// output.
func RenderMarkdown(r domain.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# AI Industry Daily | %s\n\n", r.Date)

	if len(r.Highlights) > 0 {
		b.WriteString("## Highlights\n\n")
		for _, item := range r.Highlights {
			fmt.Fprintf(&b, "- [%s](%s)", item.Title, item.URL)
			if stars := item.Extra["stars"]; stars != "" {
				fmt.Fprintf(&b, " (%s stars)", stars)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, section := range r.Sections {
		fmt.Fprintf(&b, "## %s\n\n", section.Title)
		if section.Analysis != "" {
			b.WriteString(section.Analysis)
			b.WriteString("\n\n")
		}
		for _, item := range section.Items {
			fmt.Fprintf(&b, "- [%s](%s) - %s\n", item.Title, item.URL, item.Source)
		}
		b.WriteString("\n")
	}

	if r.Commentary != "" {
		b.WriteString("## Commentary\n\n")
		b.WriteString(r.Commentary)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "---\n\nGenerated automatically on %s.\n", r.Date)

	return b.String()
}

// RenderText renders the report as plain text, carrying the same content as
// the Markdown rendering without markup. Pure like RenderMarkdown.
func RenderText(r domain.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "AI Industry Daily | %s\n", r.Date)
	b.WriteString(strings.Repeat("=", 40) + "\n\n")

	if len(r.Highlights) > 0 {
		b.WriteString("Highlights\n----------\n")
		for _, item := range r.Highlights {
			fmt.Fprintf(&b, "* %s", item.Title)
			if stars := item.Extra["stars"]; stars != "" {
				fmt.Fprintf(&b, " (%s stars)", stars)
			}
			fmt.Fprintf(&b, "\n  %s\n", item.URL)
		}
		b.WriteString("\n")
	}

	for _, section := range r.Sections {
		fmt.Fprintf(&b, "%s\n%s\n", section.Title, strings.Repeat("-", len(section.Title)))
		if section.Analysis != "" {
			b.WriteString(section.Analysis)
			b.WriteString("\n\n")
		}
		for _, item := range section.Items {
			fmt.Fprintf(&b, "* %s (%s)\n  %s\n", item.Title, item.Source, item.URL)
		}
		b.WriteString("\n")
	}

	if r.Commentary != "" {
		b.WriteString("Commentary\n----------\n")
		b.WriteString(r.Commentary)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Generated automatically on %s.\n", r.Date)

	return b.String()
}
