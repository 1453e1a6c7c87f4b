package email

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	linkExpr = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldExpr = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

// markdownToHTML converts the rendered Markdown digest to a simple styled
// HTML body for the email's HTML part. It covers the constructs the
// renderers emit: headings, lists, links, bold, and horizontal rules.
func markdownToHTML(markdown string) string {
	var body strings.Builder
	inList := false

	closeList := func() {
		if inList {
			body.WriteString("</ul>\n")
			inList = false
		}
	}

	for _, line := range strings.Split(markdown, "\n") {
		stripped := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(stripped, "### "):
			closeList()
			fmt.Fprintf(&body, "<h3>%s</h3>\n", inline(stripped[4:]))
		case strings.HasPrefix(stripped, "## "):
			closeList()
			fmt.Fprintf(&body, "<h2>%s</h2>\n", inline(stripped[3:]))
		case strings.HasPrefix(stripped, "# "):
			closeList()
			fmt.Fprintf(&body, "<h1>%s</h1>\n", inline(stripped[2:]))
		case strings.HasPrefix(stripped, "- ") || strings.HasPrefix(stripped, "* "):
			if !inList {
				body.WriteString("<ul>\n")
				inList = true
			}
			fmt.Fprintf(&body, "<li>%s</li>\n", inline(stripped[2:]))
		case strings.HasPrefix(stripped, "---"):
			closeList()
			body.WriteString("<hr>\n")
		case stripped == "":
			closeList()
		default:
			closeList()
			fmt.Fprintf(&body, "<p>%s</p>\n", inline(stripped))
		}
	}
	closeList()

	return fmt.Sprintf(
		`<div style="max-width:700px;margin:0 auto;padding:20px;font-family:Helvetica,Arial,sans-serif;line-height:1.6;color:#333;">%s</div>`,
		body.String(),
	)
}

func inline(s string) string {
	s = linkExpr.ReplaceAllString(s, `<a href="$2">$1</a>`)
	s = boldExpr.ReplaceAllString(s, "<strong>$1</strong>")
	return s
}
