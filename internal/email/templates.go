package email

import (
	"fmt"
	"html"
	"strings"

	"pagewatch/internal/config"
	"pagewatch/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0f766e; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 22px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        blockquote { margin: 8px 0; padding-left: 12px; border-left: 3px solid #99f6e4; color: #4b5563; }
        code { background: #e5e7eb; padding: 2px 6px; border-radius: 4px; font-family: monospace; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// KeywordAlert generates the email sent when notable keywords appear on a
// watched page.
func (t *Templates) KeywordAlert(target *models.Target, alert *models.Alert) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] %s: %s", t.cfg.SiteTitle, target.Name, strings.Join(alert.Keywords, ", "))

	var htmlKeywords, textKeywords strings.Builder
	for _, kw := range alert.Keywords {
		fmt.Fprintf(&htmlKeywords, `<div class="info-box"><p><span class="label">Keyword:</span> <code>%s</code></p>`, html.EscapeString(kw))
		fmt.Fprintf(&textKeywords, "\n* %s\n", kw)

		contexts := alert.ContextsFor(kw)
		for _, c := range contexts {
			fmt.Fprintf(&htmlKeywords, "<blockquote>%s</blockquote>", html.EscapeString(c))
			fmt.Fprintf(&textKeywords, "  > %s\n", c)
		}
		if len(contexts) == 0 {
			htmlKeywords.WriteString("<p><em>No surrounding sentence found.</em></p>")
		}
		htmlKeywords.WriteString("</div>")
	}

	content := fmt.Sprintf(`
        <p>New or more frequent keywords were found on a page watched by <strong>%s</strong>.</p>
        <p><span class="label">Page:</span> <a href="%s">%s</a></p>
        %s
        <p><a href="%s/api/v1/targets/%s/alerts">View recent alerts</a></p>
    `,
		html.EscapeString(target.Name),
		html.EscapeString(alert.URL),
		html.EscapeString(alert.URL),
		htmlKeywords.String(),
		t.cfg.BaseURL,
		target.ID,
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`Keyword alert for %s

Page: %s
%s
Recent alerts: %s/api/v1/targets/%s/alerts

--
%s
%s`,
		target.Name,
		alert.URL,
		textKeywords.String(),
		t.cfg.BaseURL,
		target.ID,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return
}
