package notify

import (
	"fmt"
	"html"
	"strings"
	"time"
)

const (
	brandName       = "GiveHub"
	defaultMailFrom = "noreply@givehub.org"
	themePrimary    = "#0F766E"
	themeBgBody     = "#F3F4F6"
)

// EmailLayout wraps a plain-text body in the branded HTML shell. The body is escaped
// and line breaks are preserved.
func EmailLayout(title, body string) string {
	paragraphs := strings.Split(strings.TrimSpace(body), "\n")
	var b strings.Builder
	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(p))
		b.WriteString("</p>\n")
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:%s;font-family:-apple-system,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;">
  <table role="presentation" width="100%%" cellspacing="0" cellpadding="0" style="background-color:%s;">
    <tr>
      <td align="center" style="padding:40px 0;">
        <table role="presentation" width="600" cellspacing="0" cellpadding="0" style="background:#FFFFFF;border-radius:8px;">
          <tr><td style="padding:32px 48px 0 48px;"><h1 style="color:%s;font-size:22px;">%s</h1></td></tr>
          <tr><td style="padding:0 48px 32px 48px;font-size:16px;line-height:1.6;color:#374151;">%s</td></tr>
          <tr><td align="center" style="padding:16px 48px 32px 48px;font-size:13px;color:#6B7280;">© %d %s</td></tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`,
		html.EscapeString(title), themeBgBody, themeBgBody, themePrimary, html.EscapeString(title),
		b.String(), time.Now().Year(), brandName)
}
