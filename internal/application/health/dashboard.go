package health

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// RenderDashboardHTML returns the status page served at GET /.
func RenderDashboardHTML(h CollectResult) string {
	headline := "All Systems Operational"
	if h.Status != "ok" {
		headline = "System Issues Detected"
	}

	names := make([]string, 0, len(h.Dependencies))
	for name := range h.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	var deps strings.Builder
	for _, name := range names {
		d := h.Dependencies[name]
		class := "err"
		if d.Status == "connected" {
			class = "ok"
		}
		ping := "-"
		if p, ok := d.PingMs.(*int64); ok && p != nil {
			ping = fmt.Sprintf("%d ms", *p)
		}
		fmt.Fprintf(&deps, `<tr><td>%s</td><td class="%s">%s</td><td>%s</td></tr>`,
			html.EscapeString(name), class, html.EscapeString(d.Status), ping)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta http-equiv="refresh" content="30">
  <title>GiveHub · API Status</title>
  <style>
    body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background: #F3F4F6; color: #1F2937; margin: 0; padding: 40px; }
    .card { max-width: 720px; margin: 0 auto; background: #fff; border-radius: 12px; padding: 32px; }
    h1 { color: #0F766E; margin-top: 0; }
    table { width: 100%%; border-collapse: collapse; margin-bottom: 24px; }
    td { padding: 6px 0; border-bottom: 1px solid #E5E7EB; }
    .ok { color: #0F766E; font-weight: 700; }
    .err { color: #DC2626; font-weight: 700; }
  </style>
</head>
<body>
  <div class="card">
    <h1>%s</h1>
    <table>
      <tr><td>Total requests</td><td>%d</td></tr>
      <tr><td>Failed</td><td>%d</td></tr>
      <tr><td>Success rate</td><td>%s%%</td></tr>
      <tr><td>Avg latency</td><td>%v ms</td></tr>
      <tr><td>Logged errors</td><td><a href="/health/errors">%d</a></td></tr>
    </table>
    <table>%s</table>
    <table>
      <tr><td>Uptime</td><td>%ds</td></tr>
      <tr><td>Heap used</td><td>%d MB</td></tr>
      <tr><td>Goroutines</td><td>%d</td></tr>
      <tr><td>Platform</td><td>%s · %s</td></tr>
    </table>
  </div>
</body>
</html>`,
		headline,
		h.Traffic.TotalRequests, h.Traffic.FailedCount, h.Traffic.SuccessRate, h.Traffic.AvgResponseTime, h.Traffic.LoggedErrors,
		deps.String(),
		h.Runtime.UptimeSeconds, h.Runtime.Memory.HeapUsed, h.Runtime.Goroutines,
		html.EscapeString(h.Runtime.Platform), html.EscapeString(h.Runtime.GoVersion))
}
