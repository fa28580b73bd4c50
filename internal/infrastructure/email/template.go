package email

const digestHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}} - {{.Date}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }
    .container {
      max-width: 680px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #e5e7eb;
      overflow: hidden;
    }
    .header {
      padding: 20px 24px;
      background: linear-gradient(135deg, #1e3a5f 0%, #16324f 100%);
      color: #ffffff;
    }
    .header h1 { margin: 0 0 4px; font-size: 22px; }
    .header .focus { font-size: 13px; opacity: 0.85; }
    .card { padding: 16px 24px; border-top: 1px solid #f3f4f6; }
    .company { font-size: 17px; font-weight: 700; margin-bottom: 6px; }
    .score {
      display: inline-block;
      margin-left: 8px;
      padding: 2px 8px;
      font-size: 11px;
      font-weight: 600;
      border-radius: 4px;
      background: #dcfce7;
      color: #166534;
    }
    .meta { font-size: 13px; color: #374151; }
    .meta span { display: inline-block; margin-right: 14px; }
    .meta b { color: #6b7280; font-weight: 500; }
    .snippet { font-size: 13px; color: #4b5563; margin-top: 8px; }
    .empty { padding: 24px; text-align: center; color: #6b7280; }
    .footer {
      padding: 16px 24px;
      font-size: 12px;
      color: #9ca3af;
      text-align: center;
      background: #f9fafb;
      border-top: 1px solid #f3f4f6;
    }
    a { color: #0b3d91; text-decoration: none; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{.Title}}</h1>
      <div>{{.Date}} &middot; {{.Count}} new announcement(s) in the last {{.Days}} day(s)</div>
      <div class="focus">UK, Europe &amp; Middle East &middot; Seed to Series C &middot; Fintech &amp; SaaS first</div>
    </div>
    {{range .Announcements}}
    <div class="card">
      <div class="company">{{.DisplayCompany}}<span class="score">{{.Score}}</span></div>
      <div class="meta">
        <span><b>Stage</b> {{.DisplayStage}}</span>
        <span><b>Amount</b> {{.DisplayAmount}}</span>
        <span><b>Location</b> {{.DisplayLocation}}</span>
        <span><b>Industry</b> {{.DisplayIndustry}}</span>
      </div>
      {{with snippet .Summary}}<div class="snippet">{{.}}</div>{{end}}
      <div class="meta"><a href="{{.URL}}">{{.Title}}</a>{{with .Source}} &middot; {{.}}{{end}}</div>
    </div>
    {{else}}
    <div class="empty">No new funding announcements matching your criteria were found in this period.</div>
    {{end}}
    <div class="footer">
      Generated automatically by FundingScanner{{with .Sources}}<br/>Sources: {{.}}{{end}}<br/>Generated on {{.GeneratedAt}}
    </div>
  </div>
</body>
</html>
`
