package report

import (
	"fmt"
	htmltemplate "html/template"
	"io"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/auditguard/auditguard/internal/audit"
	"github.com/auditguard/auditguard/internal/currency"
	"github.com/auditguard/auditguard/internal/domain"
)

// MemoData feeds the internal audit memorandum.
type MemoData struct {
	Reference     string
	Date          time.Time
	To            string
	From          string
	Cutoff        time.Time
	Summary       domain.AuditSummary
	Over90Share   decimal.Decimal
	NoReplyCount  int
	HighRiskNames []string
}

// NewMemo assembles the memorandum for an analyzed ledger.
func NewMemo(summary domain.AuditSummary, entries []domain.LedgerEntry, cutoff, date time.Time) MemoData {
	noReply := 0
	for _, e := range entries {
		if e.ConfirmationStatus == domain.StatusNoReply && e.Outstanding() {
			noReply++
		}
	}
	var names []string
	for _, e := range audit.TopHighRisk(entries, 5) {
		names = append(names, e.CustomerName)
	}

	return MemoData{
		Reference:     fmt.Sprintf("AR-%d-FINAL", cutoff.Year()),
		Date:          date,
		To:            "Chief Financial Officer",
		From:          "AuditGuard AI System",
		Cutoff:        cutoff,
		Summary:       summary,
		Over90Share:   audit.Over90Share(summary),
		NoReplyCount:  noReply,
		HighRiskNames: names,
	}
}

var memoFuncs = map[string]any{
	"idr":     currency.FormatIDR,
	"percent": currency.FormatPercent,
	"longdate": func(t time.Time) string {
		return t.Format("2 January 2006")
	},
}

const memoText = `INTERNAL AUDIT MEMORANDUM
Ref: {{.Reference}}
Date: {{longdate .Date}}
To: {{.To}}
From: {{.From}}

1. Executive Summary
We have performed substantive audit procedures on the Accounts Receivable ledger as of {{longdate .Cutoff}}.
The total gross receivable exposure is {{idr .Summary.TotalAR}}.
Our analysis indicates a net risk exposure of {{idr .Summary.NetExposure}} after collections.

2. Valuation Assertion & Impairment
{{percent .Over90Share}} of the net exposure is overdue by more than 90 days.
Based on the aging profile and risk assessment, we recommend a provision for bad debts (CKPN) of approximately:
    {{idr .Summary.BadDebtProvision}}

3. Key Audit Matters (KAM)
- High Risk Concentration: {{.Summary.CountHighRisk}} customers are identified as High Risk due to significant overdue balances or anomalies in payment patterns (potential lapping).
{{- if .HighRiskNames}}
  Most significant: {{range $i, $n := .HighRiskNames}}{{if $i}}, {{end}}{{$n}}{{end}}.
{{- end}}
- Confirmation Status: {{.NoReplyCount}} outstanding balances returned "No Reply" on positive confirmation requests. Alternative procedures (tracing subsequent payments) were performed.
{{- if .Summary.CountUnknownAge}}
- Data Quality: {{.Summary.CountUnknownAge}} entries carry an unreadable invoice date and were aged as current.
{{- end}}

4. Recommendations
1. Immediately initiate legal collection proceedings for accounts overdue > 120 days.
2. Segregate duties between cash receipt handling and AR ledger recording to mitigate lapping risks.
3. Review credit limits for customers appearing in the High Risk category.

Prepared By: AuditGuard AI
Reviewed By: Audit Partner
`

const memoHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Internal Audit Memorandum {{.Reference}}</title>
<style>
body { font-family: Georgia, serif; max-width: 800px; margin: 2rem auto; color: #1e293b; }
header { display: flex; justify-content: space-between; border-bottom: 2px solid #1e293b; }
.provision { font-size: 1.5rem; font-weight: bold; padding: 1rem; background: #f1f5f9; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<header>
  <div><h1>INTERNAL AUDIT MEMORANDUM</h1><p>Ref: {{.Reference}}</p></div>
  <div><p>Date: {{longdate .Date}}</p><p>To: {{.To}}</p><p>From: {{.From}}</p></div>
</header>
<section>
  <h3>1. Executive Summary</h3>
  <p>We have performed substantive audit procedures on the Accounts Receivable ledger as of {{longdate .Cutoff}}.
  The total gross receivable exposure is <strong>{{idr .Summary.TotalAR}}</strong>.
  Our analysis indicates a net risk exposure of <strong>{{idr .Summary.NetExposure}}</strong> after collections.</p>
</section>
<section>
  <h3>2. Valuation Assertion &amp; Impairment</h3>
  <p>A portion of the receivables ({{percent .Over90Share}}) is overdue by more than 90 days.
  Based on the aging profile and risk assessment, we recommend a provision for bad debts (CKPN) of approximately:</p>
  <div class="provision">{{idr .Summary.BadDebtProvision}}</div>
</section>
<section>
  <h3>3. Key Audit Matters (KAM)</h3>
  <ul>
    <li><strong>High Risk Concentration:</strong> There are {{.Summary.CountHighRisk}} customers identified as High Risk due to significant overdue balances or anomalies in payment patterns (potential lapping).
    {{- if .HighRiskNames}} Most significant: {{range $i, $n := .HighRiskNames}}{{if $i}}, {{end}}{{$n}}{{end}}.{{end}}</li>
    <li><strong>Confirmation Status:</strong> {{.NoReplyCount}} outstanding balances returned "No Reply" on positive confirmation requests. Alternative procedures (tracing subsequent payments) were performed.</li>
    {{- if .Summary.CountUnknownAge}}
    <li><strong>Data Quality:</strong> {{.Summary.CountUnknownAge}} entries carry an unreadable invoice date and were aged as current.</li>
    {{- end}}
  </ul>
</section>
<section>
  <h3>4. Recommendations</h3>
  <ol>
    <li>Immediately initiate legal collection proceedings for accounts overdue &gt; 120 days.</li>
    <li>Segregate duties between cash receipt handling and AR ledger recording to mitigate lapping risks.</li>
    <li>Review credit limits for customers appearing in the High Risk category.</li>
  </ol>
</section>
<footer>
  <p>Prepared By: AuditGuard AI</p>
  <p>Reviewed By: Audit Partner</p>
</footer>
</body>
</html>
`

var (
	memoTextTmpl = template.Must(template.New("memo.txt").Funcs(memoFuncs).Parse(memoText))
	memoHTMLTmpl = htmltemplate.Must(htmltemplate.New("memo.html").Funcs(memoFuncs).Parse(memoHTML))
)

type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// RenderMemorandum writes the memorandum to w in the given format.
func RenderMemorandum(w io.Writer, data MemoData, format Format) error {
	var err error
	switch format {
	case FormatHTML:
		err = memoHTMLTmpl.Execute(w, data)
	case FormatText, "":
		err = memoTextTmpl.Execute(w, data)
	default:
		return fmt.Errorf("unsupported memo format %q", format)
	}
	if err != nil {
		return fmt.Errorf("render memorandum: %w", err)
	}
	return nil
}
