// Package assistant connects an analyzed ledger to the hosted generative
// model: the prompt digest, a text Q&A service and the live audio session.
package assistant

import (
	"fmt"
	"strings"

	"github.com/auditguard/auditguard/internal/audit"
	"github.com/auditguard/auditguard/internal/currency"
	"github.com/auditguard/auditguard/internal/domain"
)

const topHighRiskSamples = 10

// BuildSystemInstruction renders the auditor persona together with the
// headline figures of the ledger and its first ten High risk customers.
func BuildSystemInstruction(summary domain.AuditSummary, entries []domain.LedgerEntry) string {
	top := audit.TopHighRisk(entries, topHighRiskSamples)
	samples := make([]string, len(top))
	for i, e := range top {
		samples[i] = fmt.Sprintf("%s (Overdue: %d days, Amount: %s)",
			e.CustomerName, e.DaysOverdue, currency.FormatIDR(e.BilledAmount))
	}

	var b strings.Builder
	b.WriteString("Role: You are \"AuditGuard\", a Senior AI Auditor and Data Analyst.\n")
	b.WriteString("Task: Perform substantive audit procedures on Accounts Receivable.\n\n")
	b.WriteString("Context Data:\n")
	fmt.Fprintf(&b, "- Total AR: %s\n", currency.FormatIDR(summary.TotalAR))
	fmt.Fprintf(&b, "- Net Exposure: %s\n", currency.FormatIDR(summary.NetExposure))
	fmt.Fprintf(&b, "- High Risk Exposure: %s\n", currency.FormatIDR(summary.AgingBuckets.Over90))
	fmt.Fprintf(&b, "- High Risk Entries: %d\n", summary.CountHighRisk)
	fmt.Fprintf(&b, "- Top High Risk Customers: %s\n\n", strings.Join(samples, ", "))
	b.WriteString("Capabilities:\n")
	b.WriteString("1. Analyze fraud patterns like 'Lapping' or bad debts.\n")
	b.WriteString("2. If asked about a specific customer not in the top list, say you are checking the ledger.\n")
	b.WriteString("3. Speak professionally, concisely, like a consultant. Do NOT read long tables. Give executive summaries.\n")
	b.WriteString("4. If finding balances > 90 days, suggest CKPN (Impairment Loss).\n")
	return b.String()
}
