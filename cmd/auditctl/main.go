// Command auditctl runs the AR ledger audit offline against a CSV file.
//
//	auditctl summary  ledger.csv
//	auditctl findings ledger.csv -out findings.csv
//	auditctl memo     ledger.csv -format html -out memo.html
//	auditctl export   ledger.csv -out workbook.xlsx
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/auditguard/auditguard/internal/audit"
	"github.com/auditguard/auditguard/internal/currency"
	"github.com/auditguard/auditguard/internal/domain"
	"github.com/auditguard/auditguard/internal/ingestion"
	"github.com/auditguard/auditguard/internal/logger"
	"github.com/auditguard/auditguard/internal/report"
)

const usage = `usage: auditctl <summary|findings|memo|export> <ledger.csv> [flags]`

func main() {
	log := logger.New(os.Getenv("LOG_LEVEL"), "console")

	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, path := os.Args[1], os.Args[2]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	cutoffFlag := fs.String("cutoff", ingestion.DefaultCutoff.Format("2006-01-02"), "audit cutoff date (YYYY-MM-DD)")
	out := fs.String("out", "", "output file (default stdout)")
	format := fs.String("format", "text", "memo format: text or html")
	if err := fs.Parse(os.Args[3:]); err != nil {
		log.Fatal().Err(err).Msg("parse flags")
	}

	cutoff, err := time.Parse("2006-01-02", *cutoffFlag)
	if err != nil {
		log.Fatal().Err(err).Str("cutoff", *cutoffFlag).Msg("invalid cutoff")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("read ledger")
	}

	now := time.Now().UTC()
	a, err := ingestion.Analyze(data, cutoff, now)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("analyze ledger")
	}
	log.Info().
		Str("path", path).
		Int("entries", a.Summary.EntryCount).
		Int("findings", len(a.Findings)).
		Msg("ledger analyzed")

	w, closeOut, err := output(*out)
	if err != nil {
		log.Fatal().Err(err).Msg("open output")
	}
	defer closeOut()

	switch cmd {
	case "summary":
		err = writeSummary(w, a.Summary)
	case "findings":
		err = report.WriteFindingsCSV(w, a.Findings)
	case "memo":
		err = report.RenderMemorandum(w, report.NewMemo(a.Summary, a.Entries, cutoff, now), report.Format(*format))
	case "export":
		err = report.WriteWorkbook(w, report.WorkbookData{
			Upload:   upload(path, cutoff, now, a.Summary),
			Summary:  a.Summary,
			Findings: a.Findings,
			Entries:  a.Entries,
		})
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("command failed")
	}
}

func output(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

type summaryView struct {
	Entries          int            `json:"entries"`
	TotalAR          string         `json:"total_ar"`
	TotalCollections string         `json:"total_collections"`
	NetExposure      string         `json:"net_exposure"`
	HighRisk         int            `json:"high_risk"`
	UnknownAge       int            `json:"unknown_age"`
	BadDebtProvision string         `json:"bad_debt_provision"`
	Over90Share      string         `json:"over90_share"`
	Aging            map[string]any `json:"aging"`
}

func writeSummary(w io.Writer, s domain.AuditSummary) error {
	aging := make(map[string]any, len(domain.AllBuckets))
	for _, b := range domain.AllBuckets {
		aging[report.BucketLabel(b)] = currency.FormatIDR(s.AgingBuckets.Get(b))
	}
	v := summaryView{
		Entries:          s.EntryCount,
		TotalAR:          currency.FormatIDR(s.TotalAR),
		TotalCollections: currency.FormatIDR(s.TotalCollections),
		NetExposure:      currency.FormatIDR(s.NetExposure),
		HighRisk:         s.CountHighRisk,
		UnknownAge:       s.CountUnknownAge,
		BadDebtProvision: currency.FormatIDR(s.BadDebtProvision),
		Over90Share:      currency.FormatPercent(audit.Over90Share(s)),
		Aging:            aging,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func upload(path string, cutoff, at time.Time, s domain.AuditSummary) domain.LedgerUpload {
	return domain.LedgerUpload{
		Filename:         filepath.Base(path),
		CutoffDate:       cutoff,
		RowCount:         s.EntryCount,
		TotalAR:          s.TotalAR,
		TotalCollections: s.TotalCollections,
		NetExposure:      s.NetExposure,
		CountHighRisk:    s.CountHighRisk,
		BadDebtProvision: s.BadDebtProvision,
		UploadedAt:       at,
	}
}
