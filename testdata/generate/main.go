package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/auditguard/auditguard/internal/ingestion"
)

const invoiceCount = 240

var companies = []string{
	"PT Sinar Abadi", "PT Maju Bersama", "CV Cahaya Timur", "PT Nusantara Logistik",
	"PT Karya Mandiri", "CV Sumber Rejeki", "PT Bumi Perkasa", "PT Mitra Sejahtera",
	"PT Indo Pangan", "CV Tirta Makmur", "PT Graha Elektrik", "PT Samudra Niaga",
	"PT Adi Kencana", "CV Lestari Jaya", "PT Putra Teknik", "PT Citra Medika",
	"PT Harapan Baru", "CV Rimba Raya", "PT Dirgantara Supply", "PT Arta Boga",
	"PT Kreasi Digital", "CV Mega Tekstil", "PT Andalas Agro", "PT Borneo Mineral",
	"PT Sentosa Retail",
}

// manifest records how many rows were generated with each injected pattern so
// the dashboard numbers can be checked by hand.
type manifest struct {
	Seed           int64  `json:"seed"`
	Cutoff         string `json:"cutoff"`
	Rows           int    `json:"rows"`
	LappingRows    int    `json:"injected_round_payments"`
	NoReplyLarge   int    `json:"no_reply_over_10m"`
	BadDates       int    `json:"bad_invoice_dates"`
	Overpaid       int    `json:"overpaid_rows"`
	InvoicesOver90 int    `json:"invoices_over_90_days"`
}

func main() {
	const seed = 42
	rng := rand.New(rand.NewSource(seed))
	baseDir := findTestdataDir()
	cutoff := ingestion.DefaultCutoff

	// Invoice dates: 2023-06-01 to the cutoff.
	startDate := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	dayRange := int(cutoff.Sub(startDate).Hours() / 24)

	path := filepath.Join(baseDir, "ar_ledger.csv")
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", path, err)
		os.Exit(1)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	_ = w.Write(ingestion.LedgerColumns)

	m := manifest{Seed: seed, Cutoff: cutoff.Format("2006-01-02"), Rows: invoiceCount}

	for i := 1; i <= invoiceCount; i++ {
		custIdx := rng.Intn(len(companies))
		custID := fmt.Sprintf("CUST-%03d", custIdx+1)
		invoiceNo := fmt.Sprintf("INV-2023-%04d", i)

		invoiceDate := startDate.AddDate(0, 0, rng.Intn(dayRange+1))
		dueDate := invoiceDate.AddDate(0, 0, 30)
		if ingestion.DaysBetween(cutoff, invoiceDate) > 90 {
			m.InvoicesOver90++
		}

		// Billed between 1,000,000 and 60,000,000, in thousands.
		billed := int64(1_000+rng.Intn(59_000)) * 1_000

		// Payment mix: 35% unpaid, 40% partial, 20% settled, 5% overpaid.
		var received int64
		roll := rng.Float64()
		switch {
		case roll < 0.35:
		case roll < 0.75:
			received = billed*int64(20+rng.Intn(60))/100 + int64(rng.Intn(999)+1)
		case roll < 0.95:
			received = billed
		default:
			received = billed + int64(rng.Intn(500)+1)*1_000
			m.Overpaid++
		}

		// Every 12th invoice carries a round-million payment.
		if i%12 == 0 {
			received = int64(1+rng.Intn(5)) * 1_000_000
			if received > billed {
				received = 1_000_000
			}
			if ingestion.DaysBetween(cutoff, invoiceDate) > 45 {
				m.LappingRows++
			}
		}

		// Confirmation status: 70% Confirmed, 20% No Reply, 10% Disputed.
		status := "Confirmed"
		switch r := rng.Float64(); {
		case r < 0.20:
			status = "No Reply"
			if billed > 10_000_000 {
				m.NoReplyLarge++
			}
		case r < 0.30:
			status = "Disputed"
		}

		paidOn := ""
		if received > 0 {
			p := invoiceDate.AddDate(0, 0, 5+rng.Intn(40))
			if p.After(cutoff) {
				p = cutoff
			}
			paidOn = p.Format("2006-01-02")
		}

		invoiceCell := invoiceDate.Format("2006-01-02")
		// A handful of rows use a local date format the ledger reader rejects.
		if i%47 == 0 {
			invoiceCell = invoiceDate.Format("02/01/2006")
			m.BadDates++
		}

		_ = w.Write([]string{
			custID,
			companies[custIdx],
			invoiceNo,
			invoiceCell,
			dueDate.Format("2006-01-02"),
			fmt.Sprintf("%d", billed),
			fmt.Sprintf("%d", received),
			paidOn,
			status,
		})
	}

	fmt.Printf("Generated %d ledger rows -> ar_ledger.csv\n", invoiceCount)

	writeJSONFile(filepath.Join(baseDir, "ar_ledger_manifest.json"), m)
	fmt.Println("Test data generation complete.")
}

func writeJSONFile(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal %s: %v\n", path, err)
		os.Exit(1)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
		os.Exit(1)
	}
}

func findTestdataDir() string {
	for _, c := range []string{"testdata", "../testdata", "../../testdata"} {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return "testdata"
}
