package currency

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// LedgerUnit is the currency ledger amounts are denominated in.
var LedgerUnit = currency.IDR

// LappingUnit is the round payment size used by the lapping heuristic.
var LappingUnit = decimal.NewFromInt(1_000_000)

const symbolIDR = "Rp"

var printer = message.NewPrinter(language.Indonesian)

// numericPrefix is the leading number of a cell; trailing text is ignored.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount reads a ledger cell as a non-negative amount from its leading
// number, so "15000000 IDR" reads as 15000000. A cell that does not start with
// a number, or is negative, reads as zero.
func ParseAmount(s string) decimal.Decimal {
	m := numericPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(m, "+"))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// IsRoundPayment reports whether amount is a positive exact multiple of the
// lapping unit.
func IsRoundPayment(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Mod(LappingUnit).IsZero()
}

// FormatIDR renders an amount the way Indonesian ledgers print rupiah,
// e.g. "Rp 15.000.000,00".
func FormatIDR(amount decimal.Decimal) string {
	scale, _ := currency.Standard.Rounding(LedgerUnit)
	v, _ := amount.Round(int32(scale)).Float64()
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + symbolIDR + " " + printer.Sprint(number.Decimal(v, number.Scale(scale)))
}

// FormatPercent renders share (0..1) as a percentage with one decimal.
func FormatPercent(share decimal.Decimal) string {
	v, _ := share.Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return printer.Sprint(number.Decimal(v, number.Scale(1))) + "%"
}
