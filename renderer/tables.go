package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/coinfolio"
)

// LedgerMarkdown renders the reconciled ledger as a markdown table, most recent first.
func LedgerMarkdown(txs []coinfolio.Transaction, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Ledger\n\n")
	if len(txs) == 0 {
		fmt.Fprintln(&b, "No transaction.")
		return b.String()
	}
	fmt.Fprintln(&b, "| User | Time | Account | Operation | Coin | Change | Currency | Fiat Change | Price per Coin | Source |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|---:|:---|---:|---:|:---|")
	for _, tx := range txs {
		rec := tx.Record()
		for i, v := range rec {
			if v == "" {
				rec[i] = null
			}
		}
		// user, time, and both changes.
		for _, i := range []int{0, 1, 5, 7} {
			rec[i] = opts.mask(rec[i])
		}
		fmt.Fprintf(&b, "| %s |\n", strings.Join(escape(rec), " | "))
	}
	return b.String()
}

// HistoryMarkdown renders the price matrix as a markdown table, one row per day.
func HistoryMarkdown(m *coinfolio.PriceMatrix) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Price History (%s)\n\n", m.Currency)
	if m.Len() == 0 {
		fmt.Fprintln(&b, "No price.")
		return b.String()
	}
	header := m.Header()
	header[0] = "Day"
	fmt.Fprintf(&b, "| %s |\n", strings.Join(header, " | "))
	fmt.Fprintf(&b, "|:---|%s\n", strings.Repeat("---:|", len(header)-1))
	for _, rec := range m.Records() {
		for i, v := range rec {
			if v == "" {
				rec[i] = null
			}
		}
		fmt.Fprintf(&b, "| %s |\n", strings.Join(rec, " | "))
	}
	return b.String()
}

// escape protects the pipes inside markdown table cells.
func escape(cells []string) []string {
	for i, c := range cells {
		cells[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return cells
}
