package renderer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"

	"github.com/etnz/coinfolio"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// WriteLedgerCSV writes the ledger with its fixed columns. Nulls are empty cells.
func WriteLedgerCSV(w io.Writer, txs []coinfolio.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(coinfolio.LedgerColumns); err != nil {
		return err
	}
	for _, tx := range txs {
		if err := cw.Write(tx.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// PositionColumns is the column order of the holdings export, before the horizons.
var PositionColumns = []string{
	"User_ID",
	"Coin",
	"Coin_Name",
	"Total_Holdings",
	"Total_Fiat_Invested",
	"Invested_Since",
	"Coin_Price",
	"Current_Worth",
	"Current_Return",
	"Price_Timestamp",
}

// WriteHoldingsCSV writes every position, the fiat one included, with raw values.
// Horizon returns are in percent. Nulls are empty cells.
func WriteHoldingsCSV(w io.Writer, positions []coinfolio.Position, horizons []coinfolio.Horizon, opts Options) error {
	cw := csv.NewWriter(w)
	header := append([]string{}, PositionColumns...)
	for _, h := range horizons {
		header = append(header, h.Label+"_Return")
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range positions {
		since := ""
		if !p.InvestedSince.IsZero() {
			since = p.InvestedSince.UTC().Format(coinfolio.TimeLayout)
		}
		rec := []string{
			opts.mask(p.UserID),
			p.Coin,
			p.CoinName,
			opts.mask(nullCell(p.TotalHoldings)),
			opts.mask(p.TotalFiatInvested.String()),
			opts.mask(since),
			nullCell(p.CoinPrice),
			opts.mask(nullCell(p.CurrentWorth)),
			nullCell(p.CurrentReturn),
			p.PriceTimestamp.UTC().Format(coinfolio.TimeLayout),
		}
		for _, h := range horizons {
			if r, ok := p.Return(h); ok {
				rec = append(rec, fmt.Sprintf("%.4f", float64(r)))
			} else {
				rec = append(rec, "")
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHistoryCSV writes the price matrix, one row per day.
func WriteHistoryCSV(w io.Writer, m *coinfolio.PriceMatrix) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(m.Header()); err != nil {
		return err
	}
	if err := cw.WriteAll(m.Records()); err != nil {
		return err
	}
	return cw.Error()
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { padding: 0.3em 0.8em; border-bottom: 1px solid #ddd; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML converts a markdown report into a standalone HTML page.
func HTML(w io.Writer, title, markdown string) error {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return fmt.Errorf("cannot convert markdown: %w", err)
	}
	return page.Execute(w, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body.String())})
}

func nullCell(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
