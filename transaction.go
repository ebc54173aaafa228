package coinfolio

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Operations found in exchange exports that matter to reconciliation and aggregation.
const (
	OperationTransactionRelated = "Transaction Related"
	OperationConvert            = "Binance Convert"
	OperationDeposit            = "Deposit"
	OperationFiatDeposit        = "Fiat Deposit"
)

// pairedOperations are the operations whose fiat legs must be paired with a coin leg.
var pairedOperations = []string{OperationTransactionRelated, OperationConvert}

// depositOperations are the operations summed into the synthetic fiat position.
var depositOperations = []string{OperationDeposit, OperationFiatDeposit}

// MatchTolerance is the largest gap between the two legs of a trade.
const MatchTolerance = 2 * time.Second

// RawTransaction is one row of an exchange export: a single currency leg.
type RawTransaction struct {
	UserID     string
	Time       time.Time
	Account    string
	Operation  string
	Coin       string
	Change     decimal.Decimal
	SourceFile string
}

// isFiscal reports whether the row is the fiat leg of a paired operation.
func (r RawTransaction) isFiscal(currency string) bool {
	return r.Coin == currency && slices.Contains(pairedOperations, r.Operation)
}

func (r RawTransaction) String() string {
	return fmt.Sprintf("%s %s %q %s %s (%s)", r.Time.Format(time.RFC3339), r.UserID, r.Operation, r.Change, r.Coin, r.SourceFile)
}

// Transaction is a reconciled ledger row: a coin leg with its paired fiat leg, if any.
//
// Nullable columns use decimal.NullDecimal, and empty strings for Coin and Currency.
type Transaction struct {
	UserID       string
	Time         time.Time
	Account      string
	Operation    string
	Coin         string
	ChangeCoin   decimal.NullDecimal
	Currency     string
	ChangeFiscal decimal.NullDecimal
	PricePerCoin decimal.NullDecimal
	SourceFile   string
}

// IsDeposit reports whether the row is a deposit.
func (t Transaction) IsDeposit() bool { return slices.Contains(depositOperations, t.Operation) }

// LedgerColumns is the fixed column order of a ledger.
var LedgerColumns = []string{
	"User_ID",
	"UTC_Time",
	"Account",
	"Operation",
	"Coin",
	"Change_Coin",
	"Currency",
	"Change_Fiscal",
	"Price_per_Coin",
	"source_file",
}

// Record returns the row as strings in LedgerColumns order. Nulls are empty strings.
func (t Transaction) Record() []string {
	return []string{
		t.UserID,
		t.Time.UTC().Format(TimeLayout),
		t.Account,
		t.Operation,
		t.Coin,
		nullString(t.ChangeCoin),
		t.Currency,
		nullString(t.ChangeFiscal),
		nullString(t.PricePerCoin),
		t.SourceFile,
	}
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// null is the invalid NullDecimal.
var null = decimal.NullDecimal{}

func valid(d decimal.Decimal) decimal.NullDecimal { return decimal.NewNullDecimal(d) }
