package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CheckRecord holds the fields recovered from one check image.
// Empty strings mean the field was not found.
type CheckRecord struct {
	Source         string // image file name
	PayeeName      string
	Amount         decimal.NullDecimal
	AccountNumber  string
	TransactionIDs string // space-separated
}

// HasAccount reports whether an account number was extracted.
func (r CheckRecord) HasAccount() bool {
	return r.AccountNumber != ""
}

// HasAmount reports whether an amount was extracted.
func (r CheckRecord) HasAmount() bool {
	return r.Amount.Valid
}

// AccountAggregate accumulates the checks seen for one account during a run.
type AccountAggregate struct {
	AccountNumber  string
	PayeeName      string // first seen
	Total          decimal.Decimal
	TransactionIDs []string
}

// Add folds a record into the aggregate. A missing amount counts as zero.
func (a *AccountAggregate) Add(rec CheckRecord) {
	if rec.Amount.Valid {
		a.Total = a.Total.Add(rec.Amount.Decimal)
	}
	a.TransactionIDs = append(a.TransactionIDs, rec.TransactionIDs)
}

// Row converts the aggregate into an output row.
func (a *AccountAggregate) Row() OutputRow {
	return OutputRow{
		AccountNumber:  a.AccountNumber,
		PayeeName:      a.PayeeName,
		TotalAmount:    a.Total,
		TransactionIDs: strings.Join(a.TransactionIDs, " "),
	}
}

// OutputRow is one line of a tier CSV.
type OutputRow struct {
	AccountNumber  string
	PayeeName      string
	TotalAmount    decimal.Decimal
	TransactionIDs string
}

// RowFromRecord converts a single record into an output row.
func RowFromRecord(rec CheckRecord) OutputRow {
	return OutputRow{
		AccountNumber:  rec.AccountNumber,
		PayeeName:      rec.PayeeName,
		TotalAmount:    rec.Amount.Decimal,
		TransactionIDs: rec.TransactionIDs,
	}
}
