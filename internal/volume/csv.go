package volume

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/checkvolume/internal/model"
)

// Header is the CSV header shared by every tier file.
const Header = "Account Number,Payee Name,Total Amount,Transaction IDs"

// ErrBadHeader marks a tier file whose first line is not Header.
var ErrBadHeader = errors.New("unexpected tier file header")

const (
	numFields    = 4
	colAccount   = 0
	colPayee     = 1
	colTotal     = 2
	colTxnIDs    = 3
	amountPlaces = 2
)

// ReadRows reads all rows from a tier CSV after checking its header.
// Empty input yields no rows.
func ReadRows(r io.Reader) ([]model.OutputRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // header is checked by content, rows by UnmarshalRow

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading tier CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}
	if got := strings.TrimPrefix(strings.Join(records[0], ","), "\ufeff"); got != Header {
		return nil, fmt.Errorf("%w: %q", ErrBadHeader, got)
	}

	var rows []model.OutputRow
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteRows writes a complete tier CSV (including header).
func WriteRows(w io.Writer, rows []model.OutputRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		if err := cw.Write(MarshalRow(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendRows appends rows to an existing tier CSV (no header).
func AppendRows(w io.Writer, rows []model.OutputRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, row := range rows {
		if err := cw.Write(MarshalRow(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRow converts an OutputRow to a CSV record.
func MarshalRow(row model.OutputRow) []string {
	rec := make([]string, numFields)
	rec[colAccount] = row.AccountNumber
	rec[colPayee] = row.PayeeName
	rec[colTotal] = row.TotalAmount.StringFixed(amountPlaces)
	rec[colTxnIDs] = row.TransactionIDs
	return rec
}

// UnmarshalRow converts a CSV record to an OutputRow.
func UnmarshalRow(record []string) (model.OutputRow, error) {
	if len(record) != numFields {
		return model.OutputRow{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	total, err := decimal.NewFromString(record[colTotal])
	if err != nil {
		return model.OutputRow{}, fmt.Errorf("parsing total %q: %w", record[colTotal], err)
	}

	return model.OutputRow{
		AccountNumber:  record[colAccount],
		PayeeName:      record[colPayee],
		TotalAmount:    total,
		TransactionIDs: record[colTxnIDs],
	}, nil
}
