// Package extract pulls check fields out of OCR text.
//
// OCR output is noisy, so every field is looked up independently and a
// failed lookup only leaves that field empty.
package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/checkvolume/internal/model"
)

// space matches what OCR engines emit as blanks: ASCII whitespace plus
// vertical tab, Unicode separators (NBSP, thin and ideographic spaces,
// line and paragraph separators) and the zero-width no-break space.
const space = `\s\v\p{Z}\x{FEFF}`

var (
	payeeRe   = regexp.MustCompile(`(?i)PAY TO THE.*?([\w` + space + `.]+)`)
	amountRe  = regexp.MustCompile(`\$[` + space + `]*([\d,]+\.\d{2})`)
	accountRe = regexp.MustCompile(`(?i)Account[` + space + `]*Number[.:#` + space + `]*([A-Z0-9]+)[` + space + `]*\*([\w` + space + `]+)`)
	spaceRe   = regexp.MustCompile(`[` + space + `]+`)
)

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Z, r) || r == '\uFEFF'
}

func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// Check extracts every field it can find in text.
func Check(source, text string) model.CheckRecord {
	rec := model.CheckRecord{Source: source}
	rec.PayeeName, _ = Payee(text)
	if amt, ok := Amount(text); ok {
		rec.Amount = decimal.NewNullDecimal(amt)
	}
	rec.AccountNumber, rec.TransactionIDs, _ = Account(text)
	return rec
}

// Payee returns the text following the first "PAY TO THE" phrase.
func Payee(text string) (string, bool) {
	m := payeeRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	name := trim(m[1])
	return name, name != ""
}

// Amount returns the first dollar amount with two decimal places.
// "$12,345.67" -> 12345.67
func Amount(text string) (decimal.Decimal, bool) {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Account returns the account number and the transaction IDs that follow
// the asterisk after it. Runs of whitespace in the IDs collapse to one space.
// "Account Number: AB123 *TX1  TX2" -> "AB123", "TX1 TX2"
func Account(text string) (number, txnIDs string, ok bool) {
	m := accountRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	number = trim(m[1])
	txnIDs = trim(spaceRe.ReplaceAllString(m[2], " "))
	return number, txnIDs, true
}
