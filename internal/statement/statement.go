// Package statement parses PhonePe transaction statements (CSV or
// PDF) into transactions. Parsing is best effort: malformed rows are
// skipped and counted, never fatal.
package statement

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"phonepe-analyzer/internal/model"
)

// ErrNoTransactions is returned when a file yields nothing parseable.
var ErrNoTransactions = errors.New("no transactions found in statement")

// Result is the outcome of parsing one statement.
type Result struct {
	Txns         []model.Transaction
	Skipped      int
	SkippedLines []string
}

func (r *Result) skip(line string) {
	r.Skipped++
	if len(r.SkippedLines) < 50 {
		r.SkippedLines = append(r.SkippedLines, line)
	}
}

// Date layouts seen across PhonePe exports and our own CSV export.
var dateLayouts = []string{
	"2006-01-02",
	"Jan 02, 2006",
	"02/01/2006",
}

func parseDate(col string) (time.Time, bool) {
	col = strings.TrimSpace(col)
	for _, layout := range dateLayouts {
		if tm, err := time.Parse(layout, col); err == nil {
			y, m, d := tm.Year(), tm.Month(), tm.Day()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func parseAmount(col string) (decimal.Decimal, bool) {
	col = strings.TrimSpace(col)
	col = strings.TrimPrefix(col, "INR")
	col = strings.ReplaceAll(col, ",", "")
	col = strings.TrimSpace(col)
	d, err := decimal.NewFromString(col)
	if err != nil || d.Sign() < 0 {
		return decimal.Decimal{}, false
	}
	return d, true
}

func parseType(col string) (model.TxnType, bool) {
	switch strings.ToLower(strings.TrimSpace(col)) {
	case "debit":
		return model.Debit, true
	case "credit":
		return model.Credit, true
	}
	return "", false
}
