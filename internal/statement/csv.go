package statement

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"

	"phonepe-analyzer/internal/model"
)

// Column names accepted in the header row. "Category" is optional so
// our own exported CSV can be imported back.
const (
	colDate     = "date"
	colName     = "name"
	colType     = "debit/credit"
	colAmount   = "amount"
	colCategory = "category"
)

// ParseCSV reads a PhonePe CSV export (or our own categorized export).
// The first row must be a header naming at least Date, Name,
// Debit/Credit and Amount, in any order. Rows missing a required field
// are skipped and counted.
func ParseCSV(in io.Reader) (Result, error) {
	var res Result

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return res, errors.Wrap(ErrNoTransactions, "empty file")
	}
	if err != nil {
		return res, errors.Wrap(err, "unable to read CSV header")
	}

	idx := make(map[string]int)
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colDate, colName, colType, colAmount} {
		if _, ok := idx[required]; !ok {
			return res, errors.Errorf("CSV header missing required column %q", required)
		}
	}

	field := func(cols []string, name string) (string, bool) {
		i, ok := idx[name]
		if !ok || i >= len(cols) {
			return "", false
		}
		return cols[i], true
	}

	for {
		cols, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.skip(strings.Join(cols, ","))
			continue
		}

		rawDate, _ := field(cols, colDate)
		rawName, _ := field(cols, colName)
		rawType, _ := field(cols, colType)
		rawAmount, _ := field(cols, colAmount)

		date, okDate := parseDate(rawDate)
		amount, okAmount := parseAmount(rawAmount)
		typ, okType := parseType(rawType)
		name := strings.TrimSpace(rawName)

		if !okDate || !okAmount || !okType || len(name) == 0 {
			res.skip(strings.Join(cols, ","))
			continue
		}

		t := model.NewTransaction(date, name, amount, typ)
		if cat, ok := field(cols, colCategory); ok {
			t.Category = strings.TrimSpace(cat)
		}
		res.Txns = append(res.Txns, t)
	}

	if len(res.Txns) == 0 {
		return res, ErrNoTransactions
	}
	model.SortByDate(res.Txns)
	return res, nil
}
