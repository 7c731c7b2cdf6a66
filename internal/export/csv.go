// Package export writes the categorized table to downloadable files
// and reads our own CSV back for re-import.
package export

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"phonepe-analyzer/internal/model"
)

// Header is the CSV header for categorized exports.
const Header = "Date,Name,Debit/Credit,Amount,Category"

const (
	numFields  = 5
	dateFormat = "2006-01-02"
	colDate    = 0
	colName    = 1
	colType    = 2
	colAmount  = 3
	colCat     = 4
)

// WriteCSV writes the table with header. Amounts are fixed to two
// decimal places so a re-import compares equal.
func WriteCSV(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i, t := range txns {
		if err := cw.Write(marshalRow(t)); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}
	return cw.Error()
}

// ReadCSV reads a categorized export back. Unlike the statement
// parser this is strict: the file is one we wrote ourselves.
func ReadCSV(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading categorized CSV")
	}
	if len(records) == 0 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] { // skip header
		t, err := unmarshalRow(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+2)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

func marshalRow(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colDate] = t.Date.Format(dateFormat)
	row[colName] = t.Desc
	row[colType] = string(t.Type)
	row[colAmount] = t.Amount.StringFixed(2)
	row[colCat] = t.Category
	return row
}

func unmarshalRow(rec []string) (model.Transaction, error) {
	var zero model.Transaction

	date, err := timeParse(rec[colDate])
	if err != nil {
		return zero, err
	}
	amount, err := decimal.NewFromString(rec[colAmount])
	if err != nil {
		return zero, errors.Wrapf(err, "bad amount %q", rec[colAmount])
	}

	var typ model.TxnType
	switch rec[colType] {
	case string(model.Debit):
		typ = model.Debit
	case string(model.Credit):
		typ = model.Credit
	default:
		return zero, errors.Errorf("bad direction %q", rec[colType])
	}

	t := model.NewTransaction(date, rec[colName], amount, typ)
	t.Category = rec[colCat]
	return t, nil
}
