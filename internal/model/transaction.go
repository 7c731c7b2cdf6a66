package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxnType is the direction of a transaction as it appears on a
// PhonePe statement.
type TxnType string

const (
	Debit  TxnType = "Debit"
	Credit TxnType = "Credit"
)

// CategoryOther is the fallback category when nothing matches.
const CategoryOther = "Other"

// Transaction is one parsed financial movement. Immutable after parse
// except for Category, which the categorizer and user edits overwrite.
type Transaction struct {
	Key      uuid.UUID       `json:"key"`
	Date     time.Time       `json:"date"`
	Desc     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Type     TxnType         `json:"type"`
	Category string          `json:"category"`
}

// NewTransaction assigns a fresh key so the row can be identified and
// persisted as its category changes.
func NewTransaction(date time.Time, desc string, amount decimal.Decimal, typ TxnType) Transaction {
	return Transaction{
		Key:    uuid.New(),
		Date:   date,
		Desc:   desc,
		Amount: amount,
		Type:   typ,
	}
}

// IsDebit reports whether the transaction is an expense.
func (t Transaction) IsDebit() bool { return t.Type == Debit }

// SortByDate orders transactions chronologically, oldest first.
func SortByDate(txns []Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		return txns[i].Date.Before(txns[j].Date)
	})
}
