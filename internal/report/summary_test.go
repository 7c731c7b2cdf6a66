package report

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonepe-analyzer/internal/model"
)

func txn(y, m, d int, desc, amount, cat string, typ model.TxnType) model.Transaction {
	dec, _ := decimal.NewFromString(amount)
	t := model.NewTransaction(time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), desc, dec, typ)
	t.Category = cat
	return t
}

func sample() []model.Transaction {
	return []model.Transaction{
		txn(2023, 6, 1, "SWIGGY", "249.00", "Food", model.Debit),
		txn(2023, 6, 2, "ZOMATO", "151.00", "Food", model.Debit),
		txn(2023, 6, 3, "UBER", "180.50", "Transport", model.Debit),
		txn(2023, 7, 1, "DMART", "950.00", "Groceries", model.Debit),
		txn(2023, 7, 2, "SALARY", "50000.00", "", model.Credit), // credits excluded
	}
}

func TestByCategory(t *testing.T) {
	rows := ByCategory(sample())
	require.Len(t, rows, 3)

	// Largest first.
	assert.Equal(t, "Groceries", rows[0].Category)
	assert.Equal(t, "950.00", rows[0].Total.StringFixed(2))
	assert.Equal(t, "Food", rows[1].Category)
	assert.Equal(t, "400.00", rows[1].Total.StringFixed(2))
	assert.Equal(t, "Transport", rows[2].Category)
}

func TestByCategoryEmptyCategoryIsOther(t *testing.T) {
	rows := ByCategory([]model.Transaction{
		txn(2023, 6, 1, "X", "10.00", "", model.Debit),
	})
	require.Len(t, rows, 1)
	assert.Equal(t, model.CategoryOther, rows[0].Category)
}

func TestByMonth(t *testing.T) {
	rows := ByMonth(sample())
	require.Len(t, rows, 2)
	assert.Equal(t, "2023-06", rows[0].Month)
	assert.Equal(t, "580.50", rows[0].Total.StringFixed(2))
	assert.Equal(t, "2023-07", rows[1].Month)
	assert.Equal(t, "950.00", rows[1].Total.StringFixed(2))
}

func TestTotalDebits(t *testing.T) {
	assert.Equal(t, "1530.50", TotalDebits(sample()).StringFixed(2))
	assert.True(t, TotalDebits(nil).IsZero())
}

func TestCharts(t *testing.T) {
	data := Charts(sample())
	require.Len(t, data.Pie, 3)
	assert.Equal(t, data.Pie, data.Bar)
	assert.Equal(t, "Groceries", data.Pie[0].Label)
	assert.InDelta(t, 950.0, data.Pie[0].Value, 0.001)
	require.Len(t, data.Monthly, 2)
}

func TestContextText(t *testing.T) {
	txns := []model.Transaction{
		txn(2023, 6, 1, "SWIGGY", "249.00", "Food", model.Debit),
		txn(2023, 7, 2, "RAHUL K", "1200.00", "", model.Credit),
	}
	s := ContextText(txns, 0)

	assert.Contains(t, s, "On 2023-06-01, paid 249.00 INR to SWIGGY in category Food.")
	assert.Contains(t, s, "received 1200.00 INR from RAHUL K")
	assert.Equal(t, 2, strings.Count(s, "\n"))
}

func TestContextTextTruncation(t *testing.T) {
	var txns []model.Transaction
	for i := 0; i < 100; i++ {
		txns = append(txns, txn(2023, 6, 1, "SOME LONG MERCHANT NAME", "100.00", "Other", model.Debit))
	}
	s := ContextText(txns, 1800)
	assert.LessOrEqual(t, len(s), 1800)
	assert.NotEmpty(t, s)
}

func TestContextTextTruncatesOnRuneBoundary(t *testing.T) {
	txns := []model.Transaction{
		txn(2023, 6, 1, "श्री स्वीट्स", "100.00", "Food", model.Debit),
	}
	full := ContextText(txns, 0)
	require.True(t, utf8.ValidString(full))

	// Every cut point must land on a rune boundary.
	for limit := 1; limit < len(full); limit++ {
		s := ContextText(txns, limit)
		assert.LessOrEqual(t, len(s), limit)
		assert.True(t, utf8.ValidString(s), "limit %d split a rune", limit)
	}
}
