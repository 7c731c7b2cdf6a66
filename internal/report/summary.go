// Package report aggregates the categorized table for the chart
// panels and for the chatbot's text context. Pure read-only consumers
// of the transaction slice.
package report

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"phonepe-analyzer/internal/model"
)

// CategoryTotal is one row of the expense summary.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// MonthTotal is spend aggregated per calendar month.
type MonthTotal struct {
	Month string          `json:"month"` // "2006-01"
	Total decimal.Decimal `json:"total"`
}

// Slice is one chart datum.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartData carries chart-ready series; the UI renders them as-is.
type ChartData struct {
	Pie     []Slice      `json:"pie"`
	Bar     []Slice      `json:"bar"`
	Monthly []MonthTotal `json:"monthly"`
}

// ByCategory sums debit amounts per category, largest first.
func ByCategory(txns []model.Transaction) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	for _, t := range txns {
		if !t.IsDebit() {
			continue
		}
		cat := t.Category
		if cat == "" {
			cat = model.CategoryOther
		}
		totals[cat] = totals[cat].Add(t.Amount)
	}

	out := make([]CategoryTotal, 0, len(totals))
	for cat, total := range totals {
		out = append(out, CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// ByMonth sums debit amounts per calendar month, chronological.
func ByMonth(txns []model.Transaction) []MonthTotal {
	totals := make(map[string]decimal.Decimal)
	for _, t := range txns {
		if !t.IsDebit() {
			continue
		}
		m := t.Date.Format("2006-01")
		totals[m] = totals[m].Add(t.Amount)
	}

	out := make([]MonthTotal, 0, len(totals))
	for m, total := range totals {
		out = append(out, MonthTotal{Month: m, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// TotalDebits is the overall spend across the table.
func TotalDebits(txns []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if t.IsDebit() {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// Charts builds the pie and bar series from the category summary plus
// the monthly trend.
func Charts(txns []model.Transaction) ChartData {
	byCat := ByCategory(txns)
	slices := make([]Slice, 0, len(byCat))
	for _, row := range byCat {
		slices = append(slices, Slice{Label: row.Category, Value: row.Total.InexactFloat64()})
	}
	return ChartData{
		Pie:     slices,
		Bar:     slices,
		Monthly: ByMonth(txns),
	}
}

// ContextText renders the table as one sentence per transaction for
// the QA model, truncated to limit bytes. Zero or negative limit means
// no truncation.
func ContextText(txns []model.Transaction, limit int) string {
	var b strings.Builder
	for _, t := range txns {
		verb := "paid"
		preposition := "to"
		if !t.IsDebit() {
			verb = "received"
			preposition = "from"
		}
		fmt.Fprintf(&b, "On %s, %s %s INR %s %s in category %s.\n",
			t.Date.Format("2006-01-02"), verb, t.Amount.StringFixed(2), preposition, t.Desc, t.Category)
	}
	s := b.String()
	if limit > 0 && len(s) > limit {
		// Back up so the cut never splits a multi-byte rune.
		for limit > 0 && !utf8.RuneStart(s[limit]) {
			limit--
		}
		s = s[:limit]
	}
	return s
}
