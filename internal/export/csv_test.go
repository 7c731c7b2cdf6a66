package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonepe-analyzer/internal/model"
)

func sampleTxns() []model.Transaction {
	mk := func(day int, desc, amount, cat string, typ model.TxnType) model.Transaction {
		d, _ := decimal.NewFromString(amount)
		t := model.NewTransaction(time.Date(2023, 6, day, 0, 0, 0, 0, time.UTC), desc, d, typ)
		t.Category = cat
		return t
	}
	return []model.Transaction{
		mk(1, "SWIGGY LIMITED", "249.00", "Food", model.Debit),
		mk(3, "RAHUL K", "1200.00", "Other", model.Credit),
		mk(9, "D-MART, READY", "1532.25", "Groceries", model.Debit), // comma needs quoting
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTxns()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, Header, lines[0])
	assert.Equal(t, "2023-06-01,SWIGGY LIMITED,Debit,249.00,Food", lines[1])
	assert.Contains(t, lines[3], `"D-MART, READY"`)
}

func TestCSVRoundTrip(t *testing.T) {
	want := sampleTxns()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, want))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(want))

	for i := range want {
		assert.True(t, want[i].Date.Equal(got[i].Date))
		assert.Equal(t, want[i].Desc, got[i].Desc)
		assert.Equal(t, want[i].Type, got[i].Type)
		assert.True(t, want[i].Amount.Equal(got[i].Amount), "row %d amount", i)
		assert.Equal(t, want[i].Category, got[i].Category)
	}
}

func TestReadCSVRejectsBadRows(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"bad date", Header + "\nnot-a-date,X,Debit,10.00,Food\n"},
		{"bad amount", Header + "\n2023-06-01,X,Debit,ten,Food\n"},
		{"bad direction", Header + "\n2023-06-01,X,Sideways,10.00,Food\n"},
		{"wrong field count", Header + "\n2023-06-01,X,Debit,10.00\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.in))
			assert.Error(t, err)
		})
	}
}

func TestReadCSVEmpty(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ReadCSV(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
