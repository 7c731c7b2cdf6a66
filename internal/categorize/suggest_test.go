package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonepe-analyzer/internal/model"
)

func trainingTxns() []model.Transaction {
	mk := func(day int, desc, cat string) model.Transaction {
		t := model.NewTransaction(date(2023, 6, day), desc, amt("100"), model.Debit)
		t.Category = cat
		return t
	}
	return []model.Transaction{
		mk(1, "swiggy order lunch", "Food"),
		mk(2, "swiggy order dinner", "Food"),
		mk(3, "zomato order lunch", "Food"),
		mk(4, "uber ride airport", "Transport"),
		mk(5, "uber ride office", "Transport"),
		mk(6, "ola ride home", "Transport"),
	}
}

func TestSuggesterTopHit(t *testing.T) {
	sg, err := NewSuggester(trainingTxns())
	require.NoError(t, err)

	got := sg.Suggest("swiggy order breakfast")
	require.NotEmpty(t, got)
	assert.Equal(t, "Food", got[0])

	got = sg.Suggest("uber ride station")
	require.NotEmpty(t, got)
	assert.Equal(t, "Transport", got[0])
}

func TestSuggesterNeedsTwoClasses(t *testing.T) {
	one := trainingTxns()[:3] // Food only
	_, err := NewSuggester(one)
	assert.Error(t, err)
}

func TestSuggesterIgnoresOther(t *testing.T) {
	txns := trainingTxns()
	extra := model.NewTransaction(date(2023, 6, 7), "mystery", amt("10"), model.Debit)
	extra.Category = model.CategoryOther
	txns = append(txns, extra)

	sg, err := NewSuggester(txns)
	require.NoError(t, err)
	for _, s := range sg.Suggest("mystery") {
		assert.NotEqual(t, model.CategoryOther, s)
	}
}

func TestSuggestEmptyDescription(t *testing.T) {
	sg, err := NewSuggester(trainingTxns())
	require.NoError(t, err)
	assert.Empty(t, sg.Suggest("   "))
}
