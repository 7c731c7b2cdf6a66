package qa

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonepe-analyzer/internal/model"
)

type fakeModel struct {
	resp    Response
	err     error
	passage string
}

func (f *fakeModel) Answer(_ context.Context, _, passage string) (Response, error) {
	f.passage = passage
	return f.resp, f.err
}

func table() []model.Transaction {
	mk := func(day int, desc, amount, cat string, typ model.TxnType) model.Transaction {
		d, _ := decimal.NewFromString(amount)
		t := model.NewTransaction(time.Date(2023, 6, day, 0, 0, 0, 0, time.UTC), desc, d, typ)
		t.Category = cat
		return t
	}
	return []model.Transaction{
		mk(1, "SWIGGY", "249.00", "Food", model.Debit),
		mk(2, "ZOMATO", "151.00", "Food", model.Debit),
		mk(3, "UBER", "180.50", "Transport", model.Debit),
		mk(4, "SALARY", "50000.00", "Other", model.Credit),
	}
}

func TestAskCategoryTotalShortcut(t *testing.T) {
	fm := &fakeModel{}
	a := NewAdapter(fm, 0, nil)

	res, err := a.Ask(context.Background(), "How much did I spend on food?", table())
	require.NoError(t, err)
	assert.Equal(t, "rules", res.Source)
	assert.Equal(t, "Total spent on Food: INR 400.00", res.Answer)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Empty(t, fm.passage, "rule hits must not call the model")
}

func TestAskOverallTotalShortcut(t *testing.T) {
	a := NewAdapter(&fakeModel{}, 0, nil)

	res, err := a.Ask(context.Background(), "what is my total spend?", table())
	require.NoError(t, err)
	assert.Equal(t, "rules", res.Source)
	assert.Equal(t, "Total spent: INR 580.50", res.Answer)
}

func TestAskFallsThroughToModel(t *testing.T) {
	fm := &fakeModel{resp: Response{Answer: "UBER", Confidence: 0.83}}
	a := NewAdapter(fm, 0, nil)

	res, err := a.Ask(context.Background(), "Who did I pay on June 3rd?", table())
	require.NoError(t, err)
	assert.Equal(t, "model", res.Source)
	assert.Equal(t, "UBER", res.Answer)
	assert.Contains(t, fm.passage, "SWIGGY")
}

func TestAskTruncatesPassage(t *testing.T) {
	fm := &fakeModel{resp: Response{Answer: "x"}}
	a := NewAdapter(fm, 100, nil)

	_, err := a.Ask(context.Background(), "anything unusual?", table())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(fm.passage), 100)
	assert.NotEmpty(t, fm.passage)
}

func TestAskModelError(t *testing.T) {
	fm := &fakeModel{err: errors.New("model unavailable")}
	a := NewAdapter(fm, 0, nil)

	_, err := a.Ask(context.Background(), "anything unusual?", table())
	assert.Error(t, err)
}

func TestAnswerByRulesNoMatch(t *testing.T) {
	_, ok := answerByRules("which merchant shows up most?", table())
	assert.False(t, ok)

	// Spend verb without an amount question is not a shortcut.
	_, ok = answerByRules("did I spend wisely?", table())
	assert.False(t, ok)
}

func TestParseModelJSON(t *testing.T) {
	resp, err := parseModelJSON(`Here you go:
{"answer": "INR 249.00", "confidence": 0.92}
`)
	require.NoError(t, err)
	assert.Equal(t, "INR 249.00", resp.Answer)
	assert.Equal(t, 0.92, resp.Confidence)
}

func TestParseModelJSONRejectsBadShape(t *testing.T) {
	// Missing required field.
	_, err := parseModelJSON(`{"answer": "yes"}`)
	assert.Error(t, err)

	// Confidence out of range fails the schema.
	_, err = parseModelJSON(`{"answer": "yes", "confidence": 3.5}`)
	assert.Error(t, err)

	// No JSON at all.
	_, err = parseModelJSON(`I cannot answer that.`)
	assert.Error(t, err)
}

func TestHFModelAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"answer": "SWIGGY", "score": 0.77}`))
	}))
	defer srv.Close()

	m := NewHFModel(srv.URL, "tok", 0, nil)
	resp, err := m.Answer(context.Background(), "who?", "passage")
	require.NoError(t, err)
	assert.Equal(t, "SWIGGY", resp.Answer)
	assert.Equal(t, 0.77, resp.Confidence)
}

func TestHFModelAnswerServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := NewHFModel(srv.URL, "", 0, nil)
	_, err := m.Answer(context.Background(), "who?", "passage")
	assert.Error(t, err)
}

func TestNewHFModelTimeout(t *testing.T) {
	m := NewHFModel("", "", 10*time.Second, nil)
	assert.Equal(t, 10*time.Second, m.Client.Timeout)

	// Zero falls back to the default.
	m = NewHFModel("", "", 0, nil)
	assert.Equal(t, 45*time.Second, m.Client.Timeout)
}
