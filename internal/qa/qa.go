// Package qa answers free-text questions about the transaction table.
// Common money questions are answered locally from the aggregates;
// everything else is delegated to an external extractive
// question-answering model behind the Answerer interface.
package qa

import (
	"context"
	"log/slog"
	"strings"

	"phonepe-analyzer/internal/model"
	"phonepe-analyzer/internal/report"
)

// Response is what a model (or the rule shortcut) produces.
type Response struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

// Answerer is the external-model boundary: give it a question and a
// text passage, get back the most likely answer span with a score.
type Answerer interface {
	Answer(ctx context.Context, question, passage string) (Response, error)
}

// Result is Response plus where the answer came from.
type Result struct {
	Response
	Source string `json:"source"` // "rules" or "model"
}

// DefaultContextLimit caps the passage fed to the model, in bytes.
const DefaultContextLimit = 1800

// Adapter formats transaction data as text context and forwards the
// question to the model, after trying the rule-based shortcuts.
type Adapter struct {
	model        Answerer
	contextLimit int
	logger       *slog.Logger
}

func NewAdapter(model Answerer, contextLimit int, logger *slog.Logger) *Adapter {
	if contextLimit <= 0 {
		contextLimit = DefaultContextLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{model: model, contextLimit: contextLimit, logger: logger}
}

// Ask answers a question about the given table. A low-confidence or
// empty model answer is returned as-is rather than as an error.
func (a *Adapter) Ask(ctx context.Context, question string, txns []model.Transaction) (Result, error) {
	if r, ok := answerByRules(question, txns); ok {
		a.logger.Info("qa.rules.hit", "question", question)
		return Result{Response: r, Source: "rules"}, nil
	}

	passage := report.ContextText(txns, a.contextLimit)
	resp, err := a.model.Answer(ctx, question, passage)
	if err != nil {
		a.logger.Error("qa.model.error", "error", err)
		return Result{}, err
	}
	a.logger.Info("qa.model.answer", "confidence", resp.Confidence)
	return Result{Response: resp, Source: "model"}, nil
}

// answerByRules handles the common "how much did I spend ..." shapes
// directly from the aggregates.
func answerByRules(question string, txns []model.Transaction) (Response, bool) {
	q := strings.ToLower(question)

	asksAmount := strings.Contains(q, "total") || strings.Contains(q, "how much")
	asksSpend := strings.Contains(q, "spend") || strings.Contains(q, "spent")
	if !asksAmount || !asksSpend {
		return Response{}, false
	}

	for _, row := range report.ByCategory(txns) {
		if strings.Contains(q, strings.ToLower(row.Category)) {
			return Response{
				Answer:     "Total spent on " + row.Category + ": INR " + row.Total.StringFixed(2),
				Confidence: 1.0,
			}, true
		}
	}

	if strings.Contains(q, "total") && (strings.Contains(q, "expense") || asksSpend) {
		return Response{
			Answer:     "Total spent: INR " + report.TotalDebits(txns).StringFixed(2),
			Confidence: 1.0,
		}, true
	}
	return Response{}, false
}
