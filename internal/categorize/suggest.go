package categorize

import (
	"math"
	"sort"
	"strings"

	"github.com/jbrukh/bayesian"
	"github.com/pkg/errors"

	"phonepe-analyzer/internal/model"
)

// Suggester proposes categories for a description using a TF-IDF
// Bayesian classifier trained on the already-categorized table.
// Suggestions are advisory; they never override a keyword or learned
// match.
type Suggester struct {
	classes []bayesian.Class
	cl      *bayesian.Classifier
}

func prepareTerms(desc string) []string {
	desc = strings.ToLower(desc)
	desc = strings.ReplaceAll(desc, "*", " ")
	return strings.Fields(desc)
}

// NewSuggester trains on the given transactions. It needs at least two
// distinct categories to form classes.
func NewSuggester(txns []model.Transaction) (*Suggester, error) {
	tomap := make(map[string]bool)
	for _, t := range txns {
		if len(t.Category) == 0 || t.Category == model.CategoryOther {
			continue
		}
		tomap[t.Category] = true
	}
	if len(tomap) < 2 {
		return nil, errors.New("need at least two categorized classes to train suggester")
	}

	classes := make([]bayesian.Class, 0, len(tomap))
	for cat := range tomap {
		classes = append(classes, bayesian.Class(cat))
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	cl := bayesian.NewClassifierTfIdf(classes...)
	for _, t := range txns {
		if !tomap[t.Category] {
			continue
		}
		cl.Learn(prepareTerms(t.Desc), bayesian.Class(t.Category))
	}
	cl.ConvertTermsFreqToTfIdf()

	return &Suggester{classes: classes, cl: cl}, nil
}

type pair struct {
	score float64
	pos   int
}

// Suggest returns up to five categories whose log scores sit within
// one standard deviation of the best hit, best first.
func (s *Suggester) Suggest(desc string) []string {
	terms := prepareTerms(desc)
	if len(terms) == 0 {
		return nil
	}
	scores, _, _ := s.cl.LogScores(terms)
	if len(scores) == 0 {
		return nil
	}

	pairs := make([]pair, 0, len(scores))
	var mean, stddev float64
	for pos, score := range scores {
		pairs = append(pairs, pair{score, pos})
		mean += score
	}
	mean /= float64(len(scores))
	for _, score := range scores {
		diff := score - mean
		stddev += diff * diff
	}
	stddev /= float64(len(scores) - 1)
	stddev = math.Sqrt(stddev)

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })

	result := make([]string, 0, 5)
	last := pairs[0].score
	for i := 0; i < len(pairs) && i < 5; i++ {
		pr := pairs[i]
		if math.Abs(pr.score-last) > stddev {
			break
		}
		result = append(result, string(s.classes[pr.pos]))
		last = pr.score
	}
	return result
}
