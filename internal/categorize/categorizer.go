// Package categorize assigns spending categories to transactions.
// Learned merchant overrides are checked before keyword rules; the
// first match wins and anything unmatched falls back to "Other".
package categorize

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"phonepe-analyzer/internal/model"
)

// Rule maps a category to the substrings that select it. Rules are
// checked in slice order so categorization stays deterministic.
type Rule struct {
	Category string
	Keywords []string
}

// OverrideStore persists learned merchant→category mappings across
// sessions.
type OverrideStore interface {
	PutOverride(merchant, category string) error
	Overrides() (map[string]string, error)
}

// DefaultRules is the seed keyword table.
func DefaultRules() []Rule {
	return []Rule{
		{"Food", []string{"zomato", "swiggy", "restaurant", "pizza"}},
		{"Groceries", []string{"d-mart", "big bazaar", "grocery"}},
		{"Recharge/Bill", []string{"recharge", "electricity", "mobile", "water"}},
		{"Shopping", []string{"amazon", "flipkart", "myntra"}},
		{"Entertainment", []string{"netflix", "hotstar", "spotify"}},
		{"Transport", []string{"uber", "ola", "fuel", "metro"}},
		{"Education", []string{"institute", "college", "fees"}},
		{"Health", []string{"pharmacy", "hospital", "clinic"}},
	}
}

// LoadRules reads a keywords.yaml of the form:
//
//	Food:
//	  - swiggy
//	  - zomato
//	Transport:
//	  - uber
//
// Categories come back sorted by name so rule priority is stable.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read keyword rules at %s", path)
	}
	raw := make(map[string][]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "unable to parse keyword rules at %s", path)
	}

	cats := make([]string, 0, len(raw))
	for cat := range raw {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	rules := make([]Rule, 0, len(cats))
	for _, cat := range cats {
		rules = append(rules, Rule{Category: cat, Keywords: raw[cat]})
	}
	return rules, nil
}

// Categorizer holds the seed rules plus the learned overrides loaded
// from the store. Not safe for concurrent use; the server serializes
// access.
type Categorizer struct {
	rules     []Rule
	overrides map[string]string
	merchants []string // override keys in sorted order, for deterministic lookup
	store     OverrideStore
}

// New loads persisted overrides and returns a ready categorizer.
func New(store OverrideStore, rules []Rule) (*Categorizer, error) {
	overrides, err := store.Overrides()
	if err != nil {
		return nil, err
	}
	if rules == nil {
		rules = DefaultRules()
	}
	merchants := make([]string, 0, len(overrides))
	for m := range overrides {
		merchants = append(merchants, m)
	}
	sort.Strings(merchants)
	return &Categorizer{
		rules:     rules,
		overrides: overrides,
		merchants: merchants,
		store:     store,
	}, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Categorize maps a transaction description to a category. Learned
// overrides are checked first: an exact hit on the normalized merchant
// text, then overrides contained in the description. Keyword rules run
// after that, first match wins. No match yields "Other".
func (c *Categorizer) Categorize(desc string) string {
	d := normalize(desc)
	if len(d) == 0 {
		return model.CategoryOther
	}

	if cat, ok := c.overrides[d]; ok {
		return cat
	}
	for _, merchant := range c.merchants {
		if strings.Contains(d, merchant) {
			return c.overrides[merchant]
		}
	}

	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(d, strings.ToLower(kw)) {
				return rule.Category
			}
		}
	}
	return model.CategoryOther
}

// Learn persists merchant→category so future lookups for the same
// merchant return the corrected category. The merchant's words are
// also folded into the keyword table for this session, mirroring how
// corrections generalize to similar descriptions. Last write wins.
func (c *Categorizer) Learn(merchant, category string) error {
	m := normalize(merchant)
	category = strings.TrimSpace(category)
	if len(m) == 0 || len(category) == 0 {
		return errors.New("merchant and category must be non-empty")
	}

	if err := c.store.PutOverride(m, category); err != nil {
		return err
	}
	if _, known := c.overrides[m]; !known {
		c.merchants = append(c.merchants, m)
		sort.Strings(c.merchants)
	}
	c.overrides[m] = category

	idx := -1
	for i := range c.rules {
		if c.rules[i].Category == category {
			idx = i
			break
		}
	}
	if idx == -1 {
		c.rules = append(c.rules, Rule{Category: category})
		idx = len(c.rules) - 1
	}
	for _, word := range strings.Fields(m) {
		if !containsKeyword(c.rules[idx].Keywords, word) {
			c.rules[idx].Keywords = append(c.rules[idx].Keywords, word)
		}
	}
	return nil
}

func containsKeyword(keywords []string, word string) bool {
	for _, kw := range keywords {
		if kw == word {
			return true
		}
	}
	return false
}

// Apply categorizes every transaction in place.
func (c *Categorizer) Apply(txns []model.Transaction) {
	for i := range txns {
		txns[i].Category = c.Categorize(txns[i].Desc)
	}
}

// Categories lists the category labels currently known to the
// categorizer, rules first, then learned-only categories.
func (c *Categorizer) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(cat string) {
		if !seen[cat] {
			seen[cat] = true
			out = append(out, cat)
		}
	}
	for _, r := range c.rules {
		add(r.Category)
	}
	learned := make([]string, 0, len(c.overrides))
	for _, cat := range c.overrides {
		learned = append(learned, cat)
	}
	sort.Strings(learned)
	for _, cat := range learned {
		add(cat)
	}
	add(model.CategoryOther)
	return out
}
