// Package intent maps a natural-language NFL question to the kind of data
// needed to answer it.
package intent

import (
	"regexp"
	"strings"
)

// Kind is the closed set of question intents.
type Kind string

const (
	PlayerRankings Kind = "player_rankings"
	Matchups       Kind = "matchups"
	Injuries       Kind = "injuries"
	Schedule       Kind = "schedule"
	DepthChart     Kind = "depth_chart"
	General        Kind = "general"
)

// ParamYear is the parameter set when a question names a season year.
const ParamYear = "year"

// Intent is a classified question. Params only hold values found in the
// question; defaults are applied by whoever consumes the intent.
type Intent struct {
	Kind   Kind
	params map[string]string
}

// Param returns the named parameter, or fallback when the question did not set it.
func (i Intent) Param(key, fallback string) string {
	if v, ok := i.params[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Params returns a copy of the extracted parameters.
func (i Intent) Params() map[string]string {
	out := make(map[string]string, len(i.params))
	for k, v := range i.params {
		out[k] = v
	}
	return out
}

type rule struct {
	kind     Kind
	keywords []string
	extract  func(q string, params map[string]string)
}

func (r rule) matches(q string) bool {
	for _, kw := range r.keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

var yearPattern = regexp.MustCompile(`\b20\d{2}\b`)

func extractYear(q string, params map[string]string) {
	if y := yearPattern.FindString(q); y != "" {
		params[ParamYear] = y
	}
}

// Classifier evaluates ordered keyword rules; the first match wins.
// "playing" appears in both the matchup and schedule rules, so it always
// resolves to Matchups.
type Classifier struct {
	rules []rule
}

// New returns a Classifier with the built-in rule order.
func New() *Classifier {
	return &Classifier{rules: []rule{
		{kind: PlayerRankings, keywords: []string{"ranking", "rank", "best", "top", "projections"}},
		{kind: Matchups, keywords: []string{"matchup", "vs", "versus", "against", "playing"}},
		{kind: Injuries, keywords: []string{"injury", "injured", "hurt"}, extract: extractYear},
		{kind: Schedule, keywords: []string{"schedule", "games", "playing"}},
		{kind: DepthChart, keywords: []string{"depth chart", "roster", "lineup"}},
	}}
}

// Classify returns the intent of question. Matching is case-insensitive and
// by substring.
func (c *Classifier) Classify(question string) Intent {
	q := strings.ToLower(question)
	for _, r := range c.rules {
		if !r.matches(q) {
			continue
		}
		params := map[string]string{}
		if r.extract != nil {
			r.extract(q, params)
		}
		return Intent{Kind: r.kind, params: params}
	}
	return Intent{Kind: General, params: map[string]string{}}
}
