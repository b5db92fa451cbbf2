package analysis

import (
	"sort"
	"strings"

	"traderjournal/internal/models"
)

// TokenJaccard is |intersection| / |union| over lower-cased
// whitespace-split tokens. Two empty strings are defined as identical
// (1.0); exactly one empty string scores 0.0.
func TokenJaccard(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}
	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Re-analysis gate thresholds: a big length delta or low token overlap
// means the edit changed enough to warrant re-running AI analysis.
const (
	reanalyzeLenDelta   = 50
	reanalyzeSimilarity = 0.8
)

// ShouldReanalyze is the cheap symbolic gate applied on entry edits before
// re-invoking the completion service.
func ShouldReanalyze(oldContent, newContent string) bool {
	delta := len(newContent) - len(oldContent)
	if delta < 0 {
		delta = -delta
	}
	if delta > reanalyzeLenDelta {
		return true
	}
	return TokenJaccard(oldContent, newContent) < reanalyzeSimilarity
}

// Additive similarity points for ranking historical theses against a
// candidate trade. A ranking heuristic, not a probability.
const (
	pointsSameTicker   = 50
	pointsSameStrategy = 30
	pointsClosed       = 10
	pointsHasLessons   = 10
	similarTopN        = 10
)

type ThesisMatch struct {
	Thesis models.Thesis `json:"thesis"`
	Score  int           `json:"score"`
}

// ScoreTheses ranks theses by symbolic similarity to (ticker, strategy) and
// keeps the top ten. Ties keep input order.
func ScoreTheses(theses []models.Thesis, ticker string, strategyType *string) []ThesisMatch {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	matches := make([]ThesisMatch, 0, len(theses))
	for _, th := range theses {
		score := 0
		if th.Ticker == ticker {
			score += pointsSameTicker
		}
		if strategyType != nil && hasStrategy(th, *strategyType) {
			score += pointsSameStrategy
		}
		if th.Status == models.ThesisStatusClosed {
			score += pointsClosed
			if strings.TrimSpace(th.LessonsLearned) != "" {
				score += pointsHasLessons
			}
		}
		if score == 0 {
			continue
		}
		matches = append(matches, ThesisMatch{Thesis: th, Score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > similarTopN {
		matches = matches[:similarTopN]
	}
	return matches
}

func hasStrategy(th models.Thesis, strategyType string) bool {
	strategyType = strings.TrimSpace(strategyType)
	if strategyType == "" {
		return false
	}
	for _, leg := range th.Trades {
		if leg.StrategyType == strategyType {
			return true
		}
	}
	return false
}
