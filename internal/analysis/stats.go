package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"traderjournal/internal/models"
)

// Sample-size floors. A dimension value below its floor is never reported;
// pattern emission additionally requires patternMinTotal.
const (
	tickerMinTotal    = 2
	strategyMinTotal  = 2
	directionMinTotal = 3
	patternMinTotal   = 3
)

// Win-rate thresholds for surfacing a pattern. Values strictly between are
// deliberately not reported.
const (
	strongWinRate = 0.7
	weakWinRate   = 0.3
)

// GroupStat is the aggregate for one dimension value (a ticker, a strategy
// type, or a direction) over closed theses.
type GroupStat struct {
	Dimension string
	Key       string
	Wins      int
	Losses    int
	Total     int
	WinRate   float64
	AvgPL     float64
	ThesisIDs []uint64
}

// GroupByTicker aggregates closed theses per ticker. Only groups with at
// least two decided outcomes are returned.
func GroupByTicker(theses []models.Thesis) []GroupStat {
	return groupBy(theses, "ticker", tickerMinTotal, func(th models.Thesis) []string {
		return []string{th.Ticker}
	})
}

// GroupByStrategy aggregates per strategy type; a thesis is attributed to
// each distinct strategy among its legs.
func GroupByStrategy(theses []models.Thesis) []GroupStat {
	return groupBy(theses, "strategy", strategyMinTotal, thesisStrategies)
}

// GroupByDirection aggregates per thesis direction.
func GroupByDirection(theses []models.Thesis) []GroupStat {
	return groupBy(theses, "direction", directionMinTotal, func(th models.Thesis) []string {
		return []string{th.Direction}
	})
}

func groupBy(theses []models.Thesis, dimension string, minTotal int, keysOf func(models.Thesis) []string) []GroupStat {
	type acc struct {
		wins, losses int
		sumPL        float64
		ids          []uint64
	}
	groups := map[string]*acc{}
	for _, th := range theses {
		if th.Status != models.ThesisStatusClosed {
			continue
		}
		win := th.Outcome == models.OutcomeWin
		loss := th.Outcome == models.OutcomeLoss
		if !win && !loss {
			continue
		}
		for _, key := range keysOf(th) {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			g := groups[key]
			if g == nil {
				g = &acc{}
				groups[key] = g
			}
			if win {
				g.wins++
			} else {
				g.losses++
			}
			g.sumPL += th.RealizedPL.InexactFloat64()
			g.ids = append(g.ids, th.ID)
		}
	}

	out := make([]GroupStat, 0, len(groups))
	for key, g := range groups {
		total := g.wins + g.losses
		if total < minTotal {
			continue
		}
		out = append(out, GroupStat{
			Dimension: dimension,
			Key:       key,
			Wins:      g.wins,
			Losses:    g.losses,
			Total:     total,
			WinRate:   float64(g.wins) / float64(total),
			AvgPL:     g.sumPL / float64(total),
			ThesisIDs: g.ids,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func thesisStrategies(th models.Thesis) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, leg := range th.Trades {
		s := strings.TrimSpace(leg.StrategyType)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Confidence grows with sample size but is capped well below certainty:
// min(cap, 0.5 + total*step).
func groupConfidence(total int, step, cap float64) float64 {
	c := 0.5 + float64(total)*step
	if c > cap {
		return cap
	}
	return c
}

// MineStatisticalPatterns turns group stats into candidate patterns. A group
// is surfaced as strong at winRate >= 0.7 and weak at winRate <= 0.3, both
// requiring at least three decided outcomes.
func MineStatisticalPatterns(theses []models.Thesis) []CandidatePattern {
	var out []CandidatePattern
	emit := func(stats []GroupStat, patternType string, step, cap float64) {
		for _, g := range stats {
			if g.Total < patternMinTotal {
				continue
			}
			strong := g.WinRate >= strongWinRate
			weak := g.WinRate <= weakWinRate
			if !strong && !weak {
				continue
			}
			label := "Weak"
			if strong {
				label = "Strong"
			}
			out = append(out, CandidatePattern{
				Type: patternType,
				Name: patternName(patternType, g.Key),
				Description: fmt.Sprintf("%s performance on %s %q: %d wins, %d losses (%.0f%% win rate, avg P&L %+.2f)",
					label, g.Dimension, g.Key, g.Wins, g.Losses, g.WinRate*100, g.AvgPL),
				Occurrences: g.Total,
				Trend:       models.TrendStable,
				Confidence:  groupConfidence(g.Total, step, cap),
				RelatedIDs:  formatIDs(g.ThesisIDs),
				Evidence: []string{fmt.Sprintf("%d of %d closed theses won; average realized P&L %+.2f",
					g.Wins, g.Total, g.AvgPL)},
				Outcome: &OutcomeStats{
					Wins:    g.Wins,
					Losses:  g.Losses,
					WinRate: g.WinRate,
					AvgPL:   g.AvgPL,
				},
			})
		}
	}
	emit(GroupByTicker(theses), models.PatternTypeTicker, 0.1, 0.9)
	emit(GroupByStrategy(theses), models.PatternTypeStrategy, 0.1, 0.9)
	emit(GroupByDirection(theses), models.PatternTypeDirection, 0.08, 0.85)
	return out
}

func patternName(patternType, key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, " ", "_")
	return patternType + "_" + key
}

func formatIDs(ids []uint64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strconv.FormatUint(id, 10))
	}
	return out
}

// Volatility-ratio bucket windows: primary +-20% around the target ratio,
// widened to +-40% when the primary window is too thin.
const (
	volPrimarySpan = 0.2
	volWidenedSpan = 0.4
	volWidenBelow  = 3
	volMinTotal    = 2
)

// VolBucketStat is historical performance for trades whose IV/HV ratio fell
// near a target ratio.
type VolBucketStat struct {
	TargetRatio float64
	Low         float64
	High        float64
	Widened     bool
	Wins        int
	Losses      int
	Total       int
	WinRate     float64
	AvgPL       float64
	Best        *ThesisOutcome
	Worst       *ThesisOutcome
}

// MineVolatilityBucket filters closed theses to those whose ratio falls in
// [0.8r, 1.2r], widening to [0.6r, 1.4r] below three matches. Fewer than two
// matches even after widening means insufficient data: nil, no performance
// claim.
func MineVolatilityBucket(theses []models.Thesis, targetRatio float64) *VolBucketStat {
	if targetRatio <= 0 {
		return nil
	}
	matched := filterByRatio(theses, targetRatio, volPrimarySpan)
	widened := false
	if len(matched) < volWidenBelow {
		matched = filterByRatio(theses, targetRatio, volWidenedSpan)
		widened = true
	}
	if len(matched) < volMinTotal {
		return nil
	}

	span := volPrimarySpan
	if widened {
		span = volWidenedSpan
	}
	stat := &VolBucketStat{
		TargetRatio: targetRatio,
		Low:         targetRatio * (1 - span),
		High:        targetRatio * (1 + span),
		Widened:     widened,
	}
	var sumPL float64
	for _, th := range matched {
		pl := th.RealizedPL.InexactFloat64()
		sumPL += pl
		switch th.Outcome {
		case models.OutcomeWin:
			stat.Wins++
		case models.OutcomeLoss:
			stat.Losses++
		}
		o := &ThesisOutcome{
			ThesisID:   th.ID,
			Name:       th.Name,
			Ticker:     th.Ticker,
			Outcome:    th.Outcome,
			RealizedPL: pl,
			ClosedAt:   th.ClosedAt,
		}
		if stat.Best == nil || pl > stat.Best.RealizedPL {
			stat.Best = o
		}
		if stat.Worst == nil || pl < stat.Worst.RealizedPL {
			stat.Worst = o
		}
	}
	stat.Total = len(matched)
	if decided := stat.Wins + stat.Losses; decided > 0 {
		stat.WinRate = float64(stat.Wins) / float64(decided)
	}
	stat.AvgPL = sumPL / float64(stat.Total)
	return stat
}

func filterByRatio(theses []models.Thesis, targetRatio, span float64) []models.Thesis {
	low := targetRatio * (1 - span)
	high := targetRatio * (1 + span)
	var out []models.Thesis
	for _, th := range theses {
		if th.Status != models.ThesisStatusClosed {
			continue
		}
		ratio, ok := thesisIVHVRatio(th)
		if !ok {
			continue
		}
		if ratio < low || ratio > high {
			continue
		}
		out = append(out, th)
	}
	return out
}

// thesisIVHVRatio takes the ratio from the first leg carrying extracted
// volatility data.
func thesisIVHVRatio(th models.Thesis) (float64, bool) {
	for _, leg := range th.Trades {
		if ratio, ok := leg.Extracted().IVHVRatio(); ok {
			return ratio, true
		}
	}
	return 0, false
}
