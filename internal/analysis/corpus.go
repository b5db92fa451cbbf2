package analysis

import (
	"context"
	"time"

	"traderjournal/internal/models"
	"traderjournal/internal/repository"
)

// Corpus is everything the miners read for one time window: entries, theses
// with their legs, and daily market conditions, joined by date. Assembly
// only; no thresholds or scoring here.
type Corpus struct {
	Start   time.Time
	End     time.Time
	Entries []models.JournalEntry
	Theses  []models.Thesis
	Days    []models.MarketCondition

	conditionByDay map[string]models.MarketCondition
	thesesByTicker map[string][]models.Thesis
}

// Aggregator loads corpora from the repository.
type Aggregator struct {
	Repo repository.Repository
}

func (a *Aggregator) Load(ctx context.Context, start, end time.Time) (*Corpus, error) {
	if a == nil || a.Repo == nil {
		return &Corpus{Start: start, End: end}, nil
	}
	entries, err := a.Repo.ListEntries(ctx, repository.ListEntriesParams{
		Limit:   1000,
		Since:   &start,
		Until:   &end,
		OrderBy: "created_at",
		Asc:     boolPtr(true),
	})
	if err != nil {
		return nil, err
	}
	theses, err := a.Repo.ListTheses(ctx, repository.ListThesesParams{
		Limit:      1000,
		Since:      &start,
		Until:      &end,
		WithTrades: true,
		OrderBy:    "created_at",
		Asc:        boolPtr(true),
	})
	if err != nil {
		return nil, err
	}
	days, err := a.Repo.ListMarketConditions(ctx, &start, &end)
	if err != nil {
		return nil, err
	}
	return NewCorpus(start, end, entries, theses, days), nil
}

func NewCorpus(start, end time.Time, entries []models.JournalEntry, theses []models.Thesis, days []models.MarketCondition) *Corpus {
	c := &Corpus{
		Start:          start,
		End:            end,
		Entries:        entries,
		Theses:         theses,
		Days:           days,
		conditionByDay: make(map[string]models.MarketCondition, len(days)),
		thesesByTicker: make(map[string][]models.Thesis),
	}
	for _, d := range days {
		c.conditionByDay[dayKey(d.Date)] = d
	}
	for _, th := range theses {
		c.thesesByTicker[th.Ticker] = append(c.thesesByTicker[th.Ticker], th)
	}
	return c
}

// ConditionOn returns the market condition for the calendar day of t.
func (c *Corpus) ConditionOn(t time.Time) *models.MarketCondition {
	if c == nil || c.conditionByDay == nil {
		return nil
	}
	d, ok := c.conditionByDay[dayKey(t)]
	if !ok {
		return nil
	}
	return &d
}

// ThesisFor returns the most recent thesis on ticker opened at or before t,
// linking an entry to the trade it was likely written about.
func (c *Corpus) ThesisFor(ticker string, t time.Time) *models.Thesis {
	if c == nil || ticker == "" {
		return nil
	}
	var best *models.Thesis
	for i := range c.thesesByTicker[ticker] {
		th := &c.thesesByTicker[ticker][i]
		if th.CreatedAt.After(t) {
			continue
		}
		if best == nil || th.CreatedAt.After(best.CreatedAt) {
			best = th
		}
	}
	return best
}

// ClosedTheses filters to closed theses with a recorded outcome.
func (c *Corpus) ClosedTheses() []models.Thesis {
	if c == nil {
		return nil
	}
	out := make([]models.Thesis, 0, len(c.Theses))
	for _, th := range c.Theses {
		if th.Status == models.ThesisStatusClosed && th.Outcome != "" {
			out = append(out, th)
		}
	}
	return out
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func boolPtr(v bool) *bool { return &v }
