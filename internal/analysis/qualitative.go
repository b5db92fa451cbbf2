package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"traderjournal/internal/llm"
	"traderjournal/internal/models"
)

const qualitativeSystemPrompt = `You are an analyst reviewing a trader's journal. You find recurring behavioral and emotional patterns: timing habits, conviction mismatches, emotional states around wins and losses, reactions to market conditions, and repeated cognitive biases. You report only patterns supported by multiple entries. Respond with a JSON array only, no prose.`

// Extractor runs the qualitative mining pass: journal entries are condensed
// into per-entry summary lines, cross-referenced with market conditions and
// thesis outcomes, and handed to the deep model for behavioral pattern
// detection.
type Extractor struct {
	Completer  llm.CompletionService
	Logger     *zap.Logger
	MinEntries int
	WindowDays int
}

const (
	defaultQualitativeMinEntries = 20
	qualitativeMinOccurrences    = 3
	entrySummaryMaxRunes         = 200
)

// llmPattern is the response contract expected from the model. Fields the
// model omits or mistypes cause the whole element to be skipped, not an
// error.
type llmPattern struct {
	PatternType     string   `json:"patternType"`
	PatternName     string   `json:"patternName"`
	Description     string   `json:"description"`
	Occurrences     int      `json:"occurrences"`
	Evidence        []string `json:"evidence"`
	Trend           string   `json:"trend"`
	Confidence      float64  `json:"confidence"`
	RelatedEntryIDs []string `json:"relatedEntryIds"`
	OutcomeSummary  string   `json:"outcomeSummary"`
}

// Extract mines behavioral patterns from the corpus. Any failure along the
// way (completion error, unparseable response) yields no patterns rather
// than an error; the statistical pass is unaffected.
func (e *Extractor) Extract(ctx context.Context, corpus *Corpus) []CandidatePattern {
	if e == nil || e.Completer == nil || corpus == nil {
		return nil
	}
	minEntries := e.MinEntries
	if minEntries <= 0 {
		minEntries = defaultQualitativeMinEntries
	}
	if len(corpus.Entries) < minEntries {
		e.warn("skipping qualitative pass, too few entries",
			zap.Int("entries", len(corpus.Entries)), zap.Int("min", minEntries))
		return nil
	}

	prompt := e.buildPrompt(corpus)
	raw, err := e.Completer.Complete(ctx, llm.Request{
		SystemPrompt: qualitativeSystemPrompt,
		UserPrompt:   prompt,
		Tier:         llm.TierDeep,
	})
	if err != nil {
		e.warn("qualitative completion failed", zap.Error(err))
		return nil
	}

	parsed, err := parsePatternResponse(raw)
	if err != nil {
		e.warn("qualitative response unparseable", zap.Error(err))
		return nil
	}

	var out []CandidatePattern
	for _, p := range parsed {
		if p.PatternName == "" || p.Occurrences < qualitativeMinOccurrences {
			continue
		}
		if !validPatternType(p.PatternType) {
			continue
		}
		trend := p.Trend
		switch trend {
		case models.TrendIncreasing, models.TrendStable, models.TrendDecreasing:
		default:
			trend = models.TrendStable
		}
		conf := p.Confidence
		if conf < 0 {
			conf = 0
		}
		if conf > 1 {
			conf = 1
		}
		out = append(out, CandidatePattern{
			Type:        p.PatternType,
			Name:        normalizeName(p.PatternName),
			Description: p.Description,
			Occurrences: p.Occurrences,
			Trend:       trend,
			Confidence:  conf,
			RelatedIDs:  p.RelatedEntryIDs,
			Evidence:    p.Evidence,
		})
	}
	return out
}

func (e *Extractor) buildPrompt(corpus *Corpus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Journal window %s to %s, %d entries.\n\n",
		corpus.Start.Format("2006-01-02"), corpus.End.Format("2006-01-02"), len(corpus.Entries))
	b.WriteString("Entries (one per line):\n")
	for _, entry := range corpus.Entries {
		b.WriteString(summarizeEntry(corpus, entry))
		b.WriteByte('\n')
	}
	b.WriteString(`
Identify recurring patterns. For each, emit an object:
{"patternType": one of "timing"|"conviction"|"emotional"|"market_condition"|"bias_frequency",
 "patternName": short_snake_case_name,
 "description": one or two sentences,
 "occurrences": integer count of supporting entries,
 "evidence": up to 3 short quotes or observations,
 "trend": "increasing"|"stable"|"decreasing",
 "confidence": 0.0 to 1.0,
 "relatedEntryIds": entry ids as strings}
Only include patterns with at least 3 supporting entries. Respond with a JSON array.`)
	return b.String()
}

// summarizeEntry condenses one entry into a single prompt line with its
// same-day market context and the outcome of the thesis it was likely
// written about.
func summarizeEntry(corpus *Corpus, entry models.JournalEntry) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("id=%d", entry.ID))
	parts = append(parts, fmt.Sprintf("date=%s", entry.CreatedAt.Format("2006-01-02")))
	parts = append(parts, fmt.Sprintf("kind=%s", entry.EntryKind))
	if entry.Ticker != nil && *entry.Ticker != "" {
		parts = append(parts, fmt.Sprintf("ticker=%s", *entry.Ticker))
	}
	if entry.Mood != "" {
		parts = append(parts, fmt.Sprintf("mood=%s", entry.Mood))
	}
	if entry.Conviction != nil {
		parts = append(parts, fmt.Sprintf("conviction=%d", *entry.Conviction))
	}
	if entry.Sentiment != "" {
		parts = append(parts, fmt.Sprintf("sentiment=%s", entry.Sentiment))
	}
	if tags := decodeStrings(entry.BiasTags); len(tags) > 0 {
		parts = append(parts, fmt.Sprintf("biases=%s", strings.Join(tags, ",")))
	}
	if kws := decodeStrings(entry.Keywords); len(kws) > 0 {
		parts = append(parts, fmt.Sprintf("keywords=%s", strings.Join(kws, ",")))
	}
	if cond := corpus.ConditionOn(entry.CreatedAt); cond != nil {
		parts = append(parts, fmt.Sprintf("market=%s(%+.2f%%)", cond.MarketState, cond.IndexMovePct))
	}
	if entry.Ticker != nil {
		if th := corpus.ThesisFor(*entry.Ticker, entry.CreatedAt); th != nil && th.Outcome != "" {
			parts = append(parts, fmt.Sprintf("thesis_outcome=%s(%+.2f)", th.Outcome, th.RealizedPL.InexactFloat64()))
		}
	}
	parts = append(parts, fmt.Sprintf("content=%q", truncateRunes(entry.Content, entrySummaryMaxRunes)))
	return strings.Join(parts, " ")
}

// parsePatternResponse tolerates code fences and leading prose around the
// JSON array.
func parsePatternResponse(raw string) ([]llmPattern, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "["); i >= 0 {
		if j := strings.LastIndex(raw, "]"); j > i {
			raw = raw[i : j+1]
		}
	}
	var parsed []llmPattern
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

func validPatternType(t string) bool {
	switch t {
	case models.PatternTypeTiming, models.PatternTypeConviction, models.PatternTypeEmotional,
		models.PatternTypeMarketCondition, models.PatternTypeBiasFrequency:
		return true
	}
	return false
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

func decodeStrings(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func (e *Extractor) warn(msg string, fields ...zap.Field) {
	if e.Logger != nil {
		e.Logger.Warn(msg, fields...)
	}
}
