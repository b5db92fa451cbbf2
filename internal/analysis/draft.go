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

const draftSystemPrompt = `You compare an in-progress journal draft against the trader's past entries that showed bias or negative sentiment. If the draft repeats a past mistake pattern, write one short alert referencing what happened before. If there is no clear match, return null for the alert. Respond with JSON only: {"alert": string or null, "matchingEntryIds": [string]}.`

// DraftAlert is a live warning that an in-progress draft resembles past
// entries that preceded losses or showed bias.
type DraftAlert struct {
	Alert      string   `json:"alert"`
	EntryIDs   []string `json:"entry_ids"`
	Candidates int      `json:"candidates"`
}

// DraftMatcher compares drafts against bias-flagged history with the fast
// model tier.
type DraftMatcher struct {
	Completer llm.CompletionService
	Logger    *zap.Logger
}

// A draft shorter than this is not worth a completion call.
const draftMinLength = 20

type draftResponse struct {
	Alert            *string  `json:"alert"`
	MatchingEntryIDs []string `json:"matchingEntryIds"`
}

// Match returns nil when the draft is too short, there are no candidates,
// the completion fails, or the model finds no match. An alert is only
// emitted when both the text and at least one matching entry id are present.
func (m *DraftMatcher) Match(ctx context.Context, draft string, candidates []models.JournalEntry) *DraftAlert {
	if m == nil || m.Completer == nil {
		return nil
	}
	if len(strings.TrimSpace(draft)) < draftMinLength || len(candidates) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("Past flagged entries:\n")
	for _, entry := range candidates {
		fmt.Fprintf(&b, "id=%s sentiment=%s", formatEntryID(entry.ID), entry.Sentiment)
		if tags := decodeStrings(entry.BiasTags); len(tags) > 0 {
			fmt.Fprintf(&b, " biases=%s", strings.Join(tags, ","))
		}
		fmt.Fprintf(&b, " content=%q\n", truncateRunes(entry.Content, entrySummaryMaxRunes))
	}
	fmt.Fprintf(&b, "\nCurrent draft:\n%s\n", draft)

	raw, err := m.Completer.Complete(ctx, llm.Request{
		SystemPrompt: draftSystemPrompt,
		UserPrompt:   b.String(),
		Tier:         llm.TierFast,
	})
	if err != nil {
		m.warn("draft match completion failed", zap.Error(err))
		return nil
	}

	var resp draftResponse
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &resp); err != nil {
		m.warn("draft match response unparseable", zap.Error(err))
		return nil
	}
	if resp.Alert == nil || strings.TrimSpace(*resp.Alert) == "" || len(resp.MatchingEntryIDs) == 0 {
		return nil
	}
	return &DraftAlert{
		Alert:      *resp.Alert,
		EntryIDs:   resp.MatchingEntryIDs,
		Candidates: len(candidates),
	}
}

func extractJSONObject(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "{"); i >= 0 {
		if j := strings.LastIndex(raw, "}"); j > i {
			return raw[i : j+1]
		}
	}
	return raw
}

func formatEntryID(id uint64) string {
	return fmt.Sprintf("%d", id)
}

func (m *DraftMatcher) warn(msg string, fields ...zap.Field) {
	if m.Logger != nil {
		m.Logger.Warn(msg, fields...)
	}
}
