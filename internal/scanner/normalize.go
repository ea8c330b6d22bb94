package scanner

import (
	"encoding/json"

	"github.com/Kedareswar13/Privacy-Protector/internal/connectors"
	"github.com/Kedareswar13/Privacy-Protector/internal/registry"
	"github.com/Kedareswar13/Privacy-Protector/internal/risk"
	"github.com/Kedareswar13/Privacy-Protector/internal/store"
	"github.com/google/uuid"
)

// Fixed confidences assigned per source.
const (
	webConfidence    = 0.7
	socialConfidence = 0.7
	breachConfidence = 0.9
)

// scanTools are the tools the orchestrator dispatches; other planned tools
// are skipped.
var scanTools = map[registry.ToolID]bool{
	registry.SearchWeb:          true,
	registry.SearchSocial:       true,
	registry.CheckBreach:        true,
	registry.ReverseImageSearch: true,
}

// normalize turns one validated tool result into items. The category is
// decided here, never by the connector.
// args are the typed arguments the registry decoded for the call.
func normalize(id registry.ToolID, args, value any) []*store.Item {
	var items []*store.Item
	switch id {
	case registry.SearchWeb:
		for _, r := range value.([]connectors.WebResult) {
			items = append(items, newItem(risk.CategoryWebResult, "web", r.Title, r.Snippet, r.URL, webConfidence, r))
		}
	case registry.SearchSocial:
		a, _ := args.(connectors.SocialSearchArgs)
		source := a.Service
		if source == "" {
			source = "social"
		}
		for _, p := range value.([]connectors.SocialPost) {
			items = append(items, newItem(risk.CategorySocialPost, source, p.Text, p.Text, p.URL, socialConfidence, p))
		}
	case registry.CheckBreach:
		report := value.(*connectors.BreachReport)
		for _, b := range report.Breaches {
			title := b.Name
			if title == "" {
				title = "Breach"
			}
			items = append(items, newItem(risk.CategoryBreach, "hibp", title, b.Details, b.URL, breachConfidence, b))
		}
	case registry.ReverseImageSearch:
		for _, m := range value.([]connectors.ImageMatch) {
			title := m.URL
			if title == "" {
				title = "Image match"
			}
			items = append(items, newItem(risk.CategoryImageMatch, "reverse_image", title, m.Context, m.URL, m.Similarity, m))
		}
	}
	return items
}

func newItem(category, source, title, snippet, url string, confidence float64, raw any) *store.Item {
	meta, err := json.Marshal(raw)
	if err != nil {
		meta = []byte("{}")
	}
	return &store.Item{
		ID:           uuid.NewString(),
		Category:     category,
		Source:       source,
		Title:        title,
		Snippet:      snippet,
		URL:          url,
		Confidence:   confidence,
		MetadataJSON: string(meta),
	}
}

// applyScores sets each item's risk score from the scorer, matched by id.
func applyScores(items []*store.Item) {
	if len(items) == 0 {
		return
	}
	in := make([]risk.Input, 0, len(items))
	for _, it := range items {
		in = append(in, risk.Input{ID: it.ID, Category: it.Category, Confidence: it.Confidence})
	}
	byID := make(map[string]float64, len(items))
	for _, s := range risk.ScoreItems(in) {
		byID[s.ItemID] = s.RiskScore
	}
	for _, it := range items {
		if score, ok := byID[it.ID]; ok {
			it.RiskScore = score
		}
	}
}
