package risk

import "fmt"

// Item categories assigned by the scan orchestrator.
const (
	CategoryWebResult     = "web_result"
	CategorySocialPost    = "social_post"
	CategoryBreach        = "breach"
	CategoryImageMatch    = "image_match"
	CategoryGitHubProfile = "github_profile"
	CategoryUnknown       = "unknown"
)

// DefaultWeight applies to any category missing from the weight table.
const DefaultWeight = 0.10

var weights = map[string]float64{
	CategoryBreach:        0.40,
	CategoryGitHubProfile: 0.25,
	CategoryWebResult:     0.20,
	CategoryImageMatch:    0.15,
	CategoryUnknown:       DefaultWeight,
}

// Input is one item to score.
type Input struct {
	ID         string
	Category   string
	Confidence float64
}

// Score is the scorer's output for one Input.
type Score struct {
	ItemID      string  `json:"item_id"`
	RiskScore   float64 `json:"risk_score"`
	Category    string  `json:"category"`
	Explanation string  `json:"explanation"`
}

// Weight returns the table weight for a category.
func Weight(category string) float64 {
	if w, ok := weights[category]; ok {
		return w
	}
	return DefaultWeight
}

// ScoreItems returns one Score per input, in input order.
// risk_score = weight(category) * confidence.
func ScoreItems(items []Input) []Score {
	out := make([]Score, 0, len(items))
	for _, it := range items {
		cat := it.Category
		if cat == "" {
			cat = CategoryUnknown
		}
		out = append(out, Score{
			ItemID:      it.ID,
			RiskScore:   Weight(cat) * it.Confidence,
			Category:    cat,
			Explanation: fmt.Sprintf("Category %s with confidence %v", cat, it.Confidence),
		})
	}
	return out
}
