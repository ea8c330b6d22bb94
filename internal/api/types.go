package api

import (
	"encoding/json"
	"time"

	"github.com/Kedareswar13/Privacy-Protector/internal/store"
)

// --- Accounts ---

type CredentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResp struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type LoginResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// --- Consent ---

type ConsentReq struct {
	Scopes map[string]any `json:"scopes"`
}

type ConsentResp struct {
	ConsentID string    `json:"consent_id"`
	UserID    string    `json:"user_id"`
	Scopes    any       `json:"scopes,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// --- Scans ---

// Seeds are the identifiers a scan searches for.
type Seeds struct {
	Name      string   `json:"name,omitempty"`
	Email     string   `json:"email,omitempty"`
	Usernames []string `json:"usernames,omitempty"`
	Phones    []string `json:"phones,omitempty"`
}

type CreateScanReq struct {
	Seeds *Seeds `json:"seeds"`
}

type CreateScanResp struct {
	ScanID string `json:"scan_id"`
}

type ScanResp struct {
	ScanID    string    `json:"scan_id"`
	Status    string    `json:"status"`
	SeedsJSON string    `json:"seeds_json"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func scanToResp(s *store.Scan) ScanResp {
	return ScanResp{
		ScanID:    s.ID,
		Status:    s.Status,
		SeedsJSON: s.SeedsJSON,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// --- Items ---

// ItemSummaryResp is the list view of an item.
type ItemSummaryResp struct {
	ID         string  `json:"id"`
	Category   string  `json:"category"`
	Source     string  `json:"source"`
	Title      string  `json:"title"`
	Snippet    string  `json:"snippet"`
	URL        string  `json:"url"`
	Confidence float64 `json:"confidence"`
	RiskScore  float64 `json:"risk_score"`
}

// ItemResp is the full item record.
type ItemResp struct {
	ItemSummaryResp
	ScanID       string    `json:"scan_id"`
	MetadataJSON string    `json:"metadata_json"`
	CreatedAt    time.Time `json:"created_at"`
}

func itemToSummary(it *store.Item) ItemSummaryResp {
	return ItemSummaryResp{
		ID:         it.ID,
		Category:   it.Category,
		Source:     it.Source,
		Title:      it.Title,
		Snippet:    it.Snippet,
		URL:        it.URL,
		Confidence: it.Confidence,
		RiskScore:  it.RiskScore,
	}
}

type ItemActionReq struct {
	Action string `json:"action"`
	Tone   string `json:"tone"`
}

type ToolCallResp struct {
	ID         string          `json:"id"`
	ToolName   string          `json:"tool_name"`
	Args       json.RawMessage `json:"args"`
	Response   json.RawMessage `json:"response"`
	DurationMs *int64          `json:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}

// --- Tools ---

type ToolCallReq struct {
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args"`
}

type ToolCallResult struct {
	Result json.RawMessage `json:"result"`
}

// --- Planner ---

type PlanReq struct {
	State map[string]any `json:"state"`
	Goal  string         `json:"goal"`
}
