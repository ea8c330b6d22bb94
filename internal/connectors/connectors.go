// Package connectors adapts external data sources behind one call per
// capability. In mock mode every connector returns fixed sample data shaped
// exactly like its real response.
package connectors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Kedareswar13/Privacy-Protector/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// ErrNotImplemented is returned by connectors without a real-mode integration.
var ErrNotImplemented = errors.New("not implemented")

// DefaultTone is used when a remediation request names no tone.
const DefaultTone = "polite"

// Set holds every connector. It is stateless apart from its configuration
// and the shared HTTP client.
type Set struct {
	mock      bool
	search    config.SearchConfig
	http      *resty.Client
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
}

// New builds the connector set from the process configuration.
func New(cfg *config.Config, logger *zap.Logger) *Set {
	client := resty.New().
		SetTimeout(cfg.Search.Timeout).
		SetLogger(NewRestyLogger(logger))

	return &Set{
		mock:      cfg.MockConnectors,
		search:    cfg.Search,
		http:      client,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

// MockMode reports whether connectors return sample data.
func (s *Set) MockMode() bool { return s.mock }

// SearchSocial searches one social service.
func (s *Set) SearchSocial(_ context.Context, args SocialSearchArgs) ([]SocialPost, error) {
	if s.mock {
		return mockSocial(args), nil
	}
	return nil, fmt.Errorf("%s search: %w", args.Service, ErrNotImplemented)
}

// CheckBreach looks an email address up in breach databases.
func (s *Set) CheckBreach(_ context.Context, args BreachArgs) (*BreachReport, error) {
	if s.mock {
		return mockBreach(args), nil
	}
	return nil, fmt.Errorf("HIBP check: %w", ErrNotImplemented)
}

// ReverseImageSearch finds images matching a perceptual hash.
func (s *Set) ReverseImageSearch(_ context.Context, args ReverseImageArgs) ([]ImageMatch, error) {
	if s.mock {
		return mockReverseImage(args), nil
	}
	return nil, fmt.Errorf("reverse image search: %w", ErrNotImplemented)
}

// GenerateRemediation drafts a removal request for an item.
func (s *Set) GenerateRemediation(_ context.Context, args RemediationArgs) (*Remediation, error) {
	if args.Tone == "" {
		args.Tone = DefaultTone
	}
	if s.mock {
		return mockRemediation(args), nil
	}
	return nil, fmt.Errorf("remediation generation: %w", ErrNotImplemented)
}

// --- Mock fixtures ---

func mockWeb(args WebSearchArgs) []WebResult {
	return []WebResult{{
		Title:   "Mock result for " + args.Query,
		Snippet: "This is a mock snippet about " + args.Query,
		URL:     "https://example.com/mock/" + strings.ReplaceAll(args.Query, " ", "%20"),
		Date:    "2024-01-01",
	}}
}

func mockSocial(args SocialSearchArgs) []SocialPost {
	return []SocialPost{{
		ID:        fmt.Sprintf("mock-%s-1", args.Service),
		Text:      fmt.Sprintf("Mock post from %s about %s", args.Service, args.Query),
		URL:       fmt.Sprintf("https://%s.com/mock/%s", args.Service, args.Query),
		Timestamp: "2024-01-01T12:00:00Z",
		Meta:      map[string]any{"author": "mock_user"},
	}}
}

func mockBreach(BreachArgs) *BreachReport {
	return &BreachReport{
		Pwned: true,
		Breaches: []Breach{{
			Name:    "MockBreach2023",
			Date:    "2023-06-01",
			Details: "Mock breach details",
		}},
	}
}

func mockReverseImage(args ReverseImageArgs) []ImageMatch {
	return []ImageMatch{{
		URL:        "https://example.com/images/" + args.ImageHash,
		Similarity: 0.95,
		Context:    "Mock reverse image search result",
	}}
}

func mockRemediation(args RemediationArgs) *Remediation {
	return &Remediation{
		DraftEmail:    fmt.Sprintf("Mock %s email for item %s", args.Tone, args.ItemID),
		Steps:         []string{"Mock step 1 for " + args.ItemID, "Mock step 2"},
		SettingsLinks: []string{"https://example.com/settings/" + args.ItemID},
	}
}
