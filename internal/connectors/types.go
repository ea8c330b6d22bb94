package connectors

// WebSearchArgs are the arguments of searchWeb.
type WebSearchArgs struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// WebResult is one web search hit.
type WebResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Date    string `json:"date,omitempty"`
}

// SocialSearchArgs are the arguments of searchSocial.
type SocialSearchArgs struct {
	Service string `json:"service"`
	Query   string `json:"query"`
	Limit   int    `json:"limit,omitempty"`
}

// SocialPost is one post or profile found on a social service.
type SocialPost struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	URL       string         `json:"url"`
	Timestamp string         `json:"timestamp,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// BreachArgs are the arguments of checkBreach.
type BreachArgs struct {
	Email string `json:"email"`
}

// Breach is one known breach an address appears in.
type Breach struct {
	Name    string `json:"name"`
	Date    string `json:"date,omitempty"`
	Details string `json:"details,omitempty"`
	URL     string `json:"url,omitempty"`
}

// BreachReport is the result of checkBreach.
type BreachReport struct {
	Pwned    bool     `json:"pwned"`
	Breaches []Breach `json:"breaches"`
}

// ReverseImageArgs are the arguments of reverseImageSearch.
type ReverseImageArgs struct {
	ImageHash string `json:"image_hash"`
}

// ImageMatch is one visually similar image. This is image-level matching,
// not face recognition.
type ImageMatch struct {
	URL        string  `json:"url"`
	Similarity float64 `json:"similarity"`
	Context    string  `json:"context,omitempty"`
}

// RemediationArgs are the arguments of generateRemediation.
type RemediationArgs struct {
	ItemID string `json:"item_id"`
	Tone   string `json:"tone,omitempty"`
}

// Remediation is a drafted takedown/cleanup request.
type Remediation struct {
	DraftEmail    string   `json:"draft_email"`
	Steps         []string `json:"steps"`
	SettingsLinks []string `json:"settings_links"`
}
