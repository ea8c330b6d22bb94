// Package config builds the process configuration once from the environment.
// Components receive a *Config instead of reading environment variables themselves.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every setting the service recognizes.
type Config struct {
	HTTPAddr       string
	GRPCHealthAddr string // empty disables the gRPC health listener
	LogLevel       string
	CORSOrigins    []string

	JWTSecret      string
	AccessTokenTTL time.Duration
	PasswordSalt   string
	PseudonymSalt  string

	DatabaseURL   string
	ClickHouseDSN string

	// MockConnectors forces every connector and the planner into
	// deterministic sample-data behaviour.
	MockConnectors bool

	Planner PlannerConfig
	Search  SearchConfig
}

// PlannerConfig selects and configures the language-model backend.
type PlannerConfig struct {
	Provider     string // "openai" or "gemini"
	Model        string
	APIKey       string
	BaseURL      string
	GeminiAPIKey string
	FewShotsPath string // empty uses the bundled examples
}

// SearchConfig configures the real web search connector.
type SearchConfig struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultGeminiModel = "gemini-1.5-flash"
	defaultSearchURL   = "https://api.bing.microsoft.com/v7.0/search"
)

// Load reads the environment and applies defaults.
func Load() *Config {
	provider := strings.ToLower(envOrDefault("PLANNER_PROVIDER", "openai"))
	model := os.Getenv("PLANNER_MODEL")
	if model == "" {
		model = defaultOpenAIModel
		if provider == "gemini" {
			model = defaultGeminiModel
		}
	}

	return &Config{
		HTTPAddr:       envOrDefault("HTTP_ADDR", ":8000"),
		GRPCHealthAddr: os.Getenv("GRPC_HEALTH_ADDR"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		CORSOrigins:    splitList(envOrDefault("CORS_ORIGINS", "http://localhost:3000")),

		JWTSecret:      envOrDefault("JWT_SECRET", "dev_secret_change_me"),
		AccessTokenTTL: time.Duration(envOrDefaultInt("ACCESS_TOKEN_TTL_MINUTES", 60*24)) * time.Minute,
		PasswordSalt:   envOrDefault("PASSWORD_SALT", "local_salt"),
		PseudonymSalt:  envOrDefault("PSEUDONYM_SALT", "local_dev_salt_any_string"),

		DatabaseURL:   envOrDefault("DATABASE_URL", "sqlite:datasteward.db"),
		ClickHouseDSN: os.Getenv("CLICKHOUSE_DSN"),

		MockConnectors: envBool("MOCK_CONNECTORS"),

		Planner: PlannerConfig{
			Provider:     provider,
			Model:        model,
			APIKey:       firstNonEmpty(os.Getenv("OPENAI_API_KEY"), os.Getenv("LLM_API_KEY")),
			BaseURL:      envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			FewShotsPath: os.Getenv("PLANNER_FEWSHOTS_PATH"),
		},
		Search: SearchConfig{
			APIKey:   firstNonEmpty(os.Getenv("SEARCH_API_KEY"), os.Getenv("BING_API_KEY")),
			Endpoint: envOrDefault("SEARCH_ENDPOINT", defaultSearchURL),
			Timeout:  time.Duration(envOrDefaultInt("SEARCH_TIMEOUT_MS", 5000)) * time.Millisecond,
		},
	}
}

// PlannerCredential returns the credential for the configured provider.
func (c *Config) PlannerCredential() string {
	if c.Planner.Provider == "gemini" {
		return c.Planner.GeminiAPIKey
	}
	return c.Planner.APIKey
}

// UseModelPlanner reports whether the planner should call a language model.
func (c *Config) UseModelPlanner() bool {
	return !c.MockConnectors && c.PlannerCredential() != ""
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envBool(key string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), "true")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
