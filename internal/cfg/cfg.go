package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config holds all service configuration, bound to flags and filled from
// the environment by the common cfg helpers.
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	APIToken              string
	ClaudeAPIKey          string
	ClaudeModel           string
	DatabaseURL           string
	SearchEndpoint        string
	SearchTenantID        string
	SearchTopK            int
	NormalizeThreshold    float64
	MinMatchScore         int
	AvailabilityWindow    int
	SlackWebhookURL       string
	RefdataFile           string
	DirectoryFile         string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token required on API requests (empty = no auth)")
	fs.StringVar(&c.ClaudeAPIKey, "claude-api-key", "", "API key for accessing the Claude LLM provider")
	fs.StringVar(&c.ClaudeModel, "claude-model", "claude-sonnet-4-20250514", "Claude model to use")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory store)")
	fs.StringVar(&c.SearchEndpoint, "search-endpoint", "", "document search service endpoint for the knowledge path")
	fs.StringVar(&c.SearchTenantID, "search-tenant-id", "", "search service tenant ID for multi-tenant setups")
	fs.IntVar(&c.SearchTopK, "search-top-k", 4, "number of documents retrieved per knowledge query (1..20)")
	fs.Float64Var(&c.NormalizeThreshold, "normalize-threshold", 0.7, "minimum similarity for vocabulary normalization (0..1]")
	fs.IntVar(&c.MinMatchScore, "min-match-score", 20, "minimum specialist score for an assignment (>= 0)")
	fs.IntVar(&c.AvailabilityWindow, "availability-window-days", 7, "days of calendar availability considered when scoring (1..30)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for notifications")
	fs.StringVar(&c.RefdataFile, "refdata-file", "", "JSON reference-data file (rules, specialists, vocabulary) when no database is configured")
	fs.StringVar(&c.DirectoryFile, "employee-directory-file", "", "JSON employee directory file (empty = no employee context)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Claude API key is required for LLM access
	if c.ClaudeAPIKey == "" {
		errs = append(errs, errors.New("CLAUDE_API_KEY is required"))
	}

	// Claude model is required for LLM access
	if c.ClaudeModel == "" {
		errs = append(errs, errors.New("CLAUDE_MODEL is required"))
	}

	// Search endpoint is required for the document-question path
	if c.SearchEndpoint == "" {
		errs = append(errs, errors.New("SEARCH_ENDPOINT is required"))
	}

	if c.SearchTopK <= 0 || c.SearchTopK > 20 {
		errs = append(errs, fmt.Errorf("invalid SEARCH_TOP_K %d (must be 1..20)", c.SearchTopK))
	}

	if c.NormalizeThreshold <= 0 || c.NormalizeThreshold > 1 {
		errs = append(errs, fmt.Errorf("invalid NORMALIZE_THRESHOLD %g (must be in (0, 1])", c.NormalizeThreshold))
	}

	if c.MinMatchScore < 0 {
		errs = append(errs, fmt.Errorf("invalid MIN_MATCH_SCORE %d (must be >= 0)", c.MinMatchScore))
	}

	if c.AvailabilityWindow <= 0 || c.AvailabilityWindow > 30 {
		errs = append(errs, fmt.Errorf("invalid AVAILABILITY_WINDOW_DAYS %d (must be 1..30)", c.AvailabilityWindow))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
