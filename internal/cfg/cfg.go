package cfg

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

// Config adds oncall-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	PagerDutyAPIKey       string
	PagerDutyEndpoint     string
	RequestTimeoutSeconds int
	ConsoleToken          string
	RefreshOnStart        bool
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.PagerDutyAPIKey, "pagerduty-api-key", "", "API key for the PagerDuty REST API")
	fs.StringVar(&c.PagerDutyEndpoint, "pagerduty-endpoint", "https://api.pagerduty.com", "PagerDuty REST API base URL")
	fs.IntVar(&c.RequestTimeoutSeconds, "request-timeout-seconds", 10, "per-request timeout for PagerDuty calls (1..120)")
	fs.StringVar(&c.ConsoleToken, "console-token", "", "bearer token protecting the console API (empty = no auth)")
	fs.BoolVar(&c.RefreshOnStart, "refresh-on-start", true, "fetch the incident list once at startup")
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

	// PagerDuty credential is required for every console operation
	if c.PagerDutyAPIKey == "" {
		errs = append(errs, errors.New("PAGERDUTY_API_KEY is required"))
	}

	if c.PagerDutyEndpoint == "" {
		errs = append(errs, errors.New("PAGERDUTY_ENDPOINT is required"))
	} else if !strings.HasPrefix(c.PagerDutyEndpoint, "http://") && !strings.HasPrefix(c.PagerDutyEndpoint, "https://") {
		errs = append(errs, fmt.Errorf("invalid PAGERDUTY_ENDPOINT %q (must be an http(s) URL)", c.PagerDutyEndpoint))
	}

	if c.RequestTimeoutSeconds <= 0 || c.RequestTimeoutSeconds > 120 {
		errs = append(errs, fmt.Errorf("invalid REQUEST_TIMEOUT_SECONDS %d (must be 1..120)", c.RequestTimeoutSeconds))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
