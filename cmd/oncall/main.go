// Oncall is the terminal console for PagerDuty incidents: list them,
// acknowledge them, resolve them with a note.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linnemanlabs/go-core/cfg"
	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/oncall/internal/console"
	"github.com/linnemanlabs/oncall/internal/pagerduty"
	"github.com/linnemanlabs/oncall/internal/tui"
	"github.com/linnemanlabs/oncall/internal/view"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		apiKey         = flag.String("pagerduty-api-key", "", "API key for the PagerDuty REST API")
		endpoint       = flag.String("pagerduty-endpoint", pagerduty.DefaultBaseURL, "PagerDuty REST API base URL")
		timeoutSeconds = flag.Int("request-timeout-seconds", 10, "per-request timeout for PagerDuty calls (1..120)")
	)
	flag.Parse()

	// Fill in config values from environment variables with prefix ONCALL_,
	// these do not override cmdline flags
	cfg.FillFromEnv(flag.CommandLine, "ONCALL_", func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	})

	if *apiKey == "" {
		return errors.New("pagerduty-api-key is required (flag or ONCALL_PAGERDUTY_API_KEY)")
	}
	if *timeoutSeconds <= 0 || *timeoutSeconds > 120 {
		return fmt.Errorf("invalid request-timeout-seconds %d (must be 1..120)", *timeoutSeconds)
	}

	client := pagerduty.New(*apiKey, *endpoint, time.Duration(*timeoutSeconds)*time.Second)
	state := view.New()

	// Errors surface in the TUI status line; logging to stderr would
	// tear the rendered screen, so the service gets a nop logger and
	// no metrics registry.
	svc := console.NewService(client, state, log.Nop(), nil)

	p := tea.NewProgram(tui.NewModel(svc, state), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
