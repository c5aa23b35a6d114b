/*
config.go - Environment-driven configuration

PURPOSE:
  Loads all runtime configuration from environment variables with sane
  defaults. Everything the server needs (router credentials, listen port,
  store file paths, polling budgets, the carrier trigger) comes through
  here so the rest of the code never touches os.Getenv.

VARIABLES:
  ROUTER_URL               Base URL of the LTE router web API (required)
  ROUTER_USERNAME          Router login (default: admin)
  ROUTER_PASSWORD          Router password
  PORT                     HTTP listen port (default: 3000)
  STATE_FILE               Balance state JSON file (default: balance_state.json)
  HISTORY_FILE             History JSON file (default: balance_logs.json)
  POLL_ATTEMPTS            Reconciliation loop retry budget (default: 5)
  POLL_BASELINE_DELAY_MS   Inter-attempt delay when establishing a baseline (default: 1000)
  POLL_BALANCE_DELAY_MS    Inter-attempt delay for balance-info polling (default: 3000)
  TRIGGER_NUMBER           Carrier short code for balance checks (default: 18258)
  TRIGGER_MESSAGE          Trigger SMS body (default: TILI)
  STATIC_DIR               Static frontend directory (default: ./public)

SEE ALSO:
  - cmd/server/main.go: Consumes the loaded config
*/
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	RouterURL      string
	RouterUsername string
	RouterPassword string
	Port           int

	StateFile   string
	HistoryFile string

	PollAttempts  int
	BaselineDelay time.Duration
	BalanceDelay  time.Duration

	TriggerNumber  string
	TriggerMessage string

	StaticDir string
}

// ErrRouterURLRequired is returned when ROUTER_URL is not set.
var ErrRouterURLRequired = errors.New("ROUTER_URL is required")

// Load reads configuration from the environment.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("router_url", "")
	v.SetDefault("router_username", "admin")
	v.SetDefault("router_password", "")
	v.SetDefault("port", 3000)
	v.SetDefault("state_file", "balance_state.json")
	v.SetDefault("history_file", "balance_logs.json")
	v.SetDefault("poll_attempts", 5)
	v.SetDefault("poll_baseline_delay_ms", 1000)
	v.SetDefault("poll_balance_delay_ms", 3000)
	v.SetDefault("trigger_number", "18258")
	v.SetDefault("trigger_message", "TILI")
	v.SetDefault("static_dir", "./public")

	v.AutomaticEnv()

	c := Config{
		RouterURL:      v.GetString("router_url"),
		RouterUsername: v.GetString("router_username"),
		RouterPassword: v.GetString("router_password"),
		Port:           v.GetInt("port"),
		StateFile:      v.GetString("state_file"),
		HistoryFile:    v.GetString("history_file"),
		PollAttempts:   v.GetInt("poll_attempts"),
		BaselineDelay:  time.Duration(v.GetInt("poll_baseline_delay_ms")) * time.Millisecond,
		BalanceDelay:   time.Duration(v.GetInt("poll_balance_delay_ms")) * time.Millisecond,
		TriggerNumber:  v.GetString("trigger_number"),
		TriggerMessage: v.GetString("trigger_message"),
		StaticDir:      v.GetString("static_dir"),
	}

	if c.RouterURL == "" {
		return Config{}, ErrRouterURLRequired
	}
	return c, nil
}
