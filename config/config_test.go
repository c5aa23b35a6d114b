/*
config_test.go - Unit tests for environment configuration
*/
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ROUTER_URL", "http://192.168.8.1")

	c, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://192.168.8.1", c.RouterURL)
	assert.Equal(t, "admin", c.RouterUsername)
	assert.Equal(t, "", c.RouterPassword)
	assert.Equal(t, 3000, c.Port)
	assert.Equal(t, "balance_state.json", c.StateFile)
	assert.Equal(t, "balance_logs.json", c.HistoryFile)
	assert.Equal(t, 5, c.PollAttempts)
	assert.Equal(t, time.Second, c.BaselineDelay)
	assert.Equal(t, 3*time.Second, c.BalanceDelay)
	assert.Equal(t, "18258", c.TriggerNumber)
	assert.Equal(t, "TILI", c.TriggerMessage)
	assert.Equal(t, "./public", c.StaticDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ROUTER_URL", "http://10.0.0.1")
	t.Setenv("ROUTER_USERNAME", "operator")
	t.Setenv("ROUTER_PASSWORD", "hunter2")
	t.Setenv("PORT", "8080")
	t.Setenv("POLL_ATTEMPTS", "3")
	t.Setenv("POLL_BALANCE_DELAY_MS", "500")
	t.Setenv("TRIGGER_NUMBER", "12345")
	t.Setenv("TRIGGER_MESSAGE", "SALDO")

	c, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1", c.RouterURL)
	assert.Equal(t, "operator", c.RouterUsername)
	assert.Equal(t, "hunter2", c.RouterPassword)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, 3, c.PollAttempts)
	assert.Equal(t, 500*time.Millisecond, c.BalanceDelay)
	assert.Equal(t, "12345", c.TriggerNumber)
	assert.Equal(t, "SALDO", c.TriggerMessage)
}

func TestLoad_MissingRouterURL(t *testing.T) {
	t.Setenv("ROUTER_URL", "")

	_, err := Load()

	assert.ErrorIs(t, err, ErrRouterURLRequired)
}
