package engine

import (
	"os"
	"strconv"
	"time"
)

// Config holds the environment-tunable knobs the event loop and reducers
// consult. Defaults match the external-interfaces table. ConfigFromEnv
// overrides only the timing, player-count and LOG_LEVEL fields from the
// environment; the buy-in, timeout-count, auto-leave and countdown-GC
// fields keep their defaults.
type Config struct {
	ActionTimeout        time.Duration
	GameStartCountdown   time.Duration
	MinPlayersToStart    int
	MaxPlayersPerTable   int
	StreetDealDelay      time.Duration
	NewHandDelay         time.Duration
	LogLevel             string
	BuyInMin             int64 // multiples of BB, resolved against a table's BB by NewTable
	BuyInMax             int64
	MaxTimeouts          int
	AutoLeaveAfter       time.Duration
	CountdownGCInterval  time.Duration
	CountdownGraceWindow time.Duration
}

// DefaultConfig returns the documented defaults before environment
// overrides are applied.
func DefaultConfig() Config {
	return Config{
		ActionTimeout:        15 * time.Second,
		GameStartCountdown:   10 * time.Second,
		MinPlayersToStart:    2,
		MaxPlayersPerTable:   9,
		StreetDealDelay:      3 * time.Second,
		NewHandDelay:         5 * time.Second,
		LogLevel:             "info",
		BuyInMin:             20,
		BuyInMax:             200,
		MaxTimeouts:          2,
		AutoLeaveAfter:       5 * time.Minute,
		CountdownGCInterval:  30 * time.Second,
		CountdownGraceWindow: 5 * time.Second,
	}
}

// ConfigFromEnv layers environment variables over DefaultConfig, matching
// the table-server's own getenv-with-default style.
func ConfigFromEnv() Config {
	c := DefaultConfig()
	c.ActionTimeout = envSeconds("ACTION_TIMEOUT_SECONDS", c.ActionTimeout)
	c.GameStartCountdown = envSeconds("GAME_START_COUNTDOWN_SECONDS", c.GameStartCountdown)
	c.MinPlayersToStart = envInt("MIN_PLAYERS_TO_START", c.MinPlayersToStart)
	c.MaxPlayersPerTable = envInt("MAX_PLAYERS_PER_TABLE", c.MaxPlayersPerTable)
	c.StreetDealDelay = envSeconds("STREET_DEAL_DELAY_SECONDS", c.StreetDealDelay)
	c.NewHandDelay = envSeconds("NEW_HAND_DELAY_SECONDS", c.NewHandDelay)
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return c
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return time.Duration(n) * time.Second
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
