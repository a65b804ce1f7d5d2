package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// DefaultPath is where the Nakama module looks for the game config.
const DefaultPath = "data/game_config.json"

const (
	defaultTrickPauseMs        = 1000
	defaultBotMinDelaySeconds  = 1
	defaultBotMaxDelaySeconds  = 3
	defaultBotAutoFillSeconds  = 5
	defaultSeatTokenTTLMinutes = 120
)

type GameConfig struct {
	TrickPauseMs       int  `json:"trick_pause_ms"`
	BotsEnabled        bool `json:"bots_enabled"`
	BotMinDelaySeconds int  `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds int  `json:"bot_max_delay_seconds"`
	// BotAutoFillDelaySeconds is how long a lobby with humans waits before bots take the empty seats.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	SeatTokenTTLMinutes     int `json:"seat_token_ttl_minutes"`
	// LastTrickBonus is added to the team taking the last trick. Zero disables it.
	LastTrickBonus int `json:"last_trick_bonus"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path. Only the
// first call reads the file.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c, err := ReadGameConfig(path)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// ReadGameConfig parses a config file without touching the global one.
func ReadGameConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}

	var c GameConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if c.BotMaxDelaySeconds > 0 && c.BotMinDelaySeconds > c.BotMaxDelaySeconds {
		return nil, fmt.Errorf("bot delay range %d..%d is inverted", c.BotMinDelaySeconds, c.BotMaxDelaySeconds)
	}
	return &c, nil
}

// GetGameConfig returns the global game configuration, or nil before a
// successful load.
func GetGameConfig() *GameConfig {
	return cfg
}

// Defaults returns the values used when no config file is loaded.
func Defaults() *GameConfig {
	return &GameConfig{
		TrickPauseMs:            defaultTrickPauseMs,
		BotsEnabled:             true,
		BotMinDelaySeconds:      defaultBotMinDelaySeconds,
		BotMaxDelaySeconds:      defaultBotMaxDelaySeconds,
		BotAutoFillDelaySeconds: defaultBotAutoFillSeconds,
		SeatTokenTTLMinutes:     defaultSeatTokenTTLMinutes,
	}
}

func (c *GameConfig) TrickPause() time.Duration {
	if c == nil || c.TrickPauseMs < 0 {
		return defaultTrickPauseMs * time.Millisecond
	}
	return time.Duration(c.TrickPauseMs) * time.Millisecond
}

// BotDelayRange returns the bounds, in seconds, of a bot's thinking time.
func (c *GameConfig) BotDelayRange() (lo, hi int) {
	if c == nil || c.BotMaxDelaySeconds <= 0 {
		return defaultBotMinDelaySeconds, defaultBotMaxDelaySeconds
	}
	return c.BotMinDelaySeconds, c.BotMaxDelaySeconds
}

func (c *GameConfig) BotAutoFillDelay() int {
	if c == nil || c.BotAutoFillDelaySeconds <= 0 {
		return defaultBotAutoFillSeconds
	}
	return c.BotAutoFillDelaySeconds
}

func (c *GameConfig) SeatTokenTTL() time.Duration {
	if c == nil || c.SeatTokenTTLMinutes <= 0 {
		return defaultSeatTokenTTLMinutes * time.Minute
	}
	return time.Duration(c.SeatTokenTTLMinutes) * time.Minute
}

func (c *GameConfig) BotsOn() bool {
	if c == nil {
		return true
	}
	return c.BotsEnabled
}
