package app

import "github.com/jimmmmothy/Belote-Enterprise/internal/config"

// OptionsFromConfig turns the game config into game options. A nil config
// gives the defaults.
func OptionsFromConfig(c *config.GameConfig) []Option {
	opts := []Option{WithTrickPause(c.TrickPause())}
	if c != nil && c.LastTrickBonus > 0 {
		opts = append(opts, WithRoundScorer(LastTrickBonus{Points: c.LastTrickBonus}))
	}
	return opts
}
