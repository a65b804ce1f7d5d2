package bot

import (
	"fmt"
	"strings"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelGood BotLevel = iota
	BotLevelStandard
)

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelGood:
		return &GoodBot{}, nil
	case BotLevelStandard:
		return NewStandardBot(DefaultTuning), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, level)
	}
}

// LevelForDifficulty maps an identity's difficulty to a level.
func LevelForDifficulty(difficulty string) BotLevel {
	switch strings.ToLower(difficulty) {
	case "easy":
		return BotLevelGood
	default:
		return BotLevelStandard
	}
}
