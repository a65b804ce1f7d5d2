package app

import (
	"time"

	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

// PlayersToStartGame is the number of occupied seats required to start a game.
const PlayersToStartGame = domain.SeatCount

// DefaultTrickPause delays the lead prompt after a trick so clients can show the cards.
const DefaultTrickPause = time.Second

// RestartReasonAllPassed is sent with ROUND_RESTART after four passes.
const RestartReasonAllPassed = "all_passed"
