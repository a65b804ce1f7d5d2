package domain

// Phase represents the lifecycle stage of a Belote game.
type Phase string

const (
	// PhaseWaiting is the pre-start state where players take seats.
	PhaseWaiting Phase = "WAITING"
	// PhaseBidding is the contract auction.
	PhaseBidding Phase = "BIDDING"
	// PhasePlaying is trick-by-trick card play.
	PhasePlaying Phase = "PLAYING"
	// PhaseScoring follows the last trick of a round.
	PhaseScoring Phase = "SCORING"
)

// Bid is one entry of the auction log.
type Bid struct {
	PlayerID string   `json:"player_id"`
	Contract Contract `json:"contract"`
}

// Move is a card played, or proposed, by a player.
type Move struct {
	PlayerID string `json:"player_id"`
	Suit     Suit   `json:"suit"`
	Rank     Rank   `json:"rank"`
}

func (m Move) Card() Card {
	return Card{Suit: m.Suit, Rank: m.Rank}
}

// Trick is a completed trick kept for card accounting and history.
type Trick struct {
	Moves    []Move `json:"moves"`
	WinnerID string `json:"winner_id"`
	Points   int    `json:"points"`
}

// Score holds the accumulated trick points per team.
type Score struct {
	Team0 int `json:"team0"`
	Team1 int `json:"team1"`
}

// Add credits points to a team. It reports false for an unknown team tag.
func (s *Score) Add(team Team, points int) bool {
	switch team {
	case Team0:
		s.Team0 += points
	case Team1:
		s.Team1 += points
	default:
		return false
	}
	return true
}

func (s Score) Of(team Team) int {
	if team == Team1 {
		return s.Team1
	}
	return s.Team0
}

// GameState is the single mutable aggregate for one game. It is only touched
// by the goroutine that owns the game.
type GameState struct {
	ID                 string
	Players            []*Player
	Dealer             *Dealer
	Phase              Phase
	CurrentPlayerIndex int
	HighestContract    Contract
	Bids               []Bid
	CurrentTrick       []Move
	Tricks             []Trick
	Score              Score
	Round              int
}

// NewGameState creates an empty game waiting for players.
func NewGameState(id string, dealer *Dealer) *GameState {
	return &GameState{
		ID:              id,
		Dealer:          dealer,
		Phase:           PhaseWaiting,
		HighestContract: ContractPass,
	}
}

// Seat returns the seat index of a player or -1.
func (s *GameState) Seat(playerID string) int {
	for i, p := range s.Players {
		if p.ID() == playerID {
			return i
		}
	}
	return -1
}

// Player returns the seated player with the given id or nil.
func (s *GameState) Player(playerID string) *Player {
	if seat := s.Seat(playerID); seat >= 0 {
		return s.Players[seat]
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil before seating.
func (s *GameState) CurrentPlayer() *Player {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentPlayerIndex]
}

// PartnerSeat returns the seat across the table.
func PartnerSeat(seat int) int {
	return (seat + 2) % SeatCount
}

// NextSeat returns the seat to the left.
func NextSeat(seat int) int {
	return (seat + 1) % SeatCount
}

// LatestBid returns the most recent bid a player made in the current auction
// and its position in Bids, or -1 when the player has not bid yet.
func (s *GameState) LatestBid(playerID string) (Contract, int) {
	for i := len(s.Bids) - 1; i >= 0; i-- {
		if s.Bids[i].PlayerID == playerID {
			return s.Bids[i].Contract, i
		}
	}
	return ContractPass, -1
}

// HasPlayedInTrick reports whether the player already has a card in the current trick.
func (s *GameState) HasPlayedInTrick(playerID string) bool {
	for _, m := range s.CurrentTrick {
		if m.PlayerID == playerID {
			return true
		}
	}
	return false
}

// HandsEmpty reports whether every seated player has played out.
func (s *GameState) HandsEmpty() bool {
	for _, p := range s.Players {
		if p.HandSize() > 0 {
			return false
		}
	}
	return true
}

// CardCounts maps player ids to the number of cards they still hold.
func (s *GameState) CardCounts() map[string]int {
	counts := make(map[string]int, len(s.Players))
	for _, p := range s.Players {
		counts[p.ID()] = p.HandSize()
	}
	return counts
}

// CardsAccounted sums cards in hands, completed tricks, the open trick and the
// undealt pool. Outside the waiting phase this is always DeckSize.
func (s *GameState) CardsAccounted() int {
	total := len(s.CurrentTrick)
	for _, p := range s.Players {
		total += p.HandSize()
	}
	for _, t := range s.Tricks {
		total += len(t.Moves)
	}
	if s.Dealer != nil {
		total += s.Dealer.Undealt()
	}
	return total
}
