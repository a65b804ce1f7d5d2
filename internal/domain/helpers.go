package domain

// LowestAvailableSeat returns the first free seat index (0-based), or -1 when full.
func LowestAvailableSeat(seats *[SeatCount]string) int {
	for i := 0; i < len(seats); i++ {
		if seats[i] == "" {
			return i
		}
	}
	return -1
}

// LabelPayload holds the values advertised in a match label.
type LabelPayload struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Name  string `json:"name"`
	Phase string `json:"phase"`
}

// ComputeLabel derives the advertised label from game state and seat occupancy.
func ComputeLabel(s *GameState, name string, occupied int) LabelPayload {
	open := 0
	if s.Phase == PhaseWaiting && occupied < SeatCount {
		open = SeatCount - occupied
	}
	return LabelPayload{Open: open, Game: "belote", Name: name, Phase: string(s.Phase)}
}
