package bot

import (
	"errors"
	"testing"

	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
)

func c(s domain.Suit, r domain.Rank) domain.Card { return domain.Card{Suit: s, Rank: r} }

func mv(id string, s domain.Suit, r domain.Rank) domain.Move {
	return domain.Move{PlayerID: id, Suit: s, Rank: r}
}

func TestGoodBotBidding(t *testing.T) {
	tests := []struct {
		name    string
		hand    []domain.Card
		highest domain.Contract
		want    domain.Contract
	}{
		{
			name: "jack with a second trump",
			hand: []domain.Card{c(domain.SuitHearts, domain.RankJack), c(domain.SuitHearts, domain.Rank7), c(domain.SuitClubs, domain.Rank8)},
			want: domain.ContractHearts,
		},
		{
			name: "lonely jack",
			hand: []domain.Card{c(domain.SuitHearts, domain.RankJack), c(domain.SuitClubs, domain.Rank7), c(domain.SuitClubs, domain.Rank8)},
			want: domain.ContractPass,
		},
		{
			name:    "suit already outbid",
			hand:    []domain.Card{c(domain.SuitDiamonds, domain.RankJack), c(domain.SuitDiamonds, domain.Rank9)},
			highest: domain.ContractHearts,
			want:    domain.ContractPass,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := (&GoodBot{}).ChooseBid(View{Hand: tt.hand, Highest: tt.highest})
			if got != tt.want {
				t.Fatalf("ChooseBid() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStandardBotBidding(t *testing.T) {
	strong := []domain.Card{
		c(domain.SuitSpades, domain.RankJack),
		c(domain.SuitSpades, domain.Rank9),
		c(domain.SuitSpades, domain.RankAce),
		c(domain.SuitClubs, domain.Rank7),
		c(domain.SuitDiamonds, domain.Rank8),
	}
	b := NewStandardBot(DefaultTuning)

	if got := b.ChooseBid(View{Hand: strong}); got != domain.ContractSpades {
		t.Fatalf("ChooseBid() = %s, want Spades", got)
	}

	partnerView := View{
		PlayerID:  "p2",
		PartnerID: "p0",
		Hand:      strong,
		Highest:   domain.ContractClubs,
		Bids:      []domain.Bid{{PlayerID: "p0", Contract: domain.ContractClubs}, {PlayerID: "p1", Contract: domain.ContractPass}},
	}
	if got := b.ChooseBid(partnerView); got != domain.ContractPass {
		t.Fatalf("ChooseBid() over partner = %s, want Pass", got)
	}

	weak := []domain.Card{c(domain.SuitClubs, domain.Rank7), c(domain.SuitDiamonds, domain.Rank8), c(domain.SuitHearts, domain.Rank9)}
	if got := b.ChooseBid(View{Hand: weak}); got != domain.ContractPass {
		t.Fatalf("ChooseBid() weak = %s, want Pass", got)
	}
}

func TestStandardBotCardChoice(t *testing.T) {
	tests := []struct {
		name string
		view View
		want domain.Card
	}{
		{
			name: "last to play wins cheaply",
			view: View{
				PlayerID: "p3", PartnerID: "p1", Highest: domain.ContractHearts,
				Hand:  []domain.Card{c(domain.SuitClubs, domain.RankAce), c(domain.SuitClubs, domain.Rank10)},
				Trick: []domain.Move{mv("p0", domain.SuitClubs, domain.RankKing), mv("p1", domain.SuitClubs, domain.Rank7), mv("p2", domain.SuitClubs, domain.Rank8)},
			},
			want: c(domain.SuitClubs, domain.Rank10),
		},
		{
			name: "partner holds the trick",
			view: View{
				PlayerID: "p3", PartnerID: "p1", Highest: domain.ContractHearts,
				Hand:  []domain.Card{c(domain.SuitClubs, domain.Rank7), c(domain.SuitClubs, domain.Rank10)},
				Trick: []domain.Move{mv("p0", domain.SuitClubs, domain.RankKing), mv("p1", domain.SuitClubs, domain.RankAce), mv("p2", domain.SuitClubs, domain.Rank8)},
			},
			want: c(domain.SuitClubs, domain.Rank10),
		},
		{
			name: "cannot win so discards cheapest",
			view: View{
				PlayerID: "p1", PartnerID: "p3", Highest: domain.ContractHearts,
				Hand:  []domain.Card{c(domain.SuitDiamonds, domain.RankKing), c(domain.SuitSpades, domain.Rank7)},
				Trick: []domain.Move{mv("p0", domain.SuitClubs, domain.RankAce)},
			},
			want: c(domain.SuitSpades, domain.Rank7),
		},
		{
			name: "leads the master ace",
			view: View{
				PlayerID: "p0", PartnerID: "p2", Highest: domain.ContractHearts,
				Hand: []domain.Card{c(domain.SuitClubs, domain.RankAce), c(domain.SuitClubs, domain.Rank8), c(domain.SuitHearts, domain.Rank7)},
			},
			want: c(domain.SuitClubs, domain.RankAce),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewStandardBot(DefaultTuning).ChooseCard(tt.view)
			if err != nil {
				t.Fatalf("ChooseCard() error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ChooseCard() = %v, want %v", got, tt.want)
			}
		})
	}
}

// replay feeds finished tricks to the bot as it would see them during a round.
func replay(b *StandardBot, tricks ...[]domain.Move) {
	for i, trick := range tricks {
		for _, m := range trick {
			b.OnEvent(app.Event{Kind: app.EventMovePlayed, Payload: app.MovePlayedPayload{PlayerID: m.PlayerID, Suit: m.Suit, Rank: m.Rank}})
		}
		if i < len(tricks)-1 {
			b.OnEvent(app.Event{Kind: app.EventTrickFinished})
		}
	}
}

func TestStandardBotUsesVoids(t *testing.T) {
	clubsVoid := []domain.Move{mv("p0", domain.SuitClubs, domain.Rank7), mv("p1", domain.SuitDiamonds, domain.Rank7)}
	heartsVoid := []domain.Move{mv("p2", domain.SuitHearts, domain.Rank7), mv("p1", domain.SuitSpades, domain.Rank7)}

	tests := []struct {
		name   string
		tricks [][]domain.Move
		view   View
		want   domain.Card
	}{
		{
			name:   "lead avoids a suit an opponent can ruff",
			tricks: [][]domain.Move{clubsVoid, nil},
			view: View{
				PlayerID: "p0", PartnerID: "p2", Opponents: []string{"p1", "p3"}, Highest: domain.ContractHearts,
				Hand: []domain.Card{c(domain.SuitClubs, domain.RankAce), c(domain.SuitSpades, domain.Rank8)},
			},
			want: c(domain.SuitSpades, domain.Rank8),
		},
		{
			name:   "lead cashes the master once the opponent is out of trumps",
			tricks: [][]domain.Move{clubsVoid, heartsVoid, nil},
			view: View{
				PlayerID: "p0", PartnerID: "p2", Opponents: []string{"p1", "p3"}, Highest: domain.ContractHearts,
				Hand: []domain.Card{c(domain.SuitClubs, domain.RankAce), c(domain.SuitSpades, domain.Rank8)},
			},
			want: c(domain.SuitClubs, domain.RankAce),
		},
		{
			name: "partner safe from an opponent void in suit and trumps",
			tricks: [][]domain.Move{
				{mv("p0", domain.SuitClubs, domain.Rank7), mv("p3", domain.SuitDiamonds, domain.Rank7)},
				{mv("p1", domain.SuitHearts, domain.Rank7), mv("p3", domain.SuitSpades, domain.Rank7)},
				{mv("p0", domain.SuitClubs, domain.RankQueen), mv("p1", domain.SuitClubs, domain.Rank8)},
			},
			view: View{
				PlayerID: "p2", PartnerID: "p0", Opponents: []string{"p3", "p1"}, Highest: domain.ContractHearts,
				Hand:  []domain.Card{c(domain.SuitClubs, domain.Rank10), c(domain.SuitClubs, domain.RankKing)},
				Trick: []domain.Move{mv("p0", domain.SuitClubs, domain.RankQueen), mv("p1", domain.SuitClubs, domain.Rank8)},
			},
			want: c(domain.SuitClubs, domain.Rank10),
		},
		{
			name: "partner unsafe while the void opponent may trump",
			tricks: [][]domain.Move{
				{mv("p0", domain.SuitClubs, domain.Rank7), mv("p3", domain.SuitDiamonds, domain.Rank7)},
				{mv("p0", domain.SuitClubs, domain.RankQueen), mv("p1", domain.SuitClubs, domain.Rank8)},
			},
			view: View{
				PlayerID: "p2", PartnerID: "p0", Opponents: []string{"p3", "p1"}, Highest: domain.ContractHearts,
				Hand:  []domain.Card{c(domain.SuitClubs, domain.Rank10), c(domain.SuitClubs, domain.RankKing)},
				Trick: []domain.Move{mv("p0", domain.SuitClubs, domain.RankQueen), mv("p1", domain.SuitClubs, domain.Rank8)},
			},
			want: c(domain.SuitClubs, domain.RankKing),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewStandardBot(DefaultTuning)
			replay(b, tt.tricks...)
			got, err := b.ChooseCard(tt.view)
			if err != nil {
				t.Fatalf("ChooseCard() error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ChooseCard() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewForListsOpponents(t *testing.T) {
	state := domain.NewGameState("g1", nil)
	for i, id := range []string{"p0", "p1", "p2", "p3"} {
		state.Players = append(state.Players, domain.NewPlayer(id, domain.TeamForSeat(i), ""))
	}
	v, ok := ViewFor(state, "p1")
	if !ok {
		t.Fatal("ViewFor() reported p1 unseated")
	}
	if v.PartnerID != "p3" || len(v.Opponents) != 2 || v.Opponents[0] != "p2" || v.Opponents[1] != "p0" {
		t.Fatalf("partner=%s opponents=%v, want p3 and [p2 p0]", v.PartnerID, v.Opponents)
	}
}

func TestStandardBotMemoryFollowsEvents(t *testing.T) {
	b := NewStandardBot(DefaultTuning)
	b.OnEvent(app.Event{Kind: app.EventMovePlayed, Payload: app.MovePlayedPayload{PlayerID: "p1", Suit: domain.SuitClubs, Rank: domain.RankAce}})

	if !b.Memory.IsPlayed(c(domain.SuitClubs, domain.RankAce)) {
		t.Fatal("played ace not remembered")
	}
	if !b.Memory.IsMaster(c(domain.SuitClubs, domain.Rank10), domain.ContractHearts) {
		t.Fatal("10 of clubs should be master once the ace fell")
	}

	b.OnEvent(app.Event{Kind: app.EventRoundFinished})
	if b.Memory.IsPlayed(c(domain.SuitClubs, domain.RankAce)) {
		t.Fatal("memory should reset with the round")
	}
}

func TestAgentAct(t *testing.T) {
	agents, err := NewTable(BotLevelGood)
	if err != nil {
		t.Fatalf("NewTable() error: %v", err)
	}

	state := domain.NewGameState("g1", nil)
	if _, err := agents[0].Act(state); !errors.Is(err, ErrNotSeated) {
		t.Fatalf("Act() unseated error = %v, want ErrNotSeated", err)
	}

	state.Players = append(state.Players, domain.NewPlayer(agents[0].ID, domain.Team0, ""))
	if _, err := agents[0].Act(state); !errors.Is(err, ErrNothingToDo) {
		t.Fatalf("Act() in WAITING error = %v, want ErrNothingToDo", err)
	}

	state.Phase = domain.PhaseBidding
	action, err := agents[0].Act(state)
	if err != nil || !action.IsBid || action.Bid != domain.ContractPass {
		t.Fatalf("Act() = %+v, %v; want a pass with an empty hand", action, err)
	}
}

func TestNewBrainLevels(t *testing.T) {
	if _, err := NewBrain(BotLevel(42)); !errors.Is(err, ErrUnknownLevel) {
		t.Fatalf("NewBrain(42) error = %v, want ErrUnknownLevel", err)
	}
	if LevelForDifficulty("EASY") != BotLevelGood || LevelForDifficulty("medium") != BotLevelStandard {
		t.Fatal("difficulty mapping changed")
	}
}

func TestGeneratedIdentities(t *testing.T) {
	a, b := GetBotIdentity(0), GetBotIdentity(1)
	if a.UserID == b.UserID {
		t.Fatalf("generated ids collide: %s", a.UserID)
	}
	if !IsBot(a.UserID) || IsBot("user-123") {
		t.Fatal("IsBot misclassifies ids")
	}
}
