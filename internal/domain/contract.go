package domain

import (
	"fmt"
	"strings"
)

// Contract is a rung on the bidding ladder.
type Contract int

const (
	ContractPass Contract = iota
	ContractClubs
	ContractDiamonds
	ContractHearts
	ContractSpades
	ContractNoTrumps
	ContractAllTrumps
)

var contractNames = [...]string{"Pass", "Clubs", "Diamonds", "Hearts", "Spades", "No Trumps", "All Trumps"}

// Contracts lists the full ladder, lowest first.
var Contracts = []Contract{
	ContractPass,
	ContractClubs,
	ContractDiamonds,
	ContractHearts,
	ContractSpades,
	ContractNoTrumps,
	ContractAllTrumps,
}

func (c Contract) Valid() bool {
	return c >= ContractPass && c <= ContractAllTrumps
}

func (c Contract) String() string {
	if !c.Valid() {
		return fmt.Sprintf("contract(%d)", int(c))
	}
	return contractNames[c]
}

// MarshalText encodes the contract by its display name.
func (c Contract) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid contract %d", int(c))
	}
	return []byte(contractNames[c]), nil
}

// UnmarshalText decodes a contract name.
func (c *Contract) UnmarshalText(text []byte) error {
	parsed, err := ParseContract(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseContract matches display names ignoring case, spaces and underscores,
// so "No Trumps", "NoTrumps" and "no_trumps" are the same contract.
func ParseContract(name string) (Contract, error) {
	key := normalizeContractName(name)
	for i, n := range contractNames {
		if normalizeContractName(n) == key {
			return Contract(i), nil
		}
	}
	return 0, fmt.Errorf("unknown contract %q", name)
}

func normalizeContractName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "")
	return strings.ReplaceAll(name, "_", "")
}

// TrumpSuit reports the trump suit of a plain suit contract. All Trumps and
// No Trumps have no single trump suit.
func (c Contract) TrumpSuit() (Suit, bool) {
	if c >= ContractClubs && c <= ContractSpades {
		return SuitClubs + Suit(c-ContractClubs), true
	}
	return 0, false
}

// IsTrump reports whether the card ranks as trump under the contract.
func (c Contract) IsTrump(card Card) bool {
	if c == ContractAllTrumps {
		return true
	}
	trump, ok := c.TrumpSuit()
	return ok && card.Suit == trump
}

// AvailableContracts returns Pass followed by every contract strictly above highest.
func AvailableContracts(highest Contract) []Contract {
	out := []Contract{ContractPass}
	for _, c := range Contracts {
		if c > highest && c != ContractPass {
			out = append(out, c)
		}
	}
	return out
}

// CanBid reports whether contract is among AvailableContracts(highest).
func CanBid(highest, contract Contract) bool {
	return contract == ContractPass || (contract.Valid() && contract > highest)
}
