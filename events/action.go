package events

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownKind is returned when a stored kind does not name an action kind.
var ErrUnknownKind = errors.New("unknown action kind")

// Kind is the closed set of things a participant can do at a game.
type Kind int

const (
	BuyIn Kind = iota + 1
	BecomeDealer
	Ante
	Draw
	Bet
	Check
	Fold
)

// Kinds lists every action kind.
var Kinds = []Kind{BuyIn, BecomeDealer, Ante, Draw, Bet, Check, Fold}

var kindNames = map[Kind]string{
	BuyIn:        "buy_in",
	BecomeDealer: "become_dealer",
	Ante:         "ante",
	Draw:         "draw",
	Bet:          "bet",
	Check:        "check",
	Fold:         "fold",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind decodes the stored name of a kind.
func ParseKind(name string) (Kind, error) {
	for kind, n := range kindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Action is one immutable fact recorded at a game. The log of actions is the
// source of truth; everything else is derived from it.
//
// Value depends on Kind: chips for buy_in, ante and bet; a card index for
// draw and fold; unused for become_dealer and check.
type Action struct {
	Seq       int64     `json:"seq"`
	GameID    string    `json:"gameId"`
	ActorID   string    `json:"actorId"`
	Kind      Kind      `json:"kind"`
	Value     *int      `json:"value,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventName returns the stored name of the action kind
func (a Action) EventName() string { return a.Kind.String() }

// Amount returns Value, or 0 when the action carries none.
func (a Action) Amount() int {
	if a.Value == nil {
		return 0
	}
	return *a.Value
}

// NewAction builds an unsequenced action. The store assigns Seq and CreatedAt
// when it is appended.
func NewAction(gameID, actorID string, kind Kind, value *int) Action {
	return Action{
		GameID:  gameID,
		ActorID: actorID,
		Kind:    kind,
		Value:   value,
	}
}

// Int returns a pointer to v, for Action values.
func Int(v int) *int { return &v }
