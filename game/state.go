package game

import (
	"time"

	"github.com/lazharichir/bluff/cards"
)

// Status of a game as a whole
type Status string

const (
	StatusPending  Status = "pending"
	StatusPlaying  Status = "playing"
	StatusComplete Status = "complete"
)

// Role of a human looking at a game
type Role string

const (
	RolePlayer Role = "player"
	RoleViewer Role = "viewer"
)

// HandResult records how the pot of a resolved hand was split.
type HandResult struct {
	Hand   int
	Awards map[string]int        // chips taken from the pot, by player
	Cards  map[string]cards.Card // cards still live at showdown
}

// GameState is the projection of a game's action log. It is rebuilt from
// scratch on every read and never stored.
type GameState struct {
	Status Status

	// Seating holds every player who ever bought in, in join order. Turn and
	// dealer rotation walk it and wrap around.
	Seating []string
	Active  map[string]bool
	Waiting map[string]bool
	Out     map[string]bool

	Chips      map[string]int
	Pot        map[string]int // contributions to the current hand
	Cards      map[string]cards.Card
	LastAction map[string]int // contribution recorded at the player's last bet or check this hand
	Owed       map[string]int // what a folding player still owed when they folded

	Dealer         string // holds the dealer marker, "" when none
	ActionTo       string // whose move it is, "" when nobody's
	HandInProgress bool
	Hands          int
	BoughtIn       int // total chips granted by buy_in actions
	LastResult     *HandResult

	latestActionAt time.Time
}

// NewGameState returns the state of a game with no actions.
func NewGameState() *GameState {
	return &GameState{
		Status:     StatusPending,
		Active:     make(map[string]bool),
		Waiting:    make(map[string]bool),
		Out:        make(map[string]bool),
		Chips:      make(map[string]int),
		Pot:        make(map[string]int),
		Cards:      make(map[string]cards.Card),
		LastAction: make(map[string]int),
		Owed:       make(map[string]int),
	}
}

// Members are the players seated now or waiting for the next hand, in
// seating order. Eliminated players are not members.
func (s *GameState) Members() []string {
	members := make([]string, 0, len(s.Seating))
	for _, id := range s.Seating {
		if s.Active[id] || s.Waiting[id] {
			members = append(members, id)
		}
	}
	return members
}

// ActivePlayers returns the players dealt into the current hand, in seating order.
func (s *GameState) ActivePlayers() []string {
	players := make([]string, 0, len(s.Active))
	for _, id := range s.Seating {
		if s.Active[id] {
			players = append(players, id)
		}
	}
	return players
}

// IsMember reports whether the human has ever bought in, including
// eliminated players.
func (s *GameState) IsMember(humanID string) bool {
	return s.Active[humanID] || s.Waiting[humanID] || s.Out[humanID]
}

// Role returns whether the human plays at this game or only watches it.
func (s *GameState) Role(humanID string) Role {
	if s.Active[humanID] || s.Waiting[humanID] {
		return RolePlayer
	}
	return RoleViewer
}

func (s *GameState) ChipCount(playerID string) int {
	return s.Chips[playerID]
}

func (s *GameState) Contribution(playerID string) int {
	return s.Pot[playerID]
}

// PotTotal sums every contribution to the current hand.
func (s *GameState) PotTotal() int {
	total := 0
	for _, amount := range s.Pot {
		total += amount
	}
	return total
}

// TotalChips sums chips held and chips in the pot. It always equals BoughtIn.
func (s *GameState) TotalChips() int {
	total := s.PotTotal()
	for _, amount := range s.Chips {
		total += amount
	}
	return total
}

// HighestContribution is the table-high contribution this hand.
func (s *GameState) HighestContribution() int {
	return s.highestContributionExcept("")
}

func (s *GameState) highestContributionExcept(playerID string) int {
	highest := 0
	for id, amount := range s.Pot {
		if id != playerID && amount > highest {
			highest = amount
		}
	}
	return highest
}

// MinimumBet is the smallest legal bet: at least the ante or what is needed to
// match everybody else, but never more than the player holds.
func (s *GameState) MinimumBet(playerID string, ante int) int {
	return min(s.Chips[playerID], max(ante, s.highestContributionExcept(playerID)-s.Pot[playerID]))
}

// MaximumBet is everything the player holds.
func (s *GameState) MaximumBet(playerID string) int {
	return s.Chips[playerID]
}

// CanCheck reports whether a check would be legal if it were the player's turn.
func (s *GameState) CanCheck(playerID string) bool {
	return s.Chips[playerID] == 0 || s.Pot[playerID] >= s.HighestContribution()
}

// DealingOrder starts with the player after the dealer and ends with the dealer.
func (s *GameState) DealingOrder() []string {
	order := make([]string, 0, len(s.Active))
	for _, id := range s.seatsAfter(s.Dealer) {
		if s.Active[id] {
			order = append(order, id)
		}
	}
	if s.Active[s.Dealer] {
		order = append(order, s.Dealer)
	}
	return order
}

// NeedsDeal reports whether a hand just resolved and the next one has not
// been dealt yet.
func (s *GameState) NeedsDeal() bool {
	return s.Status == StatusPlaying && !s.HandInProgress && s.Hands > 0 && s.Dealer != ""
}

// Winner returns the last player standing once the game is complete.
func (s *GameState) Winner() (string, bool) {
	if s.Status != StatusComplete {
		return "", false
	}
	active := s.ActivePlayers()
	if len(active) != 1 {
		return "", false
	}
	return active[0], true
}

// LatestActionAt is the time of the newest action in the log.
func (s *GameState) LatestActionAt() time.Time {
	return s.latestActionAt
}

// seatsAfter lists every other seated player clockwise from playerID. When
// playerID is not seated the walk starts at the first seat.
func (s *GameState) seatsAfter(playerID string) []string {
	n := len(s.Seating)
	start := -1
	for i, id := range s.Seating {
		if id == playerID {
			start = i
			break
		}
	}

	seats := make([]string, 0, n)
	for k := 1; k <= n; k++ {
		id := s.Seating[(start+k+n)%n]
		if id == playerID {
			continue
		}
		seats = append(seats, id)
	}
	return seats
}

// nextActiveAfter returns the first active player clockwise from playerID.
func (s *GameState) nextActiveAfter(playerID string) string {
	for _, id := range s.seatsAfter(playerID) {
		if s.Active[id] {
			return id
		}
	}
	return ""
}
