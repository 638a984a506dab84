package server

import (
	"fmt"
	"time"

	"github.com/lazharichir/bluff/cards"
	"github.com/lazharichir/bluff/events"
	"github.com/lazharichir/bluff/game"
)

// PlayerView is one seat as a given viewer sees it
type PlayerView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Status       string `json:"status"` // active, waiting or out
	Chips        int    `json:"chips"`
	Contribution int    `json:"contribution"`
	Dealer       bool   `json:"dealer,omitempty"`
	ToAct        bool   `json:"toAct,omitempty"`
	Card         string `json:"card,omitempty"`
}

// TurnView holds the viewer's options when it is their move
type TurnView struct {
	MinimumBet int  `json:"minimumBet"`
	MaximumBet int  `json:"maximumBet"`
	CanCheck   bool `json:"canCheck"`
}

// HandView is the outcome of the last resolved hand
type HandView struct {
	Hand   int               `json:"hand"`
	Awards map[string]int    `json:"awards"`
	Cards  map[string]string `json:"cards"`
}

// GameView is the projected state of a game for one viewer
type GameView struct {
	GameID    string       `json:"gameId"`
	Status    game.Status  `json:"status"`
	Role      game.Role    `json:"role"`
	Hand      int          `json:"hand"`
	Pot       int          `json:"pot"`
	Dealer    string       `json:"dealer,omitempty"`
	ActionTo  string       `json:"actionTo,omitempty"`
	Winner    string       `json:"winner,omitempty"`
	Players   []PlayerView `json:"players"`
	Turn      *TurnView    `json:"turn,omitempty"`
	LastHand  *HandView    `json:"lastHand,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// LogEntry is one narrated action
type LogEntry struct {
	Seq  int64     `json:"seq"`
	Kind string    `json:"kind"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// GamePayload is what a viewer receives for a game, over HTTP or the websocket
type GamePayload struct {
	View GameView   `json:"view"`
	Log  []LogEntry `json:"log"`
}

// seatNamer names players after their seat, in join order
func seatNamer(state *game.GameState) game.Namer {
	seats := make(map[string]int, len(state.Seating))
	for i, id := range state.Seating {
		seats[id] = i + 1
	}
	return game.NamerFunc(func(playerID string) string {
		if seat, ok := seats[playerID]; ok {
			return fmt.Sprintf("Player %d", seat)
		}
		return ""
	})
}

// BuildPayload renders a projected game for one viewer. While a hand is in
// progress a drawn card is face up to everyone but its holder.
func BuildPayload(gameID, viewerID string, state *game.GameState, actions []events.Action, rules game.Rules) GamePayload {
	namer := seatNamer(state)

	view := GameView{
		GameID:    gameID,
		Status:    state.Status,
		Role:      state.Role(viewerID),
		Hand:      state.Hands,
		Pot:       state.PotTotal(),
		Dealer:    state.Dealer,
		ActionTo:  state.ActionTo,
		Players:   make([]PlayerView, 0, len(state.Seating)),
		UpdatedAt: state.LatestActionAt(),
	}
	if winner, ok := state.Winner(); ok {
		view.Winner = winner
	}

	for _, id := range state.Seating {
		player := PlayerView{
			ID:           id,
			Name:         namer.Nickname(id),
			Status:       seatStatus(state, id),
			Chips:        state.ChipCount(id),
			Contribution: state.Contribution(id),
			Dealer:       state.Dealer == id,
			ToAct:        state.ActionTo == id,
		}
		if card, ok := state.Cards[id]; ok && state.HandInProgress {
			held := cards.NewHeldCard(card, cards.FaceUpToOthers)
			if held.VisibleTo(viewerID, id) {
				player.Card = card.Short()
			}
		}
		view.Players = append(view.Players, player)
	}

	if state.ActionTo != "" && state.ActionTo == viewerID {
		view.Turn = &TurnView{
			MinimumBet: state.MinimumBet(viewerID, rules.Ante),
			MaximumBet: state.MaximumBet(viewerID),
			CanCheck:   state.CanCheck(viewerID),
		}
	}

	if result := state.LastResult; result != nil {
		hand := &HandView{
			Hand:   result.Hand,
			Awards: result.Awards,
			Cards:  make(map[string]string, len(result.Cards)),
		}
		for id, card := range result.Cards {
			held := cards.NewHeldCard(card, cards.FaceUpToAll)
			if held.VisibleTo(viewerID, id) {
				hand.Cards[id] = card.Short()
			}
		}
		view.LastHand = hand
	}

	log := make([]LogEntry, 0, len(actions))
	for _, action := range actions {
		log = append(log, LogEntry{
			Seq:  action.Seq,
			Kind: action.EventName(),
			Text: game.Summarize(action, viewerID, namer),
			At:   action.CreatedAt,
		})
	}

	return GamePayload{View: view, Log: log}
}

func seatStatus(state *game.GameState, playerID string) string {
	switch {
	case state.Active[playerID]:
		return "active"
	case state.Waiting[playerID]:
		return "waiting"
	default:
		return "out"
	}
}
