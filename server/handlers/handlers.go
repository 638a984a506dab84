package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lazharichir/bluff/game"
)

var (
	// ErrUnknownCommand is returned for a message whose name matches no command
	ErrUnknownCommand = errors.New("unknown command type")
	// ErrMalformedCommand is returned when a message is not valid JSON
	ErrMalformedCommand = errors.New("malformed command")
)

// Message is a command as clients send it, over HTTP or the websocket
type Message struct {
	Name   string `json:"name"`
	Amount int    `json:"amount,omitempty"`
}

// Proposer accepts or rejects commands
type Proposer interface {
	Propose(ctx context.Context, cmd game.Command) error
}

// CommandRouter routes incoming commands to the game
type CommandRouter struct {
	proposer Proposer
}

// NewCommandRouter creates a new command router
func NewCommandRouter(proposer Proposer) *CommandRouter {
	return &CommandRouter{proposer: proposer}
}

// HandleCommand decodes a raw websocket message and proposes it
func (r *CommandRouter) HandleCommand(ctx context.Context, gameID, humanID string, message []byte) error {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	return r.Route(ctx, gameID, humanID, msg)
}

// Route turns a message into a command and proposes it
func (r *CommandRouter) Route(ctx context.Context, gameID, humanID string, msg Message) error {
	cmd, err := Build(gameID, humanID, msg)
	if err != nil {
		return err
	}
	return r.proposer.Propose(ctx, cmd)
}

// Build maps a message to the command of the same name
func Build(gameID, humanID string, msg Message) (game.Command, error) {
	switch msg.Name {
	case game.BuyInCommand{}.CommandName():
		return game.BuyInCommand{GameID: gameID, HumanID: humanID}, nil
	case game.StartCommand{}.CommandName():
		return game.StartCommand{GameID: gameID, HumanID: humanID}, nil
	case game.BetCommand{}.CommandName():
		return game.BetCommand{GameID: gameID, HumanID: humanID, Amount: msg.Amount}, nil
	case game.CheckCommand{}.CommandName():
		return game.CheckCommand{GameID: gameID, HumanID: humanID}, nil
	case game.FoldCommand{}.CommandName():
		return game.FoldCommand{GameID: gameID, HumanID: humanID}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, msg.Name)
	}
}
