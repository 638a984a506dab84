package server

import (
	"context"
	"encoding/json"

	"github.com/lazharichir/bluff/game"
	"github.com/lazharichir/bluff/server/connection"
	"go.uber.org/zap"
)

// GameUpdatedEvent is the name of the envelope pushed after every accepted command
const GameUpdatedEvent = "game-updated"

// EventEnvelope wraps an event with its name for client consumption
type EventEnvelope struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher pushes game updates to the clients watching a game
type Dispatcher struct {
	connMgr *connection.Manager
	creator *game.ActionCreator
	logger  *zap.Logger
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(connMgr *connection.Manager, creator *game.ActionCreator, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		connMgr: connMgr,
		creator: creator,
		logger:  logger,
	}
}

// GameUpdated sends every watcher of the game its own view of the new state.
func (d *Dispatcher) GameUpdated(ctx context.Context, gameID string) {
	watchers := d.connMgr.Watchers(gameID)
	if len(watchers) == 0 {
		return
	}
	d.send(ctx, gameID, watchers, func(client *connection.Client, envelope []byte) bool {
		return d.connMgr.SendToClient(client.ID, envelope)
	})
}

// Snapshot queues the current state on a client that is not registered yet.
func (d *Dispatcher) Snapshot(ctx context.Context, client *connection.Client) {
	d.send(ctx, client.GameID, []*connection.Client{client}, func(client *connection.Client, envelope []byte) bool {
		select {
		case client.Send <- envelope:
			return true
		default:
			return false
		}
	})
}

func (d *Dispatcher) send(ctx context.Context, gameID string, clients []*connection.Client, deliver func(*connection.Client, []byte) bool) {
	actions, err := d.creator.Actions(ctx, gameID)
	if err != nil {
		d.logger.Error("failed to load game for dispatch", zap.String("game_id", gameID), zap.Error(err))
		return
	}
	state, err := game.Project(actions)
	if err != nil {
		d.logger.Error("failed to project game for dispatch", zap.String("game_id", gameID), zap.Error(err))
		return
	}

	for _, client := range clients {
		payload := BuildPayload(gameID, client.HumanID, state, actions, d.creator.Rules())
		envelope, err := encodeEnvelope(GameUpdatedEvent, payload)
		if err != nil {
			d.logger.Error("failed to encode envelope", zap.Error(err))
			return
		}
		if !deliver(client, envelope) {
			d.logger.Debug("dropped update for client",
				zap.String("game_id", gameID),
				zap.String("client_id", client.ID),
			)
		}
	}
}

func encodeEnvelope(name string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(EventEnvelope{Name: name, Payload: data})
}
