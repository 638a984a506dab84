package handlers

import (
	"context"
	"testing"

	"github.com/lazharichir/bluff/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProposer struct {
	proposed []game.Command
	err      error
}

func (p *recordingProposer) Propose(_ context.Context, cmd game.Command) error {
	p.proposed = append(p.proposed, cmd)
	return p.err
}

func TestBuild(t *testing.T) {
	tests := []struct {
		msg  Message
		want game.Command
	}{
		{Message{Name: "buy-in"}, game.BuyInCommand{GameID: "g", HumanID: "h"}},
		{Message{Name: "start"}, game.StartCommand{GameID: "g", HumanID: "h"}},
		{Message{Name: "bet", Amount: 15}, game.BetCommand{GameID: "g", HumanID: "h", Amount: 15}},
		{Message{Name: "check"}, game.CheckCommand{GameID: "g", HumanID: "h"}},
		{Message{Name: "fold"}, game.FoldCommand{GameID: "g", HumanID: "h"}},
	}
	for _, tt := range tests {
		t.Run(tt.msg.Name, func(t *testing.T) {
			cmd, err := Build("g", "h", tt.msg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}

	_, err := Build("g", "h", Message{Name: "raise"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestHandleCommand(t *testing.T) {
	proposer := &recordingProposer{}
	router := NewCommandRouter(proposer)

	err := router.HandleCommand(context.Background(), "g", "h", []byte(`{"name":"bet","amount":20}`))
	require.NoError(t, err)
	require.Len(t, proposer.proposed, 1)
	assert.Equal(t, game.BetCommand{GameID: "g", HumanID: "h", Amount: 20}, proposer.proposed[0])

	assert.ErrorIs(t, router.HandleCommand(context.Background(), "g", "h", []byte(`not json`)), ErrMalformedCommand)
	assert.ErrorIs(t, router.HandleCommand(context.Background(), "g", "h", []byte(`{"name":"shout"}`)), ErrUnknownCommand)
	assert.Len(t, proposer.proposed, 1)
}

func TestHandleCommandPassesRejections(t *testing.T) {
	proposer := &recordingProposer{err: &game.RejectedError{Command: "check", Reason: "not your turn"}}
	router := NewCommandRouter(proposer)

	err := router.HandleCommand(context.Background(), "g", "h", []byte(`{"name":"check"}`))
	assert.ErrorIs(t, err, game.ErrRejected)
}
