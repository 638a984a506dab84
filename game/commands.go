package game

// Command represents a game action a human proposes
type Command interface {
	CommandName() string
}

// BuyInCommand asks for a seat and a starting stack
type BuyInCommand struct {
	GameID  string
	HumanID string
}

func (c BuyInCommand) CommandName() string { return "buy-in" }

// StartCommand starts a pending game
type StartCommand struct {
	GameID  string
	HumanID string
}

func (c StartCommand) CommandName() string { return "start" }

// BetCommand covers opening bets, calls and raises
type BetCommand struct {
	GameID  string
	HumanID string
	Amount  int
}

func (c BetCommand) CommandName() string { return "bet" }

// CheckCommand passes the turn without betting
type CheckCommand struct {
	GameID  string
	HumanID string
}

func (c CheckCommand) CommandName() string { return "check" }

// FoldCommand gives up the current hand
type FoldCommand struct {
	GameID  string
	HumanID string
}

func (c FoldCommand) CommandName() string { return "fold" }
