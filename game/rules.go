package game

const (
	// DefaultStartingChips is what every buy_in grants. It is arbitrary; no
	// real money is involved.
	DefaultStartingChips = 100
	DefaultAnte          = 5
	MinPlayers           = 2  // no fun to play by yourself
	MaxPlayers           = 52 // that's all the cards that exist to go around
)

// Rules are the table stakes used when creating actions.
type Rules struct {
	StartingChips int
	Ante          int
}

// DefaultRules returns the standard stakes
func DefaultRules() Rules {
	return Rules{
		StartingChips: DefaultStartingChips,
		Ante:          DefaultAnte,
	}
}

// AnteFor caps the ante at what the player holds.
func (r Rules) AnteFor(state *GameState, playerID string) int {
	return min(r.Ante, state.ChipCount(playerID))
}
