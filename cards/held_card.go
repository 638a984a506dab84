package cards

type CardVisibility string

const (
	FaceDown       CardVisibility = "down"   // Nobody can see
	FaceUpToOthers CardVisibility = "others" // Everyone but the holder can see
	FaceUpToAll    CardVisibility = "all"    // Everyone can see
)

// HeldCard is a card in front of a player together with who may see it
type HeldCard struct {
	Card
	Visibility CardVisibility
}

// NewHeldCard creates a new held card with the specified visibility
func NewHeldCard(card Card, visibility CardVisibility) HeldCard {
	return HeldCard{
		Card:       card,
		Visibility: visibility,
	}
}

// SetVisibility sets the visibility of the card
func (c *HeldCard) SetVisibility(visibility CardVisibility) {
	c.Visibility = visibility
}

// Hide sets the card as face down
func (c *HeldCard) Hide() {
	c.SetVisibility(FaceDown)
}

// Reveal turns the card face up for everyone
func (c *HeldCard) Reveal() {
	c.SetVisibility(FaceUpToAll)
}

// VisibleTo reports whether viewerID may see a card held by holderID.
func (c HeldCard) VisibleTo(viewerID, holderID string) bool {
	switch c.Visibility {
	case FaceUpToAll:
		return true
	case FaceUpToOthers:
		return viewerID != holderID
	default:
		return false
	}
}
