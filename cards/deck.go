package cards

import (
	"errors"
	"math/rand/v2"
)

// ErrEmptyDeck is returned when drawing from a deck with no cards left.
var ErrEmptyDeck = errors.New("empty deck")

// Deck is a fresh set of the 52 distinct cards. Each hand gets its own deck
// and throws it away afterwards.
type Deck struct {
	cards []Card
}

// NewDeck creates an ordered deck, lowest card first
func NewDeck() *Deck {
	deck := &Deck{cards: make([]Card, 0, DeckSize)}
	for _, suit := range Suits {
		for _, rank := range Ranks {
			deck.cards = append(deck.cards, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}

// Shuffle permutes the deck in place and returns it.
func (d *Deck) Shuffle() *Deck {
	rand.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	return d
}

// ShuffleWith is Shuffle using the given source of randomness.
func (d *Deck) ShuffleWith(r *rand.Rand) *Deck {
	if r == nil {
		return d.Shuffle()
	}
	r.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	return d
}

// Draw removes and returns the top card
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// Len returns the number of cards left
func (d *Deck) Len() int {
	return len(d.cards)
}
