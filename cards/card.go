package cards

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCard is returned when a rank, suit or index is out of range.
var ErrInvalidCard = errors.New("invalid card")

// DeckSize is the number of distinct cards.
const DeckSize = 52

// Suit represents a card suit, lowest to highest.
type Suit int

const (
	Diamonds Suit = iota
	Clubs
	Hearts
	Spades
)

// Suits lists every suit from lowest to highest.
var Suits = []Suit{Diamonds, Clubs, Hearts, Spades}

var suitNames = [...]string{"Diamonds", "Clubs", "Hearts", "Spades"}
var suitSymbols = [...]string{"♦", "♣", "♥", "♠"}

// Valid reports whether the suit is one of the four suits.
func (s Suit) Valid() bool {
	return s >= Diamonds && s <= Spades
}

func (s Suit) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Suit(%d)", int(s))
	}
	return suitNames[s]
}

// Symbol returns the unicode symbol of the suit
func (s Suit) Symbol() string {
	if !s.Valid() {
		return "?"
	}
	return suitSymbols[s]
}

// Rank represents a card rank, lowest to highest.
type Rank int

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Ranks lists every rank from lowest to highest.
var Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

var rankNames = [...]string{
	"Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
	"Nine", "Ten", "Jack", "Queen", "King", "Ace",
}

var rankShorthands = [...]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// Valid reports whether the rank is between Two and Ace.
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

func (r Rank) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankNames[r]
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard validates rank and suit and returns the card.
func NewCard(rank Rank, suit Suit) (Card, error) {
	if !rank.Valid() {
		return Card{}, fmt.Errorf("%w: rank %d", ErrInvalidCard, int(rank))
	}
	if !suit.Valid() {
		return Card{}, fmt.Errorf("%w: suit %d", ErrInvalidCard, int(suit))
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// CardFromIndex decodes the 0..51 storage index of a card.
func CardFromIndex(index int) (Card, error) {
	if index < 0 || index >= DeckSize {
		return Card{}, fmt.Errorf("%w: index %d", ErrInvalidCard, index)
	}
	return Card{Rank: Rank(index % len(Ranks)), Suit: Suit(index / len(Ranks))}, nil
}

// Index encodes the card as suit*13 + rank. Higher indexes are better cards.
func (c Card) Index() int {
	return int(c.Suit)*len(Ranks) + int(c.Rank)
}

// Valid reports whether both rank and suit are in range.
func (c Card) Valid() bool {
	return c.Rank.Valid() && c.Suit.Valid()
}

// BetterThan compares rank first and breaks ties on suit, so two distinct
// cards are never equal.
func (c Card) BetterThan(other Card) bool {
	if c.Rank != other.Rank {
		return c.Rank > other.Rank
	}
	return c.Suit > other.Suit
}

// Equals checks if two cards are equal
func (c Card) Equals(other Card) bool {
	return c.Rank == other.Rank && c.Suit == other.Suit
}

// String returns the readable name of the card, e.g. "Four of Spades"
func (c Card) String() string {
	return c.Rank.String() + " of " + c.Suit.String()
}

// Short returns the shorthand of the card, e.g. "4♠"
func (c Card) Short() string {
	if !c.Valid() {
		return "?"
	}
	return rankShorthands[c.Rank] + c.Suit.Symbol()
}

// ParseCard creates a card from its shorthand
// e.g., "10♠" or "10s" or "10S" -> Card{Rank: Ten, Suit: Spades}
func ParseCard(s string) (Card, error) {
	if len(s) < 2 {
		return Card{}, fmt.Errorf("%w: shorthand %q", ErrInvalidCard, s)
	}

	var suit Suit
	var rest string
	switch {
	case strings.HasSuffix(s, "♠"), strings.HasSuffix(s, "s"), strings.HasSuffix(s, "S"):
		suit = Spades
	case strings.HasSuffix(s, "♥"), strings.HasSuffix(s, "h"), strings.HasSuffix(s, "H"):
		suit = Hearts
	case strings.HasSuffix(s, "♦"), strings.HasSuffix(s, "d"), strings.HasSuffix(s, "D"):
		suit = Diamonds
	case strings.HasSuffix(s, "♣"), strings.HasSuffix(s, "c"), strings.HasSuffix(s, "C"):
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("%w: suit in %q", ErrInvalidCard, s)
	}
	if strings.HasSuffix(s, suit.Symbol()) {
		rest = strings.TrimSuffix(s, suit.Symbol())
	} else {
		rest = s[:len(s)-1]
	}

	for i, short := range rankShorthands {
		if strings.EqualFold(rest, short) {
			return Card{Rank: Rank(i), Suit: suit}, nil
		}
	}
	return Card{}, fmt.Errorf("%w: rank in %q", ErrInvalidCard, s)
}

// MustParseCard is ParseCard for literals known to be valid.
func MustParseCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}
