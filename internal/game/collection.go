package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// ErrCardConsistency marks a card-conservation violation: a removal request
// named a card that is not present, or named the same card twice. These are
// programming-error-class failures, never recoverable gameplay state.
var ErrCardConsistency = errors.New("card consistency violation")

// CardCollection is an ordered stack of cards. The tail of the backing slice
// is the top: the last card added is the first card drawn.
type CardCollection struct {
	cards []Card
}

// NewCardCollection creates a collection holding the given cards, bottom
// first. The slice is copied.
func NewCardCollection(cards ...Card) *CardCollection {
	cc := &CardCollection{cards: make([]Card, len(cards))}
	copy(cc.cards, cards)
	return cc
}

// Count returns the number of cards held.
func (cc *CardCollection) Count() int {
	return len(cc.cards)
}

// Cards returns a copy of the cards, bottom first.
func (cc *CardCollection) Cards() []Card {
	out := make([]Card, len(cc.cards))
	copy(out, cc.cards)
	return out
}

// Add places a card on top.
func (cc *CardCollection) Add(card Card) {
	cc.cards = append(cc.cards, card)
}

// AddMany places cards on top, preserving their order.
func (cc *CardCollection) AddMany(cards []Card) {
	cc.cards = append(cc.cards, cards...)
}

// DrawTop removes up to n cards from the top and returns them top-first.
func (cc *CardCollection) DrawTop(n int) []Card {
	if n > len(cc.cards) {
		n = len(cc.cards)
	}
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, cc.cards[len(cc.cards)-1-i])
	}
	cc.cards = cc.cards[:len(cc.cards)-n]
	return out
}

// DrawTopCard removes and returns the top card. ok is false when empty.
func (cc *CardCollection) DrawTopCard() (Card, bool) {
	if len(cc.cards) == 0 {
		return Card{}, false
	}
	top := cc.cards[len(cc.cards)-1]
	cc.cards = cc.cards[:len(cc.cards)-1]
	return top, true
}

// PeekTop returns up to n cards from the top, top-first, without removing.
func (cc *CardCollection) PeekTop(n int) []Card {
	if n > len(cc.cards) {
		n = len(cc.cards)
	}
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, cc.cards[len(cc.cards)-1-i])
	}
	return out
}

// PeekKind returns the card of the given kind nearest the top without
// removing it. ok is false when no such card exists.
func (cc *CardCollection) PeekKind(kind CardKind) (Card, bool) {
	for i := len(cc.cards) - 1; i >= 0; i-- {
		if cc.cards[i].Kind == kind {
			return cc.cards[i], true
		}
	}
	return Card{}, false
}

// DrawKind removes and returns the card of the given kind nearest the top.
// ok is false when no such card exists.
func (cc *CardCollection) DrawKind(kind CardKind) (Card, bool) {
	for i := len(cc.cards) - 1; i >= 0; i-- {
		if cc.cards[i].Kind == kind {
			card := cc.cards[i]
			cc.cards = append(cc.cards[:i], cc.cards[i+1:]...)
			return card, true
		}
	}
	return Card{}, false
}

// InsertFromTop inserts card at the given depth from the top. Depth 0 puts
// it on top; depths beyond the collection are clamped to the bottom.
func (cc *CardCollection) InsertFromTop(card Card, depth int) {
	if depth < 0 {
		depth = 0
	}
	if depth > len(cc.cards) {
		depth = len(cc.cards)
	}
	at := len(cc.cards) - depth
	cc.cards = append(cc.cards, Card{})
	copy(cc.cards[at+1:], cc.cards[at:])
	cc.cards[at] = card
}

// RemoveAll removes the given cards by identity. It fails with
// ErrCardConsistency when the request names a card id twice or names an id
// that is not present; the collection is unchanged on failure.
func (cc *CardCollection) RemoveAll(cards []Card) error {
	want := make(map[int]bool, len(cards))
	for _, c := range cards {
		if want[c.ID] {
			return fmt.Errorf("%w: duplicate card id %d in removal request", ErrCardConsistency, c.ID)
		}
		want[c.ID] = true
	}
	for _, c := range cards {
		found := false
		for _, held := range cc.cards {
			if held.ID == c.ID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: card id %d (%s) not present", ErrCardConsistency, c.ID, c.Kind)
		}
	}
	kept := cc.cards[:0]
	for _, held := range cc.cards {
		if !want[held.ID] {
			kept = append(kept, held)
		}
	}
	cc.cards = kept
	return nil
}

// TransferCardTo atomically moves card from this collection to dst. A nil
// card is a legal no-op, signalling "nothing available to transfer".
func (cc *CardCollection) TransferCardTo(card *Card, dst *CardCollection) error {
	if card == nil {
		return nil
	}
	if err := cc.RemoveAll([]Card{*card}); err != nil {
		return err
	}
	dst.Add(*card)
	return nil
}

// Shuffle permutes the collection in place with a Fisher-Yates shuffle.
func (cc *CardCollection) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(cc.cards), func(i, j int) {
		cc.cards[i], cc.cards[j] = cc.cards[j], cc.cards[i]
	})
}

// Contains reports whether any card of the given kind is held.
func (cc *CardCollection) Contains(kind CardKind) bool {
	for _, c := range cc.cards {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// CountKind returns how many cards of the given kind are held.
func (cc *CardCollection) CountKind(kind CardKind) int {
	n := 0
	for _, c := range cc.cards {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// KindGroups returns the held cards grouped by kind, each group in held
// order. Map iteration order is not stable; callers sort as needed.
func (cc *CardCollection) KindGroups() map[CardKind][]Card {
	groups := make(map[CardKind][]Card)
	for _, c := range cc.cards {
		groups[c.Kind] = append(groups[c.Kind], c)
	}
	return groups
}

func (cc *CardCollection) String() string {
	names := make([]string, len(cc.cards))
	for i, c := range cc.cards {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}
