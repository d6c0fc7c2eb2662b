package game

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	MinPlayers = 2
	MaxPlayers = 10
)

// NewStandardMatch deals a standard deck to freshly-created players and
// starts a match. Play order is the order of names.
func NewStandardMatch(names []string, opts ...MatchOption) (*Match, error) {
	players := make([]*Player, 0, len(names))
	for _, name := range names {
		players = append(players, NewPlayer(name))
	}
	return NewDealtMatch(DefaultDealConfig(), players, opts...)
}

// NewDealtMatch deals the configured deck to existing players and starts a
// match. Player hands and foresight are reset, so passing the players of a
// finished match runs a rematch with identities preserved.
//
// The deal guarantees every player one Defuse, keeps all Volatile cards
// out of the initial hands, and puts one fewer Volatile than players into
// the deck so exactly one player can survive them all.
func NewDealtMatch(cfg DealConfig, players []*Player, opts ...MatchOption) (*Match, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return nil, fmt.Errorf("need %d to %d players, got %d", MinPlayers, MaxPlayers, len(players))
	}

	o := matchOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	seed := o.seed
	if !o.seedSet {
		seed = time.Now().UnixNano()
		opts = append(opts, WithSeed(seed))
	}
	rng := rand.New(rand.NewSource(seed))

	for _, p := range players {
		p.Hand = NewCardCollection()
		p.Future = nil
	}

	nextID := 0
	newCard := func(k CardKind) Card {
		nextID++
		return Card{ID: nextID, Kind: k}
	}

	// Tables beyond six players play with duplicated decks.
	copies := (len(players)-1)/6 + 1
	deck := NewCardCollection()
	for i := 0; i < copies; i++ {
		for _, k := range cfg.baseKinds() {
			deck.Add(newCard(k))
		}
	}
	deck.Shuffle(rng)

	for _, p := range players {
		dealt := deck.DrawTop(cfg.HandSize)
		if len(dealt) < cfg.HandSize {
			return nil, fmt.Errorf("deck too small for %d players", len(players))
		}
		p.Hand.AddMany(dealt)
		p.Hand.Add(newCard(KindDefuse))
	}

	deckDefuses := cfg.DeckDefuses * copies
	if len(players) >= 5 {
		deckDefuses--
	}
	for i := 0; i < deckDefuses; i++ {
		deck.Add(newCard(KindDefuse))
	}
	for i := 0; i < len(players)-1; i++ {
		deck.Add(newCard(KindVolatile))
	}
	deck.Shuffle(rng)

	return NewMatch(players, deck, opts...), nil
}
