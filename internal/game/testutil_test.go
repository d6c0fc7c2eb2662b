package game

import (
	"sort"
	"testing"
)

// testTable builds a match from explicit hands and an explicit deck, so
// tests control exactly who holds and draws what. deckKinds is given top
// card first. The default timer is manual: plays sit on the pile until the
// test fires it.
type testTable struct {
	t       *testing.T
	match   *Match
	players []*Player
	timer   *ManualTimer
}

func newTestTable(t *testing.T, handKinds [][]CardKind, deckKinds []CardKind, opts ...MatchOption) *testTable {
	t.Helper()

	tt := &testTable{t: t}
	nextID := 0
	newCard := func(k CardKind) Card {
		nextID++
		return Card{ID: nextID, Kind: k}
	}

	for i, kinds := range handKinds {
		p := NewPlayer(playerName(i))
		for _, k := range kinds {
			p.Hand.Add(newCard(k))
		}
		tt.players = append(tt.players, p)
	}

	deck := NewCardCollection()
	for i := len(deckKinds) - 1; i >= 0; i-- {
		deck.Add(newCard(deckKinds[i]))
	}

	base := []MatchOption{
		WithSeed(1),
		WithTimer(func(onElapse func()) ResolutionTimer {
			tt.timer = NewManualTimer(onElapse)
			return tt.timer
		}),
	}
	tt.match = NewMatch(tt.players, deck, append(base, opts...)...)
	return tt
}

func playerName(i int) string {
	names := []string{"Alice", "Bob", "Carol", "Dave", "Eve"}
	if i < len(names) {
		return names[i]
	}
	return "Player"
}

// withImmediateTimer makes plays resolve as soon as they are submitted.
func withImmediateTimer() MatchOption {
	return WithTimer(func(onElapse func()) ResolutionTimer {
		return NewImmediateTimer(onElapse)
	})
}

// play submits an action and fails the test on rejection.
func (tt *testTable) play(a GameAction) {
	tt.t.Helper()
	if _, err := tt.match.PlayAction(a); err != nil {
		tt.t.Fatalf("PlayAction(%s) by %s: %v", a, tt.nameOf(a), err)
	}
}

// resolve fires the manual timer, draining the play pile.
func (tt *testTable) resolve() {
	tt.t.Helper()
	if tt.timer == nil {
		tt.t.Fatal("resolve called on a table without a manual timer")
	}
	tt.timer.Fire()
	if err := tt.match.Err(); err != nil {
		tt.t.Fatalf("resolution fault: %v", err)
	}
}

func (tt *testTable) nameOf(a GameAction) string {
	if p, ok := tt.match.PlayerByID(a.ActingPlayer()); ok {
		return p.Name
	}
	return a.ActingPlayer().String()
}

// handCard fetches a card of the given kind from a hand, failing the test
// if absent.
func handCard(t *testing.T, p *Player, kind CardKind) Card {
	t.Helper()
	card, ok := p.Hand.PeekKind(kind)
	if !ok {
		t.Fatalf("%s holds no %s", p.Name, kind)
	}
	return card
}

// handGroup fetches n cards of one kind from a hand.
func handGroup(t *testing.T, p *Player, kind CardKind, n int) []Card {
	t.Helper()
	var group []Card
	for _, c := range p.Hand.Cards() {
		if c.Kind == kind {
			group = append(group, c)
		}
		if len(group) == n {
			return group
		}
	}
	t.Fatalf("%s holds %d %s, want %d", p.Name, len(group), kind, n)
	return nil
}

// cardFingerprint is a multiset signature over card IDs, for conservation
// checks.
func cardFingerprint(cards []Card) []int {
	ids := make([]int, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	sort.Ints(ids)
	return ids
}

func sameFingerprint(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// countKinds tallies kinds across a card slice.
func countKinds(cards []Card) map[CardKind]int {
	out := make(map[CardKind]int)
	for _, c := range cards {
		out[c.Kind]++
	}
	return out
}
