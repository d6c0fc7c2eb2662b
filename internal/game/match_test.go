package game

import (
	"errors"
	"testing"

	"atomicpiglets/internal/log"
)

// TestDrawFromDeckEndsTurn: drawing a safe card ends the turn.
func TestDrawFromDeckEndsTurn(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindSkip}, {KindSkip}},
		[]CardKind{KindTaco, KindMelon})
	alice, bob := tt.players[0], tt.players[1]

	tt.play(NewDrawFromDeckAction(alice))

	if got := alice.Hand.Count(); got != 2 {
		t.Errorf("Alice hand = %d cards, want 2", got)
	}
	if !alice.Hand.Contains(KindTaco) {
		t.Error("Alice should have drawn the top card (Taco)")
	}
	if cur := tt.match.CurrentPlayer(); cur != bob {
		t.Errorf("current player = %s, want Bob", cur.Name)
	}
}

// TestDrawVolatileWithDefuse: the player keeps the turn and must defuse.
func TestDrawVolatileWithDefuse(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindDefuse, KindSkip}, {KindSkip}},
		[]CardKind{KindVolatile, KindTaco, KindMelon, KindBeard})
	alice := tt.players[0]

	tt.play(NewDrawFromDeckAction(alice))

	if cur := tt.match.CurrentPlayer(); cur != alice {
		t.Fatalf("current player = %s, want Alice to stay on turn", cur.Name)
	}
	if alice.IsBusted() {
		t.Fatal("Alice holds a defuse and must not be busted")
	}

	// Nothing but the defuse is admissible now.
	skip := handCard(t, alice, KindSkip)
	if _, err := tt.match.PlayAction(NewSkipAction(alice, skip)); !errors.Is(err, ErrPreconditionNotMet) {
		t.Errorf("Skip while holding the hidden card: err = %v, want precondition failure", err)
	}

	defuse := handCard(t, alice, KindDefuse)
	volatile := handCard(t, alice, KindVolatile)
	action := NewDefuseAction(alice, defuse, volatile)
	action.VolatileDepth = 2
	tt.play(action)
	tt.resolve()

	if alice.Hand.Contains(KindVolatile) || alice.Hand.Contains(KindDefuse) {
		t.Error("defusing should consume both the defuse and the hidden card")
	}
	if cur := tt.match.CurrentPlayer(); cur.Name != "Bob" {
		t.Errorf("current player = %s, want Bob after defusing", cur.Name)
	}

	// Depth 2 leaves two cards above it: Taco, Melon, Volatile, Beard.
	tt.match.mu.Lock()
	deck := tt.match.deck.PeekTop(3)
	tt.match.mu.Unlock()
	if deck[2].Kind != KindVolatile {
		t.Errorf("deck from top = %v, want the hidden card at depth 2", deck)
	}
}

// TestDrawVolatileWithoutDefuseBusts: no defuse means elimination, and the
// last survivor is declared immediately.
func TestDrawVolatileWithoutDefuseBusts(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindSkip}, {KindSkip}},
		[]CardKind{KindVolatile, KindTaco})
	alice, bob := tt.players[0], tt.players[1]

	tt.play(NewDrawFromDeckAction(alice))

	if !alice.IsBusted() {
		t.Fatal("Alice drew the hidden card with no defuse and must be busted")
	}
	if cur := tt.match.CurrentPlayer(); cur != bob {
		t.Errorf("current player = %s, want Bob", cur.Name)
	}
	if w := tt.match.Winner(); w != bob {
		t.Fatalf("winner = %v, want Bob once everyone else busted", w)
	}

	var won bool
	for _, ev := range tt.match.Events() {
		if ev.Kind == log.EventGameWon {
			won = true
		}
	}
	if !won {
		t.Error("expected a game-won event in the log")
	}

	// Bob claims the win; afterwards the match rejects play.
	tt.play(NewWinGameAction(bob))
	if !tt.match.Over() {
		t.Fatal("match should be over after the win is claimed")
	}
	if _, err := tt.match.PlayAction(NewDrawFromDeckAction(bob)); !errors.Is(err, ErrMatchOver) {
		t.Errorf("play after game over: err = %v, want ErrMatchOver", err)
	}
}

// TestAttackTurnArithmetic: 1 becomes 2, and further attacks add 2.
func TestAttackTurnArithmetic(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindAttack, KindAttack}, {KindAttack, KindAttack}},
		[]CardKind{KindTaco, KindTaco, KindTaco, KindTaco},
		withImmediateTimer())
	alice, bob := tt.players[0], tt.players[1]

	tt.play(NewAttackAction(alice, handCard(t, alice, KindAttack)))
	if got := tt.match.TurnsLeft(); got != 2 {
		t.Fatalf("after first attack: turns = %d, want 2", got)
	}
	if cur := tt.match.CurrentPlayer(); cur != bob {
		t.Fatalf("after first attack: current = %s, want Bob", cur.Name)
	}

	tt.play(NewAttackAction(bob, handCard(t, bob, KindAttack)))
	if got := tt.match.TurnsLeft(); got != 4 {
		t.Fatalf("after counter-attack: turns = %d, want 4", got)
	}

	tt.play(NewAttackAction(alice, handCard(t, alice, KindAttack)))
	if got := tt.match.TurnsLeft(); got != 6 {
		t.Fatalf("after third attack: turns = %d, want 6", got)
	}

	// Bob now owes six draws; each one burns a single turn.
	tt.play(NewDrawFromDeckAction(bob))
	if got := tt.match.TurnsLeft(); got != 5 {
		t.Errorf("after one draw: turns = %d, want 5", got)
	}
	if cur := tt.match.CurrentPlayer(); cur != bob {
		t.Errorf("Bob must remain on turn while attacks are outstanding")
	}
}

// TestNopeParity: odd chains cancel the play, even chains restore it.
func TestNopeParity(t *testing.T) {
	cases := []struct {
		name     string
		nopes    int // alternating Bob, Alice, Bob...
		executed bool
	}{
		{"bare skip executes", 0, true},
		{"single nope cancels", 1, false},
		{"nope the nope", 2, true},
		{"triple nope cancels", 3, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tt := newTestTable(t,
				[][]CardKind{
					{KindSkip, KindNope, KindNope},
					{KindNope, KindNope},
				},
				[]CardKind{KindTaco, KindTaco})
			alice, bob := tt.players[0], tt.players[1]

			tt.play(NewSkipAction(alice, handCard(t, alice, KindSkip)))
			for i := 0; i < tc.nopes; i++ {
				p := bob
				if i%2 == 1 {
					p = alice
				}
				tt.play(NewNopeAction(p, handCard(t, p, KindNope)))
			}
			tt.resolve()

			if got := tt.match.PendingCount(); got != 0 {
				t.Fatalf("play pile still has %d entries after resolution", got)
			}
			wantDiscard := 1 + tc.nopes
			if got := len(tt.match.DiscardPile()); got != wantDiscard {
				t.Errorf("discard = %d cards, want %d", got, wantDiscard)
			}

			cur := tt.match.CurrentPlayer()
			if tc.executed && cur != bob {
				t.Errorf("skip should have executed: current = %s, want Bob", cur.Name)
			}
			if !tc.executed && cur != alice {
				t.Errorf("skip should have been canceled: current = %s, want Alice", cur.Name)
			}
		})
	}
}

// TestNopeEligibility: the current player may only counter-nope, and a
// pending Defuse cannot be noped at all.
func TestNopeEligibility(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindSkip, KindNope}, {KindNope}},
		[]CardKind{KindTaco, KindTaco})
	alice, bob := tt.players[0], tt.players[1]

	tt.play(NewSkipAction(alice, handCard(t, alice, KindSkip)))

	// Alice cannot nope her own skip.
	if _, err := tt.match.PlayAction(NewNopeAction(alice, handCard(t, alice, KindNope))); !errors.Is(err, ErrPreconditionNotMet) {
		t.Errorf("self-nope: err = %v, want precondition failure", err)
	}

	// After Bob nopes, Alice may counter-nope.
	tt.play(NewNopeAction(bob, handCard(t, bob, KindNope)))
	tt.play(NewNopeAction(alice, handCard(t, alice, KindNope)))
	tt.resolve()

	if cur := tt.match.CurrentPlayer(); cur != bob {
		t.Errorf("skip should stand after the counter-nope: current = %s", cur.Name)
	}
}

func TestPendingStackBlocksOtherActions(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindSkip}, {KindSkip}},
		[]CardKind{KindTaco, KindTaco})
	alice, bob := tt.players[0], tt.players[1]

	tt.play(NewSkipAction(alice, handCard(t, alice, KindSkip)))

	if _, err := tt.match.PlayAction(NewSkipAction(bob, handCard(t, bob, KindSkip))); !errors.Is(err, ErrPendingStack) {
		t.Errorf("skip during pending play: err = %v, want ErrPendingStack", err)
	}
	if _, err := tt.match.PlayAction(NewDrawFromDeckAction(alice)); !errors.Is(err, ErrPendingStack) {
		t.Errorf("draw during pending play: err = %v, want ErrPendingStack", err)
	}
}

func TestNotYourTurn(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindSkip}, {KindSkip}},
		[]CardKind{KindTaco, KindTaco})
	bob := tt.players[1]

	if _, err := tt.match.PlayAction(NewDrawFromDeckAction(bob)); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("out-of-turn draw: err = %v, want ErrNotYourTurn", err)
	}
}

// TestFavorTakesLowestPriority: the target gives up their least valuable
// card, never the defuse.
func TestFavorTakesLowestPriority(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindFavor}, {KindDefuse, KindNope, KindTaco}},
		[]CardKind{KindMelon, KindMelon},
		withImmediateTimer())
	alice, bob := tt.players[0], tt.players[1]

	tt.play(NewFavorAction(alice, handCard(t, alice, KindFavor), bob))

	if !alice.Hand.Contains(KindTaco) {
		t.Error("Alice should have received Bob's lowest-priority card (Taco)")
	}
	if !bob.Hand.Contains(KindDefuse) || !bob.Hand.Contains(KindNope) {
		t.Error("Bob's defuse and nope must survive a favor")
	}
}

// TestDrawFromPlayerPair: two of a kind trade for an opponent card.
func TestDrawFromPlayerPair(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindTaco, KindTaco, KindSkip}, {KindBeard}},
		[]CardKind{KindMelon, KindMelon},
		withImmediateTimer())
	alice, bob := tt.players[0], tt.players[1]

	pair := handGroup(t, alice, KindTaco, 2)
	action := NewDrawFromPlayerAction(alice, [][]Card{pair}, bob)
	tt.play(action)

	if action.TakenCard == nil || action.TakenCard.Kind != KindBeard {
		t.Fatalf("taken card = %v, want Bob's Beard", action.TakenCard)
	}
	if alice.Hand.Contains(KindTaco) {
		t.Error("the pair should be consumed")
	}
	if bob.Hand.Count() != 0 {
		t.Errorf("Bob hand = %d cards, want 0", bob.Hand.Count())
	}
}

// TestDemandCard: a triple names a kind; a target without it gives nothing.
func TestDemandCard(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{
			{KindPotato, KindPotato, KindPotato, KindRainbow, KindRainbow, KindRainbow},
			{KindAttack, KindTaco},
		},
		[]CardKind{KindMelon, KindMelon},
		withImmediateTimer())
	alice, bob := tt.players[0], tt.players[1]

	demand := NewDemandCardAction(alice, [][]Card{handGroup(t, alice, KindPotato, 3)}, bob)
	demand.Demanded = KindAttack
	tt.play(demand)
	if demand.TakenCard == nil || demand.TakenCard.Kind != KindAttack {
		t.Fatalf("taken card = %v, want Bob's Attack", demand.TakenCard)
	}

	// Alice is still on turn (a played card is not a draw). Demand a kind
	// Bob no longer holds: the cards are spent for nothing.
	demand2 := NewDemandCardAction(alice, [][]Card{handGroup(t, alice, KindRainbow, 3)}, bob)
	demand2.Demanded = KindSeeFuture
	tt.play(demand2)
	if demand2.TakenCard != nil {
		t.Fatalf("taken card = %v, want none for an absent kind", demand2.TakenCard)
	}
	if alice.Hand.Contains(KindRainbow) {
		t.Error("the triple is spent even when the demand misses")
	}
}

// TestDrawFromDiscard: five distinct kinds buy back the best discard.
func TestDrawFromDiscard(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{
			{KindSkip, KindTaco, KindBeard, KindMelon, KindPotato, KindRainbow},
			{KindNope},
		},
		[]CardKind{KindMelon, KindMelon},
		withImmediateTimer())
	alice := tt.players[0]

	// Seed the discard pile with a spent skip.
	tt.play(NewSkipAction(alice, handCard(t, alice, KindSkip)))
	bob := tt.players[1]
	tt.play(NewDrawFromDeckAction(bob))

	distinct := []Card{
		handCard(t, alice, KindTaco),
		handCard(t, alice, KindBeard),
		handCard(t, alice, KindMelon),
		handCard(t, alice, KindPotato),
		handCard(t, alice, KindRainbow),
	}
	action := NewDrawFromDiscardAction(alice, distinct)
	tt.play(action)

	if action.TakenCard == nil || action.TakenCard.Kind != KindSkip {
		t.Fatalf("taken card = %v, want the Skip from the discard pile", action.TakenCard)
	}
	if got := alice.Hand.Count(); got != 1 {
		t.Errorf("Alice hand = %d cards, want 1 (the recovered skip)", got)
	}
}

// TestSeeFutureSetsThenClears: foresight lives until the player's next
// action.
func TestSeeFutureSetsThenClears(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindSeeFuture}, {KindSkip}},
		[]CardKind{KindTaco, KindVolatile, KindBeard, KindMelon},
		withImmediateTimer())
	alice := tt.players[0]

	tt.play(NewSeeFutureAction(alice, handCard(t, alice, KindSeeFuture)))

	pv, _ := tt.match.PrivateView(alice.ID)
	if len(pv.Future) != 3 {
		t.Fatalf("future = %d cards, want 3", len(pv.Future))
	}
	if pv.Future[0].Kind != KindTaco || pv.Future[1].Kind != KindVolatile {
		t.Errorf("future = %v, want deck order Taco, Volatile, Beard", pv.Future)
	}

	tt.play(NewDrawFromDeckAction(alice))
	pv, _ = tt.match.PrivateView(alice.ID)
	if pv.Future != nil {
		t.Errorf("future should clear on the player's next action, got %v", pv.Future)
	}
}

// TestCardConservation: the card multiset never changes across play.
func TestCardConservation(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{
			{KindAttack, KindSkip, KindNope, KindDefuse},
			{KindShuffle, KindNope, KindTaco, KindTaco},
		},
		[]CardKind{KindMelon, KindVolatile, KindBeard, KindPotato, KindRainbow})
	alice, bob := tt.players[0], tt.players[1]

	before := cardFingerprint(tt.match.AllCards())
	check := func(step string) {
		t.Helper()
		after := cardFingerprint(tt.match.AllCards())
		if !sameFingerprint(before, after) {
			t.Fatalf("%s: card multiset changed (%d -> %d cards)", step, len(before), len(after))
		}
	}

	tt.play(NewAttackAction(alice, handCard(t, alice, KindAttack)))
	check("attack pending")
	tt.play(NewNopeAction(bob, handCard(t, bob, KindNope)))
	check("nope pending")
	tt.resolve()
	check("chain resolved")

	tt.play(NewDrawFromDeckAction(alice))
	check("draw")
	tt.play(NewShuffleAction(bob, handCard(t, bob, KindShuffle)))
	tt.resolve()
	check("shuffle")
	tt.play(NewDrawFromDeckAction(bob))
	check("second draw")
}

// TestEventLogIndexes: indexes are dense from 1 and EventsSince slices by
// last seen index.
func TestEventLogIndexes(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindSkip}, {KindSkip}},
		[]CardKind{KindTaco, KindTaco},
		withImmediateTimer())
	alice := tt.players[0]

	tt.play(NewSkipAction(alice, handCard(t, alice, KindSkip)))

	events := tt.match.Events()
	if len(events) < 3 {
		t.Fatalf("expected start, played and resolved events, got %d", len(events))
	}
	for i, ev := range events {
		if ev.Index != i+1 {
			t.Fatalf("event %d has index %d, want %d", i, ev.Index, i+1)
		}
	}

	tail := tt.match.EventsSince(len(events) - 1)
	if len(tail) != 1 || tail[0].Index != len(events) {
		t.Errorf("EventsSince returned %d events, want just the newest", len(tail))
	}
	if got := tt.match.EventsSince(len(events)); got != nil {
		t.Errorf("EventsSince at the log head = %v, want nil", got)
	}
}

// TestNoActionLeavesNoTrace: idle acks are accepted from any seat and do
// not append to the event log.
func TestNoActionLeavesNoTrace(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindSkip}, {KindSkip}},
		[]CardKind{KindTaco, KindTaco})
	alice, bob := tt.players[0], tt.players[1]

	before := len(tt.match.Events())
	tt.play(NewNoAction(bob))
	tt.play(NewNoAction(alice))
	if got := len(tt.match.Events()); got != before {
		t.Errorf("event log grew from %d to %d on idle acks", before, got)
	}
}

// TestBustedPlayerCannotAct.
func TestBustedPlayerCannotAct(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindSkip}, {KindSkip}, {KindSkip}},
		[]CardKind{KindVolatile, KindTaco, KindTaco})
	alice := tt.players[0]

	tt.play(NewDrawFromDeckAction(alice))
	if !alice.IsBusted() {
		t.Fatal("Alice must be busted")
	}

	if _, err := tt.match.PlayAction(NewSkipAction(alice, handCard(t, alice, KindSkip))); !errors.Is(err, ErrPlayerBusted) {
		t.Errorf("busted play: err = %v, want ErrPlayerBusted", err)
	}
	tt.play(NewGameOverAction(alice))
}

// TestNextPlayerSkipsBusted.
func TestNextPlayerSkipsBusted(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindSkip}, {KindSkip}, {KindSkip}},
		[]CardKind{KindTaco, KindVolatile, KindBeard, KindMelon},
		withImmediateTimer())
	alice, bob, carol := tt.players[0], tt.players[1], tt.players[2]

	tt.play(NewDrawFromDeckAction(alice)) // Taco, turn to Bob
	tt.play(NewDrawFromDeckAction(bob))   // Volatile, Bob busts
	if !bob.IsBusted() {
		t.Fatal("Bob must be busted")
	}
	if cur := tt.match.CurrentPlayer(); cur != carol {
		t.Fatalf("current = %s, want Carol", cur.Name)
	}

	tt.play(NewSkipAction(carol, handCard(t, carol, KindSkip)))
	if cur := tt.match.CurrentPlayer(); cur != alice {
		t.Errorf("current = %s, want Alice (Bob is out)", cur.Name)
	}
}
