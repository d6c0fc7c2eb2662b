package game

import "testing"

func actionKinds(actions []GameAction) map[ActionKind]bool {
	out := make(map[ActionKind]bool, len(actions))
	for _, a := range actions {
		out[a.Kind()] = true
	}
	return out
}

// TestLegalActionsNeverEmpty: every seat always has at least one action.
func TestLegalActionsNeverEmpty(t *testing.T) {
	m, err := NewStandardMatch([]string{"Alice", "Bob", "Carol", "Dave"}, WithSeed(7))
	if err != nil {
		t.Fatal(err)
	}
	rules := NewRules(m)
	for _, p := range m.Players() {
		if got := rules.LegalActions(p); len(got) == 0 {
			t.Errorf("%s has no legal actions", p.Name)
		}
	}
}

// TestLegalActionsForCurrentPlayer: a dealt hand yields a draw plus its
// playable cards.
func TestLegalActionsForCurrentPlayer(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{
			{KindSkip, KindAttack, KindTaco, KindTaco, KindTaco},
			{KindNope},
		},
		[]CardKind{KindMelon, KindMelon})
	alice, bob := tt.players[0], tt.players[1]
	rules := NewRules(tt.match)

	kinds := actionKinds(rules.LegalActions(alice))
	for _, want := range []ActionKind{ActionDrawFromDeck, ActionSkip, ActionAttack, ActionDrawFromPlayer, ActionDemandCard} {
		if !kinds[want] {
			t.Errorf("missing %s from Alice's legal actions", want)
		}
	}
	if kinds[ActionDrawFromDiscard] {
		t.Error("draw-from-discard offered with only three distinct kinds")
	}
	if kinds[ActionNope] {
		t.Error("nope offered with nothing pending")
	}

	// Bob can only wait.
	bobActions := rules.LegalActions(bob)
	if len(bobActions) != 1 || bobActions[0].Kind() != ActionNoAction {
		t.Errorf("Bob's actions = %v, want only NoAction", bobActions)
	}
}

// TestLegalActionsWhileHoldingVolatile: only the defuse is offered.
func TestLegalActionsWhileHoldingVolatile(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindDefuse, KindSkip, KindAttack}, {KindSkip}},
		[]CardKind{KindVolatile, KindTaco})
	alice := tt.players[0]
	rules := NewRules(tt.match)

	tt.play(NewDrawFromDeckAction(alice))

	actions := rules.LegalActions(alice)
	if len(actions) != 1 || actions[0].Kind() != ActionDefuse {
		t.Fatalf("actions while holding the hidden card = %v, want only Defuse", actions)
	}
}

// TestLegalActionsDuringPendingPlay: holders of a nope get to use it.
func TestLegalActionsDuringPendingPlay(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindSkip}, {KindNope}, {KindTaco}},
		[]CardKind{KindMelon, KindMelon})
	alice, bob, carol := tt.players[0], tt.players[1], tt.players[2]
	rules := NewRules(tt.match)

	tt.play(NewSkipAction(alice, handCard(t, alice, KindSkip)))

	bobActions := rules.LegalActions(bob)
	if len(bobActions) != 1 || bobActions[0].Kind() != ActionNope {
		t.Errorf("Bob's actions = %v, want only Nope", bobActions)
	}
	carolActions := rules.LegalActions(carol)
	if len(carolActions) != 1 || carolActions[0].Kind() != ActionNoAction {
		t.Errorf("Carol's actions = %v, want only NoAction", carolActions)
	}
	aliceActions := rules.LegalActions(alice)
	if len(aliceActions) != 1 || aliceActions[0].Kind() != ActionNoAction {
		t.Errorf("Alice's actions = %v, want only NoAction while her play pends", aliceActions)
	}
}

// TestLegalActionsForBustedAndWinner.
func TestLegalActionsForBustedAndWinner(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{{KindTaco}, {KindSkip}},
		[]CardKind{KindVolatile, KindMelon})
	alice, bob := tt.players[0], tt.players[1]
	rules := NewRules(tt.match)

	tt.play(NewDrawFromDeckAction(alice))

	aliceActions := rules.LegalActions(alice)
	if len(aliceActions) != 1 || aliceActions[0].Kind() != ActionGameOver {
		t.Errorf("busted Alice's actions = %v, want only GameOver", aliceActions)
	}

	// The survivor gets nothing but the claim: drawing on would risk
	// busting the declared winner.
	bobActions := rules.LegalActions(bob)
	if len(bobActions) != 1 || bobActions[0].Kind() != ActionWinGame {
		t.Errorf("survivor's actions = %v, want only WinGame", bobActions)
	}
}

// TestDiscardBuybackNeedsOnlyDistinctKinds: holding five distinct kinds is
// the whole precondition; an empty discard pile does not hide the action.
func TestDiscardBuybackNeedsOnlyDistinctKinds(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{
			{KindTaco, KindBeard, KindMelon, KindPotato, KindRainbow},
			{KindNope},
		},
		[]CardKind{KindMelon, KindMelon})
	alice := tt.players[0]
	rules := NewRules(tt.match)

	kinds := actionKinds(rules.LegalActions(alice))
	if !kinds[ActionDrawFromDiscard] {
		t.Error("buyback not offered over an empty discard pile")
	}
}

// TestDefaultGroupPrefersHighestPriority: the default pair is the most
// valuable one.
func TestDefaultGroupPrefersHighestPriority(t *testing.T) {
	tt := newTestTable(t,
		[][]CardKind{
			{KindTaco, KindTaco, KindAttack, KindAttack},
			{KindMelon},
		},
		[]CardKind{KindMelon, KindMelon})
	alice := tt.players[0]
	rules := NewRules(tt.match)

	for _, a := range rules.LegalActions(alice) {
		if a.Kind() != ActionDrawFromPlayer {
			continue
		}
		pair := a.(*DrawFromPlayerAction)
		if len(pair.Selected) != 2 || pair.Selected[0].Kind != KindAttack {
			t.Errorf("default pair = %v, want the Attack pair", pair.Selected)
		}
		if len(pair.Selectable) != 4 {
			t.Errorf("selectable = %d cards, want all 4 pair-capable cards", len(pair.Selectable))
		}
		return
	}
	t.Fatal("no pair action offered")
}
