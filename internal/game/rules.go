package game

// Rules derives the legal action set for a player from match state. It
// never mutates the match; actions it returns can be handed straight to
// PlayAction.
type Rules struct {
	m *Match
}

func NewRules(m *Match) *Rules {
	return &Rules{m: m}
}

// LegalActions returns every action the player may take right now. The
// returned slice is never empty: when nothing else applies it contains a
// single NoAction, so callers can always pick an element.
//
// Targeted actions come back without a target. Callers choose one, or
// leave it unset for a random opponent at resolution time.
func (r *Rules) LegalActions(p *Player) []GameAction {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()

	var actions []GameAction

	switch {
	case m.over:
		// Terminal. Fall through to the NoAction fallback.

	case p.IsBusted():
		actions = append(actions, NewGameOverAction(p))

	case len(m.playPile) > 0:
		if m.nopeEligible(p) {
			if card, ok := p.Hand.PeekKind(KindNope); ok {
				actions = append(actions, NewNopeAction(p, card))
			}
		}

	case p != m.players[m.current]:
		// Not their turn and nothing pending.

	case p.Hand.Contains(KindVolatile):
		if defuse, ok := p.Hand.PeekKind(KindDefuse); ok {
			volatile, _ := p.Hand.PeekKind(KindVolatile)
			actions = append(actions, NewDefuseAction(p, defuse, volatile))
		}

	case r.allOthersBusted(p):
		// The last survivor has nothing left to decide. Offering the
		// turn union here would let the declared winner draw into the
		// remaining hidden cards and bust.
		actions = append(actions, NewWinGameAction(p))

	default:
		actions = r.turnActions(p)
	}

	if len(actions) == 0 {
		actions = append(actions, NewNoAction(p))
	}
	return actions
}

// turnActions enumerates the current player's options on a clear pile.
// Called with the match mutex held.
func (r *Rules) turnActions(p *Player) []GameAction {
	m := r.m
	var actions []GameAction

	if m.deck.Count() > 0 {
		actions = append(actions, NewDrawFromDeckAction(p))
	}

	if card, ok := p.Hand.PeekKind(KindSkip); ok {
		actions = append(actions, NewSkipAction(p, card))
	}
	if card, ok := p.Hand.PeekKind(KindAttack); ok {
		actions = append(actions, NewAttackAction(p, card))
	}
	if card, ok := p.Hand.PeekKind(KindShuffle); ok {
		actions = append(actions, NewShuffleAction(p, card))
	}
	if card, ok := p.Hand.PeekKind(KindSeeFuture); ok {
		actions = append(actions, NewSeeFutureAction(p, card))
	}
	if card, ok := p.Hand.PeekKind(KindFavor); ok {
		actions = append(actions, NewFavorAction(p, card, nil))
	}

	pairs, triples := kindGroups(p.Hand)
	if len(pairs) > 0 {
		actions = append(actions, NewDrawFromPlayerAction(p, pairs, nil))
	}
	if len(triples) > 0 {
		actions = append(actions, NewDemandCardAction(p, triples, nil))
	}

	if distinct := distinctByKind(p.Hand); len(distinct) >= 5 {
		actions = append(actions, NewDrawFromDiscardAction(p, distinct))
	}
	return actions
}

func (r *Rules) allOthersBusted(p *Player) bool {
	for _, other := range r.m.players {
		if other != p && !other.IsBusted() {
			return false
		}
	}
	return true
}

// kindGroups splits a hand into pair- and triple-capable card groups.
// Hidden Volatile cards never group.
func kindGroups(hand *CardCollection) (pairs, triples [][]Card) {
	for kind, cards := range hand.KindGroups() {
		if kind == KindVolatile {
			continue
		}
		if len(cards) >= 2 {
			pairs = append(pairs, cards[:2])
		}
		if len(cards) >= 3 {
			triples = append(triples, cards[:3])
		}
	}
	return pairs, triples
}

// distinctByKind returns one card per kind held, excluding Volatile.
func distinctByKind(hand *CardCollection) []Card {
	var out []Card
	for kind, cards := range hand.KindGroups() {
		if kind == KindVolatile {
			continue
		}
		out = append(out, cards[0])
	}
	return out
}
