// Package bot provides automated players for offline matches and
// simulation runs.
package bot

import (
	"math/rand"

	"atomicpiglets/internal/game"
)

// Observation is everything a bot may look at when choosing: the shared
// table state plus its own hand and foresight. Bots never see the match
// itself.
type Observation struct {
	Public  game.PublicView
	Private game.PrivateView
}

// Policy chooses one action from the legal set. The slice is never empty;
// returning an action not in it is a programming error.
type Policy interface {
	Name() string
	Choose(obs Observation, actions []game.GameAction) game.GameAction
}

// --- Random ---

// RandomPolicy picks uniformly among the legal actions.
type RandomPolicy struct {
	rng *rand.Rand
}

func NewRandomPolicy(seed int64) *RandomPolicy {
	return &RandomPolicy{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPolicy) Name() string { return "random" }

func (p *RandomPolicy) Choose(obs Observation, actions []game.GameAction) game.GameAction {
	return actions[p.rng.Intn(len(actions))]
}

// --- Drawer ---

// DrawerPolicy plays no cards: it draws every turn and defuses when it
// must. The simplest baseline opponent.
type DrawerPolicy struct{}

func (DrawerPolicy) Name() string { return "drawer" }

func (DrawerPolicy) Choose(obs Observation, actions []game.GameAction) game.GameAction {
	for _, want := range []game.ActionKind{
		game.ActionDefuse,
		game.ActionWinGame,
		game.ActionDrawFromDeck,
		game.ActionGameOver,
	} {
		if a := pick(actions, want); a != nil {
			return a
		}
	}
	return actions[0]
}

// --- Cautious ---

// CautiousPolicy scouts ahead and dodges a volatile top card with whatever
// it holds. It spends nopes on any pending play and otherwise just draws.
type CautiousPolicy struct{}

func (CautiousPolicy) Name() string { return "cautious" }

func (CautiousPolicy) Choose(obs Observation, actions []game.GameAction) game.GameAction {
	if a := pick(actions, game.ActionDefuse); a != nil {
		return a
	}
	if a := pick(actions, game.ActionWinGame); a != nil {
		return a
	}

	if topIsVolatile(obs.Private.Future) {
		for _, dodge := range []game.ActionKind{game.ActionSkip, game.ActionAttack, game.ActionShuffle} {
			if a := pick(actions, dodge); a != nil {
				return a
			}
		}
	} else if len(obs.Private.Future) == 0 {
		if a := pick(actions, game.ActionSeeFuture); a != nil {
			return a
		}
	}

	if a := pick(actions, game.ActionNope); a != nil {
		return a
	}
	if a := pick(actions, game.ActionDrawFromDeck); a != nil {
		return a
	}
	if a := pick(actions, game.ActionGameOver); a != nil {
		return a
	}
	return actions[0]
}

func pick(actions []game.GameAction, kind game.ActionKind) game.GameAction {
	for _, a := range actions {
		if a.Kind() == kind {
			return a
		}
	}
	return nil
}

func topIsVolatile(future []game.Card) bool {
	return len(future) > 0 && future[0].Kind == game.KindVolatile
}
