package bot

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"atomicpiglets/internal/game"
)

// ErrNoWinner is returned when a simulation hits its round limit.
var ErrNoWinner = errors.New("no winner within the round limit")

// DefaultMaxRounds bounds runaway simulations.
const DefaultMaxRounds = 5000

// Seat binds one player to the policy driving it.
type Seat struct {
	Player *game.Player
	Policy Policy
}

// Result summarizes a finished simulation.
type Result struct {
	Winner *game.Player
	Rounds int
	Events int
}

// Runner plays a match of bots to completion. It owns a manual resolution
// timer: each round every seat gets one action, then pending plays resolve.
type Runner struct {
	match     *game.Match
	rules     *game.Rules
	seats     []Seat
	timer     *game.ManualTimer
	maxRounds int

	// busted seats acknowledge their elimination once, not every round
	acked map[uuid.UUID]bool
}

// NewRunner deals a standard match for the given policies. Seat names
// follow policy names.
func NewRunner(policies []Policy, seed int64, opts ...game.MatchOption) (*Runner, error) {
	r := &Runner{
		maxRounds: DefaultMaxRounds,
		acked:     make(map[uuid.UUID]bool),
	}

	names := make([]string, len(policies))
	for i, p := range policies {
		names[i] = fmt.Sprintf("%s-%d", p.Name(), i+1)
	}

	base := []game.MatchOption{
		game.WithSeed(seed),
		game.WithTimer(func(onElapse func()) game.ResolutionTimer {
			r.timer = game.NewManualTimer(onElapse)
			return r.timer
		}),
	}
	m, err := game.NewStandardMatch(names, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	r.match = m
	r.rules = game.NewRules(m)
	for i, p := range m.Players() {
		r.seats = append(r.seats, Seat{Player: p, Policy: policies[i]})
	}
	return r, nil
}

// Match exposes the underlying match, for inspecting simulations.
func (r *Runner) Match() *game.Match { return r.match }

// SetMaxRounds overrides the round limit.
func (r *Runner) SetMaxRounds(n int) { r.maxRounds = n }

// Run drives the match until the win is claimed.
func (r *Runner) Run() (Result, error) {
	for round := 1; round <= r.maxRounds; round++ {
		if r.match.Over() {
			return r.result(round), nil
		}
		if err := r.playRound(); err != nil {
			return Result{}, fmt.Errorf("round %d: %w", round, err)
		}
	}
	return Result{}, ErrNoWinner
}

// playRound gives every seat one action, then fires the resolution timer
// if any play is still pending.
func (r *Runner) playRound() error {
	for _, seat := range r.seats {
		if r.match.Over() {
			return nil
		}
		action, ok := r.chooseFor(seat)
		if !ok {
			continue
		}
		if _, err := r.match.PlayAction(action); err != nil {
			return fmt.Errorf("%s submitted %s: %w", seat.Player.Name, action, err)
		}
		if action.Kind() == game.ActionGameOver {
			r.acked[seat.Player.ID] = true
		}
	}
	if r.timer.Armed() {
		r.timer.Fire()
	}
	return r.match.Err()
}

func (r *Runner) chooseFor(seat Seat) (game.GameAction, bool) {
	if r.acked[seat.Player.ID] {
		return nil, false
	}
	actions := r.rules.LegalActions(seat.Player)

	// The claim is never a judgement call.
	if a := pick(actions, game.ActionWinGame); a != nil {
		return a, true
	}

	private, _ := r.match.PrivateView(seat.Player.ID)
	obs := Observation{
		Public:  r.match.PublicView(),
		Private: private,
	}
	action := seat.Policy.Choose(obs, actions)
	if action == nil || action.Kind() == game.ActionNoAction {
		return nil, false
	}
	return action, true
}

func (r *Runner) result(rounds int) Result {
	return Result{
		Winner: r.match.Winner(),
		Rounds: rounds,
		Events: len(r.match.Events()),
	}
}
