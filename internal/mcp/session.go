// Package mcp exposes matches as MCP tools, so a language-model agent can
// hold one seat against bot opponents.
package mcp

import (
	"errors"
	"fmt"

	"atomicpiglets/internal/bot"
	"atomicpiglets/internal/game"
	"atomicpiglets/internal/log"
	"atomicpiglets/internal/net"
)

// maxAdvanceRounds bounds the bot fast-forward between agent decisions.
const maxAdvanceRounds = 500

// GameSession holds the state of a single MCP match: the agent's seat,
// the bot opponents, and the manual resolution timer the session fires
// after each batch of submissions.
type GameSession struct {
	match *game.Match
	rules *game.Rules
	timer *game.ManualTimer

	agent *game.Player
	bots  []botSeat

	// lastIndex is the newest event index already reported to the agent.
	lastIndex int

	// agentAcked is set once a busted agent has acknowledged elimination;
	// from then on the bots play the match out on their own.
	agentAcked bool
}

type botSeat struct {
	player *game.Player
	policy bot.Policy
	acked  bool
}

// NewGameSession deals a match with the agent in seat one and bot
// opponents in the rest.
func NewGameSession(opponents int, seed int64) (*GameSession, error) {
	if opponents < 1 || opponents+1 > game.MaxPlayers {
		return nil, fmt.Errorf("opponent count %d out of range", opponents)
	}

	s := &GameSession{}
	names := []string{"agent"}
	var policies []bot.Policy
	for i := 0; i < opponents; i++ {
		var p bot.Policy
		if i%2 == 0 {
			p = bot.CautiousPolicy{}
		} else {
			p = bot.NewRandomPolicy(seed + int64(i))
		}
		policies = append(policies, p)
		names = append(names, fmt.Sprintf("%s-%d", p.Name(), i+1))
	}

	opts := []game.MatchOption{
		game.WithTimer(func(onElapse func()) game.ResolutionTimer {
			s.timer = game.NewManualTimer(onElapse)
			return s.timer
		}),
	}
	if seed != 0 {
		opts = append(opts, game.WithSeed(seed))
	}
	m, err := game.NewStandardMatch(names, opts...)
	if err != nil {
		return nil, err
	}
	s.match = m
	s.rules = game.NewRules(m)

	players := m.Players()
	s.agent = players[0]
	for i, p := range players[1:] {
		s.bots = append(s.bots, botSeat{player: p, policy: policies[i]})
	}

	// Bots act first if the deal demands it.
	if err := s.advance(); err != nil {
		return nil, err
	}
	return s, nil
}

// Submit plays the agent's numbered action, resolves it, and fast-forwards
// the bots until the agent has a real decision again.
func (s *GameSession) Submit(msg net.ClientMessage) error {
	actions := s.rules.LegalActions(s.agent)
	if msg.Index < 0 || msg.Index >= len(actions) {
		return fmt.Errorf("action index %d out of range", msg.Index)
	}
	action := actions[msg.Index]
	if err := net.RefineAction(s.match, action, msg); err != nil {
		return err
	}
	if _, err := s.match.PlayAction(action); err != nil {
		return err
	}
	// A declined response window resolves right away instead of making
	// the agent wait out the countdown.
	if action.Kind() == game.ActionNoAction && s.timer.Armed() {
		s.timer.Fire()
	}
	if action.Kind() == game.ActionGameOver {
		s.agentAcked = true
	}
	return s.advance()
}

// advance lets the bots play until the match ends or the agent has
// something other than NoAction available. Each round every bot gets one
// action, then any pending play resolves.
func (s *GameSession) advance() error {
	for round := 0; round < maxAdvanceRounds; round++ {
		if s.match.Over() || s.agentHasDecision() {
			return nil
		}
		for i := range s.bots {
			seat := &s.bots[i]
			if seat.acked {
				continue
			}
			actions := s.rules.LegalActions(seat.player)
			private, _ := s.match.PrivateView(seat.player.ID)
			obs := bot.Observation{Public: s.match.PublicView(), Private: private}
			action := seat.policy.Choose(obs, actions)
			if action == nil || action.Kind() == game.ActionNoAction {
				continue
			}
			if _, err := s.match.PlayAction(action); err != nil {
				return fmt.Errorf("bot %s: %w", seat.player.Name, err)
			}
			if action.Kind() == game.ActionGameOver {
				seat.acked = true
			}
		}
		if s.timer.Armed() {
			s.timer.Fire()
		}
		if err := s.match.Err(); err != nil {
			return err
		}
	}
	return errors.New("bots stalled the match")
}

// agentHasDecision reports whether the agent's legal set contains anything
// beyond the placeholder.
func (s *GameSession) agentHasDecision() bool {
	if s.agentAcked {
		return false
	}
	for _, a := range s.rules.LegalActions(s.agent) {
		if a.Kind() != game.ActionNoAction {
			return true
		}
	}
	return false
}

// State builds the agent-facing view plus any events it has not seen.
func (s *GameSession) State() ToolResponse {
	state := net.StateFor(s.match, s.rules, s.agent)
	resp := ToolResponse{State: &state}

	events := s.match.EventsSince(s.lastIndex)
	if len(events) > 0 {
		s.lastIndex = events[len(events)-1].Index
		resp.Events = log.CensorEvents(events, s.agent.ID.String())
	}

	if s.match.Over() {
		resp.GameOver = true
		if w := s.match.Winner(); w != nil {
			resp.Winner = w.Name
		}
	}
	return resp
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events   []log.GameEvent `json:"events,omitempty"`
	State    *net.StateView  `json:"state,omitempty"`
	GameOver bool            `json:"gameOver,omitempty"`
	Winner   string          `json:"winner,omitempty"`
}
