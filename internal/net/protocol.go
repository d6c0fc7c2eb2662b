// Package net hosts networked matches over websockets. The server owns
// the authoritative match; clients see only censored events and views.
package net

import (
	"atomicpiglets/internal/game"
	"atomicpiglets/internal/log"
)

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "welcome"
	PlayerID string `json:"playerId,omitempty"`
	Seat     int    `json:"seat,omitempty"`

	// For "events": censored events the client has not seen yet.
	Events []log.GameEvent `json:"events,omitempty"`

	// For "state"
	State *StateView `json:"state,omitempty"`

	// For "error"
	Error string `json:"error,omitempty"`

	// For "game_over"
	Winner     string `json:"winner,omitempty"`
	WinnerName string `json:"winnerName,omitempty"`
}

// StateView is the match from one seat's perspective: the public table,
// the seat's private cards, and its currently legal actions.
type StateView struct {
	Public  game.PublicView  `json:"public"`
	You     game.PrivateView `json:"you"`
	Actions []ActionView     `json:"actions"`
}

// ActionView is a numbered action choice.
type ActionView struct {
	Index int         `json:"index"`
	Kind  string      `json:"kind"`
	Desc  string      `json:"desc"`
	Cards []game.Card `json:"cards,omitempty"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "join" (initial handshake)
	Name string `json:"name,omitempty"`

	// For "action": the index from the last StateView, plus optional
	// refinements of the chosen action.
	Index  int    `json:"index,omitempty"`
	Target string `json:"target,omitempty"` // player id for targeted actions
	Depth  int    `json:"depth,omitempty"`  // re-insertion depth for a defuse
	Demand string `json:"demand,omitempty"` // card kind name for a demand

	// For "events": the last event index the client has seen.
	After int `json:"after,omitempty"`
}
