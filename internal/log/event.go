package log

// EventKind enumerates the observable match events.
type EventKind int

const (
	EventMatchStarted EventKind = iota
	EventActionPlayed   // a card action was pushed on the play pile
	EventActionExecuted // a system action ran immediately
	EventActionResolved // a play-pile entry executed during resolution
	EventActionNoped    // a play-pile entry was cancelled by a Nope
	EventTurnPassed
	EventPlayerBusted
	EventGameWon
)

func (k EventKind) String() string {
	switch k {
	case EventMatchStarted:
		return "MatchStarted"
	case EventActionPlayed:
		return "ActionPlayed"
	case EventActionExecuted:
		return "ActionExecuted"
	case EventActionResolved:
		return "ActionResolved"
	case EventActionNoped:
		return "ActionNoped"
	case EventTurnPassed:
		return "TurnPassed"
	case EventPlayerBusted:
		return "PlayerBusted"
	case EventGameWon:
		return "GameWon"
	default:
		return "Unknown"
	}
}

// SecretKind is the kind name a CardRef carries after censorship.
const SecretKind = "Secret"

// VolatileKind is the one card kind that is always announced publicly, even
// to viewers who would otherwise see a redacted draw.
const VolatileKind = "Volatile"

// CardRef identifies a card inside an event.
type CardRef struct {
	ID   int    `json:"id"`
	Kind string `json:"kind"`
}

// PlayerSummary is public per-player state embedded in snapshots.
type PlayerSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CardsLeft int    `json:"cardsLeft"`
	Busted    bool   `json:"busted"`
}

// Snapshot is an owned, immutable copy of the public match state at the
// moment an event was appended. Every event carries its own copy so that
// per-viewer projections never alias live game state.
type Snapshot struct {
	CurrentPlayer string          `json:"currentPlayer"`
	Players       []PlayerSummary `json:"players"`
	PlayPile      []CardRef       `json:"playPile"`
	Discard       []CardRef       `json:"discard"`
	DeckSize      int             `json:"deckSize"`
	TurnsLeft     int             `json:"turnsLeft"`
	Status        string          `json:"status"`
}

// GameEvent is one entry in the append-only match history. Index is
// monotonic from 1; a consumer that last saw index k catches up by asking
// for everything after k.
type GameEvent struct {
	Index       int       `json:"index"`
	Kind        EventKind `json:"kind"`
	Actor       string    `json:"actor"`
	ActorName   string    `json:"actorName"`
	Target      string    `json:"target,omitempty"`
	TargetName  string    `json:"targetName,omitempty"`
	Action      string    `json:"action"`
	PlayedCards []CardRef `json:"playedCards,omitempty"`
	DrawnCard   *CardRef  `json:"drawnCard,omitempty"`
	Note        string    `json:"note,omitempty"`
	Snapshot    Snapshot  `json:"snapshot"`
}

// CensorEvent projects an event for one viewer. The drawn card is redacted
// to a Secret marker unless the viewer acted, was the target, or the card is
// Volatile, which is always publicly announced. All other event fields are
// already public.
func CensorEvent(e GameEvent, viewer string) GameEvent {
	if e.DrawnCard == nil {
		return e
	}
	if viewer == e.Actor || (e.Target != "" && viewer == e.Target) || e.DrawnCard.Kind == VolatileKind {
		drawn := *e.DrawnCard
		e.DrawnCard = &drawn
		return e
	}
	e.DrawnCard = &CardRef{Kind: SecretKind}
	return e
}

// CensorEvents projects a slice of events for one viewer, preserving order.
func CensorEvents(events []GameEvent, viewer string) []GameEvent {
	out := make([]GameEvent, len(events))
	for i, e := range events {
		out[i] = CensorEvent(e, viewer)
	}
	return out
}
