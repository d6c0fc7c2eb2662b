package game

import (
	"fmt"

	"github.com/google/uuid"
)

// ActionKind enumerates the closed set of action variants.
type ActionKind int

const (
	ActionNoAction ActionKind = iota
	ActionDrawFromDeck
	ActionDefuse
	ActionSkip
	ActionAttack
	ActionShuffle
	ActionSeeFuture
	ActionFavor
	ActionDrawFromPlayer
	ActionDemandCard
	ActionDrawFromDiscard
	ActionNope
	ActionGameOver
	ActionWinGame
)

func (k ActionKind) String() string {
	switch k {
	case ActionDrawFromDeck:
		return "DrawFromDeck"
	case ActionDefuse:
		return "Defuse"
	case ActionSkip:
		return "Skip"
	case ActionAttack:
		return "Attack"
	case ActionShuffle:
		return "Shuffle"
	case ActionSeeFuture:
		return "SeeFuture"
	case ActionFavor:
		return "Favor"
	case ActionDrawFromPlayer:
		return "DrawFromPlayer"
	case ActionDemandCard:
		return "DemandCard"
	case ActionDrawFromDiscard:
		return "DrawFromDiscard"
	case ActionNope:
		return "Nope"
	case ActionGameOver:
		return "GameOver"
	case ActionWinGame:
		return "WinGame"
	default:
		return "NoAction"
	}
}

// GameAction is one player- or system-initiated move. Actions are immutable
// once constructed, except for result fields filled in by Execute. Execute
// runs with the match serialized; it must not call locking accessors.
type GameAction interface {
	Kind() ActionKind
	ActingPlayer() uuid.UUID
	Execute(m *Match) error
	String() string
}

// CardAction is a GameAction that consumes cards from the actor's hand.
// The cards are removed at push time and end up on the discard pile when
// the play pile resolves.
type CardAction interface {
	GameAction
	Cards() []Card
}

// TargetedAction is implemented by actions aimed at another player.
type TargetedAction interface {
	TargetPlayer() uuid.UUID
}

// --- DrawFromDeck ---

// DrawFromDeckAction ends the current player's turn by drawing the top deck
// card. It is a system action: it executes immediately and cannot be Noped.
type DrawFromDeckAction struct {
	Player uuid.UUID

	// DrawnCard is a result field set by Execute.
	DrawnCard *Card
}

func NewDrawFromDeckAction(p *Player) *DrawFromDeckAction {
	return &DrawFromDeckAction{Player: p.ID}
}

func (a *DrawFromDeckAction) Kind() ActionKind        { return ActionDrawFromDeck }
func (a *DrawFromDeckAction) ActingPlayer() uuid.UUID { return a.Player }
func (a *DrawFromDeckAction) String() string          { return "Draw from deck" }

func (a *DrawFromDeckAction) Execute(m *Match) error {
	card, ok := m.deck.DrawTopCard()
	if !ok {
		return fmt.Errorf("%w: deck is empty", ErrPreconditionNotMet)
	}
	p := m.player(a.Player)
	p.Hand.Add(card)
	a.DrawnCard = &card

	if card.Kind == KindVolatile {
		if p.IsBusted() {
			m.recordBust(p)
			m.turnsLeft = 1
			m.nextPlayer()
		}
		// With a Defuse in hand the turn does not end: the player must
		// play the Defuse to re-hide the card.
		return nil
	}
	m.endTurn()
	return nil
}

// --- Defuse ---

// DefuseAction neutralizes a drawn Volatile card, hiding it back in the
// deck at a depth of the player's choosing.
type DefuseAction struct {
	Player       uuid.UUID
	DefuseCard   Card
	VolatileCard Card

	// VolatileDepth is the re-insertion depth from the top, clamped to
	// the deck size at execution time.
	VolatileDepth int
}

func NewDefuseAction(p *Player, defuse, volatile Card) *DefuseAction {
	return &DefuseAction{Player: p.ID, DefuseCard: defuse, VolatileCard: volatile}
}

func (a *DefuseAction) Kind() ActionKind        { return ActionDefuse }
func (a *DefuseAction) ActingPlayer() uuid.UUID { return a.Player }
func (a *DefuseAction) Cards() []Card           { return []Card{a.DefuseCard} }
func (a *DefuseAction) String() string          { return "Defuse" }

func (a *DefuseAction) Execute(m *Match) error {
	p := m.player(a.Player)
	if err := p.Hand.RemoveAll([]Card{a.VolatileCard}); err != nil {
		return err
	}
	m.deck.InsertFromTop(a.VolatileCard, a.VolatileDepth)
	m.endTurn()
	return nil
}

// --- Skip ---

// SkipAction ends the turn without drawing.
type SkipAction struct {
	Player uuid.UUID
	Card   Card
}

func NewSkipAction(p *Player, card Card) *SkipAction {
	return &SkipAction{Player: p.ID, Card: card}
}

func (a *SkipAction) Kind() ActionKind        { return ActionSkip }
func (a *SkipAction) ActingPlayer() uuid.UUID { return a.Player }
func (a *SkipAction) Cards() []Card           { return []Card{a.Card} }
func (a *SkipAction) String() string          { return "Skip" }

func (a *SkipAction) Execute(m *Match) error {
	m.endTurn()
	return nil
}

// --- Attack ---

// AttackAction passes the turn and loads extra turns onto the next player.
// Attacks stack: a player already under attack passes on their remaining
// turns plus two.
type AttackAction struct {
	Player uuid.UUID
	Card   Card
}

func NewAttackAction(p *Player, card Card) *AttackAction {
	return &AttackAction{Player: p.ID, Card: card}
}

func (a *AttackAction) Kind() ActionKind        { return ActionAttack }
func (a *AttackAction) ActingPlayer() uuid.UUID { return a.Player }
func (a *AttackAction) Cards() []Card           { return []Card{a.Card} }
func (a *AttackAction) String() string          { return "Attack!" }

func (a *AttackAction) Execute(m *Match) error {
	m.nextPlayer()
	if m.turnsLeft == 1 {
		m.turnsLeft = 2
	} else {
		m.turnsLeft += 2
	}
	return nil
}

// --- Shuffle ---

// ShuffleAction shuffles the deck.
type ShuffleAction struct {
	Player uuid.UUID
	Card   Card
}

func NewShuffleAction(p *Player, card Card) *ShuffleAction {
	return &ShuffleAction{Player: p.ID, Card: card}
}

func (a *ShuffleAction) Kind() ActionKind        { return ActionShuffle }
func (a *ShuffleAction) ActingPlayer() uuid.UUID { return a.Player }
func (a *ShuffleAction) Cards() []Card           { return []Card{a.Card} }
func (a *ShuffleAction) String() string          { return "Shuffle" }

func (a *ShuffleAction) Execute(m *Match) error {
	m.deck.Shuffle(m.rng)
	return nil
}

// --- SeeFuture ---

// SeeFutureAction caches the top three deck cards as the acting player's
// private foresight.
type SeeFutureAction struct {
	Player uuid.UUID
	Card   Card

	// Future is a result field set by Execute, top card first.
	Future []Card
}

func NewSeeFutureAction(p *Player, card Card) *SeeFutureAction {
	return &SeeFutureAction{Player: p.ID, Card: card}
}

func (a *SeeFutureAction) Kind() ActionKind        { return ActionSeeFuture }
func (a *SeeFutureAction) ActingPlayer() uuid.UUID { return a.Player }
func (a *SeeFutureAction) Cards() []Card           { return []Card{a.Card} }
func (a *SeeFutureAction) String() string          { return "See the future" }

func (a *SeeFutureAction) Execute(m *Match) error {
	top := m.deck.PeekTop(3)
	a.Future = top
	p := m.player(a.Player)
	// Store bottom-first so the cache's top matches the deck's top.
	future := NewCardCollection()
	for i := len(top) - 1; i >= 0; i-- {
		future.Add(top[i])
	}
	p.Future = future
	return nil
}

// --- Favor ---

// FavorAction takes one card from a target player. The target gives up
// their lowest-priority card, so defensive cards are kept unless nothing
// else is held.
type FavorAction struct {
	Player     uuid.UUID
	Card       Card
	Target     uuid.UUID
	TargetName string

	// TakenCard is a result field set by Execute; nil when the target had
	// no cards to give.
	TakenCard *Card
}

func NewFavorAction(p *Player, card Card, target *Player) *FavorAction {
	a := &FavorAction{Player: p.ID, Card: card}
	if target != nil {
		a.Target = target.ID
		a.TargetName = target.Name
	}
	return a
}

func (a *FavorAction) Kind() ActionKind        { return ActionFavor }
func (a *FavorAction) ActingPlayer() uuid.UUID { return a.Player }
func (a *FavorAction) Cards() []Card           { return []Card{a.Card} }
func (a *FavorAction) TargetPlayer() uuid.UUID { return a.Target }

func (a *FavorAction) String() string {
	if a.TargetName != "" {
		return fmt.Sprintf("Favor from %s", a.TargetName)
	}
	return "Favor"
}

func (a *FavorAction) Execute(m *Match) error {
	p := m.player(a.Player)
	target := m.targetOrRandom(a.Target, a.Player)
	if target == nil {
		return nil
	}
	taken, err := takeLowestPriority(target, p)
	if err != nil {
		return err
	}
	a.TakenCard = taken
	return nil
}

// --- DrawFromPlayer (pair) ---

// DrawFromPlayerAction trades two cards of one kind for a card from a
// target player.
type DrawFromPlayerAction struct {
	Player uuid.UUID

	// Selected is the pair actually consumed. Selectable lists every card
	// belonging to a pair-capable group, for UIs offering a choice.
	Selected   []Card
	Selectable []Card

	Target     uuid.UUID
	TargetName string

	TakenCard *Card
}

// NewDrawFromPlayerAction builds the pair action. groups holds every
// pair-capable group (two cards each); the default pick is the
// highest-priority group.
func NewDrawFromPlayerAction(p *Player, groups [][]Card, target *Player) *DrawFromPlayerAction {
	a := &DrawFromPlayerAction{Player: p.ID}
	for _, g := range groups {
		a.Selectable = append(a.Selectable, g...)
	}
	a.Selected = defaultGroup(groups)
	if target != nil {
		a.Target = target.ID
		a.TargetName = target.Name
	}
	return a
}

func (a *DrawFromPlayerAction) Kind() ActionKind        { return ActionDrawFromPlayer }
func (a *DrawFromPlayerAction) ActingPlayer() uuid.UUID { return a.Player }
func (a *DrawFromPlayerAction) Cards() []Card           { return a.Selected }
func (a *DrawFromPlayerAction) TargetPlayer() uuid.UUID { return a.Target }

func (a *DrawFromPlayerAction) String() string {
	kind := CardKind(KindNone)
	if len(a.Selected) > 0 {
		kind = a.Selected[0].Kind
	}
	if a.TargetName != "" {
		return fmt.Sprintf("Draw from %s with 2x %s", a.TargetName, kind)
	}
	return fmt.Sprintf("Draw from player with 2x %s", kind)
}

func (a *DrawFromPlayerAction) Execute(m *Match) error {
	p := m.player(a.Player)
	target := m.targetOrRandom(a.Target, a.Player)
	if target == nil {
		return nil
	}
	taken, err := takeLowestPriority(target, p)
	if err != nil {
		return err
	}
	a.TakenCard = taken
	return nil
}

// --- DemandCardFromPlayer (triple) ---

// DemandCardAction trades three cards of one kind for a card from a target,
// optionally naming the kind demanded. When the target does not hold the
// demanded kind, nothing is transferred.
type DemandCardAction struct {
	Player uuid.UUID

	Selected   []Card
	Selectable []Card

	Target     uuid.UUID
	TargetName string

	// Demanded is the requested kind; KindNone means the default
	// lowest-priority pick.
	Demanded CardKind

	TakenCard *Card
}

// NewDemandCardAction builds the triple action. groups holds every
// triple-capable group (three cards each).
func NewDemandCardAction(p *Player, groups [][]Card, target *Player) *DemandCardAction {
	a := &DemandCardAction{Player: p.ID}
	for _, g := range groups {
		a.Selectable = append(a.Selectable, g...)
	}
	a.Selected = defaultGroup(groups)
	if target != nil {
		a.Target = target.ID
		a.TargetName = target.Name
	}
	return a
}

func (a *DemandCardAction) Kind() ActionKind        { return ActionDemandCard }
func (a *DemandCardAction) ActingPlayer() uuid.UUID { return a.Player }
func (a *DemandCardAction) Cards() []Card           { return a.Selected }
func (a *DemandCardAction) TargetPlayer() uuid.UUID { return a.Target }

func (a *DemandCardAction) String() string {
	kind := CardKind(KindNone)
	if len(a.Selected) > 0 {
		kind = a.Selected[0].Kind
	}
	if a.TargetName != "" {
		return fmt.Sprintf("Demand from %s with 3x %s", a.TargetName, kind)
	}
	return fmt.Sprintf("Demand from player with 3x %s", kind)
}

func (a *DemandCardAction) Execute(m *Match) error {
	p := m.player(a.Player)
	target := m.targetOrRandom(a.Target, a.Player)
	if target == nil {
		return nil
	}
	if a.Demanded == KindNone {
		taken, err := takeLowestPriority(target, p)
		if err != nil {
			return err
		}
		a.TakenCard = taken
		return nil
	}
	card, ok := target.Hand.PeekKind(a.Demanded)
	if !ok {
		return nil
	}
	if err := target.Hand.TransferCardTo(&card, p.Hand); err != nil {
		return err
	}
	a.TakenCard = &card
	return nil
}

// --- DrawFromDiscard ---

// DrawFromDiscardAction trades five cards of distinct kinds for one card
// from the discard pile: by default the highest-priority card present, or a
// requested kind.
type DrawFromDiscardAction struct {
	Player uuid.UUID

	// Selected is the five consumed cards, the lowest-priority distinct
	// cards of the hand. Selectable holds one card per distinct kind.
	Selected   []Card
	Selectable []Card

	// Requested is the kind to fetch; KindNone means the default
	// highest-priority pick.
	Requested CardKind

	TakenCard *Card
}

func NewDrawFromDiscardAction(p *Player, distinct []Card) *DrawFromDiscardAction {
	a := &DrawFromDiscardAction{Player: p.ID, Selectable: distinct}
	byPriority := SortByPriority(distinct)
	if len(byPriority) > 5 {
		byPriority = byPriority[len(byPriority)-5:]
	}
	a.Selected = byPriority
	return a
}

func (a *DrawFromDiscardAction) Kind() ActionKind        { return ActionDrawFromDiscard }
func (a *DrawFromDiscardAction) ActingPlayer() uuid.UUID { return a.Player }
func (a *DrawFromDiscardAction) Cards() []Card           { return a.Selected }
func (a *DrawFromDiscardAction) String() string          { return "Draw from discards" }

func (a *DrawFromDiscardAction) Execute(m *Match) error {
	if m.discard.Count() == 0 {
		return nil
	}
	p := m.player(a.Player)
	var card Card
	if a.Requested == KindNone {
		picked, ok := HighestPriority(m.discard.Cards())
		if !ok {
			return nil
		}
		card = picked
	} else {
		picked, ok := m.discard.PeekKind(a.Requested)
		if !ok {
			return nil
		}
		card = picked
	}
	if err := m.discard.TransferCardTo(&card, p.Hand); err != nil {
		return err
	}
	a.TakenCard = &card
	return nil
}

// --- Nope ---

// NopeAction cancels the play directly beneath it on the play pile. Its
// Execute runs during resolution and removes one more entry without
// executing it, which is what makes Nope chains resolve by parity.
type NopeAction struct {
	Player uuid.UUID
	Card   Card
}

func NewNopeAction(p *Player, card Card) *NopeAction {
	return &NopeAction{Player: p.ID, Card: card}
}

func (a *NopeAction) Kind() ActionKind        { return ActionNope }
func (a *NopeAction) ActingPlayer() uuid.UUID { return a.Player }
func (a *NopeAction) Cards() []Card           { return []Card{a.Card} }
func (a *NopeAction) String() string          { return "Nope" }

func (a *NopeAction) Execute(m *Match) error {
	return m.discardTopPlay()
}

// --- Terminal markers and placeholder ---

// GameOverAction is the terminal marker for a busted player.
type GameOverAction struct {
	Player uuid.UUID
}

func NewGameOverAction(p *Player) *GameOverAction {
	return &GameOverAction{Player: p.ID}
}

func (a *GameOverAction) Kind() ActionKind        { return ActionGameOver }
func (a *GameOverAction) ActingPlayer() uuid.UUID { return a.Player }
func (a *GameOverAction) String() string          { return "Game over" }

func (a *GameOverAction) Execute(m *Match) error { return nil }

// WinGameAction is the terminal marker for the last surviving player.
type WinGameAction struct {
	Player uuid.UUID
}

func NewWinGameAction(p *Player) *WinGameAction {
	return &WinGameAction{Player: p.ID}
}

func (a *WinGameAction) Kind() ActionKind        { return ActionWinGame }
func (a *WinGameAction) ActingPlayer() uuid.UUID { return a.Player }
func (a *WinGameAction) String() string          { return "You won!" }

func (a *WinGameAction) Execute(m *Match) error {
	m.recordWin(m.player(a.Player))
	return nil
}

// NoAction is the placeholder returned when a player has no legal move.
type NoAction struct {
	Player uuid.UUID
}

func NewNoAction(p *Player) *NoAction {
	return &NoAction{Player: p.ID}
}

func (a *NoAction) Kind() ActionKind        { return ActionNoAction }
func (a *NoAction) ActingPlayer() uuid.UUID { return a.Player }
func (a *NoAction) String() string          { return "No action" }

func (a *NoAction) Execute(m *Match) error { return nil }

// --- shared helpers ---

// defaultGroup picks the highest-priority group among equal-size candidate
// groups. Players default to trading their most valuable set; bots and UIs
// may override by constructing the action with a different selection.
func defaultGroup(groups [][]Card) []Card {
	var best []Card
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		if best == nil || PriorityRank(g[0].Kind) < PriorityRank(best[0].Kind) {
			best = g
		}
	}
	return best
}

// takeLowestPriority moves the target's lowest-priority card into the
// actor's hand. Returns nil when the target holds nothing.
func takeLowestPriority(target, to *Player) (*Card, error) {
	card, ok := LowestPriority(target.Hand.Cards())
	if !ok {
		return nil, nil
	}
	if err := target.Hand.TransferCardTo(&card, to.Hand); err != nil {
		return nil, err
	}
	return &card, nil
}
