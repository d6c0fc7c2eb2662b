package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"atomicpiglets/internal/log"
)

var (
	ErrUnknownPlayer      = errors.New("unknown player")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrPendingStack       = errors.New("a play is awaiting resolution")
	ErrPreconditionNotMet = errors.New("action precondition not met")
	ErrPlayerBusted       = errors.New("player is out of the game")
	ErrMatchOver          = errors.New("match is over")
)

// DefaultPlayDelay is the window in which an opponent may Nope a played
// card before it resolves.
const DefaultPlayDelay = 5 * time.Second

// Match is the authoritative state of one game. All mutation goes through
// PlayAction and the resolution timer; both serialize on the match mutex.
// Action Execute bodies run with the mutex held and use the unexported
// helpers, never the locking accessors.
type Match struct {
	mu sync.Mutex

	deck     *CardCollection
	discard  *CardCollection
	playPile []CardAction

	players []*Player
	byID    map[uuid.UUID]*Player

	current   int
	turnsLeft int

	rng       *rand.Rand
	timer     ResolutionTimer
	logger    log.EventLogger
	playDelay time.Duration

	status    string
	winner    *Player
	over      bool
	resolving bool
	fault     error
}

type matchOptions struct {
	seed      int64
	seedSet   bool
	logger    log.EventLogger
	newTimer  func(onElapse func()) ResolutionTimer
	playDelay time.Duration
}

type MatchOption func(*matchOptions)

// WithSeed fixes the match RNG, making shuffles and random target picks
// reproducible.
func WithSeed(seed int64) MatchOption {
	return func(o *matchOptions) {
		o.seed = seed
		o.seedSet = true
	}
}

// WithLogger replaces the default in-memory event log.
func WithLogger(l log.EventLogger) MatchOption {
	return func(o *matchOptions) { o.logger = l }
}

// WithTimer replaces the default countdown resolution timer. The factory
// is handed the match's resolution callback.
func WithTimer(newTimer func(onElapse func()) ResolutionTimer) MatchOption {
	return func(o *matchOptions) { o.newTimer = newTimer }
}

// WithPlayDelay sets the Nope window length.
func WithPlayDelay(d time.Duration) MatchOption {
	return func(o *matchOptions) { o.playDelay = d }
}

// NewMatch wires up a match over an already-dealt deck and player set.
// Player order is play order; the first player starts with one turn.
func NewMatch(players []*Player, deck *CardCollection, opts ...MatchOption) *Match {
	o := matchOptions{playDelay: DefaultPlayDelay}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.seedSet {
		o.seed = time.Now().UnixNano()
	}
	if o.logger == nil {
		o.logger = log.NewMemoryLogger()
	}

	m := &Match{
		deck:      deck,
		discard:   NewCardCollection(),
		players:   players,
		byID:      make(map[uuid.UUID]*Player, len(players)),
		turnsLeft: 1,
		rng:       rand.New(rand.NewSource(o.seed)),
		logger:    o.logger,
		playDelay: o.playDelay,
	}
	for _, p := range players {
		m.byID[p.ID] = p
	}
	if o.newTimer != nil {
		m.timer = o.newTimer(m.resolvePending)
	} else {
		m.timer = NewCountdownTimer(m.resolvePending)
	}
	m.status = fmt.Sprintf("%s starts", m.players[m.current].Name)

	m.mu.Lock()
	ev := log.GameEvent{
		Kind:     log.EventMatchStarted,
		Note:     fmt.Sprintf("%d players", len(players)),
		Snapshot: m.snapshotLocked(),
	}
	m.logger.Append(ev)
	m.mu.Unlock()
	return m
}

// PlayAction validates and applies one action. Card actions are pushed on
// the play pile and start the resolution timer; system actions execute
// immediately. The appended event for the action is returned.
func (m *Match) PlayAction(a GameAction) (log.GameEvent, error) {
	m.mu.Lock()
	p, ok := m.byID[a.ActingPlayer()]
	if !ok {
		m.mu.Unlock()
		return log.GameEvent{}, ErrUnknownPlayer
	}
	if err := m.checkLegal(p, a); err != nil {
		m.mu.Unlock()
		return log.GameEvent{}, err
	}
	if a.Kind() != ActionNoAction {
		p.ClearFuture()
	}

	if ca, isCard := a.(CardAction); isCard {
		if err := p.Hand.RemoveAll(ca.Cards()); err != nil {
			m.mu.Unlock()
			return log.GameEvent{}, err
		}
		m.playPile = append(m.playPile, ca)
		m.status = fmt.Sprintf("%s played %s", p.Name, a)
		ev := m.appendEventLocked(log.EventActionPlayed, a)
		m.mu.Unlock()
		// The timer may resolve synchronously, so it runs unlocked.
		m.timer.Start(m.playDelay)
		return ev, nil
	}

	if err := a.Execute(m); err != nil {
		m.mu.Unlock()
		return log.GameEvent{}, err
	}
	// Idle acks leave no trace: replication consumers would otherwise
	// see the log grow with every polled NoAction.
	if a.Kind() == ActionNoAction {
		m.mu.Unlock()
		return log.GameEvent{}, nil
	}
	ev := m.appendEventLocked(log.EventActionExecuted, a)
	m.mu.Unlock()
	return ev, nil
}

// checkLegal is the admission gate for PlayAction. State is untouched on
// failure. Called with the mutex held.
func (m *Match) checkLegal(p *Player, a GameAction) error {
	kind := a.Kind()
	if kind == ActionNoAction {
		return nil
	}
	if m.over {
		return ErrMatchOver
	}
	if p.IsBusted() {
		if kind == ActionGameOver {
			return nil
		}
		return ErrPlayerBusted
	}

	if len(m.playPile) > 0 {
		if kind != ActionNope {
			return ErrPendingStack
		}
		if !m.nopeEligible(p) {
			return fmt.Errorf("%w: nope not available", ErrPreconditionNotMet)
		}
		return nil
	}

	if p != m.players[m.current] {
		return ErrNotYourTurn
	}

	holdingVolatile := p.Hand.Contains(KindVolatile)
	switch kind {
	case ActionDefuse:
		if !holdingVolatile || !p.Hand.Contains(KindDefuse) {
			return fmt.Errorf("%w: no card to defuse", ErrPreconditionNotMet)
		}
		return nil
	case ActionGameOver:
		return fmt.Errorf("%w: still in the game", ErrPreconditionNotMet)
	case ActionWinGame:
		for _, other := range m.players {
			if other != p && !other.IsBusted() {
				return fmt.Errorf("%w: opponents remain", ErrPreconditionNotMet)
			}
		}
		return nil
	}

	// Once a hidden card has been drawn the only way out is Defuse.
	if holdingVolatile {
		return fmt.Errorf("%w: must defuse first", ErrPreconditionNotMet)
	}

	switch kind {
	case ActionDrawFromDeck:
		if m.deck.Count() == 0 {
			return fmt.Errorf("%w: deck is empty", ErrPreconditionNotMet)
		}
		return nil
	case ActionNope:
		return fmt.Errorf("%w: nothing to nope", ErrPreconditionNotMet)
	case ActionDrawFromPlayer:
		return checkGroup(a, 2)
	case ActionDemandCard:
		return checkGroup(a, 3)
	case ActionDrawFromDiscard:
		ca := a.(CardAction)
		if len(ca.Cards()) != 5 || !distinctKinds(ca.Cards()) {
			return fmt.Errorf("%w: needs five cards of distinct kinds", ErrPreconditionNotMet)
		}
		return nil
	case ActionSkip, ActionAttack, ActionShuffle, ActionSeeFuture, ActionFavor:
		return nil
	default:
		return fmt.Errorf("%w: unrecognized action", ErrPreconditionNotMet)
	}
}

func checkGroup(a GameAction, n int) error {
	ca, ok := a.(CardAction)
	if !ok || len(ca.Cards()) != n {
		return fmt.Errorf("%w: needs %d cards of one kind", ErrPreconditionNotMet, n)
	}
	kind := ca.Cards()[0].Kind
	for _, c := range ca.Cards() {
		if c.Kind != kind {
			return fmt.Errorf("%w: cards must share a kind", ErrPreconditionNotMet)
		}
	}
	return nil
}

func distinctKinds(cards []Card) bool {
	seen := make(map[CardKind]bool, len(cards))
	for _, c := range cards {
		if seen[c.Kind] {
			return false
		}
		seen[c.Kind] = true
	}
	return true
}

// nopeEligible reports whether p may play Nope against the pending play.
// The current player may only counter-Nope; Defuse plays cannot be Noped.
// Called with the mutex held.
func (m *Match) nopeEligible(p *Player) bool {
	if !p.Hand.Contains(KindNope) {
		return false
	}
	if len(m.playPile) == 0 {
		return false
	}
	top := m.playPile[len(m.playPile)-1]
	for _, c := range top.Cards() {
		if c.Kind == KindDefuse {
			return false
		}
	}
	if p == m.players[m.current] && top.Kind() != ActionNope {
		return false
	}
	return true
}

// resolvePending drains the play pile top-down. Each entry's cards go to
// the discard pile, then the entry executes; a Nope's execution removes
// the entry beneath it without executing, so chains cancel by parity.
func (m *Match) resolvePending() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resolving {
		return
	}
	m.resolving = true
	defer func() { m.resolving = false }()

	for len(m.playPile) > 0 {
		top := m.playPile[len(m.playPile)-1]
		m.playPile = m.playPile[:len(m.playPile)-1]
		m.discard.AddMany(top.Cards())
		m.status = fmt.Sprintf("%s resolved", top)
		m.appendEventLocked(log.EventActionResolved, top)
		if err := top.Execute(m); err != nil && m.fault == nil {
			m.fault = err
		}
	}
}

// discardTopPlay removes the pending play beneath a resolving Nope,
// sending its cards to the discard pile without executing it.
func (m *Match) discardTopPlay() error {
	if len(m.playPile) == 0 {
		return nil
	}
	top := m.playPile[len(m.playPile)-1]
	m.playPile = m.playPile[:len(m.playPile)-1]
	m.discard.AddMany(top.Cards())
	m.status = fmt.Sprintf("%s was noped", top)
	m.appendEventLocked(log.EventActionNoped, top)
	return nil
}

// endTurn consumes one of the current player's turns and passes play when
// none remain. Called with the mutex held.
func (m *Match) endTurn() {
	m.turnsLeft--
	if m.turnsLeft > 0 {
		return
	}
	m.nextPlayer()
	m.turnsLeft = 1
	p := m.players[m.current]
	ev := log.GameEvent{
		Kind:      log.EventTurnPassed,
		Actor:     p.ID.String(),
		ActorName: p.Name,
		Note:      fmt.Sprintf("%s to play", p.Name),
	}
	ev.Snapshot = m.snapshotLocked()
	m.logger.Append(ev)
}

// nextPlayer advances to the next non-busted player.
func (m *Match) nextPlayer() {
	n := len(m.players)
	for i := 1; i <= n; i++ {
		idx := (m.current + i) % n
		if !m.players[idx].IsBusted() {
			m.current = idx
			break
		}
	}
	m.status = fmt.Sprintf("%s to play", m.players[m.current].Name)
	m.checkLastSurvivor()
}

func (m *Match) recordBust(p *Player) {
	m.status = fmt.Sprintf("%s exploded", p.Name)
	ev := log.GameEvent{
		Kind:      log.EventPlayerBusted,
		Actor:     p.ID.String(),
		ActorName: p.Name,
		Note:      "drew the hidden card with no defuse",
	}
	ev.Snapshot = m.snapshotLocked()
	m.logger.Append(ev)
	m.checkLastSurvivor()
}

// checkLastSurvivor emits the win marker as soon as only one player
// remains, without waiting for the survivor to claim it.
func (m *Match) checkLastSurvivor() {
	if m.winner != nil {
		return
	}
	var survivor *Player
	for _, p := range m.players {
		if p.IsBusted() {
			continue
		}
		if survivor != nil {
			return
		}
		survivor = p
	}
	if survivor == nil {
		return
	}
	m.winner = survivor
	m.status = fmt.Sprintf("%s wins!", survivor.Name)
	ev := log.GameEvent{
		Kind:      log.EventGameWon,
		Actor:     survivor.ID.String(),
		ActorName: survivor.Name,
		Note:      "last player standing",
	}
	ev.Snapshot = m.snapshotLocked()
	m.logger.Append(ev)
}

func (m *Match) recordWin(p *Player) {
	if m.winner == nil {
		m.winner = p
	}
	m.over = true
	m.timer.Stop()
	m.status = fmt.Sprintf("%s wins!", m.winner.Name)
}

// targetOrRandom resolves a target id, falling back to a uniformly random
// non-busted opponent. Opponents with cards in hand are preferred so the
// transfer is not a guaranteed no-op.
func (m *Match) targetOrRandom(target, actor uuid.UUID) *Player {
	if p, ok := m.byID[target]; ok && target != actor && !p.IsBusted() {
		return p
	}
	var withCards, alive []*Player
	for _, p := range m.players {
		if p.ID == actor || p.IsBusted() {
			continue
		}
		alive = append(alive, p)
		if p.Hand.Count() > 0 {
			withCards = append(withCards, p)
		}
	}
	pool := withCards
	if len(pool) == 0 {
		pool = alive
	}
	if len(pool) == 0 {
		return nil
	}
	return pool[m.rng.Intn(len(pool))]
}

func (m *Match) player(id uuid.UUID) *Player {
	return m.byID[id]
}

// --- event plumbing ---

func (m *Match) appendEventLocked(kind log.EventKind, a GameAction) log.GameEvent {
	ev := log.GameEvent{
		Kind:      kind,
		Actor:     a.ActingPlayer().String(),
		ActorName: m.nameOf(a.ActingPlayer()),
		Action:    a.String(),
	}
	if ta, ok := a.(TargetedAction); ok && ta.TargetPlayer() != uuid.Nil {
		ev.Target = ta.TargetPlayer().String()
		ev.TargetName = m.nameOf(ta.TargetPlayer())
	}
	if ca, ok := a.(CardAction); ok {
		ev.PlayedCards = cardRefs(ca.Cards())
	}
	if da, ok := a.(*DrawFromDeckAction); ok && da.DrawnCard != nil {
		ref := cardRef(*da.DrawnCard)
		ev.DrawnCard = &ref
	}
	ev.Snapshot = m.snapshotLocked()
	return m.logger.Append(ev)
}

func (m *Match) snapshotLocked() log.Snapshot {
	snap := log.Snapshot{
		CurrentPlayer: m.players[m.current].ID.String(),
		DeckSize:      m.deck.Count(),
		TurnsLeft:     m.turnsLeft,
		Status:        m.status,
	}
	for _, p := range m.players {
		snap.Players = append(snap.Players, log.PlayerSummary{
			ID:        p.ID.String(),
			Name:      p.Name,
			CardsLeft: p.Hand.Count(),
			Busted:    p.IsBusted(),
		})
	}
	for _, play := range m.playPile {
		snap.PlayPile = append(snap.PlayPile, cardRefs(play.Cards())...)
	}
	snap.Discard = cardRefs(m.discard.Cards())
	return snap
}

func (m *Match) nameOf(id uuid.UUID) string {
	if p, ok := m.byID[id]; ok {
		return p.Name
	}
	return ""
}

func cardRef(c Card) log.CardRef {
	return log.CardRef{ID: c.ID, Kind: c.Kind.String()}
}

func cardRefs(cards []Card) []log.CardRef {
	refs := make([]log.CardRef, 0, len(cards))
	for _, c := range cards {
		refs = append(refs, cardRef(c))
	}
	return refs
}

// --- accessors ---

// CurrentPlayer returns the player whose turn it is.
func (m *Match) CurrentPlayer() *Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players[m.current]
}

// Players returns the players in play order.
func (m *Match) Players() []*Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Player, len(m.players))
	copy(out, m.players)
	return out
}

// PlayerByID looks up a player.
func (m *Match) PlayerByID(id uuid.UUID) (*Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	return p, ok
}

// TurnsLeft returns the current player's remaining turn count.
func (m *Match) TurnsLeft() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turnsLeft
}

// DeckCount returns the number of cards left to draw.
func (m *Match) DeckCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deck.Count()
}

// DiscardPile returns a copy of the discard pile, bottom first.
func (m *Match) DiscardPile() []Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.discard.Cards()
}

// PlayPile returns the cards currently awaiting resolution, bottom first.
func (m *Match) PlayPile() []Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Card
	for _, play := range m.playPile {
		out = append(out, play.Cards()...)
	}
	return out
}

// PendingCount returns the number of plays on the play pile.
func (m *Match) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.playPile)
}

// Winner returns the winning player once only one remains.
func (m *Match) Winner() *Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.winner
}

// Over reports whether the win has been claimed.
func (m *Match) Over() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.over
}

// Status returns a short human-readable description of the match state.
func (m *Match) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Err returns the first internal consistency failure hit during
// resolution, if any. A non-nil value indicates a bug, not a rule
// violation by a player.
func (m *Match) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fault
}

// Events returns the full event log, uncensored.
func (m *Match) Events() []log.GameEvent {
	return m.logger.Events()
}

// EventsSince returns the events with index greater than after, letting a
// reconnecting client catch up from its last seen index.
func (m *Match) EventsSince(after int) []log.GameEvent {
	events := m.logger.Events()
	if after < 0 {
		after = 0
	}
	if after >= len(events) {
		return nil
	}
	return events[after:]
}

// AllCards gathers every card in the match: deck, discard, pending plays
// and hands. The multiset is invariant for the lifetime of a match.
func (m *Match) AllCards() []Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Card
	out = append(out, m.deck.Cards()...)
	out = append(out, m.discard.Cards()...)
	for _, play := range m.playPile {
		out = append(out, play.Cards()...)
	}
	for _, p := range m.players {
		out = append(out, p.Hand.Cards()...)
	}
	return out
}
