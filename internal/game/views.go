package game

import "github.com/google/uuid"

// PlayerView is the public face of one player.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CardsLeft int    `json:"cardsLeft"`
	Busted    bool   `json:"busted"`
	IsCurrent bool   `json:"isCurrent"`
}

// PublicView is the match state every seat can see. Hidden zones appear
// only as counts.
type PublicView struct {
	Status        string       `json:"status"`
	CurrentPlayer string       `json:"currentPlayer"`
	TurnsLeft     int          `json:"turnsLeft"`
	DeckSize      int          `json:"deckSize"`
	DiscardPile   []Card       `json:"discardPile"`
	PlayPile      []Card       `json:"playPile"`
	Players       []PlayerView `json:"players"`
	Winner        string       `json:"winner,omitempty"`
	Over          bool         `json:"over"`
}

// PrivateView is the state one player alone can see: their hand and any
// foresight from See the future, top card first.
type PrivateView struct {
	PlayerID string `json:"playerId"`
	Hand     []Card `json:"hand"`
	Future   []Card `json:"future,omitempty"`
}

// PublicView snapshots the shared state of the match.
func (m *Match) PublicView() PublicView {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := PublicView{
		Status:        m.status,
		CurrentPlayer: m.players[m.current].ID.String(),
		TurnsLeft:     m.turnsLeft,
		DeckSize:      m.deck.Count(),
		DiscardPile:   m.discard.Cards(),
		Over:          m.over,
	}
	for _, play := range m.playPile {
		v.PlayPile = append(v.PlayPile, play.Cards()...)
	}
	for i, p := range m.players {
		v.Players = append(v.Players, PlayerView{
			ID:        p.ID.String(),
			Name:      p.Name,
			CardsLeft: p.Hand.Count(),
			Busted:    p.IsBusted(),
			IsCurrent: i == m.current,
		})
	}
	if m.winner != nil {
		v.Winner = m.winner.ID.String()
	}
	return v
}

// PrivateView snapshots the state only the given player can see.
func (m *Match) PrivateView(id uuid.UUID) (PrivateView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.byID[id]
	if !ok {
		return PrivateView{}, false
	}
	v := PrivateView{
		PlayerID: p.ID.String(),
		Hand:     p.Hand.Cards(),
	}
	if p.Future != nil {
		// Future stores bottom-first; present it top card first.
		cards := p.Future.Cards()
		for i := len(cards) - 1; i >= 0; i-- {
			v.Future = append(v.Future, cards[i])
		}
	}
	return v, true
}
