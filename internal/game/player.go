package game

import "github.com/google/uuid"

// Player is a seat at the table. Identity persists across rematches; the
// factory resets hand and foresight state when a new match starts.
type Player struct {
	ID   uuid.UUID
	Name string

	// Hand holds the player's cards, hidden from other players.
	Hand *CardCollection

	// Future caches the top-of-deck cards revealed by SeeFuture. It is
	// visible only to this player and cleared after their next action.
	Future *CardCollection
}

// NewPlayer creates a player with a fresh identity.
func NewPlayer(name string) *Player {
	return &Player{
		ID:   uuid.New(),
		Name: name,
		Hand: NewCardCollection(),
	}
}

// IsBusted reports whether the player is out of the game: holding a Volatile
// card with no Defuse to neutralize it. Derived, never stored.
func (p *Player) IsBusted() bool {
	return p.Hand.Contains(KindVolatile) && !p.Hand.Contains(KindDefuse)
}

// ClearFuture drops any cached foresight. Called after each action the
// player takes, since any deck mutation can invalidate the peek.
func (p *Player) ClearFuture() {
	p.Future = nil
}

func (p *Player) String() string {
	return p.Name
}
