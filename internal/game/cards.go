package game

import "sort"

// CardKind enumerates every kind of card in the game.
type CardKind int

const (
	KindNone CardKind = iota // sentinel: "use default selection"
	KindVolatile
	KindDefuse
	KindSkip
	KindNope
	KindShuffle
	KindAttack
	KindSeeFuture
	KindFavor
	KindTaco
	KindRainbow
	KindPotato
	KindBeard
	KindMelon
)

func (k CardKind) String() string {
	switch k {
	case KindVolatile:
		return "Volatile"
	case KindDefuse:
		return "Defuse"
	case KindSkip:
		return "Skip"
	case KindNope:
		return "Nope"
	case KindShuffle:
		return "Shuffle"
	case KindAttack:
		return "Attack"
	case KindSeeFuture:
		return "SeeFuture"
	case KindFavor:
		return "Favor"
	case KindTaco:
		return "Taco"
	case KindRainbow:
		return "Rainbow"
	case KindPotato:
		return "Potato"
	case KindBeard:
		return "Beard"
	case KindMelon:
		return "Melon"
	default:
		return "None"
	}
}

// KindFromName parses the name produced by String. ok is false for
// unknown names and for "None": the sentinel is never a valid wire value.
func KindFromName(name string) (CardKind, bool) {
	for k := KindVolatile; k <= KindMelon; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return KindNone, false
}

// IsCollection reports whether k is one of the set-matching collection kinds.
// The rules never distinguish collection kinds individually.
func (k CardKind) IsCollection() bool {
	switch k {
	case KindTaco, KindRainbow, KindPotato, KindBeard, KindMelon:
		return true
	}
	return false
}

// CollectionKinds lists the five collection kinds in declaration order.
func CollectionKinds() []CardKind {
	return []CardKind{KindTaco, KindRainbow, KindPotato, KindBeard, KindMelon}
}

// Card is an identity-bearing card. ID, not Kind, is the equality and
// removal key: two cards of the same kind are interchangeable in value but
// distinct in identity. IDs are unique within a match.
type Card struct {
	ID   int      `json:"id"`
	Kind CardKind `json:"kind"`
}

func (c Card) String() string {
	return c.Kind.String()
}

// kindPriority is the fixed ranking used for default selections. Lower rank
// means more valuable. Kinds not listed rank after all listed ones.
var kindPriority = map[CardKind]int{
	KindDefuse:    0,
	KindAttack:    1,
	KindNope:      2,
	KindSkip:      3,
	KindSeeFuture: 4,
	KindShuffle:   5,
	KindFavor:     6,
}

// PriorityRank returns the selection rank of a kind. Unranked kinds sort
// after every ranked kind, ordered by kind value so results stay stable.
func PriorityRank(k CardKind) int {
	if r, ok := kindPriority[k]; ok {
		return r
	}
	return len(kindPriority) + int(k)
}

// SortByPriority returns a copy of cards ordered highest-priority first.
// Ties within a kind keep their input order.
func SortByPriority(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	sort.SliceStable(out, func(i, j int) bool {
		return PriorityRank(out[i].Kind) < PriorityRank(out[j].Kind)
	})
	return out
}

// HighestPriority returns the highest-priority card in cards.
// ok is false when cards is empty.
func HighestPriority(cards []Card) (Card, bool) {
	if len(cards) == 0 {
		return Card{}, false
	}
	best := cards[0]
	for _, c := range cards[1:] {
		if PriorityRank(c.Kind) < PriorityRank(best.Kind) {
			best = c
		}
	}
	return best, true
}

// LowestPriority returns the lowest-priority card in cards. This is the
// default pick when taking a card from another player: steals should not
// strip defensive cards unless nothing else is held.
func LowestPriority(cards []Card) (Card, bool) {
	if len(cards) == 0 {
		return Card{}, false
	}
	worst := cards[0]
	for _, c := range cards[1:] {
		if PriorityRank(c.Kind) > PriorityRank(worst.Kind) {
			worst = c
		}
	}
	return worst, true
}
