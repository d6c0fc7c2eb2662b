package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DealConfig controls the composition of a fresh deck. Counts are per
// deck copy; decks are duplicated for oversized tables.
type DealConfig struct {
	Shuffle        int `yaml:"shuffle"`
	Skip           int `yaml:"skip"`
	Nope           int `yaml:"nope"`
	SeeFuture      int `yaml:"see_future"`
	Attack         int `yaml:"attack"`
	Favor          int `yaml:"favor"`
	CollectionEach int `yaml:"collection_each"`

	// HandSize is the number of cards dealt to each player, not counting
	// the guaranteed Defuse.
	HandSize int `yaml:"hand_size"`

	// DeckDefuses is the number of Defuse cards mixed into the draw pile
	// after dealing. Tables of five or more get one fewer.
	DeckDefuses int `yaml:"deck_defuses"`
}

// DefaultDealConfig is the standard deck.
func DefaultDealConfig() DealConfig {
	return DealConfig{
		Shuffle:        4,
		Skip:           4,
		Nope:           5,
		SeeFuture:      5,
		Attack:         4,
		Favor:          4,
		CollectionEach: 4,
		HandSize:       7,
		DeckDefuses:    2,
	}
}

// LoadDealConfig reads a deck composition from a YAML file.
func LoadDealConfig(path string) (DealConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DealConfig{}, fmt.Errorf("read deal config: %w", err)
	}
	cfg := DefaultDealConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DealConfig{}, fmt.Errorf("parse deal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return DealConfig{}, err
	}
	return cfg, nil
}

func (c DealConfig) Validate() error {
	if c.HandSize < 1 {
		return fmt.Errorf("deal config: hand size %d is too small", c.HandSize)
	}
	if c.DeckDefuses < 1 {
		return fmt.Errorf("deal config: need at least one defuse in the deck")
	}
	counts := []int{c.Shuffle, c.Skip, c.Nope, c.SeeFuture, c.Attack, c.Favor, c.CollectionEach}
	for _, n := range counts {
		if n < 0 {
			return fmt.Errorf("deal config: negative card count")
		}
	}
	return nil
}

// baseKinds expands the configured counts into the playing kinds of one
// deck copy, Defuse and Volatile excluded.
func (c DealConfig) baseKinds() []CardKind {
	var kinds []CardKind
	add := func(k CardKind, n int) {
		for i := 0; i < n; i++ {
			kinds = append(kinds, k)
		}
	}
	add(KindShuffle, c.Shuffle)
	add(KindSkip, c.Skip)
	add(KindNope, c.Nope)
	add(KindSeeFuture, c.SeeFuture)
	add(KindAttack, c.Attack)
	add(KindFavor, c.Favor)
	for _, k := range CollectionKinds() {
		add(k, c.CollectionEach)
	}
	return kinds
}
