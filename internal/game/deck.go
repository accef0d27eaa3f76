package game

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	PowerDeckSize  = 80
	VortexSlots    = 4
	MinCardValue   = 1
	MaxCardValue   = 10
	copiesPerPower = 2
)

// NewPowerDeck builds the 80-card power deck: 2 copies x 10 values x 2 types x 2 colors.
// IDs start at 1.
func NewPowerDeck() []Card {
	deck := make([]Card, 0, PowerDeckSize)
	id := 0
	for _, ct := range []CardType{CardATK, CardDEF} {
		for _, col := range []Color{ColorBlack, ColorWhite} {
			for v := MinCardValue; v <= MaxCardValue; v++ {
				for n := 0; n < copiesPerPower; n++ {
					id++
					deck = append(deck, Card{ID: id, Type: ct, Color: col, Value: v})
				}
			}
		}
	}
	return deck
}

// NewAbilityDeck builds one copy of every ability whose effect is not in exclude.
func NewAbilityDeck(exclude ...EffectTag) []AbilityCard {
	skip := make(map[EffectTag]bool, len(exclude))
	for _, t := range exclude {
		skip[t] = true
	}
	var deck []AbilityCard
	for _, tag := range AllEffects() {
		if skip[tag] {
			continue
		}
		deck = append(deck, newAbility(int(tag)+1, tag))
	}
	return deck
}

func shuffleCards(rng *rand.Rand, cards []Card) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// --- Roster file ---

// RosterFile represents the top-level YAML structure.
type RosterFile struct {
	Characters []CharacterEntry `yaml:"characters"`
}

// CharacterEntry represents a single character in the YAML file.
type CharacterEntry struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Affinity        string `yaml:"affinity"`
	StartingAbility string `yaml:"starting_ability"`
}

// RosterSize is the number of characters a roster must define.
const RosterSize = 12

// ParseRoster decodes and validates a YAML roster document.
func ParseRoster(data []byte) ([]Character, error) {
	var rf RosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse roster YAML: %w", err)
	}
	if len(rf.Characters) != RosterSize {
		return nil, fmt.Errorf("roster must define %d characters, got %d", RosterSize, len(rf.Characters))
	}

	seen := make(map[string]bool, len(rf.Characters))
	roster := make([]Character, 0, len(rf.Characters))
	for _, entry := range rf.Characters {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, fmt.Errorf("roster entry %q missing id", entry.Name)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate character id %q", id)
		}
		seen[id] = true

		aff, err := ParseAffinity(strings.ToUpper(entry.Affinity))
		if err != nil {
			return nil, fmt.Errorf("character %q: %w", id, err)
		}
		tag, err := ParseEffectTag(strings.ToUpper(entry.StartingAbility))
		if err != nil {
			return nil, fmt.Errorf("character %q: %w", id, err)
		}
		def := AbilityCatalog[tag]
		if def.Level != 1 {
			return nil, fmt.Errorf("character %q: starting ability %s must be level 1", id, tag)
		}
		if !affinityAllows(aff, def.Affinity) {
			return nil, fmt.Errorf("character %q: %s affinity cannot hold %s", id, aff, tag)
		}

		name := entry.Name
		if name == "" {
			name = id
		}
		roster = append(roster, Character{ID: id, Name: name, Affinity: aff, StartingAbility: tag})
	}
	return roster, nil
}

// ParseRosterFile reads a roster file from disk.
func ParseRosterFile(path string) ([]Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRoster(data)
}
