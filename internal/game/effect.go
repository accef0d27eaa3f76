package game

import "fmt"

// EffectTag identifies an ability's effect. It is a closed set; every tag has
// exactly one entry in effectTable.
type EffectTag int

const (
	EffectMagicWall EffectTag = iota
	EffectLightAffinity
	EffectDarkAffinity
	EffectMasterAffinity
	EffectMagicVision
	EffectMindControl
	EffectElementalControl
	EffectMagicControl
	EffectLightStrike
	EffectDarkStrike
	EffectLightGuard
	EffectDarkGuard
	EffectMagicResistance
	EffectArcaneMemory
	EffectVortexGuard
	EffectMasterVortex
	EffectLightWard
	EffectDarkWard

	effectCount
)

// EffectKind separates abilities that are consulted from those that are triggered.
type EffectKind int

const (
	EffectPassive EffectKind = iota
	EffectActive
)

func (k EffectKind) String() string {
	if k == EffectActive {
		return "active"
	}
	return "passive"
}

// CostKind describes what an active effect charges.
type CostKind int

const (
	CostNone CostKind = iota
	CostDiscardAny
	CostDiscardWhite
	CostDiscardBlack
)

// EffectHandler is the dispatch record for one tag.
type EffectHandler struct {
	Tag  EffectTag
	Name string // wire identifier, e.g. MAGIC_WALL
	Kind EffectKind
	Cost CostKind

	// NeedsTarget is set for effects that pick one of the activator's own hand
	// cards after the cost is paid.
	NeedsTarget bool

	// CanActivate checks effect-specific preconditions before the cost is paid.
	CanActivate func(p *Player) error

	// Apply resolves the effect once paid. paid is the discarded card.
	Apply func(e *Engine, gs *GameState, owner PlayerID, ab AbilityCard, paid Card)

	// ApplyTarget resolves the second half of a targeted effect.
	ApplyTarget func(e *Engine, gs *GameState, owner PlayerID, target Card) Card
}

var effectTable [effectCount]EffectHandler

func init() {
	effectTable = [effectCount]EffectHandler{
		EffectMagicWall: {
			Name: "MAGIC_WALL", Kind: EffectActive, Cost: CostDiscardAny,
			CanActivate: func(p *Player) error {
				if p.Shield != nil {
					return ruleErr("a shield is already up")
				}
				return nil
			},
			Apply: applyMagicWall,
		},
		EffectLightAffinity: {
			Name: "LIGHT_AFFINITY", Kind: EffectActive, Cost: CostDiscardWhite,
			Apply: applyAffinityHeal,
		},
		EffectDarkAffinity: {
			Name: "DARK_AFFINITY", Kind: EffectActive, Cost: CostDiscardBlack,
			Apply: applyAffinityHeal,
		},
		EffectMasterAffinity: {
			Name: "MASTER_AFFINITY", Kind: EffectActive, Cost: CostDiscardAny,
			Apply: applyMasterHeal,
		},
		EffectMagicVision: {
			Name: "MAGIC_VISION", Kind: EffectActive, Cost: CostDiscardAny,
			Apply: applyMagicVision,
		},
		EffectMindControl: {
			Name: "MIND_CONTROL", Kind: EffectActive, Cost: CostDiscardAny,
			Apply: applyMindControl,
		},
		EffectElementalControl: {
			Name: "ELEMENTAL_CONTROL", Kind: EffectActive, Cost: CostDiscardAny, NeedsTarget: true,
			ApplyTarget: func(_ *Engine, _ *GameState, _ PlayerID, c Card) Card {
				c.Color = 1 - c.Color
				return c
			},
		},
		EffectMagicControl: {
			Name: "MAGIC_CONTROL", Kind: EffectActive, Cost: CostDiscardAny, NeedsTarget: true,
			ApplyTarget: func(_ *Engine, _ *GameState, _ PlayerID, c Card) Card {
				c.Type = 1 - c.Type
				return c
			},
		},
		EffectLightStrike:     {Name: "LIGHT_STRIKE"},
		EffectDarkStrike:      {Name: "DARK_STRIKE"},
		EffectLightGuard:      {Name: "LIGHT_GUARD"},
		EffectDarkGuard:       {Name: "DARK_GUARD"},
		EffectMagicResistance: {Name: "MAGIC_RESISTANCE"},
		EffectArcaneMemory:    {Name: "ARCANE_MEMORY"},
		EffectVortexGuard:     {Name: "VORTEX_GUARD"},
		EffectMasterVortex:    {Name: "MASTER_VORTEX"},
		EffectLightWard:       {Name: "LIGHT_WARD"},
		EffectDarkWard:        {Name: "DARK_WARD"},
	}
	for i := range effectTable {
		effectTable[i].Tag = EffectTag(i)
		if effectTable[i].Name == "" {
			panic(fmt.Sprintf("effect %d has no handler", i))
		}
	}
}

// Handler returns the dispatch record for t.
func (t EffectTag) Handler() *EffectHandler {
	return &effectTable[t]
}

func (t EffectTag) String() string {
	if t < 0 || t >= effectCount {
		return "UNKNOWN"
	}
	return effectTable[t].Name
}

// Active reports whether the effect is triggered (paid for) rather than consulted.
func (t EffectTag) Active() bool {
	return effectTable[t].Kind == EffectActive
}

// ParseEffectTag maps a wire identifier back to a tag.
func ParseEffectTag(s string) (EffectTag, error) {
	for i := range effectTable {
		if effectTable[i].Name == s {
			return EffectTag(i), nil
		}
	}
	return 0, fmt.Errorf("unknown effect tag %q", s)
}

// AllEffects lists every tag in declaration order.
func AllEffects() []EffectTag {
	tags := make([]EffectTag, effectCount)
	for i := range tags {
		tags[i] = EffectTag(i)
	}
	return tags
}

// costAccepts checks the discarded card against the cost kind.
func costAccepts(cost CostKind, c Card) error {
	switch cost {
	case CostDiscardWhite:
		if c.Color != ColorWhite {
			return ruleErr("this ability requires discarding a WHITE card")
		}
	case CostDiscardBlack:
		if c.Color != ColorBlack {
			return ruleErr("this ability requires discarding a BLACK card")
		}
	}
	return nil
}
