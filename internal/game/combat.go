package game

import "fmt"

// CombatResult is the outcome of one exchange. It is computed from snapshots and
// applied by the engine.
type CombatResult struct {
	Vortex       bool
	AttackValue  int // effective attack value after modifiers
	OtherValue   int // effective defense value, or the Vortex card's value
	SameColor    bool
	Raw          int // signed combat damage before targeting
	HasTarget    bool
	Target       PlayerID
	Recoil       bool // damage bounced back onto the attacker
	Unshielded   int  // damage before shield absorption
	Absorbed     int
	Damage       int // damage actually taken
	ShieldBefore int
	ShieldAfter  int // 0 means the target ends with no shield
}

// strikeBonus is the attacker's +level buff for an ATK card of matching color.
func strikeBonus(p *Player, c Card) int {
	if c.Type != CardATK {
		return 0
	}
	if c.Color == ColorWhite && p.HasActive(EffectLightStrike) {
		return p.Level
	}
	if c.Color == ColorBlack && p.HasActive(EffectDarkStrike) {
		return p.Level
	}
	return 0
}

// guardBonus is the defender's +level buff for a DEF card of matching color.
func guardBonus(p *Player, c Card) int {
	if c.Type != CardDEF {
		return 0
	}
	if c.Color == ColorWhite && p.HasActive(EffectLightGuard) {
		return p.Level
	}
	if c.Color == ColorBlack && p.HasActive(EffectDarkGuard) {
		return p.Level
	}
	return 0
}

// wardHalves reports whether the defender halves incoming attacks of this color.
func wardHalves(defender *Player, c Card) bool {
	if c.Color == ColorWhite {
		return defender.HasActive(EffectLightWard)
	}
	return defender.HasActive(EffectDarkWard)
}

// EffectiveAttack returns the attack card's value as it lands on defender.
func EffectiveAttack(c Card, attacker, defender *Player) int {
	v := c.Value + strikeBonus(attacker, c)
	if wardHalves(defender, c) {
		v /= 2
	}
	return v
}

// EffectiveDefense returns the defense card's value for its owner.
func EffectiveDefense(c Card, defender *Player) int {
	return c.Value + guardBonus(defender, c)
}

// ResolveDirect computes a direct attack, optionally answered by a defense card.
func ResolveDirect(attack Card, defense *Card, attacker, defender *Player) CombatResult {
	r := CombatResult{AttackValue: EffectiveAttack(attack, attacker, defender)}
	switch {
	case defense == nil:
		r.Raw = r.AttackValue
	default:
		r.OtherValue = EffectiveDefense(*defense, defender)
		r.SameColor = defense.Color == attack.Color
		if r.SameColor {
			r.Raw = r.AttackValue - r.OtherValue/2
		} else {
			r.Raw = r.AttackValue - r.OtherValue
		}
	}
	settle(&r, attacker, defender)
	return r
}

// ResolveVortex computes an attack routed through a Vortex card: matching
// colors amplify, differing colors penalize.
func ResolveVortex(attack Card, vortex Card, attacker, defender *Player) CombatResult {
	r := CombatResult{
		Vortex:      true,
		AttackValue: EffectiveAttack(attack, attacker, defender),
		OtherValue:  vortex.Value,
		SameColor:   vortex.Color == attack.Color,
	}
	if r.SameColor {
		r.Raw = r.AttackValue + r.OtherValue
	} else {
		r.Raw = r.AttackValue - r.OtherValue
	}
	settle(&r, attacker, defender)
	return r
}

// settle interprets the sign of Raw and applies the target's shield.
func settle(r *CombatResult, attacker, defender *Player) {
	var target *Player
	switch {
	case r.Raw > 0:
		target = defender
		r.Unshielded = r.Raw
	case r.Raw < 0:
		target = attacker
		r.Recoil = true
		r.Unshielded = -r.Raw
	default:
		return
	}
	r.HasTarget = true
	r.Target = target.ID
	shield := 0
	if target.Shield != nil {
		shield = target.Shield.Value
	}
	r.ShieldBefore = shield
	r.Absorbed, r.ShieldAfter = AbsorbShield(shield, r.Unshielded)
	r.Damage = r.Unshielded - r.Absorbed
}

// AbsorbShield returns how much of damage the shield soaks and what is left of it.
func AbsorbShield(shield, damage int) (absorbed, remaining int) {
	if shield <= 0 || damage <= 0 {
		return 0, max(shield, 0)
	}
	absorbed = min(shield, damage)
	return absorbed, shield - absorbed
}

// Describe renders the calculation for the event log.
func (r CombatResult) Describe(attack Card, other *Card) string {
	if other == nil {
		return fmt.Sprintf("%s (%d) undefended = %d", attack, r.AttackValue, r.Raw)
	}
	switch {
	case r.Vortex && r.SameColor:
		return fmt.Sprintf("%s (%d) + Vortex %s (%d) = %d", attack, r.AttackValue, *other, r.OtherValue, r.Raw)
	case r.Vortex:
		return fmt.Sprintf("%s (%d) - Vortex %s (%d) = %d", attack, r.AttackValue, *other, r.OtherValue, r.Raw)
	case r.SameColor:
		return fmt.Sprintf("%s (%d) vs %s (%d/2) = %d", attack, r.AttackValue, *other, r.OtherValue, r.Raw)
	default:
		return fmt.Sprintf("%s (%d) vs %s (%d) = %d", attack, r.AttackValue, *other, r.OtherValue, r.Raw)
	}
}
