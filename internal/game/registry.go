package game

import "fmt"

// abilityDef is a static catalog entry; ability IDs are assigned per match.
type abilityDef struct {
	Name     string
	Level    int
	Affinity Affinity
	Effect   EffectTag
}

// AbilityCatalog maps each effect to its catalog definition.
var AbilityCatalog = map[EffectTag]abilityDef{
	EffectMagicWall:        {"Magic Wall", 1, AffinityNeutral, EffectMagicWall},
	EffectLightAffinity:    {"Light Affinity", 1, AffinityWhite, EffectLightAffinity},
	EffectDarkAffinity:     {"Dark Affinity", 1, AffinityBlack, EffectDarkAffinity},
	EffectMagicVision:      {"Magic Vision", 1, AffinityNeutral, EffectMagicVision},
	EffectLightStrike:      {"Light Strike", 1, AffinityWhite, EffectLightStrike},
	EffectDarkStrike:       {"Dark Strike", 1, AffinityBlack, EffectDarkStrike},
	EffectLightGuard:       {"Light Guard", 1, AffinityWhite, EffectLightGuard},
	EffectDarkGuard:        {"Dark Guard", 1, AffinityBlack, EffectDarkGuard},
	EffectMagicResistance:  {"Magic Resistance", 2, AffinityNeutral, EffectMagicResistance},
	EffectArcaneMemory:     {"Arcane Memory", 2, AffinityNeutral, EffectArcaneMemory},
	EffectElementalControl: {"Elemental Control", 2, AffinityNeutral, EffectElementalControl},
	EffectVortexGuard:      {"Vortex Guard", 2, AffinityNeutral, EffectVortexGuard},
	EffectLightWard:        {"Light Ward", 2, AffinityWhite, EffectLightWard},
	EffectDarkWard:         {"Dark Ward", 2, AffinityBlack, EffectDarkWard},
	EffectMasterAffinity:   {"Master Affinity", 3, AffinityNeutral, EffectMasterAffinity},
	EffectMindControl:      {"Mind Control", 3, AffinityNeutral, EffectMindControl},
	EffectMagicControl:     {"Magic Control", 3, AffinityNeutral, EffectMagicControl},
	EffectMasterVortex:     {"Master Vortex", 3, AffinityNeutral, EffectMasterVortex},
}

// DefaultRoster is the fixed 12-character roster, four per affinity.
var DefaultRoster = []Character{
	{ID: "sable", Name: "Sable the Wanderer", Affinity: AffinityNeutral, StartingAbility: EffectMagicWall},
	{ID: "orin", Name: "Orin Farsight", Affinity: AffinityNeutral, StartingAbility: EffectMagicVision},
	{ID: "vesk", Name: "Vesk of the Grey", Affinity: AffinityNeutral, StartingAbility: EffectMagicWall},
	{ID: "thessa", Name: "Thessa Twinblood", Affinity: AffinityNeutral, StartingAbility: EffectMagicVision},
	{ID: "aurelia", Name: "Aurelia the Radiant", Affinity: AffinityWhite, StartingAbility: EffectLightAffinity},
	{ID: "caelum", Name: "Caelum Dawnblade", Affinity: AffinityWhite, StartingAbility: EffectLightStrike},
	{ID: "ilyra", Name: "Ilyra Brightshield", Affinity: AffinityWhite, StartingAbility: EffectLightGuard},
	{ID: "solenne", Name: "Solenne", Affinity: AffinityWhite, StartingAbility: EffectMagicWall},
	{ID: "morvane", Name: "Morvane the Hollow", Affinity: AffinityBlack, StartingAbility: EffectDarkAffinity},
	{ID: "kesh", Name: "Kesh Nightfang", Affinity: AffinityBlack, StartingAbility: EffectDarkStrike},
	{ID: "durza", Name: "Durza Ironveil", Affinity: AffinityBlack, StartingAbility: EffectDarkGuard},
	{ID: "nyx", Name: "Nyx", Affinity: AffinityBlack, StartingAbility: EffectMagicVision},
}

// LookupCharacter finds a character by ID in the given roster.
func LookupCharacter(roster []Character, id string) (Character, error) {
	for _, c := range roster {
		if c.ID == id {
			return c, nil
		}
	}
	return Character{}, fmt.Errorf("character not found in roster: %q", id)
}

// newAbility builds a match-scoped ability instance for the given effect.
func newAbility(id int, tag EffectTag) AbilityCard {
	def, ok := AbilityCatalog[tag]
	if !ok {
		panic(fmt.Sprintf("ability not found in catalog: %s", tag))
	}
	return AbilityCard{ID: id, Name: def.Name, Level: def.Level, Affinity: def.Affinity, Effect: tag}
}
