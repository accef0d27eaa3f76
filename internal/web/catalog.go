package web

import (
	"sort"

	"github.com/peterkuimelis/vortex/internal/game"
)

// AbilityInfo is the JSON representation of an ability for the /api/abilities endpoint.
type AbilityInfo struct {
	Effect   string `json:"effect"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Affinity string `json:"affinity"`
	Kind     string `json:"kind"`
	Cost     string `json:"cost,omitempty"`
}

func costString(c game.CostKind) string {
	switch c {
	case game.CostDiscardAny:
		return "discard any card"
	case game.CostDiscardWhite:
		return "discard a WHITE card"
	case game.CostDiscardBlack:
		return "discard a BLACK card"
	default:
		return ""
	}
}

// abilityCatalog lists every ability, lowest level first.
func abilityCatalog() []AbilityInfo {
	var out []AbilityInfo
	for _, tag := range game.AllEffects() {
		def := game.AbilityCatalog[tag]
		h := tag.Handler()
		out = append(out, AbilityInfo{
			Effect:   tag.String(),
			Name:     def.Name,
			Level:    def.Level,
			Affinity: def.Affinity.String(),
			Kind:     h.Kind.String(),
			Cost:     costString(h.Cost),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}
