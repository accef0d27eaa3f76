package game

// AI decision procedures. Each is stateless and branches on the round:
// round 1 plays naively, round 3 plays best. Ties are broken by value and then
// card ID so that the AI is reproducible for a given random source.

const recoilPenalty = 1000

// AiLevelUpCards picks the cards the AI discards to level up, or nil.
func AiLevelUpCards(hand []Card, round int) []Card {
	switch {
	case round <= 1:
		return nil
	case round == 2:
		return levelUpSearch(hand)
	}

	// Keep the best attack card for combat if at all possible.
	best, ok := highestOfType(hand, CardATK)
	if ok {
		rest := make([]Card, 0, len(hand)-1)
		for _, c := range hand {
			if c.ID != best.ID {
				rest = append(rest, c)
			}
		}
		if picked := levelUpSearch(rest); picked != nil {
			return picked
		}
	}
	return levelUpSearch(hand)
}

// levelUpSearch enumerates every subset of hand and returns the one with the
// smallest sum reaching LevelUpThreshold. Equal sums prefer fewer cards, then
// the earliest subset in enumeration order.
func levelUpSearch(hand []Card) []Card {
	n := len(hand)
	bestMask, bestSum, bestCount := 0, 0, 0
	for mask := 1; mask < 1<<n; mask++ {
		sum, count := 0, 0
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				sum += hand[i].Value
				count++
			}
		}
		if sum < LevelUpThreshold {
			continue
		}
		// A hand of B2 W3 B9 B1 W6 gives up {9,1} rather than {3,1,6}.
		if bestMask == 0 || sum < bestSum || (sum == bestSum && count < bestCount) {
			bestMask, bestSum, bestCount = mask, sum, count
		}
	}
	if bestMask == 0 {
		return nil
	}
	picked := make([]Card, 0, bestCount)
	for i := 0; i < n; i++ {
		if bestMask&(1<<i) != 0 {
			picked = append(picked, hand[i])
		}
	}
	return picked
}

// AiAttackCard chooses the next attack card. In round 3 the AI reserves its
// top attacksRemaining cards and leads with the weakest of them.
func AiAttackCard(hand []Card, round, attacksRemaining int) (Card, bool) {
	if attacksRemaining <= 0 {
		return Card{}, false
	}
	if round < 3 {
		return highestOfType(hand, CardATK)
	}

	var top []Card
	taken := make(map[int]bool)
	for len(top) < attacksRemaining {
		var next Card
		found := false
		for _, c := range hand {
			if c.Type != CardATK || taken[c.ID] {
				continue
			}
			if !found || c.Value > next.Value || (c.Value == next.Value && c.ID < next.ID) {
				next, found = c, true
			}
		}
		if !found {
			break
		}
		taken[next.ID] = true
		top = append(top, next)
	}
	if len(top) == 0 {
		return Card{}, false
	}
	weakest := top[0]
	for _, c := range top[1:] {
		if c.Value < weakest.Value || (c.Value == weakest.Value && c.ID < weakest.ID) {
			weakest = c
		}
	}
	return weakest, true
}

// AiDefenseCard chooses a defense card against attack, or reports false to take
// the hit undefended.
func AiDefenseCard(hand []Card, attack Card, attacker, ai *Player, round int) (Card, bool) {
	defs := make([]Card, 0, len(hand))
	for _, c := range hand {
		if c.Type == CardDEF {
			defs = append(defs, c)
		}
	}
	if len(defs) == 0 {
		return Card{}, false
	}

	switch round {
	case 1:
		return highestOfType(defs, CardDEF)
	case 2:
		atk := EffectiveAttack(attack, attacker, ai)
		var best Card
		bestScore := 0
		for i, d := range defs {
			eff := EffectiveDefense(d, ai)
			if d.Color == attack.Color {
				eff /= 2
			}
			score := eff - atk
			if score > 0 {
				score -= recoilPenalty
			}
			if i == 0 || score > bestScore || (score == bestScore && cheaper(d, best)) {
				best, bestScore = d, score
			}
		}
		return best, true
	default:
		var best Card
		bestLoss := 0
		for i, d := range defs {
			r := ResolveDirect(attack, &d, attacker, ai)
			loss := 0
			if r.HasTarget {
				loss = r.Damage
				if r.Recoil {
					loss = -r.Damage
				}
			}
			if i == 0 || loss < bestLoss || (loss == bestLoss && cheaper(d, best)) {
				best, bestLoss = d, loss
			}
		}
		return best, true
	}
}

// AiAbilityDrawDiscard picks the junk card the AI pays to draw an ability.
func AiAbilityDrawDiscard(hand []Card) (Card, bool) {
	var pick Card
	found := false
	for _, c := range hand {
		if c.Value > 2 {
			continue
		}
		if !found || cheaper(c, pick) {
			pick, found = c, true
		}
	}
	return pick, found
}

// AiPlayableAbility returns the index of the first held ability the AI may put
// into play.
func AiPlayableAbility(p *Player) (int, bool) {
	for i, a := range p.AbilityHand {
		if canPlayFromHand(p, a) == nil {
			return i, true
		}
	}
	return -1, false
}

func highestOfType(hand []Card, ct CardType) (Card, bool) {
	var best Card
	found := false
	for _, c := range hand {
		if c.Type != ct {
			continue
		}
		if !found || c.Value > best.Value || (c.Value == best.Value && c.ID < best.ID) {
			best, found = c, true
		}
	}
	return best, found
}

// cheaper orders cards by value, then ID.
func cheaper(a, b Card) bool {
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	return a.ID < b.ID
}
