package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventCharacterAssigned
	EventRoundStart
	EventNewTurn
	EventDeal
	EventDraw
	EventReshuffle
	EventVortexFill
	EventAttackDeclare
	EventVortexAttackDeclare
	EventDefend
	EventVortexDefend
	EventNoDefense
	EventDamageCalc
	EventDamage
	EventRecoil
	EventBlocked
	EventShieldAbsorb
	EventShieldBroken
	EventShieldCast
	EventHeal
	EventDiscard
	EventLevelUp
	EventAbilityDraw
	EventAbilityPlay
	EventAbilityActivate
	EventHandReveal
	EventForcedDiscard
	EventCardMutate
	EventRoundWin
	EventWin
	EventRecovered // an in-flight transition lost a referenced entity and was aborted
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventCharacterAssigned:
		return "CharacterAssigned"
	case EventRoundStart:
		return "RoundStart"
	case EventNewTurn:
		return "NewTurn"
	case EventDeal:
		return "Deal"
	case EventDraw:
		return "Draw"
	case EventReshuffle:
		return "Reshuffle"
	case EventVortexFill:
		return "VortexFill"
	case EventAttackDeclare:
		return "AttackDeclare"
	case EventVortexAttackDeclare:
		return "VortexAttackDeclare"
	case EventDefend:
		return "Defend"
	case EventVortexDefend:
		return "VortexDefend"
	case EventNoDefense:
		return "NoDefense"
	case EventDamageCalc:
		return "DamageCalc"
	case EventDamage:
		return "Damage"
	case EventRecoil:
		return "Recoil"
	case EventBlocked:
		return "Blocked"
	case EventShieldAbsorb:
		return "ShieldAbsorb"
	case EventShieldBroken:
		return "ShieldBroken"
	case EventShieldCast:
		return "ShieldCast"
	case EventHeal:
		return "Heal"
	case EventDiscard:
		return "Discard"
	case EventLevelUp:
		return "LevelUp"
	case EventAbilityDraw:
		return "AbilityDraw"
	case EventAbilityPlay:
		return "AbilityPlay"
	case EventAbilityActivate:
		return "AbilityActivate"
	case EventHandReveal:
		return "HandReveal"
	case EventForcedDiscard:
		return "ForcedDiscard"
	case EventCardMutate:
		return "CardMutate"
	case EventRoundWin:
		return "RoundWin"
	case EventWin:
		return "Win"
	case EventRecovered:
		return "Recovered"
	default:
		return "Unknown"
	}
}

// NoPlayer marks events not attributed to either side.
const NoPlayer = -1

// GameEvent represents a single observable event in a match.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Round   int       // 1..3
	Turn    int       // 1-based turn counter within the round
	Phase   string    // current phase name (e.g. "Main Phase")
	Player  int       // acting player (0 = human, 1 = AI, NoPlayer)
	Type    EventType // event type
	Card    string    // card or ability label (if applicable)
	Amount  int       // numeric payload: damage, heal, shield, level...
	Details string    // human-readable detail string
}
