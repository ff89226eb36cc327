package skirmish

// Damage computes attack damage: floor(attack² / (2 × defence)).
func Damage(attack, defence int) int {
	if defence <= 0 {
		defence = 1
	}
	return attack * attack / (2 * defence)
}

// counterDamage computes the scaled counterattack from a surviving melee
// defender: the raw damage first, then scaled by the defender's remaining
// hp ratio and floored. The truncation order must not be rearranged.
func counterDamage(defAttack, atkDefence, remainingHP, maxHP int) int {
	raw := Damage(defAttack, atkDefence)
	return raw * remainingHP / maxHP
}

// UnitAttackOutcome describes a resolved unit-vs-unit attack.
type UnitAttackOutcome struct {
	Damage         int  `json:"damage"`
	DefenderKilled bool `json:"defender_killed"`
	CounterDamage  int  `json:"counter_damage"`
	AttackerKilled bool `json:"attacker_killed"`
}

// resolveUnitAttack applies damage from attacker to defender and, when the
// attacker is melee, the defender survives, and the two are adjacent, the
// scaled counterattack. Dead units are removed from the state.
func resolveUnitAttack(gs *GameState, attacker, defender *Unit, atkDef, defDef *UnitTypeDef) UnitAttackOutcome {
	out := UnitAttackOutcome{Damage: Damage(atkDef.Attack, defDef.Defence)}

	defender.HP -= out.Damage
	if defender.HP <= 0 {
		out.DefenderKilled = true
		gs.removeUnit(defender.ID)
		return out
	}

	// Ranged attackers never take a counter, nor does anything resolved
	// at a distance other than 1.
	if atkDef.Ranged || Distance(attacker.Pos, defender.Pos) != 1 {
		return out
	}

	out.CounterDamage = counterDamage(defDef.Attack, atkDef.Defence, defender.HP, defDef.MaxHP)
	attacker.HP -= out.CounterDamage
	if attacker.HP <= 0 {
		out.AttackerKilled = true
		gs.removeUnit(attacker.ID)
	}
	return out
}

// CityAttackOutcome describes a resolved unit-vs-city attack.
type CityAttackOutcome struct {
	Damage   int  `json:"damage"`
	Captured bool `json:"captured"`
	// Set when the capture eliminated the losing participant / ended the game.
	EliminatedID int64 `json:"eliminated_id,omitempty"`
	Finished     bool  `json:"finished"`
	WinnerID     int64 `json:"winner_id,omitempty"`
}

// resolveCityAttack applies damage to a city. A city that would drop to 0 or
// below is captured instead, with hp pinned to 1; otherwise hp never falls
// below 1. Cities do not counterattack.
func resolveCityAttack(gs *GameState, attacker *Unit, city *City, atkDef *UnitTypeDef) CityAttackOutcome {
	out := CityAttackOutcome{Damage: Damage(atkDef.Attack, cityDefence)}

	if out.Damage >= city.HP {
		cap := captureCity(gs, city, attacker.OwnerID)
		out.Captured = true
		out.EliminatedID = cap.EliminatedID
		out.Finished = cap.Finished
		out.WinnerID = cap.WinnerID
		return out
	}

	city.HP -= out.Damage
	if city.HP < 1 {
		city.HP = 1
	}
	return out
}

// cityDefence is the fixed defence value cities resist attacks with.
const cityDefence = 10
