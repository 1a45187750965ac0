package bot

import (
	"github.com/kasuganosora/botbrain/game/behavior"
)

// shootDistance is how close an armed bot walks up before firing.
const shootDistance = 4.0

// Tree is the decision tree of one bot.
type Tree = behavior.Tree[*Context]

// BuildTree assembles the bot tree:
//
//	selector[
//	  sequence[IsDead, StayDead],
//	  sequence[FindTarget, selector[
//	    sequence[NeedsThreatenTarget, AimOnTarget(actual), ThreatenTarget],
//	    sequence[CanShootTarget, approach(shootDistance), ShootTarget],
//	    sequence[approach(closeCombat), CanMeleeAttack, DoMeleeAttack]]]]
//
// where approach(d) is
//
//	selector[sequence[not(IsTargetCloseBy d), AimOnTarget(steering), MoveToTarget d],
//	         AimOnTarget(actual)]
//
// The threaten branch is left out unless threatens is set.
func BuildTree(closeCombat float64, threatens bool) (*Tree, error) {
	b := behavior.NewBuilder[*Context]()

	approach := func(d float64) behavior.Handle {
		far := b.Inverter(b.Leaf(&IsTargetCloseBy{MinDistance: d}))
		walk := b.Sequence(far, b.Leaf(&AimOnTarget{Mode: AimSteering}), b.Leaf(&MoveToTarget{MinDistance: d}))
		return b.Selector(walk, b.Leaf(&AimOnTarget{Mode: AimActual}))
	}

	death := b.Sequence(b.Leaf(IsDead{}), b.Leaf(&StayDead{}))

	var branches []behavior.Handle
	if threatens {
		branches = append(branches, b.Sequence(
			b.Leaf(NeedsThreatenTarget{}),
			b.Leaf(&AimOnTarget{Mode: AimActual}),
			b.Leaf(&ThreatenTarget{}),
		))
	}
	shoot := b.Leaf(CanShootTarget{})
	branches = append(branches, b.Sequence(shoot, approach(shootDistance), b.Leaf(ShootTarget{})))
	melee := approach(closeCombat)
	branches = append(branches, b.Sequence(melee, b.Leaf(CanMeleeAttack{}), b.Leaf(&DoMeleeAttack{})))

	find := b.Leaf(FindTarget{})
	hunt := b.Sequence(find, b.Selector(branches...))
	return b.Build(b.Selector(death, hunt))
}
