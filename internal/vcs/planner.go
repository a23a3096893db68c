package vcs

import "github.com/okarlsson/sledge/internal/models"

// The deployment planner is the pure half of DeploymentList: given the
// current and target commits plus their common ancestor (as reported by the
// VCS), it decides which way the checkout would move. The adapters own the
// VCS queries; no command runs from here.

// ClassifyDirection decides the plan direction. mergeBase is the common
// ancestor of current and target ("" when they share no history).
//
// Divergent pairs (target neither ancestor nor descendant, e.g. target ahead
// on another branch after a merge) are classified forward: the plan then
// describes the commits introduced between current and target in the VCS's
// merge-aware order. That ordering is best-effort; only the linear ancestor/
// descendant cases carry a strict ordering guarantee.
func ClassifyDirection(current, target, mergeBase string) models.Direction {
	switch {
	case current == target:
		return models.DirectionNone
	case mergeBase == current:
		return models.DirectionForward
	case mergeBase == target:
		return models.DirectionBackward
	default:
		return models.DirectionForward
	}
}

// NewPlan assembles the plan handed back to the caller. Entries are expected
// in apply order for forward plans and undo order for backward plans; the
// adapters request that ordering from the VCS directly.
func NewPlan(revset string, direction models.Direction, entries []models.CommitRecord) *models.DeploymentPlan {
	if direction == models.DirectionNone {
		return models.NoOpPlan()
	}
	return &models.DeploymentPlan{
		Revset:    revset,
		Direction: direction,
		Entries:   entries,
	}
}
