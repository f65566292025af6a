package cascade

// Outcome describes the tier whose result a cascade run selected, plus the
// cost accounting spec §4.3 demands.
type Outcome struct {
	// Tier is the name of the selected tier.
	Tier string
	// TierIndex is its 0-based position in the input list.
	TierIndex int
	// GateSatisfied reports whether the selection met its quality gate, as
	// opposed to being the fallback "first Ok ignoring gates" pick.
	GateSatisfied bool
	// HedgesFired is the index (0-based) of the selected tier: how many
	// earlier tiers were already fired before this one won.
	HedgesFired int
	// TotalCost sums Cost for every tier whose task was observed to start.
	TotalCost float64
}
