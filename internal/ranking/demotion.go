package ranking

// Live is the slice of a stored ranking the resolver needs: identity, value,
// and the row's own last-known evidence for its synthesized history entry.
type Live struct {
	RankingID   string
	DishID      string
	Rank        *int
	TasteStatus *TasteStatus
	Notes       string
	PhotoURLs   []string
}

// Demotion is one planned transition out of the top slot.
type Demotion struct {
	RankingID    string
	DishID       string
	PreviousRank int
	NewRank      int
	Notes        string
	PhotoURLs    []string
}

// Plan lists the demotions a new #1 claim forces within its scope.
// Corrupted is set when more than one live #1 was found; the invariant
// allows at most one, so extras signal prior damage. All of them are still
// demoted and the submission proceeds.
type Plan struct {
	Demotions []Demotion
	Corrupted bool
}

// PlanDemotions decides which live rows must vacate the top slot when
// incomingID claims rank 1. Only the direct conflict is resolved: demoted
// rows land on rank 2 and the rest of the ladder is never renumbered.
func PlanDemotions(incomingID string, incomingRank int, current []Live) Plan {
	if incomingRank != TopRank {
		return Plan{}
	}
	var plan Plan
	for _, row := range current {
		if row.RankingID == incomingID {
			continue
		}
		if row.Rank == nil || *row.Rank != TopRank {
			continue
		}
		plan.Demotions = append(plan.Demotions, Demotion{
			RankingID:    row.RankingID,
			DishID:       row.DishID,
			PreviousRank: TopRank,
			NewRank:      DemotedRank,
			Notes:        row.Notes,
			PhotoURLs:    row.PhotoURLs,
		})
	}
	plan.Corrupted = len(plan.Demotions) > 1
	return plan
}
