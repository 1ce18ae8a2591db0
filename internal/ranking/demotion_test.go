package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveAtRank(id, dishID string, rank int) Live {
	return Live{
		RankingID: id,
		DishID:    dishID,
		Rank:      rankPtr(rank),
		Notes:     "previous notes for " + id,
		PhotoURLs: []string{"https://cdn.platehub.dev/p/" + id + ".jpg"},
	}
}

func TestPlanDemotions_NoConflict(t *testing.T) {
	plan := PlanDemotions("incoming", TopRank, nil)
	assert.Empty(t, plan.Demotions)
	assert.False(t, plan.Corrupted)

	// Rows below the top slot or with a taste status keep their place.
	current := []Live{
		liveAtRank("a", "dish-1", 2),
		liveAtRank("b", "dish-2", 5),
		{RankingID: "c", DishID: "dish-3", TasteStatus: statusPtr(TasteAcceptable)},
	}
	plan = PlanDemotions("incoming", TopRank, current)
	assert.Empty(t, plan.Demotions)
	assert.False(t, plan.Corrupted)
}

func TestPlanDemotions_NotClaimingTop(t *testing.T) {
	current := []Live{liveAtRank("holder", "dish-1", TopRank)}
	plan := PlanDemotions("incoming", 3, current)
	assert.Empty(t, plan.Demotions)
}

func TestPlanDemotions_SingleHolder(t *testing.T) {
	holder := liveAtRank("holder", "dish-1", TopRank)
	current := []Live{holder, liveAtRank("other", "dish-2", 4)}

	plan := PlanDemotions("incoming", TopRank, current)

	require.Len(t, plan.Demotions, 1)
	assert.False(t, plan.Corrupted)

	d := plan.Demotions[0]
	assert.Equal(t, "holder", d.RankingID)
	assert.Equal(t, TopRank, d.PreviousRank)
	assert.Equal(t, DemotedRank, d.NewRank)

	// The synthesized history entry must carry the demoted row's own
	// evidence, not the incoming submission's.
	assert.Equal(t, holder.Notes, d.Notes)
	assert.Equal(t, holder.PhotoURLs, d.PhotoURLs)
	assert.Equal(t, holder.DishID, d.DishID)
}

func TestPlanDemotions_IncomingRowExcluded(t *testing.T) {
	// On update, the row being resubmitted may already hold #1; it must not
	// demote itself.
	current := []Live{liveAtRank("incoming", "dish-1", TopRank)}
	plan := PlanDemotions("incoming", TopRank, current)
	assert.Empty(t, plan.Demotions)
	assert.False(t, plan.Corrupted)
}

func TestPlanDemotions_CorruptedState(t *testing.T) {
	// More than one live #1 means prior damage. All of them are demoted and
	// the plan is flagged so the coordinator can log the integrity warning.
	current := []Live{
		liveAtRank("holder-1", "dish-1", TopRank),
		liveAtRank("holder-2", "dish-2", TopRank),
		liveAtRank("bystander", "dish-3", 3),
	}

	plan := PlanDemotions("incoming", TopRank, current)

	require.Len(t, plan.Demotions, 2)
	assert.True(t, plan.Corrupted)
	for _, d := range plan.Demotions {
		assert.Equal(t, TopRank, d.PreviousRank)
		assert.Equal(t, DemotedRank, d.NewRank)
	}
}
