package loadgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rankPtr(v int) *int {
	return &v
}

func TestCountTopPerScope(t *testing.T) {
	rows := []listedRanking{
		{RestaurantID: "r1", DishType: "laksa", Rank: rankPtr(1)},
		{RestaurantID: "r1", DishType: "laksa", Rank: rankPtr(2)},
		{RestaurantID: "r1", DishType: "satay", Rank: rankPtr(1)},
		{RestaurantID: "r2", DishType: "laksa", Rank: rankPtr(1)},
		{RestaurantID: "r2", DishType: "laksa", Rank: rankPtr(1)}, // corrupted scope
		{RestaurantID: "r1", DishType: "bak-kut-teh", Rank: nil}, // taste status only
	}

	counts := countTopPerScope(rows)

	assert.Equal(t, 1, counts["r1|laksa"])
	assert.Equal(t, 1, counts["r1|satay"])
	assert.Equal(t, 2, counts["r2|laksa"])
	assert.NotContains(t, counts, "r1|bak-kut-teh")
}

func TestVerdictOK(t *testing.T) {
	ok := &Verdict{ScopesChecked: 3}
	assert.True(t, ok.OK())

	bad := &Verdict{
		ScopesChecked: 3,
		Violations: []Violation{
			{UserID: "u1", RestaurantID: "r2", DishType: "laksa", TopCount: 2},
		},
	}
	assert.False(t, bad.OK())
}
