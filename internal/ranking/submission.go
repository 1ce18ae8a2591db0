// Package ranking holds the pure logic of the one-best ranking engine:
// submission shape validation, demotion planning and the derived stats
// types. Nothing in this package performs I/O.
package ranking

// TasteStatus is the qualitative verdict a user records instead of a
// numeric rank.
type TasteStatus string

const (
	TasteAcceptable   TasteStatus = "ACCEPTABLE"
	TasteSecondChance TasteStatus = "SECOND_CHANCE"
	TasteDissatisfied TasteStatus = "DISSATISFIED"
)

// ValidTasteStatus reports whether s is one of the recognized verdicts.
func ValidTasteStatus(s TasteStatus) bool {
	switch s {
	case TasteAcceptable, TasteSecondChance, TasteDissatisfied:
		return true
	}
	return false
}

// Rank bounds. TopRank is the single competitive slot per scope; the ranking
// bumped out of it lands on DemotedRank.
const (
	MinRank     = 1
	MaxRank     = 5
	TopRank     = 1
	DemotedRank = 2
)

// Scope is the tuple that defines competitive uniqueness for the top slot:
// one user, one restaurant, one dish type.
type Scope struct {
	UserID       string
	RestaurantID string
	DishType     string
}

// Submission is one authenticated user's proposed ranking. RankingID is
// empty on create and carries the target id on update.
type Submission struct {
	RankingID    string
	UserID       string
	RestaurantID string
	DishID       string
	DishType     string
	Rank         *int
	TasteStatus  *TasteStatus
	Notes        string
	PhotoURLs    []string
}

// Scope returns the competitive scope the submission targets.
func (s Submission) Scope() Scope {
	return Scope{UserID: s.UserID, RestaurantID: s.RestaurantID, DishType: s.DishType}
}

// IsUpdate reports whether the submission addresses an existing ranking.
func (s Submission) IsUpdate() bool {
	return s.RankingID != ""
}

// ClaimsTop reports whether the submission asserts the #1 slot.
func (s Submission) ClaimsTop() bool {
	return s.Rank != nil && *s.Rank == TopRank
}
