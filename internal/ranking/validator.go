package ranking

import (
	"fmt"
	"strings"
)

// Validate checks a submission's shape. Checks run in a fixed order and the
// first violation wins: mutual exclusivity, rank range, taste status value,
// notes, photo references.
func Validate(sub Submission) error {
	hasRank := sub.Rank != nil
	hasStatus := sub.TasteStatus != nil

	if hasRank == hasStatus {
		reason := "exactly one of rank or taste_status must be set"
		if hasRank {
			reason = "rank and taste_status are mutually exclusive"
		}
		return newValidationError(MutualExclusivityViolation, "rank/taste_status", reason)
	}
	if hasRank && (*sub.Rank < MinRank || *sub.Rank > MaxRank) {
		return newValidationError(RankOutOfRange, "rank",
			fmt.Sprintf("rank must be between %d and %d", MinRank, MaxRank))
	}
	if hasStatus && !ValidTasteStatus(*sub.TasteStatus) {
		return newValidationError(InvalidTasteStatus, "taste_status",
			fmt.Sprintf("unknown taste status %q", *sub.TasteStatus))
	}
	if strings.TrimSpace(sub.Notes) == "" {
		return newValidationError(MissingEvidence, "notes", "notes must not be empty")
	}
	if len(sub.PhotoURLs) == 0 {
		return newValidationError(MissingEvidence, "photo_urls", "at least one photo reference is required")
	}
	for _, ref := range sub.PhotoURLs {
		if strings.TrimSpace(ref) == "" {
			return newValidationError(MissingEvidence, "photo_urls", "photo references must not be blank")
		}
	}
	return nil
}
