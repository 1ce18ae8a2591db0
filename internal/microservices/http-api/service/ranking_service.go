package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"platehub/internal/events"
	"platehub/internal/microservices/http-api/models"
	"platehub/internal/microservices/http-api/repository"
	"platehub/internal/ranking"
	"platehub/internal/shared"
	"platehub/pkg/metrics"
)

var (
	ErrNotFound          = errors.New("ranking not found")
	ErrForbidden         = errors.New("ranking belongs to another user")
	ErrConflictExhausted = errors.New("submission retries exhausted under contention")
)

// maxSubmitAttempts bounds the transaction replays on retryable conflicts.
const maxSubmitAttempts = 3

// SubmitResult is what a committed submission returns: the final applied
// row, any demotions it induced, and the fresh stats snapshot for the dish.
type SubmitResult struct {
	Ranking   *models.Ranking
	Demotions []ranking.Demotion
	Created   bool
	Stats     *ranking.StatsSnapshot
}

// RankingService is the transaction coordinator: the only write path into
// the ranking store. Submit runs validate, read, demotion planning, write
// and history append inside one transaction, retried on conflict.
type RankingService interface {
	Submit(ctx context.Context, sub ranking.Submission) (*SubmitResult, error)
	GetRanking(ctx context.Context, userID, rankingID string) (*models.Ranking, error)
	ListRankings(ctx context.Context, userID string, page, pageSize int) ([]models.Ranking, int64, error)
}

type rankingService struct {
	store    repository.RankingStore
	stats    StatsService
	cache    repository.StatsCache
	notifier events.Notifier
	logger   *slog.Logger
}

func NewRankingService(
	store repository.RankingStore,
	stats StatsService,
	cache repository.StatsCache,
	notifier events.Notifier,
	logger *slog.Logger,
) RankingService {
	return &rankingService{
		store:    store,
		stats:    stats,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
	}
}

// txOutcome captures what one committed transaction did, for the
// post-commit side effects that must never roll it back.
type txOutcome struct {
	row       *models.Ranking
	plan      ranking.Plan
	created   bool
	prevRank  *int
	prevState *ranking.TasteStatus
}

// Submit applies one ranking submission. Validation runs before any store
// access; the store sequence is one transaction replayed up to
// maxSubmitAttempts times on retryable conflicts; cache invalidation,
// event publishing and metrics happen only after the commit.
func (s *rankingService) Submit(ctx context.Context, sub ranking.Submission) (*SubmitResult, error) {
	start := time.Now()

	if err := ranking.Validate(sub); err != nil {
		metrics.RecordSubmission("validation_rejected")
		return nil, err
	}

	var outcome *txOutcome
	var lastErr error

	for attempt := 0; attempt < maxSubmitAttempts; attempt++ {
		var err error
		outcome, err = s.submitOnce(ctx, sub)
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err

		if ctx.Err() != nil {
			metrics.RecordSubmission("cancelled")
			return nil, fmt.Errorf("submission cancelled: %w", ctx.Err())
		}
		if !repository.IsRetryableConflict(err) {
			s.recordFailure(err)
			return nil, err
		}

		metrics.RecordSubmitRetry()
		s.logger.Info("submission_conflict_retry",
			"user_id", sub.UserID,
			"restaurant_id", sub.RestaurantID,
			"dish_type", sub.DishType,
			"attempt", attempt+1,
		)
		if attempt < maxSubmitAttempts-1 {
			backoff := time.Millisecond * time.Duration(1<<uint(attempt))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				metrics.RecordSubmission("cancelled")
				return nil, fmt.Errorf("submission cancelled: %w", ctx.Err())
			}
		}
	}
	if lastErr != nil {
		metrics.RecordSubmission("conflict_exhausted")
		return nil, fmt.Errorf("%w: %v", ErrConflictExhausted, lastErr)
	}

	s.afterCommit(ctx, sub, outcome)

	stats, err := s.stats.GetDishStats(ctx, outcome.row.DishID)
	if err != nil {
		// The write is committed; a broken stats read must not fail it.
		s.logger.Warn("post_commit_stats_failed",
			"dish_id", outcome.row.DishID,
			"error", err.Error(),
		)
		stats = nil
	}

	if outcome.created {
		metrics.RecordSubmission("created")
	} else {
		metrics.RecordSubmission("updated")
	}
	metrics.RecordDemotions(len(outcome.plan.Demotions))
	metrics.ObserveSubmitDuration(time.Since(start))

	return &SubmitResult{
		Ranking:   outcome.row,
		Demotions: outcome.plan.Demotions,
		Created:   outcome.created,
		Stats:     stats,
	}, nil
}

// submitOnce runs one attempt of the full transactional sequence.
func (s *rankingService) submitOnce(ctx context.Context, sub ranking.Submission) (*txOutcome, error) {
	outcome := &txOutcome{}
	err := s.store.WithTransaction(ctx, func(tx repository.RankingTx) error {
		if sub.IsUpdate() {
			return s.applyUpdate(tx, sub, outcome)
		}
		return s.applyCreate(tx, sub, outcome)
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// applyCreate inserts a new ranking. Conflicting #1 rows are demoted before
// the insert so the one-best partial index never trips on the happy path.
func (s *rankingService) applyCreate(tx repository.RankingTx, sub ranking.Submission, outcome *txOutcome) error {
	var history []models.RankingHistoryEntry

	if sub.ClaimsTop() {
		plan, entries, err := s.demoteConflicts(tx, sub.Scope(), "")
		if err != nil {
			return err
		}
		outcome.plan = plan
		history = append(history, entries...)
	}

	row := &models.Ranking{
		ID:           uuid.New().String(),
		UserID:       sub.UserID,
		RestaurantID: sub.RestaurantID,
		DishID:       sub.DishID,
		DishType:     sub.DishType,
		Rank:         sub.Rank,
		TasteStatus:  statusString(sub.TasteStatus),
		Notes:        sub.Notes,
		PhotoURLs:    sub.PhotoURLs,
	}
	if err := tx.Create(row); err != nil {
		return fmt.Errorf("failed to insert ranking: %w", err)
	}

	history = append(history, models.RankingHistoryEntry{
		RankingID:      row.ID,
		UserID:         row.UserID,
		RestaurantID:   row.RestaurantID,
		DishID:         row.DishID,
		DishType:       row.DishType,
		NewRank:        row.Rank,
		NewTasteStatus: row.TasteStatus,
		Notes:          row.Notes,
		PhotoURLs:      row.PhotoURLs,
	})
	if err := tx.AppendHistory(history); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	outcome.row = row
	outcome.created = true
	return nil
}

// applyUpdate rewrites an existing ranking in place. The stored row's scope
// is authoritative: a submission cannot move a ranking to another
// restaurant or dish type, it can only change the value and evidence.
func (s *rankingService) applyUpdate(tx repository.RankingTx, sub ranking.Submission, outcome *txOutcome) error {
	row, err := tx.GetForUpdate(sub.RankingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch ranking: %w", err)
	}
	if row.UserID != sub.UserID {
		return ErrForbidden
	}

	outcome.prevRank = copyIntPtr(row.Rank)
	outcome.prevState = statusFromString(row.TasteStatus)

	var history []models.RankingHistoryEntry

	wasTop := row.Rank != nil && *row.Rank == ranking.TopRank
	if sub.ClaimsTop() && !wasTop {
		scope := ranking.Scope{
			UserID:       row.UserID,
			RestaurantID: row.RestaurantID,
			DishType:     row.DishType,
		}
		plan, entries, err := s.demoteConflicts(tx, scope, row.ID)
		if err != nil {
			return err
		}
		outcome.plan = plan
		history = append(history, entries...)
	}

	row.Rank = sub.Rank
	row.TasteStatus = statusString(sub.TasteStatus)
	row.Notes = sub.Notes
	row.PhotoURLs = sub.PhotoURLs
	if err := tx.Save(row); err != nil {
		return fmt.Errorf("failed to update ranking: %w", err)
	}

	history = append(history, models.RankingHistoryEntry{
		RankingID:           row.ID,
		UserID:              row.UserID,
		RestaurantID:        row.RestaurantID,
		DishID:              row.DishID,
		DishType:            row.DishType,
		PreviousRank:        outcome.prevRank,
		NewRank:             row.Rank,
		PreviousTasteStatus: statusString(outcome.prevState),
		NewTasteStatus:      row.TasteStatus,
		Notes:               row.Notes,
		PhotoURLs:           row.PhotoURLs,
	})
	if err := tx.AppendHistory(history); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	outcome.row = row
	return nil
}

// demoteConflicts locks the scope's live #1 rows, plans their demotions and
// applies them, synthesizing one history entry per demoted row from that
// row's own last-known evidence.
func (s *rankingService) demoteConflicts(tx repository.RankingTx, scope ranking.Scope, excludeID string) (ranking.Plan, []models.RankingHistoryEntry, error) {
	rows, err := tx.TopRankedForUpdate(scope, excludeID)
	if err != nil {
		return ranking.Plan{}, nil, fmt.Errorf("failed to read top-ranked rows: %w", err)
	}

	current := make([]ranking.Live, 0, len(rows))
	dishByID := make(map[string]string, len(rows))
	for _, r := range rows {
		current = append(current, ranking.Live{
			RankingID:   r.ID,
			DishID:      r.DishID,
			Rank:        r.Rank,
			TasteStatus: statusFromString(r.TasteStatus),
			Notes:       r.Notes,
			PhotoURLs:   r.PhotoURLs,
		})
		dishByID[r.ID] = r.DishID
	}

	plan := ranking.PlanDemotions(excludeID, ranking.TopRank, current)
	if plan.Corrupted {
		ids := make([]string, 0, len(plan.Demotions))
		for _, d := range plan.Demotions {
			ids = append(ids, d.RankingID)
		}
		metrics.RecordIntegrityWarning()
		s.logger.Warn("one_best_integrity_violation",
			"user_id", scope.UserID,
			"restaurant_id", scope.RestaurantID,
			"dish_type", scope.DishType,
			"demoted_ids", ids,
		)
	}

	entries := make([]models.RankingHistoryEntry, 0, len(plan.Demotions))
	for _, d := range plan.Demotions {
		if err := tx.Demote(d.RankingID, d.PreviousRank, d.NewRank); err != nil {
			return ranking.Plan{}, nil, fmt.Errorf("failed to demote ranking %s: %w", d.RankingID, err)
		}
		prev := d.PreviousRank
		next := d.NewRank
		entries = append(entries, models.RankingHistoryEntry{
			RankingID:    d.RankingID,
			UserID:       scope.UserID,
			RestaurantID: scope.RestaurantID,
			DishID:       dishByID[d.RankingID],
			DishType:     scope.DishType,
			PreviousRank: &prev,
			NewRank:      &next,
			Notes:        d.Notes,
			PhotoURLs:    d.PhotoURLs,
		})
	}
	return plan, entries, nil
}

// afterCommit runs the best-effort side effects: cache invalidation and
// event publishing. Failures here are logged inside the collaborators and
// never affect the committed write.
func (s *rankingService) afterCommit(ctx context.Context, sub ranking.Submission, outcome *txOutcome) {
	dishIDs := []string{outcome.row.DishID}
	for _, d := range outcome.plan.Demotions {
		if d.DishID != outcome.row.DishID {
			dishIDs = append(dishIDs, d.DishID)
		}
	}
	s.cache.Invalidate(ctx, dishIDs...)

	now := time.Now().UTC()
	eventType := shared.EventRankingUpdated
	if outcome.created {
		eventType = shared.EventRankingCreated
	}
	s.notifier.RankingChanged(ctx, shared.RankingEvent{
		Type:         eventType,
		RankingID:    outcome.row.ID,
		UserID:       outcome.row.UserID,
		RestaurantID: outcome.row.RestaurantID,
		DishID:       outcome.row.DishID,
		DishType:     outcome.row.DishType,
		Rank:         outcome.row.Rank,
		TasteStatus:  outcome.row.TasteStatus,
		PreviousRank: outcome.prevRank,
		OccurredAt:   now,
	})
	for _, d := range outcome.plan.Demotions {
		prev := d.PreviousRank
		next := d.NewRank
		s.notifier.RankingChanged(ctx, shared.RankingEvent{
			Type:         shared.EventRankingDemoted,
			RankingID:    d.RankingID,
			UserID:       outcome.row.UserID,
			RestaurantID: outcome.row.RestaurantID,
			DishID:       d.DishID,
			DishType:     outcome.row.DishType,
			Rank:         &next,
			PreviousRank: &prev,
			OccurredAt:   now,
		})
	}
	s.notifier.ReindexDishes(ctx, dishIDs...)
}

func (s *rankingService) recordFailure(err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		metrics.RecordSubmission("not_found")
	case errors.Is(err, ErrForbidden):
		metrics.RecordSubmission("forbidden")
	default:
		metrics.RecordSubmission("error")
	}
}

// GetRanking fetches one ranking, visible only to its owner.
func (s *rankingService) GetRanking(ctx context.Context, userID, rankingID string) (*models.Ranking, error) {
	row, err := s.store.GetByID(ctx, rankingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch ranking: %w", err)
	}
	if row.UserID != userID {
		return nil, ErrForbidden
	}
	return row, nil
}

// ListRankings pages through the caller's own rankings.
func (s *rankingService) ListRankings(ctx context.Context, userID string, page, pageSize int) ([]models.Ranking, int64, error) {
	rows, total, err := s.store.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rankings: %w", err)
	}
	return rows, total, nil
}

func statusString(s *ranking.TasteStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func statusFromString(s *string) *ranking.TasteStatus {
	if s == nil {
		return nil
	}
	v := ranking.TasteStatus(*s)
	return &v
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
