package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"platehub/internal/microservices/http-api/models"
	"platehub/internal/ranking"
)

// RankingStore is the explicit store interface the transaction coordinator
// is built against. Concurrency correctness is delegated to the store: scope
// reads inside a transaction take row locks so concurrent #1 claims for the
// same scope serialize.
type RankingStore interface {
	// WithTransaction runs fn inside one database transaction and hands it
	// a transaction-scoped view of the store. fn returning an error rolls
	// the whole transaction back, as does ctx cancellation.
	WithTransaction(ctx context.Context, fn func(tx RankingTx) error) error

	GetByID(ctx context.Context, id string) (*models.Ranking, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Ranking, int64, error)
}

// RankingTx is the transaction-scoped view handed to the coordinator's
// callback. Every method runs on the surrounding transaction.
type RankingTx interface {
	Create(r *models.Ranking) error
	// GetForUpdate fetches one ranking by id and locks its row for the
	// remainder of the transaction.
	GetForUpdate(id string) (*models.Ranking, error)
	// TopRankedForUpdate fetches and locks the scope's live rank=1 rows,
	// excluding excludeID when non-empty.
	TopRankedForUpdate(scope ranking.Scope, excludeID string) ([]models.Ranking, error)
	Save(r *models.Ranking) error
	// Demote moves one row out of the top slot. The previous rank is part
	// of the predicate so a row that moved under us is never silently
	// overwritten.
	Demote(id string, previousRank, newRank int) error
	// AppendHistory writes one batch of audit entries; see historyRepository.go.
	AppendHistory(entries []models.RankingHistoryEntry) error
}

type rankingStore struct {
	db *gorm.DB
}

func NewRankingStore(db *gorm.DB) RankingStore {
	return &rankingStore{db: db}
}

func (s *rankingStore) WithTransaction(ctx context.Context, fn func(tx RankingTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&rankingTx{tx: tx})
	})
}

// GetByID retrieves one ranking without locking it
func (s *rankingStore) GetByID(ctx context.Context, id string) (*models.Ranking, error) {
	var row models.Ranking
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByUser retrieves a user's rankings with pagination
func (s *rankingStore) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Ranking, int64, error) {
	var rows []models.Ranking
	var total int64

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Ranking{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

type rankingTx struct {
	tx *gorm.DB
}

func (t *rankingTx) Create(r *models.Ranking) error {
	return t.tx.Create(r).Error
}

func (t *rankingTx) GetForUpdate(id string) (*models.Ranking, error) {
	var row models.Ranking
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (t *rankingTx) TopRankedForUpdate(scope ranking.Scope, excludeID string) ([]models.Ranking, error) {
	q := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND restaurant_id = ? AND dish_type = ? AND rank = ?",
			scope.UserID, scope.RestaurantID, scope.DishType, ranking.TopRank)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var rows []models.Ranking
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *rankingTx) Save(r *models.Ranking) error {
	return t.tx.Save(r).Error
}

func (t *rankingTx) Demote(id string, previousRank, newRank int) error {
	res := t.tx.Model(&models.Ranking{}).
		Where("id = ? AND rank = ?", id, previousRank).
		Update("rank", newRank)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
