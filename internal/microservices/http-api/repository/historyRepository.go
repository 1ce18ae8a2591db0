package repository

import "platehub/internal/microservices/http-api/models"

// AppendHistory writes one batch of audit entries inside the surrounding
// transaction: one entry per state transition (create, update, demotion).
// History is append-only; no update, delete, or read API exists here, and
// the method is never called outside a coordinator transaction.
func (t *rankingTx) AppendHistory(entries []models.RankingHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return t.tx.Create(&entries).Error
}
