package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/models/m_promotion_history"
	"github.com/light-bringer/promo-engine/internal/pkg/committer"
)

// HistoryRepo implements HistoryRepository for Spanner.
// Entries are committed on their own, after the promotion commit.
type HistoryRepo struct {
	committer *committer.Committer
	model     *m_promotion_history.Model
}

// NewHistoryRepo creates a new HistoryRepo.
func NewHistoryRepo(comm *committer.Committer) contracts.HistoryRepository {
	return &HistoryRepo{
		committer: comm,
		model:     m_promotion_history.NewModel(),
	}
}

// Append writes one history entry.
func (r *HistoryRepo) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	data, err := historyToData(entry)
	if err != nil {
		return err
	}

	mut, err := r.model.InsertMut(data)
	if err != nil {
		return fmt.Errorf("failed to build history mutation: %w", err)
	}

	plan := committer.NewPlan()
	plan.Add(mut)
	return r.committer.Apply(ctx, plan)
}

func historyToData(entry *domain.HistoryEntry) (*m_promotion_history.Data, error) {
	data := &m_promotion_history.Data{
		HistoryID:   entry.ID,
		PromotionID: entry.PromotionID,
		Action:      string(entry.Action),
		ActorID:     spanner.NullString{StringVal: entry.ActorID, Valid: entry.ActorID != ""},
		CreatedAt:   entry.Timestamp,
	}

	if entry.Before != nil {
		before, err := json.Marshal(entry.Before)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal before snapshot: %w", err)
		}
		data.BeforeSnapshot = spanner.NullJSON{Value: json.RawMessage(before), Valid: true}
	}

	changes := entry.Changes
	if changes == nil {
		changes = []domain.FieldChange{}
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal changes: %w", err)
	}
	data.Changes = spanner.NullJSON{Value: json.RawMessage(raw), Valid: true}

	return data, nil
}
