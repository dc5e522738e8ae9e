package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/workflow"
	"gorm.io/gorm"
)

// WorkflowLogRepository persists the immutable status-transition history.
// It deliberately has no update or delete methods.
type WorkflowLogRepository struct {
	db *gorm.DB
}

func NewWorkflowLogRepository(db *gorm.DB) *WorkflowLogRepository {
	return &WorkflowLogRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *WorkflowLogRepository) WithTx(tx *gorm.DB) *WorkflowLogRepository {
	return &WorkflowLogRepository{db: tx}
}

// Create appends a new transition record
func (r *WorkflowLogRepository) Create(ctx context.Context, log *domain.WorkflowLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetByEntity returns the full transition history of one entity, oldest first
func (r *WorkflowLogRepository) GetByEntity(ctx context.Context, entityType workflow.EntityType, entityID uuid.UUID) ([]domain.WorkflowLog, error) {
	var logs []domain.WorkflowLog
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", string(entityType), entityID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

// CountByEntity returns the number of transitions recorded for one entity
func (r *WorkflowLogRepository) CountByEntity(ctx context.Context, entityType workflow.EntityType, entityID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.WorkflowLog{}).
		Where("entity_type = ? AND entity_id = ?", string(entityType), entityID).
		Count(&count).Error
	return count, err
}

// RecordTransition is a convenience method to append a transition record
func (r *WorkflowLogRepository) RecordTransition(
	ctx context.Context,
	entityType workflow.EntityType,
	entityID uuid.UUID,
	oldStatus string,
	newStatus string,
	note string,
	changedByID string,
	changedByName string,
) error {
	log := &domain.WorkflowLog{
		EntityType:    string(entityType),
		EntityID:      entityID,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		Note:          note,
		ChangedByID:   changedByID,
		ChangedByName: changedByName,
		CreatedAt:     time.Now().UTC(),
	}
	return r.Create(ctx, log)
}
