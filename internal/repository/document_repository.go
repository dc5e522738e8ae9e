package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"gorm.io/gorm"
)

// DocumentFilter represents filter options for listing documents
type DocumentFilter struct {
	Status    *domain.DocumentStatus
	Kind      string
	PartnerID *uuid.UUID
	Search    string
}

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *DocumentRepository) WithTx(tx *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.WithContext(ctx).
		Preload("Partner").
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Document{}).Error
}

// List returns documents matching the filter with the total match count
func (r *DocumentRepository) List(ctx context.Context, filter *DocumentFilter, skip, take int) ([]domain.Document, int64, error) {
	var docs []domain.Document
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Document{})

	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.Kind != "" {
			query = query.Where("kind = ?", filter.Kind)
		}
		if filter.PartnerID != nil {
			query = query.Where("partner_id = ?", *filter.PartnerID)
		}
		if filter.Search != "" {
			query = query.Where("file_name LIKE ?", "%"+filter.Search+"%")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Partner").
		Order("created_at DESC").
		Offset(skip).
		Limit(take).
		Find(&docs).Error

	return docs, total, err
}

// ListProcessing returns documents waiting on an OCR result, oldest first.
// Used by the polling job.
func (r *DocumentRepository) ListProcessing(ctx context.Context, limit int) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.DocumentStatusProcessing).
		Order("updated_at ASC").
		Limit(limit).
		Find(&docs).Error
	return docs, err
}
