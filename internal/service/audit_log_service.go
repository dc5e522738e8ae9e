package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/mapper"
	"github.com/merkur-erp/erp-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditLogService handles the request-level audit trail of mutating API
// calls. Records are written by the audit middleware and are append-only;
// the only deletion path is the retention cleanup.
type AuditLogService struct {
	auditLogRepo *repository.AuditLogRepository
	logger       *zap.Logger
}

// NewAuditLogService creates a new audit log service
func NewAuditLogService(auditLogRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		auditLogRepo: auditLogRepo,
		logger:       logger,
	}
}

// Record appends one audit entry. Failures are logged but never propagated;
// auditing must not fail the request it describes.
func (s *AuditLogService) Record(ctx context.Context, entry *domain.AuditLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := s.auditLogRepo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to write audit log entry",
			zap.String("method", entry.Method),
			zap.String("path", entry.Path),
			zap.Error(err),
		)
	}
}

// GetEntry retrieves one audit entry by ID
func (s *AuditLogService) GetEntry(ctx context.Context, id uuid.UUID) (*domain.AuditLogDTO, error) {
	entry, err := s.auditLogRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get audit log entry: %w", err)
	}

	dto := mapper.ToAuditLogDTO(entry)
	return &dto, nil
}

// ListEntries retrieves audit entries matching the filter, newest first
func (s *AuditLogService) ListEntries(ctx context.Context, filter *repository.AuditLogFilter, skip, take int) (*domain.ListResponse[domain.AuditLogDTO], error) {
	entries, total, err := s.auditLogRepo.List(ctx, filter, skip, take)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log entries: %w", err)
	}

	items := make([]domain.AuditLogDTO, len(entries))
	for i := range entries {
		items[i] = mapper.ToAuditLogDTO(&entries[i])
	}

	return &domain.ListResponse[domain.AuditLogDTO]{Items: items, Total: total}, nil
}

// ListByEntity retrieves the audit trail of one entity, newest first
func (s *AuditLogService) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]domain.AuditLogDTO, error) {
	entries, err := s.auditLogRepo.ListByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log entries: %w", err)
	}

	dtos := make([]domain.AuditLogDTO, len(entries))
	for i := range entries {
		dtos[i] = mapper.ToAuditLogDTO(&entries[i])
	}
	return dtos, nil
}

// CleanupOlderThan removes entries past the retention window
func (s *AuditLogService) CleanupOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	removed, err := s.auditLogRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up audit log: %w", err)
	}

	if removed > 0 {
		s.logger.Info("audit log retention cleanup",
			zap.Int64("removed", removed),
			zap.Time("cutoff", cutoff),
		)
	}
	return removed, nil
}
