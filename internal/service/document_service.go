package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/mapper"
	"github.com/merkur-erp/erp-api/internal/ocr"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/storage"
	"github.com/merkur-erp/erp-api/internal/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UploadDocumentInput carries the metadata of a multipart document upload
type UploadDocumentInput struct {
	FileName    string
	ContentType string
	Kind        string
	PartnerID   *uuid.UUID
	Data        io.Reader
}

// DocumentService handles uploaded documents and their OCR lifecycle. The
// file body lives in blob storage; the database row tracks metadata and the
// processing status.
type DocumentService struct {
	db              *gorm.DB
	documentRepo    *repository.DocumentRepository
	workflowLogRepo *repository.WorkflowLogRepository
	partnerRepo     *repository.PartnerRepository
	storage         storage.Storage
	ocrClient       *ocr.Client
	maxOcrAttempts  int
	logger          *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	db *gorm.DB,
	documentRepo *repository.DocumentRepository,
	workflowLogRepo *repository.WorkflowLogRepository,
	partnerRepo *repository.PartnerRepository,
	store storage.Storage,
	ocrClient *ocr.Client,
	maxOcrAttempts int,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		db:              db,
		documentRepo:    documentRepo,
		workflowLogRepo: workflowLogRepo,
		partnerRepo:     partnerRepo,
		storage:         store,
		ocrClient:       ocrClient,
		maxOcrAttempts:  maxOcrAttempts,
		logger:          logger,
	}
}

// GetDocument retrieves a document by ID with its transition history
func (s *DocumentService) GetDocument(ctx context.Context, id uuid.UUID) (*domain.DocumentDTO, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	dto := mapper.ToDocumentDTO(doc)

	logs, err := s.workflowLogRepo.GetByEntity(ctx, workflow.EntityDocument, doc.ID)
	if err != nil {
		s.logger.Warn("failed to load workflow log", zap.Error(err))
	} else {
		dto.WorkflowLog = mapper.ToWorkflowLogDTOs(logs)
	}

	return &dto, nil
}

// ListDocuments retrieves documents matching the filter
func (s *DocumentService) ListDocuments(ctx context.Context, filter *repository.DocumentFilter, skip, take int) (*domain.ListResponse[domain.DocumentDTO], error) {
	docs, total, err := s.documentRepo.List(ctx, filter, skip, take)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	items := make([]domain.DocumentDTO, len(docs))
	for i := range docs {
		items[i] = mapper.ToDocumentDTO(&docs[i])
	}

	return &domain.ListResponse[domain.DocumentDTO]{Items: items, Total: total}, nil
}

// UploadDocument stores the file body and registers the document in
// FELTOLTOTT status.
func (s *DocumentService) UploadDocument(ctx context.Context, input *UploadDocumentInput) (*domain.DocumentDTO, error) {
	if input.PartnerID != nil {
		if _, err := s.partnerRepo.GetByID(ctx, *input.PartnerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: partner %s does not exist", ErrInvalidInput, input.PartnerID)
			}
			return nil, fmt.Errorf("failed to check partner: %w", err)
		}
	}

	storagePath, size, err := s.storage.Upload(ctx, input.FileName, input.ContentType, input.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &domain.Document{
		FileName:    input.FileName,
		ContentType: input.ContentType,
		Size:        size,
		StoragePath: storagePath,
		Kind:        input.Kind,
		PartnerID:   input.PartnerID,
		Status:      domain.DocumentStatusUploaded,
	}
	if userCtx, ok := authFromContext(ctx); ok {
		doc.UploadedByID = userCtx.UserID.String()
	}

	userID, userName := changedBy(ctx)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.documentRepo.WithTx(tx).Create(ctx, doc); err != nil {
			return err
		}
		return s.workflowLogRepo.WithTx(tx).RecordTransition(ctx,
			workflow.EntityDocument, doc.ID,
			"", string(domain.DocumentStatusUploaded),
			"", userID, userName)
	})
	if err != nil {
		// The blob is orphaned if the row insert fails; remove it.
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up stored file", zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.logger.Info("document uploaded",
		zap.String("documentId", doc.ID.String()),
		zap.String("fileName", doc.FileName),
		zap.Int64("size", doc.Size),
	)

	return s.GetDocument(ctx, doc.ID)
}

// DownloadDocument returns the stored file body and its metadata
func (s *DocumentService) DownloadDocument(ctx context.Context, id uuid.UUID) (io.ReadCloser, *domain.DocumentDTO, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get document: %w", err)
	}

	reader, err := s.storage.Download(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read stored document: %w", err)
	}

	dto := mapper.ToDocumentDTO(doc)
	return reader, &dto, nil
}

// DeleteDocument removes the database row and the stored file
func (s *DocumentService) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
		s.logger.Warn("failed to delete stored file",
			zap.String("documentId", id.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("document deleted", zap.String("documentId", id.String()))
	return nil
}

// SubmitOcr sends a document to the OCR provider and moves it to
// OCR_FOLYAMATBAN. Allowed from FELTOLTOTT and, as a retry, from
// OCR_SIKERTELEN.
func (s *DocumentService) SubmitOcr(ctx context.Context, id uuid.UUID) (*domain.DocumentDTO, error) {
	if !s.ocrClient.Enabled() {
		return nil, ErrOcrNotConfigured
	}

	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	decision, err := workflow.Decide(workflow.EntityDocument, string(doc.Status), string(domain.DocumentStatusProcessing))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrTransitionDenied, decision.Reason)
	}

	reader, err := s.storage.Download(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored document: %w", err)
	}
	defer reader.Close()

	jobID, err := s.ocrClient.SubmitDocument(ctx, doc.FileName, doc.ContentType, doc.Kind, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to submit document for ocr: %w", err)
	}

	oldStatus := doc.Status
	doc.Status = domain.DocumentStatusProcessing
	doc.OcrJobID = jobID
	doc.OcrAttempts++

	userID, userName := changedBy(ctx)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.documentRepo.WithTx(tx).Update(ctx, doc); err != nil {
			return err
		}
		return s.workflowLogRepo.WithTx(tx).RecordTransition(ctx,
			workflow.EntityDocument, doc.ID,
			string(oldStatus), string(domain.DocumentStatusProcessing),
			"ocr submitted", userID, userName)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update document status: %w", err)
	}

	s.logger.Info("document submitted for OCR",
		zap.String("documentId", doc.ID.String()),
		zap.String("ocrJobId", jobID),
		zap.Int("attempt", doc.OcrAttempts),
	)

	return s.GetDocument(ctx, id)
}

// PollProcessingDocuments checks the OCR provider for every document in
// OCR_FOLYAMATBAN and finalizes those with a result. Documents whose job is
// still pending after the attempt cap are marked OCR_SIKERTELEN. Returns the
// number of documents whose status changed.
func (s *DocumentService) PollProcessingDocuments(ctx context.Context, limit int) (int, error) {
	if !s.ocrClient.Enabled() {
		return 0, nil
	}

	docs, err := s.documentRepo.ListProcessing(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list processing documents: %w", err)
	}

	changed := 0
	for i := range docs {
		doc := &docs[i]

		result, err := s.ocrClient.GetJobResult(ctx, doc.OcrJobID)
		if err != nil {
			s.logger.Warn("failed to poll ocr job",
				zap.String("documentId", doc.ID.String()),
				zap.String("ocrJobId", doc.OcrJobID),
				zap.Error(err),
			)
			continue
		}

		switch result.Status {
		case ocr.JobStatusDone:
			if err := s.finalizeOcr(ctx, doc, domain.DocumentStatusProcessed, result.Text, "ocr completed"); err != nil {
				s.logger.Error("failed to finalize ocr result", zap.Error(err))
				continue
			}
			changed++
		case ocr.JobStatusFailed:
			if err := s.finalizeOcr(ctx, doc, domain.DocumentStatusFailed, "", result.Error); err != nil {
				s.logger.Error("failed to finalize ocr result", zap.Error(err))
				continue
			}
			changed++
		case ocr.JobStatusPending:
			if doc.OcrAttempts >= s.maxOcrAttempts {
				if err := s.finalizeOcr(ctx, doc, domain.DocumentStatusFailed, "", "ocr attempt limit reached"); err != nil {
					s.logger.Error("failed to finalize ocr result", zap.Error(err))
					continue
				}
				changed++
				continue
			}
			doc.OcrAttempts++
			if err := s.documentRepo.Update(ctx, doc); err != nil {
				s.logger.Warn("failed to record ocr poll attempt", zap.Error(err))
			}
		}
	}

	return changed, nil
}

// finalizeOcr moves a processing document to its terminal OCR status
func (s *DocumentService) finalizeOcr(ctx context.Context, doc *domain.Document, target domain.DocumentStatus, text, note string) error {
	decision, err := workflow.Decide(workflow.EntityDocument, string(doc.Status), string(target))
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return fmt.Errorf("%w: %s", ErrTransitionDenied, decision.Reason)
	}

	oldStatus := doc.Status
	doc.Status = target
	if text != "" {
		doc.ExtractedText = text
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.documentRepo.WithTx(tx).Update(ctx, doc); err != nil {
			return err
		}
		return s.workflowLogRepo.WithTx(tx).RecordTransition(ctx,
			workflow.EntityDocument, doc.ID,
			string(oldStatus), string(target),
			note, "", "")
	})
}
