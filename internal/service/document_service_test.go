package service

import (
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/config"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/ocr"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/storage"
	"github.com/merkur-erp/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newDocumentService(t *testing.T) (*DocumentService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	// No base URL configured: uploads work, OCR submission is disabled
	ocrClient := ocr.NewClient(&config.OcrConfig{}, zap.NewNop())

	svc := NewDocumentService(
		db,
		repository.NewDocumentRepository(db),
		repository.NewWorkflowLogRepository(db),
		repository.NewPartnerRepository(db),
		store,
		ocrClient,
		3,
		zap.NewNop(),
	)
	return svc, db
}

func uploadFixture(t *testing.T, svc *DocumentService, body string) *domain.DocumentDTO {
	t.Helper()
	dto, err := svc.UploadDocument(userCtx("Kiss Anna"), &UploadDocumentInput{
		FileName:    "szamla-2025-001.pdf",
		ContentType: "application/pdf",
		Kind:        "szamla",
		Data:        strings.NewReader(body),
	})
	require.NoError(t, err)
	return dto
}

func TestDocumentService_UploadDownloadRoundTrip(t *testing.T) {
	svc, _ := newDocumentService(t)
	ctx := userCtx("Kiss Anna")

	dto := uploadFixture(t, svc, "pdf-body")
	assert.Equal(t, domain.DocumentStatusUploaded, dto.Status)
	assert.Equal(t, int64(len("pdf-body")), dto.Size)
	require.Len(t, dto.WorkflowLog, 1)

	reader, meta, err := svc.DownloadDocument(ctx, dto.ID)
	require.NoError(t, err)
	defer reader.Close()

	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "pdf-body", string(body))
	assert.Equal(t, "szamla-2025-001.pdf", meta.FileName)
}

func TestDocumentService_UploadValidatesPartner(t *testing.T) {
	svc, db := newDocumentService(t)
	ctx := userCtx("Kiss Anna")

	t.Run("unknown partner is rejected", func(t *testing.T) {
		missing := uuid.New()
		_, err := svc.UploadDocument(ctx, &UploadDocumentInput{
			FileName:    "ajanlat.pdf",
			ContentType: "application/pdf",
			PartnerID:   &missing,
			Data:        strings.NewReader("x"),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("existing partner is linked", func(t *testing.T) {
		partner := testutil.CreatePartner(t, db, "Beszállító Kft.")
		dto, err := svc.UploadDocument(ctx, &UploadDocumentInput{
			FileName:    "ajanlat.pdf",
			ContentType: "application/pdf",
			PartnerID:   &partner.ID,
			Data:        strings.NewReader("x"),
		})
		require.NoError(t, err)
		require.NotNil(t, dto.PartnerID)
		assert.Equal(t, partner.ID, *dto.PartnerID)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	svc, _ := newDocumentService(t)
	ctx := userCtx("Kiss Anna")

	dto := uploadFixture(t, svc, "pdf-body")

	require.NoError(t, svc.DeleteDocument(ctx, dto.ID))

	_, err := svc.GetDocument(ctx, dto.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.DownloadDocument(ctx, dto.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentService_SubmitOcrWithoutProvider(t *testing.T) {
	svc, _ := newDocumentService(t)
	ctx := userCtx("Kiss Anna")

	dto := uploadFixture(t, svc, "pdf-body")

	_, err := svc.SubmitOcr(ctx, dto.ID)
	assert.ErrorIs(t, err, ErrOcrNotConfigured)
}
