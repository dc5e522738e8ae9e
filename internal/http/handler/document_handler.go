package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/service"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	documentService *service.DocumentService
	maxUploadMB     int64
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, maxUploadMB int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadMB:     maxUploadMB,
		logger:          logger,
	}
}

// List godoc
// @Summary List documents
// @Description Get paginated list of documents with optional filters
// @Tags Documents
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(FELTOLTOTT, OCR_FOLYAMATBAN, FELDOLGOZOTT, OCR_SIKERTELEN)
// @Param kind query string false "Filter by document kind"
// @Param partnerId query string false "Filter by partner ID" format(uuid)
// @Param search query string false "Search in file name and extracted text"
// @Success 200 {object} domain.ListResponse[domain.DocumentDTO]
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, take := parsePagination(r)

	filter := &repository.DocumentFilter{
		Kind:   r.URL.Query().Get("kind"),
		Search: r.URL.Query().Get("search"),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.DocumentStatus(status)
		filter.Status = &s
	}
	if pid := r.URL.Query().Get("partnerId"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid partnerId: must be a valid UUID")
			return
		}
		filter.PartnerID = &id
	}

	result, err := h.documentService.ListDocuments(r.Context(), filter, skip, take)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list documents")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get document by ID
// @Description Get document metadata with its OCR status history
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID" format(uuid)
// @Success 200 {object} domain.DocumentDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	doc, err := h.documentService.GetDocument(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get document")
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// Upload godoc
// @Summary Upload document
// @Description Upload a document file. The file body goes to blob storage; the row starts in FELTOLTOTT status.
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param kind formData string false "Document kind (e.g. szamla, szallitolevel)"
// @Param partnerId formData string false "Partner ID to attach the document to"
// @Success 201 {object} domain.DocumentDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 413 {object} domain.ErrorResponse "File too large"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	var partnerID *uuid.UUID
	if pid := r.FormValue("partnerId"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid partnerId: must be a valid UUID")
			return
		}
		partnerID = &id
	}

	doc, err := h.documentService.UploadDocument(r.Context(), &service.UploadDocumentInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Kind:        r.FormValue("kind"),
		PartnerID:   partnerID,
		Data:        file,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to upload document")
		return
	}

	w.Header().Set("Location", "/api/v1/documents/"+doc.ID.String())
	respondJSON(w, http.StatusCreated, doc)
}

// Download godoc
// @Summary Download document
// @Tags Documents
// @Produce application/octet-stream
// @Param id path string true "Document ID" format(uuid)
// @Success 200
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	reader, doc, err := h.documentService.DownloadDocument(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to download document")
		return
	}
	defer reader.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+doc.FileName+"\"")
	w.Header().Set("Content-Type", contentType)

	_, _ = io.Copy(w, reader)
}

// Delete godoc
// @Summary Delete document
// @Description Delete the document row and its stored file
// @Tags Documents
// @Param id path string true "Document ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	if err := h.documentService.DeleteDocument(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SubmitOcr godoc
// @Summary Submit document for OCR
// @Description Send the document to the OCR provider and move it to OCR_FOLYAMATBAN. Allowed from FELTOLTOTT and, as a retry, from OCR_SIKERTELEN.
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID" format(uuid)
// @Success 202 {object} domain.DocumentDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Transition not allowed"
// @Failure 503 {object} domain.ErrorResponse "OCR provider not configured"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id}/ocr [post]
func (h *DocumentHandler) SubmitOcr(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	doc, err := h.documentService.SubmitOcr(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to submit document for OCR")
		return
	}

	respondJSON(w, http.StatusAccepted, doc)
}
