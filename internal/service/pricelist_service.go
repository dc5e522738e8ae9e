package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/mapper"
	"github.com/merkur-erp/erp-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// csvHeader is the column order of price list CSV files, import and export
var csvHeader = []string{"productCode", "productName", "unitPrice", "unit"}

// PriceListService handles supplier price lists, their items and the CSV
// import/export used to exchange lists with suppliers.
type PriceListService struct {
	priceListRepo *repository.PriceListRepository
	partnerRepo   *repository.PartnerRepository
	logger        *zap.Logger
}

// NewPriceListService creates a new price list service
func NewPriceListService(
	priceListRepo *repository.PriceListRepository,
	partnerRepo *repository.PartnerRepository,
	logger *zap.Logger,
) *PriceListService {
	return &PriceListService{
		priceListRepo: priceListRepo,
		partnerRepo:   partnerRepo,
		logger:        logger,
	}
}

// GetPriceList retrieves a price list with items and linked suppliers
func (s *PriceListService) GetPriceList(ctx context.Context, id uuid.UUID) (*domain.PriceListDTO, error) {
	list, err := s.priceListRepo.GetByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get price list: %w", err)
	}

	dto := mapper.ToPriceListDTO(list)
	return &dto, nil
}

// ListPriceLists retrieves price lists with an optional status filter
func (s *PriceListService) ListPriceLists(ctx context.Context, status *domain.PriceListStatus, skip, take int) (*domain.ListResponse[domain.PriceListDTO], error) {
	lists, total, err := s.priceListRepo.List(ctx, status, skip, take)
	if err != nil {
		return nil, fmt.Errorf("failed to list price lists: %w", err)
	}

	items := make([]domain.PriceListDTO, len(lists))
	for i := range lists {
		items[i] = mapper.ToPriceListDTO(&lists[i])
	}

	return &domain.ListResponse[domain.PriceListDTO]{Items: items, Total: total}, nil
}

// ListBySupplier retrieves the price lists linked to one supplier partner
func (s *PriceListService) ListBySupplier(ctx context.Context, partnerID uuid.UUID) ([]domain.PriceListDTO, error) {
	if _, err := s.partnerRepo.GetByID(ctx, partnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	lists, err := s.priceListRepo.ListBySupplier(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list price lists: %w", err)
	}

	dtos := make([]domain.PriceListDTO, len(lists))
	for i := range lists {
		dtos[i] = mapper.ToPriceListDTO(&lists[i])
	}
	return dtos, nil
}

// CreatePriceList creates a new price list in ACTIVE status
func (s *PriceListService) CreatePriceList(ctx context.Context, req *domain.CreatePriceListRequest) (*domain.PriceListDTO, error) {
	validFrom, err := parseOptionalDate(req.ValidFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	validTo, err := parseOptionalDate(req.ValidTo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	list := &domain.PriceList{
		Name:      req.Name,
		Currency:  req.Currency,
		ValidFrom: validFrom,
		ValidTo:   validTo,
		Status:    domain.PriceListStatusActive,
	}
	if list.Currency == "" {
		list.Currency = "HUF"
	}

	if err := s.priceListRepo.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to create price list: %w", err)
	}

	s.logger.Info("price list created",
		zap.String("priceListId", list.ID.String()),
		zap.String("name", list.Name),
	)

	dto := mapper.ToPriceListDTO(list)
	return &dto, nil
}

// UpdatePriceList updates a price list's fields and status
func (s *PriceListService) UpdatePriceList(ctx context.Context, id uuid.UUID, req *domain.UpdatePriceListRequest) (*domain.PriceListDTO, error) {
	list, err := s.priceListRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get price list: %w", err)
	}

	if req.Status != "" && !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, req.Status)
	}

	validFrom, err := parseOptionalDate(req.ValidFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	validTo, err := parseOptionalDate(req.ValidTo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	list.Name = req.Name
	if req.Currency != "" {
		list.Currency = req.Currency
	}
	list.ValidFrom = validFrom
	list.ValidTo = validTo
	if req.Status != "" {
		list.Status = req.Status
	}

	if err := s.priceListRepo.Update(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to update price list: %w", err)
	}

	return s.GetPriceList(ctx, id)
}

// DeletePriceList removes a price list and its items
func (s *PriceListService) DeletePriceList(ctx context.Context, id uuid.UUID) error {
	if _, err := s.priceListRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get price list: %w", err)
	}

	if err := s.priceListRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete price list: %w", err)
	}

	s.logger.Info("price list deleted", zap.String("priceListId", id.String()))
	return nil
}

// AddItem adds a priced product row to a price list
func (s *PriceListService) AddItem(ctx context.Context, listID uuid.UUID, req *domain.CreatePriceListItemRequest) (*domain.PriceListItemDTO, error) {
	if _, err := s.editableList(ctx, listID); err != nil {
		return nil, err
	}

	item := &domain.PriceListItem{
		PriceListID: listID,
		ProductCode: req.ProductCode,
		ProductName: req.ProductName,
		UnitPrice:   req.UnitPrice,
		Unit:        req.Unit,
	}
	if item.Unit == "" {
		item.Unit = "db"
	}

	if err := s.priceListRepo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create price list item: %w", err)
	}

	dto := mapper.ToPriceListItemDTO(item)
	return &dto, nil
}

// UpdateItem replaces the fields of one price list row
func (s *PriceListService) UpdateItem(ctx context.Context, listID, itemID uuid.UUID, req *domain.CreatePriceListItemRequest) (*domain.PriceListItemDTO, error) {
	if _, err := s.editableList(ctx, listID); err != nil {
		return nil, err
	}

	item, err := s.getItemOfList(ctx, listID, itemID)
	if err != nil {
		return nil, err
	}

	item.ProductCode = req.ProductCode
	item.ProductName = req.ProductName
	item.UnitPrice = req.UnitPrice
	if req.Unit != "" {
		item.Unit = req.Unit
	}

	if err := s.priceListRepo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update price list item: %w", err)
	}

	dto := mapper.ToPriceListItemDTO(item)
	return &dto, nil
}

// DeleteItem removes one price list row
func (s *PriceListService) DeleteItem(ctx context.Context, listID, itemID uuid.UUID) error {
	if _, err := s.editableList(ctx, listID); err != nil {
		return err
	}

	if _, err := s.getItemOfList(ctx, listID, itemID); err != nil {
		return err
	}

	if err := s.priceListRepo.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete price list item: %w", err)
	}
	return nil
}

// ImportItemsCSV reads product rows from a CSV stream. The first row must be
// the header. Rows are validated with the same form mapping the item editor
// uses; valid rows are inserted, invalid rows are reported per row number
// without failing the whole import.
func (s *PriceListService) ImportItemsCSV(ctx context.Context, listID uuid.UUID, r io.Reader) (*domain.PriceListImportResultDTO, error) {
	if _, err := s.editableList(ctx, listID); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing csv header", ErrInvalidInput)
	}
	if len(header) < len(csvHeader) {
		return nil, fmt.Errorf("%w: expected columns %v", ErrInvalidInput, csvHeader)
	}

	result := &domain.PriceListImportResultDTO{}
	var items []domain.PriceListItem

	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, domain.ImportRowErrorDTO{
				Row:    row,
				Errors: map[string]string{"row": "malformed csv record"},
			})
			continue
		}

		form := mapper.PriceListItemForm{}
		if len(record) > 0 {
			form.ProductCode = record[0]
		}
		if len(record) > 1 {
			form.ProductName = record[1]
		}
		if len(record) > 2 {
			form.UnitPrice = record[2]
		}
		if len(record) > 3 {
			form.Unit = record[3]
		}

		req, fieldErrs := mapper.MapPriceListItemForm(form)
		if fieldErrs != nil {
			result.Skipped++
			result.Errors = append(result.Errors, domain.ImportRowErrorDTO{
				Row:    row,
				Errors: fieldErrs,
			})
			continue
		}

		unit := req.Unit
		if unit == "" {
			unit = "db"
		}
		items = append(items, domain.PriceListItem{
			PriceListID: listID,
			ProductCode: req.ProductCode,
			ProductName: req.ProductName,
			UnitPrice:   req.UnitPrice,
			Unit:        unit,
		})
		result.Imported++
	}

	if err := s.priceListRepo.CreateItems(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to insert imported rows: %w", err)
	}

	s.logger.Info("price list items imported",
		zap.String("priceListId", listID.String()),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

// ExportItemsCSV writes the rows of a price list as CSV, header first
func (s *PriceListService) ExportItemsCSV(ctx context.Context, listID uuid.UUID, w io.Writer) error {
	if _, err := s.priceListRepo.GetByID(ctx, listID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get price list: %w", err)
	}

	items, err := s.priceListRepo.ListItems(ctx, listID)
	if err != nil {
		return fmt.Errorf("failed to list price list items: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, item := range items {
		record := []string{
			item.ProductCode,
			item.ProductName,
			strconv.FormatFloat(item.UnitPrice, 'f', 2, 64),
			item.Unit,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// LinkSupplier associates a supplier partner with a price list. The partner
// must be flagged as a supplier.
func (s *PriceListService) LinkSupplier(ctx context.Context, listID, partnerID uuid.UUID) error {
	list, err := s.priceListRepo.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get price list: %w", err)
	}

	partner, err := s.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get partner: %w", err)
	}

	if !partner.IsSupplier {
		return fmt.Errorf("%w: partner %s is not a supplier", ErrInvalidInput, partnerID)
	}

	if err := s.priceListRepo.LinkSupplier(ctx, list, partner); err != nil {
		return fmt.Errorf("failed to link supplier: %w", err)
	}

	s.logger.Info("supplier linked to price list",
		zap.String("priceListId", listID.String()),
		zap.String("partnerId", partnerID.String()),
	)
	return nil
}

// UnlinkSupplier removes a supplier association from a price list
func (s *PriceListService) UnlinkSupplier(ctx context.Context, listID, partnerID uuid.UUID) error {
	list, err := s.priceListRepo.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get price list: %w", err)
	}

	partner, err := s.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get partner: %w", err)
	}

	if err := s.priceListRepo.UnlinkSupplier(ctx, list, partner); err != nil {
		return fmt.Errorf("failed to unlink supplier: %w", err)
	}
	return nil
}

// editableList loads a price list and verifies it still accepts item edits
func (s *PriceListService) editableList(ctx context.Context, id uuid.UUID) (*domain.PriceList, error) {
	list, err := s.priceListRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get price list: %w", err)
	}

	if list.Status != domain.PriceListStatusActive {
		return nil, fmt.Errorf("%w: price list is %s", ErrStatusLocked, list.Status)
	}
	return list, nil
}

func (s *PriceListService) getItemOfList(ctx context.Context, listID, itemID uuid.UUID) (*domain.PriceListItem, error) {
	item, err := s.priceListRepo.GetItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get price list item: %w", err)
	}
	if item.PriceListID != listID {
		return nil, ErrNotFound
	}
	return item, nil
}
