package mapper

import (
	"github.com/merkur-erp/erp-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"
const dateFormat = "2006-01-02"

// ToPartnerDTO converts Partner to PartnerDTO
func ToPartnerDTO(p *domain.Partner) domain.PartnerDTO {
	return domain.PartnerDTO{
		ID:          p.ID,
		Name:        p.Name,
		TaxNumber:   p.TaxNumber,
		CountryCode: p.CountryCode,
		Address:     p.Address,
		City:        p.City,
		PostalCode:  p.PostalCode,
		Email:       p.Email,
		Phone:       p.Phone,
		IsSupplier:  p.IsSupplier,
		IsCustomer:  p.IsCustomer,
		Notes:       p.Notes,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.Format(timeFormat),
		UpdatedAt:   p.UpdatedAt.Format(timeFormat),
	}
}

// ToOpportunityDTO converts Opportunity to OpportunityDTO
func ToOpportunityDTO(o *domain.Opportunity) domain.OpportunityDTO {
	dto := domain.OpportunityDTO{
		ID:            o.ID,
		Name:          o.Name,
		PartnerID:     o.PartnerID,
		Ertek:         o.Ertek,
		Valoszinuseg:  o.Valoszinuseg,
		WeightedValue: o.WeightedValue(),
		Currency:      o.Currency,
		Stage:         o.Stage,
		OwnerID:       o.OwnerID,
		OwnerName:     o.OwnerName,
		Notes:         o.Notes,
		CreatedAt:     o.CreatedAt.Format(timeFormat),
		UpdatedAt:     o.UpdatedAt.Format(timeFormat),
	}

	if o.Partner != nil {
		dto.PartnerName = o.Partner.Name
	}
	if o.ExpectedCloseDate != nil {
		d := o.ExpectedCloseDate.Format(dateFormat)
		dto.ExpectedCloseDate = &d
	}

	return dto
}

// ToReturnDTO converts Return to ReturnDTO
func ToReturnDTO(r *domain.Return) domain.ReturnDTO {
	dto := domain.ReturnDTO{
		ID:              r.ID,
		OrderNumber:     r.OrderNumber,
		PartnerID:       r.PartnerID,
		WarehouseCode:   r.WarehouseCode,
		ProductCode:     r.ProductCode,
		Mennyiseg:       r.Mennyiseg,
		Ok:              r.Ok,
		Notes:           r.Notes,
		Status:          r.Status,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.Format(timeFormat),
		UpdatedAt:       r.UpdatedAt.Format(timeFormat),
	}

	if r.Partner != nil {
		dto.PartnerName = r.Partner.Name
	}

	return dto
}

// ToWorkflowLogDTO converts WorkflowLog to WorkflowLogDTO
func ToWorkflowLogDTO(l *domain.WorkflowLog) domain.WorkflowLogDTO {
	return domain.WorkflowLogDTO{
		ID:            l.ID,
		EntityType:    l.EntityType,
		EntityID:      l.EntityID,
		OldStatus:     l.OldStatus,
		NewStatus:     l.NewStatus,
		Note:          l.Note,
		ChangedByID:   l.ChangedByID,
		ChangedByName: l.ChangedByName,
		CreatedAt:     l.CreatedAt.Format(timeFormat),
	}
}

// ToWorkflowLogDTOs converts a slice of workflow log entries
func ToWorkflowLogDTOs(logs []domain.WorkflowLog) []domain.WorkflowLogDTO {
	dtos := make([]domain.WorkflowLogDTO, len(logs))
	for i := range logs {
		dtos[i] = ToWorkflowLogDTO(&logs[i])
	}
	return dtos
}

// ToIntrastatDeclarationDTO converts IntrastatDeclaration to its DTO.
// Items are included only when loaded.
func ToIntrastatDeclarationDTO(d *domain.IntrastatDeclaration) domain.IntrastatDeclarationDTO {
	dto := domain.IntrastatDeclarationDTO{
		ID:        d.ID,
		Ev:        d.Ev,
		Honap:     d.Honap,
		Direction: d.Direction,
		Status:    d.Status,
		Notes:     d.Notes,
		ItemCount: len(d.Items),
		CreatedAt: d.CreatedAt.Format(timeFormat),
		UpdatedAt: d.UpdatedAt.Format(timeFormat),
	}

	if len(d.Items) > 0 {
		dto.Items = make([]domain.IntrastatItemDTO, len(d.Items))
		for i := range d.Items {
			dto.Items[i] = ToIntrastatItemDTO(&d.Items[i])
		}
	}

	return dto
}

// ToIntrastatItemDTO converts IntrastatItem to IntrastatItemDTO
func ToIntrastatItemDTO(item *domain.IntrastatItem) domain.IntrastatItemDTO {
	return domain.IntrastatItemDTO{
		ID:                item.ID,
		DeclarationID:     item.DeclarationID,
		PartnerOrszagKod:  item.PartnerOrszagKod,
		Tarifaszam:        item.Tarifaszam,
		StatisztikaiErtek: item.StatisztikaiErtek,
		SzamlazottOsszeg:  item.SzamlazottOsszeg,
		NettoSuly:         item.NettoSuly,
		Mennyiseg:         item.Mennyiseg,
		UgyletKod:         item.UgyletKod,
		SzallitasiMod:     item.SzallitasiMod,
		CreatedAt:         item.CreatedAt.Format(timeFormat),
		UpdatedAt:         item.UpdatedAt.Format(timeFormat),
	}
}

// ToDocumentDTO converts Document to DocumentDTO
func ToDocumentDTO(d *domain.Document) domain.DocumentDTO {
	dto := domain.DocumentDTO{
		ID:            d.ID,
		FileName:      d.FileName,
		ContentType:   d.ContentType,
		Size:          d.Size,
		Kind:          d.Kind,
		PartnerID:     d.PartnerID,
		Status:        d.Status,
		OcrAttempts:   d.OcrAttempts,
		ExtractedText: d.ExtractedText,
		UploadedByID:  d.UploadedByID,
		CreatedAt:     d.CreatedAt.Format(timeFormat),
		UpdatedAt:     d.UpdatedAt.Format(timeFormat),
	}

	if d.Partner != nil {
		dto.PartnerName = d.Partner.Name
	}

	return dto
}

// ToStockLevelDTO converts StockLevel to StockLevelDTO
func ToStockLevelDTO(s *domain.StockLevel) domain.StockLevelDTO {
	return domain.StockLevelDTO{
		ID:            s.ID,
		WarehouseCode: s.WarehouseCode,
		ProductCode:   s.ProductCode,
		Quantity:      s.Quantity,
		UpdatedAt:     s.UpdatedAt.Format(timeFormat),
	}
}

// ToStockReservationDTO converts StockReservation to StockReservationDTO
func ToStockReservationDTO(r *domain.StockReservation) domain.StockReservationDTO {
	return domain.StockReservationDTO{
		ID:            r.ID,
		WarehouseCode: r.WarehouseCode,
		ProductCode:   r.ProductCode,
		Mennyiseg:     r.Mennyiseg,
		OrderNumber:   r.OrderNumber,
		Status:        r.Status,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt.Format(timeFormat),
		UpdatedAt:     r.UpdatedAt.Format(timeFormat),
	}
}

// ToExpectedReceiptDTO converts ExpectedReceipt to ExpectedReceiptDTO
func ToExpectedReceiptDTO(e *domain.ExpectedReceipt) domain.ExpectedReceiptDTO {
	items := make([]domain.ExpectedReceiptItemDTO, len(e.Items))
	for i := range e.Items {
		items[i] = ToExpectedReceiptItemDTO(&e.Items[i])
	}

	dto := domain.ExpectedReceiptDTO{
		ID:            e.ID,
		PartnerID:     e.PartnerID,
		WarehouseCode: e.WarehouseCode,
		Status:        e.Status,
		Notes:         e.Notes,
		Items:         items,
		CreatedAt:     e.CreatedAt.Format(timeFormat),
		UpdatedAt:     e.UpdatedAt.Format(timeFormat),
	}

	if e.Partner != nil {
		dto.PartnerName = e.Partner.Name
	}
	if e.ExpectedDate != nil {
		d := e.ExpectedDate.Format(dateFormat)
		dto.ExpectedDate = &d
	}

	return dto
}

// ToExpectedReceiptItemDTO converts ExpectedReceiptItem to its DTO
func ToExpectedReceiptItemDTO(item *domain.ExpectedReceiptItem) domain.ExpectedReceiptItemDTO {
	return domain.ExpectedReceiptItemDTO{
		ID:          item.ID,
		ReceiptID:   item.ReceiptID,
		ProductCode: item.ProductCode,
		Mennyiseg:   item.Mennyiseg,
	}
}

// ToPriceListDTO converts PriceList to PriceListDTO. Items and suppliers are
// included only when loaded.
func ToPriceListDTO(p *domain.PriceList) domain.PriceListDTO {
	dto := domain.PriceListDTO{
		ID:        p.ID,
		Name:      p.Name,
		Currency:  p.Currency,
		Status:    p.Status,
		ItemCount: len(p.Items),
		CreatedAt: p.CreatedAt.Format(timeFormat),
		UpdatedAt: p.UpdatedAt.Format(timeFormat),
	}

	if p.ValidFrom != nil {
		d := p.ValidFrom.Format(dateFormat)
		dto.ValidFrom = &d
	}
	if p.ValidTo != nil {
		d := p.ValidTo.Format(dateFormat)
		dto.ValidTo = &d
	}
	if len(p.Items) > 0 {
		dto.Items = make([]domain.PriceListItemDTO, len(p.Items))
		for i := range p.Items {
			dto.Items[i] = ToPriceListItemDTO(&p.Items[i])
		}
	}
	if len(p.Suppliers) > 0 {
		dto.Suppliers = make([]domain.PartnerDTO, len(p.Suppliers))
		for i := range p.Suppliers {
			dto.Suppliers[i] = ToPartnerDTO(&p.Suppliers[i])
		}
	}

	return dto
}

// ToPriceListItemDTO converts PriceListItem to PriceListItemDTO
func ToPriceListItemDTO(item *domain.PriceListItem) domain.PriceListItemDTO {
	return domain.PriceListItemDTO{
		ID:          item.ID,
		PriceListID: item.PriceListID,
		ProductCode: item.ProductCode,
		ProductName: item.ProductName,
		UnitPrice:   item.UnitPrice,
		Unit:        item.Unit,
	}
}

// ToAuditLogDTO converts AuditLog to AuditLogDTO
func ToAuditLogDTO(a *domain.AuditLog) domain.AuditLogDTO {
	return domain.AuditLogDTO{
		ID:         a.ID,
		UserID:     a.UserID,
		UserName:   a.UserName,
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Method:     a.Method,
		Path:       a.Path,
		StatusCode: a.StatusCode,
		IPAddress:  a.IPAddress,
		RequestID:  a.RequestID,
		CreatedAt:  a.CreatedAt.Format(timeFormat),
	}
}
