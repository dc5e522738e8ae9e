package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses. Timestamps are ISO 8601 strings; field names follow
// the wire contract of the Merkur SPA (Hungarian domain terms kept as-is).

// ListResponse is the standard list envelope for every collection endpoint.
type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// WorkflowLogDTO represents one immutable status-transition record
type WorkflowLogDTO struct {
	ID            uuid.UUID `json:"id"`
	EntityType    string    `json:"entityType"`
	EntityID      uuid.UUID `json:"entityId"`
	OldStatus     string    `json:"oldStatus,omitempty"`
	NewStatus     string    `json:"newStatus"`
	Note          string    `json:"note,omitempty"`
	ChangedByID   string    `json:"changedById,omitempty"`
	ChangedByName string    `json:"changedByName,omitempty"`
	CreatedAt     string    `json:"createdAt"` // ISO 8601
}

type PartnerDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	TaxNumber   string    `json:"taxNumber,omitempty"`
	CountryCode string    `json:"countryCode"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	PostalCode  string    `json:"postalCode,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	IsSupplier  bool      `json:"isSupplier"`
	IsCustomer  bool      `json:"isCustomer"`
	Notes       string    `json:"notes,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   string    `json:"createdAt"` // ISO 8601
	UpdatedAt   string    `json:"updatedAt"` // ISO 8601
}

type CreatePartnerRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	TaxNumber   string `json:"taxNumber,omitempty" validate:"max=20"`
	CountryCode string `json:"countryCode,omitempty" validate:"omitempty,len=2"`
	Address     string `json:"address,omitempty" validate:"max=500"`
	City        string `json:"city,omitempty" validate:"max=100"`
	PostalCode  string `json:"postalCode,omitempty" validate:"max=20"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `json:"phone,omitempty" validate:"max=50"`
	IsSupplier  bool   `json:"isSupplier"`
	IsCustomer  bool   `json:"isCustomer"`
	Notes       string `json:"notes,omitempty"`
}

type UpdatePartnerRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	TaxNumber   string `json:"taxNumber,omitempty" validate:"max=20"`
	CountryCode string `json:"countryCode,omitempty" validate:"omitempty,len=2"`
	Address     string `json:"address,omitempty" validate:"max=500"`
	City        string `json:"city,omitempty" validate:"max=100"`
	PostalCode  string `json:"postalCode,omitempty" validate:"max=20"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `json:"phone,omitempty" validate:"max=50"`
	IsSupplier  bool   `json:"isSupplier"`
	IsCustomer  bool   `json:"isCustomer"`
	Notes       string `json:"notes,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

type OpportunityDTO struct {
	ID                uuid.UUID        `json:"id"`
	Name              string           `json:"name"`
	PartnerID         *uuid.UUID       `json:"partnerId,omitempty"`
	PartnerName       string           `json:"partnerName,omitempty"`
	Ertek             float64          `json:"ertek"`
	Valoszinuseg      int              `json:"valoszinuseg"`
	WeightedValue     float64          `json:"weightedValue"`
	Currency          string           `json:"currency"`
	ExpectedCloseDate *string          `json:"expectedCloseDate,omitempty"` // ISO 8601 date
	Stage             OpportunityStage `json:"stage"`
	OwnerID           string           `json:"ownerId,omitempty"`
	OwnerName         string           `json:"ownerName,omitempty"`
	Notes             string           `json:"notes,omitempty"`
	CreatedAt         string           `json:"createdAt"` // ISO 8601
	UpdatedAt         string           `json:"updatedAt"` // ISO 8601
}

type CreateOpportunityRequest struct {
	Name              string           `json:"name" validate:"required,max=200"`
	PartnerID         *uuid.UUID       `json:"partnerId,omitempty"`
	Ertek             float64          `json:"ertek" validate:"gte=0"`
	Valoszinuseg      int              `json:"valoszinuseg" validate:"gte=0,lte=100"`
	Currency          string           `json:"currency,omitempty" validate:"omitempty,len=3"`
	ExpectedCloseDate *string          `json:"expectedCloseDate,omitempty"`
	Stage             OpportunityStage `json:"stage,omitempty"`
	Notes             string           `json:"notes,omitempty"`
}

type UpdateOpportunityRequest struct {
	Name              string           `json:"name" validate:"required,max=200"`
	PartnerID         *uuid.UUID       `json:"partnerId,omitempty"`
	Ertek             float64          `json:"ertek" validate:"gte=0"`
	Valoszinuseg      int              `json:"valoszinuseg" validate:"gte=0,lte=100"`
	Currency          string           `json:"currency,omitempty" validate:"omitempty,len=3"`
	ExpectedCloseDate *string          `json:"expectedCloseDate,omitempty"`
	Stage             OpportunityStage `json:"stage,omitempty"`
	Notes             string           `json:"notes,omitempty"`
}

// PipelineSummaryDTO aggregates open opportunities weighted by probability
type PipelineSummaryDTO struct {
	OpenCount     int     `json:"openCount"`
	TotalValue    float64 `json:"totalValue"`
	WeightedValue float64 `json:"weightedValue"`
	WonCount      int     `json:"wonCount"`
	LostCount     int     `json:"lostCount"`
}

type ReturnDTO struct {
	ID              uuid.UUID        `json:"id"`
	OrderNumber     string           `json:"orderNumber,omitempty"`
	PartnerID       *uuid.UUID       `json:"partnerId,omitempty"`
	PartnerName     string           `json:"partnerName,omitempty"`
	WarehouseCode   string           `json:"warehouseCode"`
	ProductCode     string           `json:"productCode"`
	Mennyiseg       float64          `json:"mennyiseg"`
	Ok              string           `json:"ok"`
	Notes           string           `json:"notes,omitempty"`
	Status          ReturnStatus     `json:"status"`
	RejectionReason string           `json:"rejectionReason,omitempty"`
	WorkflowLog     []WorkflowLogDTO `json:"workflowLog,omitempty"`
	CreatedAt       string           `json:"createdAt"` // ISO 8601
	UpdatedAt       string           `json:"updatedAt"` // ISO 8601
}

type CreateReturnRequest struct {
	OrderNumber   string     `json:"orderNumber,omitempty" validate:"max=50"`
	PartnerID     *uuid.UUID `json:"partnerId,omitempty"`
	WarehouseCode string     `json:"warehouseCode" validate:"required,max=20"`
	ProductCode   string     `json:"productCode" validate:"required,max=50"`
	Mennyiseg     float64    `json:"mennyiseg" validate:"required,gt=0"`
	Ok            string     `json:"ok" validate:"required,max=50"`
	Notes         string     `json:"notes,omitempty"`
}

type UpdateReturnRequest struct {
	OrderNumber   string     `json:"orderNumber,omitempty" validate:"max=50"`
	PartnerID     *uuid.UUID `json:"partnerId,omitempty"`
	WarehouseCode string     `json:"warehouseCode" validate:"required,max=20"`
	ProductCode   string     `json:"productCode" validate:"required,max=50"`
	Mennyiseg     float64    `json:"mennyiseg" validate:"required,gt=0"`
	Ok            string     `json:"ok" validate:"required,max=50"`
	Notes         string     `json:"notes,omitempty"`
}

// RejectReturnRequest carries the mandatory rejection reason
type RejectReturnRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type IntrastatDeclarationDTO struct {
	ID          uuid.UUID          `json:"id"`
	Ev          int                `json:"ev"`
	Honap       int                `json:"honap"`
	Direction   IntrastatDirection `json:"direction"`
	Status      IntrastatStatus    `json:"status"`
	Notes       string             `json:"notes,omitempty"`
	ItemCount   int                `json:"itemCount"`
	Items       []IntrastatItemDTO `json:"items,omitempty"`
	WorkflowLog []WorkflowLogDTO   `json:"workflowLog,omitempty"`
	CreatedAt   string             `json:"createdAt"` // ISO 8601
	UpdatedAt   string             `json:"updatedAt"` // ISO 8601
}

type IntrastatItemDTO struct {
	ID                uuid.UUID `json:"id"`
	DeclarationID     uuid.UUID `json:"declarationId"`
	PartnerOrszagKod  string    `json:"partnerOrszagKod"`
	Tarifaszam        string    `json:"tarifaszam"`
	StatisztikaiErtek float64   `json:"statisztikaiErtek"`
	SzamlazottOsszeg  float64   `json:"szamlazottOsszeg"`
	NettoSuly         float64   `json:"nettoSuly"`
	Mennyiseg         float64   `json:"mennyiseg"`
	UgyletKod         string    `json:"ugyletKod,omitempty"`
	SzallitasiMod     string    `json:"szallitasiMod,omitempty"`
	CreatedAt         string    `json:"createdAt"` // ISO 8601
	UpdatedAt         string    `json:"updatedAt"` // ISO 8601
}

type CreateIntrastatDeclarationRequest struct {
	Ev        int                `json:"ev" validate:"required,gte=2000,lte=2100"`
	Honap     int                `json:"honap" validate:"required,gte=1,lte=12"`
	Direction IntrastatDirection `json:"direction" validate:"required"`
	Notes     string             `json:"notes,omitempty"`
}

type CreateIntrastatItemRequest struct {
	PartnerOrszagKod  string  `json:"partnerOrszagKod" validate:"required,iso3166_1_alpha2"`
	Tarifaszam        string  `json:"tarifaszam" validate:"required,max=10"`
	StatisztikaiErtek float64 `json:"statisztikaiErtek" validate:"gte=0"`
	SzamlazottOsszeg  float64 `json:"szamlazottOsszeg" validate:"gte=0"`
	NettoSuly         float64 `json:"nettoSuly" validate:"gte=0"`
	Mennyiseg         float64 `json:"mennyiseg" validate:"gte=0"`
	UgyletKod         string  `json:"ugyletKod,omitempty" validate:"max=2"`
	SzallitasiMod     string  `json:"szallitasiMod,omitempty" validate:"max=2"`
}

// IntrastatSummaryDTO aggregates the item lines of one declaration
type IntrastatSummaryDTO struct {
	DeclarationID          uuid.UUID       `json:"declarationId"`
	Ev                     int             `json:"ev"`
	Honap                  int             `json:"honap"`
	Status                 IntrastatStatus `json:"status"`
	ItemCount              int             `json:"itemCount"`
	TotalStatisztikaiErtek float64         `json:"totalStatisztikaiErtek"`
	TotalSzamlazottOsszeg  float64         `json:"totalSzamlazottOsszeg"`
	TotalNettoSuly         float64         `json:"totalNettoSuly"`
}

type DocumentDTO struct {
	ID            uuid.UUID        `json:"id"`
	FileName      string           `json:"fileName"`
	ContentType   string           `json:"contentType"`
	Size          int64            `json:"size"`
	Kind          string           `json:"kind,omitempty"`
	PartnerID     *uuid.UUID       `json:"partnerId,omitempty"`
	PartnerName   string           `json:"partnerName,omitempty"`
	Status        DocumentStatus   `json:"status"`
	OcrAttempts   int              `json:"ocrAttempts"`
	ExtractedText string           `json:"extractedText,omitempty"`
	UploadedByID  string           `json:"uploadedById,omitempty"`
	WorkflowLog   []WorkflowLogDTO `json:"workflowLog,omitempty"`
	CreatedAt     string           `json:"createdAt"` // ISO 8601
	UpdatedAt     string           `json:"updatedAt"` // ISO 8601
}

type StockLevelDTO struct {
	ID            uuid.UUID `json:"id"`
	WarehouseCode string    `json:"warehouseCode"`
	ProductCode   string    `json:"productCode"`
	Quantity      float64   `json:"quantity"`
	UpdatedAt     string    `json:"updatedAt"` // ISO 8601
}

type StockReservationDTO struct {
	ID            uuid.UUID         `json:"id"`
	WarehouseCode string            `json:"warehouseCode"`
	ProductCode   string            `json:"productCode"`
	Mennyiseg     float64           `json:"mennyiseg"`
	OrderNumber   string            `json:"orderNumber,omitempty"`
	Status        ReservationStatus `json:"status"`
	Notes         string            `json:"notes,omitempty"`
	WorkflowLog   []WorkflowLogDTO  `json:"workflowLog,omitempty"`
	CreatedAt     string            `json:"createdAt"` // ISO 8601
	UpdatedAt     string            `json:"updatedAt"` // ISO 8601
}

type CreateStockReservationRequest struct {
	WarehouseCode string  `json:"warehouseCode" validate:"required,max=20"`
	ProductCode   string  `json:"productCode" validate:"required,max=50"`
	Mennyiseg     float64 `json:"mennyiseg" validate:"required,gt=0"`
	OrderNumber   string  `json:"orderNumber,omitempty" validate:"max=50"`
	Notes         string  `json:"notes,omitempty"`
}

type ExpectedReceiptDTO struct {
	ID            uuid.UUID                `json:"id"`
	PartnerID     *uuid.UUID               `json:"partnerId,omitempty"`
	PartnerName   string                   `json:"partnerName,omitempty"`
	WarehouseCode string                   `json:"warehouseCode"`
	ExpectedDate  *string                  `json:"expectedDate,omitempty"` // ISO 8601 date
	Status        ExpectedReceiptStatus    `json:"status"`
	Notes         string                   `json:"notes,omitempty"`
	Items         []ExpectedReceiptItemDTO `json:"items"`
	WorkflowLog   []WorkflowLogDTO         `json:"workflowLog,omitempty"`
	CreatedAt     string                   `json:"createdAt"` // ISO 8601
	UpdatedAt     string                   `json:"updatedAt"` // ISO 8601
}

type ExpectedReceiptItemDTO struct {
	ID          uuid.UUID `json:"id"`
	ReceiptID   uuid.UUID `json:"receiptId"`
	ProductCode string    `json:"productCode"`
	Mennyiseg   float64   `json:"mennyiseg"`
}

type CreateExpectedReceiptRequest struct {
	PartnerID     *uuid.UUID                         `json:"partnerId,omitempty"`
	WarehouseCode string                             `json:"warehouseCode" validate:"required,max=20"`
	ExpectedDate  *string                            `json:"expectedDate,omitempty"`
	Notes         string                             `json:"notes,omitempty"`
	Items         []CreateExpectedReceiptItemRequest `json:"items,omitempty" validate:"dive"`
}

type CreateExpectedReceiptItemRequest struct {
	ProductCode string  `json:"productCode" validate:"required,max=50"`
	Mennyiseg   float64 `json:"mennyiseg" validate:"required,gt=0"`
}

type PriceListDTO struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Currency  string             `json:"currency"`
	ValidFrom *string            `json:"validFrom,omitempty"` // ISO 8601 date
	ValidTo   *string            `json:"validTo,omitempty"`   // ISO 8601 date
	Status    PriceListStatus    `json:"status"`
	ItemCount int                `json:"itemCount"`
	Items     []PriceListItemDTO `json:"items,omitempty"`
	Suppliers []PartnerDTO       `json:"suppliers,omitempty"`
	CreatedAt string             `json:"createdAt"` // ISO 8601
	UpdatedAt string             `json:"updatedAt"` // ISO 8601
}

type PriceListItemDTO struct {
	ID          uuid.UUID `json:"id"`
	PriceListID uuid.UUID `json:"priceListId"`
	ProductCode string    `json:"productCode"`
	ProductName string    `json:"productName,omitempty"`
	UnitPrice   float64   `json:"unitPrice"`
	Unit        string    `json:"unit"`
}

type CreatePriceListRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Currency  string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	ValidFrom *string `json:"validFrom,omitempty"`
	ValidTo   *string `json:"validTo,omitempty"`
}

type UpdatePriceListRequest struct {
	Name      string          `json:"name" validate:"required,max=200"`
	Currency  string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	ValidFrom *string         `json:"validFrom,omitempty"`
	ValidTo   *string         `json:"validTo,omitempty"`
	Status    PriceListStatus `json:"status,omitempty"`
}

type CreatePriceListItemRequest struct {
	ProductCode string  `json:"productCode" validate:"required,max=50"`
	ProductName string  `json:"productName,omitempty" validate:"max=200"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
	Unit        string  `json:"unit,omitempty" validate:"max=20"`
}

// PriceListImportResultDTO reports the outcome of a CSV item import
type PriceListImportResultDTO struct {
	Imported int                 `json:"imported"`
	Skipped  int                 `json:"skipped"`
	Errors   []ImportRowErrorDTO `json:"errors,omitempty"`
}

// ImportRowErrorDTO describes the validation failures of one rejected CSV row
type ImportRowErrorDTO struct {
	Row    int               `json:"row"`
	Errors map[string]string `json:"errors"`
}

// AuthUserDTO describes the authenticated caller as decoded from the token
type AuthUserDTO struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles"`
}

type AuditLogDTO struct {
	ID         uuid.UUID   `json:"id"`
	UserID     string      `json:"userId"`
	UserName   string      `json:"userName,omitempty"`
	Action     AuditAction `json:"action"`
	EntityType string      `json:"entityType"`
	EntityID   string      `json:"entityId,omitempty"`
	Method     string      `json:"method"`
	Path       string      `json:"path"`
	StatusCode int         `json:"statusCode"`
	IPAddress  string      `json:"ipAddress,omitempty"`
	RequestID  string      `json:"requestId,omitempty"`
	CreatedAt  string      `json:"createdAt"` // ISO 8601
}
