package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the caller did not provide one.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Partner represents a business partner (supplier and/or customer)
type Partner struct {
	BaseModel
	Name        string `gorm:"type:varchar(200);not null;index"`
	TaxNumber   string `gorm:"type:varchar(20);column:tax_number;index"`
	CountryCode string `gorm:"type:varchar(2);not null;default:'HU';column:country_code"`
	Address     string `gorm:"type:varchar(500)"`
	City        string `gorm:"type:varchar(100)"`
	PostalCode  string `gorm:"type:varchar(20);column:postal_code"`
	Email       string `gorm:"type:varchar(255)"`
	Phone       string `gorm:"type:varchar(50)"`
	IsSupplier  bool   `gorm:"not null;default:false;column:is_supplier;index"`
	IsCustomer  bool   `gorm:"not null;default:false;column:is_customer;index"`
	Notes       string `gorm:"type:text"`
	IsActive    bool   `gorm:"not null;default:true;column:is_active"`
}

// OpportunityStage represents the stage of a CRM opportunity
type OpportunityStage string

const (
	OpportunityStageOpen OpportunityStage = "open"
	OpportunityStageWon  OpportunityStage = "won"
	OpportunityStageLost OpportunityStage = "lost"
)

// IsValid checks if the OpportunityStage is a valid enum value
func (s OpportunityStage) IsValid() bool {
	switch s {
	case OpportunityStageOpen, OpportunityStageWon, OpportunityStageLost:
		return true
	}
	return false
}

// Opportunity represents a sales opportunity in the CRM pipeline
type Opportunity struct {
	BaseModel
	Name              string           `gorm:"type:varchar(200);not null"`
	PartnerID         *uuid.UUID       `gorm:"type:uuid;index;column:partner_id"`
	Partner           *Partner         `gorm:"foreignKey:PartnerID"`
	Ertek             float64          `gorm:"type:decimal(15,2);not null;default:0;column:ertek"`
	Valoszinuseg      int              `gorm:"type:int;not null;default:0;column:valoszinuseg"`
	Currency          string           `gorm:"type:varchar(3);not null;default:'HUF'"`
	ExpectedCloseDate *time.Time       `gorm:"type:date;column:expected_close_date"`
	Stage             OpportunityStage `gorm:"type:varchar(20);not null;default:'open';index"`
	OwnerID           string           `gorm:"type:varchar(100);column:owner_id"`
	OwnerName         string           `gorm:"type:varchar(200);column:owner_name"`
	Notes             string           `gorm:"type:text"`
}

// WeightedValue returns the probability-weighted value of the opportunity.
func (o *Opportunity) WeightedValue() float64 {
	return o.Ertek * float64(o.Valoszinuseg) / 100.0
}

// ReturnStatus represents the lifecycle status of a goods return
type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "PENDING"
	ReturnStatusApproved  ReturnStatus = "APPROVED"
	ReturnStatusCompleted ReturnStatus = "COMPLETED"
	ReturnStatusRejected  ReturnStatus = "REJECTED"
)

// IsValid checks if the ReturnStatus is a valid enum value
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusPending, ReturnStatusApproved, ReturnStatusCompleted, ReturnStatusRejected:
		return true
	}
	return false
}

// Return represents a goods return (visszáru) from a customer
type Return struct {
	BaseModel
	OrderNumber     string       `gorm:"type:varchar(50);column:order_number;index"`
	PartnerID       *uuid.UUID   `gorm:"type:uuid;index;column:partner_id"`
	Partner         *Partner     `gorm:"foreignKey:PartnerID"`
	WarehouseCode   string       `gorm:"type:varchar(20);not null;column:warehouse_code;index"`
	ProductCode     string       `gorm:"type:varchar(50);not null;column:product_code;index"`
	Mennyiseg       float64      `gorm:"type:decimal(15,3);not null;column:mennyiseg"`
	Ok              string       `gorm:"type:varchar(50);not null;column:ok"`
	Notes           string       `gorm:"type:text"`
	Status          ReturnStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	RejectionReason string       `gorm:"type:varchar(500);column:rejection_reason"`
}

// IntrastatDirection represents the direction of an INTRASTAT declaration
type IntrastatDirection string

const (
	IntrastatDirectionDispatch IntrastatDirection = "kiszallitas"
	IntrastatDirectionArrival  IntrastatDirection = "beerkezes"
)

// IsValid checks if the IntrastatDirection is a valid enum value
func (d IntrastatDirection) IsValid() bool {
	switch d {
	case IntrastatDirectionDispatch, IntrastatDirectionArrival:
		return true
	}
	return false
}

// IntrastatStatus represents the lifecycle status of an INTRASTAT declaration
type IntrastatStatus string

const (
	IntrastatStatusOpen      IntrastatStatus = "NYITOTT"
	IntrastatStatusReady     IntrastatStatus = "KULDESRE_KESZ"
	IntrastatStatusSent      IntrastatStatus = "KULDOTT"
	IntrastatStatusConfirmed IntrastatStatus = "VISSZAIGAZOLT"
)

// IsValid checks if the IntrastatStatus is a valid enum value
func (s IntrastatStatus) IsValid() bool {
	switch s {
	case IntrastatStatusOpen, IntrastatStatusReady, IntrastatStatusSent, IntrastatStatusConfirmed:
		return true
	}
	return false
}

// IntrastatDeclaration represents a monthly INTRASTAT declaration towards KSH/NAV.
// One declaration exists per (ev, honap, direction).
type IntrastatDeclaration struct {
	BaseModel
	Ev        int                `gorm:"type:int;not null;column:ev;uniqueIndex:idx_intrastat_period"`
	Honap     int                `gorm:"type:int;not null;column:honap;uniqueIndex:idx_intrastat_period"`
	Direction IntrastatDirection `gorm:"type:varchar(20);not null;uniqueIndex:idx_intrastat_period"`
	Status    IntrastatStatus    `gorm:"type:varchar(20);not null;default:'NYITOTT';index"`
	Notes     string             `gorm:"type:text"`
	Items     []IntrastatItem    `gorm:"foreignKey:DeclarationID;constraint:OnDelete:CASCADE"`
}

// IntrastatItem represents one commodity line of a declaration
type IntrastatItem struct {
	BaseModel
	DeclarationID     uuid.UUID `gorm:"type:uuid;not null;index;column:declaration_id"`
	PartnerOrszagKod  string    `gorm:"type:varchar(2);not null;column:partner_orszag_kod"`
	Tarifaszam        string    `gorm:"type:varchar(10);not null;column:tarifaszam"`
	StatisztikaiErtek float64   `gorm:"type:decimal(15,2);not null;column:statisztikai_ertek"`
	SzamlazottOsszeg  float64   `gorm:"type:decimal(15,2);not null;column:szamlazott_osszeg"`
	NettoSuly         float64   `gorm:"type:decimal(15,3);not null;column:netto_suly"`
	Mennyiseg         float64   `gorm:"type:decimal(15,3);not null;column:mennyiseg"`
	UgyletKod         string    `gorm:"type:varchar(2);column:ugylet_kod"`
	SzallitasiMod     string    `gorm:"type:varchar(2);column:szallitasi_mod"`
}

// DocumentStatus represents the OCR processing status of a document
type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "FELTOLTOTT"
	DocumentStatusProcessing DocumentStatus = "OCR_FOLYAMATBAN"
	DocumentStatusProcessed  DocumentStatus = "FELDOLGOZOTT"
	DocumentStatusFailed     DocumentStatus = "OCR_SIKERTELEN"
)

// IsValid checks if the DocumentStatus is a valid enum value
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusUploaded, DocumentStatusProcessing, DocumentStatusProcessed, DocumentStatusFailed:
		return true
	}
	return false
}

// Document represents an uploaded file tracked through OCR processing
type Document struct {
	BaseModel
	FileName      string         `gorm:"type:varchar(255);not null;column:file_name"`
	ContentType   string         `gorm:"type:varchar(100);not null;column:content_type"`
	Size          int64          `gorm:"not null"`
	StoragePath   string         `gorm:"type:varchar(500);not null;column:storage_path"`
	Kind          string         `gorm:"type:varchar(50);index"`
	PartnerID     *uuid.UUID     `gorm:"type:uuid;index;column:partner_id"`
	Partner       *Partner       `gorm:"foreignKey:PartnerID"`
	Status        DocumentStatus `gorm:"type:varchar(20);not null;default:'FELTOLTOTT';index"`
	OcrJobID      string         `gorm:"type:varchar(100);column:ocr_job_id"`
	OcrAttempts   int            `gorm:"type:int;not null;default:0;column:ocr_attempts"`
	ExtractedText string         `gorm:"type:text;column:extracted_text"`
	UploadedByID  string         `gorm:"type:varchar(100);column:uploaded_by_id"`
}

// ReservationStatus represents the lifecycle status of a stock reservation
type ReservationStatus string

const (
	ReservationStatusReserved  ReservationStatus = "FOGLALT"
	ReservationStatusFulfilled ReservationStatus = "TELJESITETT"
	ReservationStatusReleased  ReservationStatus = "FELOLDOTT"
)

// IsValid checks if the ReservationStatus is a valid enum value
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationStatusReserved, ReservationStatusFulfilled, ReservationStatusReleased:
		return true
	}
	return false
}

// StockLevel represents the on-hand quantity of a product in a warehouse
type StockLevel struct {
	BaseModel
	WarehouseCode string  `gorm:"type:varchar(20);not null;column:warehouse_code;uniqueIndex:idx_stock_wh_product"`
	ProductCode   string  `gorm:"type:varchar(50);not null;column:product_code;uniqueIndex:idx_stock_wh_product"`
	Quantity      float64 `gorm:"type:decimal(15,3);not null;default:0"`
}

// StockReservation represents a quantity reserved against a warehouse stock level
type StockReservation struct {
	BaseModel
	WarehouseCode string            `gorm:"type:varchar(20);not null;column:warehouse_code;index"`
	ProductCode   string            `gorm:"type:varchar(50);not null;column:product_code;index"`
	Mennyiseg     float64           `gorm:"type:decimal(15,3);not null;column:mennyiseg"`
	OrderNumber   string            `gorm:"type:varchar(50);column:order_number"`
	Status        ReservationStatus `gorm:"type:varchar(20);not null;default:'FOGLALT';index"`
	Notes         string            `gorm:"type:text"`
}

// ExpectedReceiptStatus represents the lifecycle status of an expected goods receipt
type ExpectedReceiptStatus string

const (
	ExpectedReceiptStatusExpected  ExpectedReceiptStatus = "VARHATO"
	ExpectedReceiptStatusReceived  ExpectedReceiptStatus = "BEERKEZETT"
	ExpectedReceiptStatusCancelled ExpectedReceiptStatus = "TOROLT"
)

// IsValid checks if the ExpectedReceiptStatus is a valid enum value
func (s ExpectedReceiptStatus) IsValid() bool {
	switch s {
	case ExpectedReceiptStatusExpected, ExpectedReceiptStatusReceived, ExpectedReceiptStatusCancelled:
		return true
	}
	return false
}

// ExpectedReceipt represents an inbound delivery announced by a supplier
type ExpectedReceipt struct {
	BaseModel
	PartnerID     *uuid.UUID            `gorm:"type:uuid;index;column:partner_id"`
	Partner       *Partner              `gorm:"foreignKey:PartnerID"`
	WarehouseCode string                `gorm:"type:varchar(20);not null;column:warehouse_code;index"`
	ExpectedDate  *time.Time            `gorm:"type:date;column:expected_date"`
	Status        ExpectedReceiptStatus `gorm:"type:varchar(20);not null;default:'VARHATO';index"`
	Notes         string                `gorm:"type:text"`
	Items         []ExpectedReceiptItem `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
}

// ExpectedReceiptItem represents one product line of an expected receipt
type ExpectedReceiptItem struct {
	BaseModel
	ReceiptID   uuid.UUID `gorm:"type:uuid;not null;index;column:receipt_id"`
	ProductCode string    `gorm:"type:varchar(50);not null;column:product_code"`
	Mennyiseg   float64   `gorm:"type:decimal(15,3);not null;column:mennyiseg"`
}

// PriceListStatus represents the lifecycle status of a price list
type PriceListStatus string

const (
	PriceListStatusActive   PriceListStatus = "ACTIVE"
	PriceListStatusArchived PriceListStatus = "ARCHIVED"
)

// IsValid checks if the PriceListStatus is a valid enum value
func (s PriceListStatus) IsValid() bool {
	switch s {
	case PriceListStatusActive, PriceListStatusArchived:
		return true
	}
	return false
}

// PriceList represents a named set of product prices
type PriceList struct {
	BaseModel
	Name      string          `gorm:"type:varchar(200);not null"`
	Currency  string          `gorm:"type:varchar(3);not null;default:'HUF'"`
	ValidFrom *time.Time      `gorm:"type:date;column:valid_from"`
	ValidTo   *time.Time      `gorm:"type:date;column:valid_to"`
	Status    PriceListStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Items     []PriceListItem `gorm:"foreignKey:PriceListID;constraint:OnDelete:CASCADE"`
	Suppliers []Partner       `gorm:"many2many:price_list_suppliers"`
}

// PriceListItem represents one priced product row of a price list
type PriceListItem struct {
	BaseModel
	PriceListID uuid.UUID `gorm:"type:uuid;not null;index;column:price_list_id"`
	ProductCode string    `gorm:"type:varchar(50);not null;column:product_code;index"`
	ProductName string    `gorm:"type:varchar(200);column:product_name"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);not null;column:unit_price"`
	Unit        string    `gorm:"type:varchar(20);not null;default:'db'"`
}

// WorkflowLog is the immutable per-transition history of a workflow entity.
// Rows are only ever inserted; there is no update or delete path.
type WorkflowLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	EntityType    string    `gorm:"type:varchar(50);not null;index:idx_workflow_entity;column:entity_type"`
	EntityID      uuid.UUID `gorm:"type:uuid;not null;index:idx_workflow_entity;column:entity_id"`
	OldStatus     string    `gorm:"type:varchar(50);column:old_status"`
	NewStatus     string    `gorm:"type:varchar(50);not null;column:new_status"`
	Note          string    `gorm:"type:varchar(500)"`
	ChangedByID   string    `gorm:"type:varchar(100);column:changed_by_id"`
	ChangedByName string    `gorm:"type:varchar(200);column:changed_by_name"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the caller did not provide one.
func (w *WorkflowLog) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// AuditAction represents the type of action recorded in the audit log
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

// AuditLog represents a request-level audit record of a mutating API call
type AuditLog struct {
	ID         uuid.UUID   `gorm:"type:uuid;primary_key"`
	UserID     string      `gorm:"type:varchar(100);not null;index;column:user_id"`
	UserName   string      `gorm:"type:varchar(200);column:user_name"`
	Action     AuditAction `gorm:"type:varchar(20);not null;index"`
	EntityType string      `gorm:"type:varchar(50);not null;index;column:entity_type"`
	EntityID   string      `gorm:"type:varchar(100);index;column:entity_id"`
	Method     string      `gorm:"type:varchar(10);not null"`
	Path       string      `gorm:"type:varchar(500);not null"`
	StatusCode int         `gorm:"type:int;not null;column:status_code"`
	IPAddress  string      `gorm:"type:varchar(45);column:ip_address"`
	RequestID  string      `gorm:"type:varchar(100);column:request_id"`
	CreatedAt  time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// BeforeCreate assigns an ID when the caller did not provide one.
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
