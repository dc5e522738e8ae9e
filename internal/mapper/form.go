package mapper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
)

// Form mapping for the form-flavoured endpoints. The SPA posts every form
// field as a string; these mappers convert that shape into a validated
// request DTO. They are pure functions: invalid input produces FieldErrors,
// never a panic, and no DTO is returned when any field fails.

// FieldErrors maps a form field name to its validation error message.
type FieldErrors map[string]string

const msgCountryCode = "must be an ISO 3166-1 alpha-2 country code"

var countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// OpportunityForm is the string-typed form payload of the opportunity editor.
type OpportunityForm struct {
	Name              string `json:"name"`
	PartnerID         string `json:"partnerId"`
	Ertek             string `json:"ertek"`
	Valoszinuseg      string `json:"valoszinuseg"`
	Currency          string `json:"currency"`
	ExpectedCloseDate string `json:"expectedCloseDate"`
	Stage             string `json:"stage"`
	Notes             string `json:"notes"`
}

// MapOpportunityForm converts an opportunity form to a create/update request.
func MapOpportunityForm(f OpportunityForm) (*domain.CreateOpportunityRequest, FieldErrors) {
	errs := FieldErrors{}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		errs["name"] = "required"
	}

	ertek := parseRequiredFloat(f.Ertek, "ertek", errs)
	if ertek < 0 {
		errs["ertek"] = "must not be negative"
	}

	valoszinuseg := parseRequiredInt(f.Valoszinuseg, "valoszinuseg", errs)
	if _, bad := errs["valoszinuseg"]; !bad && (valoszinuseg < 0 || valoszinuseg > 100) {
		errs["valoszinuseg"] = "must be between 0 and 100"
	}

	partnerID := parseOptionalUUID(f.PartnerID, "partnerId", errs)
	closeDate := parseOptionalDate(f.ExpectedCloseDate, "expectedCloseDate", errs)

	stage := domain.OpportunityStage(strings.TrimSpace(f.Stage))
	if stage != "" && !stage.IsValid() {
		errs["stage"] = "must be one of the allowed values"
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &domain.CreateOpportunityRequest{
		Name:              name,
		PartnerID:         partnerID,
		Ertek:             ertek,
		Valoszinuseg:      valoszinuseg,
		Currency:          strings.TrimSpace(f.Currency),
		ExpectedCloseDate: closeDate,
		Stage:             stage,
		Notes:             f.Notes,
	}, nil
}

// IntrastatItemForm is the string-typed form payload of the declaration item
// editor (also the shape of one imported row).
type IntrastatItemForm struct {
	PartnerOrszagKod  string `json:"partnerOrszagKod"`
	Tarifaszam        string `json:"tarifaszam"`
	StatisztikaiErtek string `json:"statisztikaiErtek"`
	SzamlazottOsszeg  string `json:"szamlazottOsszeg"`
	NettoSuly         string `json:"nettoSuly"`
	Mennyiseg         string `json:"mennyiseg"`
	UgyletKod         string `json:"ugyletKod"`
	SzallitasiMod     string `json:"szallitasiMod"`
}

// MapIntrastatItemForm converts an INTRASTAT item form to a create request.
func MapIntrastatItemForm(f IntrastatItemForm) (*domain.CreateIntrastatItemRequest, FieldErrors) {
	errs := FieldErrors{}

	country := strings.TrimSpace(f.PartnerOrszagKod)
	if !countryCodePattern.MatchString(country) {
		errs["partnerOrszagKod"] = msgCountryCode
	}

	tarifaszam := strings.TrimSpace(f.Tarifaszam)
	if tarifaszam == "" {
		errs["tarifaszam"] = "required"
	}

	statErtek := parseRequiredFloat(f.StatisztikaiErtek, "statisztikaiErtek", errs)
	szamlazott := parseRequiredFloat(f.SzamlazottOsszeg, "szamlazottOsszeg", errs)
	nettoSuly := parseRequiredFloat(f.NettoSuly, "nettoSuly", errs)
	mennyiseg := parseRequiredFloat(f.Mennyiseg, "mennyiseg", errs)

	for field, v := range map[string]float64{
		"statisztikaiErtek": statErtek,
		"szamlazottOsszeg":  szamlazott,
		"nettoSuly":         nettoSuly,
		"mennyiseg":         mennyiseg,
	} {
		if _, bad := errs[field]; !bad && v < 0 {
			errs[field] = "must not be negative"
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &domain.CreateIntrastatItemRequest{
		PartnerOrszagKod:  country,
		Tarifaszam:        tarifaszam,
		StatisztikaiErtek: statErtek,
		SzamlazottOsszeg:  szamlazott,
		NettoSuly:         nettoSuly,
		Mennyiseg:         mennyiseg,
		UgyletKod:         strings.TrimSpace(f.UgyletKod),
		SzallitasiMod:     strings.TrimSpace(f.SzallitasiMod),
	}, nil
}

// ReturnForm is the string-typed form payload of the goods return editor.
type ReturnForm struct {
	OrderNumber   string `json:"orderNumber"`
	PartnerID     string `json:"partnerId"`
	WarehouseCode string `json:"warehouseCode"`
	ProductCode   string `json:"productCode"`
	Mennyiseg     string `json:"mennyiseg"`
	Ok            string `json:"ok"`
	Notes         string `json:"notes"`
}

// MapReturnForm converts a goods return form to a create/update request.
func MapReturnForm(f ReturnForm) (*domain.CreateReturnRequest, FieldErrors) {
	errs := FieldErrors{}

	warehouse := strings.TrimSpace(f.WarehouseCode)
	if warehouse == "" {
		errs["warehouseCode"] = "required"
	}
	product := strings.TrimSpace(f.ProductCode)
	if product == "" {
		errs["productCode"] = "required"
	}
	ok := strings.TrimSpace(f.Ok)
	if ok == "" {
		errs["ok"] = "required"
	}

	mennyiseg := parseRequiredFloat(f.Mennyiseg, "mennyiseg", errs)
	if _, bad := errs["mennyiseg"]; !bad && mennyiseg <= 0 {
		errs["mennyiseg"] = "must be greater than zero"
	}

	partnerID := parseOptionalUUID(f.PartnerID, "partnerId", errs)

	if len(errs) > 0 {
		return nil, errs
	}

	return &domain.CreateReturnRequest{
		OrderNumber:   strings.TrimSpace(f.OrderNumber),
		PartnerID:     partnerID,
		WarehouseCode: warehouse,
		ProductCode:   product,
		Mennyiseg:     mennyiseg,
		Ok:            ok,
		Notes:         f.Notes,
	}, nil
}

// PriceListItemForm is the string-typed shape of one price list row, both in
// the item editor and in CSV import.
type PriceListItemForm struct {
	ProductCode string `json:"productCode"`
	ProductName string `json:"productName"`
	UnitPrice   string `json:"unitPrice"`
	Unit        string `json:"unit"`
}

// MapPriceListItemForm converts a price list item form to a create request.
func MapPriceListItemForm(f PriceListItemForm) (*domain.CreatePriceListItemRequest, FieldErrors) {
	errs := FieldErrors{}

	product := strings.TrimSpace(f.ProductCode)
	if product == "" {
		errs["productCode"] = "required"
	}

	price := parseRequiredFloat(f.UnitPrice, "unitPrice", errs)
	if _, bad := errs["unitPrice"]; !bad && price < 0 {
		errs["unitPrice"] = "must not be negative"
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &domain.CreatePriceListItemRequest{
		ProductCode: product,
		ProductName: strings.TrimSpace(f.ProductName),
		UnitPrice:   price,
		Unit:        strings.TrimSpace(f.Unit),
	}, nil
}

func parseRequiredFloat(raw, field string, errs FieldErrors) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		errs[field] = "required"
		return 0
	}
	// The SPA sends Hungarian locale decimals with a comma.
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		errs[field] = "must be a number"
		return 0
	}
	return v
}

func parseRequiredInt(raw, field string, errs FieldErrors) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		errs[field] = "required"
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		errs[field] = "must be an integer"
		return 0
	}
	return v
}

// parseOptionalUUID returns nil for an empty field so optional references are
// absent from the DTO instead of being empty strings.
func parseOptionalUUID(raw, field string, errs FieldErrors) *uuid.UUID {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		errs[field] = "must be a valid UUID"
		return nil
	}
	return &id
}

// parseOptionalDate returns nil for an empty field; non-empty values must be
// ISO 8601 dates.
func parseOptionalDate(raw, field string, errs FieldErrors) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateFormat, s); err != nil {
		errs[field] = "must be a date in YYYY-MM-DD format"
		return nil
	}
	return &s
}
