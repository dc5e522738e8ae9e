package service

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IntrastatExportService renders declarations in the NAV submission formats.
// Exports are only available once the declaration is closed for editing
// (KULDESRE_KESZ or KULDOTT).
type IntrastatExportService struct {
	intrastatRepo *repository.IntrastatRepository
	logger        *zap.Logger
}

// NewIntrastatExportService creates a new export service
func NewIntrastatExportService(intrastatRepo *repository.IntrastatRepository, logger *zap.Logger) *IntrastatExportService {
	return &IntrastatExportService{
		intrastatRepo: intrastatRepo,
		logger:        logger,
	}
}

// ExportFile is a rendered declaration ready for download
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportNAV renders the declaration in the NAV fixed-width text format. One
// header line is followed by one line per commodity item.
func (s *IntrastatExportService) ExportNAV(ctx context.Context, id uuid.UUID) (*ExportFile, error) {
	decl, err := s.exportableDeclaration(ctx, id)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	directionCode := "K"
	if decl.Direction == domain.IntrastatDirectionArrival {
		directionCode = "B"
	}

	// Header: record type, period, direction, item count
	fmt.Fprintf(&sb, "H%04d%02d%s%05d\r\n", decl.Ev, decl.Honap, directionCode, len(decl.Items))

	// Items: record type, country, tariff number, transaction and transport
	// codes, then the numeric fields as zero-padded integers.
	for _, item := range decl.Items {
		fmt.Fprintf(&sb, "T%-2s%-10s%-2s%-2s%013d%013d%013d%013d\r\n",
			item.PartnerOrszagKod,
			item.Tarifaszam,
			item.UgyletKod,
			item.SzallitasiMod,
			int64(item.StatisztikaiErtek*100),
			int64(item.SzamlazottOsszeg*100),
			int64(item.NettoSuly*1000),
			int64(item.Mennyiseg*1000),
		)
	}

	s.logger.Info("intrastat declaration exported",
		zap.String("declarationId", decl.ID.String()),
		zap.String("format", "nav"),
		zap.Int("items", len(decl.Items)),
	)

	return &ExportFile{
		FileName:    fmt.Sprintf("intrastat_%04d%02d_%s.txt", decl.Ev, decl.Honap, decl.Direction),
		ContentType: "text/plain; charset=utf-8",
		Data:        []byte(sb.String()),
	}, nil
}

type xmlDeclaration struct {
	XMLName   xml.Name  `xml:"IntrastatDeclaration"`
	Ev        int       `xml:"Ev"`
	Honap     int       `xml:"Honap"`
	Direction string    `xml:"Direction"`
	Items     []xmlItem `xml:"Items>Item"`
}

type xmlItem struct {
	PartnerOrszagKod  string  `xml:"PartnerOrszagKod"`
	Tarifaszam        string  `xml:"Tarifaszam"`
	StatisztikaiErtek float64 `xml:"StatisztikaiErtek"`
	SzamlazottOsszeg  float64 `xml:"SzamlazottOsszeg"`
	NettoSuly         float64 `xml:"NettoSuly"`
	Mennyiseg         float64 `xml:"Mennyiseg"`
	UgyletKod         string  `xml:"UgyletKod,omitempty"`
	SzallitasiMod     string  `xml:"SzallitasiMod,omitempty"`
}

// ExportXML renders the declaration as an XML document
func (s *IntrastatExportService) ExportXML(ctx context.Context, id uuid.UUID) (*ExportFile, error) {
	decl, err := s.exportableDeclaration(ctx, id)
	if err != nil {
		return nil, err
	}

	doc := xmlDeclaration{
		Ev:        decl.Ev,
		Honap:     decl.Honap,
		Direction: string(decl.Direction),
		Items:     make([]xmlItem, len(decl.Items)),
	}
	for i, item := range decl.Items {
		doc.Items[i] = xmlItem{
			PartnerOrszagKod:  item.PartnerOrszagKod,
			Tarifaszam:        item.Tarifaszam,
			StatisztikaiErtek: item.StatisztikaiErtek,
			SzamlazottOsszeg:  item.SzamlazottOsszeg,
			NettoSuly:         item.NettoSuly,
			Mennyiseg:         item.Mennyiseg,
			UgyletKod:         item.UgyletKod,
			SzallitasiMod:     item.SzallitasiMod,
		}
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render declaration xml: %w", err)
	}
	data = append([]byte(xml.Header), data...)

	s.logger.Info("intrastat declaration exported",
		zap.String("declarationId", decl.ID.String()),
		zap.String("format", "xml"),
		zap.Int("items", len(decl.Items)),
	)

	return &ExportFile{
		FileName:    fmt.Sprintf("intrastat_%04d%02d_%s.xml", decl.Ev, decl.Honap, decl.Direction),
		ContentType: "application/xml",
		Data:        data,
	}, nil
}

// exportableDeclaration loads a declaration with items and verifies its
// status allows exporting.
func (s *IntrastatExportService) exportableDeclaration(ctx context.Context, id uuid.UUID) (*domain.IntrastatDeclaration, error) {
	decl, err := s.intrastatRepo.GetByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get declaration: %w", err)
	}

	if decl.Status != domain.IntrastatStatusReady && decl.Status != domain.IntrastatStatusSent {
		return nil, fmt.Errorf("%w: declaration is %s", ErrExportNotReady, decl.Status)
	}
	return decl, nil
}
