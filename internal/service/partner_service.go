package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/mapper"
	"github.com/merkur-erp/erp-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PartnerService handles business partner operations
type PartnerService struct {
	partnerRepo *repository.PartnerRepository
	logger      *zap.Logger
}

// NewPartnerService creates a new partner service
func NewPartnerService(partnerRepo *repository.PartnerRepository, logger *zap.Logger) *PartnerService {
	return &PartnerService{
		partnerRepo: partnerRepo,
		logger:      logger,
	}
}

// GetPartner retrieves a partner by ID
func (s *PartnerService) GetPartner(ctx context.Context, id uuid.UUID) (*domain.PartnerDTO, error) {
	partner, err := s.partnerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	dto := mapper.ToPartnerDTO(partner)
	return &dto, nil
}

// ListPartners retrieves partners matching the filter
func (s *PartnerService) ListPartners(ctx context.Context, filter *repository.PartnerFilter, skip, take int) (*domain.ListResponse[domain.PartnerDTO], error) {
	partners, total, err := s.partnerRepo.List(ctx, filter, skip, take)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}

	items := make([]domain.PartnerDTO, len(partners))
	for i := range partners {
		items[i] = mapper.ToPartnerDTO(&partners[i])
	}

	return &domain.ListResponse[domain.PartnerDTO]{Items: items, Total: total}, nil
}

// CreatePartner creates a new business partner
func (s *PartnerService) CreatePartner(ctx context.Context, req *domain.CreatePartnerRequest) (*domain.PartnerDTO, error) {
	partner := &domain.Partner{
		Name:        req.Name,
		TaxNumber:   req.TaxNumber,
		CountryCode: req.CountryCode,
		Address:     req.Address,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Email:       req.Email,
		Phone:       req.Phone,
		IsSupplier:  req.IsSupplier,
		IsCustomer:  req.IsCustomer,
		Notes:       req.Notes,
		IsActive:    true,
	}
	if partner.CountryCode == "" {
		partner.CountryCode = "HU"
	}

	if err := s.partnerRepo.Create(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to create partner: %w", err)
	}

	s.logger.Info("partner created",
		zap.String("partnerId", partner.ID.String()),
		zap.String("name", partner.Name),
	)

	dto := mapper.ToPartnerDTO(partner)
	return &dto, nil
}

// UpdatePartner updates an existing partner
func (s *PartnerService) UpdatePartner(ctx context.Context, id uuid.UUID, req *domain.UpdatePartnerRequest) (*domain.PartnerDTO, error) {
	partner, err := s.partnerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	partner.Name = req.Name
	partner.TaxNumber = req.TaxNumber
	if req.CountryCode != "" {
		partner.CountryCode = req.CountryCode
	}
	partner.Address = req.Address
	partner.City = req.City
	partner.PostalCode = req.PostalCode
	partner.Email = req.Email
	partner.Phone = req.Phone
	partner.IsSupplier = req.IsSupplier
	partner.IsCustomer = req.IsCustomer
	partner.Notes = req.Notes
	if req.IsActive != nil {
		partner.IsActive = *req.IsActive
	}

	if err := s.partnerRepo.Update(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to update partner: %w", err)
	}

	dto := mapper.ToPartnerDTO(partner)
	return &dto, nil
}

// DeletePartner removes a partner
func (s *PartnerService) DeletePartner(ctx context.Context, id uuid.UUID) error {
	if _, err := s.partnerRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get partner: %w", err)
	}

	if err := s.partnerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete partner: %w", err)
	}

	s.logger.Info("partner deleted", zap.String("partnerId", id.String()))
	return nil
}
