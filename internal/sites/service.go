// Package sites manages construction sites and the subcontractor registry.
package sites

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
	pkgerrors "github.com/mlevasseur/batisuivi-backend/pkg/errors"
	"github.com/mlevasseur/batisuivi-backend/pkg/pagination"
)

// CreateSiteInput captures a new site.
type CreateSiteInput struct {
	ClientName string `validate:"required"`
	Name       string `validate:"required"`
	Address    *string
}

// CreateSubcontractorInput captures a new subcontractor.
type CreateSubcontractorInput struct {
	Name  string `validate:"required"`
	Siret *string
}

// Service is the site surface.
type Service interface {
	Create(ctx context.Context, input CreateSiteInput) (*models.Site, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Site, error)
	List(ctx context.Context, params pagination.Params) ([]models.Site, string, error)
	CreateSubcontractor(ctx context.Context, input CreateSubcontractorInput) (*models.Subcontractor, error)
	GetSubcontractor(ctx context.Context, id uuid.UUID) (*models.Subcontractor, error)
	ListSubcontractors(ctx context.Context) ([]models.Subcontractor, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService wires the site service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("site repository required")
	}
	return &service{repo: repo, validate: validator.New()}, nil
}

func (s *service) Create(ctx context.Context, input CreateSiteInput) (*models.Site, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid site payload")
	}
	site := &models.Site{
		ClientName: input.ClientName,
		Name:       input.Name,
		Address:    input.Address,
	}
	if err := s.repo.Create(ctx, site); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create site")
	}
	return site, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "site id required")
	}
	site, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load site")
	}
	return site, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Site, string, error) {
	listed, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sites")
	}
	return listed, next, nil
}

func (s *service) CreateSubcontractor(ctx context.Context, input CreateSubcontractorInput) (*models.Subcontractor, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subcontractor payload")
	}
	subcontractor := &models.Subcontractor{
		Name:  input.Name,
		Siret: input.Siret,
	}
	if err := s.repo.CreateSubcontractor(ctx, subcontractor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subcontractor")
	}
	return subcontractor, nil
}

func (s *service) GetSubcontractor(ctx context.Context, id uuid.UUID) (*models.Subcontractor, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subcontractor id required")
	}
	subcontractor, err := s.repo.FindSubcontractorByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subcontractor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subcontractor")
	}
	return subcontractor, nil
}

func (s *service) ListSubcontractors(ctx context.Context) ([]models.Subcontractor, error) {
	listed, err := s.repo.ListSubcontractors(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subcontractors")
	}
	return listed, nil
}
