// Package contracts manages the priced line-item agreements progress
// snapshots are measured against. A contract is editable until it is
// locked; locking is one-way and is what opens it to snapshot creation.
package contracts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
	"github.com/mlevasseur/batisuivi-backend/pkg/enums"
	pkgerrors "github.com/mlevasseur/batisuivi-backend/pkg/errors"
)

// ErrContractAlreadyLocked rejects a second lock.
var ErrContractAlreadyLocked = pkgerrors.New(pkgerrors.CodeStateConflict, "contract is already locked")

// CreateContractInput captures a new contract with its ordered lines.
type CreateContractInput struct {
	SiteID          uuid.UUID `validate:"required"`
	SubcontractorID *uuid.UUID
	Reference       string              `validate:"required"`
	Lines           []ContractLineInput `validate:"required,min=1,dive"`
}

// ContractLineInput is one staged contract line.
type ContractLineInput struct {
	Position    int
	Kind        enums.LineKind `validate:"required"`
	ArticleCode *string
	Description string `validate:"required"`
	Unit        string
	UnitPrice   decimal.Decimal
	Quantity    decimal.Decimal
}

// Service is the contract surface.
type Service interface {
	Create(ctx context.Context, input CreateContractInput) (*models.Contract, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	ListBySite(ctx context.Context, siteID uuid.UUID) ([]models.Contract, error)
	Lock(ctx context.Context, id uuid.UUID) (*models.Contract, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService wires the contract service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contract repository required")
	}
	return &service{repo: repo, validate: validator.New()}, nil
}

func (s *service) Create(ctx context.Context, input CreateContractInput) (*models.Contract, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid contract payload")
	}

	exists, err := s.repo.SiteExists(ctx, input.SiteID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check site")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
	}
	if input.SubcontractorID != nil {
		exists, err := s.repo.SubcontractorExists(ctx, *input.SubcontractorID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check subcontractor")
		}
		if !exists {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subcontractor not found")
		}
	}

	contract := &models.Contract{
		SiteID:          input.SiteID,
		SubcontractorID: input.SubcontractorID,
		Reference:       input.Reference,
	}
	for _, in := range input.Lines {
		line := models.ContractLine{
			Position:    in.Position,
			Kind:        in.Kind,
			ArticleCode: in.ArticleCode,
			Description: in.Description,
			Unit:        in.Unit,
		}
		if !in.Kind.IsHeading() {
			line.UnitPrice = in.UnitPrice
			line.Quantity = in.Quantity
			line.Total = in.UnitPrice.Mul(in.Quantity).Round(2)
		}
		contract.Lines = append(contract.Lines, line)
	}

	if err := s.repo.Create(ctx, contract); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contract")
	}
	return contract, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return s.load(ctx, id)
}

func (s *service) ListBySite(ctx context.Context, siteID uuid.UUID) ([]models.Contract, error) {
	if siteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "site id required")
	}
	listed, err := s.repo.ListBySite(ctx, siteID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contracts")
	}
	return listed, nil
}

func (s *service) Lock(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	contract, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Locked {
		return nil, ErrContractAlreadyLocked
	}

	now := time.Now()
	contract.Locked = true
	contract.LockedAt = &now
	if err := s.repo.Save(ctx, contract); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock contract")
	}
	return contract, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id required")
	}
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contract")
	}
	return contract, nil
}
