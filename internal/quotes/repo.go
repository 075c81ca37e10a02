package quotes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
)

// Repository manages persistence for quotes and the contracts conversion
// creates. Contract creation lives here so the conversion transaction stays
// inside one repository binding.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quote *models.Quote) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	Save(ctx context.Context, quote *models.Quote) error
	List(ctx context.Context, siteID *uuid.UUID) ([]models.Quote, error)
	SiteExists(ctx context.Context, siteID uuid.UUID) (bool, error)
	FindMainContract(ctx context.Context, siteID uuid.UUID) (*models.Contract, error)
	CreateContract(ctx context.Context, contract *models.Contract) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a quote repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, quote *models.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) Save(ctx context.Context, quote *models.Quote) error {
	return r.db.WithContext(ctx).Model(quote).
		Select("status", "accepted_at", "converted_at", "converted_contract_id", "converted_progress_state_id").
		Updates(quote).Error
}

func (r *repository) List(ctx context.Context, siteID *uuid.UUID) ([]models.Quote, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if siteID != nil {
		query = query.Where("site_id = ?", *siteID)
	}
	var listed []models.Quote
	if err := query.Find(&listed).Error; err != nil {
		return nil, err
	}
	return listed, nil
}

func (r *repository) SiteExists(ctx context.Context, siteID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Site{}).
		Where("id = ?", siteID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindMainContract(ctx context.Context, siteID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND subcontractor_id IS NULL", siteID).
		Order("created_at ASC").
		First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

func (r *repository) CreateContract(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}
