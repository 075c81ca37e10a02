package contracts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
)

// Repository manages persistence for contracts and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, contract *models.Contract) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	Save(ctx context.Context, contract *models.Contract) error
	ListBySite(ctx context.Context, siteID uuid.UUID) ([]models.Contract, error)
	SiteExists(ctx context.Context, siteID uuid.UUID) (bool, error)
	SubcontractorExists(ctx context.Context, subcontractorID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a contract repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *repository) Save(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Model(contract).
		Select("locked", "locked_at").
		Updates(contract).Error
}

func (r *repository) ListBySite(ctx context.Context, siteID uuid.UUID) ([]models.Contract, error) {
	var listed []models.Contract
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("created_at ASC").
		Find(&listed).Error
	if err != nil {
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

func (r *repository) SubcontractorExists(ctx context.Context, subcontractorID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subcontractor{}).
		Where("id = ?", subcontractorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
