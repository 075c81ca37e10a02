package sites

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
	"github.com/mlevasseur/batisuivi-backend/pkg/pagination"
)

// Repository manages persistence for sites and subcontractors.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, site *models.Site) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Site, error)
	List(ctx context.Context, params pagination.Params) ([]models.Site, string, error)
	CreateSubcontractor(ctx context.Context, subcontractor *models.Subcontractor) error
	FindSubcontractorByID(ctx context.Context, id uuid.UUID) (*models.Subcontractor, error)
	ListSubcontractors(ctx context.Context) ([]models.Subcontractor, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a site repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, site *models.Site) error {
	return r.db.WithContext(ctx).Create(site).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	var site models.Site
	err := r.db.WithContext(ctx).First(&site, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.Site, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var listed []models.Site
	if err := query.Find(&listed).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(listed) > limit {
		listed = listed[:limit]
		last := listed[len(listed)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return listed, next, nil
}

func (r *repository) CreateSubcontractor(ctx context.Context, subcontractor *models.Subcontractor) error {
	return r.db.WithContext(ctx).Create(subcontractor).Error
}

func (r *repository) FindSubcontractorByID(ctx context.Context, id uuid.UUID) (*models.Subcontractor, error) {
	var subcontractor models.Subcontractor
	err := r.db.WithContext(ctx).First(&subcontractor, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &subcontractor, nil
}

func (r *repository) ListSubcontractors(ctx context.Context) ([]models.Subcontractor, error) {
	var listed []models.Subcontractor
	err := r.db.WithContext(ctx).Order("name ASC").Find(&listed).Error
	if err != nil {
		return nil, err
	}
	return listed, nil
}
