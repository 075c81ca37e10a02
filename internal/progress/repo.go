package progress

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
)

// Repository manages persistence for progress snapshots and their rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindContract(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	FindStateByID(ctx context.Context, id uuid.UUID) (*models.ProgressState, error)
	FindLatestState(ctx context.Context, contractID uuid.UUID, subcontractorID *uuid.UUID) (*models.ProgressState, error)
	FindOpenState(ctx context.Context, contractID uuid.UUID, subcontractorID *uuid.UUID) (*models.ProgressState, error)
	HasNewerState(ctx context.Context, state models.ProgressState) (bool, error)
	CreateState(ctx context.Context, state *models.ProgressState) error
	SaveState(ctx context.Context, state *models.ProgressState) error
	SaveLine(ctx context.Context, line *models.ProgressLine) error
	SaveAmendment(ctx context.Context, amendment *models.Amendment) error
	CreateAmendment(ctx context.Context, amendment *models.Amendment) error
	ListStates(ctx context.Context, contractID uuid.UUID, subcontractorID *uuid.UUID) ([]models.ProgressState, error)
	CountStates(ctx context.Context, contractID uuid.UUID, subcontractorID *uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a progress repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *repository) FindStateByID(ctx context.Context, id uuid.UUID) (*models.ProgressState, error) {
	var state models.ProgressState
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Amendments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&state, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func trackScope(db *gorm.DB, contractID uuid.UUID, subcontractorID *uuid.UUID) *gorm.DB {
	db = db.Where("contract_id = ?", contractID)
	if subcontractorID == nil {
		return db.Where("subcontractor_id IS NULL")
	}
	return db.Where("subcontractor_id = ?", *subcontractorID)
}

func (r *repository) FindLatestState(ctx context.Context, contractID uuid.UUID, subcontractorID *uuid.UUID) (*models.ProgressState, error) {
	var state models.ProgressState
	err := trackScope(r.db.WithContext(ctx), contractID, subcontractorID).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Amendments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Order("sequence_number DESC").
		First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *repository) FindOpenState(ctx context.Context, contractID uuid.UUID, subcontractorID *uuid.UUID) (*models.ProgressState, error) {
	var state models.ProgressState
	err := trackScope(r.db.WithContext(ctx), contractID, subcontractorID).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Amendments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("finalized = ?", false).
		First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *repository) HasNewerState(ctx context.Context, state models.ProgressState) (bool, error) {
	var count int64
	err := trackScope(r.db.WithContext(ctx).Model(&models.ProgressState{}), state.ContractID, state.SubcontractorID).
		Where("sequence_number > ?", state.SequenceNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CreateState(ctx context.Context, state *models.ProgressState) error {
	return r.db.WithContext(ctx).Create(state).Error
}

func (r *repository) SaveState(ctx context.Context, state *models.ProgressState) error {
	return r.db.WithContext(ctx).Model(state).
		Select("finalized", "finalized_at", "comments", "period_label", "state_date").
		Updates(state).Error
}

func (r *repository) SaveLine(ctx context.Context, line *models.ProgressLine) error {
	return r.db.WithContext(ctx).Model(line).
		Select("current_qty", "total_qty", "current_amount", "total_amount").
		Updates(line).Error
}

func (r *repository) SaveAmendment(ctx context.Context, amendment *models.Amendment) error {
	return r.db.WithContext(ctx).Model(amendment).
		Select("current_qty", "total_qty", "current_amount", "total_amount").
		Updates(amendment).Error
}

func (r *repository) CreateAmendment(ctx context.Context, amendment *models.Amendment) error {
	return r.db.WithContext(ctx).Create(amendment).Error
}

func (r *repository) ListStates(ctx context.Context, contractID uuid.UUID, subcontractorID *uuid.UUID) ([]models.ProgressState, error) {
	var states []models.ProgressState
	err := trackScope(r.db.WithContext(ctx), contractID, subcontractorID).
		Order("sequence_number ASC").
		Find(&states).Error
	if err != nil {
		return nil, err
	}
	return states, nil
}

func (r *repository) CountStates(ctx context.Context, contractID uuid.UUID, subcontractorID *uuid.UUID) (int64, error) {
	var count int64
	err := trackScope(r.db.WithContext(ctx).Model(&models.ProgressState{}), contractID, subcontractorID).
		Count(&count).Error
	return count, err
}
