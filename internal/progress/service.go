// Package progress implements the progressive billing state engine: the
// numbered chain of progress snapshots (états d'avancement) accumulated
// against a contract, with carry-forward, finalize/reopen gating and
// lump-sum amendment integration.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
	"github.com/mlevasseur/batisuivi-backend/pkg/enums"
	pkgerrors "github.com/mlevasseur/batisuivi-backend/pkg/errors"
	"github.com/mlevasseur/batisuivi-backend/pkg/metrics"
	"github.com/mlevasseur/batisuivi-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the engine's snapshot surface. Every mutating operation runs as
// one transaction: the sequencing and latest-snapshot guards are re-read
// inside that transaction, which is what keeps two concurrent calls from
// both succeeding on the same (contract, track).
type Service interface {
	CreateNext(ctx context.Context, input CreateStateInput) (*models.ProgressState, error)
	Finalize(ctx context.Context, stateID uuid.UUID) (*models.ProgressState, error)
	Reopen(ctx context.Context, stateID uuid.UUID) (*models.ProgressState, error)
	IntegrateAmendment(ctx context.Context, input IntegrateAmendmentInput) (*models.Amendment, *models.ProgressState, error)
	IntegrateAmendmentTx(ctx context.Context, tx *gorm.DB, input IntegrateAmendmentInput) (*models.Amendment, *models.ProgressState, error)
	UpdateLine(ctx context.Context, stateID, lineID uuid.UUID, input UpdateLineInput) (*models.ProgressLine, error)
	UpdateAmendment(ctx context.Context, stateID, amendmentID uuid.UUID, input UpdateAmendmentInput) (*models.Amendment, error)
	Get(ctx context.Context, stateID uuid.UUID) (*StateDetail, error)
	List(ctx context.Context, contractID uuid.UUID, subcontractorID *uuid.UUID) ([]models.ProgressState, error)
	Summary(ctx context.Context, contractID uuid.UUID, subcontractorID *uuid.UUID) (*ContractSummary, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.EngineMetrics
}

// StateEvent is the payload shared by the snapshot lifecycle events.
type StateEvent struct {
	ProgressStateID uuid.UUID  `json:"progress_state_id"`
	ContractID      uuid.UUID  `json:"contract_id"`
	SubcontractorID *uuid.UUID `json:"subcontractor_id,omitempty"`
	SequenceNumber  int        `json:"sequence_number"`
}

// AmendmentEvent is emitted when an amendment lands in an open snapshot.
type AmendmentEvent struct {
	AmendmentID     uuid.UUID  `json:"amendment_id"`
	ProgressStateID uuid.UUID  `json:"progress_state_id"`
	ContractID      uuid.UUID  `json:"contract_id"`
	AmountHT        string     `json:"amount_ht"`
	SourceQuoteID   *uuid.UUID `json:"source_quote_id,omitempty"`
}

// NewService wires the progress engine with its dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, engineMetrics *metrics.EngineMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("progress repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outboxSvc,
		metrics: engineMetrics,
	}, nil
}

func (s *service) CreateNext(ctx context.Context, input CreateStateInput) (*models.ProgressState, error) {
	if input.ContractID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id required")
	}

	start := time.Now()
	var created *models.ProgressState
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		state, err := s.createNextTx(ctx, tx, input)
		if err != nil {
			return err
		}
		created = state
		return nil
	})
	s.observe(metrics.OpCreateState, start, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// createNextTx allocates the next sequence number and populates the snapshot
// inside the caller's transaction. Line sourcing priority: explicit payload,
// then contract base lines (first snapshot only), then a carry-forward copy
// of the previous snapshot. Amendments follow the same priority with an
// empty fallback.
func (s *service) createNextTx(ctx context.Context, tx *gorm.DB, input CreateStateInput) (*models.ProgressState, error) {
	repo := s.repo.WithTx(tx)

	contract, err := repo.FindContract(ctx, input.ContractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contract")
	}
	if !contract.Locked {
		return nil, ErrContractNotLocked
	}

	previous, err := repo.FindLatestState(ctx, input.ContractID, input.SubcontractorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest progress state")
	}
	if previous != nil && !previous.Finalized {
		return nil, ErrPreviousStateNotFinalized
	}

	sequence := 1
	if previous != nil {
		sequence = previous.SequenceNumber + 1
	}

	stateDate := input.StateDate
	if stateDate.IsZero() {
		stateDate = time.Now()
	}

	state := &models.ProgressState{
		ContractID:      input.ContractID,
		SubcontractorID: input.SubcontractorID,
		SequenceNumber:  sequence,
		StateDate:       stateDate,
		PeriodLabel:     input.PeriodLabel,
		Comments:        input.Comments,
	}

	switch {
	case len(input.Lines) > 0:
		var previousLines []models.ProgressLine
		if previous != nil {
			previousLines = previous.Lines
		}
		for _, in := range input.Lines {
			state.Lines = append(state.Lines, lineFromInput(in, previousLines))
		}
	case previous == nil:
		for _, cl := range contract.Lines {
			state.Lines = append(state.Lines, firstLineFromContract(cl))
		}
	default:
		for _, prev := range previous.Lines {
			state.Lines = append(state.Lines, nextLineFromPrevious(prev))
		}
	}

	switch {
	case len(input.Amendments) > 0:
		for _, in := range input.Amendments {
			state.Amendments = append(state.Amendments, amendmentFromInput(in))
		}
	case previous != nil:
		for _, prev := range previous.Amendments {
			state.Amendments = append(state.Amendments, nextAmendmentFromPrevious(prev))
		}
	}

	if err := repo.CreateState(ctx, state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create progress state")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventProgressStateCreated,
		AggregateType: enums.AggregateProgressState,
		AggregateID:   state.ID,
		Version:       1,
		Data: StateEvent{
			ProgressStateID: state.ID,
			ContractID:      state.ContractID,
			SubcontractorID: state.SubcontractorID,
			SequenceNumber:  state.SequenceNumber,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *service) Finalize(ctx context.Context, stateID uuid.UUID) (*models.ProgressState, error) {
	if stateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "progress state id required")
	}

	start := time.Now()
	var finalized *models.ProgressState
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		state, err := loadState(ctx, repo, stateID)
		if err != nil {
			return err
		}
		if state.Finalized {
			return ErrStateAlreadyFinalized
		}

		now := time.Now()
		state.Finalized = true
		state.FinalizedAt = &now
		if err := repo.SaveState(ctx, state); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize progress state")
		}

		finalized = state
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProgressStateFinalized,
			AggregateType: enums.AggregateProgressState,
			AggregateID:   state.ID,
			Version:       1,
			Data: StateEvent{
				ProgressStateID: state.ID,
				ContractID:      state.ContractID,
				SubcontractorID: state.SubcontractorID,
				SequenceNumber:  state.SequenceNumber,
			},
		})
	})
	s.observe(metrics.OpFinalizeState, start, err)
	if err != nil {
		return nil, err
	}
	return finalized, nil
}

func (s *service) Reopen(ctx context.Context, stateID uuid.UUID) (*models.ProgressState, error) {
	if stateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "progress state id required")
	}

	start := time.Now()
	var reopened *models.ProgressState
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		state, err := loadState(ctx, repo, stateID)
		if err != nil {
			return err
		}
		if !state.Finalized {
			return ErrStateNotFinalized
		}

		newer, err := repo.HasNewerState(ctx, *state)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check newer progress states")
		}
		if newer {
			return ErrCannotReopenNonLatestState
		}

		state.Finalized = false
		state.FinalizedAt = nil
		if err := repo.SaveState(ctx, state); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reopen progress state")
		}

		reopened = state
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProgressStateReopened,
			AggregateType: enums.AggregateProgressState,
			AggregateID:   state.ID,
			Version:       1,
			Data: StateEvent{
				ProgressStateID: state.ID,
				ContractID:      state.ContractID,
				SubcontractorID: state.SubcontractorID,
				SequenceNumber:  state.SequenceNumber,
			},
		})
	})
	s.observe(metrics.OpReopenState, start, err)
	if err != nil {
		return nil, err
	}
	return reopened, nil
}

func (s *service) IntegrateAmendment(ctx context.Context, input IntegrateAmendmentInput) (*models.Amendment, *models.ProgressState, error) {
	var (
		amendment *models.Amendment
		state     *models.ProgressState
	)
	start := time.Now()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		amendment, state, err = s.IntegrateAmendmentTx(ctx, tx, input)
		return err
	})
	s.observe(metrics.OpIntegrateAmendment, start, err)
	if err != nil {
		return nil, nil, err
	}
	return amendment, state, nil
}

// IntegrateAmendmentTx runs the integration inside the caller's transaction
// so quote conversion can commit the amendment and the quote status flip
// atomically. When no snapshot is open for the track, one is created first
// using the standard next-snapshot rules.
func (s *service) IntegrateAmendmentTx(ctx context.Context, tx *gorm.DB, input IntegrateAmendmentInput) (*models.Amendment, *models.ProgressState, error) {
	if input.ContractID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id required")
	}
	if input.Description == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "amendment description required")
	}

	repo := s.repo.WithTx(tx)
	state, err := repo.FindOpenState(ctx, input.ContractID, input.SubcontractorID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find open progress state")
	}
	if state == nil {
		state, err = s.createNextTx(ctx, tx, CreateStateInput{
			ContractID:      input.ContractID,
			SubcontractorID: input.SubcontractorID,
		})
		if err != nil {
			return nil, nil, err
		}
	}

	amendment := lumpSumAmendment(input.Description, input.AmountHT, input.SourceQuoteID)
	amendment.ProgressStateID = state.ID
	if err := repo.CreateAmendment(ctx, &amendment); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create amendment")
	}
	state.Amendments = append(state.Amendments, amendment)

	event := outbox.DomainEvent{
		EventType:     enums.EventAmendmentIntegrated,
		AggregateType: enums.AggregateProgressState,
		AggregateID:   state.ID,
		Version:       1,
		Data: AmendmentEvent{
			AmendmentID:     amendment.ID,
			ProgressStateID: state.ID,
			ContractID:      state.ContractID,
			AmountHT:        input.AmountHT.StringFixed(2),
			SourceQuoteID:   input.SourceQuoteID,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, nil, err
	}
	return &amendment, state, nil
}

func (s *service) UpdateLine(ctx context.Context, stateID, lineID uuid.UUID, input UpdateLineInput) (*models.ProgressLine, error) {
	if stateID == uuid.Nil || lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "progress state id and line id required")
	}

	var updated *models.ProgressLine
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		state, err := loadState(ctx, repo, stateID)
		if err != nil {
			return err
		}
		if state.Finalized {
			return ErrStateFinalized
		}

		var line *models.ProgressLine
		for i := range state.Lines {
			if state.Lines[i].ID == lineID {
				line = &state.Lines[i]
				break
			}
		}
		if line == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "progress line not found")
		}
		if line.Kind.IsHeading() {
			return pkgerrors.New(pkgerrors.CodeValidation, "title lines carry no quantities")
		}

		if input.CurrentQty != nil {
			line.CurrentQty = *input.CurrentQty
			line.CurrentAmount = line.UnitPrice.Mul(*input.CurrentQty).Round(2)
		}
		// Free-typed amounts win over the derived quantity*price value.
		if input.CurrentAmount != nil {
			line.CurrentAmount = *input.CurrentAmount
		}
		line.TotalQty = line.PreviousQty.Add(line.CurrentQty)
		line.TotalAmount = line.PreviousAmount.Add(line.CurrentAmount)

		if err := repo.SaveLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update progress line")
		}
		updated = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) UpdateAmendment(ctx context.Context, stateID, amendmentID uuid.UUID, input UpdateAmendmentInput) (*models.Amendment, error) {
	if stateID == uuid.Nil || amendmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "progress state id and amendment id required")
	}

	var updated *models.Amendment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		state, err := loadState(ctx, repo, stateID)
		if err != nil {
			return err
		}
		if state.Finalized {
			return ErrStateFinalized
		}

		var amendment *models.Amendment
		for i := range state.Amendments {
			if state.Amendments[i].ID == amendmentID {
				amendment = &state.Amendments[i]
				break
			}
		}
		if amendment == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "amendment not found")
		}

		if input.CurrentAmount != nil {
			amendment.CurrentAmount = *input.CurrentAmount
		}
		amendment.TotalQty = amendment.PreviousQty.Add(amendment.CurrentQty)
		amendment.TotalAmount = amendment.PreviousAmount.Add(amendment.CurrentAmount)

		if err := repo.SaveAmendment(ctx, amendment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update amendment")
		}
		updated = amendment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, stateID uuid.UUID) (*StateDetail, error) {
	if stateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "progress state id required")
	}
	state, err := loadState(ctx, s.repo, stateID)
	if err != nil {
		return nil, err
	}
	return &StateDetail{
		State:  *state,
		Totals: ComputeTotals(*state),
	}, nil
}

func (s *service) List(ctx context.Context, contractID uuid.UUID, subcontractorID *uuid.UUID) ([]models.ProgressState, error) {
	if contractID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id required")
	}
	states, err := s.repo.ListStates(ctx, contractID, subcontractorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list progress states")
	}
	return states, nil
}

func (s *service) Summary(ctx context.Context, contractID uuid.UUID, subcontractorID *uuid.UUID) (*ContractSummary, error) {
	if contractID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id required")
	}
	contract, err := s.repo.FindContract(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contract")
	}
	latest, err := s.repo.FindLatestState(ctx, contractID, subcontractorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest progress state")
	}
	count, err := s.repo.CountStates(ctx, contractID, subcontractorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count progress states")
	}
	summary := ComputeContractSummary(*contract, latest, int(count))
	return &summary, nil
}

func loadState(ctx context.Context, repo Repository, stateID uuid.UUID) (*models.ProgressState, error) {
	state, err := repo.FindStateByID(ctx, stateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "progress state not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load progress state")
	}
	return state, nil
}

func (s *service) observe(operation string, start time.Time, err error) {
	s.metrics.ObserveDuration(operation, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(operation)
		return
	}
	s.metrics.IncSuccess(operation)
}
