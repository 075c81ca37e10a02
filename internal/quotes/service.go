// Package quotes implements the quote (devis) lifecycle and the conversion
// engine that turns an accepted quote into either a locked contract or a
// lump-sum amendment on the site's main contract.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mlevasseur/batisuivi-backend/internal/progress"
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

type amendmentIntegrator interface {
	IntegrateAmendmentTx(ctx context.Context, tx *gorm.DB, input progress.IntegrateAmendmentInput) (*models.Amendment, *models.ProgressState, error)
}

// Service is the quote surface. Conversion is the only operation that
// crosses into the billing engine, and it does so inside a single
// transaction so the quote flip and its materialization commit together.
type Service interface {
	Create(ctx context.Context, input CreateQuoteInput) (*models.Quote, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, siteID *uuid.UUID) ([]models.Quote, error)
	Send(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	Accept(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	Convert(ctx context.Context, id uuid.UUID) (*ConversionResult, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	progress amendmentIntegrator
	outbox   outboxPublisher
	metrics  *metrics.EngineMetrics
	validate *validator.Validate
}

// QuoteConvertedEvent is emitted once per successful conversion.
type QuoteConvertedEvent struct {
	QuoteID         uuid.UUID       `json:"quote_id"`
	QuoteType       enums.QuoteType `json:"quote_type"`
	ContractID      *uuid.UUID      `json:"contract_id,omitempty"`
	ProgressStateID *uuid.UUID      `json:"progress_state_id,omitempty"`
}

// NewService wires the quote engine with its dependencies.
func NewService(repo Repository, tx txRunner, progressSvc amendmentIntegrator, outboxSvc outboxPublisher, engineMetrics *metrics.EngineMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if progressSvc == nil {
		return nil, fmt.Errorf("progress service required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		progress: progressSvc,
		outbox:   outboxSvc,
		metrics:  engineMetrics,
		validate: validator.New(),
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateQuoteInput) (*models.Quote, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quote payload")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid quote type")
	}
	if input.GlobalDiscountPct.IsNegative() || input.GlobalDiscountPct.GreaterThan(hundred) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "global discount must be between 0 and 100")
	}

	quote := &models.Quote{
		Number:            input.Number,
		Type:              input.Type,
		Status:            enums.QuoteStatusDraft,
		ClientName:        input.ClientName,
		SiteID:            input.SiteID,
		GlobalDiscountPct: input.GlobalDiscountPct,
	}
	for _, in := range input.Lines {
		line := models.QuoteLine{
			Position:    in.Position,
			Kind:        in.Kind,
			Description: in.Description,
			Unit:        in.Unit,
		}
		if !in.Kind.IsHeading() {
			if in.LineDiscountPct.IsNegative() || in.LineDiscountPct.GreaterThan(hundred) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "line discount must be between 0 and 100")
			}
			line.UnitPrice = in.UnitPrice
			line.Quantity = in.Quantity
			line.LineDiscountPct = in.LineDiscountPct
			line.Total = lineNetOfOwnDiscount(line)
		}
		quote.Lines = append(quote.Lines, line)
	}

	if err := s.repo.Create(ctx, quote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
	}
	return quote, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	return s.load(ctx, s.repo, id)
}

func (s *service) List(ctx context.Context, siteID *uuid.UUID) ([]models.Quote, error) {
	listed, err := s.repo.List(ctx, siteID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}
	return listed, nil
}

// Send marks a draft quote as sent to the client. Acceptance does not
// require it; a client can accept a quote handed over off-platform.
func (s *service) Send(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var sent *models.Quote
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		quote, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if quote.Status != enums.QuoteStatusDraft {
			return ErrQuoteNotDraft
		}

		quote.Status = enums.QuoteStatusSent
		if err := repo.Save(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send quote")
		}
		sent = quote
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sent, nil
}

func (s *service) Accept(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var accepted *models.Quote
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		quote, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		switch quote.Status {
		case enums.QuoteStatusConverted:
			return ErrQuoteAlreadyConverted
		case enums.QuoteStatusAccepted:
			return ErrQuoteAlreadyAccepted
		}

		now := time.Now()
		quote.Status = enums.QuoteStatusAccepted
		quote.AcceptedAt = &now
		if err := repo.Save(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept quote")
		}
		accepted = quote
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

func (s *service) Convert(ctx context.Context, id uuid.UUID) (*ConversionResult, error) {
	start := time.Now()
	var result *ConversionResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		quote, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if quote.Status == enums.QuoteStatusConverted {
			return ErrQuoteAlreadyConverted
		}
		if quote.Status != enums.QuoteStatusAccepted {
			return ErrQuoteNotAccepted
		}
		if quote.SiteID == nil {
			return ErrMissingSite
		}
		exists, err := repo.SiteExists(ctx, *quote.SiteID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check site")
		}
		if !exists {
			return ErrSiteNotFound
		}

		now := time.Now()
		quote.Status = enums.QuoteStatusConverted
		quote.ConvertedAt = &now

		switch quote.Type {
		case enums.QuoteTypeAmendment:
			if err := s.convertToAmendment(ctx, tx, repo, quote); err != nil {
				return err
			}
		default:
			if err := s.convertToContract(ctx, repo, quote, now); err != nil {
				return err
			}
		}

		if err := repo.Save(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark quote converted")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuoteConverted,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quote.ID,
			Version:       1,
			Data: QuoteConvertedEvent{
				QuoteID:         quote.ID,
				QuoteType:       quote.Type,
				ContractID:      quote.ConvertedContractID,
				ProgressStateID: quote.ConvertedProgressStateID,
			},
		}); err != nil {
			return err
		}

		result = &ConversionResult{
			Quote:           quote,
			ContractID:      quote.ConvertedContractID,
			ProgressStateID: quote.ConvertedProgressStateID,
		}
		return nil
	})
	s.observe(metrics.OpConvertQuote, start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// convertToContract materializes a base quote as a locked contract whose
// line prices already carry every discount, then records the link on the
// quote.
func (s *service) convertToContract(ctx context.Context, repo Repository, quote *models.Quote, now time.Time) error {
	priced := PriceLines(quote.Lines, quote.GlobalDiscountPct)

	contract := &models.Contract{
		SiteID:        *quote.SiteID,
		Reference:     quote.Number,
		Locked:        true,
		LockedAt:      &now,
		SourceQuoteID: &quote.ID,
	}
	for _, p := range priced {
		line := models.ContractLine{
			Position:    p.Line.Position,
			Kind:        p.Line.Kind,
			Description: p.Line.Description,
			Unit:        p.Line.Unit,
		}
		if !p.Line.Kind.IsHeading() {
			line.UnitPrice = p.NetUnitPrice
			line.Quantity = p.Line.Quantity
			line.Total = p.NetTotal
		}
		contract.Lines = append(contract.Lines, line)
	}

	if err := repo.CreateContract(ctx, contract); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contract from quote")
	}
	quote.ConvertedContractID = &contract.ID
	return nil
}

// convertToAmendment folds the quote's discounted total into the open
// snapshot of the site's main contract as a single lump-sum amendment.
func (s *service) convertToAmendment(ctx context.Context, tx *gorm.DB, repo Repository, quote *models.Quote) error {
	contract, err := repo.FindMainContract(ctx, *quote.SiteID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find main contract")
	}
	if contract == nil {
		return ErrMainContractNotFound
	}

	priced := PriceLines(quote.Lines, quote.GlobalDiscountPct)
	_, state, err := s.progress.IntegrateAmendmentTx(ctx, tx, progress.IntegrateAmendmentInput{
		ContractID:    contract.ID,
		Description:   fmt.Sprintf("Devis %s - %s", quote.Number, quote.ClientName),
		AmountHT:      TotalHT(priced),
		SourceQuoteID: &quote.ID,
	})
	if err != nil {
		return err
	}
	quote.ConvertedContractID = &contract.ID
	quote.ConvertedProgressStateID = &state.ID
	return nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Quote, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	quote, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	return quote, nil
}

func (s *service) observe(operation string, start time.Time, err error) {
	s.metrics.ObserveDuration(operation, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(operation)
		return
	}
	s.metrics.IncSuccess(operation)
}
