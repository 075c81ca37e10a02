package quotes

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mlevasseur/batisuivi-backend/internal/progress"
	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
	"github.com/mlevasseur/batisuivi-backend/pkg/enums"
	"github.com/mlevasseur/batisuivi-backend/pkg/outbox"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeIntegrator struct {
	inputs []progress.IntegrateAmendmentInput
	err    error
}

func (f *fakeIntegrator) IntegrateAmendmentTx(ctx context.Context, tx *gorm.DB, input progress.IntegrateAmendmentInput) (*models.Amendment, *models.ProgressState, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	f.inputs = append(f.inputs, input)
	amendment := &models.Amendment{
		Description:   input.Description,
		CurrentQty:    decimal.NewFromInt(1),
		TotalQty:      decimal.NewFromInt(1),
		CurrentAmount: input.AmountHT,
		TotalAmount:   input.AmountHT,
		SourceQuoteID: input.SourceQuoteID,
	}
	amendment.ID = uuid.New()
	state := &models.ProgressState{ContractID: input.ContractID, SequenceNumber: 1}
	state.ID = uuid.New()
	return amendment, state, nil
}

type fakeRepo struct {
	quotes    map[uuid.UUID]*models.Quote
	sites     map[uuid.UUID]bool
	contracts []*models.Contract
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		quotes: map[uuid.UUID]*models.Quote{},
		sites:  map[uuid.UUID]bool{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, quote *models.Quote) error {
	quote.ID = uuid.New()
	for i := range quote.Lines {
		quote.Lines[i].ID = uuid.New()
		quote.Lines[i].QuoteID = quote.ID
	}
	f.quotes[quote.ID] = quote
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	quote, ok := f.quotes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return quote, nil
}

func (f *fakeRepo) Save(ctx context.Context, quote *models.Quote) error {
	f.quotes[quote.ID] = quote
	return nil
}

func (f *fakeRepo) List(ctx context.Context, siteID *uuid.UUID) ([]models.Quote, error) {
	var listed []models.Quote
	for _, quote := range f.quotes {
		if siteID != nil && (quote.SiteID == nil || *quote.SiteID != *siteID) {
			continue
		}
		listed = append(listed, *quote)
	}
	return listed, nil
}

func (f *fakeRepo) SiteExists(ctx context.Context, siteID uuid.UUID) (bool, error) {
	return f.sites[siteID], nil
}

func (f *fakeRepo) FindMainContract(ctx context.Context, siteID uuid.UUID) (*models.Contract, error) {
	for _, contract := range f.contracts {
		if contract.SiteID == siteID && contract.SubcontractorID == nil {
			return contract, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CreateContract(ctx context.Context, contract *models.Contract) error {
	contract.ID = uuid.New()
	for i := range contract.Lines {
		contract.Lines[i].ID = uuid.New()
		contract.Lines[i].ContractID = contract.ID
	}
	f.contracts = append(f.contracts, contract)
	return nil
}

func newTestService(t *testing.T, repo *fakeRepo) (Service, *fakeIntegrator, *fakeOutbox) {
	t.Helper()
	integrator := &fakeIntegrator{}
	sink := &fakeOutbox{}
	svc, err := NewService(repo, fakeTxRunner{}, integrator, sink, nil)
	require.NoError(t, err)
	return svc, integrator, sink
}

func baseQuoteInput(siteID uuid.UUID) CreateQuoteInput {
	return CreateQuoteInput{
		Number:            "DEV-2026-041",
		Type:              enums.QuoteTypeBase,
		ClientName:        "SCI Les Tilleuls",
		SiteID:            &siteID,
		GlobalDiscountPct: dec("10"),
		Lines: []QuoteLineInput{
			{Position: 1, Kind: enums.LineKindTitle, Description: "LOT 1 - MACONNERIE"},
			{Position: 2, Kind: enums.LineKindNormal, Description: "Mur parpaing", Unit: "m2", UnitPrice: dec("100.00"), Quantity: dec("1.000")},
			{Position: 3, Kind: enums.LineKindNormal, Description: "Enduit", Unit: "m2", UnitPrice: dec("300.00"), Quantity: dec("1.000")},
		},
	}
}

func TestCreateQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("stores lines with their net-of-line-discount total", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _, _ := newTestService(t, repo)

		quote, err := svc.Create(ctx, CreateQuoteInput{
			Number:     "DEV-2026-001",
			Type:       enums.QuoteTypeBase,
			ClientName: "Dupont BTP",
			Lines: []QuoteLineInput{
				{Position: 1, Kind: enums.LineKindNormal, Description: "Terrassement", Unit: "m3", UnitPrice: dec("200.00"), Quantity: dec("1.000"), LineDiscountPct: dec("10")},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, enums.QuoteStatusDraft, quote.Status)
		require.Len(t, quote.Lines, 1)
		assert.True(t, quote.Lines[0].Total.Equal(dec("180.00")))
	})

	t.Run("rejects missing lines", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _, _ := newTestService(t, repo)

		_, err := svc.Create(ctx, CreateQuoteInput{
			Number:     "DEV-2026-002",
			Type:       enums.QuoteTypeBase,
			ClientName: "Dupont BTP",
		})
		assert.Error(t, err)
	})

	t.Run("rejects out-of-range discount", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _, _ := newTestService(t, repo)

		_, err := svc.Create(ctx, CreateQuoteInput{
			Number:            "DEV-2026-003",
			Type:              enums.QuoteTypeBase,
			ClientName:        "Dupont BTP",
			GlobalDiscountPct: dec("120"),
			Lines: []QuoteLineInput{
				{Position: 1, Kind: enums.LineKindNormal, Description: "Terrassement", UnitPrice: dec("10.00"), Quantity: dec("1.000")},
			},
		})
		assert.Error(t, err)
	})
}

func TestSendQuote(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc, _, _ := newTestService(t, repo)
	siteID := uuid.New()

	quote, err := svc.Create(ctx, baseQuoteInput(siteID))
	require.NoError(t, err)

	sent, err := svc.Send(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.QuoteStatusSent, sent.Status)

	_, err = svc.Send(ctx, quote.ID)
	assert.ErrorIs(t, err, ErrQuoteNotDraft)

	accepted, err := svc.Accept(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.QuoteStatusAccepted, accepted.Status)

	_, err = svc.Send(ctx, quote.ID)
	assert.ErrorIs(t, err, ErrQuoteNotDraft)
}

func TestAcceptQuote(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc, _, _ := newTestService(t, repo)
	siteID := uuid.New()

	quote, err := svc.Create(ctx, baseQuoteInput(siteID))
	require.NoError(t, err)

	accepted, err := svc.Accept(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.QuoteStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)

	_, err = svc.Accept(ctx, quote.ID)
	assert.ErrorIs(t, err, ErrQuoteAlreadyAccepted)
}

func TestConvertBaseQuote(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (Service, *fakeRepo, *fakeOutbox, *models.Quote, uuid.UUID) {
		repo := newFakeRepo()
		svc, _, sink := newTestService(t, repo)
		siteID := uuid.New()
		repo.sites[siteID] = true

		quote, err := svc.Create(ctx, baseQuoteInput(siteID))
		require.NoError(t, err)
		_, err = svc.Accept(ctx, quote.ID)
		require.NoError(t, err)
		return svc, repo, sink, quote, siteID
	}

	t.Run("materializes a locked contract with discounted prices", func(t *testing.T) {
		svc, repo, sink, quote, siteID := setup(t)

		result, err := svc.Convert(ctx, quote.ID)
		require.NoError(t, err)

		require.NotNil(t, result.ContractID)
		assert.Nil(t, result.ProgressStateID)
		assert.Equal(t, enums.QuoteStatusConverted, result.Quote.Status)

		require.Len(t, repo.contracts, 1)
		contract := repo.contracts[0]
		assert.Equal(t, siteID, contract.SiteID)
		assert.Equal(t, quote.Number, contract.Reference)
		assert.True(t, contract.Locked)
		require.NotNil(t, contract.SourceQuoteID)
		assert.Equal(t, quote.ID, *contract.SourceQuoteID)

		require.Len(t, contract.Lines, 3)
		assert.Equal(t, enums.LineKindTitle, contract.Lines[0].Kind)
		assert.True(t, contract.Lines[1].Total.Equal(dec("90.00")))
		assert.True(t, contract.Lines[2].Total.Equal(dec("270.00")))

		require.NotEmpty(t, sink.events)
		assert.Equal(t, enums.EventQuoteConverted, sink.events[len(sink.events)-1].EventType)
	})

	t.Run("second conversion fails", func(t *testing.T) {
		svc, repo, _, quote, _ := setup(t)

		_, err := svc.Convert(ctx, quote.ID)
		require.NoError(t, err)
		_, err = svc.Convert(ctx, quote.ID)
		assert.ErrorIs(t, err, ErrQuoteAlreadyConverted)
		assert.Len(t, repo.contracts, 1)
	})

	t.Run("unaccepted quote cannot convert", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _, _ := newTestService(t, repo)
		siteID := uuid.New()
		repo.sites[siteID] = true

		quote, err := svc.Create(ctx, baseQuoteInput(siteID))
		require.NoError(t, err)

		_, err = svc.Convert(ctx, quote.ID)
		assert.ErrorIs(t, err, ErrQuoteNotAccepted)
	})

	t.Run("missing site fails", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _, _ := newTestService(t, repo)

		input := baseQuoteInput(uuid.New())
		input.SiteID = nil
		quote, err := svc.Create(ctx, input)
		require.NoError(t, err)
		_, err = svc.Accept(ctx, quote.ID)
		require.NoError(t, err)

		_, err = svc.Convert(ctx, quote.ID)
		assert.ErrorIs(t, err, ErrMissingSite)
	})

	t.Run("unknown site fails", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _, _ := newTestService(t, repo)

		quote, err := svc.Create(ctx, baseQuoteInput(uuid.New()))
		require.NoError(t, err)
		_, err = svc.Accept(ctx, quote.ID)
		require.NoError(t, err)

		_, err = svc.Convert(ctx, quote.ID)
		assert.ErrorIs(t, err, ErrSiteNotFound)
	})
}

func TestConvertAmendmentQuote(t *testing.T) {
	ctx := context.Background()

	amendmentInput := func(siteID uuid.UUID) CreateQuoteInput {
		return CreateQuoteInput{
			Number:     "DEV-2026-050",
			Type:       enums.QuoteTypeAmendment,
			ClientName: "SCI Les Tilleuls",
			SiteID:     &siteID,
			Lines: []QuoteLineInput{
				{Position: 1, Kind: enums.LineKindNormal, Description: "Plus-value carrelage", Unit: "m2", UnitPrice: dec("50.00"), Quantity: dec("2.000")},
				{Position: 2, Kind: enums.LineKindNormal, Description: "Faience", Unit: "m2", UnitPrice: dec("200.00"), Quantity: dec("1.000"), LineDiscountPct: dec("10")},
			},
		}
	}

	t.Run("folds the discounted total into the main contract", func(t *testing.T) {
		repo := newFakeRepo()
		svc, integrator, _ := newTestService(t, repo)
		siteID := uuid.New()
		repo.sites[siteID] = true
		mainContract := &models.Contract{SiteID: siteID, Reference: "MAR-2026-001", Locked: true}
		mainContract.ID = uuid.New()
		repo.contracts = append(repo.contracts, mainContract)

		quote, err := svc.Create(ctx, amendmentInput(siteID))
		require.NoError(t, err)
		_, err = svc.Accept(ctx, quote.ID)
		require.NoError(t, err)

		result, err := svc.Convert(ctx, quote.ID)
		require.NoError(t, err)

		require.Len(t, integrator.inputs, 1)
		integrated := integrator.inputs[0]
		assert.Equal(t, mainContract.ID, integrated.ContractID)
		assert.True(t, integrated.AmountHT.Equal(dec("280.00")), "got %s", integrated.AmountHT)
		assert.Contains(t, integrated.Description, quote.Number)
		require.NotNil(t, integrated.SourceQuoteID)
		assert.Equal(t, quote.ID, *integrated.SourceQuoteID)

		require.NotNil(t, result.ProgressStateID)
		assert.Equal(t, enums.QuoteStatusConverted, result.Quote.Status)
	})

	t.Run("site without a main contract fails", func(t *testing.T) {
		repo := newFakeRepo()
		svc, _, _ := newTestService(t, repo)
		siteID := uuid.New()
		repo.sites[siteID] = true

		quote, err := svc.Create(ctx, amendmentInput(siteID))
		require.NoError(t, err)
		_, err = svc.Accept(ctx, quote.ID)
		require.NoError(t, err)

		_, err = svc.Convert(ctx, quote.ID)
		assert.ErrorIs(t, err, ErrMainContractNotFound)
	})
}
