package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mlevasseur/batisuivi-backend/internal/contracts"
	"github.com/mlevasseur/batisuivi-backend/internal/export"
	"github.com/mlevasseur/batisuivi-backend/internal/progress"
	"github.com/mlevasseur/batisuivi-backend/internal/quotes"
	"github.com/mlevasseur/batisuivi-backend/internal/sites"
	"github.com/mlevasseur/batisuivi-backend/pkg/config"
	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
	"github.com/mlevasseur/batisuivi-backend/pkg/logger"
	"github.com/mlevasseur/batisuivi-backend/pkg/pagination"
)

type stubSiteService struct{}

func (stubSiteService) Create(context.Context, sites.CreateSiteInput) (*models.Site, error) {
	return &models.Site{}, nil
}

func (stubSiteService) Get(context.Context, uuid.UUID) (*models.Site, error) {
	return &models.Site{}, nil
}

func (stubSiteService) List(context.Context, pagination.Params) ([]models.Site, string, error) {
	return nil, "", nil
}

func (stubSiteService) CreateSubcontractor(context.Context, sites.CreateSubcontractorInput) (*models.Subcontractor, error) {
	return &models.Subcontractor{}, nil
}

func (stubSiteService) GetSubcontractor(context.Context, uuid.UUID) (*models.Subcontractor, error) {
	return &models.Subcontractor{}, nil
}

func (stubSiteService) ListSubcontractors(context.Context) ([]models.Subcontractor, error) {
	return nil, nil
}

type stubContractService struct{}

func (stubContractService) Create(context.Context, contracts.CreateContractInput) (*models.Contract, error) {
	return &models.Contract{}, nil
}

func (stubContractService) Get(context.Context, uuid.UUID) (*models.Contract, error) {
	return &models.Contract{}, nil
}

func (stubContractService) ListBySite(context.Context, uuid.UUID) ([]models.Contract, error) {
	return nil, nil
}

func (stubContractService) Lock(context.Context, uuid.UUID) (*models.Contract, error) {
	return &models.Contract{}, nil
}

type stubProgressService struct{}

func (stubProgressService) CreateNext(context.Context, progress.CreateStateInput) (*models.ProgressState, error) {
	return &models.ProgressState{}, nil
}

func (stubProgressService) Finalize(context.Context, uuid.UUID) (*models.ProgressState, error) {
	return &models.ProgressState{}, nil
}

func (stubProgressService) Reopen(context.Context, uuid.UUID) (*models.ProgressState, error) {
	return &models.ProgressState{}, nil
}

func (stubProgressService) IntegrateAmendment(context.Context, progress.IntegrateAmendmentInput) (*models.Amendment, *models.ProgressState, error) {
	return &models.Amendment{}, &models.ProgressState{}, nil
}

func (stubProgressService) IntegrateAmendmentTx(context.Context, *gorm.DB, progress.IntegrateAmendmentInput) (*models.Amendment, *models.ProgressState, error) {
	return &models.Amendment{}, &models.ProgressState{}, nil
}

func (stubProgressService) UpdateLine(context.Context, uuid.UUID, uuid.UUID, progress.UpdateLineInput) (*models.ProgressLine, error) {
	return &models.ProgressLine{}, nil
}

func (stubProgressService) UpdateAmendment(context.Context, uuid.UUID, uuid.UUID, progress.UpdateAmendmentInput) (*models.Amendment, error) {
	return &models.Amendment{}, nil
}

func (stubProgressService) Get(context.Context, uuid.UUID) (*progress.StateDetail, error) {
	return &progress.StateDetail{}, nil
}

func (stubProgressService) List(context.Context, uuid.UUID, *uuid.UUID) ([]models.ProgressState, error) {
	return nil, nil
}

func (stubProgressService) Summary(context.Context, uuid.UUID, *uuid.UUID) (*progress.ContractSummary, error) {
	return &progress.ContractSummary{}, nil
}

type stubQuoteService struct{}

func (stubQuoteService) Create(context.Context, quotes.CreateQuoteInput) (*models.Quote, error) {
	return &models.Quote{}, nil
}

func (stubQuoteService) Get(context.Context, uuid.UUID) (*models.Quote, error) {
	return &models.Quote{}, nil
}

func (stubQuoteService) List(context.Context, *uuid.UUID) ([]models.Quote, error) {
	return nil, nil
}

func (stubQuoteService) Send(context.Context, uuid.UUID) (*models.Quote, error) {
	return &models.Quote{}, nil
}

func (stubQuoteService) Accept(context.Context, uuid.UUID) (*models.Quote, error) {
	return &models.Quote{}, nil
}

func (stubQuoteService) Convert(context.Context, uuid.UUID) (*quotes.ConversionResult, error) {
	return &quotes.ConversionResult{Quote: &models.Quote{}}, nil
}

type stubStateReader struct{}

func (stubStateReader) Get(context.Context, uuid.UUID) (*progress.StateDetail, error) {
	return &progress.StateDetail{State: models.ProgressState{SequenceNumber: 1}}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	exportService, err := export.NewService(
		stubStateReader{},
		stubContractService{},
		stubSiteService{},
		export.NewGenerator("Batisuivi", ""),
	)
	if err != nil {
		t.Fatalf("new export service: %v", err)
	}

	return NewRouter(Deps{
		Config:        &config.Config{App: config.AppConfig{Env: "dev"}},
		Logger:        logger.New(logger.Options{ServiceName: "routes-test"}),
		SiteService:   stubSiteService{},
		ContractSvc:   stubContractService{},
		ProgressSvc:   stubProgressService{},
		QuoteService:  stubQuoteService{},
		ExportService: exportService,
	})
}

func TestRouterRegistersExpectedRoutes(t *testing.T) {
	router := newTestRouter(t)

	id := uuid.NewString()
	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health/live"},
		{http.MethodGet, "/health/ready"},
		{http.MethodGet, "/api/v1/sites"},
		{http.MethodGet, "/api/v1/sites/" + id},
		{http.MethodGet, "/api/v1/sites/" + id + "/contracts"},
		{http.MethodGet, "/api/v1/subcontractors"},
		{http.MethodGet, "/api/v1/contracts/" + id},
		{http.MethodGet, "/api/v1/contracts/" + id + "/summary"},
		{http.MethodGet, "/api/v1/contracts/" + id + "/progress-states"},
		{http.MethodGet, "/api/v1/progress-states/" + id},
		{http.MethodGet, "/api/v1/progress-states/" + id + "/export.pdf"},
		{http.MethodGet, "/api/v1/quotes"},
		{http.MethodGet, "/api/v1/quotes/" + id},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code == http.StatusNotFound || w.Code == http.StatusMethodNotAllowed {
			t.Errorf("%s %s not routed: status %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestRouterUnknownRouteReturns404(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", w.Code)
	}
}
