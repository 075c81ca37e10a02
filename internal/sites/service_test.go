package sites

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
	pkgerrors "github.com/mlevasseur/batisuivi-backend/pkg/errors"
	"github.com/mlevasseur/batisuivi-backend/pkg/pagination"
)

type fakeRepo struct {
	sites          map[uuid.UUID]*models.Site
	subcontractors map[uuid.UUID]*models.Subcontractor
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sites:          map[uuid.UUID]*models.Site{},
		subcontractors: map[uuid.UUID]*models.Subcontractor{},
	}
}

func (r *fakeRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *fakeRepo) Create(_ context.Context, site *models.Site) error {
	site.ID = uuid.New()
	r.sites[site.ID] = site
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Site, error) {
	site, ok := r.sites[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return site, nil
}

func (r *fakeRepo) List(_ context.Context, params pagination.Params) ([]models.Site, string, error) {
	listed := make([]models.Site, 0, len(r.sites))
	for _, site := range r.sites {
		listed = append(listed, *site)
	}
	return listed, "", nil
}

func (r *fakeRepo) CreateSubcontractor(_ context.Context, subcontractor *models.Subcontractor) error {
	subcontractor.ID = uuid.New()
	r.subcontractors[subcontractor.ID] = subcontractor
	return nil
}

func (r *fakeRepo) FindSubcontractorByID(_ context.Context, id uuid.UUID) (*models.Subcontractor, error) {
	subcontractor, ok := r.subcontractors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return subcontractor, nil
}

func (r *fakeRepo) ListSubcontractors(_ context.Context) ([]models.Subcontractor, error) {
	listed := make([]models.Subcontractor, 0, len(r.subcontractors))
	for _, subcontractor := range r.subcontractors {
		listed = append(listed, *subcontractor)
	}
	return listed, nil
}

func newTestService(t *testing.T) (Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestCreateSite(t *testing.T) {
	svc, _ := newTestService(t)

	address := "12 rue des Lilas, Lyon"
	site, err := svc.Create(context.Background(), CreateSiteInput{
		ClientName: "SCI Les Tilleuls",
		Name:       "Residence Les Tilleuls",
		Address:    &address,
	})
	require.NoError(t, err)
	require.NotNil(t, site)
	assert.NotEqual(t, uuid.Nil, site.ID)
	assert.Equal(t, "SCI Les Tilleuls", site.ClientName)
}

func TestCreateSiteRequiresClientName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateSiteInput{Name: "Chantier"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestGetSiteNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestSubcontractorLifecycle(t *testing.T) {
	svc, _ := newTestService(t)

	siret := "12345678900011"
	created, err := svc.CreateSubcontractor(context.Background(), CreateSubcontractorInput{
		Name:  "Etancheite Pro",
		Siret: &siret,
	})
	require.NoError(t, err)

	loaded, err := svc.GetSubcontractor(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Etancheite Pro", loaded.Name)

	listed, err := svc.ListSubcontractors(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
