package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mlevasseur/batisuivi-backend/internal/progress"
	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
	pkgerrors "github.com/mlevasseur/batisuivi-backend/pkg/errors"
)

type stateReader interface {
	Get(ctx context.Context, stateID uuid.UUID) (*progress.StateDetail, error)
}

type contractReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Contract, error)
}

type siteReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Site, error)
}

// Service assembles a progress statement and renders it to PDF.
type Service struct {
	states    stateReader
	contracts contractReader
	sites     siteReader
	generator *Generator
}

// NewService wires the export service.
func NewService(states stateReader, contracts contractReader, sites siteReader, generator *Generator) (*Service, error) {
	if states == nil || contracts == nil || sites == nil {
		return nil, fmt.Errorf("export readers required")
	}
	if generator == nil {
		return nil, fmt.Errorf("pdf generator required")
	}
	return &Service{
		states:    states,
		contracts: contracts,
		sites:     sites,
		generator: generator,
	}, nil
}

// ProgressStatement renders the snapshot as a PDF and suggests a filename.
func (s *Service) ProgressStatement(ctx context.Context, stateID uuid.UUID) ([]byte, string, error) {
	detail, err := s.states.Get(ctx, stateID)
	if err != nil {
		return nil, "", err
	}
	contract, err := s.contracts.Get(ctx, detail.State.ContractID)
	if err != nil {
		return nil, "", err
	}
	site, err := s.sites.Get(ctx, contract.SiteID)
	if err != nil {
		return nil, "", err
	}

	data, err := s.generator.Generate(Statement{
		Site:     *site,
		Contract: *contract,
		Detail:   *detail,
	})
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate progress statement pdf")
	}

	filename := fmt.Sprintf("etat-avancement-%d-%s.pdf", detail.State.SequenceNumber, slug(contract.Reference))
	return data, filename, nil
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
