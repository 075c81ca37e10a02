package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mlevasseur/batisuivi-backend/api/responses"
	"github.com/mlevasseur/batisuivi-backend/api/validators"
	"github.com/mlevasseur/batisuivi-backend/internal/contracts"
	"github.com/mlevasseur/batisuivi-backend/pkg/enums"
	pkgerrors "github.com/mlevasseur/batisuivi-backend/pkg/errors"
	"github.com/mlevasseur/batisuivi-backend/pkg/logger"
)

type contractLineRequest struct {
	Position    int     `json:"position"`
	Kind        string  `json:"kind" validate:"required"`
	ArticleCode *string `json:"article_code"`
	Description string  `json:"description" validate:"required"`
	Unit        string  `json:"unit"`
	UnitPrice   string  `json:"unit_price"`
	Quantity    string  `json:"quantity"`
}

type contractCreateRequest struct {
	SiteID          string                `json:"site_id" validate:"required"`
	SubcontractorID *string               `json:"subcontractor_id"`
	Reference       string                `json:"reference" validate:"required"`
	Lines           []contractLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r contractCreateRequest) toInput() (contracts.CreateContractInput, error) {
	siteID, err := uuid.Parse(strings.TrimSpace(r.SiteID))
	if err != nil {
		return contracts.CreateContractInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid site_id")
	}

	input := contracts.CreateContractInput{
		SiteID:    siteID,
		Reference: strings.TrimSpace(r.Reference),
	}
	if r.SubcontractorID != nil {
		subID, err := uuid.Parse(strings.TrimSpace(*r.SubcontractorID))
		if err != nil {
			return contracts.CreateContractInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subcontractor_id")
		}
		input.SubcontractorID = &subID
	}

	for _, lr := range r.Lines {
		line, err := lr.toInput()
		if err != nil {
			return contracts.CreateContractInput{}, err
		}
		input.Lines = append(input.Lines, line)
	}
	return input, nil
}

func (r contractLineRequest) toInput() (contracts.ContractLineInput, error) {
	kind, err := enums.ParseLineKind(strings.TrimSpace(r.Kind))
	if err != nil {
		return contracts.ContractLineInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid line kind")
	}

	line := contracts.ContractLineInput{
		Position:    r.Position,
		Kind:        kind,
		ArticleCode: r.ArticleCode,
		Description: strings.TrimSpace(r.Description),
		Unit:        strings.TrimSpace(r.Unit),
	}
	if kind.IsHeading() {
		return line, nil
	}

	line.UnitPrice, err = parseAmount(r.UnitPrice, "unit_price")
	if err != nil {
		return contracts.ContractLineInput{}, err
	}
	line.Quantity, err = parseAmount(r.Quantity, "quantity")
	if err != nil {
		return contracts.ContractLineInput{}, err
	}
	return line, nil
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field).
			WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

// ContractCreate handles creating a contract with its ordered lines.
func ContractCreate(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		var req contractCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contract, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, contract)
	}
}

// ContractDetail returns one contract with its lines.
func ContractDetail(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		id, err := pathUUID(r, "contractId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contract, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contract)
	}
}

// ContractsBySite lists the contracts attached to a site.
func ContractsBySite(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		siteID, err := pathUUID(r, "siteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listed, err := svc.ListBySite(r.Context(), siteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"contracts": listed})
	}
}

// ContractLock performs the one-way lock that opens a contract to snapshots.
func ContractLock(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		id, err := pathUUID(r, "contractId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contract, err := svc.Lock(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contract)
	}
}
