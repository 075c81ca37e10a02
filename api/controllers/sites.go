package controllers

import (
	"net/http"
	"strings"

	"github.com/mlevasseur/batisuivi-backend/api/responses"
	"github.com/mlevasseur/batisuivi-backend/api/validators"
	"github.com/mlevasseur/batisuivi-backend/internal/sites"
	pkgerrors "github.com/mlevasseur/batisuivi-backend/pkg/errors"
	"github.com/mlevasseur/batisuivi-backend/pkg/logger"
	"github.com/mlevasseur/batisuivi-backend/pkg/pagination"
)

type siteCreateRequest struct {
	ClientName string  `json:"client_name" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Address    *string `json:"address"`
}

type subcontractorCreateRequest struct {
	Name  string  `json:"name" validate:"required"`
	Siret *string `json:"siret"`
}

// SiteCreate handles creating a construction site.
func SiteCreate(svc sites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "site service unavailable"))
			return
		}

		var req siteCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		site, err := svc.Create(r.Context(), sites.CreateSiteInput{
			ClientName: strings.TrimSpace(req.ClientName),
			Name:       strings.TrimSpace(req.Name),
			Address:    req.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, site)
	}
}

// SiteDetail returns one site.
func SiteDetail(svc sites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "site service unavailable"))
			return
		}

		id, err := pathUUID(r, "siteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		site, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, site)
	}
}

// SiteList returns a cursor-paginated page of sites.
func SiteList(svc sites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "site service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listed, next, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"sites":       listed,
			"next_cursor": next,
		})
	}
}

// SubcontractorCreate registers a subcontractor company.
func SubcontractorCreate(svc sites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "site service unavailable"))
			return
		}

		var req subcontractorCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subcontractor, err := svc.CreateSubcontractor(r.Context(), sites.CreateSubcontractorInput{
			Name:  strings.TrimSpace(req.Name),
			Siret: req.Siret,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, subcontractor)
	}
}

// SubcontractorList returns every registered subcontractor.
func SubcontractorList(svc sites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "site service unavailable"))
			return
		}

		listed, err := svc.ListSubcontractors(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"subcontractors": listed})
	}
}
