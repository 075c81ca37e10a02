package controllers

import (
	"net/http"

	"github.com/mlevasseur/batisuivi-backend/api/responses"
	"github.com/mlevasseur/batisuivi-backend/internal/export"
	pkgerrors "github.com/mlevasseur/batisuivi-backend/pkg/errors"
	"github.com/mlevasseur/batisuivi-backend/pkg/logger"
)

// ProgressStateExport streams the snapshot's billing statement as a PDF.
func ProgressStateExport(svc *export.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}

		stateID, err := pathUUID(r, "stateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, filename, err := svc.ProgressStatement(r.Context(), stateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePDF(w, filename, data)
	}
}
