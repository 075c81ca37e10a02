package controllers

import (
	"net/http"
	"strings"

	"github.com/mlevasseur/batisuivi-backend/api/responses"
	"github.com/mlevasseur/batisuivi-backend/api/validators"
	"github.com/mlevasseur/batisuivi-backend/internal/quotes"
	"github.com/mlevasseur/batisuivi-backend/pkg/enums"
	pkgerrors "github.com/mlevasseur/batisuivi-backend/pkg/errors"
	"github.com/mlevasseur/batisuivi-backend/pkg/logger"
)

type quoteLineRequest struct {
	Position        int    `json:"position"`
	Kind            string `json:"kind" validate:"required"`
	Description     string `json:"description" validate:"required"`
	Unit            string `json:"unit"`
	UnitPrice       string `json:"unit_price"`
	Quantity        string `json:"quantity"`
	LineDiscountPct string `json:"line_discount_pct"`
}

type quoteCreateRequest struct {
	Number            string             `json:"number" validate:"required"`
	Type              string             `json:"type" validate:"required"`
	ClientName        string             `json:"client_name" validate:"required"`
	SiteID            *string            `json:"site_id"`
	GlobalDiscountPct string             `json:"global_discount_pct"`
	Lines             []quoteLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r quoteCreateRequest) toInput() (quotes.CreateQuoteInput, error) {
	quoteType, err := enums.ParseQuoteType(strings.TrimSpace(r.Type))
	if err != nil {
		return quotes.CreateQuoteInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid quote type")
	}
	siteID, err := parseOptionalUUID(r.SiteID, "site_id")
	if err != nil {
		return quotes.CreateQuoteInput{}, err
	}

	input := quotes.CreateQuoteInput{
		Number:     strings.TrimSpace(r.Number),
		Type:       quoteType,
		ClientName: strings.TrimSpace(r.ClientName),
		SiteID:     siteID,
	}
	if input.GlobalDiscountPct, err = parseAmount(r.GlobalDiscountPct, "global_discount_pct"); err != nil {
		return quotes.CreateQuoteInput{}, err
	}

	for _, lr := range r.Lines {
		line, err := lr.toInput()
		if err != nil {
			return quotes.CreateQuoteInput{}, err
		}
		input.Lines = append(input.Lines, line)
	}
	return input, nil
}

func (r quoteLineRequest) toInput() (quotes.QuoteLineInput, error) {
	kind, err := enums.ParseLineKind(strings.TrimSpace(r.Kind))
	if err != nil {
		return quotes.QuoteLineInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid line kind")
	}

	line := quotes.QuoteLineInput{
		Position:    r.Position,
		Kind:        kind,
		Description: strings.TrimSpace(r.Description),
		Unit:        strings.TrimSpace(r.Unit),
	}
	if kind.IsHeading() {
		return line, nil
	}

	if line.UnitPrice, err = parseAmount(r.UnitPrice, "unit_price"); err != nil {
		return quotes.QuoteLineInput{}, err
	}
	if line.Quantity, err = parseAmount(r.Quantity, "quantity"); err != nil {
		return quotes.QuoteLineInput{}, err
	}
	if line.LineDiscountPct, err = parseAmount(r.LineDiscountPct, "line_discount_pct"); err != nil {
		return quotes.QuoteLineInput{}, err
	}
	return line, nil
}

// QuoteCreate handles creating a draft quote with its ordered lines.
func QuoteCreate(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var req quoteCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

// QuoteDetail returns one quote with its lines.
func QuoteDetail(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		id, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// QuoteList lists quotes, optionally filtered by site.
func QuoteList(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		siteID, err := queryUUID(r, "site_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listed, err := svc.List(r.Context(), siteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"quotes": listed})
	}
}

// QuoteSend marks a draft quote as sent to the client.
func QuoteSend(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		id, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Send(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// QuoteAccept marks a quote as accepted by the client.
func QuoteAccept(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		id, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Accept(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// QuoteConvert converts an accepted quote into a contract or an amendment.
func QuoteConvert(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		id, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Convert(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"quote":             result.Quote,
			"contract_id":       result.ContractID,
			"progress_state_id": result.ProgressStateID,
		})
	}
}
