package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mlevasseur/batisuivi-backend/api/responses"
	"github.com/mlevasseur/batisuivi-backend/api/validators"
	"github.com/mlevasseur/batisuivi-backend/internal/progress"
	"github.com/mlevasseur/batisuivi-backend/pkg/enums"
	pkgerrors "github.com/mlevasseur/batisuivi-backend/pkg/errors"
	"github.com/mlevasseur/batisuivi-backend/pkg/logger"
)

type progressLineRequest struct {
	Position       int     `json:"position"`
	Kind           string  `json:"kind" validate:"required"`
	ArticleCode    *string `json:"article_code"`
	Description    string  `json:"description" validate:"required"`
	Unit           string  `json:"unit"`
	UnitPrice      string  `json:"unit_price"`
	PreviousQty    *string `json:"previous_qty"`
	CurrentQty     string  `json:"current_qty"`
	PreviousAmount *string `json:"previous_amount"`
	CurrentAmount  *string `json:"current_amount"`
}

type progressAmendmentRequest struct {
	Description    string  `json:"description" validate:"required"`
	PreviousQty    string  `json:"previous_qty"`
	CurrentQty     string  `json:"current_qty"`
	PreviousAmount string  `json:"previous_amount"`
	CurrentAmount  string  `json:"current_amount"`
	SourceQuoteID  *string `json:"source_quote_id"`
}

type progressCreateRequest struct {
	SubcontractorID *string                    `json:"subcontractor_id"`
	StateDate       *time.Time                 `json:"state_date"`
	PeriodLabel     *string                    `json:"period_label"`
	Comments        *string                    `json:"comments"`
	Lines           []progressLineRequest      `json:"lines" validate:"omitempty,dive"`
	Amendments      []progressAmendmentRequest `json:"amendments" validate:"omitempty,dive"`
}

type amendmentIntegrateRequest struct {
	SubcontractorID *string `json:"subcontractor_id"`
	Description     string  `json:"description" validate:"required"`
	AmountHT        string  `json:"amount_ht" validate:"required"`
	SourceQuoteID   *string `json:"source_quote_id"`
}

type progressLineUpdateRequest struct {
	CurrentQty    *string `json:"current_qty"`
	CurrentAmount *string `json:"current_amount"`
}

type progressAmendmentUpdateRequest struct {
	CurrentAmount *string `json:"current_amount"`
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field).
			WithDetails(map[string]any{"field": field})
	}
	return &id, nil
}

func parseOptionalAmount(raw *string, field string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := parseAmount(*raw, field)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (r progressCreateRequest) toInput(contractID uuid.UUID) (progress.CreateStateInput, error) {
	subID, err := parseOptionalUUID(r.SubcontractorID, "subcontractor_id")
	if err != nil {
		return progress.CreateStateInput{}, err
	}

	input := progress.CreateStateInput{
		ContractID:      contractID,
		SubcontractorID: subID,
		PeriodLabel:     r.PeriodLabel,
		Comments:        r.Comments,
	}
	if r.StateDate != nil {
		input.StateDate = *r.StateDate
	}

	for _, lr := range r.Lines {
		line, err := lr.toInput()
		if err != nil {
			return progress.CreateStateInput{}, err
		}
		input.Lines = append(input.Lines, line)
	}
	for _, ar := range r.Amendments {
		amendment, err := ar.toInput()
		if err != nil {
			return progress.CreateStateInput{}, err
		}
		input.Amendments = append(input.Amendments, amendment)
	}
	return input, nil
}

func (r progressLineRequest) toInput() (progress.LineInput, error) {
	kind, err := enums.ParseLineKind(strings.TrimSpace(r.Kind))
	if err != nil {
		return progress.LineInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid line kind")
	}

	line := progress.LineInput{
		Position:    r.Position,
		Kind:        kind,
		ArticleCode: r.ArticleCode,
		Description: strings.TrimSpace(r.Description),
		Unit:        strings.TrimSpace(r.Unit),
	}
	if kind.IsHeading() {
		return line, nil
	}

	if line.UnitPrice, err = parseAmount(r.UnitPrice, "unit_price"); err != nil {
		return progress.LineInput{}, err
	}
	if line.CurrentQty, err = parseAmount(r.CurrentQty, "current_qty"); err != nil {
		return progress.LineInput{}, err
	}
	if line.PreviousQty, err = parseOptionalAmount(r.PreviousQty, "previous_qty"); err != nil {
		return progress.LineInput{}, err
	}
	if line.PreviousAmount, err = parseOptionalAmount(r.PreviousAmount, "previous_amount"); err != nil {
		return progress.LineInput{}, err
	}
	if line.CurrentAmount, err = parseOptionalAmount(r.CurrentAmount, "current_amount"); err != nil {
		return progress.LineInput{}, err
	}
	return line, nil
}

func (r progressAmendmentRequest) toInput() (progress.AmendmentInput, error) {
	sourceQuoteID, err := parseOptionalUUID(r.SourceQuoteID, "source_quote_id")
	if err != nil {
		return progress.AmendmentInput{}, err
	}

	amendment := progress.AmendmentInput{
		Description:   strings.TrimSpace(r.Description),
		SourceQuoteID: sourceQuoteID,
	}
	if amendment.PreviousQty, err = parseAmount(r.PreviousQty, "previous_qty"); err != nil {
		return progress.AmendmentInput{}, err
	}
	if amendment.CurrentQty, err = parseAmount(r.CurrentQty, "current_qty"); err != nil {
		return progress.AmendmentInput{}, err
	}
	if amendment.PreviousAmount, err = parseAmount(r.PreviousAmount, "previous_amount"); err != nil {
		return progress.AmendmentInput{}, err
	}
	if amendment.CurrentAmount, err = parseAmount(r.CurrentAmount, "current_amount"); err != nil {
		return progress.AmendmentInput{}, err
	}
	return amendment, nil
}

// ProgressStateCreate opens the next snapshot of a (contract, track) pair.
func ProgressStateCreate(svc progress.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "progress service unavailable"))
			return
		}

		contractID, err := pathUUID(r, "contractId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req progressCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput(contractID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.CreateNext(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, state)
	}
}

// ProgressStateList lists the snapshots of a (contract, track) pair.
func ProgressStateList(svc progress.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "progress service unavailable"))
			return
		}

		contractID, err := pathUUID(r, "contractId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		subID, err := queryUUID(r, "subcontractor_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		states, err := svc.List(r.Context(), contractID, subID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"progress_states": states})
	}
}

// ProgressStateDetail returns a snapshot with its derived totals.
func ProgressStateDetail(svc progress.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "progress service unavailable"))
			return
		}

		stateID, err := pathUUID(r, "stateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), stateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ProgressStateFinalize freezes a snapshot.
func ProgressStateFinalize(svc progress.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "progress service unavailable"))
			return
		}

		stateID, err := pathUUID(r, "stateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Finalize(r.Context(), stateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// ProgressStateReopen reopens the latest finalized snapshot of a track.
func ProgressStateReopen(svc progress.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "progress service unavailable"))
			return
		}

		stateID, err := pathUUID(r, "stateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Reopen(r.Context(), stateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// ProgressLineUpdate edits one line of an open snapshot.
func ProgressLineUpdate(svc progress.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "progress service unavailable"))
			return
		}

		stateID, err := pathUUID(r, "stateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req progressLineUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := progress.UpdateLineInput{}
		if input.CurrentQty, err = parseOptionalAmount(req.CurrentQty, "current_qty"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.CurrentAmount, err = parseOptionalAmount(req.CurrentAmount, "current_amount"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.UpdateLine(r.Context(), stateID, lineID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, line)
	}
}

// ProgressAmendmentUpdate edits one amendment of an open snapshot.
func ProgressAmendmentUpdate(svc progress.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "progress service unavailable"))
			return
		}

		stateID, err := pathUUID(r, "stateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		amendmentID, err := pathUUID(r, "amendmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req progressAmendmentUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := progress.UpdateAmendmentInput{}
		if input.CurrentAmount, err = parseOptionalAmount(req.CurrentAmount, "current_amount"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amendment, err := svc.UpdateAmendment(r.Context(), stateID, amendmentID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, amendment)
	}
}

// AmendmentIntegrate adds a lump-sum amendment to the track's open snapshot.
func AmendmentIntegrate(svc progress.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "progress service unavailable"))
			return
		}

		contractID, err := pathUUID(r, "contractId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req amendmentIntegrateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subID, err := parseOptionalUUID(req.SubcontractorID, "subcontractor_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		amount, err := parseAmount(req.AmountHT, "amount_ht")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sourceQuoteID, err := parseOptionalUUID(req.SourceQuoteID, "source_quote_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amendment, state, err := svc.IntegrateAmendment(r.Context(), progress.IntegrateAmendmentInput{
			ContractID:      contractID,
			SubcontractorID: subID,
			Description:     strings.TrimSpace(req.Description),
			AmountHT:        amount,
			SourceQuoteID:   sourceQuoteID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"amendment":      amendment,
			"progress_state": state,
		})
	}
}

// ContractSummary returns the per-contract financial rollup.
func ContractSummary(svc progress.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "progress service unavailable"))
			return
		}

		contractID, err := pathUUID(r, "contractId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		subID, err := queryUUID(r, "subcontractor_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), contractID, subID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
