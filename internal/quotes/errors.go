package quotes

import (
	pkgerrors "github.com/mlevasseur/batisuivi-backend/pkg/errors"
)

var (
	// ErrQuoteNotAccepted rejects conversion of a quote that never reached
	// the accepted status.
	ErrQuoteNotAccepted = pkgerrors.New(pkgerrors.CodeStateConflict, "quote is not accepted")

	// ErrQuoteAlreadyConverted keeps conversion single-use.
	ErrQuoteAlreadyConverted = pkgerrors.New(pkgerrors.CodeStateConflict, "quote has already been converted")

	// ErrQuoteAlreadyAccepted rejects a second acceptance.
	ErrQuoteAlreadyAccepted = pkgerrors.New(pkgerrors.CodeStateConflict, "quote is already accepted")

	// ErrQuoteNotDraft restricts sending to draft quotes.
	ErrQuoteNotDraft = pkgerrors.New(pkgerrors.CodeStateConflict, "quote is no longer a draft")

	// ErrMissingSite rejects conversion of a quote with no target site.
	ErrMissingSite = pkgerrors.New(pkgerrors.CodeValidation, "quote has no site to convert into")

	// ErrSiteNotFound rejects conversion against a site that does not exist.
	ErrSiteNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "site not found")

	// ErrMainContractNotFound rejects amendment conversion when the site has
	// no main contract to amend.
	ErrMainContractNotFound = pkgerrors.New(pkgerrors.CodeStateConflict, "site has no main contract to amend")
)
