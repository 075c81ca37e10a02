package progress

import (
	pkgerrors "github.com/mlevasseur/batisuivi-backend/pkg/errors"
)

// Engine guard violations. All are deterministic precondition failures the
// API layer surfaces as validation problems, never retried.
var (
	// ErrContractNotLocked rejects snapshot creation against an unlocked contract.
	ErrContractNotLocked = pkgerrors.New(pkgerrors.CodeStateConflict, "contract is not locked")

	// ErrPreviousStateNotFinalized rejects a new snapshot while the prior one is still open.
	ErrPreviousStateNotFinalized = pkgerrors.New(pkgerrors.CodeStateConflict, "previous progress state is not finalized")

	// ErrStateAlreadyFinalized rejects finalize on an already finalized snapshot.
	ErrStateAlreadyFinalized = pkgerrors.New(pkgerrors.CodeStateConflict, "progress state is already finalized")

	// ErrStateNotFinalized rejects reopen on a snapshot that is still open.
	ErrStateNotFinalized = pkgerrors.New(pkgerrors.CodeStateConflict, "progress state is not finalized")

	// ErrCannotReopenNonLatestState rejects reopen on any snapshot that is not
	// the newest of its track: reopening an earlier one would invalidate the
	// carry-forward baseline of every later snapshot.
	ErrCannotReopenNonLatestState = pkgerrors.New(pkgerrors.CodeStateConflict, "only the latest progress state can be reopened")

	// ErrStateFinalized rejects edits to a finalized snapshot's lines.
	ErrStateFinalized = pkgerrors.New(pkgerrors.CodeStateConflict, "progress state is finalized")
)
