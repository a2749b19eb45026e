package services

import "errors"

var (
	// ErrValidation covers client-side input problems caught before any
	// backend call is issued.
	ErrValidation = errors.New("validation failed")

	// ErrTransactionInProgress is returned when a commit or undo is attempted
	// while another one is still in flight. The caller gets rejected
	// synchronously; requests are never queued.
	ErrTransactionInProgress = errors.New("another operation is already in progress")

	// ErrNoValidItems means classification left nothing to commit. No
	// transaction record may be written in that case.
	ErrNoValidItems = errors.New("no valid items to process")

	// ErrAllItemsFailed means every per-item operation failed during the
	// committing phase, so no ledger entry was written.
	ErrAllItemsFailed = errors.New("all items failed to process")

	// ErrLedgerWrite marks the gap where inventory mutations succeeded but the
	// ledger entry could not be persisted. The mutations are not rolled back;
	// the returned result carries the unpersisted transaction for recovery.
	ErrLedgerWrite = errors.New("transaction ledger write failed")
)
