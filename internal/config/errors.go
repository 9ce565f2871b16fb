package config

import "errors"

// Sentinel errors for internal use.
var (
	ErrInvalidConfig = errors.New("invalid configuration")

	// Pre-broadcast, recoverable: the engine returns to Idle.
	ErrUnsupportedNetwork   = errors.New("unsupported network")
	ErrWalletNotFound       = errors.New("no active session account")
	ErrSignatureRejected    = errors.New("signature request rejected")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrNotCancellable       = errors.New("submission can no longer be cancelled")

	// Post-broadcast, terminal: the original submission must not be resent
	// automatically.
	ErrTransactionReverted = errors.New("transaction reverted")
	ErrTransactionLost     = errors.New("transaction lost")
)

// Error codes — shared with frontend via API responses and SSE events.
const (
	ErrorMalformedLine       = "ERROR_MALFORMED_LINE"
	ErrorInvalidAddress      = "ERROR_INVALID_ADDRESS"
	ErrorInvalidAmount       = "ERROR_INVALID_AMOUNT"
	ErrorInvalidTokenAddress = "ERROR_INVALID_TOKEN_ADDRESS"
	ErrorCountMismatch       = "ERROR_COUNT_MISMATCH"
	ErrorEmptyBatch          = "ERROR_EMPTY_BATCH"

	ErrorUnsupportedNetwork   = "ERROR_UNSUPPORTED_NETWORK"
	ErrorWalletNotFound       = "ERROR_WALLET_NOT_FOUND"
	ErrorSignatureRejected    = "ERROR_SIGNATURE_REJECTED"
	ErrorSubmissionInProgress = "ERROR_SUBMISSION_IN_PROGRESS"
	ErrorNotCancellable       = "ERROR_NOT_CANCELLABLE"

	ErrorTxReverted = "ERROR_TX_REVERTED"
	ErrorTxLost     = "ERROR_TX_LOST"

	ErrorInvalidRequest = "ERROR_INVALID_REQUEST"
	ErrorDatabase       = "ERROR_DATABASE"
	ErrorImportFailed   = "ERROR_IMPORT_FAILED"
	ErrorInternal       = "ERROR_INTERNAL"
)
