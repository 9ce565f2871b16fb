package config

import "time"

// Server timeouts.
const (
	ServerReadTimeout    = 15 * time.Second
	ServerWriteTimeout   = 0 // disabled: SSE streams stay open indefinitely
	ServerIdleTimeout    = 120 * time.Second
	ServerMaxHeaderBytes = 1 << 20
	ShutdownTimeout      = 30 * time.Second
)

// Denominations.
const (
	// NativeDecimals is the fractional precision of native-currency amounts.
	NativeDecimals = 18

	// FallbackTokenDecimals is used when the decimals() lookup on a token
	// contract fails. Most ERC-20 tokens use 18.
	FallbackTokenDecimals = 18
)

// ERC-20 method selectors (4-byte, hex without 0x).
const (
	ERC20DecimalsMethodID = "313ce567" // decimals()
)

// Gas handling for disperse transactions.
const (
	// Suggested gas price is bumped by 20% so batch payments don't stall
	// behind the current market price.
	GasPriceBufferNumerator   = 120
	GasPriceBufferDenominator = 100

	// Estimated gas is bumped by 20% to absorb per-recipient variance
	// (cold vs warm recipient accounts).
	GasLimitBufferNumerator   = 120
	GasLimitBufferDenominator = 100
)

// Confirmation wait.
const (
	ReceiptPollInterval = 3 * time.Second
	ReceiptPollTimeout  = 5 * time.Minute
)

// Event streaming.
const (
	EventHubBuffer       = 64
	SSEKeepAliveInterval = 15 * time.Second
)

// Draft store.
const (
	// DraftKey is the fixed name under which the single draft blob is stored.
	DraftKey = "last_batch"

	// MaxDraftBytes caps the persisted draft size.
	MaxDraftBytes = 1 << 20
)

// Submission history pagination.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// CSV import.
const (
	MaxImportBytes = 4 << 20
)

// Logging.
const (
	LogMaxAgeDays = 14
)
