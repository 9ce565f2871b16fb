package session

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CallShape is the fully-prepared contract invocation handed to the session
// adapter for signing and broadcast. NetworkID pins the signature to the
// network snapshotted at submission time.
type CallShape struct {
	NetworkID int64
	To        common.Address
	Data      []byte
	Value     *big.Int // nil or zero for token calls
}

// ConfirmationStatus is the outcome reported by AwaitConfirmation.
type ConfirmationStatus string

const (
	StatusConfirmed ConfirmationStatus = "confirmed"
	StatusReverted  ConfirmationStatus = "reverted"
	StatusLost      ConfirmationStatus = "lost"
)

// Confirmation is the terminal result of one broadcast submission.
type Confirmation struct {
	Status       ConfirmationStatus
	RevertReason string // set when Status is reverted and a reason is recoverable
	BlockNumber  uint64
}

// Adapter is the wallet/session boundary the dispatcher drives. The engine
// reads network id and account exactly once per submission through it, and
// issues at most one suspending call at a time.
type Adapter interface {
	// CurrentNetworkID returns the chain id of the active session.
	CurrentNetworkID(ctx context.Context) (int64, error)

	// CurrentAccount returns the active account, or ErrWalletNotFound when no
	// signing session exists.
	CurrentAccount(ctx context.Context) (common.Address, error)

	// RequestAndBroadcast signs the call and submits it to the network,
	// returning an opaque submission handle. Errors before a handle exists
	// wrap ErrWalletNotFound or ErrSignatureRejected.
	RequestAndBroadcast(ctx context.Context, call CallShape) (string, error)

	// AwaitConfirmation suspends until the submission reaches a terminal
	// on-chain outcome.
	AwaitConfirmation(ctx context.Context, handle string) (Confirmation, error)
}
