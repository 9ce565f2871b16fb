package disperse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Fantasim/rainmaker/internal/batch"
	"github.com/Fantasim/rainmaker/internal/chains"
	"github.com/Fantasim/rainmaker/internal/config"
	"github.com/Fantasim/rainmaker/internal/session"
)

// State is the dispatcher's position in the submission lifecycle.
type State string

const (
	StateIdle              State = "idle"
	StateValidating        State = "validating"
	StateResolving         State = "resolving"
	StateAwaitingSignature State = "awaiting_signature"
	StateBroadcast         State = "broadcast"
	StatePending           State = "pending"
	StateConfirmed         State = "confirmed"
	StateFailed            State = "failed"
)

// Transition is one observable state change, streamed to the submitter and
// fanned out over the hub.
type Transition struct {
	State     State     `json:"state"`
	Handle    string    `json:"handle,omitempty"`
	ErrorCode string    `json:"errorCode,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

// TransactionRecord tracks the single live broadcast submission. It exists
// only between broadcast and the terminal status and is discarded afterwards;
// callers wanting history must persist the handle themselves.
type TransactionRecord struct {
	Handle        string
	Status        State // StatePending, StateConfirmed or StateFailed
	FailureReason string
}

// SubmissionInfo describes an accepted submission so the caller can persist
// history. Snapshotted before the signature request; immutable afterwards.
type SubmissionInfo struct {
	NetworkID      int64
	NetworkName    string
	Contract       common.Address
	Token          *common.Address
	Decimals       int
	RecipientCount int
	TotalValue     *big.Int
}

// TokenMetadata resolves a token's decimal precision. Implemented by the RPC
// session; a batch is scaled by the token's own precision, never an assumed 18.
type TokenMetadata interface {
	TokenDecimals(ctx context.Context, token common.Address) (int, error)
}

// Dispatcher drives one submission at a time from raw text to a terminal
// outcome. All mutation of engine state happens inside its own transitions;
// a non-Idle dispatcher rejects further submissions instead of queueing them.
type Dispatcher struct {
	session session.Adapter
	meta    TokenMetadata
	hub     *Hub

	mu        sync.Mutex
	state     State
	record    *TransactionRecord
	runCancel context.CancelFunc
}

// NewDispatcher creates an idle dispatcher.
func NewDispatcher(sess session.Adapter, meta TokenMetadata, hub *Hub) *Dispatcher {
	return &Dispatcher{
		session: sess,
		meta:    meta,
		hub:     hub,
		state:   StateIdle,
	}
}

// CurrentState returns the dispatcher's current state for display.
func (d *Dispatcher) CurrentState() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// LiveRecord returns a copy of the in-flight transaction record, if any.
func (d *Dispatcher) LiveRecord() *TransactionRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.record == nil {
		return nil
	}
	rec := *d.record
	return &rec
}

// Submit starts a new submission from line-oriented "address,amount" text.
// Parsing and network resolution run synchronously so the caller gets parse
// and registry errors directly; once the call shape is prepared the
// signature/broadcast/confirmation phase runs asynchronously and its
// transitions arrive on the returned channel, which is closed after the
// terminal transition.
//
// ctx must outlive the submission: cancelling it before a signature has been
// requested abandons the attempt, cancelling later does not stop the
// already-broadcast transaction.
func (d *Dispatcher) Submit(ctx context.Context, rawText, tokenAddress string) (*SubmissionInfo, <-chan Transition, error) {
	return d.submit(ctx, tokenAddress, func(decimals int) (*batch.Batch, error) {
		return batch.Parse(rawText, tokenAddress, decimals)
	})
}

// SubmitColumns starts a submission from the legacy two-column input mode:
// addresses and amounts supplied as independent line-delimited fields.
func (d *Dispatcher) SubmitColumns(ctx context.Context, addressText, amountText, tokenAddress string) (*SubmissionInfo, <-chan Transition, error) {
	return d.submit(ctx, tokenAddress, func(decimals int) (*batch.Batch, error) {
		return batch.ParseColumns(addressText, amountText, tokenAddress, decimals)
	})
}

func (d *Dispatcher) submit(ctx context.Context, tokenAddress string, parse func(decimals int) (*batch.Batch, error)) (*SubmissionInfo, <-chan Transition, error) {
	d.mu.Lock()
	if d.state != StateIdle {
		state := d.state
		d.mu.Unlock()
		return nil, nil, fmt.Errorf("%w: dispatcher is %s", config.ErrSubmissionInProgress, state)
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.state = StateValidating
	d.runCancel = cancel
	d.mu.Unlock()

	d.hub.Broadcast(d.transition(StateValidating, "", "", ""))

	info, call, err := d.prepare(runCtx, tokenAddress, parse)
	if err != nil {
		d.reset()
		d.hub.Broadcast(d.transition(StateIdle, "", errorCode(err), err.Error()))
		return nil, nil, err
	}

	ch := make(chan Transition, config.EventHubBuffer)
	go d.run(runCtx, ch, call)

	return info, ch, nil
}

// prepare covers the Validating and Resolving states: parse the batch, snapshot
// the network and account, and build the call shape. Synchronous; the only
// suspending work is the session reads permitted before a signature request.
func (d *Dispatcher) prepare(ctx context.Context, tokenAddress string, parse func(decimals int) (*batch.Batch, error)) (*SubmissionInfo, session.CallShape, error) {
	decimals := config.NativeDecimals
	trimmedToken := strings.TrimSpace(tokenAddress)
	if trimmedToken != "" && common.IsHexAddress(trimmedToken) {
		dec, err := d.meta.TokenDecimals(ctx, common.HexToAddress(trimmedToken))
		if err != nil {
			slog.Warn("token decimals lookup failed, assuming fallback precision",
				"token", trimmedToken,
				"fallback", config.FallbackTokenDecimals,
				"error", err,
			)
			decimals = config.FallbackTokenDecimals
		} else {
			decimals = dec
		}
	}

	// Re-parsed on every attempt so stale validation cannot leak across edits.
	b, err := parse(decimals)
	if err != nil {
		return nil, session.CallShape{}, err
	}

	if err := ctx.Err(); err != nil {
		return nil, session.CallShape{}, fmt.Errorf("submission cancelled: %w", err)
	}

	d.setState(StateResolving)
	d.hub.Broadcast(d.transition(StateResolving, "", "", ""))

	// Network id and account are read exactly once per submission, here, and
	// never re-read mid-flight.
	networkID, err := d.session.CurrentNetworkID(ctx)
	if err != nil {
		return nil, session.CallShape{}, fmt.Errorf("read active network: %w", err)
	}

	net, ok := chains.Resolve(networkID)
	if !ok {
		return nil, session.CallShape{}, fmt.Errorf("%w: chain id %d has no registered distribution contract", config.ErrUnsupportedNetwork, networkID)
	}

	if _, err := d.session.CurrentAccount(ctx); err != nil {
		return nil, session.CallShape{}, err
	}

	call, err := BuildCall(net, b)
	if err != nil {
		return nil, session.CallShape{}, err
	}

	info := &SubmissionInfo{
		NetworkID:      net.NetworkID,
		NetworkName:    net.Name,
		Contract:       net.DistributionContract,
		Token:          b.Token,
		Decimals:       decimals,
		RecipientCount: len(b.Entries),
		TotalValue:     b.TotalValue(),
	}

	slog.Info("batch prepared",
		"network", net.Name,
		"networkID", net.NetworkID,
		"contract", net.DistributionContract.Hex(),
		"native", b.IsNative(),
		"recipients", len(b.Entries),
		"total", info.TotalValue.String(),
	)

	return info, call, nil
}

// run drives the asynchronous phase: signature, broadcast, confirmation.
func (d *Dispatcher) run(ctx context.Context, ch chan Transition, call session.CallShape) {
	defer close(ch)

	emit := func(tr Transition) {
		select {
		case ch <- tr:
		default:
			slog.Warn("submitter transition dropped", "state", tr.State)
		}
		d.hub.Broadcast(tr)
	}

	// Last cancellation point: once a signature is requested the submission
	// is no longer ours to stop.
	if err := ctx.Err(); err != nil {
		d.reset()
		emit(d.transition(StateIdle, "", "", "submission cancelled before signature"))
		return
	}

	d.setState(StateAwaitingSignature)
	emit(d.transition(StateAwaitingSignature, "", "", ""))

	handle, err := d.session.RequestAndBroadcast(ctx, call)
	if err != nil {
		// No transaction record exists: nothing was accepted on-chain.
		code := config.ErrorSignatureRejected
		if errors.Is(err, config.ErrWalletNotFound) {
			code = config.ErrorWalletNotFound
		}
		slog.Warn("signature request failed", "error", err)
		d.reset()
		emit(d.transition(StateIdle, "", code, err.Error()))
		return
	}

	d.mu.Lock()
	d.record = &TransactionRecord{Handle: handle, Status: StatePending}
	d.state = StateBroadcast
	d.mu.Unlock()
	emit(d.transition(StateBroadcast, handle, "", ""))

	d.setState(StatePending)
	emit(d.transition(StatePending, handle, "", ""))

	conf, err := d.session.AwaitConfirmation(ctx, handle)
	if err != nil {
		d.finish(emit, handle, StateFailed, config.ErrorTxLost,
			fmt.Sprintf("%s: %s", config.ErrTransactionLost, err))
		return
	}

	switch conf.Status {
	case session.StatusConfirmed:
		d.finish(emit, handle, StateConfirmed, "", "")
	case session.StatusReverted:
		d.finish(emit, handle, StateFailed, config.ErrorTxReverted, conf.RevertReason)
	default:
		d.finish(emit, handle, StateFailed, config.ErrorTxLost, config.ErrTransactionLost.Error())
	}
}

// finish records the terminal outcome, emits it, and resets the engine. The
// completed record is discarded, not retained.
func (d *Dispatcher) finish(emit func(Transition), handle string, terminal State, code, detail string) {
	d.mu.Lock()
	if d.record != nil {
		d.record.Status = terminal
		d.record.FailureReason = detail
	}
	d.state = terminal
	d.mu.Unlock()

	emit(d.transition(terminal, handle, code, detail))

	d.reset()
	d.hub.Broadcast(d.transition(StateIdle, "", "", ""))
}

// Cancel abandons an in-progress attempt. Only permitted before a signature
// has been requested; a signed, broadcast transaction is irreversible.
func (d *Dispatcher) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case StateIdle:
		return nil
	case StateValidating, StateResolving:
		if d.runCancel != nil {
			d.runCancel()
		}
		slog.Info("submission cancelled", "state", d.state)
		return nil
	default:
		return fmt.Errorf("%w: dispatcher is %s", config.ErrNotCancellable, d.state)
	}
}

func (d *Dispatcher) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

func (d *Dispatcher) reset() {
	d.mu.Lock()
	if d.runCancel != nil {
		d.runCancel()
		d.runCancel = nil
	}
	d.state = StateIdle
	d.record = nil
	d.mu.Unlock()
}

func (d *Dispatcher) transition(s State, handle, code, detail string) Transition {
	return Transition{
		State:     s,
		Handle:    handle,
		ErrorCode: code,
		Detail:    detail,
		At:        time.Now().UTC(),
	}
}

// errorCode maps a prepare-phase error to its API error code.
func errorCode(err error) string {
	var (
		malformed    *batch.MalformedLineError
		invalidAddr  *batch.InvalidAddressError
		invalidAmt   *batch.InvalidAmountError
		invalidToken *batch.InvalidTokenAddressError
		mismatch     *batch.CountMismatchError
	)

	switch {
	case errors.As(err, &malformed):
		return config.ErrorMalformedLine
	case errors.As(err, &invalidAddr):
		return config.ErrorInvalidAddress
	case errors.As(err, &invalidAmt):
		return config.ErrorInvalidAmount
	case errors.As(err, &invalidToken):
		return config.ErrorInvalidTokenAddress
	case errors.As(err, &mismatch):
		return config.ErrorCountMismatch
	case errors.Is(err, batch.ErrEmptyBatch):
		return config.ErrorEmptyBatch
	case errors.Is(err, config.ErrUnsupportedNetwork):
		return config.ErrorUnsupportedNetwork
	case errors.Is(err, config.ErrWalletNotFound):
		return config.ErrorWalletNotFound
	case errors.Is(err, config.ErrSubmissionInProgress):
		return config.ErrorSubmissionInProgress
	default:
		return config.ErrorInternal
	}
}

// ErrorCode exposes the error-code mapping to the API layer.
func ErrorCode(err error) string { return errorCode(err) }
