package session

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Fantasim/rainmaker/internal/config"
)

// EthClient defines the minimal ethclient interface the session adapter needs.
// This allows mocking in tests.
type EthClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// RPCSession implements Adapter on top of a JSON-RPC node and a locally held
// signing key. A nil key means no active session: reads still work but any
// signature request fails with ErrWalletNotFound.
type RPCSession struct {
	client  EthClient
	key     *ecdsa.PrivateKey
	account common.Address
	limiter *RateLimiter
}

// NewRPCSession creates the session adapter. key may be nil.
func NewRPCSession(client EthClient, key *ecdsa.PrivateKey, limiter *RateLimiter) *RPCSession {
	s := &RPCSession{client: client, key: key, limiter: limiter}
	if key != nil {
		s.account = crypto.PubkeyToAddress(key.PublicKey)
		slog.Info("session account loaded", "account", s.account.Hex())
	} else {
		slog.Warn("no signing key configured, submissions will fail at the signature step")
	}
	return s
}

// CurrentNetworkID queries the node for its chain id. Deliberately not cached:
// the dispatcher snapshots it once per submission and the node endpoint may
// change between attempts.
func (s *RPCSession) CurrentNetworkID(ctx context.Context) (int64, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	id, err := s.client.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("query chain id: %w", err)
	}
	return id.Int64(), nil
}

// CurrentAccount returns the configured signing account.
func (s *RPCSession) CurrentAccount(ctx context.Context) (common.Address, error) {
	if s.key == nil {
		return common.Address{}, config.ErrWalletNotFound
	}
	return s.account, nil
}

// BufferedGasPrice bumps a suggested gas price by the configured buffer.
func BufferedGasPrice(suggested *big.Int) *big.Int {
	buffered := new(big.Int).Mul(suggested, big.NewInt(config.GasPriceBufferNumerator))
	return buffered.Div(buffered, big.NewInt(config.GasPriceBufferDenominator))
}

// RequestAndBroadcast signs the prepared call and submits it. Any failure
// before the network accepts the transaction wraps ErrSignatureRejected (or
// ErrWalletNotFound when no key is loaded) so the dispatcher can return to
// Idle without a transaction record.
func (s *RPCSession) RequestAndBroadcast(ctx context.Context, call CallShape) (string, error) {
	if s.key == nil {
		return "", fmt.Errorf("%w: no signing key loaded", config.ErrWalletNotFound)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	nonce, err := s.client.PendingNonceAt(ctx, s.account)
	if err != nil {
		return "", fmt.Errorf("%w: get nonce: %s", config.ErrSignatureRejected, err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	suggested, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: suggest gas price: %s", config.ErrSignatureRejected, err)
	}
	gasPrice := BufferedGasPrice(suggested)

	value := call.Value
	if value == nil {
		value = big.NewInt(0)
	}

	msg := ethereum.CallMsg{
		From:  s.account,
		To:    &call.To,
		Value: value,
		Data:  call.Data,
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	gasLimit, err := s.client.EstimateGas(ctx, msg)
	if err != nil {
		// The node refusing to estimate means the call would not execute;
		// surface it as a rejected signature request, nothing was broadcast.
		return "", fmt.Errorf("%w: estimate gas: %s", config.ErrSignatureRejected, err)
	}
	gasLimit = gasLimit * config.GasLimitBufferNumerator / config.GasLimitBufferDenominator

	unsigned := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &call.To,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     call.Data,
	})

	signer := types.NewEIP155Signer(big.NewInt(call.NetworkID))
	signed, err := types.SignTx(unsigned, signer, s.key)
	if err != nil {
		return "", fmt.Errorf("%w: sign transaction: %s", config.ErrSignatureRejected, err)
	}

	slog.Info("broadcasting disperse transaction",
		"from", s.account.Hex(),
		"to", call.To.Hex(),
		"value", value.String(),
		"gasLimit", gasLimit,
		"gasPrice", gasPrice.String(),
		"nonce", nonce,
		"networkID", call.NetworkID,
	)

	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("%w: broadcast: %s", config.ErrSignatureRejected, err)
	}

	return signed.Hash().Hex(), nil
}

// AwaitConfirmation waits for the submission to reach a terminal on-chain
// outcome: mined successfully, mined but reverted, or dropped from the pool.
func (s *RPCSession) AwaitConfirmation(ctx context.Context, handle string) (Confirmation, error) {
	hash := common.HexToHash(handle)

	pollCtx, cancel := context.WithTimeout(ctx, config.ReceiptPollTimeout)
	defer cancel()

	for {
		if err := s.limiter.Wait(pollCtx); err != nil {
			return Confirmation{}, err
		}

		receipt, err := s.client.TransactionReceipt(pollCtx, hash)
		if err == nil {
			block := receipt.BlockNumber.Uint64()
			if receipt.Status == types.ReceiptStatusFailed {
				reason := s.revertReason(pollCtx, hash, receipt.BlockNumber)
				slog.Warn("disperse transaction reverted",
					"txHash", handle,
					"block", block,
					"reason", reason,
				)
				return Confirmation{Status: StatusReverted, RevertReason: reason, BlockNumber: block}, nil
			}

			slog.Info("disperse transaction confirmed",
				"txHash", handle,
				"block", block,
				"gasUsed", receipt.GasUsed,
			)
			return Confirmation{Status: StatusConfirmed, BlockNumber: block}, nil
		}

		if !errors.Is(err, ethereum.NotFound) {
			return Confirmation{}, fmt.Errorf("query receipt for %s: %w", handle, err)
		}

		// No receipt yet. If the pool no longer knows the transaction either,
		// it was dropped or replaced.
		if _, pending, txErr := s.client.TransactionByHash(pollCtx, hash); txErr != nil {
			if errors.Is(txErr, ethereum.NotFound) {
				slog.Warn("transaction no longer known to the network", "txHash", handle)
				return Confirmation{Status: StatusLost}, nil
			}
		} else if !pending {
			// Mined between the two calls; loop immediately for the receipt.
			continue
		}

		select {
		case <-pollCtx.Done():
			slog.Warn("confirmation wait timed out", "txHash", handle)
			return Confirmation{Status: StatusLost}, nil
		case <-time.After(config.ReceiptPollInterval):
		}
	}
}

// revertReason re-executes the failed call at its inclusion block to recover
// the revert string. Best effort: returns "" when nothing can be recovered.
func (s *RPCSession) revertReason(ctx context.Context, hash common.Hash, block *big.Int) string {
	tx, _, err := s.client.TransactionByHash(ctx, hash)
	if err != nil || tx == nil {
		return ""
	}

	msg := ethereum.CallMsg{
		From:     s.account,
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}

	_, callErr := s.client.CallContract(ctx, msg, block)
	if callErr == nil {
		return ""
	}
	return strings.TrimPrefix(callErr.Error(), "execution reverted: ")
}
