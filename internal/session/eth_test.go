package session

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Fantasim/rainmaker/internal/config"
)

// throwaway test key, never funded anywhere.
const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

type fakeEthClient struct {
	chainID  *big.Int
	nonce    uint64
	gasPrice *big.Int
	gasLimit uint64

	estimateErr error
	sendErr     error
	sentTx      *types.Transaction

	receiptFn  func() (*types.Receipt, error)
	txByHashFn func() (*types.Transaction, bool, error)
	callFn     func() ([]byte, error)
}

func (f *fakeEthClient) ChainID(ctx context.Context) (*big.Int, error) {
	return f.chainID, nil
}

func (f *fakeEthClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeEthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return f.gasPrice, nil
}

func (f *fakeEthClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if f.estimateErr != nil {
		return 0, f.estimateErr
	}
	return f.gasLimit, nil
}

func (f *fakeEthClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sentTx = tx
	return nil
}

func (f *fakeEthClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if f.receiptFn != nil {
		return f.receiptFn()
	}
	return nil, ethereum.NotFound
}

func (f *fakeEthClient) TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error) {
	if f.txByHashFn != nil {
		return f.txByHashFn()
	}
	return f.sentTx, true, nil
}

func (f *fakeEthClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if f.callFn != nil {
		return f.callFn()
	}
	return nil, nil
}

func newFakeClient() *fakeEthClient {
	return &fakeEthClient{
		chainID:  big.NewInt(137),
		nonce:    7,
		gasPrice: big.NewInt(30_000_000_000),
		gasLimit: 100_000,
	}
}

func newTestSession(t *testing.T, client EthClient, withKey bool) *RPCSession {
	t.Helper()
	limiter := NewRateLimiter("test", 1000)
	if !withKey {
		return NewRPCSession(client, nil, limiter)
	}
	key, err := crypto.HexToECDSA(testKeyHex)
	if err != nil {
		t.Fatalf("parse test key: %v", err)
	}
	return NewRPCSession(client, key, limiter)
}

func TestCurrentNetworkID(t *testing.T) {
	s := newTestSession(t, newFakeClient(), true)

	id, err := s.CurrentNetworkID(context.Background())
	if err != nil {
		t.Fatalf("CurrentNetworkID error = %v", err)
	}
	if id != 137 {
		t.Errorf("network id = %d, want 137", id)
	}
}

func TestCurrentAccount_NoKey(t *testing.T) {
	s := newTestSession(t, newFakeClient(), false)

	if _, err := s.CurrentAccount(context.Background()); !errors.Is(err, config.ErrWalletNotFound) {
		t.Errorf("error = %v, want ErrWalletNotFound", err)
	}
}

func TestRequestAndBroadcast_Success(t *testing.T) {
	client := newFakeClient()
	s := newTestSession(t, client, true)

	contract := common.HexToAddress("0xD375BA042B41A61e36198eAd6666BC0330649403")
	call := CallShape{
		NetworkID: 137,
		To:        contract,
		Data:      []byte{0x01, 0x02},
		Value:     big.NewInt(1000),
	}

	handle, err := s.RequestAndBroadcast(context.Background(), call)
	if err != nil {
		t.Fatalf("RequestAndBroadcast error = %v", err)
	}
	if handle == "" {
		t.Fatal("expected non-empty handle")
	}

	sent := client.sentTx
	if sent == nil {
		t.Fatal("no transaction broadcast")
	}
	if sent.To() == nil || *sent.To() != contract {
		t.Errorf("tx to = %v, want %s", sent.To(), contract.Hex())
	}
	if sent.Value().Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("tx value = %s, want 1000", sent.Value())
	}
	if sent.Nonce() != 7 {
		t.Errorf("tx nonce = %d, want 7", sent.Nonce())
	}
	// 100000 estimated, 20% buffer.
	if sent.Gas() != 120_000 {
		t.Errorf("tx gas = %d, want 120000", sent.Gas())
	}
	// 30 gwei suggested, 20% buffer.
	if sent.GasPrice().Cmp(big.NewInt(36_000_000_000)) != 0 {
		t.Errorf("tx gas price = %s, want 36000000000", sent.GasPrice())
	}
	if sent.Hash().Hex() != handle {
		t.Errorf("handle %s does not match tx hash %s", handle, sent.Hash().Hex())
	}
}

func TestRequestAndBroadcast_NoKey(t *testing.T) {
	s := newTestSession(t, newFakeClient(), false)

	_, err := s.RequestAndBroadcast(context.Background(), CallShape{NetworkID: 1})
	if !errors.Is(err, config.ErrWalletNotFound) {
		t.Errorf("error = %v, want ErrWalletNotFound", err)
	}
}

func TestRequestAndBroadcast_EstimateRefused(t *testing.T) {
	client := newFakeClient()
	client.estimateErr = errors.New("execution reverted")
	s := newTestSession(t, client, true)

	_, err := s.RequestAndBroadcast(context.Background(), CallShape{NetworkID: 137})
	if !errors.Is(err, config.ErrSignatureRejected) {
		t.Errorf("error = %v, want ErrSignatureRejected", err)
	}
	if client.sentTx != nil {
		t.Error("nothing should have been broadcast")
	}
}

func TestRequestAndBroadcast_BroadcastRefused(t *testing.T) {
	client := newFakeClient()
	client.sendErr = errors.New("nonce too low")
	s := newTestSession(t, client, true)

	_, err := s.RequestAndBroadcast(context.Background(), CallShape{NetworkID: 137})
	if !errors.Is(err, config.ErrSignatureRejected) {
		t.Errorf("error = %v, want ErrSignatureRejected", err)
	}
}

func TestAwaitConfirmation_Confirmed(t *testing.T) {
	client := newFakeClient()
	client.receiptFn = func() (*types.Receipt, error) {
		return &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(12345),
		}, nil
	}
	s := newTestSession(t, client, true)

	conf, err := s.AwaitConfirmation(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("AwaitConfirmation error = %v", err)
	}
	if conf.Status != StatusConfirmed {
		t.Errorf("status = %s, want confirmed", conf.Status)
	}
	if conf.BlockNumber != 12345 {
		t.Errorf("block = %d, want 12345", conf.BlockNumber)
	}
}

func TestAwaitConfirmation_RevertedWithReason(t *testing.T) {
	client := newFakeClient()
	client.receiptFn = func() (*types.Receipt, error) {
		return &types.Receipt{
			Status:      types.ReceiptStatusFailed,
			BlockNumber: big.NewInt(500),
		}, nil
	}
	to := common.HexToAddress("0xD375BA042B41A61e36198eAd6666BC0330649403")
	client.txByHashFn = func() (*types.Transaction, bool, error) {
		return types.NewTx(&types.LegacyTx{To: &to, Gas: 100_000, GasPrice: big.NewInt(1), Value: big.NewInt(0)}), false, nil
	}
	client.callFn = func() ([]byte, error) {
		return nil, errors.New("execution reverted: insufficient allowance")
	}
	s := newTestSession(t, client, true)

	conf, err := s.AwaitConfirmation(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("AwaitConfirmation error = %v", err)
	}
	if conf.Status != StatusReverted {
		t.Errorf("status = %s, want reverted", conf.Status)
	}
	if conf.RevertReason != "insufficient allowance" {
		t.Errorf("reason = %q, want %q", conf.RevertReason, "insufficient allowance")
	}
}

func TestAwaitConfirmation_Dropped(t *testing.T) {
	client := newFakeClient()
	client.receiptFn = func() (*types.Receipt, error) {
		return nil, ethereum.NotFound
	}
	client.txByHashFn = func() (*types.Transaction, bool, error) {
		return nil, false, ethereum.NotFound
	}
	s := newTestSession(t, client, true)

	conf, err := s.AwaitConfirmation(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("AwaitConfirmation error = %v", err)
	}
	if conf.Status != StatusLost {
		t.Errorf("status = %s, want lost", conf.Status)
	}
}

func TestBufferedGasPrice(t *testing.T) {
	tests := []struct {
		suggested int64
		want      int64
	}{
		{100, 120},
		{1_000_000_000, 1_200_000_000},
		{0, 0},
	}

	for _, tt := range tests {
		got := BufferedGasPrice(big.NewInt(tt.suggested))
		if got.Int64() != tt.want {
			t.Errorf("BufferedGasPrice(%d) = %d, want %d", tt.suggested, got.Int64(), tt.want)
		}
	}
}

func TestTokenDecimals(t *testing.T) {
	client := newFakeClient()
	client.callFn = func() ([]byte, error) {
		return common.LeftPadBytes([]byte{6}, 32), nil
	}
	s := newTestSession(t, client, true)

	decimals, err := s.TokenDecimals(context.Background(), common.HexToAddress("0x41c57d044087b1834379CdFE1E09b18698eC3A5A"))
	if err != nil {
		t.Fatalf("TokenDecimals error = %v", err)
	}
	if decimals != 6 {
		t.Errorf("decimals = %d, want 6", decimals)
	}
}

func TestTokenDecimals_ShortResult(t *testing.T) {
	client := newFakeClient()
	client.callFn = func() ([]byte, error) {
		return []byte{6}, nil
	}
	s := newTestSession(t, client, true)

	if _, err := s.TokenDecimals(context.Background(), common.Address{}); err == nil {
		t.Error("expected error for short result")
	}
}
