package session

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Fantasim/rainmaker/internal/config"
)

// erc20DecimalsSelector is the 4-byte function selector for decimals().
var erc20DecimalsSelector = func() []byte {
	b, _ := hex.DecodeString(config.ERC20DecimalsMethodID)
	return b
}()

// TokenDecimals fetches the decimals() value of an ERC-20 token contract.
// Token batches are scaled by the token's own precision, not a hardcoded 18.
func (s *RPCSession) TokenDecimals(ctx context.Context, token common.Address) (int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	result, err := s.client.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: erc20DecimalsSelector,
	}, nil)
	if err != nil {
		return 0, fmt.Errorf("decimals call on token %s: %w", token.Hex(), err)
	}

	if len(result) < 32 {
		return 0, fmt.Errorf("decimals on token %s returned %d bytes, expected 32", token.Hex(), len(result))
	}

	decimals := new(big.Int).SetBytes(result[:32])
	// uint8 in the ERC-20 ABI; anything above 77 cannot be a real precision.
	if !decimals.IsInt64() || decimals.Int64() < 0 || decimals.Int64() > 77 {
		return 0, fmt.Errorf("decimals on token %s out of range: %s", token.Hex(), decimals)
	}

	return int(decimals.Int64()), nil
}
