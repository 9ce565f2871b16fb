package disperse

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Fantasim/rainmaker/internal/batch"
	"github.com/Fantasim/rainmaker/internal/chains"
	"github.com/Fantasim/rainmaker/internal/session"
)

// distributionABI is the fixed call interface of the deployed distribution
// contracts. The contract itself is a black box; only these two entry points
// are ever invoked.
const distributionABI = `[
  {"type":"function","stateMutability":"payable","name":"disperseEther",
   "inputs":[{"name":"recipients","type":"address[]"},{"name":"values","type":"uint256[]"}],"outputs":[]},
  {"type":"function","stateMutability":"nonpayable","name":"disperseToken",
   "inputs":[{"name":"token","type":"address"},{"name":"recipients","type":"address[]"},{"name":"values","type":"uint256[]"}],"outputs":[]}
]`

var disperseABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(distributionABI))
	if err != nil {
		panic(fmt.Sprintf("distribution ABI: %v", err))
	}
	return parsed
}()

// BuildCall selects the call shape for a validated batch against a resolved
// network: token batches invoke disperseToken, native batches invoke
// disperseEther with the aggregated total attached as escrowed value.
func BuildCall(net chains.NetworkContext, b *batch.Batch) (session.CallShape, error) {
	recipients := make([]common.Address, len(b.Entries))
	values := make([]*big.Int, len(b.Entries))
	for i, e := range b.Entries {
		recipients[i] = e.Recipient
		values[i] = e.Amount
	}

	call := session.CallShape{
		NetworkID: net.NetworkID,
		To:        net.DistributionContract,
	}

	if b.IsNative() {
		data, err := disperseABI.Pack("disperseEther", recipients, values)
		if err != nil {
			return session.CallShape{}, fmt.Errorf("pack disperseEther: %w", err)
		}
		call.Data = data
		call.Value = b.TotalValue()
		return call, nil
	}

	data, err := disperseABI.Pack("disperseToken", *b.Token, recipients, values)
	if err != nil {
		return session.CallShape{}, fmt.Errorf("pack disperseToken: %w", err)
	}
	call.Data = data
	return call, nil
}
