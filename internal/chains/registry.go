package chains

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// NetworkContext describes the distribution target for one network. It is
// resolved once per submission and never re-read mid-flight.
type NetworkContext struct {
	NetworkID            int64
	Name                 string
	DistributionContract common.Address
}

// registry maps chain ids to their deployed distribution contracts.
var registry = map[int64]NetworkContext{
	1: {
		NetworkID:            1,
		Name:                 "Ethereum",
		DistributionContract: common.HexToAddress("0xD375BA042B41A61e36198eAd6666BC0330649403"),
	},
	56: {
		NetworkID:            56,
		Name:                 "BNB Chain",
		DistributionContract: common.HexToAddress("0x41c57d044087b1834379CdFE1E09b18698eC3A5A"),
	},
	137: {
		NetworkID:            137,
		Name:                 "Polygon",
		DistributionContract: common.HexToAddress("0xD375BA042B41A61e36198eAd6666BC0330649403"),
	},
	42161: {
		NetworkID:            42161,
		Name:                 "Arbitrum",
		DistributionContract: common.HexToAddress("0x06b9d57Ba635616F41E85D611b2DA58856176Fa9"),
	},
}

// Resolve looks up the distribution contract for a network id. The second
// return value is false when the network is not registered; callers must
// branch on it before doing any submission work.
func Resolve(networkID int64) (NetworkContext, bool) {
	ctx, ok := registry[networkID]
	return ctx, ok
}

// Supported returns all registered networks ordered by chain id.
func Supported() []NetworkContext {
	out := make([]NetworkContext, 0, len(registry))
	for _, ctx := range registry {
		out = append(out, ctx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NetworkID < out[j].NetworkID })
	return out
}
