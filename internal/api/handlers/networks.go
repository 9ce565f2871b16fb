package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Fantasim/rainmaker/internal/chains"
	"github.com/Fantasim/rainmaker/internal/models"
)

// ListNetworks handles GET /api/networks, returning every network with a
// registered distribution contract.
func ListNetworks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supported := chains.Supported()

		networks := make([]models.NetworkInfo, 0, len(supported))
		for _, net := range supported {
			networks = append(networks, models.NetworkInfo{
				NetworkID:       net.NetworkID,
				Name:            net.Name,
				ContractAddress: net.DistributionContract.Hex(),
			})
		}

		slog.Debug("networks listed", "count", len(networks))

		writeJSON(w, http.StatusOK, models.APIResponse{Data: networks})
	}
}
