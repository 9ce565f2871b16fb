package models

// Submission is one recorded disperse attempt that reached broadcast. The
// engine itself keeps no history; the API layer writes these as transitions
// arrive.
type Submission struct {
	ID              int64  `json:"id"`
	NetworkID       int64  `json:"networkId"`
	NetworkName     string `json:"networkName"`
	ContractAddress string `json:"contractAddress"`
	TokenAddress    string `json:"tokenAddress,omitempty"` // empty for native batches
	Decimals        int    `json:"decimals"`
	RecipientCount  int    `json:"recipientCount"`
	TotalValue      string `json:"totalValue"` // base units, decimal string
	TxHash          string `json:"txHash"`
	Status          string `json:"status"` // pending, confirmed, failed
	FailureReason   string `json:"failureReason,omitempty"`
	CreatedAt       string `json:"createdAt"`
	CompletedAt     string `json:"completedAt,omitempty"`
}

// Draft is the operator's saved batch input, restored on reload.
type Draft struct {
	Text         string `json:"text"`
	TokenAddress string `json:"tokenAddress,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// DisperseRequest is the submission payload. Either Text (one
// "address,amount" pair per line) or the legacy Addresses/Amounts column pair
// must be set.
type DisperseRequest struct {
	Text         string `json:"text,omitempty"`
	Addresses    string `json:"addresses,omitempty"`
	Amounts      string `json:"amounts,omitempty"`
	TokenAddress string `json:"tokenAddress,omitempty"`
}

// NetworkInfo describes one supported network for display.
type NetworkInfo struct {
	NetworkID       int64  `json:"networkId"`
	Name            string `json:"name"`
	ContractAddress string `json:"contractAddress"`
}

// DispatchStatus is the live engine view returned by the state endpoint.
type DispatchStatus struct {
	State         string `json:"state"`
	TxHash        string `json:"txHash,omitempty"`
	FailureReason string `json:"failureReason,omitempty"`
}

// ImportResult reports a CSV import conversion.
type ImportResult struct {
	Text     string `json:"text"`
	RowCount int    `json:"rowCount"`
	Skipped  int    `json:"skipped"`
}

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Data interface{} `json:"data,omitempty"`
	Meta *APIMeta    `json:"meta,omitempty"`
}

// APIMeta contains pagination and execution metadata.
type APIMeta struct {
	Page          int   `json:"page,omitempty"`
	PageSize      int   `json:"pageSize,omitempty"`
	Total         int64 `json:"total,omitempty"`
	ExecutionTime int64 `json:"executionTime,omitempty"`
}

// APIError is the standard error response.
type APIError struct {
	Error APIErrorDetail `json:"error"`
}

// APIErrorDetail contains error code and message.
type APIErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
