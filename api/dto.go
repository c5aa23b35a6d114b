/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Response types returned to clients

AMOUNT FORMATTING:
  Balances cross the wire as display strings ("12.50 €"), matching what
  the frontend renders verbatim. An unknown previous balance is "N/A".

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/balance-gateway/store/file"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// SendSMSRequest is the body of POST /send-sms. PhoneNumbers is a
// comma-separated list.
type SendSMSRequest struct {
	PhoneNumbers string `json:"phoneNumbers"`
	Message      string `json:"message"`
}

// SendSMSResponse is the result of a user-initiated send.
type SendSMSResponse struct {
	Success         bool   `json:"success"`
	Result          string `json:"result"`
	PreviousBalance string `json:"previousBalance"`
}

// CheckBalanceResponse acknowledges that the trigger SMS went out.
type CheckBalanceResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
}

// BalanceInfoResponse is the outcome of a full consume workflow.
type BalanceInfoResponse struct {
	Success         bool   `json:"success"`
	CurrentBalance  string `json:"currentBalance,omitempty"`
	PreviousBalance string `json:"previousBalance,omitempty"`
	Spent           string `json:"spent,omitempty"`
	Error           string `json:"error,omitempty"`
}

// BalanceResponse is the outcome of the one-shot inbox scan.
type BalanceResponse struct {
	Success bool   `json:"success"`
	Balance string `json:"balance,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HistoryResponse wraps the consumed-notification log.
type HistoryResponse struct {
	Success bool         `json:"success"`
	History []file.Entry `json:"history"`
}

// StatsResponse is the opaque device monitoring passthrough.
type StatsResponse struct {
	TrafficStats map[string]string `json:"trafficStats"`
	SignalInfo   map[string]string `json:"signalInfo"`
	DeviceInfo   map[string]string `json:"deviceInfo"`
}

// ErrorResponse is the standard error response. Error is a short
// human-readable message; detail stays in the server logs.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// formatAmount renders a balance for display: "12.50 €".
func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2) + " €"
}

// formatOptionalAmount renders a possibly-unknown balance, using "N/A"
// for nil.
func formatOptionalAmount(d *decimal.Decimal) string {
	if d == nil {
		return "N/A"
	}
	return formatAmount(*d)
}
