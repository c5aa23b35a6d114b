/*
handlers.go - HTTP API handlers for the SMS balance gateway

PURPOSE:
  Exposes the balance workflow via a small JSON API. Handles HTTP
  request/response and delegates to the tracker, device client, and
  history store.

ENDPOINTS:
  POST /send-sms         Send a user SMS; establish a balance baseline if
                         none exists; fire the carrier balance trigger
  POST /check-balance    Fire the carrier balance trigger only
  GET  /balance-info     Run the full consume workflow (poll with retries,
                         parse, persist, log, delete)
  GET  /balance          One-shot inbox scan, no retries, no state change
  GET  /balance-history  Consumed-notification log
  GET  /stats            Device traffic/signal/info passthrough

ERROR HANDLING:
  - 400: missing request fields
  - 500: device communication failures and inconsistent notification data;
         clients get a short generic message, detail goes to server logs
  - "Notification not received" within the retry budget is NOT an HTTP
    error: it is an expected outcome of asynchronous SMS delivery and is
    reported as 200 {success:false, error}

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - balance/tracker.go: The workflow behind /balance-info
*/
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/warp/balance-gateway/balance"
	"github.com/warp/balance-gateway/router"
	"github.com/warp/balance-gateway/store/file"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Trigger identifies the carrier balance-check SMS: a fixed body sent to a
// short code.
type Trigger struct {
	Number  string
	Message string
}

// PollBudget bounds one reconciliation-loop run.
type PollBudget struct {
	Attempts int
	Delay    time.Duration
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Client  router.Client
	Tracker *balance.Tracker
	History *file.HistoryStore

	Trigger Trigger

	// BaselineBudget paces the baseline poll inside /send-sms;
	// BalanceBudget paces /balance-info. Same attempt count, different
	// delay: balance-info is the patient path.
	BaselineBudget PollBudget
	BalanceBudget  PollBudget
}

// NewHandler creates a handler with the given dependencies.
func NewHandler(client router.Client, tracker *balance.Tracker, history *file.HistoryStore) *Handler {
	return &Handler{
		Client:         client,
		Tracker:        tracker,
		History:        history,
		Trigger:        Trigger{Number: "18258", Message: "TILI"},
		BaselineBudget: PollBudget{Attempts: 5, Delay: time.Second},
		BalanceBudget:  PollBudget{Attempts: 5, Delay: 3 * time.Second},
	}
}

// =============================================================================
// SMS HANDLERS
// =============================================================================

// SendSMS handles POST /send-sms.
func (h *Handler) SendSMS(w http.ResponseWriter, r *http.Request) {
	var req SendSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PhoneNumbers == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Phone numbers and message are required", nil)
		return
	}

	numbers := splitNumbers(req.PhoneNumbers)
	ctx := r.Context()

	result, err := h.Client.SendSMS(ctx, numbers, req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send SMS", err)
		return
	}

	// With no baseline there is nothing to compare the next notification
	// against, so establish one before requesting a fresh balance.
	if h.Tracker.PreviousBalance() == nil {
		log.Printf("[API] No baseline balance, establishing one")
		if _, err := h.Tracker.EnsureBaseline(ctx, h.BaselineBudget.Attempts, h.BaselineBudget.Delay); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to send SMS", err)
			return
		}
	}

	if _, err := h.Client.SendSMS(ctx, []string{h.Trigger.Number}, h.Trigger.Message); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send SMS", err)
		return
	}

	writeJSON(w, http.StatusOK, SendSMSResponse{
		Success:         true,
		Result:          result,
		PreviousBalance: formatOptionalAmount(h.Tracker.PreviousBalance()),
	})
}

// CheckBalance handles POST /check-balance.
func (h *Handler) CheckBalance(w http.ResponseWriter, r *http.Request) {
	result, err := h.Client.SendSMS(r.Context(), []string{h.Trigger.Number}, h.Trigger.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to request a balance check", err)
		return
	}
	writeJSON(w, http.StatusOK, CheckBalanceResponse{Success: true, Result: result})
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// BalanceInfo handles GET /balance-info: the full consume workflow.
func (h *Handler) BalanceInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.Tracker.Consume(r.Context(), h.BalanceBudget.Attempts, h.BalanceBudget.Delay)
	if errors.Is(err, balance.ErrNotReceived) {
		writeJSON(w, http.StatusOK, BalanceInfoResponse{
			Success: false,
			Error:   "No balance notification in new messages",
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve balance information", err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceInfoResponse{
		Success:         true,
		CurrentBalance:  formatAmount(info.Current),
		PreviousBalance: formatOptionalAmount(info.Previous),
		Spent:           formatAmount(info.Spent),
	})
}

// Balance handles GET /balance: a one-shot inbox scan.
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	bal, found, err := h.Tracker.OneShot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read SMS messages", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, BalanceResponse{
			Success: false,
			Error:   "No balance found in received messages",
		})
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{Success: true, Balance: formatAmount(bal)})
}

// BalanceHistory handles GET /balance-history.
func (h *Handler) BalanceHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.History.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read balance history", err)
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Success: true, History: history})
}

// =============================================================================
// STATS HANDLER
// =============================================================================

// Stats handles GET /stats: opaque monitoring passthrough.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	traffic, err := h.Client.TrafficStats(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch statistics", err)
		return
	}
	signal, err := h.Client.Signal(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch statistics", err)
		return
	}
	device, err := h.Client.DeviceInfo(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch statistics", err)
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		TrafficStats: traffic,
		SignalInfo:   signal,
		DeviceInfo:   device,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func splitNumbers(s string) []string {
	parts := strings.Split(s, ",")
	numbers := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			numbers = append(numbers, trimmed)
		}
	}
	return numbers
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError sends a short client-facing message and logs the detail
// server-side. Stack traces and device error text never reach the client.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Printf("[API] %s: %v", message, err)
	}
	writeJSON(w, status, ErrorResponse{Error: message})
}
