package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"shiftpay.service/internal/core"
	"shiftpay.service/internal/ports/repository"
)

// SettlementHandler exposes the escrow and settlement operations over
// HTTP. It is a thin translation layer; all rules live in the core
// services.
type SettlementHandler struct {
	Ledger     *core.EscrowLedger
	Engine     *core.SettlementEngine
	Timesheets *core.TimesheetService
	Repo       repository.Repository
}

type openHoldRequest struct {
	EstimatedHours float64  `json:"estimatedHours"`
	HourlyRate     string   `json:"hourlyRate"`
	FeePercentage  *float64 `json:"feePercentage,omitempty"`
}

type clockOutRequest struct {
	BreakMinutes *int `json:"breakMinutes,omitempty"`
}

// OpenHold creates the estimate-based escrow hold for a shift.
func (h *SettlementHandler) OpenHold(w http.ResponseWriter, r *http.Request) {
	employerID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req openHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rate, err := decimal.NewFromString(req.HourlyRate)
	if err != nil {
		http.Error(w, "Invalid hourlyRate", http.StatusBadRequest)
		return
	}

	payment, err := h.Ledger.OpenHold(r.Context(), core.OpenHoldInput{
		ShiftID:        mux.Vars(r)["shiftId"],
		EmployerID:     employerID,
		EstimatedHours: req.EstimatedHours,
		HourlyRate:     rate,
		FeePercentage:  req.FeePercentage,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, payment)
}

// ClockIn opens the worker's timesheet for a shift.
func (h *SettlementHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	workerID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ts, err := h.Timesheets.ClockIn(r.Context(), mux.Vars(r)["shiftId"], workerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ts)
}

// ClockOut stamps the clock-out time on a timesheet.
func (h *SettlementHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	if _, err := callerID(r); err != nil {
		writeError(w, err)
		return
	}

	var req clockOutRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	ts, err := h.Timesheets.ClockOut(r.Context(), mux.Vars(r)["timesheetId"], req.BreakMinutes)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ts)
}

// Settle confirms a timesheet and settles the shift's escrow payment.
func (h *SettlementHandler) Settle(w http.ResponseWriter, r *http.Request) {
	if _, err := callerID(r); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.Engine.Settle(r.Context(), mux.Vars(r)["timesheetId"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetPayment fetches a shift's escrow payment for reconciliation views.
func (h *SettlementHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	if _, err := callerID(r); err != nil {
		writeError(w, err)
		return
	}

	payment, err := h.Repo.GetPaymentByShift(r.Context(), mux.Vars(r)["shiftId"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "No payment for shift", http.StatusNotFound)
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		http.Error(w, "Unauthenticated", http.StatusUnauthorized)
	case core.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, core.ErrTimesheetNotFound), errors.Is(err, core.ErrShiftNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case core.IsClientError(err):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "Service error processing request", http.StatusInternalServerError)
	}
}
