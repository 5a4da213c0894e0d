package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"shiftpay.service/internal/api/handler"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(h *handler.SettlementHandler) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/shifts/{shiftId}/hold", h.OpenHold).Methods(http.MethodPost)
	api.HandleFunc("/shifts/{shiftId}/clock-in", h.ClockIn).Methods(http.MethodPost)
	api.HandleFunc("/shifts/{shiftId}/payment", h.GetPayment).Methods(http.MethodGet)
	api.HandleFunc("/timesheets/{timesheetId}/clock-out", h.ClockOut).Methods(http.MethodPost)
	api.HandleFunc("/timesheets/{timesheetId}/settle", h.Settle).Methods(http.MethodPost)
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	return r
}
