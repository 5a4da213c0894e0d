package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
)

// A simple struct to capture the incoming release request
type ReleaseRequest struct {
	ShiftID      string `json:"shiftId"`
	EmployerID   string `json:"employerId"`
	WorkerID     string `json:"workerId"`
	TotalCharged string `json:"totalCharged"`
	WorkerPayout string `json:"workerPayout"`
}

func releaseHandler(w http.ResponseWriter, r *http.Request) {
	var req ReleaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	ref := fmt.Sprintf("mock-%08x", rand.Int63())
	log.Printf("Release for shift %s: charge %s, payout %s -> %s", req.ShiftID, req.TotalCharged, req.WorkerPayout, ref)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"reference": ref})
}

func main() {
	http.HandleFunc("/release", releaseHandler)
	log.Println("Payment gateway mock server starting on port 8081...")
	log.Fatal(http.ListenAndServe(":8081", nil))
}
