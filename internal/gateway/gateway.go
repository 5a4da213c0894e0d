// Package gateway abstracts the movement of funds behind the escrow
// records. The service ships with a simulated gateway since there are
// no card or bank rails, but the same interface lets a real processor
// be dropped in through configuration without touching the settlement
// logic.
package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReleaseRequest describes one fund movement: charge the employer the
// total and pay the worker the subtotal.
type ReleaseRequest struct {
	ShiftID      string          `json:"shiftId"`
	EmployerID   string          `json:"employerId"`
	WorkerID     string          `json:"workerId"`
	TotalCharged decimal.Decimal `json:"totalCharged"`
	WorkerPayout decimal.Decimal `json:"workerPayout"`
}

// PaymentGateway is the strategy interface selected once at startup.
type PaymentGateway interface {
	// Release executes the fund movement and returns an external
	// reference for the transaction.
	Release(ctx context.Context, req ReleaseRequest) (string, error)
}

// SimulatedGateway fabricates a transaction reference without moving
// any money. This is the default implementation.
type SimulatedGateway struct{}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

func (g *SimulatedGateway) Release(ctx context.Context, req ReleaseRequest) (string, error) {
	return "sim-" + uuid.NewString(), nil
}
