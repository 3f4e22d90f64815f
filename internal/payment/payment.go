// Package payment adapts external payment gateways behind a small interface.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrUnknownProvider is returned when a charge names a provider the registry
// does not hold.
var ErrUnknownProvider = errors.New("unknown payment provider")

// ChargeRequest describes a single charge attempt.
type ChargeRequest struct {
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod string
	CustomerEmail string
	Description   string
}

// ChargeResult is the gateway's answer to a successful charge.
type ChargeResult struct {
	Reference string
}

// Provider charges a customer through a specific gateway.
type Provider interface {
	Name() string
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// Registry resolves providers by name.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// Simulated is a provider that always succeeds with a fabricated reference.
// It backs development and tests; real gateways plug in alongside it.
type Simulated struct{}

func (Simulated) Name() string { return "simulated" }

func (Simulated) Charge(_ context.Context, req ChargeRequest) (ChargeResult, error) {
	if req.Amount.IsNegative() {
		return ChargeResult{}, errors.New("negative charge amount")
	}
	return ChargeResult{Reference: "SIM-" + uuid.NewString()}, nil
}
