// Package payment wraps the payment gateway. The real gateway lives outside
// this system; the stub here always succeeds (demo mode), but callers still
// go through the circuit breaker so a future real gateway slots in unchanged.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

var ErrPaymentUnavailable = errors.New("payment gateway unavailable")

type Result struct {
	TransactionID string
	Status        string
}

type Gateway interface {
	// Verify confirms a gateway-reported payment id.
	Verify(ctx context.Context, paymentID string) (*Result, error)
}

// StubGateway acknowledges every payment. Mirrors the demo-mode verify
// endpoint of the upstream gateway integration.
type StubGateway struct{}

func (StubGateway) Verify(_ context.Context, paymentID string) (*Result, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("payment id is required")
	}
	return &Result{
		TransactionID: fmt.Sprintf("TXN-%s", uuid.NewString()),
		Status:        "success",
	}, nil
}

// BreakerGateway trips open after consecutive gateway failures and fails
// fast with ErrPaymentUnavailable while open.
type BreakerGateway struct {
	inner Gateway
	cb    *gobreaker.CircuitBreaker[*Result]
}

func NewBreakerGateway(inner Gateway) *BreakerGateway {
	cb := gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
		Name: "payment-gateway",
	})
	return &BreakerGateway{inner: inner, cb: cb}
}

func (g *BreakerGateway) Verify(ctx context.Context, paymentID string) (*Result, error) {
	result, err := g.cb.Execute(func() (*Result, error) {
		return g.inner.Verify(ctx, paymentID)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}
	return result, nil
}
