package payment

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubGateway_AlwaysSucceeds(t *testing.T) {
	res, err := StubGateway{}.Verify(context.Background(), "pay_123")
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.True(t, strings.HasPrefix(res.TransactionID, "TXN-"))
}

func TestStubGateway_RequiresPaymentID(t *testing.T) {
	_, err := StubGateway{}.Verify(context.Background(), "")
	assert.Error(t, err)
}

type failingGateway struct{}

func (failingGateway) Verify(context.Context, string) (*Result, error) {
	return nil, fmt.Errorf("connection refused")
}

func TestBreakerGateway_WrapsFailures(t *testing.T) {
	g := NewBreakerGateway(failingGateway{})

	_, err := g.Verify(context.Background(), "pay_123")
	assert.ErrorIs(t, err, ErrPaymentUnavailable)
}

func TestBreakerGateway_OpensAfterRepeatedFailures(t *testing.T) {
	g := NewBreakerGateway(failingGateway{})
	ctx := context.Background()

	// default gobreaker settings trip after 5 consecutive failures
	for i := 0; i < 10; i++ {
		_, err := g.Verify(ctx, "pay_123")
		require.ErrorIs(t, err, ErrPaymentUnavailable)
	}
}

func TestBreakerGateway_PassesThroughSuccess(t *testing.T) {
	g := NewBreakerGateway(StubGateway{})

	res, err := g.Verify(context.Background(), "pay_123")
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
}
