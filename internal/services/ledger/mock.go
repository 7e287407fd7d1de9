package ledger

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/starpaykids/allowance/pkg/allowance"
)

// Simulated network latencies of the demo contract.
const (
	mockSubmitDelay = 2 * time.Second
	mockReadDelay   = 1 * time.Second
)

// mockRecipients are the demo addresses the mock rotates through.
var mockRecipients = []string{
	"GCKFBEIYTKP42K6WTOGJQVQZU...",
	"GBCDEFGHIJKLMNOPQRSTUVWX...",
	"GAXYZABCDEFGHIJKLMNOPQR...",
}

// MockService is the demo gateway: it fabricates transaction hashes and
// returns totals and recipients uncorrelated with prior submissions, behind
// fixed timers standing in for network I/O. Clock, delays and randomness are
// injected so tests run deterministically.
type MockService struct {
	clock       allowance.Clock
	submitDelay time.Duration
	readDelay   time.Duration

	// the generator is shared by handler goroutines and the queue worker
	mu   sync.Mutex
	rand *rand.Rand
}

func NewMockService(clock allowance.Clock, r *rand.Rand) *MockService {
	return &MockService{
		clock:       clock,
		rand:        r,
		submitDelay: mockSubmitDelay,
		readDelay:   mockReadDelay,
	}
}

// NewInstantMockService returns a mock gateway without simulated latency.
func NewInstantMockService(clock allowance.Clock, r *rand.Rand) *MockService {
	return &MockService{
		clock: clock,
		rand:  r,
	}
}

func (s *MockService) SubmitTransfer(ctx context.Context, from, to string, amount float64) (result *allowance.ContractResult) {
	defer recoverIntoResult(&result)

	if err := s.wait(ctx, s.submitDelay); err != nil {
		return &allowance.ContractResult{
			Success: false,
			Error:   err.Error(),
		}
	}

	txHash := fmt.Sprintf("mock_tx_%d_%04x", s.clock.Now().UnixMilli(), s.randIntn(1<<16))

	return &allowance.ContractResult{
		Success: true,
		Amount:  amount,
		Address: to,
		TxHash:  txHash,
	}
}

func (s *MockService) GetTotalSent(ctx context.Context) (result *allowance.ContractResult) {
	defer recoverIntoResult(&result)

	if err := s.wait(ctx, s.readDelay); err != nil {
		return &allowance.ContractResult{
			Success: false,
			Error:   err.Error(),
		}
	}

	return &allowance.ContractResult{
		Success: true,
		Amount:  s.randFloat64() * 1000,
	}
}

func (s *MockService) GetLastRecipient(ctx context.Context) (result *allowance.ContractResult) {
	defer recoverIntoResult(&result)

	if err := s.wait(ctx, s.readDelay); err != nil {
		return &allowance.ContractResult{
			Success: false,
			Error:   err.Error(),
		}
	}

	return &allowance.ContractResult{
		Success: true,
		Address: mockRecipients[s.randIntn(len(mockRecipients))],
	}
}

func (s *MockService) randIntn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rand.Intn(n)
}

func (s *MockService) randFloat64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rand.Float64()
}

func (s *MockService) wait(ctx context.Context, d time.Duration) error {
	if d == 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
