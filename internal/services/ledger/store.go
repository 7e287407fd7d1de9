package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/starpaykids/allowance/internal/services/db"
	"github.com/starpaykids/allowance/pkg/allowance"
)

// StoreService is the gateway backed by the contract-state store. It carries
// the allowance contract's semantics: every submit grows the running total
// and moves the last recipient.
//
// Gateway operations never let an internal failure escape; everything is
// folded into the result envelope.
type StoreService struct {
	db    *db.DB
	clock allowance.Clock
}

func NewStoreService(db *db.DB, clock allowance.Clock) *StoreService {
	return &StoreService{
		db:    db,
		clock: clock,
	}
}

// newTxHash returns a fresh opaque transfer identifier. Millisecond clock
// plus a uuid makes collisions astronomically unlikely.
func newTxHash(clock allowance.Clock) string {
	return fmt.Sprintf("tx_%d_%s", clock.Now().UnixMilli(), uuid.NewString())
}

func (s *StoreService) SubmitTransfer(ctx context.Context, from, to string, amount float64) (result *allowance.ContractResult) {
	defer recoverIntoResult(&result)

	txHash := newTxHash(s.clock)

	err := s.db.AllowanceDB.AddAllowance(txHash, from, to, amount, s.clock.Now())
	if err != nil {
		return &allowance.ContractResult{
			Success: false,
			Error:   err.Error(),
		}
	}

	return &allowance.ContractResult{
		Success: true,
		Amount:  amount,
		Address: to,
		TxHash:  txHash,
	}
}

func (s *StoreService) GetTotalSent(ctx context.Context) (result *allowance.ContractResult) {
	defer recoverIntoResult(&result)

	total, err := s.db.AllowanceDB.TotalSent()
	if err != nil {
		return &allowance.ContractResult{
			Success: false,
			Error:   err.Error(),
		}
	}

	return &allowance.ContractResult{
		Success: true,
		Amount:  total,
	}
}

func (s *StoreService) GetLastRecipient(ctx context.Context) (result *allowance.ContractResult) {
	defer recoverIntoResult(&result)

	last, err := s.db.AllowanceDB.LastRecipient()
	if err != nil {
		return &allowance.ContractResult{
			Success: false,
			Error:   err.Error(),
		}
	}

	return &allowance.ContractResult{
		Success: true,
		Address: last,
	}
}

// recoverIntoResult converts a panic below the gateway boundary into a
// failed envelope.
func recoverIntoResult(result **allowance.ContractResult) {
	if r := recover(); r != nil {
		*result = &allowance.ContractResult{
			Success: false,
			Error:   fmt.Sprintf("gateway: %v", r),
		}
	}
}
