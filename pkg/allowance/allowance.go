package allowance

import (
	"context"
	"strings"
	"time"
)

// SessionKey is the name of the single durable slot that holds the
// connected wallet address between screens.
const SessionKey = "walletAddress"

// Session is the connected-wallet state shared by the two screens.
type Session struct {
	Address     string `json:"address"`
	Established bool   `json:"established"`
}

// NewSession returns an established session for a non-empty address.
func NewSession(address string) Session {
	address = strings.TrimSpace(address)

	return Session{
		Address:     address,
		Established: address != "",
	}
}

// TransferRequest is constructed transiently per submit action and never persisted.
type TransferRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// AggregateView is the transient screen state derived from the gateway.
// Unconfirmed is set while the values are an optimistic local update that
// the scheduled reconciliation read has not yet overwritten.
type AggregateView struct {
	TotalSent     float64 `json:"total_sent"`
	LastRecipient string  `json:"last_recipient,omitempty"`
	Unconfirmed   bool    `json:"unconfirmed,omitempty"`
}

// SessionSlot is a single named key-value entry in durable storage.
// Read returns an empty string when the slot is absent.
type SessionSlot interface {
	Read() (string, error)
	Write(address string) error
	Delete() error
}

// AuthorizationResponse mirrors the wallet extension's access response:
// either an address or an extension-supplied error message.
type AuthorizationResponse struct {
	Address string `json:"address,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WalletProvider is the wallet extension capability boundary. All calls may
// fail; callers must treat any error as the collaborator misbehaving and
// recover locally.
type WalletProvider interface {
	IsConnected(ctx context.Context) (bool, error)
	RequestAccess(ctx context.Context) (*AuthorizationResponse, error)
	GetAddress(ctx context.Context) (string, error)
}

// ContractResult is the uniform envelope returned by every gateway operation.
type ContractResult struct {
	Success bool    `json:"success"`
	Amount  float64 `json:"amount,omitempty"`
	Address string  `json:"address,omitempty"`
	Error   string  `json:"error,omitempty"`
	TxHash  string  `json:"tx_hash,omitempty"`
}

// Gateway is the abstraction boundary to the allowance contract. Operations
// never propagate internal failures; they fold them into the envelope.
type Gateway interface {
	SubmitTransfer(ctx context.Context, from, to string, amount float64) *ContractResult
	GetTotalSent(ctx context.Context) *ContractResult
	GetLastRecipient(ctx context.Context) *ContractResult
}

type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock used outside of tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// WebhookMessager notifies an operator channel about sent allowances.
type WebhookMessager interface {
	Notify(ctx context.Context, message string) error
	NotifyError(ctx context.Context, err error) error
}
