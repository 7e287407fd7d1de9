package guard

import (
	"context"
	"log"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/starpaykids/allowance/internal/common"
	"github.com/starpaykids/allowance/pkg/allowance"
)

// HomeRoute is where the guard sends callers that have no session.
const HomeRoute = "/"

// Service reestablishes the wallet session on the transfer screen. It prefers
// the durable slot, falls back to the wallet collaborator, and redirects home
// when neither yields an address. It is never left in an ambiguous state.
type Service struct {
	wallet allowance.WalletProvider
	slot   allowance.SessionSlot
}

func NewService(wallet allowance.WalletProvider, slot allowance.SessionSlot) *Service {
	return &Service{
		wallet: wallet,
		slot:   slot,
	}
}

// Establish returns the current session. A nil session with a FlowError of
// code no_session means: redirect home.
func (s *Service) Establish(ctx context.Context) (sess allowance.Session, ferr *allowance.FlowError) {
	defer func() {
		if r := recover(); r != nil {
			log.Default().Println("session guard recovered: ", r)
			sess = allowance.Session{}
			ferr = allowance.ErrNoSession()
		}
	}()

	// prefer the durable slot
	saved, err := s.slot.Read()
	if err != nil {
		sentry.CaptureException(err)
		return allowance.Session{}, allowance.ErrNoSession()
	}

	if saved != "" {
		return allowance.NewSession(saved), nil
	}

	// fall back to asking the wallet directly
	addr, err := s.wallet.GetAddress(ctx)
	if err != nil {
		sentry.CaptureException(err)
		return allowance.Session{}, allowance.ErrNoSession()
	}

	if addr == "" {
		return allowance.Session{}, allowance.ErrNoSession()
	}

	err = s.slot.Write(addr)
	if err != nil {
		sentry.CaptureException(err)
		return allowance.Session{}, allowance.ErrNoSession()
	}

	return allowance.NewSession(addr), nil
}

// Disconnect clears the durable session. Unconditional, no confirmation step;
// the caller always navigates home afterwards.
func (s *Service) Disconnect() {
	err := s.slot.Delete()
	if err != nil {
		// still redirect home; the slot is in an unknown state, which reads
		// as absent on the next Establish
		log.Default().Println("disconnect: ", err)
		sentry.CaptureException(err)
	}
}

// HandleDisconnect handles DELETE /session
func (s *Service) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.Disconnect()

	err := common.Body(w, nil, common.RedirectMeta{Redirect: HomeRoute})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
