package connector

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/starpaykids/allowance/internal/common"
	"github.com/starpaykids/allowance/pkg/allowance"
)

// TransferRoute is where a freshly connected wallet is sent.
const TransferRoute = "/allowance"

// Service drives the connector screen: detect an already authorized wallet,
// or request authorization, persist the address and hand over to the
// transfer screen.
type Service struct {
	wallet allowance.WalletProvider
	slot   allowance.SessionSlot

	mu      sync.Mutex
	loading bool
}

func NewService(wallet allowance.WalletProvider, slot allowance.SessionSlot) *Service {
	return &Service{
		wallet: wallet,
		slot:   slot,
	}
}

// CheckExistingSession reports whether the caller should skip straight to
// the transfer screen: wallet already authorized and a durable session
// present. A misbehaving collaborator is not an error here; the screen just
// stays put.
func (s *Service) CheckExistingSession(ctx context.Context) bool {
	connected, err := s.wallet.IsConnected(ctx)
	if err != nil {
		log.Default().Println("connection check failed: ", err)
		return false
	}

	if !connected {
		return false
	}

	saved, err := s.slot.Read()
	if err != nil {
		log.Default().Println("connection check failed: ", err)
		return false
	}

	return saved != ""
}

// Connect runs the user-initiated connect flow. On success the returned
// session is persisted and redirect is true. An empty authorization response
// with no error leaves everything untouched, mirroring a dismissed wallet
// prompt. The loading flag is cleared on every exit path.
func (s *Service) Connect(ctx context.Context) (sess allowance.Session, redirect bool, ferr *allowance.FlowError) {
	if !s.begin() {
		return allowance.Session{}, false, allowance.ErrConnectionFailed()
	}
	defer s.end()

	defer func() {
		if r := recover(); r != nil {
			log.Default().Println("wallet connection error: ", r)
			sess = allowance.Session{}
			redirect = false
			ferr = allowance.ErrConnectionFailed()
		}
	}()

	// is the wallet extension present at all
	installed, err := s.wallet.IsConnected(ctx)
	if err != nil {
		sentry.CaptureException(err)
		return allowance.Session{}, false, allowance.ErrConnectionFailed()
	}

	if !installed {
		return allowance.Session{}, false, allowance.ErrWalletNotFound()
	}

	// request authorization
	resp, err := s.wallet.RequestAccess(ctx)
	if err != nil {
		sentry.CaptureException(err)
		return allowance.Session{}, false, allowance.ErrConnectionFailed()
	}

	if resp.Error != "" {
		return allowance.Session{}, false, allowance.ErrAuthorizationDenied(resp.Error)
	}

	if resp.Address == "" {
		// prompt dismissed without an address; not an error
		return allowance.Session{}, false, nil
	}

	err = s.slot.Write(resp.Address)
	if err != nil {
		sentry.CaptureException(err)
		return allowance.Session{}, false, allowance.ErrConnectionFailed()
	}

	log.Default().Println("connected wallet address: ", resp.Address)

	return allowance.NewSession(resp.Address), true, nil
}

// Loading reports whether a connect is in flight.
func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loading
}

func (s *Service) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		return false
	}

	s.loading = true
	return true
}

func (s *Service) end() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
}

// HandleCheck handles GET /session
func (s *Service) HandleCheck(w http.ResponseWriter, r *http.Request) {
	redirect := s.CheckExistingSession(r.Context())

	var meta any
	if redirect {
		meta = common.RedirectMeta{Redirect: TransferRoute}
	}

	err := common.Body(w, map[string]bool{"connected": redirect}, meta)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// HandleConnect handles POST /session
func (s *Service) HandleConnect(w http.ResponseWriter, r *http.Request) {
	sess, redirect, ferr := s.Connect(r.Context())
	if ferr != nil {
		common.ErrorBody(w, connectStatus(ferr), ferr, nil)
		return
	}

	var meta any
	if redirect {
		meta = common.RedirectMeta{Redirect: TransferRoute}
	}

	err := common.Body(w, sess, meta)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func connectStatus(ferr *allowance.FlowError) int {
	switch ferr.Code {
	case allowance.ErrorCodeWalletNotFound:
		return http.StatusNotFound
	case allowance.ErrorCodeAuthorizationDenied:
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}
