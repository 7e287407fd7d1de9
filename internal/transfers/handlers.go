package transfers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/starpaykids/allowance/internal/common"
	"github.com/starpaykids/allowance/internal/guard"
	"github.com/starpaykids/allowance/pkg/allowance"
	"github.com/starpaykids/allowance/pkg/queue"
)

// reconcileDelay is how long after a successful submit the authoritative
// re-read of the gateway fires.
const reconcileDelay = 2 * time.Second

// SubmitRequest is the transfer form's raw input. Amount stays text until
// validation parses it.
type SubmitRequest struct {
	ChildAddress string `json:"child_address"`
	Amount       string `json:"amount"`
}

// Outcome is what a successful submit hands back to the screen.
type Outcome struct {
	Message string                  `json:"message"`
	TxHash  string                  `json:"tx_hash"`
	View    allowance.AggregateView `json:"view"`
}

// Service drives the transfer screen: validate the form, submit through the
// gateway, update the displayed totals optimistically and reconcile them
// against the gateway after a fixed delay.
type Service struct {
	guard   *guard.Service
	gateway allowance.Gateway
	q       *queue.Service
	wm      allowance.WebhookMessager

	delay time.Duration

	mu      sync.Mutex
	loading bool
	view    allowance.AggregateView
}

func NewService(g *guard.Service, gateway allowance.Gateway, q *queue.Service, wm allowance.WebhookMessager) *Service {
	return &Service{
		guard:   g,
		gateway: gateway,
		q:       q,
		wm:      wm,
		delay:   reconcileDelay,
	}
}

// Validate checks the form input. First failing check wins: empty recipient,
// then unparseable or non-positive amount, then a missing session. Pure; no
// side effects, safe to call repeatedly.
func Validate(sess allowance.Session, childAddress, amountText string) (string, float64, *allowance.FlowError) {
	child := strings.TrimSpace(childAddress)
	if child == "" {
		return "", 0, allowance.ErrEmptyRecipient()
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(amountText), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return "", 0, allowance.ErrInvalidAmount()
	}

	if !sess.Established {
		return "", 0, allowance.ErrNoSession()
	}

	return child, amount, nil
}

// Submit validates and sends an allowance. On gateway success the view is
// updated optimistically (tagged unconfirmed) and the reconciliation re-read
// is scheduled; the gateway's answer later overwrites the optimistic values
// whether or not they agree. The loading flag is cleared on every exit path.
func (s *Service) Submit(ctx context.Context, sess allowance.Session, childAddress, amountText string) (out *Outcome, ferr *allowance.FlowError) {
	child, amount, ferr := Validate(sess, childAddress, amountText)
	if ferr != nil {
		// rejected before the gateway is ever involved
		return nil, ferr
	}

	if !s.begin() {
		return nil, allowance.ErrUnexpected()
	}
	defer s.end()

	defer func() {
		if r := recover(); r != nil {
			log.Default().Println("send allowance error: ", r)
			out = nil
			ferr = allowance.ErrUnexpected()
		}
	}()

	// constructed per submit action, never persisted
	req := allowance.TransferRequest{
		From:   sess.Address,
		To:     child,
		Amount: amount,
	}

	res := s.gateway.SubmitTransfer(ctx, req.From, req.To, req.Amount)
	if !res.Success {
		return nil, allowance.ErrGatewayFailure(res.Error)
	}

	log.Default().Println("transaction hash: ", res.TxHash)

	// phase 1: optimistic
	s.mu.Lock()
	s.view.TotalSent += amount
	s.view.LastRecipient = child
	s.view.Unconfirmed = true
	view := s.view
	s.mu.Unlock()

	// phase 2: authoritative, always fires after its delay
	s.q.Enqueue(queue.Task{
		Name:  "reconcile",
		Delay: s.delay,
		Run: func(ctx context.Context) error {
			s.Load(ctx)
			return nil
		},
	})

	txHash := res.TxHash
	s.q.Enqueue(queue.Task{
		Name: "notify",
		Run: func(ctx context.Context) error {
			return s.wm.Notify(ctx, fmt.Sprintf("%v XLM sent to %s (%s)", amount, common.ShortenAddress(child, 8), txHash))
		},
	})

	return &Outcome{
		Message: fmt.Sprintf(allowance.MsgSentFmt, strings.TrimSpace(amountText)),
		TxHash:  res.TxHash,
		View:    view,
	}, nil
}

// Load refreshes the view from the gateway and clears the unconfirmed tag.
// Failed reads keep the previous values; an empty last recipient means no
// transfer has happened yet and does not clear a displayed one.
func (s *Service) Load(ctx context.Context) allowance.AggregateView {
	total := s.gateway.GetTotalSent(ctx)
	last := s.gateway.GetLastRecipient(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if total.Success {
		s.view.TotalSent = total.Amount
		s.view.Unconfirmed = false
	}

	if last.Success && last.Address != "" {
		s.view.LastRecipient = last.Address
	}

	return s.view
}

// View returns the current transient screen state.
func (s *Service) View() allowance.AggregateView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view
}

// Loading reports whether a submit is in flight.
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

// HandleGet handles GET /allowance
func (s *Service) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, ferr := s.guard.Establish(r.Context())
	if ferr != nil {
		common.ErrorBody(w, http.StatusUnauthorized, ferr, common.RedirectMeta{Redirect: guard.HomeRoute})
		return
	}

	view := s.Load(r.Context())

	err := common.Body(w, map[string]any{
		"session": sess,
		"view":    view,
	}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// HandleSubmit handles POST /allowance
func (s *Service) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	req := &SubmitRequest{}

	err := json.NewDecoder(r.Body).Decode(req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// an unestablished session still goes through Validate so the checks
	// keep their order
	sess, _ := s.guard.Establish(r.Context())

	out, ferr := s.Submit(r.Context(), sess, req.ChildAddress, req.Amount)
	if ferr != nil {
		var meta any
		if ferr.Code == allowance.ErrorCodeNoSession {
			meta = common.RedirectMeta{Redirect: guard.HomeRoute}
		}
		common.ErrorBody(w, submitStatus(ferr), ferr, meta)
		return
	}

	err = common.Body(w, out, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func submitStatus(ferr *allowance.FlowError) int {
	switch ferr.Code {
	case allowance.ErrorCodeEmptyRecipient, allowance.ErrorCodeInvalidAmount:
		return http.StatusBadRequest
	case allowance.ErrorCodeNoSession:
		return http.StatusUnauthorized
	case allowance.ErrorCodeGatewayFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
