package guard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starpaykids/allowance/internal/common"
	"github.com/starpaykids/allowance/pkg/allowance"
)

type fakeWallet struct {
	address    string
	addressErr error
}

func (w *fakeWallet) IsConnected(ctx context.Context) (bool, error) {
	return w.address != "", nil
}

func (w *fakeWallet) RequestAccess(ctx context.Context) (*allowance.AuthorizationResponse, error) {
	return &allowance.AuthorizationResponse{Address: w.address}, nil
}

func (w *fakeWallet) GetAddress(ctx context.Context) (string, error) {
	return w.address, w.addressErr
}

type memSlot struct {
	addr      string
	readErr   error
	writeErr  error
	deleteErr error
}

func (s *memSlot) Read() (string, error) {
	if s.readErr != nil {
		return "", s.readErr
	}
	return s.addr, nil
}

func (s *memSlot) Write(address string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.addr = address
	return nil
}

func (s *memSlot) Delete() error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.addr = ""
	return nil
}

func TestEstablish(t *testing.T) {
	ctx := context.Background()

	t.Run("prefers the durable slot", func(t *testing.T) {
		s := NewService(&fakeWallet{address: "GOTHER"}, &memSlot{addr: "GSAVED"})

		sess, ferr := s.Establish(ctx)
		if ferr != nil {
			t.Fatalf("Establish() error = %v, want nil", ferr)
		}
		if !sess.Established || sess.Address != "GSAVED" {
			t.Errorf("Establish() = %+v, want established GSAVED", sess)
		}
	})

	t.Run("falls back to the wallet and persists", func(t *testing.T) {
		slot := &memSlot{}
		s := NewService(&fakeWallet{address: "GWALLET"}, slot)

		sess, ferr := s.Establish(ctx)
		if ferr != nil {
			t.Fatalf("Establish() error = %v, want nil", ferr)
		}
		if !sess.Established || sess.Address != "GWALLET" {
			t.Errorf("Establish() = %+v, want established GWALLET", sess)
		}
		if slot.addr != "GWALLET" {
			t.Errorf("slot = %q, want %q", slot.addr, "GWALLET")
		}
	})

	t.Run("neither source redirects home", func(t *testing.T) {
		s := NewService(&fakeWallet{}, &memSlot{})

		_, ferr := s.Establish(ctx)
		if ferr == nil {
			t.Fatal("Establish() error = nil, want redirect home")
		}
		if ferr.Code != allowance.ErrorCodeNoSession {
			t.Errorf("Establish() code = %q, want %q", ferr.Code, allowance.ErrorCodeNoSession)
		}
	})

	t.Run("misbehaving wallet redirects home", func(t *testing.T) {
		s := NewService(&fakeWallet{addressErr: errors.New("bridge down")}, &memSlot{})

		_, ferr := s.Establish(ctx)
		if ferr == nil || ferr.Code != allowance.ErrorCodeNoSession {
			t.Errorf("Establish() = %v, want no_session", ferr)
		}
	})

	t.Run("unreadable slot redirects home", func(t *testing.T) {
		s := NewService(&fakeWallet{address: "GWALLET"}, &memSlot{readErr: errors.New("corrupt")})

		_, ferr := s.Establish(ctx)
		if ferr == nil || ferr.Code != allowance.ErrorCodeNoSession {
			t.Errorf("Establish() = %v, want no_session", ferr)
		}
	})

	t.Run("unwritable slot redirects home", func(t *testing.T) {
		s := NewService(&fakeWallet{address: "GWALLET"}, &memSlot{writeErr: errors.New("disk full")})

		_, ferr := s.Establish(ctx)
		if ferr == nil || ferr.Code != allowance.ErrorCodeNoSession {
			t.Errorf("Establish() = %v, want no_session", ferr)
		}
	})
}

func TestDisconnect(t *testing.T) {
	t.Run("clears the slot", func(t *testing.T) {
		slot := &memSlot{addr: "GSAVED"}
		s := NewService(&fakeWallet{}, slot)

		s.Disconnect()

		if slot.addr != "" {
			t.Errorf("slot = %q after Disconnect, want empty", slot.addr)
		}
	})

	t.Run("clears regardless of prior state", func(t *testing.T) {
		slot := &memSlot{}
		s := NewService(&fakeWallet{}, slot)

		s.Disconnect()

		if slot.addr != "" {
			t.Errorf("slot = %q after Disconnect, want empty", slot.addr)
		}
	})
}

func TestHandleDisconnect(t *testing.T) {
	slot := &memSlot{addr: "GSAVED"}
	s := NewService(&fakeWallet{}, slot)

	rr := httptest.NewRecorder()
	s.HandleDisconnect(rr, httptest.NewRequest(http.MethodDelete, "/session", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if slot.addr != "" {
		t.Errorf("slot = %q after disconnect, want empty", slot.addr)
	}

	resp := struct {
		Meta *common.RedirectMeta `json:"meta"`
	}{}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	if err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	if resp.Meta == nil || resp.Meta.Redirect != HomeRoute {
		t.Errorf("meta = %+v, want redirect %q", resp.Meta, HomeRoute)
	}
}
