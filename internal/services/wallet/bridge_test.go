package wallet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBridgeService(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "application/json")

		switch r.URL.Path {
		case "/connected":
			w.Write([]byte(`{"isConnected":true}`))
		case "/access":
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.Write([]byte(`{"address":"GABCXYZ"}`))
		case "/address":
			w.Write([]byte(`{"address":"GABCXYZ"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := NewBridgeService(srv.URL)

	t.Run("is connected", func(t *testing.T) {
		connected, err := s.IsConnected(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !connected {
			t.Errorf("IsConnected() = false, want true")
		}
	})

	t.Run("request access", func(t *testing.T) {
		resp, err := s.RequestAccess(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Address != "GABCXYZ" {
			t.Errorf("RequestAccess().Address = %q, want %q", resp.Address, "GABCXYZ")
		}
		if resp.Error != "" {
			t.Errorf("RequestAccess().Error = %q, want empty", resp.Error)
		}
	})

	t.Run("get address", func(t *testing.T) {
		addr, err := s.GetAddress(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if addr != "GABCXYZ" {
			t.Errorf("GetAddress() = %q, want %q", addr, "GABCXYZ")
		}
	})
}

func TestBridgeServiceDenied(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "application/json")
		w.Write([]byte(`{"error":"User declined access"}`))
	}))
	defer srv.Close()

	s := NewBridgeService(srv.URL)

	resp, err := s.RequestAccess(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Error != "User declined access" {
		t.Errorf("RequestAccess().Error = %q, want %q", resp.Error, "User declined access")
	}
	if resp.Address != "" {
		t.Errorf("RequestAccess().Address = %q, want empty", resp.Address)
	}
}

func TestBridgeServiceUnreachable(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewBridgeService(srv.URL)

	_, err := s.IsConnected(ctx)
	if err == nil {
		t.Errorf("IsConnected() error = nil, want non-nil on bad status")
	}
}
