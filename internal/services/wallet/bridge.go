package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/starpaykids/allowance/pkg/allowance"
)

// BridgeService talks to a local wallet bridge that proxies the browser
// wallet extension's connect/sign/query API. Everything past this boundary
// is an external collaborator; callers must treat any error as the wallet
// misbehaving.
type BridgeService struct {
	baseURL string
	client  *http.Client
}

func NewBridgeService(baseURL string) *BridgeService {
	return &BridgeService{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type connectedResponse struct {
	IsConnected bool `json:"isConnected"`
}

type accessResponse struct {
	Address string `json:"address"`
	Error   string `json:"error"`
}

type addressResponse struct {
	Address string `json:"address"`
}

// IsConnected reports whether the wallet extension is installed and
// already authorized for this origin.
func (s *BridgeService) IsConnected(ctx context.Context) (bool, error) {
	var resp connectedResponse

	err := s.get(ctx, "/connected", &resp)
	if err != nil {
		return false, err
	}

	return resp.IsConnected, nil
}

// RequestAccess asks the user to authorize the wallet. The extension
// answers with either an address or a denial message; both are data,
// not transport errors.
func (s *BridgeService) RequestAccess(ctx context.Context) (*allowance.AuthorizationResponse, error) {
	var resp accessResponse

	err := s.post(ctx, "/access", &resp)
	if err != nil {
		return nil, err
	}

	return &allowance.AuthorizationResponse{
		Address: resp.Address,
		Error:   resp.Error,
	}, nil
}

// GetAddress returns the currently authorized address, empty when the
// wallet has none to give.
func (s *BridgeService) GetAddress(ctx context.Context) (string, error) {
	var resp addressResponse

	err := s.get(ctx, "/address", &resp)
	if err != nil {
		return "", err
	}

	return resp.Address, nil
}

func (s *BridgeService) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wallet bridge: unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *BridgeService) post(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader([]byte("{}")))
	if err != nil {
		return err
	}

	req.Header.Add("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wallet bridge: unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
