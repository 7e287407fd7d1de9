package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/starpaykids/allowance/pkg/allowance"
)

type Message struct {
	Content string `json:"content"`
}

// Messager posts operator notifications about sent allowances to a webhook
// channel. With notify disabled it is a no-op.
type Messager struct {
	BaseURL    string
	ContractID string

	notify bool
}

func NewMessager(baseURL, contractID string, notify bool) allowance.WebhookMessager {
	return &Messager{
		BaseURL:    baseURL,
		ContractID: contractID,
		notify:     notify,
	}
}

func (m *Messager) Notify(ctx context.Context, message string) error {
	if !m.notify {
		return nil
	}

	return m.send(ctx, message)
}

func (m *Messager) NotifyError(ctx context.Context, errorMessage error) error {
	if !m.notify {
		return nil
	}

	return m.send(ctx, fmt.Sprintf("error: %s", errorMessage.Error()))
}

func (m *Messager) send(ctx context.Context, message string) error {
	data, err := json.Marshal(Message{Content: fmt.Sprintf("[%s] %s", m.ContractID, message)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL, bytes.NewReader(data))
	if err != nil {
		return err
	}

	req.Header.Add("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New("error sending message")
	}

	return nil
}
