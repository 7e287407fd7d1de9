package sessions

import (
	"fmt"
	"strings"
	"sync"

	"github.com/starpaykids/allowance/internal/storage"
	"github.com/starpaykids/allowance/pkg/allowance"
)

// FileSlot is the durable session slot: a single named entry persisted to
// disk, holding the connected wallet address. Last writer wins; only one
// logical session is modeled.
type FileSlot struct {
	mu   sync.Mutex
	path string
}

// NewFileSlot creates a slot under basePath, keyed by the fixed session key.
func NewFileSlot(basePath string) (*FileSlot, error) {
	if !storage.Exists(basePath) {
		err := storage.CreateDir(basePath)
		if err != nil {
			return nil, err
		}
	}

	return &FileSlot{
		path: fmt.Sprintf("%s/%s", basePath, allowance.SessionKey),
	}, nil
}

// Read returns the stored address, or an empty string when the slot is
// absent. A slot cleared externally reads as absent, never as an error.
func (s *FileSlot) Read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !storage.Exists(s.path) {
		return "", nil
	}

	b, err := storage.Read(s.path)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(b)), nil
}

func (s *FileSlot) Write(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return storage.Save(s.path, []byte(address))
}

// Delete clears the slot. Deleting an absent slot is not an error.
func (s *FileSlot) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !storage.Exists(s.path) {
		return nil
	}

	return storage.EraseFile(s.path)
}
