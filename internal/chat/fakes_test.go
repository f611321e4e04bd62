package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/diogo/sanai/internal/api"
	"github.com/diogo/sanai/internal/models"
)

type fakeGenerator struct {
	mu    sync.Mutex
	reply string
	err   error
	block chan struct{}
	reqs  []api.GenerateRequest
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, req api.GenerateRequest) (string, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func (f *fakeGenerator) calls() []api.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.GenerateRequest(nil), f.reqs...)
}

type fakeLinker struct{}

func (fakeLinker) ImageURL(prompt string, seed int) string {
	return fmt.Sprintf("https://img.test/%s?seed=%d", prompt, seed)
}

type memStore struct {
	mu    sync.Mutex
	saves [][]models.Message
	err   error
}

func (m *memStore) Save(messages []models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, messages)
	return m.err
}

func (m *memStore) last() []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return nil
	}
	return m.saves[len(m.saves)-1]
}
