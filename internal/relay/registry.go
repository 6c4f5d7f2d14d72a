package relay

import (
	"context"
	"errors"
	"sync"
)

var ErrNotRegistered = errors.New("webhook not registered")

// Registration records where deliveries of one installed webhook are relayed.
type Registration struct {
	WebhookId    string `json:"webhookId"`
	SourceRoomId string `json:"sourceRoomId"`
	TargetRoomId string `json:"targetRoomId"`
	Label        string `json:"label"`
}

type Registry interface {
	Register(ctx context.Context, reg Registration) error
	Lookup(ctx context.Context, webhookId string) (Registration, error)
	Forget(ctx context.Context, webhookId string) error
}

// MemoryRegistry keeps registrations in process memory. Records do not
// survive a restart; deliveries then fall back to the callback URL.
type MemoryRegistry struct {
	mu   sync.RWMutex
	regs map[string]Registration
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{regs: make(map[string]Registration)}
}

func (m *MemoryRegistry) Register(_ context.Context, reg Registration) error {
	if reg.WebhookId == "" {
		return errors.New("registration without webhook id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[reg.WebhookId] = reg
	return nil
}

func (m *MemoryRegistry) Lookup(_ context.Context, webhookId string) (Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reg, ok := m.regs[webhookId]
	if !ok {
		return Registration{}, ErrNotRegistered
	}
	return reg, nil
}

func (m *MemoryRegistry) Forget(_ context.Context, webhookId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.regs, webhookId)
	return nil
}
