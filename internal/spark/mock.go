package spark

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) ListRooms(ctx context.Context) ([]Room, error) {
	args := m.Called(ctx)
	rooms, _ := args.Get(0).([]Room)
	return rooms, args.Error(1)
}
func (m *MockClient) CreateRoom(ctx context.Context, title string) (Room, error) {
	args := m.Called(ctx, title)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockClient) DeleteRoom(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockClient) ListWebhooks(ctx context.Context) ([]Webhook, error) {
	args := m.Called(ctx)
	hooks, _ := args.Get(0).([]Webhook)
	return hooks, args.Error(1)
}
func (m *MockClient) CreateWebhook(ctx context.Context, params CreateWebhookParams) (Webhook, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Webhook), args.Error(1)
}
func (m *MockClient) DeleteWebhook(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockClient) GetMessage(ctx context.Context, id string) (Message, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockClient) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockClient) GetPerson(ctx context.Context, id string) (Person, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Person), args.Error(1)
}
func (m *MockClient) Me(ctx context.Context) (Person, error) {
	args := m.Called(ctx)
	return args.Get(0).(Person), args.Error(1)
}
func (m *MockClient) ExchangeCode(ctx context.Context, params ExchangeCodeParams) (Authorization, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Authorization), args.Error(1)
}
