package service

import (
	"context"
	"sync"

	wire "github.com/fixmate/field-service/internal/converter"
	converter "github.com/fixmate/field-service/internal/converter/telegram"
)

type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// service fans one status event out to every subscribed chat. Subscriptions
// live in memory; a restart just requires /start again.
type service struct {
	client  MessageSender
	mu      sync.RWMutex
	storage map[int64]struct{}
}

func NewTgService(client MessageSender) *service {
	return &service{client: client, storage: map[int64]struct{}{}}
}

func (svc *service) NotifyStatusChanged(ctx context.Context, event *wire.StatusChangedPayload) error {
	msg, err := converter.BuildStatusChanged(event)
	if err != nil {
		return err
	}

	svc.mu.RLock()
	defer svc.mu.RUnlock()
	for chatID := range svc.storage {
		if err := svc.client.SendMessage(ctx, chatID, msg); err != nil {
			return err
		}
	}

	return nil
}

func (svc *service) AddChatID(ctx context.Context, chatID int64) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.storage[chatID] = struct{}{}
}
