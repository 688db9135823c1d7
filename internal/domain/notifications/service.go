package notifications

import (
	"context"
	"log/slog"
)

type Service struct {
	store       StoreAPI
	dispatcher  *Dispatcher
	DefaultFrom string
}

func New(store StoreAPI, dispatcher *Dispatcher, from string) *Service {
	if from == "" {
		from = "no-reply@example.com"
	}
	return &Service{store: store, dispatcher: dispatcher, DefaultFrom: from}
}

// Notify stores an in-app notification for every recipient and queues one
// email addressed to all of them. Email lookup failures are logged only.
func (s *Service) Notify(ctx context.Context, userIDs []string, ntype, title, body string) error {
	userIDs = dedupe(userIDs)
	if len(userIDs) == 0 {
		return nil
	}
	for _, id := range userIDs {
		if err := s.store.CreateNotification(ctx, id, ntype, title, body); err != nil {
			return err
		}
	}
	if s.dispatcher == nil {
		return nil
	}
	emails, err := s.store.UserEmails(ctx, userIDs)
	if err != nil {
		slog.Warn("notification email lookup failed", "type", ntype, "err", err)
		return nil
	}
	s.dispatcher.Enqueue(Message{From: s.DefaultFrom, To: emails, Subject: title, Body: body})
	return nil
}

// NotifyAdmins sends to every active admin plus any extra recipients.
func (s *Service) NotifyAdmins(ctx context.Context, extra []string, ntype, title, body string) error {
	admins, err := s.store.AdminUserIDs(ctx)
	if err != nil {
		return err
	}
	return s.Notify(ctx, append(admins, extra...), ntype, title, body)
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, userID, limit, offset)
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.store.CountNotifications(ctx, userID)
}

func (s *Service) Unread(ctx context.Context, userID string) (int, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) (bool, error) {
	return s.store.MarkRead(ctx, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllRead(ctx, userID)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
