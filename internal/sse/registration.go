package sse

import (
	"log/slog"
	"sync"
	"time"
)

// RegistrationStatus is the approval state of a pending membership request.
type RegistrationStatus string

const (
	StatusPending  RegistrationStatus = "pending"
	StatusApproved RegistrationStatus = "approved"
	StatusDenied   RegistrationStatus = "denied"
)

// RegistrationStatusEvent tells a waiting applicant their status changed.
type RegistrationStatusEvent struct {
	Status    RegistrationStatus `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
}

// RegistrationSubscriber is one open stream from a pending applicant.
type RegistrationSubscriber struct {
	UserID    string
	EventChan chan RegistrationStatusEvent
	Done      chan struct{}
	CreatedAt time.Time
}

// RegistrationBroadcaster fans approval decisions out to waiting applicants.
// It is kept apart from the main Manager: these streams are unauthenticated,
// carry only the status verdict, and are keyed by applicant ID rather than
// by session.
type RegistrationBroadcaster struct {
	mu      sync.RWMutex
	waiting map[string][]*RegistrationSubscriber
	logger  *slog.Logger
}

// NewRegistrationBroadcaster creates an empty broadcaster.
func NewRegistrationBroadcaster(logger *slog.Logger) *RegistrationBroadcaster {
	return &RegistrationBroadcaster{
		waiting: make(map[string][]*RegistrationSubscriber),
		logger:  logger,
	}
}

// Subscribe registers a stream for the given applicant. The caller must
// call Unsubscribe when the stream ends or the entry leaks.
func (b *RegistrationBroadcaster) Subscribe(userID string) *RegistrationSubscriber {
	sub := &RegistrationSubscriber{
		UserID:    userID,
		EventChan: make(chan RegistrationStatusEvent, 10),
		Done:      make(chan struct{}),
		CreatedAt: time.Now(),
	}

	b.mu.Lock()
	b.waiting[userID] = append(b.waiting[userID], sub)
	open := len(b.waiting[userID])
	b.mu.Unlock()

	b.logger.Debug("registration stream opened",
		slog.String("user_id", userID),
		slog.Int("open_streams", open))

	return sub
}

// Unsubscribe removes a subscriber and closes its channels.
func (b *RegistrationBroadcaster) Unsubscribe(sub *RegistrationSubscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.waiting[sub.UserID]
	for i, s := range subs {
		if s == sub {
			b.waiting[sub.UserID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.waiting[sub.UserID]) == 0 {
		delete(b.waiting, sub.UserID)
	}

	close(sub.Done)
	close(sub.EventChan)

	b.logger.Debug("registration stream closed",
		slog.String("user_id", sub.UserID),
		slog.Duration("duration", time.Since(sub.CreatedAt)))
}

// NotifyApproved tells every open stream for the applicant they are in.
func (b *RegistrationBroadcaster) NotifyApproved(userID string) {
	b.notify(userID, StatusApproved)
}

// NotifyDenied tells every open stream for the applicant they were denied.
func (b *RegistrationBroadcaster) NotifyDenied(userID string) {
	b.notify(userID, StatusDenied)
}

func (b *RegistrationBroadcaster) notify(userID string, status RegistrationStatus) {
	event := RegistrationStatusEvent{
		Status:    status,
		Timestamp: time.Now(),
	}

	b.mu.RLock()
	subs := b.waiting[userID]
	b.mu.RUnlock()

	if len(subs) == 0 {
		// Applicant is not watching. The decision is persisted, so the
		// next poll or login attempt will reflect it.
		return
	}

	var delivered, dropped int
	for _, sub := range subs {
		select {
		case sub.EventChan <- event:
			delivered++
		default:
			dropped++
		}
	}

	b.logger.Info("registration decision broadcast",
		slog.String("user_id", userID),
		slog.String("status", string(status)),
		slog.Int("delivered", delivered),
		slog.Int("dropped", dropped))
}

// SubscriberCount reports how many registration streams are open.
func (b *RegistrationBroadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, subs := range b.waiting {
		count += len(subs)
	}
	return count
}
