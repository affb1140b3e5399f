package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAccountRegistered  = "account.registered"
	EventTypeAccountCreated     = "account.created"
	EventTypeAccountUpdated     = "account.updated"
	EventTypeAccountDeactivated = "account.deactivated"
	EventTypeAccountPurged      = "account.purged"

	EventTypeSessionOpened     = "session.opened"
	EventTypeSessionClosed     = "session.closed"
	EventTypeSessionReconciled = "session.reconciled"
)

// AccountEvent describes a lifecycle change of a single account.
type AccountEvent struct {
	BaseEvent
	Email   string `json:"email"`
	ActorID string `json:"actor,omitempty"`
}

func NewAccountEvent(eventType, email, actor string) *AccountEvent {
	return &AccountEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"email": email,
				"actor": actor,
			},
		},
		Email:   email,
		ActorID: actor,
	}
}

func NewAccountDeactivatedEvent(email, actor string, scheduledDeletion time.Time) *AccountEvent {
	ev := NewAccountEvent(EventTypeAccountDeactivated, email, actor)
	ev.Data["scheduled_deletion"] = scheduledDeletion
	return ev
}

func NewAccountPurgedEvent(email string, sessionsRemoved int64) *AccountEvent {
	ev := NewAccountEvent(EventTypeAccountPurged, email, "")
	ev.Data["sessions_removed"] = sessionsRemoved
	return ev
}

type SessionEvent struct {
	BaseEvent
	Email   string `json:"email"`
	EntryID int64  `json:"entry_id"`
}

func NewSessionEvent(eventType, email string, entryID int64) *SessionEvent {
	return &SessionEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"email":    email,
				"entry_id": entryID,
			},
		},
		Email:   email,
		EntryID: entryID,
	}
}

// NewSessionsReconciledEvent reports a sweep that closed count stale entries.
func NewSessionsReconciledEvent(count int64) *BaseEvent {
	return &BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeSessionReconciled,
		Timestamp: time.Now(),
		Data:      map[string]interface{}{"count": count},
	}
}
