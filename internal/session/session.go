package session

import (
	"context"
	"time"

	accountDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/account"
)

// Entry is one login record. LoggedOutAt is written at most once.
type Entry struct {
	ID           int64
	AccountEmail string
	LoggedInAt   time.Time
	LoggedOutAt  *time.Time
	Token        string
}

func (e *Entry) IsOpen() bool {
	return e.LoggedOutAt == nil
}

// EntryView is the JSON shape of a ledger entry, split into date and
// time-of-day columns.
type EntryView struct {
	ID         int64   `json:"id"`
	Email      string  `json:"email"`
	LoginDate  string  `json:"loginDate"`
	LoginTime  string  `json:"loginTime"`
	LogoutTime *string `json:"logoutTime"`
}

func (e *Entry) ToView() EntryView {
	v := EntryView{
		ID:        e.ID,
		Email:     e.AccountEmail,
		LoginDate: e.LoggedInAt.Format(time.DateOnly),
		LoginTime: e.LoggedInAt.Format(time.TimeOnly),
	}
	if e.LoggedOutAt != nil {
		out := e.LoggedOutAt.Format(time.TimeOnly)
		v.LogoutTime = &out
	}
	return v
}

type RepositoryAPI interface {
	Create(ctx context.Context, entry *accountDatamodel.SessionEntry) error
	LatestByEmail(ctx context.Context, email string) (*accountDatamodel.SessionEntry, error)
	ListByEmail(ctx context.Context, email string) ([]*accountDatamodel.SessionEntry, error)
	CloseIfOpen(ctx context.Context, id int64, at time.Time) (bool, error)
	CloseExpired(ctx context.Context, ttl time.Duration, now time.Time) (int64, error)
}

func ToDataModel(e *Entry) *accountDatamodel.SessionEntry {
	return &accountDatamodel.SessionEntry{
		ID:           e.ID,
		AccountEmail: e.AccountEmail,
		LoggedInAt:   e.LoggedInAt,
		LoggedOutAt:  e.LoggedOutAt,
		Token:        e.Token,
	}
}

func FromDataModel(e *accountDatamodel.SessionEntry) *Entry {
	return &Entry{
		ID:           e.ID,
		AccountEmail: e.AccountEmail,
		LoggedInAt:   e.LoggedInAt,
		LoggedOutAt:  e.LoggedOutAt,
		Token:        e.Token,
	}
}
