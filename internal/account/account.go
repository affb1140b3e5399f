package account

import (
	"context"
	"errors"
	"time"

	coreaccount "github.com/frahmantamala/user-management/internal/core/account"
	accountDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/account"
)

var ErrDuplicateEmail = errors.New("email already exists")

type RepositoryAPI interface {
	FindByEmail(ctx context.Context, email string) (*accountDatamodel.Account, error)
	Create(ctx context.Context, acc *accountDatamodel.Account) error
	Update(ctx context.Context, acc *accountDatamodel.Account) error
	ListAdmins(ctx context.Context) ([]*accountDatamodel.Account, error)
	ListActiveEmployees(ctx context.Context) ([]*accountDatamodel.Account, error)
	ListInactive(ctx context.Context, admins bool) ([]*accountDatamodel.Account, error)
	ListPurgeable(ctx context.Context, now time.Time) ([]*accountDatamodel.Account, error)
	// Purge removes the account and its session entries if it still
	// qualifies at now. purged is false when the row no longer matches.
	Purge(ctx context.Context, id int64, now time.Time) (sessionsRemoved int64, purged bool, err error)
	RenameSessionEntries(ctx context.Context, oldEmail, newEmail string) error
	WithinTransaction(ctx context.Context, fn func(tx RepositoryAPI) error) error
}

// View is the JSON representation of an account.
type View struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	FirstName         string     `json:"userFirstName"`
	LastName          string     `json:"userLastName"`
	Designation       string     `json:"designation"`
	PhoneNumber       string     `json:"phoneNumber"`
	Address           *string    `json:"address"`
	IsActive          bool       `json:"isActive"`
	IsSuperUser       bool       `json:"isSuperUser"`
	ScheduledDeletion *time.Time `json:"scheduledDeletion,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func ToView(a *coreaccount.Account) View {
	return View{
		ID:                a.ID,
		Email:             a.Email,
		FirstName:         a.FirstName,
		LastName:          a.LastName,
		Designation:       a.Designation,
		PhoneNumber:       a.PhoneNumber,
		Address:           a.Address,
		IsActive:          a.IsActive,
		IsSuperUser:       a.IsSuperUser,
		ScheduledDeletion: a.ScheduledDeletion,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func ToViews(accs []*coreaccount.Account) []View {
	out := make([]View, 0, len(accs))
	for _, a := range accs {
		out = append(out, ToView(a))
	}
	return out
}

type MessageResponse struct {
	Message string `json:"message"`
}

type EmployeeCreatedResponse struct {
	Message  string `json:"message"`
	Employee View   `json:"employee"`
}

type DeactivatedResponse struct {
	Message           string    `json:"message"`
	Email             string    `json:"email"`
	ScheduledDeletion time.Time `json:"scheduledDeletion"`
}

type ListResponse struct {
	Accounts []View `json:"accounts"`
}

func fromRows(rows []*accountDatamodel.Account) []*coreaccount.Account {
	out := make([]*coreaccount.Account, 0, len(rows))
	for _, r := range rows {
		out = append(out, coreaccount.FromDataModel(r))
	}
	return out
}
