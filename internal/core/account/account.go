package account

import (
	"strings"
	"time"

	accountDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/account"
)

// Role is derived from the super-user flag. Only two variants exist.
type Role int

const (
	RoleEmployee Role = iota
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleEmployee:
		return "employee"
	}
	return "unknown"
}

// HRDesignation is the only designation allowed to self-register as admin.
const HRDesignation = "HR"

type Account struct {
	ID                int64
	Email             string
	FirstName         string
	LastName          string
	Designation       string
	PasswordHash      string
	PhoneNumber       string
	Address           *string
	IsActive          bool
	IsSuperUser       bool
	ScheduledDeletion *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (a *Account) Role() Role {
	if a.IsSuperUser {
		return RoleAdmin
	}
	return RoleEmployee
}

func (a *Account) IsAdmin() bool {
	return a.Role() == RoleAdmin
}

// Deactivate soft-deletes the account and schedules its purge.
func (a *Account) Deactivate(now time.Time, grace time.Duration) {
	at := now.Add(grace)
	a.IsActive = false
	a.ScheduledDeletion = &at
	a.UpdatedAt = now
}

// IsPurgeable reports whether the grace period of a deactivated account has elapsed.
func (a *Account) IsPurgeable(now time.Time) bool {
	return !a.IsActive && a.ScheduledDeletion != nil && !a.ScheduledDeletion.After(now)
}

func IsHRDesignation(designation string) bool {
	return strings.EqualFold(strings.TrimSpace(designation), HRDesignation)
}

func ToDataModel(a *Account) *accountDatamodel.Account {
	return &accountDatamodel.Account{
		ID:                a.ID,
		Email:             a.Email,
		FirstName:         a.FirstName,
		LastName:          a.LastName,
		Designation:       a.Designation,
		PasswordHash:      a.PasswordHash,
		PhoneNumber:       a.PhoneNumber,
		Address:           a.Address,
		IsActive:          a.IsActive,
		IsSuperUser:       a.IsSuperUser,
		ScheduledDeletion: a.ScheduledDeletion,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func FromDataModel(a *accountDatamodel.Account) *Account {
	return &Account{
		ID:                a.ID,
		Email:             a.Email,
		FirstName:         a.FirstName,
		LastName:          a.LastName,
		Designation:       a.Designation,
		PasswordHash:      a.PasswordHash,
		PhoneNumber:       a.PhoneNumber,
		Address:           a.Address,
		IsActive:          a.IsActive,
		IsSuperUser:       a.IsSuperUser,
		ScheduledDeletion: a.ScheduledDeletion,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}
