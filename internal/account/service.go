package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/frahmantamala/user-management/internal"
	coreaccount "github.com/frahmantamala/user-management/internal/core/account"
	accountDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/account"
	"github.com/frahmantamala/user-management/internal/core/events"
)

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

var (
	errInactiveTarget     = apperrors.NewNotFoundError("Account is not active", apperrors.ErrCodeAccountNotFound)
	errMissingDeleteEmail = apperrors.NewValidationError("adminOrEmployeeEmail is required", apperrors.ErrCodeMissingTarget)
	errEmptyUpdate        = apperrors.NewValidationError("At least one field must be supplied", apperrors.ErrCodeValidationFailed)
)

type Service struct {
	repo        RepositoryAPI
	hasher      PasswordHasher
	publisher   events.Publisher
	logger      *slog.Logger
	gracePeriod time.Duration
	now         func() time.Time
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, publisher events.Publisher, gracePeriod time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		hasher:      hasher,
		publisher:   publisher,
		logger:      logger,
		gracePeriod: gracePeriod,
		now:         time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RegisterAdmin lets an HR employee create their own admin account.
func (s *Service) RegisterAdmin(ctx context.Context, dto RegistrationDTO) (*coreaccount.Account, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if !coreaccount.IsHRDesignation(dto.Designation) {
		s.logger.Warn("admin registration rejected: designation is not HR", "email", dto.Email, "designation", dto.Designation)
		return nil, apperrors.ErrNotHR
	}

	acc, err := s.create(ctx, dto, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin registered", "email", acc.Email)
	s.publish(ctx, events.NewAccountEvent(events.EventTypeAccountRegistered, acc.Email, acc.Email))
	return acc, nil
}

func (s *Service) CreateEmployee(ctx context.Context, dto RegistrationDTO, actor *coreaccount.Account) (*coreaccount.Account, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	acc, err := s.create(ctx, dto, false)
	if err != nil {
		return nil, err
	}

	s.logger.Info("employee created", "email", acc.Email, "created_by", actor.Email)
	s.publish(ctx, events.NewAccountEvent(events.EventTypeAccountCreated, acc.Email, actor.Email))
	return acc, nil
}

func (s *Service) create(ctx context.Context, dto RegistrationDTO, superUser bool) (*coreaccount.Account, error) {
	existing, err := s.repo.FindByEmail(ctx, dto.Email)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to look up account", err)
	}
	if existing != nil {
		return nil, apperrors.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	now := s.now()
	acc := &coreaccount.Account{
		Email:        dto.Email,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Designation:  dto.Designation,
		PasswordHash: hash,
		PhoneNumber:  dto.PhoneNumber,
		Address:      dto.Address,
		IsActive:     true,
		IsSuperUser:  superUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	row := coreaccount.ToDataModel(acc)
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperrors.ErrEmailTaken
		}
		s.logger.Error("failed to create account", "error", err, "email", dto.Email)
		return nil, apperrors.NewInternalError("failed to create account", err)
	}

	return coreaccount.FromDataModel(row), nil
}

// UpdateAdminProfile applies a partial update to the calling admin.
func (s *Service) UpdateAdminProfile(ctx context.Context, dto UpdateDTO, actor *coreaccount.Account) (*coreaccount.Account, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	if !actor.IsActive {
		return nil, apperrors.ErrAccountInactive
	}
	return s.applyUpdate(ctx, actor.Email, dto, actor)
}

// UpdateEmployeeProfile lets an admin update any account by email, or an
// employee update itself. targetEmail is ignored for employees.
func (s *Service) UpdateEmployeeProfile(ctx context.Context, dto UpdateDTO, targetEmail string, actor *coreaccount.Account) (*coreaccount.Account, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}

	var email string
	switch actor.Role() {
	case coreaccount.RoleAdmin:
		if targetEmail == "" {
			return nil, apperrors.ErrMissingTargetEmail
		}
		email = targetEmail
	case coreaccount.RoleEmployee:
		email = actor.Email
	}

	return s.applyUpdate(ctx, email, dto, actor)
}

func (s *Service) applyUpdate(ctx context.Context, email string, dto UpdateDTO, actor *coreaccount.Account) (*coreaccount.Account, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var newHash string
	if dto.Password != nil {
		h, err := s.hasher.Hash(*dto.Password)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to hash password", err)
		}
		newHash = h
	}

	var updated *accountDatamodel.Account
	err := s.repo.WithinTransaction(ctx, func(tx RepositoryAPI) error {
		row, err := tx.FindByEmail(ctx, email)
		if err != nil {
			return apperrors.NewInternalError("failed to look up account", err)
		}
		if row == nil {
			return apperrors.ErrAccountNotFound
		}

		oldEmail := row.Email
		if dto.Email != nil && *dto.Email != oldEmail {
			other, err := tx.FindByEmail(ctx, *dto.Email)
			if err != nil {
				return apperrors.NewInternalError("failed to look up account", err)
			}
			if other != nil {
				return apperrors.ErrEmailTaken
			}
			row.Email = *dto.Email
		}
		if dto.FirstName != nil {
			row.FirstName = *dto.FirstName
		}
		if dto.LastName != nil {
			row.LastName = *dto.LastName
		}
		if dto.Address.Set {
			row.Address = dto.Address.Value
		}
		if dto.PhoneNumber != nil {
			row.PhoneNumber = *dto.PhoneNumber
		}
		if dto.Designation != nil {
			row.Designation = *dto.Designation
		}
		if newHash != "" {
			row.PasswordHash = newHash
		}
		row.UpdatedAt = s.now()

		if err := tx.Update(ctx, row); err != nil {
			if errors.Is(err, ErrDuplicateEmail) {
				return apperrors.ErrEmailTaken
			}
			return apperrors.NewInternalError("failed to update account", err)
		}
		if row.Email != oldEmail {
			if err := tx.RenameSessionEntries(ctx, oldEmail, row.Email); err != nil {
				return apperrors.NewInternalError("failed to move session entries", err)
			}
		}
		updated = row
		return nil
	})
	if err != nil {
		s.logger.Warn("account update failed", "email", email, "actor", actor.Email, "error", err)
		return nil, err
	}

	s.logger.Info("account updated", "email", updated.Email, "actor", actor.Email)
	s.publish(ctx, events.NewAccountEvent(events.EventTypeAccountUpdated, updated.Email, actor.Email))
	return coreaccount.FromDataModel(updated), nil
}

// Deactivate soft-deletes the target and schedules its purge after the
// grace period.
func (s *Service) Deactivate(ctx context.Context, actor *coreaccount.Account, targetEmail string) (*coreaccount.Account, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	if targetEmail == "" {
		return nil, errMissingDeleteEmail
	}

	var target *coreaccount.Account
	err := s.repo.WithinTransaction(ctx, func(tx RepositoryAPI) error {
		row, err := tx.FindByEmail(ctx, targetEmail)
		if err != nil {
			return apperrors.NewInternalError("failed to look up account", err)
		}
		if row == nil {
			return apperrors.ErrAccountNotFound
		}
		acc := coreaccount.FromDataModel(row)
		if !acc.IsActive {
			return errInactiveTarget
		}

		acc.Deactivate(s.now(), s.gracePeriod)
		if err := tx.Update(ctx, coreaccount.ToDataModel(acc)); err != nil {
			return apperrors.NewInternalError("failed to deactivate account", err)
		}
		target = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account deactivated",
		"email", target.Email,
		"actor", actor.Email,
		"scheduled_deletion", target.ScheduledDeletion)
	s.publish(ctx, events.NewAccountDeactivatedEvent(target.Email, actor.Email, *target.ScheduledDeletion))
	return target, nil
}

// PurgeExpired hard-deletes every deactivated account whose grace period has
// elapsed, together with its session entries, one transaction per account.
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	now := s.now()

	rows, err := s.repo.ListPurgeable(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list purgeable accounts: %w", err)
	}

	var (
		purged int
		errs   []error
	)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		removed, ok, err := s.repo.Purge(ctx, row.ID, now)
		if err != nil {
			s.logger.Error("failed to purge account", "error", err, "email", row.Email)
			errs = append(errs, fmt.Errorf("purge %s: %w", row.Email, err))
			continue
		}
		if !ok {
			s.logger.Debug("account no longer purgeable", "email", row.Email)
			continue
		}

		purged++
		s.publish(ctx, events.NewAccountPurgedEvent(row.Email, removed))
	}

	if purged > 0 {
		s.logger.Info("purged deactivated accounts", "count", purged)
	}
	return purged, errors.Join(errs...)
}

// Profile returns the caller's own record, gated on the role the endpoint serves.
func (s *Service) Profile(ctx context.Context, actor *coreaccount.Account, role coreaccount.Role) (*coreaccount.Account, error) {
	if actor == nil {
		return nil, apperrors.ErrMissingToken
	}
	switch role {
	case coreaccount.RoleAdmin:
		if !actor.IsAdmin() {
			return nil, apperrors.ErrAdminRequired
		}
	case coreaccount.RoleEmployee:
		if actor.Role() != coreaccount.RoleEmployee {
			return nil, apperrors.ErrEmployeeOnly
		}
	}

	row, err := s.repo.FindByEmail(ctx, actor.Email)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to look up account", err)
	}
	if row == nil {
		return nil, apperrors.ErrAccountNotFound
	}
	return coreaccount.FromDataModel(row), nil
}

func (s *Service) ListAdmins(ctx context.Context, actor *coreaccount.Account) ([]*coreaccount.Account, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListAdmins(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list admins", err)
	}
	return nonEmpty(fromRows(rows))
}

// ListActiveEmployees returns one active employee when email is set,
// otherwise all of them.
func (s *Service) ListActiveEmployees(ctx context.Context, actor *coreaccount.Account, email string) ([]*coreaccount.Account, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}

	if email != "" {
		row, err := s.repo.FindByEmail(ctx, email)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to look up account", err)
		}
		if row == nil || !row.IsActive || row.IsSuperUser {
			return nil, apperrors.ErrNoRecords
		}
		return []*coreaccount.Account{coreaccount.FromDataModel(row)}, nil
	}

	rows, err := s.repo.ListActiveEmployees(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list employees", err)
	}
	return nonEmpty(fromRows(rows))
}

func (s *Service) ListInactive(ctx context.Context, actor *coreaccount.Account, admins bool) ([]*coreaccount.Account, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListInactive(ctx, admins)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list inactive accounts", err)
	}
	return nonEmpty(fromRows(rows))
}

func (s *Service) requireAdmin(actor *coreaccount.Account) error {
	if actor == nil {
		return apperrors.ErrMissingToken
	}
	switch actor.Role() {
	case coreaccount.RoleAdmin:
		return nil
	case coreaccount.RoleEmployee:
		s.logger.Warn("admin operation denied", "email", actor.Email)
	}
	return apperrors.ErrAdminRequired
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish account event", "event_type", ev.EventType(), "error", err)
	}
}

func nonEmpty(accs []*coreaccount.Account) ([]*coreaccount.Account, error) {
	if len(accs) == 0 {
		return nil, apperrors.ErrNoRecords
	}
	return accs, nil
}
