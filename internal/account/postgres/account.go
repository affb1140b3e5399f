package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/user-management/internal/account"
	accountDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/account"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) account.RepositoryAPI {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*accountDatamodel.Account, error) {
	var acc accountDatamodel.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &acc, nil
}

func (r *AccountRepository) Create(ctx context.Context, acc *accountDatamodel.Account) error {
	return translate(r.db.WithContext(ctx).Create(acc).Error)
}

func (r *AccountRepository) Update(ctx context.Context, acc *accountDatamodel.Account) error {
	return translate(r.db.WithContext(ctx).Save(acc).Error)
}

func (r *AccountRepository) ListAdmins(ctx context.Context) ([]*accountDatamodel.Account, error) {
	var accs []*accountDatamodel.Account
	err := r.db.WithContext(ctx).
		Where("is_super_user = ?", true).
		Order("id ASC").
		Find(&accs).Error
	return accs, err
}

func (r *AccountRepository) ListActiveEmployees(ctx context.Context) ([]*accountDatamodel.Account, error) {
	var accs []*accountDatamodel.Account
	err := r.db.WithContext(ctx).
		Where("is_super_user = ? AND is_active = ?", false, true).
		Order("id ASC").
		Find(&accs).Error
	return accs, err
}

func (r *AccountRepository) ListInactive(ctx context.Context, admins bool) ([]*accountDatamodel.Account, error) {
	var accs []*accountDatamodel.Account
	err := r.db.WithContext(ctx).
		Where("is_super_user = ? AND is_active = ?", admins, false).
		Order("id ASC").
		Find(&accs).Error
	return accs, err
}

func (r *AccountRepository) ListPurgeable(ctx context.Context, now time.Time) ([]*accountDatamodel.Account, error) {
	var accs []*accountDatamodel.Account
	err := r.db.WithContext(ctx).
		Scopes(purgeable(now)).
		Order("id ASC").
		Find(&accs).Error
	return accs, err
}

func (r *AccountRepository) Purge(ctx context.Context, id int64, now time.Time) (int64, bool, error) {
	var (
		removed int64
		purged  bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the predicate is re-checked here; a reactivated or already
		// purged row is skipped
		var acc accountDatamodel.Account
		err := tx.Scopes(purgeable(now)).Where("id = ?", id).First(&acc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		res := tx.Where("account_email = ?", acc.Email).Delete(&accountDatamodel.SessionEntry{})
		if res.Error != nil {
			return fmt.Errorf("delete session entries: %w", res.Error)
		}
		removed = res.RowsAffected

		res = tx.Scopes(purgeable(now)).Where("id = ?", id).Delete(&accountDatamodel.Account{})
		if res.Error != nil {
			return fmt.Errorf("delete account: %w", res.Error)
		}
		purged = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return removed, purged, nil
}

func (r *AccountRepository) RenameSessionEntries(ctx context.Context, oldEmail, newEmail string) error {
	return r.db.WithContext(ctx).
		Model(&accountDatamodel.SessionEntry{}).
		Where("account_email = ?", oldEmail).
		Update("account_email", newEmail).Error
}

// WithinTransaction runs fn with a repository bound to a single transaction.
func (r *AccountRepository) WithinTransaction(ctx context.Context, fn func(tx account.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AccountRepository{db: tx})
	})
}

func purgeable(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ? AND scheduled_deletion IS NOT NULL AND scheduled_deletion <= ?", false, now)
	}
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return account.ErrDuplicateEmail
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") {
		return account.ErrDuplicateEmail
	}
	return err
}
