package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/user-management/internal/auth"
	coreaccount "github.com/frahmantamala/user-management/internal/core/account"
	accountDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/account"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{db: db}
}

// FindByEmail returns nil without an error when no account has the email.
// Inactive accounts are returned; callers decide what that means.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*coreaccount.Account, error) {
	var row accountDatamodel.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return coreaccount.FromDataModel(&row), nil
}
