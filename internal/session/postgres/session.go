package postgres

import (
	"context"
	"errors"
	"time"

	accountDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/account"
	"github.com/frahmantamala/user-management/internal/session"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) session.RepositoryAPI {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, entry *accountDatamodel.SessionEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *SessionRepository) LatestByEmail(ctx context.Context, email string) (*accountDatamodel.SessionEntry, error) {
	var entry accountDatamodel.SessionEntry
	err := r.db.WithContext(ctx).
		Where("account_email = ?", email).
		Order("id DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *SessionRepository) ListByEmail(ctx context.Context, email string) ([]*accountDatamodel.SessionEntry, error) {
	var entries []*accountDatamodel.SessionEntry
	err := r.db.WithContext(ctx).
		Where("account_email = ?", email).
		Order("id DESC").
		Find(&entries).Error
	return entries, err
}

// CloseIfOpen stamps the logout only when none was recorded yet.
func (r *SessionRepository) CloseIfOpen(ctx context.Context, id int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&accountDatamodel.SessionEntry{}).
		Where("id = ? AND logged_out_at IS NULL", id).
		Update("logged_out_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *SessionRepository) CloseExpired(ctx context.Context, ttl time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-ttl)

	var closed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []accountDatamodel.SessionEntry
		if err := tx.Select("id", "logged_in_at").
			Where("logged_out_at IS NULL AND logged_in_at <= ?", cutoff).
			Find(&stale).Error; err != nil {
			return err
		}

		for _, e := range stale {
			res := tx.Model(&accountDatamodel.SessionEntry{}).
				Where("id = ? AND logged_out_at IS NULL", e.ID).
				Update("logged_out_at", e.LoggedInAt.Add(ttl))
			if res.Error != nil {
				return res.Error
			}
			closed += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return closed, nil
}
