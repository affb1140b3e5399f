package internal

import (
	"context"
	"time"

	coreaccount "github.com/frahmantamala/user-management/internal/core/account"
)

type ctxKey string

const ContextAccountKey ctxKey = "account"

// AccountFromContext returns the caller resolved by the auth middleware.
func AccountFromContext(ctx context.Context) (*coreaccount.Account, bool) {
	if ctx == nil {
		return nil, false
	}
	acc, ok := ctx.Value(ContextAccountKey).(*coreaccount.Account)
	return acc, ok && acc != nil
}

func ContextWithAccount(ctx context.Context, acc *coreaccount.Account) context.Context {
	return context.WithValue(ctx, ContextAccountKey, acc)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
