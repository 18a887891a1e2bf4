package session

import (
	"context"

	"github.com/tracknfresh/tracknfresh-web/internal/model"
)

type ctxKey struct{}

// WithIdentity stores the caller's identity on ctx.
func WithIdentity(ctx context.Context, id *model.UserIdentity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the identity stored by WithIdentity, or nil.
func IdentityFrom(ctx context.Context) *model.UserIdentity {
	id, _ := ctx.Value(ctxKey{}).(*model.UserIdentity)
	return id
}
