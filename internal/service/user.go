package service

import (
	"context"

	"github.com/merkur-erp/erp-api/internal/auth"
)

// authFromContext extracts the acting user from the request context
func authFromContext(ctx context.Context) (*auth.UserContext, bool) {
	return auth.FromContext(ctx)
}

// changedBy returns the acting user's id and display name for workflow log
// records. Both are empty for unauthenticated contexts (background jobs).
func changedBy(ctx context.Context) (string, string) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return "", ""
	}
	return userCtx.UserID.String(), userCtx.DisplayName
}
