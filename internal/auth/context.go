package auth

import "context"

type ContextKey string

const ContextKeyAdmin ContextKey = "admin"

func ContextWithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, ContextKeyAdmin, true)
}

func IsAdmin(ctx context.Context) bool {
	ok, _ := ctx.Value(ContextKeyAdmin).(bool)
	return ok
}
