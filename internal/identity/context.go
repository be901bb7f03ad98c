package identity

import "context"

type accountContextKey struct{}

// ContextWithAccount stores the authenticated account in context.
func ContextWithAccount(ctx context.Context, account Account) context.Context {
	return context.WithValue(ctx, accountContextKey{}, account)
}

// AccountFromContext extracts the authenticated account from context.
func AccountFromContext(ctx context.Context) (Account, bool) {
	account, ok := ctx.Value(accountContextKey{}).(Account)
	if !ok || account.IsZero() {
		return "", false
	}
	return account, true
}
