package service

import "context"

// Confirmer guards destructive actions behind an explicit yes from the user.
type Confirmer interface {
	Confirm(ctx context.Context, action, detail string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, action, detail string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, action, detail string) bool {
	return f(ctx, action, detail)
}

var (
	// Confirmed is used once a host has already asked the user and got a yes.
	Confirmed Confirmer = ConfirmFunc(func(context.Context, string, string) bool { return true })
	Declined  Confirmer = ConfirmFunc(func(context.Context, string, string) bool { return false })
)
