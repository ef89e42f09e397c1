// Package auth defines the authorization boundary for board access. The
// policy itself lives outside this module; services and the realtime hub
// only consult the answer before touching board state.
package auth

import "context"

// Principal identifies the actor performing an operation.
type Principal string

type principalKey struct{}

// WithPrincipal returns a context carrying the given principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored in ctx, or the empty
// (anonymous) principal when none is set.
func PrincipalFromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(principalKey{}).(Principal)
	return p
}

// Authorizer answers whether a principal may view or mutate a board.
type Authorizer interface {
	CanViewBoard(ctx context.Context, p Principal, boardID int) (bool, error)
	CanMutateBoard(ctx context.Context, p Principal, boardID int) (bool, error)
}

// AllowAll permits every operation. Suitable for single-user deployments;
// multi-user installs plug in their own Authorizer.
type AllowAll struct{}

func (AllowAll) CanViewBoard(context.Context, Principal, int) (bool, error) {
	return true, nil
}

func (AllowAll) CanMutateBoard(context.Context, Principal, int) (bool, error) {
	return true, nil
}

// Compile-time verification that AllowAll implements Authorizer
var _ Authorizer = AllowAll{}
