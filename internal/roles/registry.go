package roles

import (
	"context"
	"log/slog"
	"sync"

	"github.com/scriptorium-hq/scriptorium/internal/events"
	"github.com/scriptorium-hq/scriptorium/internal/identity"
	"github.com/scriptorium-hq/scriptorium/internal/shared"
)

// Registry tracks which accounts hold which roles. The initializing identity
// holds SuperAdmin immutably plus an ordinary, revocable Admin grant; every
// other assignment enters the relation through Grant.
type Registry struct {
	mu    sync.RWMutex
	owner identity.Account
	held  map[identity.Account]map[Role]bool

	publisher events.Publisher
	logger    *slog.Logger
}

// NewRegistry constructs a Registry owned by the initializing identity.
func NewRegistry(owner identity.Account, publisher events.Publisher, logger *slog.Logger) *Registry {
	if publisher == nil {
		publisher = events.Nop{}
	}
	r := &Registry{
		owner:     owner,
		held:      make(map[identity.Account]map[Role]bool),
		publisher: publisher,
		logger:    logger,
	}
	r.set(owner, Admin, true)
	return r
}

// Grant assigns a role to the target account. Requires the acting account to
// hold Admin or SuperAdmin. Granting an already-held role is a no-op success.
func (r *Registry) Grant(ctx context.Context, acting, target identity.Account, role Role) error {
	if !r.canManage(acting) {
		return shared.ErrUnauthorized
	}
	if !grantable(role) {
		// SuperAdmin never enters the grant/revoke relation.
		return ErrNotGrantable
	}

	r.mu.Lock()
	r.set(target, role, true)
	r.mu.Unlock()

	r.emit(ctx, events.TypeRoleGranted, events.RoleGranted{
		Account:   target,
		Role:      string(role),
		GrantedBy: acting,
	})
	return nil
}

// Revoke removes a role from the target account. Same authorization as
// Grant; revoking an unheld role is a no-op success.
func (r *Registry) Revoke(ctx context.Context, acting, target identity.Account, role Role) error {
	if !r.canManage(acting) {
		return shared.ErrUnauthorized
	}
	if !grantable(role) {
		return ErrNotGrantable
	}

	r.mu.Lock()
	r.set(target, role, false)
	r.mu.Unlock()

	r.emit(ctx, events.TypeRoleRevoked, events.RoleRevoked{
		Account:   target,
		Role:      string(role),
		RevokedBy: acting,
	})
	return nil
}

// Has reports whether the account currently holds the role. Pure query,
// never fails.
func (r *Registry) Has(account identity.Account, role Role) bool {
	if role == SuperAdmin {
		return account == r.owner
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.held[account][role]
}

// HasAll reports whether the account holds every listed role.
func (r *Registry) HasAll(account identity.Account, required ...Role) bool {
	for _, role := range required {
		if !r.Has(account, role) {
			return false
		}
	}
	return true
}

// HasAny reports whether the account holds at least one listed role.
func (r *Registry) HasAny(account identity.Account, required ...Role) bool {
	for _, role := range required {
		if r.Has(account, role) {
			return true
		}
	}
	return false
}

func (r *Registry) canManage(account identity.Account) bool {
	return r.HasAny(account, Admin, SuperAdmin)
}

// set mutates the relation. Callers other than NewRegistry hold r.mu.
func (r *Registry) set(account identity.Account, role Role, held bool) {
	if held {
		if r.held[account] == nil {
			r.held[account] = make(map[Role]bool)
		}
		r.held[account][role] = true
		return
	}
	delete(r.held[account], role)
	if len(r.held[account]) == 0 {
		delete(r.held, account)
	}
}

func (r *Registry) emit(ctx context.Context, eventType string, payload any) {
	event, err := events.New(eventType, payload)
	if err == nil {
		err = r.publisher.Publish(ctx, event)
	}
	if err != nil && r.logger != nil {
		r.logger.Warn("publish role event", slog.String("type", eventType), slog.Any("error", err))
	}
}

func grantable(role Role) bool {
	for _, g := range Grantable() {
		if role == g {
			return true
		}
	}
	return false
}
