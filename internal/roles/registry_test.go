package roles

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptorium-hq/scriptorium/internal/events"
	"github.com/scriptorium-hq/scriptorium/internal/identity"
	"github.com/scriptorium-hq/scriptorium/internal/shared"
)

const (
	owner = identity.Account("0x1111111111111111111111111111111111111111")
	alice = identity.Account("0x2222222222222222222222222222222222222222")
	bob   = identity.Account("0x3333333333333333333333333333333333333333")
)

type capturePublisher struct {
	mu   sync.Mutex
	seen []events.Event
}

func (c *capturePublisher) Publish(_ context.Context, e events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, e)
	return nil
}

func (c *capturePublisher) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.seen))
	for i, e := range c.seen {
		out[i] = e.Type
	}
	return out
}

func TestOwnerInitialRoles(t *testing.T) {
	r := NewRegistry(owner, nil, nil)

	assert.True(t, r.Has(owner, SuperAdmin))
	assert.True(t, r.Has(owner, Admin))
	assert.False(t, r.Has(owner, Contributor))
	assert.False(t, r.Has(owner, Reviewer))
	assert.False(t, r.Has(alice, SuperAdmin))
}

func TestGrantRequiresAdmin(t *testing.T) {
	r := NewRegistry(owner, nil, nil)

	err := r.Grant(context.Background(), alice, bob, Contributor)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
	assert.False(t, r.Has(bob, Contributor))
}

func TestGrantRevokeLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(owner, nil, nil)

	require.NoError(t, r.Grant(ctx, owner, alice, Contributor))
	assert.True(t, r.Has(alice, Contributor))

	// Granting an already-held role is a no-op success.
	require.NoError(t, r.Grant(ctx, owner, alice, Contributor))
	assert.True(t, r.Has(alice, Contributor))

	require.NoError(t, r.Revoke(ctx, owner, alice, Contributor))
	assert.False(t, r.Has(alice, Contributor))

	// Revoking an unheld role is also a no-op success.
	require.NoError(t, r.Revoke(ctx, owner, alice, Contributor))
	assert.False(t, r.Has(alice, Contributor))
}

func TestGrantedAdminCanManageRoles(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(owner, nil, nil)

	require.NoError(t, r.Grant(ctx, owner, alice, Admin))
	require.NoError(t, r.Grant(ctx, alice, bob, Reviewer))
	assert.True(t, r.Has(bob, Reviewer))

	// Revoking alice's Admin removes her management privilege.
	require.NoError(t, r.Revoke(ctx, owner, alice, Admin))
	err := r.Grant(ctx, alice, bob, Contributor)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestSuperAdminStaysImmutable(t *testing.T) {
	ctx := context.Background()
	pub := &capturePublisher{}
	r := NewRegistry(owner, pub, nil)

	require.ErrorIs(t, r.Grant(ctx, owner, alice, SuperAdmin), ErrNotGrantable)
	require.ErrorIs(t, r.Revoke(ctx, owner, owner, SuperAdmin), ErrNotGrantable)
	assert.True(t, r.Has(owner, SuperAdmin))
	assert.False(t, r.Has(alice, SuperAdmin))
	// A rejected assignment is not an authorization failure and emits nothing.
	assert.NotErrorIs(t, r.Grant(ctx, owner, alice, SuperAdmin), shared.ErrUnauthorized)
	assert.Empty(t, pub.seen)
}

func TestHoldingOneRoleDoesNotImplyAnother(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(owner, nil, nil)

	require.NoError(t, r.Grant(ctx, owner, alice, Contributor))
	assert.True(t, r.HasAny(alice, Contributor, Reviewer))
	assert.False(t, r.HasAll(alice, Contributor, Reviewer))

	require.NoError(t, r.Grant(ctx, owner, alice, Reviewer))
	assert.True(t, r.HasAll(alice, Contributor, Reviewer))
}

func TestRoleChangeEvents(t *testing.T) {
	ctx := context.Background()
	pub := &capturePublisher{}
	r := NewRegistry(owner, pub, nil)

	require.NoError(t, r.Grant(ctx, owner, alice, Reviewer))
	require.NoError(t, r.Revoke(ctx, owner, alice, Reviewer))

	require.Equal(t, []string{events.TypeRoleGranted, events.TypeRoleRevoked}, pub.types())

	var granted events.RoleGranted
	require.NoError(t, json.Unmarshal(pub.seen[0].Payload, &granted))
	assert.Equal(t, alice, granted.Account)
	assert.Equal(t, string(Reviewer), granted.Role)
	assert.Equal(t, owner, granted.GrantedBy)
	assert.NotEmpty(t, pub.seen[0].ID)
}

func TestParse(t *testing.T) {
	for _, role := range Grantable() {
		parsed, err := Parse(string(role))
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}
	_, err := Parse("super_admin")
	assert.Error(t, err)
	_, err = Parse("editor")
	assert.Error(t, err)
}
