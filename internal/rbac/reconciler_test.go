package rbac

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"anoa.com/newsportal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUser struct {
	role   string
	groups map[string]bool
}

func (u fakeUser) clone() fakeUser {
	groups := make(map[string]bool, len(u.groups))
	for g := range u.groups {
		groups[g] = true
	}
	return fakeUser{role: u.role, groups: groups}
}

// fakeStore commits a copy of the user only when fn succeeds. mu stands in
// for the row lock.
type fakeStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]fakeUser
	failOn   string
	setCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[uuid.UUID]fakeUser{}}
}

func (s *fakeStore) addUser(role string, groups ...string) uuid.UUID {
	id := uuid.New()
	u := fakeUser{role: role, groups: map[string]bool{}}
	for _, g := range groups {
		u.groups[g] = true
	}
	s.users[id] = u
	return id
}

func (s *fakeStore) WithUserLock(_ context.Context, userID uuid.UUID, fn func(tx MembershipTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return apperror.ErrNotFound
	}
	work := &fakeTx{store: s, user: u.clone()}
	if err := fn(work); err != nil {
		return err
	}
	s.users[userID] = work.user
	return nil
}

type fakeTx struct {
	store *fakeStore
	user  fakeUser
}

var errBoom = errors.New("boom")

func (t *fakeTx) fail(op string) error {
	if t.store.failOn == op {
		return errBoom
	}
	return nil
}

func (t *fakeTx) Groups() ([]string, error) {
	if err := t.fail("Groups"); err != nil {
		return nil, err
	}
	var out []string
	for g := range t.user.groups {
		out = append(out, g)
	}
	sort.Strings(out)
	return out, nil
}

func (t *fakeTx) StoredRole() (string, error) { return t.user.role, nil }

func (t *fakeTx) AddGroup(name string) error {
	if err := t.fail("AddGroup"); err != nil {
		return err
	}
	t.user.groups[name] = true
	return nil
}

func (t *fakeTx) RemoveGroup(name string) error {
	delete(t.user.groups, name)
	return nil
}

func (t *fakeTx) ClearGroups() error {
	t.user.groups = map[string]bool{}
	return nil
}

func (t *fakeTx) SetRole(role Role) error {
	if err := t.fail("SetRole"); err != nil {
		return err
	}
	t.store.setCalls++
	t.user.role = string(role)
	return nil
}

func newTestReconciler(store MembershipStore, changes *[]Change) *Reconciler {
	return NewReconciler(store, zerolog.Nop(), func(_ context.Context, c Change) {
		*changes = append(*changes, c)
	}, nil)
}

func TestAddToGroupPromotesReader(t *testing.T) {
	store := newFakeStore()
	alice := store.addUser("reader", "reader")
	var changes []Change
	r := newTestReconciler(store, &changes)

	role, err := r.AddToGroup(context.Background(), alice, "writer")
	require.NoError(t, err)

	assert.Equal(t, RoleWriter, role)
	assert.Equal(t, "writer", store.users[alice].role)
	require.Len(t, changes, 1)
	assert.Equal(t, Change{UserID: alice, From: RoleReader, To: RoleWriter, Trigger: TriggerAdd}, changes[0])
}

func TestAdminWinsOverWriter(t *testing.T) {
	store := newFakeStore()
	id := store.addUser("writer", "writer")
	var changes []Change
	r := newTestReconciler(store, &changes)

	role, err := r.AddToGroup(context.Background(), id, "admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	role, err = r.RemoveFromGroup(context.Background(), id, "admin")
	require.NoError(t, err)
	assert.Equal(t, RoleWriter, role)
	assert.Equal(t, "writer", store.users[id].role)
}

func TestOnMembershipChangeIsIdempotent(t *testing.T) {
	store := newFakeStore()
	// drifted: field says reader but membership says writer
	id := store.addUser("reader", "writer")
	var changes []Change
	r := newTestReconciler(store, &changes)

	role, err := r.OnMembershipChange(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, RoleWriter, role)
	assert.Equal(t, 1, store.setCalls)

	role, err = r.OnMembershipChange(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, RoleWriter, role)
	assert.Equal(t, 1, store.setCalls, "second call must not write")
	assert.Len(t, changes, 1)
}

func TestClearGroupsFallsBackToReader(t *testing.T) {
	store := newFakeStore()
	id := store.addUser("admin", "admin", "writer")
	var changes []Change
	r := newTestReconciler(store, &changes)

	role, err := r.ClearGroups(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, RoleReader, role)
	assert.Empty(t, store.users[id].groups)
	assert.Equal(t, "reader", store.users[id].role)
}

func TestAssignRoleReplacesMembership(t *testing.T) {
	store := newFakeStore()
	id := store.addUser("admin", "admin", "reader")
	var changes []Change
	r := newTestReconciler(store, &changes)

	role, err := r.AssignRole(context.Background(), id, RoleWriter)
	require.NoError(t, err)

	assert.Equal(t, RoleWriter, role)
	assert.Equal(t, map[string]bool{"writer": true}, store.users[id].groups)
	assert.Equal(t, "writer", store.users[id].role)
	require.Len(t, changes, 1)
	assert.Equal(t, TriggerAssign, changes[0].Trigger)
}

func TestFailureLeavesNothingCommitted(t *testing.T) {
	store := newFakeStore()
	id := store.addUser("reader", "reader")
	store.failOn = "SetRole"
	var changes []Change
	r := newTestReconciler(store, &changes)

	_, err := r.AddToGroup(context.Background(), id, "admin")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrReconciliation)

	assert.Equal(t, "reader", store.users[id].role)
	assert.Equal(t, map[string]bool{"reader": true}, store.users[id].groups, "membership change must roll back")
	assert.Empty(t, changes)
}

func TestInvalidInputAndUnknownUser(t *testing.T) {
	store := newFakeStore()
	var changes []Change
	r := newTestReconciler(store, &changes)

	_, err := r.AddToGroup(context.Background(), uuid.New(), "superuser")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = r.AssignRole(context.Background(), uuid.New(), Role("root"))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = r.AddToGroup(context.Background(), uuid.New(), "writer")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NotErrorIs(t, err, apperror.ErrReconciliation)
}

func TestConcurrentReconciliationsAgreeWithMembership(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, zerolog.Nop(), nil, nil)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		id := store.addUser("reader", "reader")

		var wg sync.WaitGroup
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, err := r.AddToGroup(ctx, id, "admin")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := r.AssignRole(ctx, id, RoleWriter)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := r.RemoveFromGroup(ctx, id, "reader")
			assert.NoError(t, err)
		}()
		wg.Wait()

		u := store.users[id]
		var groups []string
		for g := range u.groups {
			groups = append(groups, g)
		}
		assert.Equal(t, string(Classify(groups)), u.role, "groups %v", groups)
		assert.Contains(t, []string{"writer", "admin"}, u.role)
	}
}
