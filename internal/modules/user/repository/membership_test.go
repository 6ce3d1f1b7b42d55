package repository_test

import (
	"context"
	"sync"
	"testing"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/internal/modules/user/repository"
	"anoa.com/newsportal/internal/rbac"
	"anoa.com/newsportal/internal/testutil"
	"anoa.com/newsportal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipStoreReconcilesAgainstDatabase(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)
	alice := testutil.CreateUser(t, db, "alice", "secret123", "reader")

	var changes []rbac.Change
	rec := rbac.NewReconciler(repository.NewMembershipStore(db), zerolog.Nop(), func(_ context.Context, c rbac.Change) {
		changes = append(changes, c)
	}, nil)

	role, err := rec.AddToGroup(ctx, alice.ID, "writer")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleWriter, role)

	stored, err := users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "writer", stored.Role)

	groups, err := users.GroupNames(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"reader", "writer"}, groups)

	// adding an existing membership is a no-op
	role, err = rec.AddToGroup(ctx, alice.ID, "writer")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleWriter, role)
	assert.Len(t, changes, 1)

	role, err = rec.AssignRole(ctx, alice.ID, rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, role)

	groups, err = users.GroupNames(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, groups)

	role, err = rec.ClearGroups(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleReader, role)

	stored, err = users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader", stored.Role)
}

func TestMembershipStoreCreatesMissingGroup(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	bob := testutil.CreateUser(t, db, "bob", "secret123", "reader")

	rec := rbac.NewReconciler(repository.NewMembershipStore(db), zerolog.Nop(), nil, nil)
	role, err := rec.AddToGroup(ctx, bob.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, role)

	var count int64
	require.NoError(t, db.Model(&entity.Group{}).Where("name = ?", "admin").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMembershipStoreUnknownUser(t *testing.T) {
	db := testutil.NewDB(t)
	rec := rbac.NewReconciler(repository.NewMembershipStore(db), zerolog.Nop(), nil, nil)

	_, err := rec.OnMembershipChange(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserRepositoryLookups(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewUserRepository(db)
	carol := testutil.CreateUser(t, db, "carol", "secret123", "reader")

	found, err := repo.FindByEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, carol.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	exists, err := repo.ExistsByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "dave@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.EnsureGroups(ctx, "admin", "writer", "reader"))
	require.NoError(t, repo.EnsureGroups(ctx, "admin", "writer", "reader"))
	var count int64
	require.NoError(t, db.Model(&entity.Group{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestMembershipStoreSerializesConcurrentReconciliations(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)
	rec := rbac.NewReconciler(repository.NewMembershipStore(db), zerolog.Nop(), nil, nil)
	dave := testutil.CreateUser(t, db, "dave", "secret123", "reader")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := rec.AddToGroup(ctx, dave.ID, "admin")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := rec.AssignRole(ctx, dave.ID, rbac.RoleWriter)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := users.FindByID(ctx, dave.ID)
	require.NoError(t, err)
	groups, err := users.GroupNames(ctx, dave.ID)
	require.NoError(t, err)
	assert.Equal(t, string(rbac.Classify(groups)), stored.Role)
	assert.Contains(t, groups, "writer")
}
