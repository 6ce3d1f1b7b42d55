package comment

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/internal/modules/comment/dto"
	"anoa.com/newsportal/internal/modules/comment/repository"
	newsRepo "anoa.com/newsportal/internal/modules/news/repository"
	"anoa.com/newsportal/internal/rbac"
	"anoa.com/newsportal/internal/testutil"
	"anoa.com/newsportal/pkg/apperror"
	"anoa.com/newsportal/pkg/ratelimiter"
	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc   CommentService
	mr    *miniredis.Miniredis
	news  *entity.News
	bob   rbac.Identity
	carol rbac.Identity
	admin rbac.Identity
}

func newFixture(t *testing.T, cooldown time.Duration) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)

	cat := testutil.CreateCategory(t, db, "Local")
	news := testutil.CreateNews(t, db, "Council meets", cat.ID)

	identity := func(username, role string) rbac.Identity {
		u := testutil.CreateUser(t, db, username, "password1", role)
		r, ok := rbac.ParseRole(role)
		require.True(t, ok)
		return rbac.Identity{UserID: u.ID, Role: r}
	}

	svc := NewCommentService(repository.NewCommentRepository(db), newsRepo.NewNewsRepository(db), rbac.DefaultPolicy(), rdb, cooldown, zerolog.Nop())
	return fixture{
		svc:   svc,
		mr:    mr,
		news:  news,
		bob:   identity("bob", "reader"),
		carol: identity("carol", "reader"),
		admin: identity("alice", "admin"),
	}
}

func TestCreateComment(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	created, err := f.svc.CreateComment(ctx, f.bob, dto.CommentRequest{News: f.news.ID, Content: "<b>Great</b> read"})
	require.NoError(t, err)
	assert.Equal(t, "Great read", created.Content)
	assert.Equal(t, "bob", created.Username)
	assert.Equal(t, f.bob.UserID, created.UserID)

	_, err = f.svc.CreateComment(ctx, f.bob, dto.CommentRequest{News: 999, Content: "hello"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.CreateComment(ctx, f.bob, dto.CommentRequest{News: f.news.ID, Content: "<script></script>"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.CreateComment(ctx, rbac.Identity{}, dto.CommentRequest{News: f.news.ID, Content: "hi"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestCommentCooldown(t *testing.T) {
	f := newFixture(t, 10*time.Second)
	ctx := context.Background()

	_, err := f.svc.CreateComment(ctx, f.bob, dto.CommentRequest{News: f.news.ID, Content: "first"})
	require.NoError(t, err)

	_, err = f.svc.CreateComment(ctx, f.bob, dto.CommentRequest{News: f.news.ID, Content: "second"})
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)
	var limited *ratelimiter.RateLimitError
	require.True(t, errors.As(err, &limited))
	assert.Equal(t, 10*time.Second, limited.RetryAfter)

	// another user is not affected
	_, err = f.svc.CreateComment(ctx, f.carol, dto.CommentRequest{News: f.news.ID, Content: "mine"})
	assert.NoError(t, err)

	f.mr.FastForward(11 * time.Second)
	_, err = f.svc.CreateComment(ctx, f.bob, dto.CommentRequest{News: f.news.ID, Content: "second"})
	assert.NoError(t, err)
}

func TestRejectedCommentDoesNotStartCooldown(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	_, err := f.svc.CreateComment(ctx, f.bob, dto.CommentRequest{News: 999, Content: "lost"})
	require.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.CreateComment(ctx, f.bob, dto.CommentRequest{News: f.news.ID, Content: "kept"})
	assert.NoError(t, err)
}

func TestOnlyAuthorMayChangeComment(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	created, err := f.svc.CreateComment(ctx, f.bob, dto.CommentRequest{News: f.news.ID, Content: "draft"})
	require.NoError(t, err)

	edited := "final"
	for _, caller := range []rbac.Identity{f.carol, f.admin} {
		_, err = f.svc.UpdateComment(ctx, caller, created.ID, dto.UpdateCommentRequest{Content: &edited})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		assert.ErrorIs(t, f.svc.DeleteComment(ctx, caller, created.ID), apperror.ErrForbidden)
	}
	assert.ErrorIs(t, f.svc.DeleteComment(ctx, rbac.Identity{}, created.ID), apperror.ErrUnauthorized)

	updated, err := f.svc.UpdateComment(ctx, f.bob, created.ID, dto.UpdateCommentRequest{Content: &edited})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)

	unchanged, err := f.svc.UpdateComment(ctx, f.bob, created.ID, dto.UpdateCommentRequest{})
	require.NoError(t, err)
	assert.Equal(t, "final", unchanged.Content)

	require.NoError(t, f.svc.DeleteComment(ctx, f.bob, created.ID))
	_, err = f.svc.GetComment(ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListCommentsFilter(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, err := f.svc.CreateComment(ctx, f.bob, dto.CommentRequest{News: f.news.ID, Content: "one"})
	require.NoError(t, err)
	_, err = f.svc.CreateComment(ctx, f.carol, dto.CommentRequest{News: f.news.ID, Content: "two"})
	require.NoError(t, err)

	all, err := f.svc.ListComments(ctx, dto.CommentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "one", all[0].Content)

	none, err := f.svc.ListComments(ctx, dto.CommentFilter{News: f.news.ID + 1})
	require.NoError(t, err)
	assert.Empty(t, none)
}
