package repository_test

import (
	"context"
	"testing"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/internal/modules/like/repository"
	"anoa.com/newsportal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func TestToggleIsItsOwnInverse(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewLikeRepository(db)

	bob := testutil.CreateUser(t, db, "bob", "password1", "reader")
	news := testutil.CreateNews(t, db, "Budget approved", testutil.CreateCategory(t, db, "Economy").ID)

	liked, err := repo.Toggle(ctx, bob.ID, news.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	count, err := repo.Count(ctx, news.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	liked, err = repo.Toggle(ctx, bob.ID, news.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	exists, err := repo.Exists(ctx, bob.ID, news.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	var rows int64
	require.NoError(t, db.Model(&entity.NewsLike{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestUniqueIndexPreventsDuplicateLikes(t *testing.T) {
	db := testutil.NewDB(t)
	bob := testutil.CreateUser(t, db, "bob", "password1", "reader")
	news := testutil.CreateNews(t, db, "Storm warning", testutil.CreateCategory(t, db, "Weather").ID)

	require.NoError(t, db.Omit("User").Create(&entity.NewsLike{UserID: bob.ID, NewsID: news.ID}).Error)
	err := db.Omit("User").Create(&entity.NewsLike{UserID: bob.ID, NewsID: news.ID}).Error
	assert.Error(t, err)

	// a toggle after a racing insert still leaves a single consistent state
	liked, err := repository.NewLikeRepository(db).Toggle(context.Background(), bob.ID, news.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestToggleCollapsesWhenConcurrentLikeWinsInsert(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewLikeRepository(db)

	bob := testutil.CreateUser(t, db, "bob", "password1", "reader")
	news := testutil.CreateNews(t, db, "Harbour reopens", testutil.CreateCategory(t, db, "Local").ID)

	// A rival request commits the same like between Toggle's delete and
	// its insert.
	fired := false
	const name = "test:rival_like"
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "news_likes" {
			return
		}
		fired = true
		rival := &entity.NewsLike{UserID: bob.ID, NewsID: news.ID}
		if err := tx.Session(&gorm.Session{NewDB: true}).Omit(clause.Associations).Create(rival).Error; err != nil {
			_ = tx.AddError(err)
		}
	}))
	t.Cleanup(func() { _ = db.Callback().Create().Remove(name) })

	liked, err := repo.Toggle(ctx, bob.ID, news.ID)
	require.NoError(t, err)
	require.True(t, fired)
	assert.False(t, liked)

	var rows int64
	require.NoError(t, db.Model(&entity.NewsLike{}).Count(&rows).Error)
	assert.Zero(t, rows)
}
