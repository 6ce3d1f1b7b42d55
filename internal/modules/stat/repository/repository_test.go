package repository

import (
	"context"
	"testing"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalsOnEmptyDatabase(t *testing.T) {
	db := testutil.NewDB(t)

	stats, err := NewStatRepository(db).Totals(context.Background())
	require.NoError(t, err)
	assert.Zero(t, *stats)
}

func TestTotals(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.CreateCategory(t, db, "Sport")
	first := testutil.CreateNews(t, db, "Final", cat.ID)
	second := testutil.CreateNews(t, db, "Semi final", cat.ID)
	bob := testutil.CreateUser(t, db, "bob", "password1", "reader")

	require.NoError(t, db.Model(first).UpdateColumn("views", 7).Error)
	require.NoError(t, db.Model(second).UpdateColumn("views", 3).Error)
	require.NoError(t, db.Omit("User").Create(&entity.Comment{Content: "what a game", UserID: bob.ID, NewsID: first.ID}).Error)
	require.NoError(t, db.Omit("User").Create(&entity.NewsLike{UserID: bob.ID, NewsID: first.ID}).Error)

	stats, err := NewStatRepository(db).Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalNews)
	assert.Equal(t, int64(1), stats.TotalComments)
	assert.Equal(t, int64(1), stats.TotalLikes)
	assert.Equal(t, int64(10), stats.TotalViews)
}
