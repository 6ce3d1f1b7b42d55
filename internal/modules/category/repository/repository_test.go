package repository_test

import (
	"context"
	"testing"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/internal/modules/category/repository"
	"anoa.com/newsportal/internal/testutil"
	"anoa.com/newsportal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepositoryCRUD(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewCategoryRepository(db)

	sports := &entity.Category{Name: "Sports", Color: "#00FF00"}
	require.NoError(t, repo.Create(ctx, sports))
	require.NoError(t, repo.Create(ctx, &entity.Category{Name: "Economy", Color: entity.DefaultCategoryColor}))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Economy", all[0].Name)

	sports.Description = "Matches and results"
	require.NoError(t, repo.Update(ctx, sports))

	found, err := repo.FindByID(ctx, sports.ID)
	require.NoError(t, err)
	assert.Equal(t, "Matches and results", found.Description)

	require.NoError(t, repo.Delete(ctx, sports.ID))
	_, err = repo.FindByID(ctx, sports.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, sports.ID), apperror.ErrNotFound)
}

func TestDeletingCategoryCascadesToNews(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewCategoryRepository(db)

	cat := testutil.CreateCategory(t, db, "Politics")
	testutil.CreateNews(t, db, "Election results", cat.ID)

	require.NoError(t, repo.Delete(ctx, cat.ID))

	var count int64
	require.NoError(t, db.Model(&entity.News{}).Count(&count).Error)
	assert.Zero(t, count)
}
