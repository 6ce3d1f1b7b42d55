package category

import (
	"context"
	"testing"

	"anoa.com/newsportal/internal/modules/category/dto"
	"anoa.com/newsportal/internal/modules/category/repository"
	"anoa.com/newsportal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryServiceDefaultsAndPatch(t *testing.T) {
	svc := NewCategoryService(repository.NewCategoryRepository(testutil.NewDB(t)))
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, dto.CategoryRequest{Name: "  Tech news "})
	require.NoError(t, err)
	assert.Equal(t, "#FFFFFF", created.Color)
	assert.Equal(t, "Tech news", created.Name)

	color := "#0a0b0c"
	patched, err := svc.PatchCategory(ctx, created.ID, dto.PatchCategoryRequest{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "#0A0B0C", patched.Color)
	assert.Equal(t, "Tech news", patched.Name)

	replaced, err := svc.ReplaceCategory(ctx, created.ID, dto.CategoryRequest{Name: "Technology"})
	require.NoError(t, err)
	assert.Equal(t, "Technology", replaced.Name)
	assert.Equal(t, "#FFFFFF", replaced.Color)

	got, err := svc.GetCategory(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Technology", got.Name)
}
