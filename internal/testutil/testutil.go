// Package testutil wires throwaway infrastructure for package tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/pkg/database"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory SQLite database with foreign keys on and
// the full schema migrated. A single connection keeps the memory database
// alive, so code under test must use the tx handle inside transactions.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.Config(false))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(entity.Models()...))
	return db
}

// NewRedis starts a miniredis server bound to the test lifetime.
func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

// CreateUser inserts a user with the given groups and a role field that
// already matches them.
func CreateUser(t testing.TB, db *gorm.DB, username, password string, role string) *entity.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)

	var group entity.Group
	require.NoError(t, db.Where(entity.Group{Name: role}).FirstOrCreate(&group).Error)
	require.NoError(t, db.Omit("User", "Group").Create(&entity.UserGroup{UserID: user.ID, GroupID: group.ID}).Error)
	return user
}

func CreateCategory(t testing.TB, db *gorm.DB, name string) *entity.Category {
	t.Helper()

	category := &entity.Category{Name: name, Color: entity.DefaultCategoryColor}
	require.NoError(t, db.Create(category).Error)
	return category
}

func CreateNews(t testing.TB, db *gorm.DB, title string, categoryID uint) *entity.News {
	t.Helper()

	news := &entity.News{Title: title, Content: "<p>body</p>", CategoryID: categoryID, Author: "desk"}
	require.NoError(t, db.Omit("Category").Create(news).Error)
	return news
}

// MemoryStorage is an in-process MediaStorage.
type MemoryStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Objects: map[string][]byte{}}
}

func (s *MemoryStorage) Upload(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://media.test/%s/%s-%s", folder, uuid.NewString()[:8], fileName)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[url] = buf.Bytes()
	return url, nil
}

func (s *MemoryStorage) Delete(_ context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, fileURL)
	s.Deleted = append(s.Deleted, fileURL)
	return nil
}
