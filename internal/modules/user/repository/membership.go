package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/internal/rbac"
	"anoa.com/newsportal/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type membershipStore struct {
	db *gorm.DB
}

// NewMembershipStore backs the role reconciler with Postgres. The user row
// is locked FOR UPDATE so concurrent reconciliations of one user queue up.
func NewMembershipStore(db *gorm.DB) rbac.MembershipStore {
	return &membershipStore{db: db}
}

func (s *membershipStore) WithUserLock(ctx context.Context, userID uuid.UUID, fn func(tx rbac.MembershipTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user entity.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user not found", apperror.ErrNotFound)
			}
			return err
		}
		return fn(&membershipTx{tx: tx, user: &user})
	})
}

type membershipTx struct {
	tx   *gorm.DB
	user *entity.User
}

func (m *membershipTx) Groups() ([]string, error) {
	return groupNames(m.tx, m.user.ID)
}

func (m *membershipTx) StoredRole() (string, error) {
	return m.user.Role, nil
}

func (m *membershipTx) AddGroup(name string) error {
	var group entity.Group
	if err := m.tx.Where(entity.Group{Name: name}).FirstOrCreate(&group).Error; err != nil {
		return err
	}
	return m.tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.UserGroup{UserID: m.user.ID, GroupID: group.ID}).Error
}

func (m *membershipTx) RemoveGroup(name string) error {
	var groups []entity.Group
	if err := m.tx.Where("name = ?", name).Limit(1).Find(&groups).Error; err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}
	return m.tx.Where("user_id = ? AND group_id = ?", m.user.ID, groups[0].ID).Delete(&entity.UserGroup{}).Error
}

func (m *membershipTx) ClearGroups() error {
	return m.tx.Where("user_id = ?", m.user.ID).Delete(&entity.UserGroup{}).Error
}

func (m *membershipTx) SetRole(role rbac.Role) error {
	if err := m.tx.Model(&entity.User{}).Where("id = ?", m.user.ID).Update("role", string(role)).Error; err != nil {
		return err
	}
	m.user.Role = string(role)
	return nil
}
