package repository

import (
	"context"
	"errors"

	"tooltrack/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll(ctx context.Context) ([]model.Role, error)
	FindByCode(ctx context.Context, code string) (*model.Role, error)
	SeedDefaults(ctx context.Context) error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Preload("Privileges").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Preload("Privileges").Where("code = ?", code).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// SeedDefaults creates the default roles and (re)attaches their privileges.
// Privileges must be seeded first.
func (r *roleRepo) SeedDefaults(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	for _, defaultRole := range model.DefaultRoles {
		role := defaultRole
		var existing model.Role
		err := db.Where("code = ?", role.Code).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Create(&role).Error; err != nil {
				return err
			}
			existing = role
		case err != nil:
			return err
		}

		var privileges []model.Privilege
		q := db
		if role.Code != model.RoleMasterAdmin {
			q = q.Where("code IN ?", model.StorekeeperPrivileges)
		}
		if err := q.Find(&privileges).Error; err != nil {
			return err
		}
		if err := db.Model(&existing).Association("Privileges").Replace(privileges); err != nil {
			return err
		}
	}
	return nil
}
