package repository

import (
	"context"

	"tooltrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee *model.Employee) error
	FindAll(ctx context.Context) ([]model.Employee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Employee, error)
	Update(ctx context.Context, employee *model.Employee) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type employeeRepo struct {
	db *gorm.DB
}

func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db}
}

func (r *employeeRepo) Create(ctx context.Context, employee *model.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

func (r *employeeRepo) FindAll(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	err := r.db.WithContext(ctx).Order("name ASC").Find(&employees).Error
	return employees, err
}

func (r *employeeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *employeeRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Employee, error) {
	var employee model.Employee
	if err := tx.First(&employee, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) Update(ctx context.Context, employee *model.Employee) error {
	return r.db.WithContext(ctx).Model(&model.Employee{}).
		Where("id = ?", employee.ID).
		Updates(map[string]interface{}{
			"name":            employee.Name,
			"employee_number": employee.EmployeeNumber,
			"updated_by":      employee.UpdatedBy,
		}).Error
}

func (r *employeeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Employee{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
