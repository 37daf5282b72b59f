package repository

import (
	"context"

	"tooltrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoanFilter narrows the loan listing. Zero values mean "any".
type LoanFilter struct {
	Status     model.LoanStatus
	EmployeeID *uuid.UUID
	ProductID  *uuid.UUID
}

// LoanCounts summarizes one employee's loans.
type LoanCounts struct {
	Active   int64
	Returned int64
	Total    int64
}

type LoanRepository interface {
	List(ctx context.Context, filter LoanFilter) ([]model.Loan, error)
	CountByEmployee(ctx context.Context, employeeID uuid.UUID) (*LoanCounts, error)

	CreateTx(tx *gorm.DB, loan *model.Loan) error
	LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Loan, error)
	CloseTx(tx *gorm.DB, loan *model.Loan) error
}

type loanRepo struct {
	db *gorm.DB
}

func NewLoanRepo(db *gorm.DB) LoanRepository {
	return &loanRepo{db}
}

func (r *loanRepo) List(ctx context.Context, filter LoanFilter) ([]model.Loan, error) {
	q := r.db.WithContext(ctx)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.EmployeeID != nil {
		q = q.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	var loans []model.Loan
	err := q.Order("checked_out_at DESC").Find(&loans).Error
	return loans, err
}

func (r *loanRepo) CountByEmployee(ctx context.Context, employeeID uuid.UUID) (*LoanCounts, error) {
	var counts LoanCounts
	q := r.db.WithContext(ctx).Model(&model.Loan{}).Where("employee_id = ?", employeeID)
	if err := q.Session(&gorm.Session{}).Count(&counts.Total).Error; err != nil {
		return nil, err
	}
	if err := q.Session(&gorm.Session{}).Where("status = ?", model.LoanActive).Count(&counts.Active).Error; err != nil {
		return nil, err
	}
	if err := q.Session(&gorm.Session{}).Where("status = ?", model.LoanReturned).Count(&counts.Returned).Error; err != nil {
		return nil, err
	}
	return &counts, nil
}

func (r *loanRepo) CreateTx(tx *gorm.DB, loan *model.Loan) error {
	return tx.Create(loan).Error
}

func (r *loanRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Loan, error) {
	var loan model.Loan
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&loan, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepo) CloseTx(tx *gorm.DB, loan *model.Loan) error {
	return tx.Model(&model.Loan{}).
		Where("id = ?", loan.ID).
		Updates(map[string]interface{}{
			"status":      loan.Status,
			"returned_at": loan.ReturnedAt,
			"updated_by":  loan.UpdatedBy,
		}).Error
}
