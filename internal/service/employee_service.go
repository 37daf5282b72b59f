package service

import (
	"context"
	"strings"

	"tooltrack/internal/model"
	"tooltrack/internal/repository"

	"github.com/google/uuid"
)

type EmployeeRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	EmployeeNumber string `json:"employee_number" validate:"max=50"`
}

type EmployeeService interface {
	CreateEmployee(ctx context.Context, req EmployeeRequest) (*model.Employee, error)
	UpdateEmployee(ctx context.Context, id uuid.UUID, req EmployeeRequest) (*model.Employee, error)
	DeleteEmployee(ctx context.Context, id uuid.UUID) error
	GetAllEmployees(ctx context.Context) ([]model.Employee, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*model.EmployeeProfile, error)
}

type employeeService struct {
	employeeRepo repository.EmployeeRepository
	loanRepo     repository.LoanRepository
}

func NewEmployeeService(eRepo repository.EmployeeRepository, lRepo repository.LoanRepository) EmployeeService {
	return &employeeService{employeeRepo: eRepo, loanRepo: lRepo}
}

func (s *employeeService) CreateEmployee(ctx context.Context, req EmployeeRequest) (*model.Employee, error) {
	// 1. Validate request
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	name := strings.ToUpper(strings.TrimSpace(req.Name))
	if name == "" {
		return nil, invalidf("name is empty")
	}

	// 2. Persist
	actor := ActorFrom(ctx).Label()
	employee := &model.Employee{
		BaseModel:      model.BaseModel{CreatedBy: actor, UpdatedBy: actor},
		Name:           name,
		EmployeeNumber: strings.TrimSpace(req.EmployeeNumber),
	}
	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// UpdateEmployee renames the employee. Existing loans keep the holder name
// they were written with.
func (s *employeeService) UpdateEmployee(ctx context.Context, id uuid.UUID, req EmployeeRequest) (*model.Employee, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	employee, err := s.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "employee")
	}
	employee.Name = strings.ToUpper(strings.TrimSpace(req.Name))
	employee.EmployeeNumber = strings.TrimSpace(req.EmployeeNumber)
	employee.UpdatedBy = ActorFrom(ctx).Label()
	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// DeleteEmployee removes the employee; their loans stay with the holder snapshot.
func (s *employeeService) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	return notFound(s.employeeRepo.Delete(ctx, id), "employee")
}

func (s *employeeService) GetAllEmployees(ctx context.Context) ([]model.Employee, error) {
	return s.employeeRepo.FindAll(ctx)
}

func (s *employeeService) GetProfile(ctx context.Context, id uuid.UUID) (*model.EmployeeProfile, error) {
	employee, err := s.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "employee")
	}
	loans, err := s.loanRepo.List(ctx, repository.LoanFilter{EmployeeID: &id})
	if err != nil {
		return nil, err
	}
	counts, err := s.loanRepo.CountByEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.EmployeeProfile{
		Employee: *employee,
		Loans:    loans,
		Active:   counts.Active,
		Returned: counts.Returned,
		Total:    counts.Total,
	}, nil
}
