package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tooltrack/internal/model"
	"tooltrack/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CheckoutRequest identifies the product by id or by any of its codes.
type CheckoutRequest struct {
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	ProductCode string     `json:"product_code"`
	EmployeeID  uuid.UUID  `json:"employee_id"`
}

type LoanService interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*model.Loan, error)
	Return(ctx context.Context, loanID uuid.UUID) (*model.Loan, error)
	List(ctx context.Context, filter repository.LoanFilter) ([]model.Loan, error)
}

type loanService struct {
	db           *gorm.DB
	resolver     CodeResolver
	ledger       LedgerService
	productRepo  repository.ProductRepository
	employeeRepo repository.EmployeeRepository
	loanRepo     repository.LoanRepository
	notifier     Notifier
	log          *zap.Logger
}

func NewLoanService(
	db *gorm.DB,
	resolver CodeResolver,
	ledger LedgerService,
	pRepo repository.ProductRepository,
	eRepo repository.EmployeeRepository,
	lRepo repository.LoanRepository,
	n Notifier,
	log *zap.Logger,
) LoanService {
	return &loanService{
		db:           db,
		resolver:     resolver,
		ledger:       ledger,
		productRepo:  pRepo,
		employeeRepo: eRepo,
		loanRepo:     lRepo,
		notifier:     orNop(n),
		log:          log,
	}
}

func (s *loanService) Checkout(ctx context.Context, req CheckoutRequest) (*model.Loan, error) {
	if req.ProductID == nil && NormalizeCode(req.ProductCode) == "" {
		return nil, invalidf("product id or code is required")
	}
	if req.EmployeeID == uuid.Nil {
		return nil, fmt.Errorf("%w: employee id is required", ErrUnknownHolder)
	}
	actor := ActorFrom(ctx).Label()

	var (
		loan  *model.Loan
		entry *model.LedgerEntry
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Find the product
		var productID uuid.UUID
		if req.ProductID != nil {
			productID = *req.ProductID
		} else {
			res, err := s.resolver.ResolveTx(tx, req.ProductCode, nil, actor)
			if err != nil {
				return err
			}
			if !res.Resolved() {
				return fmt.Errorf("product %s: %w", res.Code, ErrNotFound)
			}
			productID = res.Product.ID
		}
		product, err := s.productRepo.LockByIDTx(tx, productID)
		if err != nil {
			return notFound(err, "product")
		}

		// 2. Holder must exist
		employee, err := s.employeeRepo.FindByIDTx(tx, req.EmployeeID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownHolder, req.EmployeeID)
		}
		if err != nil {
			return err
		}

		// 3. Take one unit
		action, status := model.ActionLoanCheckout, model.LoanActive
		if product.Category == model.CategoryConsumable {
			action, status = model.ActionConsumption, model.LoanConsumed
		}
		entry, err = s.ledger.ApplyDeltaTx(tx, actor, DeltaRequest{
			ProductID:   product.ID,
			Delta:       -1,
			Action:      action,
			Description: fmt.Sprintf("Handed to %s", employee.Name),
		})
		if err != nil {
			return err
		}

		// 4. Record the loan with snapshots
		now := time.Now()
		loan = &model.Loan{
			BaseModel:          model.BaseModel{CreatedBy: actor, UpdatedBy: actor},
			ProductID:          product.ID,
			EmployeeID:         employee.ID,
			Status:             status,
			Quantity:           1,
			CheckedOutAt:       now,
			ProductCode:        product.Code,
			ProductDescription: product.Description,
			HolderName:         employee.Name,
		}
		if status == model.LoanConsumed {
			loan.ReturnedAt = &now
		}
		return s.loanRepo.CreateTx(tx, loan)
	})
	if err != nil {
		return nil, err
	}

	publishStock(s.notifier, entry)
	return loan, nil
}

func (s *loanService) Return(ctx context.Context, loanID uuid.UUID) (*model.Loan, error) {
	actor := ActorFrom(ctx).Label()

	var (
		loan  *model.Loan
		entry *model.LedgerEntry
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the loan so two returns cannot both see it active.
		l, err := s.loanRepo.LockByIDTx(tx, loanID)
		if err != nil {
			return notFound(err, "loan")
		}
		if l.Status != model.LoanActive {
			return fmt.Errorf("%w: loan is %s", ErrInvalidState, l.Status)
		}

		// The product may have been deleted while on loan; the loan still closes.
		_, err = s.productRepo.FindByIDTx(tx, l.ProductID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			s.log.Info("loan returned for deleted product", zap.String("loan_id", l.ID.String()), zap.String("product_code", l.ProductCode))
		case err != nil:
			return err
		default:
			entry, err = s.ledger.ApplyDeltaTx(tx, actor, DeltaRequest{
				ProductID:   l.ProductID,
				Delta:       1,
				Action:      model.ActionLoanReturn,
				Description: fmt.Sprintf("Returned by %s", l.HolderName),
			})
			if err != nil {
				return err
			}
		}

		now := time.Now()
		l.Status = model.LoanReturned
		l.ReturnedAt = &now
		l.UpdatedBy = actor
		if err := s.loanRepo.CloseTx(tx, l); err != nil {
			return err
		}
		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entry != nil {
		publishStock(s.notifier, entry)
	}
	return loan, nil
}

func (s *loanService) List(ctx context.Context, filter repository.LoanFilter) ([]model.Loan, error) {
	return s.loanRepo.List(ctx, filter)
}
