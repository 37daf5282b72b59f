package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tooltrack/internal/model"
	"tooltrack/internal/repository"
	"tooltrack/internal/testutil"
)

// env wires every service against one fresh database.
type env struct {
	db       *gorm.DB
	notifier *testutil.Recorder

	products  repository.ProductRepository
	mappings  repository.SupplierCodeRepository
	ledgerRep repository.LedgerRepository
	loans     repository.LoanRepository
	employees repository.EmployeeRepository
	damages   repository.DamageRepository

	resolver  CodeResolver
	ledger    LedgerService
	audit     AuditService
	invoice   InvoiceService
	mapping   MappingService
	loan      LoanService
	damage    DamageService
	inventory InventoryService
	employee  EmployeeService
}

func newEnv(t testing.TB) *env {
	return newEnvWithPolicy(t, QuantityReject)
}

func newEnvWithPolicy(t testing.TB, policy QuantityPolicy) *env {
	t.Helper()
	return newEnvOn(testutil.NewDB(t), policy)
}

// newEnvOn wires the services against an already migrated database.
func newEnvOn(db *gorm.DB, policy QuantityPolicy) *env {
	log := testutil.Logger()
	rec := &testutil.Recorder{}

	e := &env{
		db:        db,
		notifier:  rec,
		products:  repository.NewProductRepo(db, 5),
		mappings:  repository.NewSupplierCodeRepo(db),
		ledgerRep: repository.NewLedgerRepo(db),
		loans:     repository.NewLoanRepo(db),
		employees: repository.NewEmployeeRepo(db),
		damages:   repository.NewDamageRepo(db),
	}
	e.resolver = NewCodeResolver(db, e.products, e.mappings, log)
	e.ledger = NewLedgerService(db, e.products, e.ledgerRep, rec)
	e.audit = NewAuditService(db, e.resolver, e.ledger, rec, log)
	e.invoice = NewInvoiceService(db, e.resolver, e.ledger, e.products, e.mappings, policy, rec, log)
	e.mapping = NewMappingService(db, e.mappings, e.products, log)
	e.loan = NewLoanService(db, e.resolver, e.ledger, e.products, e.employees, e.loans, rec, log)
	e.damage = NewDamageService(db, e.ledger, e.damages, rec, log)
	e.inventory = NewInventoryService(db, e.ledger, e.products, e.mappings, rec, log)
	e.employee = NewEmployeeService(e.employees, e.loans)
	return e
}

func testCtx() context.Context {
	return WithActor(context.Background(), Actor{ID: "u-1", Name: "Tester"})
}

// seedProduct inserts a product directly, without history.
func (e *env) seedProduct(t testing.TB, code, short string, stock int, category model.Category) *model.Product {
	t.Helper()
	p := &model.Product{
		Code:        NormalizeCode(code),
		Description: "Item " + code,
		Stock:       stock,
		Category:    category,
	}
	if short != "" {
		s := NormalizeCode(short)
		p.ShortCode = &s
	}
	require.NoError(t, e.products.CreateTx(e.db, p))
	return p
}

func (e *env) seedEmployee(t testing.TB, name string) *model.Employee {
	t.Helper()
	emp := &model.Employee{Name: name}
	require.NoError(t, e.employees.Create(context.Background(), emp))
	return emp
}

func (e *env) stockOf(t testing.TB, id uuid.UUID) int {
	t.Helper()
	var p model.Product
	require.NoError(t, e.db.First(&p, "id = ?", id).Error)
	return p.Stock
}

func (e *env) ledgerCount(t testing.TB, productID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.LedgerEntry{}).Where("product_id = ?", productID).Count(&n).Error)
	return n
}

func (e *env) mappingCount(t testing.TB, supplier, code string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.SupplierCode{}).
		Where("supplier_id = ? AND code = ?", supplier, code).Count(&n).Error)
	return n
}

func historyFilter(productID *uuid.UUID, action string, limit int) repository.LedgerFilter {
	return repository.LedgerFilter{ProductID: productID, Action: action, Limit: limit}
}
