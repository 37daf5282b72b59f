package service

import (
	"context"
	"errors"
	"fmt"

	"tooltrack/internal/model"
	"tooltrack/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InvoiceLine struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// InvoiceInput is a decoded supplier invoice.
type InvoiceInput struct {
	SupplierID   string        `json:"supplier_id" validate:"required"`
	SupplierName string        `json:"supplier_name"`
	Reference    string        `json:"reference"`
	Lines        []InvoiceLine `json:"lines" validate:"required,min=1"`
}

// AppliedLine is an invoice line whose quantity reached stock.
type AppliedLine struct {
	Code           string    `json:"code"`
	ProductID      uuid.UUID `json:"product_id"`
	ProductCode    string    `json:"product_code"`
	Quantity       int       `json:"quantity"`
	NewStock       int       `json:"new_stock"`
	Via            Strategy  `json:"via,omitempty"`
	ReusedMapping  bool      `json:"reused_mapping,omitempty"`
	CreatedProduct bool      `json:"created_product,omitempty"`
}

// UnresolvedLine is kept for manual resolution; it is never dropped.
type UnresolvedLine struct {
	SupplierID  string `json:"supplier_id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

type InvoiceResult struct {
	SupplierID string           `json:"supplier_id"`
	Applied    []AppliedLine    `json:"applied"`
	Unresolved []UnresolvedLine `json:"unresolved"`
	Failed     []ItemFailure    `json:"failed"`
}

type DecisionAction string

const (
	DecisionAttach DecisionAction = "attach"
	DecisionCreate DecisionAction = "create"
	DecisionSkip   DecisionAction = "skip"
)

// NewProductInput describes the product a create decision makes.
// Code defaults to the supplier code.
type NewProductInput struct {
	Code        string         `json:"code"`
	Description string         `json:"description"`
	Category    model.Category `json:"category"`
}

// MappingDecision is the operator's answer for one unresolved line.
type MappingDecision struct {
	Action      DecisionAction   `json:"action" validate:"required,oneof=attach create skip"`
	SupplierID  string           `json:"supplier_id" validate:"required"`
	Code        string           `json:"code" validate:"required"`
	Description string           `json:"description"`
	Quantity    int              `json:"quantity"`
	ProductID   *uuid.UUID       `json:"product_id,omitempty"`
	NewProduct  *NewProductInput `json:"new_product,omitempty"`
}

type MappingResult struct {
	Applied []AppliedLine `json:"applied"`
	Skipped int           `json:"skipped"`
	Failed  []ItemFailure `json:"failed"`
}

type InvoiceService interface {
	Import(ctx context.Context, in InvoiceInput) (*InvoiceResult, error)
	ResolveUnmatched(ctx context.Context, decisions []MappingDecision) (*MappingResult, error)
}

type invoiceService struct {
	db          *gorm.DB
	resolver    CodeResolver
	ledger      LedgerService
	productRepo repository.ProductRepository
	mappingRepo repository.SupplierCodeRepository
	policy      QuantityPolicy
	notifier    Notifier
	log         *zap.Logger
}

func NewInvoiceService(
	db *gorm.DB,
	resolver CodeResolver,
	ledger LedgerService,
	pRepo repository.ProductRepository,
	mRepo repository.SupplierCodeRepository,
	policy QuantityPolicy,
	n Notifier,
	log *zap.Logger,
) InvoiceService {
	return &invoiceService{
		db:          db,
		resolver:    resolver,
		ledger:      ledger,
		productRepo: pRepo,
		mappingRepo: mRepo,
		policy:      policy,
		notifier:    orNop(n),
		log:         log,
	}
}

func invoiceNote(in InvoiceInput, code string, units int, original decimal.Decimal, rounded bool, policy QuantityPolicy) string {
	note := fmt.Sprintf("Invoice from %s: +%d (code %s)", in.SupplierID, units, code)
	if in.Reference != "" {
		note = fmt.Sprintf("Invoice %s from %s: +%d (code %s)", in.Reference, in.SupplierID, units, code)
	}
	if rounded {
		note += fmt.Sprintf(", invoiced %s rounded %s", original.String(), policy)
	}
	return note
}

func (s *invoiceService) Import(ctx context.Context, in InvoiceInput) (*InvoiceResult, error) {
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	supplier := NormalizeCode(in.SupplierID)
	if supplier == "" {
		return nil, invalidf("supplier id is empty")
	}
	in.SupplierID = supplier
	actor := ActorFrom(ctx).Label()

	result := &InvoiceResult{
		SupplierID: supplier,
		Applied:    []AppliedLine{},
		Unresolved: []UnresolvedLine{},
		Failed:     []ItemFailure{},
	}

	for _, line := range in.Lines {
		code := NormalizeCode(line.Code)
		if code == "" {
			result.Failed = append(result.Failed, ItemFailure{Code: line.Code, Reason: "line has no code"})
			continue
		}
		units, rounded, err := s.policy.Convert(line.Quantity)
		if err != nil {
			result.Failed = append(result.Failed, failure(code, err))
			continue
		}

		var (
			applied *AppliedLine
			entry   *model.LedgerEntry
		)
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res, err := s.resolver.ResolveTx(tx, code, &supplier, actor)
			if err != nil || !res.Resolved() {
				return err
			}
			entry, err = s.ledger.ApplyDeltaTx(tx, actor, DeltaRequest{
				ProductID:   res.Product.ID,
				Delta:       units,
				Action:      model.ActionInvoiceImport,
				Description: invoiceNote(in, code, units, line.Quantity, rounded, s.policy),
			})
			if err != nil {
				return err
			}
			applied = &AppliedLine{
				Code:        code,
				ProductID:   res.Product.ID,
				ProductCode: res.Product.Code,
				Quantity:    units,
				NewStock:    entry.StockAfter,
				Via:         res.Via,
			}
			return nil
		})

		switch {
		case err != nil:
			s.log.Warn("invoice line failed", zap.String("supplier", supplier), zap.String("code", code), zap.Error(err))
			result.Failed = append(result.Failed, failure(code, err))
		case applied == nil:
			result.Unresolved = append(result.Unresolved, UnresolvedLine{
				SupplierID:  supplier,
				Code:        code,
				Description: line.Description,
				Quantity:    units,
			})
		default:
			publishStock(s.notifier, entry)
			result.Applied = append(result.Applied, *applied)
		}
	}

	s.log.Info("invoice imported",
		zap.String("supplier", supplier),
		zap.String("reference", in.Reference),
		zap.Int("applied", len(result.Applied)),
		zap.Int("unresolved", len(result.Unresolved)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *invoiceService) ResolveUnmatched(ctx context.Context, decisions []MappingDecision) (*MappingResult, error) {
	if len(decisions) == 0 {
		return nil, invalidf("no decisions submitted")
	}
	actor := ActorFrom(ctx).Label()
	result := &MappingResult{Applied: []AppliedLine{}, Failed: []ItemFailure{}}

	for _, d := range decisions {
		if d.Action == DecisionSkip {
			result.Skipped++
			continue
		}
		applied, entries, err := s.applyDecision(ctx, actor, d)
		if err != nil {
			s.log.Warn("mapping decision failed", zap.String("code", d.Code), zap.String("action", string(d.Action)), zap.Error(err))
			result.Failed = append(result.Failed, failure(NormalizeCode(d.Code), err))
			continue
		}
		for _, e := range entries {
			publishStock(s.notifier, e)
		}
		result.Applied = append(result.Applied, *applied)
	}
	return result, nil
}

// applyDecision handles one decision in its own transaction. A mapping
// created for the pair since the invoice was read takes precedence over the
// decision, so the pair is never mapped twice.
func (s *invoiceService) applyDecision(ctx context.Context, actor string, d MappingDecision) (*AppliedLine, []*model.LedgerEntry, error) {
	if err := validateStruct(&d); err != nil {
		return nil, nil, err
	}
	supplier, code := NormalizeCode(d.SupplierID), NormalizeCode(d.Code)
	if supplier == "" || code == "" {
		return nil, nil, invalidf("supplier id and code are required")
	}
	if d.Quantity <= 0 {
		return nil, nil, invalidf("quantity must be positive")
	}

	var (
		applied = &AppliedLine{Code: code, Quantity: d.Quantity, Via: StrategySupplierMapping}
		entries []*model.LedgerEntry
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.mappingRepo.LockPairTx(tx, supplier, code); err != nil {
			return err
		}

		var product *model.Product
		existing, err := s.mappingRepo.FindTx(tx, supplier, code)
		switch {
		case err == nil:
			if product, err = s.productRepo.FindByIDTx(tx, existing.ProductID); err != nil {
				return notFound(err, "mapped product")
			}
			applied.ReusedMapping = true
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		case d.Action == DecisionAttach:
			if d.ProductID == nil {
				return invalidf("attach needs a product id")
			}
			if product, err = s.productRepo.FindByIDTx(tx, *d.ProductID); err != nil {
				return notFound(err, "product")
			}
		case d.Action == DecisionCreate:
			created, entry, err := s.createFromDecision(tx, actor, supplier, code, d)
			if err != nil {
				return err
			}
			product = created
			entries = append(entries, entry)
			applied.CreatedProduct = true
		}

		entry, err := s.ledger.ApplyDeltaTx(tx, actor, DeltaRequest{
			ProductID:   product.ID,
			Delta:       d.Quantity,
			Action:      model.ActionInvoiceImport,
			Description: fmt.Sprintf("Invoice from %s: +%d (code %s, manual match)", supplier, d.Quantity, code),
		})
		if err != nil {
			return err
		}
		entries = append(entries, entry)

		if !applied.ReusedMapping {
			mapping, _, err := s.mappingRepo.EnsureTx(tx, &model.SupplierCode{
				BaseModel:  model.BaseModel{CreatedBy: actor, UpdatedBy: actor},
				SupplierID: supplier,
				Code:       code,
				ProductID:  product.ID,
			})
			if err != nil {
				return err
			}
			if mapping.ProductID != product.ID {
				return ErrDuplicateMapping
			}
		}

		applied.ProductID = product.ID
		applied.ProductCode = product.Code
		applied.NewStock = entry.StockAfter
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return applied, entries, nil
}

func (s *invoiceService) createFromDecision(tx *gorm.DB, actor, supplier, code string, d MappingDecision) (*model.Product, *model.LedgerEntry, error) {
	in := NewProductInput{}
	if d.NewProduct != nil {
		in = *d.NewProduct
	}
	primary := NormalizeCode(in.Code)
	if primary == "" {
		primary = code
	}
	description := in.Description
	if description == "" {
		description = d.Description
	}
	if description == "" {
		return nil, nil, invalidf("new product needs a description")
	}
	category := in.Category
	if category == "" {
		category = model.InferCategory(description)
	}
	if !category.Valid() {
		return nil, nil, invalidf("unknown category %q", category)
	}

	if _, err := s.productRepo.FindByCodeTx(tx, primary); err == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateCode, primary)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	shortCode := code
	product := &model.Product{
		BaseModel:   model.BaseModel{CreatedBy: actor, UpdatedBy: actor},
		Code:        primary,
		ShortCode:   &shortCode,
		Description: description,
		Category:    category,
	}
	if err := s.productRepo.CreateTx(tx, product); err != nil {
		return nil, nil, err
	}
	entry, err := s.ledger.RecordTx(tx, actor, product, model.ActionProductCreated,
		fmt.Sprintf("Created from invoice line of %s", supplier), 0)
	if err != nil {
		return nil, nil, err
	}
	return product, entry, nil
}
