package service

import (
	"context"
	"errors"
	"fmt"

	"tooltrack/internal/model"
	"tooltrack/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductInput holds the catalog fields of a product. Stock is not one of
// them: after creation it only moves through ledger deltas.
type ProductInput struct {
	Code        string         `json:"code" validate:"required,max=100"`
	ShortCode   string         `json:"short_code" validate:"max=100"`
	Description string         `json:"description" validate:"required,max=255"`
	Category    model.Category `json:"category" validate:"omitempty,oneof=tool consumable"`
}

type CreateProductRequest struct {
	ProductInput
	Stock int `json:"stock" validate:"gte=0"`
}

// SheetRow is one decoded spreadsheet line. Codes holds the listed codes:
// the first is the short code, the rest are stored as supplier codes.
// Stock is the cell text as written; ImportRows parses it.
type SheetRow struct {
	Row         int      `json:"row"`
	Code        string   `json:"code"`
	Codes       []string `json:"codes"`
	Description string   `json:"description"`
	Stock       string   `json:"stock"`
	Category    string   `json:"category"`
}

type ImportResult struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Failed  []ItemFailure `json:"failed"`
}

type BulkDeleteResult struct {
	Deleted int           `json:"deleted"`
	Failed  []ItemFailure `json:"failed"`
}

type InventoryService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	BulkDelete(ctx context.Context, filter repository.ProductFilter) (*BulkDeleteResult, error)
	ToggleCategory(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetProducts(ctx context.Context, filter repository.ProductFilter, search string) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ImportRows(ctx context.Context, rows []SheetRow) (*ImportResult, error)
}

type inventoryService struct {
	db          *gorm.DB
	ledger      LedgerService
	productRepo repository.ProductRepository
	mappingRepo repository.SupplierCodeRepository
	notifier    Notifier
	log         *zap.Logger
}

func NewInventoryService(
	db *gorm.DB,
	ledger LedgerService,
	pRepo repository.ProductRepository,
	mRepo repository.SupplierCodeRepository,
	n Notifier,
	log *zap.Logger,
) InventoryService {
	return &inventoryService{
		db:          db,
		ledger:      ledger,
		productRepo: pRepo,
		mappingRepo: mRepo,
		notifier:    orNop(n),
		log:         log,
	}
}

func optionalCode(s string) *string {
	if n := NormalizeCode(s); n != "" {
		return &n
	}
	return nil
}

func ensureCodeFree(tx *gorm.DB, repo repository.ProductRepository, code string, self uuid.UUID) error {
	existing, err := repo.FindByCodeTx(tx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return fmt.Errorf("%w: %s", ErrDuplicateCode, code)
	}
	return nil
}

func (s *inventoryService) CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error) {
	// 1. Validasi Struct Dasar
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	code := NormalizeCode(req.Code)
	if code == "" {
		return nil, invalidf("code is empty")
	}
	category := req.Category
	if category == "" {
		category = model.InferCategory(req.Description)
	}
	actor := ActorFrom(ctx).Label()

	product := &model.Product{
		BaseModel:   model.BaseModel{CreatedBy: actor, UpdatedBy: actor},
		Code:        code,
		ShortCode:   optionalCode(req.ShortCode),
		Description: req.Description,
		Stock:       req.Stock,
		Category:    category,
	}

	var entry *model.LedgerEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 2. Cek Duplikasi Code
		if err := ensureCodeFree(tx, s.productRepo, code, uuid.Nil); err != nil {
			return err
		}
		// 3. Simpan + history
		if err := s.productRepo.CreateTx(tx, product); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", ErrDuplicateCode, code)
			}
			return err
		}
		var err error
		entry, err = s.ledger.RecordTx(tx, actor, product, model.ActionProductCreated,
			fmt.Sprintf("Created with stock %d", product.Stock), 0)
		return err
	})
	if err != nil {
		return nil, err
	}

	publishStock(s.notifier, entry)
	return product, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req ProductInput) (*model.Product, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	code := NormalizeCode(req.Code)
	if code == "" {
		return nil, invalidf("code is empty")
	}
	actor := ActorFrom(ctx).Label()

	var (
		updated *model.Product
		entry   *model.LedgerEntry
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.LockByIDTx(tx, id)
		if err != nil {
			return notFound(err, "product")
		}
		if code != existing.Code {
			if err := ensureCodeFree(tx, s.productRepo, code, existing.ID); err != nil {
				return err
			}
		}

		oldShort := existing.ShortCode
		newShort := optionalCode(req.ShortCode)

		existing.Code = code
		existing.ShortCode = newShort
		existing.Description = req.Description
		if req.Category != "" {
			existing.Category = req.Category
		}
		existing.UpdatedBy = actor
		if err := s.productRepo.UpdateTx(tx, existing); err != nil {
			return err
		}

		// Supplier codes that repeated the old short code follow the rename.
		if oldShort != nil && newShort != nil && *oldShort != *newShort {
			if err := s.mappingRepo.RenameForProductTx(tx, existing.ID, *oldShort, *newShort); err != nil {
				return err
			}
		}

		entry, err = s.ledger.RecordTx(tx, actor, existing, model.ActionProductEdited,
			fmt.Sprintf("Edited: %s", existing.Description), existing.Stock)
		if err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishStock(s.notifier, entry)
	return updated, nil
}

// DeleteProduct hard-deletes the product and its supplier codes. Ledger,
// loan and damage rows stay and keep their snapshots.
func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	actor := ActorFrom(ctx).Label()
	var entry *model.LedgerEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.LockByIDTx(tx, id)
		if err != nil {
			return notFound(err, "product")
		}

		before := product.Stock
		product.Stock = 0
		entry, err = s.ledger.RecordTx(tx, actor, product, model.ActionProductDeleted,
			fmt.Sprintf("Deleted with stock %d", before), before)
		if err != nil {
			return err
		}
		if err := s.mappingRepo.DeleteByProductTx(tx, product.ID); err != nil {
			return err
		}
		return s.productRepo.DeleteTx(tx, product.ID)
	})
	if err != nil {
		return err
	}
	publishStock(s.notifier, entry)
	return nil
}

func (s *inventoryService) BulkDelete(ctx context.Context, filter repository.ProductFilter) (*BulkDeleteResult, error) {
	if !filter.Valid() {
		return nil, invalidf("unknown filter %q", filter)
	}
	ids, err := s.productRepo.FindIDs(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &BulkDeleteResult{Failed: []ItemFailure{}}
	for _, id := range ids {
		if err := s.DeleteProduct(ctx, id); err != nil {
			result.Failed = append(result.Failed, failure(id.String(), err))
			continue
		}
		result.Deleted++
	}
	s.log.Info("bulk delete", zap.String("filter", string(filter)), zap.Int("deleted", result.Deleted), zap.Int("failed", len(result.Failed)))
	return result, nil
}

func (s *inventoryService) ToggleCategory(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	actor := ActorFrom(ctx).Label()
	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.productRepo.LockByIDTx(tx, id)
		if err != nil {
			return notFound(err, "product")
		}
		p.Category = p.Category.Other()
		p.UpdatedBy = actor
		if err := s.productRepo.UpdateTx(tx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	return product, err
}

func (s *inventoryService) GetProducts(ctx context.Context, filter repository.ProductFilter, search string) ([]model.Product, error) {
	if filter == "" {
		filter = repository.FilterAll
	}
	if !filter.Valid() {
		return nil, invalidf("unknown filter %q", filter)
	}
	return s.productRepo.FindAll(ctx, filter, NormalizeCode(search))
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return p, nil
}

// ImportRows loads spreadsheet rows, one transaction per row.
func (s *inventoryService) ImportRows(ctx context.Context, rows []SheetRow) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, invalidf("spreadsheet has no rows")
	}
	actor := ActorFrom(ctx).Label()
	result := &ImportResult{Failed: []ItemFailure{}}

	for _, row := range rows {
		code := NormalizeCode(row.Code)
		if code == "" {
			result.Failed = append(result.Failed, ItemFailure{Code: fmt.Sprintf("row %d", row.Row), Reason: "missing code"})
			continue
		}
		stock, err := ParseSheetStock(row.Stock)
		if err != nil {
			result.Failed = append(result.Failed, ItemFailure{
				Code:   code,
				Reason: fmt.Sprintf("row %d: %v", row.Row, err),
			})
			continue
		}

		var (
			created   bool
			entries   []*model.LedgerEntry
			conflicts []ItemFailure
		)
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			created, entries, conflicts, err = s.importRowTx(tx, actor, code, stock, row)
			return err
		})
		if err != nil {
			s.log.Warn("spreadsheet row failed", zap.Int("row", row.Row), zap.String("code", code), zap.Error(err))
			result.Failed = append(result.Failed, failure(code, err))
			continue
		}
		for _, e := range entries {
			publishStock(s.notifier, e)
		}
		result.Failed = append(result.Failed, conflicts...)
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

// importRowTx upserts the row's product by primary code and adds its stock.
// Extra codes already mapped to another product are left alone and
// reported back as conflicts.
func (s *inventoryService) importRowTx(tx *gorm.DB, actor, code string, stock int, row SheetRow) (bool, []*model.LedgerEntry, []ItemFailure, error) {
	codes := normalizeAll(row.Codes)
	var (
		entries   []*model.LedgerEntry
		conflicts []ItemFailure
	)

	product, err := s.productRepo.FindByCodeTx(tx, code)
	created := errors.Is(err, gorm.ErrRecordNotFound)
	switch {
	case created:
		if row.Description == "" {
			return false, nil, nil, invalidf("new product needs a description")
		}
		category := model.Category(row.Category)
		if !category.Valid() {
			category = model.InferCategory(row.Description)
		}
		product = &model.Product{
			BaseModel:   model.BaseModel{CreatedBy: actor, UpdatedBy: actor},
			Code:        code,
			Description: row.Description,
			Category:    category,
		}
		if len(codes) > 0 {
			product.ShortCode = &codes[0]
		}
		if err := s.productRepo.CreateTx(tx, product); err != nil {
			return false, nil, nil, err
		}
		entry, err := s.ledger.RecordTx(tx, actor, product, model.ActionProductCreated, "Created from spreadsheet", 0)
		if err != nil {
			return false, nil, nil, err
		}
		entries = append(entries, entry)
	case err != nil:
		return false, nil, nil, err
	default:
		changed := false
		if row.Description != "" && row.Description != product.Description {
			product.Description = row.Description
			changed = true
		}
		if product.ShortCode == nil && len(codes) > 0 {
			product.ShortCode = &codes[0]
			changed = true
		}
		if changed {
			product.UpdatedBy = actor
			if err := s.productRepo.UpdateTx(tx, product); err != nil {
				return false, nil, nil, err
			}
		}
	}

	if stock > 0 {
		entry, err := s.ledger.ApplyDeltaTx(tx, actor, DeltaRequest{
			ProductID:   product.ID,
			Delta:       stock,
			Action:      model.ActionSheetImport,
			Description: fmt.Sprintf("Spreadsheet row %d: +%d", row.Row, stock),
		})
		if err != nil {
			return false, nil, nil, err
		}
		entries = append(entries, entry)
	}

	if len(codes) > 1 {
		for _, extra := range codes[1:] {
			mapping, _, err := s.mappingRepo.EnsureTx(tx, &model.SupplierCode{
				BaseModel:  model.BaseModel{CreatedBy: actor, UpdatedBy: actor},
				SupplierID: model.SpreadsheetSupplier,
				Code:       extra,
				ProductID:  product.ID,
			})
			if err != nil {
				return false, nil, nil, err
			}
			if mapping.ProductID == product.ID {
				continue
			}
			owner := mapping.ProductID.String()
			if other, err := s.productRepo.FindByIDTx(tx, mapping.ProductID); err == nil {
				owner = other.Code
			}
			s.log.Warn("spreadsheet code already mapped elsewhere",
				zap.String("code", extra),
				zap.String("product_code", product.Code),
				zap.String("mapped_to", owner),
			)
			conflicts = append(conflicts, ItemFailure{
				Code:   extra,
				Reason: fmt.Sprintf("row %d: already mapped to %s, not added to %s", row.Row, owner, product.Code),
			})
		}
	}
	return created, entries, conflicts, nil
}
