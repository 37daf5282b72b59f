package service

import (
	"context"
	"fmt"

	"tooltrack/internal/model"
	"tooltrack/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeltaRequest asks for a signed stock change on one product.
type DeltaRequest struct {
	ProductID   uuid.UUID `json:"product_id" validate:"uuid_required"`
	Delta       int       `json:"delta" validate:"ne=0"`
	Action      string    `json:"action" validate:"required,max=50"`
	Description string    `json:"description"`
}

type LedgerService interface {
	// ApplyDelta changes stock and writes its ledger entry atomically.
	ApplyDelta(ctx context.Context, req DeltaRequest) (*model.LedgerEntry, error)
	// ApplyDeltaTx is ApplyDelta inside the caller's transaction. The caller
	// publishes the returned entry once the transaction commits.
	ApplyDeltaTx(tx *gorm.DB, actor string, req DeltaRequest) (*model.LedgerEntry, error)
	// RecordTx writes a history entry for a product change made by the caller.
	RecordTx(tx *gorm.DB, actor string, product *model.Product, action, description string, stockBefore int) (*model.LedgerEntry, error)
	History(ctx context.Context, filter repository.LedgerFilter) ([]model.LedgerEntry, int64, error)
}

type ledgerService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	ledgerRepo  repository.LedgerRepository
	notifier    Notifier
}

func NewLedgerService(db *gorm.DB, pRepo repository.ProductRepository, lRepo repository.LedgerRepository, n Notifier) LedgerService {
	return &ledgerService{
		db:          db,
		productRepo: pRepo,
		ledgerRepo:  lRepo,
		notifier:    orNop(n),
	}
}

func (s *ledgerService) ApplyDelta(ctx context.Context, req DeltaRequest) (*model.LedgerEntry, error) {
	actor := ActorFrom(ctx).Label()
	var entry *model.LedgerEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.ApplyDeltaTx(tx, actor, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	publishStock(s.notifier, entry)
	return entry, nil
}

func (s *ledgerService) ApplyDeltaTx(tx *gorm.DB, actor string, req DeltaRequest) (*model.LedgerEntry, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	// 1. Lock the row so concurrent deltas on this product serialize
	product, err := s.productRepo.LockByIDTx(tx, req.ProductID)
	if err != nil {
		return nil, notFound(err, "product")
	}

	// 2. Stock never goes negative
	newStock := product.Stock + req.Delta
	if newStock < 0 {
		return nil, fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, product.Code, product.Stock, -req.Delta)
	}

	// 3. Stock and ledger entry commit together
	if err := s.productRepo.UpdateStock(tx, product.ID, newStock, actor); err != nil {
		return nil, err
	}
	entry := newEntry(product, actor, req.Action, req.Description, product.Stock, newStock)
	if err := s.ledgerRepo.CreateTx(tx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *ledgerService) RecordTx(tx *gorm.DB, actor string, product *model.Product, action, description string, stockBefore int) (*model.LedgerEntry, error) {
	entry := newEntry(product, actor, action, description, stockBefore, product.Stock)
	if err := s.ledgerRepo.CreateTx(tx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *ledgerService) History(ctx context.Context, filter repository.LedgerFilter) ([]model.LedgerEntry, int64, error) {
	return s.ledgerRepo.List(ctx, filter)
}

func newEntry(product *model.Product, actor, action, description string, before, after int) *model.LedgerEntry {
	id := product.ID
	return &model.LedgerEntry{
		ProductID:          &id,
		ProductCode:        product.Code,
		ProductDescription: product.Description,
		Action:             action,
		Description:        description,
		Delta:              after - before,
		StockBefore:        before,
		StockAfter:         after,
		Actor:              actor,
	}
}
