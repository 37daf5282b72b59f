package service

import (
	"context"
	"fmt"

	"tooltrack/internal/model"
	"tooltrack/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DamageRequest struct {
	ProductID    uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity     int       `json:"quantity" validate:"required,gt=0"`
	Reason       string    `json:"reason" validate:"required,max=1000"`
	SpecificCode string    `json:"specific_code" validate:"max=100"`
}

type DamageService interface {
	Report(ctx context.Context, req DamageRequest) (*model.DamageLog, error)
	List(ctx context.Context, limit, offset int) ([]model.DamageLog, int64, error)
}

type damageService struct {
	db         *gorm.DB
	ledger     LedgerService
	damageRepo repository.DamageRepository
	notifier   Notifier
	log        *zap.Logger
}

func NewDamageService(db *gorm.DB, ledger LedgerService, dRepo repository.DamageRepository, n Notifier, log *zap.Logger) DamageService {
	return &damageService{db: db, ledger: ledger, damageRepo: dRepo, notifier: orNop(n), log: log}
}

// Report removes damaged units from stock and files a DamageLog, atomically.
func (s *damageService) Report(ctx context.Context, req DamageRequest) (*model.DamageLog, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	actor := ActorFrom(ctx).Label()
	specific := NormalizeCode(req.SpecificCode)

	var (
		damage *model.DamageLog
		entry  *model.LedgerEntry
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		desc := fmt.Sprintf("Damaged: %s", req.Reason)
		if specific != "" {
			desc = fmt.Sprintf("Damaged (%s): %s", specific, req.Reason)
		}
		var err error
		entry, err = s.ledger.ApplyDeltaTx(tx, actor, DeltaRequest{
			ProductID:   req.ProductID,
			Delta:       -req.Quantity,
			Action:      model.ActionDamageReport,
			Description: desc,
		})
		if err != nil {
			return err
		}

		damage = &model.DamageLog{
			ProductID:          req.ProductID,
			ProductCode:        entry.ProductCode,
			ProductDescription: entry.ProductDescription,
			Quantity:           req.Quantity,
			Reason:             req.Reason,
			SpecificCode:       specific,
			ReportedBy:         actor,
		}
		return s.damageRepo.CreateTx(tx, damage)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("damage reported", zap.String("product_code", damage.ProductCode), zap.Int("quantity", damage.Quantity), zap.String("actor", actor))
	publishStock(s.notifier, entry)
	return damage, nil
}

func (s *damageService) List(ctx context.Context, limit, offset int) ([]model.DamageLog, int64, error) {
	return s.damageRepo.List(ctx, limit, offset)
}
