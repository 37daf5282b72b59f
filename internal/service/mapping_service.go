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

type CreateMappingRequest struct {
	SupplierID string    `json:"supplier_id" validate:"required"`
	Code       string    `json:"code" validate:"required"`
	ProductID  uuid.UUID `json:"product_id" validate:"uuid_required"`
}

// MappingService manages supplier codes explicitly. Reassign is the only way
// to point an existing (supplier, code) pair at a different product.
type MappingService interface {
	Create(ctx context.Context, req CreateMappingRequest) (*model.SupplierCode, error)
	UpdateCode(ctx context.Context, id uuid.UUID, newCode string) (*model.SupplierCode, error)
	Reassign(ctx context.Context, id, productID uuid.UUID) (*model.SupplierCode, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.SupplierCode, error)
}

type mappingService struct {
	db          *gorm.DB
	mappingRepo repository.SupplierCodeRepository
	productRepo repository.ProductRepository
	log         *zap.Logger
}

func NewMappingService(db *gorm.DB, mRepo repository.SupplierCodeRepository, pRepo repository.ProductRepository, log *zap.Logger) MappingService {
	return &mappingService{db: db, mappingRepo: mRepo, productRepo: pRepo, log: log}
}

// translateDup turns a unique-index violation into ErrDuplicateMapping.
func translateDup(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateMapping
	}
	return err
}

func (s *mappingService) Create(ctx context.Context, req CreateMappingRequest) (*model.SupplierCode, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	supplier, code := NormalizeCode(req.SupplierID), NormalizeCode(req.Code)
	if supplier == "" || code == "" {
		return nil, invalidf("supplier id and code are required")
	}
	actor := ActorFrom(ctx).Label()

	var mapping *model.SupplierCode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.mappingRepo.LockPairTx(tx, supplier, code); err != nil {
			return err
		}
		if _, err := s.productRepo.FindByIDTx(tx, req.ProductID); err != nil {
			return notFound(err, "product")
		}

		got, _, err := s.mappingRepo.EnsureTx(tx, &model.SupplierCode{
			BaseModel:  model.BaseModel{CreatedBy: actor, UpdatedBy: actor},
			SupplierID: supplier,
			Code:       code,
			ProductID:  req.ProductID,
		})
		if err != nil {
			return err
		}
		if got.ProductID != req.ProductID {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateMapping, supplier, code)
		}
		mapping = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapping, nil
}

func (s *mappingService) UpdateCode(ctx context.Context, id uuid.UUID, newCode string) (*model.SupplierCode, error) {
	code := NormalizeCode(newCode)
	if code == "" {
		return nil, invalidf("code is required")
	}
	actor := ActorFrom(ctx).Label()

	var mapping *model.SupplierCode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.mappingRepo.LockByIDTx(tx, id)
		if err != nil {
			return notFound(err, "supplier code")
		}
		mapping = m
		if m.Code == code {
			return nil
		}
		if err := s.mappingRepo.LockPairTx(tx, m.SupplierID, code); err != nil {
			return err
		}
		if _, err := s.mappingRepo.FindTx(tx, m.SupplierID, code); err == nil {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateMapping, m.SupplierID, code)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		m.Code = code
		m.UpdatedBy = actor
		return translateDup(s.mappingRepo.UpdateTx(tx, m))
	})
	if err != nil {
		return nil, err
	}
	return mapping, nil
}

func (s *mappingService) Reassign(ctx context.Context, id, productID uuid.UUID) (*model.SupplierCode, error) {
	actor := ActorFrom(ctx).Label()
	var mapping *model.SupplierCode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.mappingRepo.LockByIDTx(tx, id)
		if err != nil {
			return notFound(err, "supplier code")
		}
		if _, err := s.productRepo.FindByIDTx(tx, productID); err != nil {
			return notFound(err, "product")
		}
		from := m.ProductID
		m.ProductID = productID
		m.UpdatedBy = actor
		if err := s.mappingRepo.UpdateTx(tx, m); err != nil {
			return err
		}
		s.log.Info("supplier code reassigned",
			zap.String("supplier", m.SupplierID),
			zap.String("code", m.Code),
			zap.String("from", from.String()),
			zap.String("to", productID.String()),
			zap.String("actor", actor),
		)
		mapping = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapping, nil
}

func (s *mappingService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return notFound(s.mappingRepo.DeleteTx(tx, id), "supplier code")
	})
}

func (s *mappingService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.SupplierCode, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, notFound(err, "product")
	}
	return s.mappingRepo.ListByProduct(ctx, productID)
}
