package service

import (
	"context"
	"errors"

	"tooltrack/internal/model"
	"tooltrack/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Strategy names the namespace a code was resolved through.
type Strategy string

const (
	StrategySupplierMapping Strategy = "supplier-mapping"
	StrategyShortCode       Strategy = "short-code"
	StrategyPrimaryCode     Strategy = "primary-code"
)

// Resolution is the outcome of resolving one code. A nil Product means the
// code is unresolved, which is an outcome and not an error.
type Resolution struct {
	Code           string         `json:"code"`
	Product        *model.Product `json:"product,omitempty"`
	Via            Strategy       `json:"via,omitempty"`
	MappingCreated bool           `json:"mapping_created,omitempty"`
}

func (r Resolution) Resolved() bool { return r.Product != nil }

type CodeResolver interface {
	// Resolve runs in its own transaction when supplierID is set, since a
	// supplier-scoped hit may persist a mapping.
	Resolve(ctx context.Context, code string, supplierID *string) (Resolution, error)
	ResolveTx(tx *gorm.DB, code string, supplierID *string, actor string) (Resolution, error)
}

type lookup struct {
	name   Strategy
	scoped bool
	find   func(tx *gorm.DB, supplierID, code string) (*model.Product, error)
}

type codeResolver struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	mappingRepo repository.SupplierCodeRepository
	log         *zap.Logger
	lookups     []lookup
}

func NewCodeResolver(db *gorm.DB, pRepo repository.ProductRepository, mRepo repository.SupplierCodeRepository, log *zap.Logger) CodeResolver {
	r := &codeResolver{db: db, productRepo: pRepo, mappingRepo: mRepo, log: log}
	// First hit wins.
	r.lookups = []lookup{
		{name: StrategySupplierMapping, scoped: true, find: r.bySupplierMapping},
		{name: StrategyShortCode, find: func(tx *gorm.DB, _, code string) (*model.Product, error) {
			return pRepo.FindByShortCodeTx(tx, code)
		}},
		{name: StrategyPrimaryCode, find: func(tx *gorm.DB, _, code string) (*model.Product, error) {
			return pRepo.FindByCodeTx(tx, code)
		}},
	}
	return r
}

func (r *codeResolver) bySupplierMapping(tx *gorm.DB, supplierID, code string) (*model.Product, error) {
	mapping, err := r.mappingRepo.FindTx(tx, supplierID, code)
	if err != nil {
		return nil, err
	}
	return r.productRepo.FindByIDTx(tx, mapping.ProductID)
}

func (r *codeResolver) Resolve(ctx context.Context, code string, supplierID *string) (Resolution, error) {
	actor := ActorFrom(ctx).Label()
	if supplierID == nil {
		return r.ResolveTx(r.db.WithContext(ctx), code, nil, actor)
	}
	var res Resolution
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = r.ResolveTx(tx, code, supplierID, actor)
		return err
	})
	return res, err
}

func (r *codeResolver) ResolveTx(tx *gorm.DB, code string, supplierID *string, actor string) (Resolution, error) {
	norm := NormalizeCode(code)
	res := Resolution{Code: norm}
	if norm == "" {
		return res, invalidf("code is empty")
	}

	supplier := ""
	if supplierID != nil {
		supplier = NormalizeCode(*supplierID)
		if supplier == "" {
			return res, invalidf("supplier id is empty")
		}
	}

	for _, l := range r.lookups {
		if l.scoped && supplier == "" {
			continue
		}
		product, err := l.find(tx, supplier, norm)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return res, err
		}
		res.Product = product
		res.Via = l.name
		break
	}

	if !res.Resolved() || supplier == "" || res.Via == StrategySupplierMapping {
		return res, nil
	}

	// Remember the supplier's code so the next invoice resolves directly.
	mapping, created, err := r.mappingRepo.EnsureTx(tx, &model.SupplierCode{
		BaseModel:  model.BaseModel{CreatedBy: actor, UpdatedBy: actor},
		SupplierID: supplier,
		Code:       norm,
		ProductID:  res.Product.ID,
	})
	if err != nil {
		return res, err
	}
	res.MappingCreated = created
	if !created && mapping.ProductID != res.Product.ID {
		// A concurrent writer mapped the pair first; its mapping is authoritative.
		product, err := r.productRepo.FindByIDTx(tx, mapping.ProductID)
		if err != nil {
			return res, notFound(err, "mapped product")
		}
		res.Product = product
		res.Via = StrategySupplierMapping
	}
	if created {
		r.log.Info("supplier code mapped",
			zap.String("supplier", supplier),
			zap.String("code", norm),
			zap.String("product_code", res.Product.Code),
			zap.String("via", string(res.Via)),
		)
	}
	return res, nil
}
