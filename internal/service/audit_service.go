package service

import (
	"context"
	"fmt"
	"regexp"

	"tooltrack/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var lineSplit = regexp.MustCompile(`\r\n|\n|\r`)

// AuditItem is one distinct scanned code with its scan count.
type AuditItem struct {
	Code     string         `json:"code" validate:"required"`
	Count    int            `json:"count"`
	Resolved bool           `json:"resolved"`
	Product  *model.Product `json:"product,omitempty"`
	Via      Strategy       `json:"via,omitempty"`
}

type AuditPreview struct {
	Items      []AuditItem `json:"items"`
	TotalScans int         `json:"total_scans"`
	Unresolved int         `json:"unresolved"`
}

type AuditResult struct {
	Updated int           `json:"updated"`
	Skipped int           `json:"skipped"`
	Failed  []ItemFailure `json:"failed"`
}

type AuditService interface {
	// Preview never mutates state.
	Preview(ctx context.Context, rawText string) (*AuditPreview, error)
	// Confirm is not idempotent: each call adds the counts again.
	Confirm(ctx context.Context, items []AuditItem) (*AuditResult, error)
}

type auditService struct {
	db       *gorm.DB
	resolver CodeResolver
	ledger   LedgerService
	notifier Notifier
	log      *zap.Logger
}

func NewAuditService(db *gorm.DB, resolver CodeResolver, ledger LedgerService, n Notifier, log *zap.Logger) AuditService {
	return &auditService{db: db, resolver: resolver, ledger: ledger, notifier: orNop(n), log: log}
}

// countScans normalizes each line and counts codes in first-seen order.
func countScans(rawText string) ([]string, map[string]int, int) {
	var order []string
	counts := make(map[string]int)
	total := 0
	for _, line := range lineSplit.Split(rawText, -1) {
		code := NormalizeCode(line)
		if code == "" {
			continue
		}
		if counts[code] == 0 {
			order = append(order, code)
		}
		counts[code]++
		total++
	}
	return order, counts, total
}

func (s *auditService) Preview(ctx context.Context, rawText string) (*AuditPreview, error) {
	order, counts, total := countScans(rawText)
	if total == 0 {
		return nil, invalidf("no codes scanned")
	}

	preview := &AuditPreview{Items: make([]AuditItem, 0, len(order)), TotalScans: total}
	for _, code := range order {
		res, err := s.resolver.Resolve(ctx, code, nil)
		if err != nil {
			return nil, err
		}
		item := AuditItem{Code: code, Count: counts[code], Resolved: res.Resolved(), Product: res.Product, Via: res.Via}
		if !item.Resolved {
			preview.Unresolved++
		}
		preview.Items = append(preview.Items, item)
	}
	return preview, nil
}

func (s *auditService) Confirm(ctx context.Context, items []AuditItem) (*AuditResult, error) {
	if len(items) == 0 {
		return nil, invalidf("no items to confirm")
	}
	actor := ActorFrom(ctx).Label()
	result := &AuditResult{Failed: []ItemFailure{}}

	for _, item := range items {
		code := NormalizeCode(item.Code)
		if !item.Resolved || item.Count <= 0 || code == "" {
			result.Skipped++
			continue
		}

		// One transaction per item: a failure never undoes earlier items.
		var entry *model.LedgerEntry
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res, err := s.resolver.ResolveTx(tx, code, nil, actor)
			if err != nil {
				return err
			}
			if !res.Resolved() {
				return fmt.Errorf("%w: code no longer resolves", ErrNotFound)
			}
			entry, err = s.ledger.ApplyDeltaTx(tx, actor, DeltaRequest{
				ProductID:   res.Product.ID,
				Delta:       item.Count,
				Action:      model.ActionBulkAudit,
				Description: fmt.Sprintf("Bulk scan: +%d (code %s)", item.Count, code),
			})
			return err
		})
		if err != nil {
			s.log.Warn("audit item failed", zap.String("code", code), zap.Error(err))
			result.Failed = append(result.Failed, failure(code, err))
			continue
		}
		publishStock(s.notifier, entry)
		result.Updated++
	}

	s.log.Info("bulk audit confirmed",
		zap.String("actor", actor),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}
