package service

import (
	"fmt"

	"tooltrack/internal/model"
)

// Notifier receives events after the transaction that produced them commits.
type Notifier interface {
	Publish(event interface{})
}

type nopNotifier struct{}

func (nopNotifier) Publish(interface{}) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// publishStock announces a committed ledger entry.
func publishStock(n Notifier, entry *model.LedgerEntry) {
	n.Publish(map[string]interface{}{
		"type":   "stock_update",
		"action": entry.Action,
		"product": map[string]interface{}{
			"id":          entry.ProductID,
			"code":        entry.ProductCode,
			"description": entry.ProductDescription,
			"old_stock":   entry.StockBefore,
			"new_stock":   entry.StockAfter,
		},
		"delta":   entry.Delta,
		"actor":   entry.Actor,
		"message": fmt.Sprintf("%s: %s %+d (%s)", entry.Actor, entry.ProductDescription, entry.Delta, entry.Action),
	})
}
