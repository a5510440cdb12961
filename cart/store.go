// Package cart keeps the per-session shopping cart. Items live only as
// long as the session does; checkout drains them into order rows.
package cart

import (
	"context"

	"shop-svc/models"
)

type Store interface {
	// Add merges the item into an existing line with the same
	// (product, size, color) key, or appends a new line.
	Add(ctx context.Context, sessionID string, item models.CartItem) error
	// Update replaces the line's quantity. A quantity of zero or less
	// removes the line.
	Update(ctx context.Context, sessionID string, key models.CartKey, quantity int) error
	Remove(ctx context.Context, sessionID string, key models.CartKey) error
	Clear(ctx context.Context, sessionID string) error
	Items(ctx context.Context, sessionID string) ([]models.CartItem, error)
	// Count returns the total quantity across all lines.
	Count(ctx context.Context, sessionID string) (int, error)
}

func mergeAdd(items []models.CartItem, item models.CartItem) []models.CartItem {
	for i := range items {
		if items[i].Key().Matches(item.Key()) {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}

func setQuantity(items []models.CartItem, key models.CartKey, quantity int) []models.CartItem {
	for i := range items {
		if items[i].Key().Matches(key) {
			if quantity <= 0 {
				return append(items[:i], items[i+1:]...)
			}
			items[i].Quantity = quantity
			return items
		}
	}
	return items
}

func removeItem(items []models.CartItem, key models.CartKey) []models.CartItem {
	for i := range items {
		if items[i].Key().Matches(key) {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

func totalQuantity(items []models.CartItem) int {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total
}
