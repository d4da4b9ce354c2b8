// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
)

// DatasetRepository supplies the three record sets the engines consume.
// Any backend qualifies: Postgres in production, CSV/Sheets loaders at
// import time, stubs in tests.
type DatasetRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	ListInventory(ctx context.Context) ([]domain.InventoryState, error)
	GetFilterOptions(ctx context.Context) (domain.FilterOptions, error)

	UpsertProducts(ctx context.Context, products []domain.Product) error
	UpsertTransactions(ctx context.Context, transactions []domain.Transaction) error
	UpsertInventory(ctx context.Context, counts []domain.InventoryState) error

	// ApplySyncBatch persists a POS push atomically: either the whole
	// batch lands or none of it does.
	ApplySyncBatch(ctx context.Context, transactions []domain.Transaction, counts []domain.InventoryState) error

	UpdateTransactionReview(ctx context.Context, id string, patch ReviewPatch) error
}

// GroupRepository manages user-defined custom groups.
type GroupRepository interface {
	ListGroups(ctx context.Context) ([]domain.CustomGroup, error)
	SaveGroup(ctx context.Context, group domain.CustomGroup) error
	DeleteGroup(ctx context.Context, id string) error
}

// ReviewPatch carries the editable fields of the review workflow. Nil
// fields are left untouched.
type ReviewPatch struct {
	QtySold      *int       `json:"qtySold,omitempty"`
	Date         *time.Time `json:"date,omitempty"`
	Discount     *float64   `json:"discount,omitempty"`
	Property     *string    `json:"property,omitempty"`
	ReviewStatus *string    `json:"review_status,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p *ReviewPatch) Empty() bool {
	return p.QtySold == nil && p.Date == nil && p.Discount == nil &&
		p.Property == nil && p.ReviewStatus == nil
}
