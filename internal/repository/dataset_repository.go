// internal/repository/dataset_repository.go
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/repository/postgres"
)

type datasetRepository struct {
	db *postgres.DB
}

func NewDatasetRepository(db *postgres.DB) DatasetRepository {
	return &datasetRepository{db: db}
}

func (r *datasetRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT sku, name,
		       COALESCE(department, '') AS department,
		       COALESCE(category, '') AS category,
		       COALESCE(vendor, '') AS vendor,
		       COALESCE(cost, 0) AS cost,
		       COALESCE(price, 0) AS price
		FROM products
		ORDER BY sku
	`

	var products []domain.Product
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}
	return products, nil
}

func (r *datasetRepository) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	query := `
		SELECT id, date, sku,
		       COALESCE(qty_sold, 0) AS qty_sold,
		       COALESCE(discount, 0) AS discount,
		       COALESCE(property, '') AS property,
		       unit_price_sold, unit_cost_sold,
		       COALESCE(review_status, '') AS review_status
		FROM transactions
		ORDER BY date, id
	`

	var transactions []domain.Transaction
	if err := r.db.SelectContext(ctx, &transactions, query); err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	return transactions, nil
}

func (r *datasetRepository) ListInventory(ctx context.Context) ([]domain.InventoryState, error) {
	query := `
		SELECT sku,
		       COALESCE(qty_on_hand, 0) AS qty_on_hand,
		       COALESCE(property, '') AS property,
		       last_counted
		FROM inventory_counts
		ORDER BY sku, property
	`

	var counts []domain.InventoryState
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("error listing inventory counts: %w", err)
	}
	return counts, nil
}

func (r *datasetRepository) GetFilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	var options domain.FilterOptions

	queries := []struct {
		dest  *[]string
		query string
	}{
		{&options.Categories, `SELECT DISTINCT category FROM products WHERE category IS NOT NULL AND category <> '' ORDER BY category`},
		{&options.Departments, `SELECT DISTINCT department FROM products WHERE department IS NOT NULL AND department <> '' ORDER BY department`},
		{&options.Vendors, `SELECT DISTINCT vendor FROM products WHERE vendor IS NOT NULL AND vendor <> '' ORDER BY vendor`},
		{&options.Properties, `SELECT DISTINCT property FROM transactions WHERE property IS NOT NULL AND property <> '' ORDER BY property`},
	}

	for _, q := range queries {
		if err := r.db.SelectContext(ctx, q.dest, q.query); err != nil {
			return domain.FilterOptions{}, fmt.Errorf("error loading filter options: %w", err)
		}
	}

	return options, nil
}

const upsertProductsQuery = `
	INSERT INTO products (sku, name, department, category, vendor, cost, price, updated_at)
	VALUES (:sku, :name, :department, :category, :vendor, :cost, :price, NOW())
	ON CONFLICT (sku) DO UPDATE SET
		name = EXCLUDED.name,
		department = EXCLUDED.department,
		category = EXCLUDED.category,
		vendor = EXCLUDED.vendor,
		cost = EXCLUDED.cost,
		price = EXCLUDED.price,
		updated_at = NOW()
`

const upsertTransactionsQuery = `
	INSERT INTO transactions (id, date, sku, qty_sold, discount, property, unit_price_sold, unit_cost_sold, review_status, updated_at)
	VALUES (:id, :date, :sku, :qty_sold, :discount, :property, :unit_price_sold, :unit_cost_sold, :review_status, NOW())
	ON CONFLICT (id) DO UPDATE SET
		date = EXCLUDED.date,
		sku = EXCLUDED.sku,
		qty_sold = EXCLUDED.qty_sold,
		discount = EXCLUDED.discount,
		property = EXCLUDED.property,
		unit_price_sold = EXCLUDED.unit_price_sold,
		unit_cost_sold = EXCLUDED.unit_cost_sold,
		review_status = EXCLUDED.review_status,
		updated_at = NOW()
`

const upsertInventoryQuery = `
	INSERT INTO inventory_counts (sku, qty_on_hand, property, last_counted, updated_at)
	VALUES (:sku, :qty_on_hand, :property, :last_counted, NOW())
	ON CONFLICT (sku, property) DO UPDATE SET
		qty_on_hand = EXCLUDED.qty_on_hand,
		last_counted = EXCLUDED.last_counted,
		updated_at = NOW()
`

func (r *datasetRepository) UpsertProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	if _, err := sqlx.NamedExecContext(ctx, r.db, upsertProductsQuery, products); err != nil {
		return fmt.Errorf("error upserting products: %w", err)
	}
	return nil
}

func (r *datasetRepository) UpsertTransactions(ctx context.Context, transactions []domain.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	if _, err := sqlx.NamedExecContext(ctx, r.db, upsertTransactionsQuery, transactions); err != nil {
		return fmt.Errorf("error upserting transactions: %w", err)
	}
	return nil
}

func (r *datasetRepository) UpsertInventory(ctx context.Context, counts []domain.InventoryState) error {
	if len(counts) == 0 {
		return nil
	}
	if _, err := sqlx.NamedExecContext(ctx, r.db, upsertInventoryQuery, counts); err != nil {
		return fmt.Errorf("error upserting inventory counts: %w", err)
	}
	return nil
}

func (r *datasetRepository) ApplySyncBatch(ctx context.Context, transactions []domain.Transaction, counts []domain.InventoryState) error {
	if len(transactions) == 0 && len(counts) == 0 {
		return nil
	}
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if len(transactions) > 0 {
			if _, err := sqlx.NamedExecContext(ctx, tx, upsertTransactionsQuery, transactions); err != nil {
				return fmt.Errorf("error upserting transactions: %w", err)
			}
		}
		if len(counts) > 0 {
			if _, err := sqlx.NamedExecContext(ctx, tx, upsertInventoryQuery, counts); err != nil {
				return fmt.Errorf("error upserting inventory counts: %w", err)
			}
		}
		return nil
	})
}

func (r *datasetRepository) UpdateTransactionReview(ctx context.Context, id string, patch ReviewPatch) error {
	if patch.Empty() {
		return nil
	}

	var sets []string
	var args []interface{}
	argCounter := 1

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argCounter))
		args = append(args, value)
		argCounter++
	}

	if patch.QtySold != nil {
		addSet("qty_sold", *patch.QtySold)
	}
	if patch.Date != nil {
		addSet("date", *patch.Date)
	}
	if patch.Discount != nil {
		addSet("discount", *patch.Discount)
	}
	if patch.Property != nil {
		addSet("property", *patch.Property)
	}
	if patch.ReviewStatus != nil {
		addSet("review_status", *patch.ReviewStatus)
	}

	query := fmt.Sprintf(
		"UPDATE transactions SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(sets, ", "), argCounter,
	)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error updating transaction %s: %w", id, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("transaction %s not found", id)
	}
	return nil
}
