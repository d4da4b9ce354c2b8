package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/repository"
)

type stubStore struct {
	products     []domain.Product
	transactions []domain.Transaction
	inventory    []domain.InventoryState

	failSales bool
}

func (s *stubStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubStore) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.transactions, nil
}

func (s *stubStore) ListInventory(ctx context.Context) ([]domain.InventoryState, error) {
	return s.inventory, nil
}

func (s *stubStore) GetFilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	return domain.FilterOptions{}, nil
}

func (s *stubStore) UpsertProducts(ctx context.Context, products []domain.Product) error {
	s.products = append(s.products, products...)
	return nil
}

func (s *stubStore) UpsertTransactions(ctx context.Context, transactions []domain.Transaction) error {
	if s.failSales {
		return errors.New("sales upsert rejected")
	}
	s.transactions = append(s.transactions, transactions...)
	return nil
}

func (s *stubStore) UpsertInventory(ctx context.Context, counts []domain.InventoryState) error {
	s.inventory = append(s.inventory, counts...)
	return nil
}

func (s *stubStore) ApplySyncBatch(ctx context.Context, transactions []domain.Transaction, counts []domain.InventoryState) error {
	s.transactions = append(s.transactions, transactions...)
	s.inventory = append(s.inventory, counts...)
	return nil
}

func (s *stubStore) UpdateTransactionReview(ctx context.Context, id string, patch repository.ReviewPatch) error {
	return nil
}

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func seedImportDir(t *testing.T, dir string) {
	writeFixture(t, dir, "Products.csv",
		"SKU,Name,Category,Cost,Price\nCF-001,House Blend,Coffee,5,12\n")
	writeFixture(t, dir, "Inventory Management - Sales.csv",
		"Date,SKU,Qty Sold,Discount,Property\n2026-01-10,CF-001,4,0,Main St\n")
	writeFixture(t, dir, "Inventory Count Log.csv",
		"SKU,Qty On Hand,Property,Last Counted\nCF-001,30,Main St,2026-02-01\n")
}

func TestImportDir(t *testing.T) {
	dir := t.TempDir()
	seedImportDir(t, dir)
	writeFixture(t, dir, "notes.txt", "not a csv")

	store := &stubStore{}
	imp := New(store, nil)

	result, err := imp.ImportDir(context.Background(), dir, BatchConfig{WorkerCount: 3})
	require.NoError(t, err)

	require.Len(t, result.Summaries, 3)
	assert.Empty(t, result.Failed)
	assert.Len(t, store.products, 1)
	assert.Len(t, store.transactions, 1)
	assert.Len(t, store.inventory, 1)
	assert.Equal(t, "CF-001", store.transactions[0].SKU)
}

func TestImportDirReportsFailures(t *testing.T) {
	dir := t.TempDir()
	seedImportDir(t, dir)

	store := &stubStore{failSales: true}
	imp := New(store, nil)

	result, err := imp.ImportDir(context.Background(), dir, BatchConfig{WorkerCount: 2, RetryAttempts: 1})
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0], "Sales")
	assert.Len(t, result.Summaries, 2, "catalog and inventory still import")
}

func TestImportDirEmpty(t *testing.T) {
	imp := New(&stubStore{}, nil)
	result, err := imp.ImportDir(context.Background(), t.TempDir(), BatchConfig{})
	require.NoError(t, err)
	assert.Empty(t, result.Summaries)
	assert.Empty(t, result.Failed)
}

func TestClassifyFile(t *testing.T) {
	assert.Equal(t, "products", classifyFile("Products Export.csv"))
	assert.Equal(t, "inventory", classifyFile("Inventory Count Log.csv"))
	assert.Equal(t, "inventory", classifyFile("weekly-counts.csv"))
	assert.Equal(t, "sales", classifyFile("Inventory Management - Sales.csv"))
}
