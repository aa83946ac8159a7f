package pos

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/toughpos/internal/domain"
)

func TestCreateProductAndDuplicateSku(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:          "Monitor",
		Sku:           "MON-001",
		Price:         decimal.RequireFromString("349.99"),
		StockQuantity: 10,
	})
	require.NoError(t, err)
	assert.NotZero(t, product.ID)
	assert.Equal(t, "MON-001", product.Sku)

	_, err = svc.CreateProduct(ctx, CreateProductInput{
		Name:          "Other Monitor",
		Sku:           "MON-001",
		Price:         decimal.RequireFromString("99.00"),
		StockQuantity: 5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, int64(1), countRows(t, db, &domain.Product{}))
}

func TestCreateProductValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"short name", CreateProductInput{Name: "X", Sku: "SKU-001", Price: decimal.NewFromInt(1)}},
		{"short sku", CreateProductInput{Name: "Valid Name", Sku: "AB", Price: decimal.NewFromInt(1)}},
		{"negative price", CreateProductInput{Name: "Valid Name", Sku: "SKU-002", Price: decimal.NewFromInt(-1)}},
		{"negative stock", CreateProductInput{Name: "Valid Name", Sku: "SKU-003", Price: decimal.NewFromInt(1), StockQuantity: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tc.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
	assert.Zero(t, countRows(t, db, &domain.Product{}))
}

func TestUpdateProductSkuConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db)
	ctx := context.Background()

	first := seedProduct(t, db, "First", "SKU-FIRST", "1.00", 1)
	second := seedProduct(t, db, "Second", "SKU-SECOND", "2.00", 2)

	taken := "SKU-FIRST"
	_, err := svc.UpdateProduct(ctx, second.ID, UpdateProductInput{Sku: &taken})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))

	// re-submitting a product's own SKU is not a conflict
	own := "SKU-FIRST"
	updated, err := svc.UpdateProduct(ctx, first.ID, UpdateProductInput{Sku: &own})
	require.NoError(t, err)
	assert.Equal(t, "SKU-FIRST", updated.Sku)

	newName := "Renamed"
	updated, err = svc.UpdateProduct(ctx, second.ID, UpdateProductInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "SKU-SECOND", updated.Sku)
}

func TestDeleteProductWithSalesRejected(t *testing.T) {
	db := newTestDB(t)
	products := NewProductService(db)
	sales := NewSaleService(db)
	ctx := context.Background()

	free := seedProduct(t, db, "Unsold", "SKU-UNSOLD", "1.00", 5)
	sold := seedProduct(t, db, "Sold", "SKU-SOLD", "2.00", 5)

	_, err := sales.CreateSale(ctx, []SaleItemInput{{ProductID: sold.ID, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, products.DeleteProduct(ctx, free.ID))

	err = products.DeleteProduct(ctx, sold.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Contains(t, err.Error(), "cannot delete product with existing sales")

	// the product survives the rejected delete
	got, err := products.GetProduct(ctx, sold.ID)
	require.NoError(t, err)
	assert.Equal(t, "SKU-SOLD", got.Sku)
}

func TestDeleteProductNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db)

	err := svc.DeleteProduct(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Stocked", "SKU-STOCK", "1.00", 10)

	updated, err := svc.UpdateStock(ctx, product.ID, -4)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.StockQuantity)

	updated, err = svc.UpdateStock(ctx, product.ID, 14)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.StockQuantity)

	_, err = svc.UpdateStock(ctx, product.ID, -21)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, 20, stockOf(t, db, product.ID))

	_, err = svc.UpdateStock(ctx, 999, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetProductBySKU(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db)
	ctx := context.Background()

	seedProduct(t, db, "By SKU", "SKU-LOOKUP", "5.00", 3)

	product, err := svc.GetProductBySKU(ctx, "SKU-LOOKUP")
	require.NoError(t, err)
	assert.Equal(t, "By SKU", product.Name)

	_, err = svc.GetProductBySKU(ctx, "SKU-MISSING")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListProductsSearch(t *testing.T) {
	db := newTestDB(t)
	svc := NewProductService(db)
	ctx := context.Background()

	seedProduct(t, db, "Red Keyboard", "KB-RED", "10.00", 5)
	seedProduct(t, db, "Blue Keyboard", "KB-BLUE", "10.00", 5)
	seedProduct(t, db, "Mouse", "MS-001", "5.00", 5)

	page, err := svc.ListProducts(ctx, 1, 10, "keyboard")
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(2), page.Meta.Total)

	page, err = svc.ListProducts(ctx, 1, 10, "ms-0")
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, "Mouse", page.Data[0].Name)

	page, err = svc.ListProducts(ctx, 1, 2, "")
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Meta.Total)
	assert.True(t, page.Meta.HasNextPage)
}
