package pos

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/toughpos/internal/domain"
)

func TestCreateSaleComputesTotalAndDecrementsStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)
	ctx := context.Background()

	productA := seedProduct(t, db, "Widget A", "SKU-A-001", "10.00", 5)
	productB := seedProduct(t, db, "Widget B", "SKU-B-001", "5.00", 2)

	sale, err := svc.CreateSale(ctx, []SaleItemInput{
		{ProductID: productA.ID, Quantity: 2},
		{ProductID: productB.ID, Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, sale.Items, 2)

	assert.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("30.00")),
		"total = %s", sale.TotalAmount)
	assert.Equal(t, 3, stockOf(t, db, productA.ID))
	assert.Equal(t, 0, stockOf(t, db, productB.ID))

	// unit prices captured per line
	assert.True(t, sale.Items[0].Price.Equal(productA.Price))
	assert.True(t, sale.Items[1].Price.Equal(productB.Price))
	assert.Equal(t, sale.ID, sale.Items[0].SaleID)

	// B is exhausted now
	_, err = svc.CreateSale(ctx, []SaleItemInput{{ProductID: productB.ID, Quantity: 1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Contains(t, err.Error(), "Widget B")
	assert.Contains(t, err.Error(), "Available: 0")
}

func TestCreateSaleEmptyItems(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)

	sale, err := svc.CreateSale(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, sale)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Zero(t, countRows(t, db, &domain.Sale{}))
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)

	product := seedProduct(t, db, "Known", "SKU-KNOWN", "1.00", 10)

	_, err := svc.CreateSale(context.Background(), []SaleItemInput{
		{ProductID: product.ID, Quantity: 1},
		{ProductID: 424242, Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "424242")

	// nothing was written
	assert.Equal(t, 10, stockOf(t, db, product.ID))
	assert.Zero(t, countRows(t, db, &domain.Sale{}))
	assert.Zero(t, countRows(t, db, &domain.SaleItem{}))
}

func TestCreateSaleNonPositiveQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)

	product := seedProduct(t, db, "Gadget", "SKU-GADGET", "2.50", 10)

	for _, qty := range []int{0, -3} {
		_, err := svc.CreateSale(context.Background(), []SaleItemInput{
			{ProductID: product.ID, Quantity: qty},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Contains(t, err.Error(), "Gadget")
	}
	assert.Equal(t, 10, stockOf(t, db, product.ID))
	assert.Zero(t, countRows(t, db, &domain.Sale{}))
}

func TestCreateSaleInsufficientStockRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)

	productA := seedProduct(t, db, "Ample", "SKU-AMPLE", "3.00", 100)
	productB := seedProduct(t, db, "Scarce", "SKU-SCARCE", "9.00", 1)

	_, err := svc.CreateSale(context.Background(), []SaleItemInput{
		{ProductID: productA.ID, Quantity: 5},
		{ProductID: productB.ID, Quantity: 2},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Contains(t, err.Error(), "Scarce")
	assert.Contains(t, err.Error(), "Available: 1, Requested: 2")

	assert.Equal(t, 100, stockOf(t, db, productA.ID))
	assert.Equal(t, 1, stockOf(t, db, productB.ID))
	assert.Zero(t, countRows(t, db, &domain.Sale{}))
	assert.Zero(t, countRows(t, db, &domain.SaleItem{}))
}

// A duplicated line item passes per-line validation (each line sees the full
// stock) but must fail at the conditional decrement and roll the whole sale
// back.
func TestCreateSaleCommitTimeStockGuard(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)

	product := seedProduct(t, db, "Limited", "SKU-LIMITED", "4.00", 5)

	_, err := svc.CreateSale(context.Background(), []SaleItemInput{
		{ProductID: product.ID, Quantity: 3},
		{ProductID: product.ID, Quantity: 3},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	assert.Equal(t, 5, stockOf(t, db, product.ID))
	assert.Zero(t, countRows(t, db, &domain.Sale{}))
	assert.Zero(t, countRows(t, db, &domain.SaleItem{}))
}

func TestCreateSaleConcurrentStockContention(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)

	const stock = 5
	product := seedProduct(t, db, "Contended", "SKU-CONT", "7.00", stock)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateSale(context.Background(), []SaleItemInput{
				{ProductID: product.ID, Quantity: stock},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, stockFailures int
	for err := range results {
		if err == nil {
			successes++
		} else if errors.Is(err, ErrInsufficientStock) {
			stockFailures++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one sale must win")
	assert.Equal(t, 1, stockFailures, "the loser must see insufficient stock")
	assert.Equal(t, 0, stockOf(t, db, product.ID))
	assert.Equal(t, int64(1), countRows(t, db, &domain.Sale{}))
}

func TestCreateSaleCapturesPriceAtSaleTime(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Repriced", "SKU-REPRICE", "20.00", 10)

	sale, err := svc.CreateSale(ctx, []SaleItemInput{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)

	// reprice after the sale
	require.NoError(t, db.Model(&domain.Product{}).Where("id = ?", product.ID).
		UpdateColumn("price", decimal.RequireFromString("99.99")).Error)

	got, err := svc.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("20.00")))
}

func TestGetSaleNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)

	_, err := svc.GetSale(context.Background(), 12345)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetSaleIncludesProductDetail(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Detailed", "SKU-DETAIL", "12.00", 4)
	sale, err := svc.CreateSale(ctx, []SaleItemInput{{ProductID: product.ID, Quantity: 2}})
	require.NoError(t, err)

	got, err := svc.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, product.ID, got.Items[0].Product.ID)
	assert.Equal(t, "SKU-DETAIL", got.Items[0].Product.Sku)
	assert.Equal(t, "Detailed", got.Items[0].Product.Name)
}

func TestListSalesPaginationAndOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Bulk", "SKU-BULK", "1.00", 100)
	var ids []int64
	for i := 0; i < 5; i++ {
		sale, err := svc.CreateSale(ctx, []SaleItemInput{{ProductID: product.ID, Quantity: 1}})
		require.NoError(t, err)
		// spread creation times one hour apart, oldest first
		backdateSale(t, db, sale.ID, time.Now().Add(-time.Duration(5-i)*time.Hour))
		ids = append(ids, sale.ID)
	}

	page1, err := svc.ListSales(ctx, 1, 2, nil, nil)
	require.NoError(t, err)
	assert.Len(t, page1.Data, 2)
	assert.Equal(t, int64(5), page1.Meta.Total)
	assert.Equal(t, 3, page1.Meta.TotalPages)
	assert.True(t, page1.Meta.HasNextPage)
	assert.False(t, page1.Meta.HasPreviousPage)
	// newest first
	assert.Equal(t, ids[4], page1.Data[0].ID)
	assert.Equal(t, ids[3], page1.Data[1].ID)

	page3, err := svc.ListSales(ctx, 3, 2, nil, nil)
	require.NoError(t, err)
	assert.Len(t, page3.Data, 1)
	assert.False(t, page3.Meta.HasNextPage)
	assert.True(t, page3.Meta.HasPreviousPage)
}

func TestListSalesDateFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Dated", "SKU-DATED", "2.00", 100)

	old, err := svc.CreateSale(ctx, []SaleItemInput{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)
	backdateSale(t, db, old.ID, time.Now().AddDate(0, 0, -10))

	recent, err := svc.CreateSale(ctx, []SaleItemInput{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)

	since := time.Now().AddDate(0, 0, -1)
	page, err := svc.ListSales(ctx, 1, 10, &since, nil)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, recent.ID, page.Data[0].ID)

	until := time.Now().AddDate(0, 0, -5)
	page, err = svc.ListSales(ctx, 1, 10, nil, &until)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, old.ID, page.Data[0].ID)
}

func TestGetTodayRevenue(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Daily", "SKU-DAILY", "10.00", 100)

	s1, err := svc.CreateSale(ctx, []SaleItemInput{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)
	_ = s1
	_, err = svc.CreateSale(ctx, []SaleItemInput{{ProductID: product.ID, Quantity: 2}})
	require.NoError(t, err)

	yesterday, err := svc.CreateSale(ctx, []SaleItemInput{{ProductID: product.ID, Quantity: 5}})
	require.NoError(t, err)
	backdateSale(t, db, yesterday.ID, time.Now().AddDate(0, 0, -1))

	revenue, err := svc.GetTodayRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), revenue.Count)
	assert.True(t, revenue.Revenue.Equal(decimal.RequireFromString("30.00")),
		"revenue = %s", revenue.Revenue)
}

func TestGetDashboardStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)
	ctx := context.Background()

	seedProduct(t, db, "Plenty", "SKU-PLENTY", "1.00", 50)
	low1 := seedProduct(t, db, "Low One", "SKU-LOW1", "5.00", 2)
	low2 := seedProduct(t, db, "Low Two", "SKU-LOW2", "5.00", 7)
	seller := seedProduct(t, db, "Seller", "SKU-SELL", "10.00", 100)

	_, err := svc.CreateSale(ctx, []SaleItemInput{{ProductID: seller.ID, Quantity: 6}})
	require.NoError(t, err)
	_, err = svc.CreateSale(ctx, []SaleItemInput{{ProductID: low1.ID, Quantity: 1}})
	require.NoError(t, err)

	stats, err := svc.GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Summary.TotalSales)
	assert.True(t, stats.Summary.TotalRevenue.Equal(decimal.RequireFromString("65.00")),
		"total revenue = %s", stats.Summary.TotalRevenue)
	assert.Equal(t, int64(2), stats.Summary.TodaySales)
	assert.True(t, stats.Summary.TodayRevenue.Equal(stats.Summary.TotalRevenue))

	// low stock: ascending, below threshold, the sold-down low1 first
	require.Len(t, stats.LowStockProducts, 2)
	assert.Equal(t, low1.ID, stats.LowStockProducts[0].ID)
	assert.Equal(t, low2.ID, stats.LowStockProducts[1].ID)

	// top sellers ranked by quantity sold
	require.Len(t, stats.TopProducts, 2)
	assert.Equal(t, seller.ID, stats.TopProducts[0].ProductID)
	assert.Equal(t, int64(6), stats.TopProducts[0].QuantitySold)
	require.NotNil(t, stats.TopProducts[0].Product)
	assert.Equal(t, "SKU-SELL", stats.TopProducts[0].Product.Sku)

	// amount summary over totals 60 and 5
	assert.True(t, stats.Amounts.AverageSale.Equal(decimal.RequireFromString("32.50")),
		"average = %s", stats.Amounts.AverageSale)
	assert.True(t, stats.Amounts.MedianSale.Equal(decimal.RequireFromString("32.50")),
		"median = %s", stats.Amounts.MedianSale)
}

func TestSaleTotalsHaveNoRoundingDrift(t *testing.T) {
	db := newTestDB(t)
	svc := NewSaleService(db)
	ctx := context.Background()

	// 0.10 * 3 is a classic float trap; decimal math must stay exact
	product := seedProduct(t, db, "Penny", "SKU-PENNY", "0.10", 1000)

	sale, err := svc.CreateSale(ctx, []SaleItemInput{{ProductID: product.ID, Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, "0.30", sale.TotalAmount.StringFixed(2))

	for i := 0; i < 10; i++ {
		_, err := svc.CreateSale(ctx, []SaleItemInput{{ProductID: product.ID, Quantity: 7}})
		require.NoError(t, err)
	}
	revenue, err := svc.GetTodayRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "7.30", revenue.Revenue.StringFixed(2))
}
