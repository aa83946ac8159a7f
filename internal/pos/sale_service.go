package pos

import (
	"context"
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/pkg/common"
	"github.com/talkincode/toughpos/pkg/metrics"
)

// SaleItemInput is one requested line of a sale.
type SaleItemInput struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// PageMeta is the paging envelope shared by list endpoints.
type PageMeta struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	Total           int64 `json:"total"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

func newPageMeta(page, limit int, total int64) PageMeta {
	return PageMeta{
		Page:            page,
		Limit:           limit,
		Total:           total,
		TotalPages:      int(math.Ceil(float64(total) / float64(limit))),
		HasNextPage:     int64(page*limit) < total,
		HasPreviousPage: page > 1,
	}
}

// SalesPage is a page of sales plus paging metadata.
type SalesPage struct {
	Data []domain.Sale `json:"data"`
	Meta PageMeta      `json:"meta"`
}

// DashboardSummary holds the headline counters of the dashboard.
type DashboardSummary struct {
	TotalSales   int64           `json:"totalSales"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TodaySales   int64           `json:"todaySales"`
	TodayRevenue decimal.Decimal `json:"todayRevenue"`
}

// TopProduct ranks a product by total quantity sold.
type TopProduct struct {
	ProductID    int64              `json:"productId"`
	QuantitySold int64              `json:"quantitySold"`
	Product      *domain.ProductRef `json:"product,omitempty"`
}

// AmountSummary is the statistical summary of sale totals.
type AmountSummary struct {
	AverageSale decimal.Decimal `json:"averageSale"`
	MedianSale  decimal.Decimal `json:"medianSale"`
}

// DashboardStats is the composite payload of the dashboard endpoint.
type DashboardStats struct {
	Summary          DashboardSummary `json:"summary"`
	LowStockProducts []domain.Product `json:"lowStockProducts"`
	TopProducts      []TopProduct     `json:"topProducts"`
	Amounts          AmountSummary    `json:"amounts"`
}

// TodayRevenue is the sale count and revenue of the current local day.
type TodayRevenue struct {
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SaleService records sales against the inventory ledger and serves the
// read-side aggregations. All mutations run inside a single transaction.
type SaleService struct {
	db *gorm.DB
}

func NewSaleService(db *gorm.DB) *SaleService {
	return &SaleService{db: db}
}

// CreateSale validates every line item against current stock, computes the
// total at validation-time prices, persists the sale with its items and
// decrements stock, all in one transaction. Stock decrements use a
// conditional update so a concurrent sale of the same product cannot drive
// stock negative; the loser aborts with ErrInsufficientStock.
func (s *SaleService) CreateSale(ctx context.Context, items []SaleItemInput) (*domain.Sale, error) {
	if len(items) == 0 {
		return nil, errors.Wrap(ErrValidation, "sale must contain at least one item")
	}

	var sale *domain.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		saleItems := make([]domain.SaleItem, 0, len(items))

		for _, in := range items {
			var product domain.Product
			if err := tx.First(&product, in.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.Wrapf(ErrNotFound, "product not found: %d", in.ProductID)
				}
				return err
			}
			if in.Quantity < 1 {
				return errors.Wrapf(ErrValidation,
					"invalid quantity for %s, quantity must be positive", product.Name)
			}
			if product.StockQuantity < in.Quantity {
				return errors.Wrapf(ErrInsufficientStock,
					"insufficient stock for %s. Available: %d, Requested: %d",
					product.Name, product.StockQuantity, in.Quantity)
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(in.Quantity))))
			saleItems = append(saleItems, domain.SaleItem{
				ID:        common.UUIDint64(),
				ProductID: product.ID,
				Quantity:  in.Quantity,
				Price:     product.Price,
				Product:   product.Ref(false),
			})
		}

		now := time.Now()
		sale = &domain.Sale{
			ID:          common.UUIDint64(),
			TotalAmount: total,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(sale).Error; err != nil {
			return err
		}
		for i := range saleItems {
			saleItems[i].SaleID = sale.ID
		}
		if err := tx.Create(&saleItems).Error; err != nil {
			return err
		}

		for _, item := range saleItems {
			res := tx.Model(&domain.Product{}).
				Where("id = ? AND stock_quantity >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// a concurrent sale consumed the stock after validation
				var current domain.Product
				_ = tx.First(&current, item.ProductID).Error
				return errors.Wrapf(ErrInsufficientStock,
					"insufficient stock for %s. Available: %d, Requested: %d",
					current.Name, current.StockQuantity, item.Quantity)
			}
		}

		sale.Items = saleItems
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			metrics.IncrCounter(metrics.SaleStockRejectedTotal, 1)
		}
		return nil, err
	}

	metrics.IncrCounter(metrics.SaleCreatedTotal, 1)
	metrics.IncrCounter(metrics.SaleAmountCentsTotal,
		sale.TotalAmount.Mul(decimal.NewFromInt(100)).IntPart())
	bus.Publish(TopicSaleCreated, sale)
	return sale, nil
}

// GetSale returns a sale with its items and product detail. A failed product
// lookup only omits the nested detail.
func (s *SaleService) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	var sale domain.Sale
	if err := s.db.WithContext(ctx).First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(ErrNotFound, "sale not found")
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Where("sale_id = ?", sale.ID).Find(&sale.Items).Error; err != nil {
		return nil, err
	}
	s.attachProducts(ctx, sale.Items)
	return &sale, nil
}

// ListSales returns a page of sales, newest first, optionally bounded by
// creation time (inclusive).
func (s *SaleService) ListSales(ctx context.Context, page, limit int, startDate, endDate *time.Time) (*SalesPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	db := s.db.WithContext(ctx).Model(&domain.Sale{})
	if startDate != nil {
		db = db.Where("created_at >= ?", *startDate)
	}
	if endDate != nil {
		db = db.Where("created_at <= ?", *endDate)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}

	var sales []domain.Sale
	if err := db.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sales).Error; err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(sales))
	for _, sale := range sales {
		ids = append(ids, sale.ID)
	}
	if len(ids) > 0 {
		var items []domain.SaleItem
		if err := s.db.WithContext(ctx).Where("sale_id IN ?", ids).Find(&items).Error; err != nil {
			return nil, err
		}
		s.attachProducts(ctx, items)
		bySale := map[int64][]domain.SaleItem{}
		for _, item := range items {
			bySale[item.SaleID] = append(bySale[item.SaleID], item)
		}
		for i := range sales {
			sales[i].Items = bySale[sales[i].ID]
		}
	}
	if sales == nil {
		sales = []domain.Sale{}
	}

	return &SalesPage{Data: sales, Meta: newPageMeta(page, limit, total)}, nil
}

// GetDashboardStats aggregates the dashboard counters, the low-stock list
// and the top sellers.
func (s *SaleService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	today := startOfToday()

	var totalSales, todaySales int64
	if err := db.Model(&domain.Sale{}).Count(&totalSales).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Sale{}).Where("created_at >= ?", today).Count(&todaySales).Error; err != nil {
		return nil, err
	}

	totalRevenue, amounts, err := s.sumRevenue(db.Model(&domain.Sale{}))
	if err != nil {
		return nil, err
	}
	todayRevenue, _, err := s.sumRevenue(db.Model(&domain.Sale{}).Where("created_at >= ?", today))
	if err != nil {
		return nil, err
	}

	var lowStock []domain.Product
	if err := db.Where("stock_quantity < ?", LowStockThreshold).
		Order("stock_quantity ASC").Limit(5).
		Find(&lowStock).Error; err != nil {
		return nil, err
	}
	if lowStock == nil {
		lowStock = []domain.Product{}
	}

	type topRow struct {
		ProductID int64
		Qty       int64
	}
	var rows []topRow
	if err := db.Model(&domain.SaleItem{}).
		Select("product_id, SUM(quantity) AS qty").
		Group("product_id").
		Order("qty DESC").
		Limit(5).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	top := make([]TopProduct, 0, len(rows))
	for _, row := range rows {
		entry := TopProduct{ProductID: row.ProductID, QuantitySold: row.Qty}
		var product domain.Product
		if err := db.First(&product, row.ProductID).Error; err == nil {
			entry.Product = product.Ref(true)
		} else {
			zap.L().Warn("top product lookup failed",
				zap.Int64("product_id", row.ProductID), zap.Error(err))
		}
		top = append(top, entry)
	}

	return &DashboardStats{
		Summary: DashboardSummary{
			TotalSales:   totalSales,
			TotalRevenue: totalRevenue,
			TodaySales:   todaySales,
			TodayRevenue: todayRevenue,
		},
		LowStockProducts: lowStock,
		TopProducts:      top,
		Amounts:          amounts,
	}, nil
}

// GetTodayRevenue returns the count and summed total of sales created in
// [startOfToday, startOfTomorrow).
func (s *SaleService) GetTodayRevenue(ctx context.Context) (*TodayRevenue, error) {
	today := startOfToday()
	tomorrow := today.AddDate(0, 0, 1)

	db := s.db.WithContext(ctx).Model(&domain.Sale{}).
		Where("created_at >= ? AND created_at < ?", today, tomorrow)

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return nil, err
	}
	revenue, _, err := s.sumRevenue(db)
	if err != nil {
		return nil, err
	}
	return &TodayRevenue{Count: count, Revenue: revenue}, nil
}

// sumRevenue sums sale totals in decimal space. Summation happens in Go so
// no backend coerces the decimal column through binary floats.
func (s *SaleService) sumRevenue(db *gorm.DB) (decimal.Decimal, AmountSummary, error) {
	var totals []decimal.Decimal
	if err := db.Pluck("total_amount", &totals).Error; err != nil {
		return decimal.Zero, AmountSummary{}, err
	}
	sum := decimal.Zero
	floats := make([]float64, 0, len(totals))
	for _, t := range totals {
		sum = sum.Add(t)
		f, _ := t.Float64()
		floats = append(floats, f)
	}
	summary := AmountSummary{AverageSale: decimal.Zero, MedianSale: decimal.Zero}
	if len(floats) > 0 {
		if mean, err := stats.Mean(floats); err == nil {
			summary.AverageSale = decimal.NewFromFloat(mean).Round(2)
		}
		if median, err := stats.Median(floats); err == nil {
			summary.MedianSale = decimal.NewFromFloat(median).Round(2)
		}
	}
	return sum, summary, nil
}

func (s *SaleService) attachProducts(ctx context.Context, items []domain.SaleItem) {
	for i := range items {
		var product domain.Product
		if err := s.db.WithContext(ctx).First(&product, items[i].ProductID).Error; err != nil {
			zap.L().Warn("sale item product lookup failed",
				zap.Int64("product_id", items[i].ProductID), zap.Error(err))
			continue
		}
		items[i].Product = product.Ref(true)
	}
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
