package pos

import (
	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/toughpos/internal/domain"
)

const (
	TopicSaleCreated = "sale.created"

	// LowStockThreshold is the stock level below which a product is flagged
	// on the dashboard and in post-sale warnings.
	LowStockThreshold = 10
)

var bus = EventBus.New()

// Bus returns the process-wide domain event bus.
func Bus() EventBus.Bus {
	return bus
}

// RegisterLowStockWatcher subscribes a watcher that logs every product a
// sale drove below the stock threshold.
func RegisterLowStockWatcher(db *gorm.DB) error {
	return bus.SubscribeAsync(TopicSaleCreated, func(sale *domain.Sale) {
		ids := make([]int64, 0, len(sale.Items))
		for _, item := range sale.Items {
			ids = append(ids, item.ProductID)
		}
		var rows []domain.Product
		if err := db.Where("id IN ? AND stock_quantity < ?", ids, LowStockThreshold).
			Find(&rows).Error; err != nil {
			zap.L().Error("low stock watcher query failed", zap.Error(err))
			return
		}
		for _, p := range rows {
			zap.L().Warn("product stock below threshold",
				zap.Int64("product_id", p.ID),
				zap.String("sku", p.Sku),
				zap.Int("stock", p.StockQuantity))
		}
	}, false)
}
