package pos

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/pkg/common"
)

// newTestDB opens a throwaway sqlite database with the same pragmas the
// application uses, so transactional behavior matches production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_txlock=immediate",
		filepath.Join(t.TempDir(), "pos_test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, sku, price string, stock int) *domain.Product {
	t.Helper()
	now := time.Now()
	product := &domain.Product{
		ID:            common.UUIDint64(),
		Name:          name,
		Sku:           sku,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func stockOf(t *testing.T, db *gorm.DB, id int64) int {
	t.Helper()
	var product domain.Product
	require.NoError(t, db.First(&product, id).Error)
	return product.StockQuantity
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func backdateSale(t *testing.T, db *gorm.DB, saleID int64, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&domain.Sale{}).Where("id = ?", saleID).
		UpdateColumn("created_at", at).Error)
}
