package app

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/pkg/common"
)

func (a *Application) checkSuper() {
	const superEmail = "admin@pos.com"
	const defaultPassword = "Admin@123"

	var user domain.SysUser
	err := a.gormDB.Where("email = ?", superEmail).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, herr := common.HashPassword(defaultPassword)
		if herr != nil {
			zap.L().Error("failed to hash default admin password", zap.Error(herr))
			return
		}
		if err := a.gormDB.Create(&domain.SysUser{
			ID:        common.UUIDint64(),
			Email:     superEmail,
			Password:  hashed,
			Name:      "Admin User",
			Status:    common.ENABLED,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("email", superEmail))
		}
		return
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
		return
	}

	if user.Status != common.ENABLED {
		if err := a.gormDB.Model(&domain.SysUser{}).Where("id = ?", user.ID).
			Updates(map[string]interface{}{
				"status":     common.ENABLED,
				"updated_at": time.Now(),
			}).Error; err != nil {
			zap.L().Error("failed to repair admin account", zap.Error(err))
			return
		}
		zap.L().Warn("re-enabled default admin account", zap.String("email", superEmail))
	}
}

// checkProducts seeds the catalog with sample items on first run
func (a *Application) checkProducts() {
	var count int64
	a.gormDB.Model(&domain.Product{}).Count(&count)
	if count > 0 {
		return
	}

	defaultProducts := []domain.Product{
		{Name: "Laptop Dell XPS 13", Sku: "DLXPS13-001", Price: decimal.NewFromFloat(1299.99), StockQuantity: 15},
		{Name: "iPhone 15 Pro", Sku: "IP15PRO-001", Price: decimal.NewFromFloat(999.99), StockQuantity: 25},
		{Name: "Samsung 4K Monitor", Sku: "SAM4K-27", Price: decimal.NewFromFloat(349.99), StockQuantity: 10},
		{Name: "Wireless Mouse Logitech", Sku: "LOG-WM001", Price: decimal.NewFromFloat(29.99), StockQuantity: 50},
		{Name: "Mechanical Keyboard", Sku: "MK-RGB01", Price: decimal.NewFromFloat(89.99), StockQuantity: 30},
	}

	for _, p := range defaultProducts {
		p.ID = common.UUIDint64()
		p.CreatedAt = time.Now()
		p.UpdatedAt = time.Now()
		if err := a.gormDB.Create(&p).Error; err != nil {
			zap.L().Error("failed to create sample product", zap.String("sku", p.Sku), zap.Error(err))
		} else {
			zap.L().Info("initialized sample product", zap.String("sku", p.Sku))
		}
	}
}
