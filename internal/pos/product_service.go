package pos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/pkg/common"
)

// CreateProductInput carries the fields of a new catalog item.
type CreateProductInput struct {
	Name          string          `json:"name"`
	Sku           string          `json:"sku"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
}

// UpdateProductInput carries a partial product update; nil fields keep the
// stored value.
type UpdateProductInput struct {
	Name          *string          `json:"name"`
	Sku           *string          `json:"sku"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stockQuantity"`
}

// ProductsPage is a page of products plus paging metadata.
type ProductsPage struct {
	Data []domain.Product `json:"data"`
	Meta PageMeta         `json:"meta"`
}

// ProductService owns the inventory ledger.
type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) validate(name, sku string, price decimal.Decimal, stock int) error {
	name = strings.TrimSpace(name)
	sku = strings.TrimSpace(sku)
	if len(name) < 2 || len(name) > 100 {
		return errors.Wrap(ErrValidation, "name must be 2-100 characters")
	}
	if len(sku) < 3 || len(sku) > 50 {
		return errors.Wrap(ErrValidation, "sku must be 3-50 characters")
	}
	if price.IsNegative() {
		return errors.Wrap(ErrValidation, "price must not be negative")
	}
	if stock < 0 {
		return errors.Wrap(ErrValidation, "stockQuantity must not be negative")
	}
	return nil
}

// CreateProduct inserts a catalog item, rejecting duplicate SKUs.
func (s *ProductService) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	if err := s.validate(in.Name, in.Sku, in.Price, in.StockQuantity); err != nil {
		return nil, err
	}
	sku := strings.TrimSpace(in.Sku)

	var exists int64
	if err := s.db.WithContext(ctx).Model(&domain.Product{}).
		Where("sku = ?", sku).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists > 0 {
		return nil, errors.Wrap(ErrConflict, "product with this SKU already exists")
	}

	now := time.Now()
	product := &domain.Product{
		ID:            common.UUIDint64(),
		Name:          strings.TrimSpace(in.Name),
		Sku:           sku,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct returns a product by id.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(ErrNotFound, "product not found")
		}
		return nil, err
	}
	return &product, nil
}

// GetProductBySKU returns a product by its SKU.
func (s *ProductService) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var product domain.Product
	if err := s.db.WithContext(ctx).Where("sku = ?", strings.TrimSpace(sku)).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(ErrNotFound, "product not found")
		}
		return nil, err
	}
	return &product, nil
}

// ListProducts returns a page of products, newest first, optionally filtered
// by a case-insensitive name/SKU search.
func (s *ProductService) ListProducts(ctx context.Context, page, limit int, search string) (*ProductsPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	db := s.db.WithContext(ctx).Model(&domain.Product{})
	if q := strings.TrimSpace(search); q != "" {
		if strings.EqualFold(s.db.Name(), "postgres") {
			db = db.Where("name ILIKE ? OR sku ILIKE ?", "%"+q+"%", "%"+q+"%")
		} else {
			lq := "%" + strings.ToLower(q) + "%"
			db = db.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", lq, lq)
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}
	var products []domain.Product
	// id breaks created_at ties so paging stays stable
	if err := db.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return &ProductsPage{Data: products, Meta: newPageMeta(page, limit, total)}, nil
}

// UpdateProduct applies a partial update, keeping SKU uniqueness.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, in UpdateProductInput) (*domain.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Sku != nil {
		sku := strings.TrimSpace(*in.Sku)
		if sku != product.Sku {
			var exists int64
			if err := s.db.WithContext(ctx).Model(&domain.Product{}).
				Where("sku = ? AND id != ?", sku, id).Count(&exists).Error; err != nil {
				return nil, err
			}
			if exists > 0 {
				return nil, errors.Wrap(ErrConflict, "product with this SKU already exists")
			}
		}
		product.Sku = sku
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.StockQuantity != nil {
		product.StockQuantity = *in.StockQuantity
	}
	if err := s.validate(product.Name, product.Sku, product.Price, product.StockQuantity); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product unless any sale item references it.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}

	var refs int64
	if err := s.db.WithContext(ctx).Model(&domain.SaleItem{}).
		Where("product_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return errors.Wrap(ErrConflict, "cannot delete product with existing sales")
	}

	return s.db.WithContext(ctx).Delete(&domain.Product{}, id).Error
}

// UpdateStock adjusts stock by delta (negative for sales, positive for
// restock). The adjustment is a single conditional update so concurrent
// decrements cannot drive stock below zero.
func (s *ProductService) UpdateStock(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock_quantity + ? >= 0", id, delta).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errors.Wrap(ErrInsufficientStock, "insufficient stock")
	}
	return s.GetProduct(ctx, id)
}
