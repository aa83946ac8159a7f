package adminapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/pos"
	"github.com/talkincode/toughpos/internal/webserver"
)

type productPayload struct {
	Name          string          `json:"name" validate:"required,min=2,max=100"`
	Sku           string          `json:"sku" validate:"required,min=3,max=50"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity" validate:"min=0"`
}

type productUpdatePayload struct {
	Name          *string          `json:"name" validate:"omitempty,min=2,max=100"`
	Sku           *string          `json:"sku" validate:"omitempty,min=3,max=50"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stockQuantity" validate:"omitempty,min=0"`
}

type stockPayload struct {
	Delta int `json:"delta" validate:"required"`
}

type productCSVRow struct {
	Name          string `csv:"name"`
	Sku           string `csv:"sku"`
	Price         string `csv:"price"`
	StockQuantity int    `csv:"stockQuantity"`
}

// registerProductRoutes registers catalog CRUD and import/export endpoints
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/export", exportProducts)
	webserver.ApiGET("/products/sku/:sku", getProductBySku)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPOST("/products/import", importProducts)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiPATCH("/products/:id/stock", updateProductStock)
	webserver.ApiDELETE("/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)
	search := strings.TrimSpace(c.QueryParam("search"))
	if search == "" {
		search = strings.TrimSpace(c.QueryParam("q"))
	}

	result, err := pos.NewProductService(GetDB(c)).ListProducts(c.Request().Context(), page, pageSize, search)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, result)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	product, err := pos.NewProductService(GetDB(c)).GetProduct(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, product)
}

func getProductBySku(c echo.Context) error {
	product, err := pos.NewProductService(GetDB(c)).GetProductBySKU(c.Request().Context(), c.Param("sku"))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, product)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	product, err := pos.NewProductService(GetDB(c)).CreateProduct(c.Request().Context(), pos.CreateProductInput{
		Name:          payload.Name,
		Sku:           payload.Sku,
		Price:         payload.Price,
		StockQuantity: payload.StockQuantity,
	})
	if err != nil {
		return failErr(c, err)
	}
	return created(c, product)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var payload productUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	product, err := pos.NewProductService(GetDB(c)).UpdateProduct(c.Request().Context(), id, pos.UpdateProductInput{
		Name:          payload.Name,
		Sku:           payload.Sku,
		Price:         payload.Price,
		StockQuantity: payload.StockQuantity,
	})
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, product)
}

func updateProductStock(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var payload stockPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse stock adjustment", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	product, err := pos.NewProductService(GetDB(c)).UpdateStock(c.Request().Context(), id, payload.Delta)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, product)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := pos.NewProductService(GetDB(c)).DeleteProduct(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}

// importProducts accepts a CSV body (name,sku,price,stockQuantity) and
// creates the rows one by one; per-row failures are collected, not fatal.
func importProducts(c echo.Context) error {
	var rows []*productCSVRow
	if err := gocsv.Unmarshal(c.Request().Body, &rows); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse CSV", err.Error())
	}

	svc := pos.NewProductService(GetDB(c))
	imported := 0
	var rowErrors []string
	for i, row := range rows {
		price, err := decimal.NewFromString(strings.TrimSpace(row.Price))
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid price %q", i+1, row.Price))
			continue
		}
		_, err = svc.CreateProduct(c.Request().Context(), pos.CreateProductInput{
			Name:          row.Name,
			Sku:           row.Sku,
			Price:         price,
			StockQuantity: row.StockQuantity,
		})
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d (%s): %s", i+1, row.Sku, err.Error()))
			continue
		}
		imported++
	}

	return ok(c, map[string]interface{}{
		"imported": imported,
		"errors":   rowErrors,
	})
}

// exportProducts streams the whole catalog as an XLSX workbook, paging
// through the product list until the last short page.
func exportProducts(c echo.Context) error {
	svc := pos.NewProductService(GetDB(c))
	const pageSize = 500
	var products []domain.Product
	for page := 1; ; page++ {
		result, err := svc.ListProducts(c.Request().Context(), page, pageSize, "")
		if err != nil {
			return failErr(c, err)
		}
		products = append(products, result.Data...)
		if len(result.Data) < pageSize {
			break
		}
	}

	xlsx := excelize.NewFile()
	headers := []string{"id", "name", "sku", "price", "stockQuantity", "createdAt"}
	for col, h := range headers {
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("%s1", excelize.ToAlphaString(col)), h)
	}
	for i, p := range products {
		row := i + 2
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("A%d", row), p.ID)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("B%d", row), p.Name)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("C%d", row), p.Sku)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("D%d", row), p.Price.String())
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("E%d", row), p.StockQuantity)
		xlsx.SetCellValue("Sheet1", fmt.Sprintf("F%d", row), p.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="products.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return xlsx.Write(c.Response())
}
