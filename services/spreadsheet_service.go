package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"autogas-backend/cache"
	"autogas-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	importLockKey = "lock:product-import"
	importLockTTL = 2 * time.Minute
)

// ImportResult итог импорта товаров
type ImportResult struct {
	BatchID string `json:"batch_id"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Skipped int    `json:"skipped"`
}

// SpreadsheetService импорт каталога и выгрузка заказов в xlsx
type SpreadsheetService struct {
	db       *gorm.DB
	store    *cache.Store
	products *ProductService
	orders   *OrderService
	activity *ActivityService
}

// NewSpreadsheetService создает сервис импорта и выгрузки
func NewSpreadsheetService(db *gorm.DB, store *cache.Store, products *ProductService, orders *OrderService, activity *ActivityService) *SpreadsheetService {
	return &SpreadsheetService{db: db, store: store, products: products, orders: orders, activity: activity}
}

// importRow строка файла импорта
type importRow struct {
	Name        string
	Price       decimal.Decimal
	Description *string
	Category    *string
	ImageURL    *string
	Quantity    *int
}

// parseImportRows читает первый лист; первая строка содержит заголовки
func parseImportRows(r io.Reader) ([]importRow, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, NewValidationError("file", "xlsx")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, NewValidationError("file", "empty")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("unable to read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, NewValidationError("file", "empty")
	}

	columns := make(map[string]int)
	for i, h := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, 0, NewValidationError("file", "name column required")
	}
	if _, ok := columns["price"]; !ok {
		return nil, 0, NewValidationError("file", "price column required")
	}

	cell := func(row []string, name string) (string, bool) {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return "", false
		}
		v := strings.TrimSpace(row[i])
		return v, v != ""
	}

	var result []importRow
	skipped := 0
	for _, row := range rows[1:] {
		name, okName := cell(row, "name")
		rawPrice, okPrice := cell(row, "price")
		if !okName || !okPrice {
			skipped++
			continue
		}
		price, err := decimal.NewFromString(strings.ReplaceAll(rawPrice, ",", "."))
		if err != nil || price.IsNegative() {
			skipped++
			continue
		}

		item := importRow{Name: name, Price: price.Round(2)}
		if v, ok := cell(row, "description"); ok {
			item.Description = &v
		}
		if v, ok := cell(row, "category"); ok {
			item.Category = &v
		}
		if v, ok := cell(row, "image_url"); ok {
			item.ImageURL = &v
		}
		if v, ok := cell(row, "quantity"); ok {
			if q, err := strconv.Atoi(v); err == nil && q >= 0 {
				item.Quantity = &q
			}
		}
		result = append(result, item)
	}

	return result, skipped, nil
}

// ImportProducts загружает товары из xlsx: существующие по имени обновляются, новые создаются.
// Одновременно выполняется только один импорт.
func (s *SpreadsheetService) ImportProducts(ctx context.Context, actor Actor, r io.Reader, meta RequestMeta) (*ImportResult, error) {
	if err := RequireRole(actor, models.RoleOwner, models.RoleAdmin); err != nil {
		return nil, err
	}

	unlock, err := s.store.Lock(ctx, importLockKey, importLockTTL)
	if errors.Is(err, cache.ErrLocked) {
		return nil, &InvalidStateError{Reason: "импорт уже выполняется"}
	}
	if err != nil {
		return nil, err
	}
	defer unlock()

	rows, skipped, err := parseImportRows(r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{BatchID: uuid.NewString(), Skipped: skipped}
	var touched []uint

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			var product models.Product
			err := tx.Where("name = ?", row.Name).First(&product).Error
			isNew := errors.Is(err, gorm.ErrRecordNotFound)
			if err != nil && !isNew {
				return err
			}

			product.Name = row.Name
			product.Price = row.Price
			if row.Description != nil {
				product.Description = *row.Description
			}
			if row.Category != nil {
				product.Category = *row.Category
			}
			if row.ImageURL != nil {
				product.ImageURL = *row.ImageURL
			}
			if row.Quantity != nil {
				product.Quantity = *row.Quantity
			}

			if err := tx.Save(&product).Error; err != nil {
				return err
			}

			if isNew {
				result.Created++
			} else {
				result.Updated++
				touched = append(touched, product.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &TransactionError{Op: "import_products", Err: err}
	}

	if len(touched) > 0 {
		s.products.invalidate(ctx, touched...)
	}

	s.activity.Log(ctx, ActivityEntry{
		UserID:    actor.UserID,
		Action:    ActionImportedProducts,
		ModelType: "Product",
		Changes: map[string]interface{}{
			"batch_id": result.BatchID,
			"created":  result.Created,
			"updated":  result.Updated,
			"skipped":  result.Skipped,
		},
		Meta: meta,
	})

	return result, nil
}

// ExportOrders выгружает заказы по фильтру в xlsx.
// Фильтр должен быть предварительно ограничен через ScopeOrderFilter.
func (s *SpreadsheetService) ExportOrders(ctx context.Context, filter OrderFilter) (*bytes.Buffer, error) {
	orders, err := s.orders.AllOrders(ctx, filter)
	if err != nil {
		return nil, err
	}

	const sheet = "Orders"
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []interface{}{"ID", "Customer", "Phone", "Region", "Address", "Status", "Items", "Total", "Created At"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}

	for i, o := range orders {
		total, _ := o.TotalPrice.Float64()
		row := []interface{}{
			o.ID,
			o.CustomerName,
			o.CustomerPhone,
			o.Region,
			o.Address,
			o.Status,
			len(o.Items),
			total,
			o.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(sheet, "A"+strconv.Itoa(i+2), &row); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}
