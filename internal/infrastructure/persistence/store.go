package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/persistence/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GormStore implements invoice.Store on the database. Every write runs in a
// transaction that re-checks stock and balances against the rows it locks,
// so a stale client-side snapshot can never oversell or overpay.
type GormStore struct {
	db    *gorm.DB
	now   func() time.Time
	newID func() uuid.UUID
}

// NewGormStore creates a store on db
func NewGormStore(db *Database) *GormStore {
	return &GormStore{
		db:    db.DB,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.New,
	}
}

func (s *GormStore) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return translate(s.db.WithContext(ctx).Transaction(fn))
}

// locked adds SELECT ... FOR UPDATE where the dialect supports it. SQLite
// serializes writers instead.
func locked(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// FetchItemsByQuery searches items by name or code. Pages are zero based.
func (s *GormStore) FetchItemsByQuery(ctx context.Context, query invoice.ItemQuery) (*invoice.ItemPage, error) {
	size := query.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	page := query.Page
	if page < 0 {
		page = 0
	}

	q := s.db.WithContext(ctx).Model(&models.ItemModel{})
	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, translate(err)
	}

	var rows []models.ItemModel
	if err := q.Order("name, code").Offset(page * size).Limit(size).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}

	items := make([]invoice.Item, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return &invoice.ItemPage{
		Items:         items,
		TotalElements: total,
		TotalPages:    int((total + int64(size) - 1) / int64(size)),
	}, nil
}

// FetchItem reads one item
func (s *GormStore) FetchItem(ctx context.Context, id uuid.UUID) (*invoice.Item, error) {
	var row models.ItemModel
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("item")
		}
		return nil, translate(err)
	}
	return row.ToDomain(), nil
}

// CreateItem adds a catalog item. Used to seed the self-hosted store.
func (s *GormStore) CreateItem(ctx context.Context, item invoice.Item) (*invoice.Item, error) {
	now := s.now()
	if item.ID == uuid.Nil {
		item.ID = s.newID()
	}
	row := models.ItemModel{
		BaseModel: models.BaseModel{ID: item.ID, CreatedAt: now, UpdatedAt: now},
		Name:      item.Name,
		Code:      item.Code,
		Price:     item.Price,
		Available: item.Available,
		MinStock:  item.MinStock,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, translate(err)
	}
	return row.ToDomain(), nil
}

// PersistStockAdjustment sets an item's stock and records the adjustment
func (s *GormStore) PersistStockAdjustment(ctx context.Context, payload invoice.StockAdjustmentPayload) (*invoice.Item, error) {
	if payload.NewQuantity.IsNegative() {
		return nil, rejected(CodeInvalidAdjustment, "stock cannot be set below zero")
	}
	if strings.TrimSpace(payload.Reason) == "" {
		return nil, rejected(CodeInvalidAdjustment, "an adjustment reason is required")
	}

	var out *invoice.Item
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var item models.ItemModel
		if err := locked(tx).First(&item, "id = ?", payload.ItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("item")
			}
			return err
		}

		now := s.now()
		adj := models.StockAdjustmentModel{
			BaseModel: models.BaseModel{ID: s.newID(), CreatedAt: now, UpdatedAt: now},
			ItemID:    item.ID,
			Previous:  item.Available,
			New:       payload.NewQuantity,
			Reason:    strings.TrimSpace(payload.Reason),
		}
		if err := tx.Create(&adj).Error; err != nil {
			return err
		}

		item.Available = payload.NewQuantity
		item.UpdatedAt = now
		if err := tx.Model(&item).Select("available", "updated_at").Updates(&item).Error; err != nil {
			return err
		}
		out = item.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchInvoice reads an invoice with its lines in position order
func (s *GormStore) FetchInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	row, err := s.loadInvoice(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, translate(err)
	}
	return row.ToDomain(), nil
}

func (s *GormStore) loadInvoice(tx *gorm.DB, id uuid.UUID) (*models.InvoiceModel, error) {
	var row models.InvoiceModel
	err := tx.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("invoice")
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// PersistInvoice creates or replaces an invoice. It re-validates the status
// transition, the payment and, when stock is deducted, that every item
// still has the quantity the invoice consumes beyond what it already held.
func (s *GormStore) PersistInvoice(ctx context.Context, payload invoice.InvoicePayload) (*invoice.Invoice, error) {
	var saved *models.InvoiceModel
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var existing *models.InvoiceModel
		var current *invoice.Status
		if payload.InvoiceID != nil {
			row, err := s.loadInvoice(locked(tx), *payload.InvoiceID)
			if err != nil {
				return err
			}
			if row.Status == invoice.StatusDeleted {
				return conflict(CodeInvoiceDeleted, "This invoice has been deleted and can no longer be edited.")
			}
			existing, current = row, &row.Status
		}
		if err := invoice.ValidateTransition(current, payload.Status); err != nil {
			return fromRule(err)
		}

		items, err := s.lockItems(tx, payload.Lines)
		if err != nil {
			return err
		}
		lines := buildLines(payload.Lines, items)

		totals := invoice.CalculateTotals(lines, payload.Discount, nil)
		if payload.Discount.IsNegative() || payload.Discount.GreaterThan(totals.Subtotal) {
			return fromRule(&invoice.InvalidDiscountError{Discount: payload.Discount, Subtotal: totals.Subtotal})
		}
		if err := invoice.CheckPayment(payload.Status, payload.InitialPayment, totals.TotalAfterDiscount); err != nil {
			return fromRule(err)
		}

		if err := applyStock(tx, items, existing, payload); err != nil {
			return err
		}

		now := s.now()
		row := existing
		if row == nil {
			row = &models.InvoiceModel{
				BaseModel: models.BaseModel{ID: s.newID(), CreatedAt: now},
				IssuedAt:  now,
				Version:   1,
			}
		} else {
			row.Version++
		}
		row.UpdatedAt = now
		row.ClientID = payload.ClientID
		row.Status = payload.Status
		row.Discount = payload.Discount
		row.VATPercent = payload.VATPercent
		row.PaymentMethod = payload.PaymentMethod
		row.Total = totals.TotalAfterDiscount
		row.DeductedStock = payload.DeductFromStock
		row.Lines = nil

		if existing == nil {
			if err := tx.Omit("Lines").Create(row).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("invoice_id = ?", row.ID).Delete(&models.InvoiceLineModel{}).Error; err != nil {
				return err
			}
			if err := tx.Omit("Lines").Save(row).Error; err != nil {
				return err
			}
		}

		lineRows := make([]models.InvoiceLineModel, len(lines))
		for i, l := range lines {
			lineRows[i] = models.InvoiceLineModel{
				ID:        s.newID(),
				InvoiceID: row.ID,
				Position:  i,
				ItemID:    l.ItemID,
				ItemName:  l.ItemName,
				ItemCode:  l.ItemCode,
				UnitPrice: l.UnitPrice,
				Quantity:  l.Quantity,
				Free:      l.Free,
			}
		}
		if len(lineRows) > 0 {
			if err := tx.Create(&lineRows).Error; err != nil {
				return err
			}
		}

		if err := s.recordInitialPayment(tx, row, payload); err != nil {
			return err
		}
		if err := recomputeBalance(tx, row); err != nil {
			return err
		}

		saved, err = s.loadInvoice(tx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved.ToDomain(), nil
}

// lockItems loads, and on postgres locks, every item the lines reference
func (s *GormStore) lockItems(tx *gorm.DB, lines []invoice.LinePayload) (map[uuid.UUID]*models.ItemModel, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		if !seen[l.ItemID] {
			seen[l.ItemID] = true
			ids = append(ids, l.ItemID)
		}
	}
	out := make(map[uuid.UUID]*models.ItemModel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	// stable lock order
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	var rows []models.ItemModel
	if err := locked(tx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, rejected(CodeItemNotFound, fmt.Sprintf("Item %s does not exist.", id))
		}
	}
	return out, nil
}

func buildLines(payload []invoice.LinePayload, items map[uuid.UUID]*models.ItemModel) []invoice.Line {
	lines := make([]invoice.Line, len(payload))
	for i, p := range payload {
		id := p.ItemID
		item := items[id]
		lines[i] = invoice.Line{
			ItemID:    &id,
			ItemName:  item.Name,
			ItemCode:  item.Code,
			UnitPrice: p.UnitPrice,
			Quantity:  p.Quantity,
			Free:      p.Free,
		}
	}
	return lines
}

// applyStock moves stock by the difference between what the new lines
// consume and what the previous version of the invoice already consumed.
// Only a net increase has to be available.
func applyStock(tx *gorm.DB, items map[uuid.UUID]*models.ItemModel, existing *models.InvoiceModel, payload invoice.InvoicePayload) error {
	delta := make(map[uuid.UUID]decimal.Decimal)
	if payload.DeductFromStock {
		for _, l := range payload.Lines {
			delta[l.ItemID] = delta[l.ItemID].Add(l.Quantity)
		}
	}
	var released []uuid.UUID
	if existing != nil {
		for id, q := range existing.StockUsage() {
			if _, ok := delta[id]; !ok {
				released = append(released, id)
			}
			delta[id] = delta[id].Sub(q)
		}
	}

	// items only the previous version used are not locked yet
	if len(released) > 0 {
		var rows []models.ItemModel
		if err := locked(tx).Where("id IN ?", released).Find(&rows).Error; err != nil {
			return err
		}
		for i := range rows {
			items[rows[i].ID] = &rows[i]
		}
	}

	ids := make([]uuid.UUID, 0, len(delta))
	for id := range delta {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	var shortages []invoice.StockFinding
	for _, id := range ids {
		d := delta[id]
		item, ok := items[id]
		if !ok || d.IsZero() {
			continue
		}
		if d.GreaterThan(item.Available) {
			available := item.Available
			shortages = append(shortages, invoice.StockFinding{
				ItemID:    id,
				ItemLabel: item.Label(),
				Requested: d,
				Available: &available,
				Condition: invoice.StockInsufficient,
			})
		}
	}
	if len(shortages) > 0 {
		err := &invoice.InsufficientStockError{Lines: shortages}
		return conflict(invoice.CodeInsufficientStock, err.Error())
	}

	for _, id := range ids {
		d := delta[id]
		item, ok := items[id]
		if !ok || d.IsZero() {
			continue
		}
		item.Available = item.Available.Sub(d)
		if err := tx.Model(item).Update("available", item.Available).Error; err != nil {
			return err
		}
	}
	return nil
}

// recordInitialPayment turns the payment entered on the invoice form into
// settlement rows. On edits only an increase over the settled amount is
// recorded; reducing it requires deleting settlements.
func (s *GormStore) recordInitialPayment(tx *gorm.DB, row *models.InvoiceModel, payload invoice.InvoicePayload) error {
	settled, err := settledAmount(tx, row.ID)
	if err != nil {
		return err
	}
	diff := payload.InitialPayment.Sub(settled)
	if diff.IsNegative() {
		return conflict(CodeSettledReduction,
			"The paid amount cannot be reduced here. Delete a settlement instead.")
	}
	if !diff.IsPositive() {
		return nil
	}

	now := s.now()
	method := payload.PaymentMethod
	if method == "" {
		method = invoice.PaymentMethodCash
	}
	return tx.Create(&models.SettlementModel{
		BaseModel: models.BaseModel{ID: s.newID(), CreatedAt: now, UpdatedAt: now},
		InvoiceID: row.ID,
		Amount:    diff,
		Date:      now,
		Method:    method,
		Notes:     "payment entered on invoice",
	}).Error
}

func settledAmount(tx *gorm.DB, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := tx.Model(&models.SettlementModel{}).
		Where("invoice_id = ?", invoiceID).
		Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return sum, nil
}

// recomputeBalance derives settled and remaining from the settlement rows.
// An invoice whose remaining balance reaches zero becomes PAID; a PAID
// invoice that regains a balance drops back to DEPT, or PENDING when
// nothing is settled.
func recomputeBalance(tx *gorm.DB, row *models.InvoiceModel) error {
	settled, err := settledAmount(tx, row.ID)
	if err != nil {
		return err
	}
	remaining := row.Total.Sub(settled)
	if remaining.IsNegative() {
		return conflict(CodeOverpayment, "Settlements exceed the invoice total.")
	}

	status := row.Status
	switch {
	case status == invoice.StatusDeleted:
	case remaining.IsZero() && row.Total.IsPositive():
		status = invoice.StatusPaid
	case status == invoice.StatusPaid && settled.IsPositive():
		status = invoice.StatusDept
	case status == invoice.StatusPaid:
		status = invoice.StatusPending
	}

	row.AmountSettled = settled
	row.Remaining = remaining
	row.Status = status
	if err := row.ToDomain().CheckBalance(); err != nil {
		return conflict(invoice.CodeOf(err), err.Error())
	}
	return tx.Model(row).Updates(map[string]any{
		"amount_settled": settled,
		"remaining":      remaining,
		"status":         status,
	}).Error
}

// FetchSettlements lists the settlements of an invoice, oldest first
func (s *GormStore) FetchSettlements(ctx context.Context, invoiceID uuid.UUID) ([]invoice.Settlement, error) {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.InvoiceModel{}).Where("id = ?", invoiceID).Count(&count).Error; err != nil {
		return nil, translate(err)
	}
	if count == 0 {
		return nil, notFound("invoice")
	}

	var rows []models.SettlementModel
	if err := db.Where("invoice_id = ?", invoiceID).Order("date, created_at").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	out := make([]invoice.Settlement, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// PersistSettlement records a settlement after re-checking, against the
// locked invoice row, that it is settleable and not overpaid
func (s *GormStore) PersistSettlement(ctx context.Context, payload invoice.SettlementPayload) (*invoice.Settlement, error) {
	var out invoice.Settlement
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var row models.InvoiceModel
		if err := locked(tx).First(&row, "id = ?", payload.InvoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("invoice")
			}
			return err
		}
		if row.Status == invoice.StatusDeleted || row.Status == invoice.StatusPaid {
			return conflict(invoice.CodeInvoiceNotSettleable, (&invoice.NotSettleableError{Status: row.Status}).Error())
		}
		if err := invoice.ValidateSettlement(payload.Amount, row.Remaining); err != nil {
			var exceeds *invoice.ExceedsRemainingBalanceError
			if errors.As(err, &exceeds) {
				return conflict(invoice.CodeExceedsRemainingBalance, err.Error())
			}
			return fromRule(err)
		}

		m := models.SettlementModelFromPayload(s.newID(), payload, s.now())
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if err := recomputeBalance(tx, &row); err != nil {
			return err
		}
		out = m.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSettlement removes a settlement and recomputes the invoice balance
// and status
func (s *GormStore) DeleteSettlement(ctx context.Context, id uuid.UUID) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		var m models.SettlementModel
		if err := locked(tx).First(&m, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("settlement")
			}
			return err
		}
		var row models.InvoiceModel
		if err := locked(tx).First(&row, "id = ?", m.InvoiceID).Error; err != nil {
			return err
		}
		if row.Status == invoice.StatusDeleted {
			return conflict(CodeInvoiceDeleted, "Settlements of a deleted invoice cannot be changed.")
		}
		if err := tx.Delete(&models.SettlementModel{}, "id = ?", id).Error; err != nil {
			return err
		}
		return recomputeBalance(tx, &row)
	})
}

// DeleteInvoice tombstones an invoice and returns any stock it consumed.
// Settlements are kept for the audit trail.
func (s *GormStore) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		row, err := s.loadInvoice(locked(tx), id)
		if err != nil {
			return err
		}
		if row.Status == invoice.StatusDeleted {
			return nil
		}
		if err := applyStock(tx, map[uuid.UUID]*models.ItemModel{}, row, invoice.InvoicePayload{}); err != nil {
			return err
		}
		return tx.Model(row).Updates(map[string]any{
			"status":         invoice.StatusDeleted,
			"deducted_stock": false,
			"updated_at":     s.now(),
		}).Error
	})
}

var _ invoice.Store = (*GormStore)(nil)
